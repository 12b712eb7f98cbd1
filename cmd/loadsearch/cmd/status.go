package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/loadsearch/loadsearch/internal/config"
	"github.com/loadsearch/loadsearch/internal/logging"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show index and configuration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	dir := dataDir()
	out := cmd.OutOrStdout()

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Data directory:", dir)
	if len(cfg.Folders) == 0 {
		fmt.Fprintln(out, "Folders: none configured")
	} else {
		fmt.Fprintln(out, "Folders:")
		for _, folder := range cfg.Folders {
			fmt.Fprintln(out, "  -", folder)
		}
	}
	if cfg.LastIndexed.IsZero() {
		fmt.Fprintln(out, "Last indexed: never")
	} else {
		fmt.Fprintln(out, "Last indexed:", cfg.LastIndexed.Format(time.RFC1123))
	}

	indexPath := config.IndexPath(dir)
	info, err := os.Stat(indexPath)
	if os.IsNotExist(err) {
		fmt.Fprintln(out, "Index: not built yet, run 'loadsearch index'")
		return nil
	}

	s, _, err := openStore(dir)
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Index: %d documents, %d terms, %d postings (version %d, %.1f MB on disk)\n",
		stats.Documents, stats.Terms, stats.Postings, stats.Version,
		float64(info.Size())/(1024*1024))

	logPath := logging.DefaultConfig(dir).FilePath
	rotated := logging.RotatedFiles(logPath)
	fmt.Fprintf(out, "Logs: %s (%d rotated)\n", logPath, len(rotated))
	return nil
}
