package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/loadsearch/loadsearch/internal/config"
	"github.com/loadsearch/loadsearch/internal/extract"
	"github.com/loadsearch/loadsearch/internal/index"
	"github.com/loadsearch/loadsearch/internal/store"
)

func newIndexCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index the configured folders",
		Long: `Run an indexing pass over the configured folders.

By default the run is incremental: unchanged files are skipped based on
size, modification time and content fingerprint. Use --full to re-verify
every file by content fingerprint instead of trusting file metadata.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), cmd, full)
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Re-verify every file by content fingerprint")
	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, full bool) error {
	dir := dataDir()
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	if len(cfg.Folders) == 0 {
		return fmt.Errorf("no folders configured; add one with 'loadsearch config add-folder <path>'")
	}
	if err := config.EnsureDirs(dir); err != nil {
		return err
	}

	cleanup := setupLogging(cfg, debugMode)
	defer cleanup()

	s, wasReset, err := openStore(dir)
	if err != nil {
		return err
	}
	defer s.Close()

	mode := index.ModeIncremental
	if full || wasReset {
		mode = index.ModeFull
	}

	runner := newRunner(s, cfg, dir)
	summary, err := runner.Run(ctx, mode)
	if err != nil {
		return err
	}

	cfg.LastIndexed = time.Now()
	if err := cfg.Save(dir); err != nil {
		return err
	}

	printSummary(cmd, summary)
	return nil
}

func newRunner(s *store.Store, cfg *config.Config, dir string) *index.Runner {
	limits := extract.DefaultLimits()
	limits.PDFByteThreshold = int64(cfg.Crawl.MaxDocumentSizeKB) * 1024

	return index.NewRunner(s, index.Options{
		Roots:       cfg.Folders,
		ExcludeDirs: cfg.Crawl.Exclude,
		MaxFileSize: int64(cfg.Crawl.MaxFileSizeKB) * 1024,
		Workers:     cfg.Crawl.Workers,
		Limits:      limits,
		LockPath:    config.LockPath(dir),
	})
}

func printSummary(cmd *cobra.Command, summary *index.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Indexing finished (%s mode) in %s\n",
		summary.Mode, summary.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  scanned: %d\n  indexed: %d\n  skipped: %d\n  deleted: %d\n  failed:  %d\n",
		summary.Scanned, summary.Indexed, summary.Skipped, summary.Deleted, summary.Failed)
	for _, fe := range summary.FileErrors {
		fmt.Fprintf(out, "  failed file: %s [%s] %s\n", fe.Path, fe.Code, fe.Reason)
	}
}
