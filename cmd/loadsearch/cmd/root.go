// Package cmd provides the CLI commands for LoadSearch.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loadsearch/loadsearch/internal/config"
	enginerr "github.com/loadsearch/loadsearch/internal/errors"
	"github.com/loadsearch/loadsearch/internal/logging"
	"github.com/loadsearch/loadsearch/internal/store"
)

var (
	dataDirFlag string
	debugMode   bool
)

// Execute runs the CLI until completion or an interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loadsearch",
		Short: "Local full-text search over your folders",
		Long: `LoadSearch indexes the contents of folders you choose and serves
full-text queries over them. Plain text, PDF and Word documents are
supported, with Turkish-aware case folding.

Start with 'loadsearch config add-folder <path>' and then 'loadsearch index'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "",
		"Data directory (default $LOADSEARCH_DATA or ~/LoadSearch)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// dataDir resolves the effective data directory.
func dataDir() string {
	if dataDirFlag != "" {
		return dataDirFlag
	}
	return config.DataDir()
}

// setupLogging wires slog to the rotating log file under the data dir.
func setupLogging(cfg *config.Config, toStderr bool) func() {
	logCfg := logging.DefaultConfig(dataDir())
	logCfg.Level = cfg.Logging.Level
	if debugMode {
		logCfg.Level = "debug"
	}
	logCfg.WriteToStderr = toStderr
	cleanup, err := logging.Setup(logCfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Warning: logging unavailable:", err)
		return func() {}
	}
	return cleanup
}

// openStore opens the index, recovering from corruption by resetting it.
// The second return is true when a reset happened and a full reindex is
// required.
func openStore(dir string) (*store.Store, bool, error) {
	path := config.IndexPath(dir)
	s, err := store.Open(path)
	if err == nil {
		return s, false, nil
	}
	if enginerr.GetCode(err) != enginerr.ErrCodeStoreCorrupt {
		return nil, false, err
	}

	fmt.Fprintln(os.Stderr, "Warning: index database was corrupted and has been reset; a full reindex is required")
	if resetErr := store.Reset(path); resetErr != nil {
		return nil, false, resetErr
	}
	s, err = store.Open(path)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}
