package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/loadsearch/loadsearch/internal/config"
	enginerr "github.com/loadsearch/loadsearch/internal/errors"
	"github.com/loadsearch/loadsearch/internal/index"
	"github.com/loadsearch/loadsearch/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the configured folders and index changes continually",
		Long: `Run an initial incremental pass, then follow filesystem changes and
fold them into the index as they happen. Stops on Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd)
		},
	}
}

func runWatch(ctx context.Context, cmd *cobra.Command) error {
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

	runner := newRunner(s, cfg, dir)

	mode := index.ModeIncremental
	if wasReset {
		mode = index.ModeFull
	}
	if _, err := runner.Run(ctx, mode); err != nil {
		return err
	}
	markIndexed(cfg, dir)

	w, err := watcher.New(watcher.Options{
		Roots:          cfg.Folders,
		ExcludeDirs:    cfg.Crawl.Exclude,
		DebounceWindow: cfg.Watch.DebounceDuration(),
	})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintln(cmd.OutOrStdout(), "Watching", len(cfg.Folders), "folder(s), press Ctrl-C to stop")

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-w.Batches():
			if !ok {
				return nil
			}
			slog.Info("change batch received", slog.Int("events", len(batch)))
			summary, err := runner.Run(ctx, index.ModeIncremental)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				if enginerr.IsFatal(err) {
					return err
				}
				slog.Warn("incremental run failed", slog.String("error", err.Error()))
				continue
			}
			markIndexed(cfg, dir)
			if summary.Indexed > 0 || summary.Deleted > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  indexed %d, deleted %d\n",
					time.Now().Format("15:04:05"), summary.Indexed, summary.Deleted)
			}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			slog.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}

func markIndexed(cfg *config.Config, dir string) {
	cfg.LastIndexed = time.Now()
	if err := cfg.Save(dir); err != nil {
		slog.Warn("cannot persist last_indexed", slog.String("error", err.Error()))
	}
}
