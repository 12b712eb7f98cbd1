package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/loadsearch/loadsearch/internal/config"
	"github.com/loadsearch/loadsearch/internal/query"
)

type searchOptions struct {
	limit  int
	format string // "text", "json" or "" for auto
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed folders",
		Long: `Search the index. All words must occur in a matching document; wrap
words in double quotes to require them as a consecutive phrase.

Examples:
  loadsearch search bütçe raporu
  loadsearch search '"yıllık bütçe" sunum'
  loadsearch search fatura --limit 5 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: text or json (default auto)")
	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, raw string, opts searchOptions) error {
	dir := dataDir()
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	cleanup := setupLogging(cfg, false)
	defer cleanup()

	s, wasReset, err := openStore(dir)
	if err != nil {
		return err
	}
	defer s.Close()
	if wasReset {
		fmt.Fprintln(os.Stderr, "Note: the index is empty; run 'loadsearch index' first")
	}

	engine, err := query.New(s, cfg.Search.CacheSize)
	if err != nil {
		return err
	}

	limit := opts.limit
	if limit <= 0 {
		limit = cfg.Search.MaxResults
	}

	resp, err := engine.Search(ctx, raw, limit)
	if err != nil {
		return err
	}

	format := opts.format
	if format == "" {
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			format = "text"
		} else {
			format = "json"
		}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "text":
		printResults(cmd, raw, resp)
		return nil
	default:
		return fmt.Errorf("unknown format %q, want text or json", format)
	}
}

func printResults(cmd *cobra.Command, raw string, resp query.Response) {
	out := cmd.OutOrStdout()
	if resp.Diagnostic != "" {
		fmt.Fprintln(out, "Query not understood:", resp.Diagnostic)
		return
	}
	if len(resp.Results) == 0 {
		fmt.Fprintf(out, "No results for %q\n", raw)
		return
	}

	fmt.Fprintf(out, "%d result(s) for %q (%s)\n\n",
		resp.Total, raw, resp.Elapsed.Round(time.Microsecond))
	for i, r := range resp.Results {
		fmt.Fprintf(out, "%2d. %s  (score %d, modified %s)\n",
			i+1, r.Path, r.Score, r.ModTime.Format("2006-01-02 15:04"))
		if r.Snippet != "" {
			fmt.Fprintf(out, "    %s\n", r.Snippet)
		}
	}
}
