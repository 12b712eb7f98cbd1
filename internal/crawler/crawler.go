// Package crawler discovers indexable files under the configured folders.
// Discovery streams results over a channel so the extraction pipeline can
// start before the walk finishes.
package crawler

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/loadsearch/loadsearch/internal/filetype"
)

// FileInfo is one discovered file.
type FileInfo struct {
	Path    string // absolute path
	Size    int64
	ModTime time.Time
	Class   filetype.Class
}

// Options configures a crawl.
type Options struct {
	// Roots are the folders to walk. Each must be absolute.
	Roots []string

	// ExcludeDirs are directory base names skipped entirely.
	ExcludeDirs []string

	// MaxFileSize is the admission cap for plain text files in bytes.
	// PDF and Word documents are always admitted; the extraction layer
	// bounds their cost with page and character caps.
	MaxFileSize int64
}

// DefaultMaxFileSize caps plain text files at 512 KB.
const DefaultMaxFileSize = 512 * 1024

// Crawl walks the roots and streams discovered files. The channel closes
// when the walk completes or ctx is cancelled. A root that cannot be
// statted fails the call; errors below a root are skipped and logged.
func Crawl(ctx context.Context, opts Options) (<-chan FileInfo, error) {
	roots := make([]string, 0, len(opts.Roots))
	for _, root := range opts.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve root %s: %w", root, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat root %s: %w", abs, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("root is not a directory: %s", abs)
		}
		roots = append(roots, abs)
	}

	maxFile := opts.MaxFileSize
	if maxFile <= 0 {
		maxFile = DefaultMaxFileSize
	}

	excluded := make(map[string]struct{}, len(opts.ExcludeDirs))
	for _, name := range opts.ExcludeDirs {
		excluded[name] = struct{}{}
	}

	results := make(chan FileInfo, 64)
	go func() {
		defer close(results)
		for _, root := range roots {
			if err := walkRoot(ctx, root, excluded, maxFile, results); err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("crawl root failed",
					slog.String("root", root),
					slog.String("error", err.Error()))
			}
		}
	}()
	return results, nil
}

func walkRoot(ctx context.Context, root string, excluded map[string]struct{}, maxFile int64, results chan<- FileInfo) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			// Unreadable entries are skipped, not fatal.
			slog.Debug("skipping unreadable entry", slog.String("path", path))
			return nil
		}

		if d.IsDir() {
			if path != root {
				if _, skip := excluded[d.Name()]; skip {
					return filepath.SkipDir
				}
				if strings.HasPrefix(d.Name(), ".") && d.Name() != "." {
					return filepath.SkipDir
				}
			}
			return nil
		}

		// Symlinks are never followed; a symlinked file is not indexed.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		class := filetype.Detect(path)
		if class == filetype.ClassUnsupported {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		// Only plain text has an admission cap. Oversized PDFs must reach
		// the extractor so the page limit can truncate them instead.
		if !filetype.LargeFile(class) && info.Size() > maxFile {
			slog.Debug("skipping oversized file",
				slog.String("path", path),
				slog.Int64("size", info.Size()))
			return nil
		}

		select {
		case results <- FileInfo{Path: path, Size: info.Size(), ModTime: info.ModTime(), Class: class}:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})
}
