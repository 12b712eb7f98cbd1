package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/loadsearch/loadsearch/internal/analysis"
	"github.com/loadsearch/loadsearch/internal/crawler"
	enginerr "github.com/loadsearch/loadsearch/internal/errors"
	"github.com/loadsearch/loadsearch/internal/extract"
	"github.com/loadsearch/loadsearch/internal/store"
)

// ErrRunInProgress means another run holds the index writer.
var ErrRunInProgress = fmt.Errorf("an indexing run is already in progress")

// update is one worker's outcome for a single file, queued until commit.
type update struct {
	doc     store.Document
	tokens  []analysis.Token
	failed  bool
	skipped bool
	touch   bool
	remove  bool
	code    string
	reason  string
}

// Run executes one indexing run. Per-file failures are contained in the
// summary; only lock contention, store failures, and cancellation abort
// the run. Cancellation discards all uncommitted work.
func (r *Runner) Run(ctx context.Context, mode Mode) (*Summary, error) {
	if !r.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.runMu.Unlock()

	if r.opts.LockPath != "" {
		lock := flock.New(r.opts.LockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		if !locked {
			return nil, ErrRunInProgress
		}
		defer func() { _ = lock.Unlock() }()
	}

	defer r.setState(StateIdle)
	start := time.Now()
	slog.Info("indexing run started",
		slog.String("mode", mode.String()),
		slog.Int("roots", len(r.opts.Roots)))

	summary, err := r.run(ctx, mode)
	if err != nil {
		slog.Warn("indexing run aborted",
			slog.String("mode", mode.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	summary.Mode = mode
	summary.Duration = time.Since(start)
	slog.Info("indexing run finished",
		slog.String("mode", mode.String()),
		slog.Int("scanned", summary.Scanned),
		slog.Int("indexed", summary.Indexed),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		slog.Int("deleted", summary.Deleted),
		slog.Duration("duration", summary.Duration))
	return summary, nil
}

func (r *Runner) run(ctx context.Context, mode Mode) (*Summary, error) {
	r.setState(StateScanning)

	catalog, err := r.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	files, err := crawler.Crawl(ctx, crawler.Options{
		Roots:       r.opts.Roots,
		ExcludeDirs: r.opts.ExcludeDirs,
		MaxFileSize: r.opts.MaxFileSize,
	})
	if err != nil {
		return nil, err
	}

	r.setState(StateExtracting)

	workers := r.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		summary Summary
		mu      sync.Mutex
		updates []update
		seen    = make(map[string]struct{})
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for f := range files {
		f := f
		mu.Lock()
		summary.Scanned++
		seen[f.Path] = struct{}{}
		mu.Unlock()

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u := r.processFile(mode, catalog, f)
			if u == nil {
				return nil
			}
			mu.Lock()
			updates = append(updates, *u)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deleted := crawler.Deleted(catalog, seen)

	r.setState(StateCommitting)
	batch, err := r.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = batch.Rollback() }()

	for _, u := range updates {
		switch {
		case u.skipped:
			summary.Skipped++
			if u.remove {
				if err := batch.Remove(u.doc.Path); err != nil {
					return nil, err
				}
			}
			continue
		case u.touch:
			summary.Skipped++
			if err := batch.Touch(u.doc.Path, u.doc.Size, u.doc.ModTime); err != nil {
				return nil, err
			}
			continue
		case u.failed:
			summary.Failed++
			summary.FileErrors = append(summary.FileErrors,
				FileError{Path: u.doc.Path, Code: u.code, Reason: u.reason})
		default:
			summary.Indexed++
		}
		if err := batch.Upsert(u.doc, u.tokens); err != nil {
			return nil, err
		}
	}
	for _, path := range deleted {
		if err := batch.Remove(path); err != nil {
			return nil, err
		}
		summary.Deleted++
	}
	if err := batch.Commit(); err != nil {
		return nil, err
	}
	return &summary, nil
}

// processFile classifies and, when needed, extracts one file. It never
// fails the run; extraction problems become catalog records.
func (r *Runner) processFile(mode Mode, catalog map[string]crawler.Stored, f crawler.FileInfo) *update {
	var stored *crawler.Stored
	if rec, ok := catalog[f.Path]; ok {
		stored = &rec
	}

	unchanged := stored != nil && crawler.Classify(stored, f) == crawler.ChangeUnchanged
	if mode == ModeIncremental && unchanged {
		return &update{doc: store.Document{Path: f.Path}, skipped: true}
	}

	fp, err := fingerprint(f.Path)
	if err != nil {
		ee := enginerr.FromIO(f.Path, err)
		slog.Warn("fingerprint failed", slog.String("error", ee.Error()))
		return &update{
			doc: store.Document{
				Path: f.Path, Size: f.Size, ModTime: f.ModTime,
				Fingerprint: "", Status: string(extract.StatusFailed),
				Reason: err.Error(), IndexedAt: time.Now(),
			},
			failed: true,
			code:   ee.Code,
			reason: err.Error(),
		}
	}

	// Unchanged content is never re-extracted, in either mode. When only
	// the metadata moved the record gets a refresh instead.
	if stored != nil && fp == stored.Fingerprint {
		if unchanged {
			return &update{doc: store.Document{Path: f.Path}, skipped: true}
		}
		return &update{
			doc:   store.Document{Path: f.Path, Size: f.Size, ModTime: f.ModTime},
			touch: true,
		}
	}

	res := extract.Extract(f.Path, f.Class, r.opts.Limits)
	doc := store.Document{
		Path:        f.Path,
		Size:        f.Size,
		ModTime:     f.ModTime,
		Fingerprint: fp,
		Status:      string(res.Status),
		Reason:      res.Reason,
		Content:     res.Text,
		IndexedAt:   time.Now(),
	}

	switch res.Status {
	case extract.StatusFailed:
		ee := enginerr.New(res.Code, res.Reason, nil).WithPath(f.Path)
		slog.Warn("extraction failed", slog.String("error", ee.Error()))
		return &update{doc: doc, failed: true, code: ee.Code, reason: res.Reason}
	case extract.StatusSkipped:
		return &update{doc: store.Document{Path: f.Path}, skipped: true}
	default:
		tokens := analysis.Tokenize(res.Text)
		if len(tokens) == 0 {
			// No indexable text. Recording it as ok would break the
			// rule that ok and truncated records carry postings, so the
			// file is skipped and any stale record is dropped.
			return &update{
				doc:     store.Document{Path: f.Path},
				skipped: true,
				remove:  stored != nil,
			}
		}
		return &update{doc: doc, tokens: tokens}
	}
}

func (r *Runner) loadCatalog(ctx context.Context) (map[string]crawler.Stored, error) {
	records, err := r.store.Records(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]crawler.Stored, len(records))
	for _, rec := range records {
		catalog[rec.Path] = crawler.Stored{
			Size:        rec.Size,
			ModTime:     rec.ModTime,
			Fingerprint: rec.Fingerprint,
		}
	}
	return catalog, nil
}

// fingerprint hashes the raw file bytes. Equal fingerprints short-circuit
// re-extraction on incremental runs.
func fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
