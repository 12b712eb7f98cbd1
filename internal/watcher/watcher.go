// Package watcher turns filesystem notifications into debounced batches of
// file events that drive incremental indexing runs.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/loadsearch/loadsearch/internal/filetype"
)

// Operation is the kind of change observed on a path.
type Operation int

const (
	OpCreate Operation = iota
	OpModify
	OpDelete
)

func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	default:
		return "DELETE"
	}
}

// FileEvent is one observed change after coalescing.
type FileEvent struct {
	Path      string
	Operation Operation
	Timestamp time.Time
}

// Options configures a Watcher.
type Options struct {
	// Roots are the folders to watch recursively.
	Roots []string

	// ExcludeDirs are directory names never descended into.
	ExcludeDirs []string

	// DebounceWindow is how long to coalesce before emitting a batch.
	// Default 500ms.
	DebounceWindow time.Duration
}

// Watcher follows the configured folders and emits debounced batches.
type Watcher struct {
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	excluded  map[string]struct{}
	roots     []string
	errs      chan error
}

// New creates a watcher. Start must be called before batches flow.
func New(opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create filesystem watcher: %w", err)
	}

	window := opts.DebounceWindow
	if window <= 0 {
		window = 500 * time.Millisecond
	}

	excluded := make(map[string]struct{}, len(opts.ExcludeDirs))
	for _, name := range opts.ExcludeDirs {
		excluded[name] = struct{}{}
	}

	return &Watcher{
		fsw:       fsw,
		debouncer: NewDebouncer(window),
		excluded:  excluded,
		roots:     opts.Roots,
		errs:      make(chan error, 16),
	}, nil
}

// Start registers all root trees and begins forwarding events. It returns
// once watching is established; delivery runs until ctx is cancelled or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	for _, root := range w.roots {
		if err := w.watchTree(root); err != nil {
			return err
		}
	}
	go w.loop(ctx)
	return nil
}

// Batches returns coalesced event batches. One batch means one incremental
// run is due.
func (w *Watcher) Batches() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Errors reports non-fatal watch problems. The watcher keeps running.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Stop tears the watcher down. Safe to call more than once.
func (w *Watcher) Stop() error {
	w.debouncer.Stop()
	return w.fsw.Close()
}

func (w *Watcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) skipDir(name string) bool {
	if _, ok := w.excluded[name]; ok {
		return true
	}
	return strings.HasPrefix(name, ".")
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
				slog.Warn("watcher error dropped", slog.String("error", err.Error()))
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	// New directories join the watch so events below them arrive too.
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if !w.skipDir(filepath.Base(ev.Name)) {
				if err := w.watchTree(ev.Name); err != nil {
					slog.Warn("cannot watch new directory",
						slog.String("path", ev.Name),
						slog.String("error", err.Error()))
				}
			}
			return
		}
	}

	op, relevant := mapOperation(ev.Op)
	if !relevant {
		return
	}
	// Deletes cannot stat the path, so they pass the extension filter only.
	if !filetype.Indexable(ev.Name) {
		return
	}

	w.debouncer.Add(FileEvent{Path: ev.Name, Operation: op, Timestamp: time.Now()})
}

func mapOperation(op fsnotify.Op) (Operation, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpModify, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return OpDelete, true
	default:
		return 0, false
	}
}
