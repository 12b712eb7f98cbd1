// Package index orchestrates indexing runs: crawl, extract, tokenize, and
// commit. One run owns the writer at a time, enforced in-process by a
// mutex and across processes by a lock file.
package index

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/loadsearch/loadsearch/internal/extract"
	"github.com/loadsearch/loadsearch/internal/store"
)

// Mode selects how much work a run does.
type Mode int

const (
	// ModeFull re-checks every discovered file by content fingerprint,
	// re-extracting only those whose content actually changed.
	ModeFull Mode = iota
	// ModeIncremental additionally trusts size and mtime metadata to
	// skip files without hashing them.
	ModeIncremental
)

func (m Mode) String() string {
	if m == ModeFull {
		return "full"
	}
	return "incremental"
}

// State is the externally visible phase of the runner.
type State int32

const (
	StateIdle State = iota
	StateScanning
	StateExtracting
	StateCommitting
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateExtracting:
		return "extracting"
	case StateCommitting:
		return "committing"
	default:
		return "idle"
	}
}

// FileError records one contained per-file failure with its taxonomy code.
type FileError struct {
	Path   string `json:"path"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Summary reports what one run did.
type Summary struct {
	Mode       Mode          `json:"-"`
	Scanned    int           `json:"scanned"`
	Indexed    int           `json:"indexed"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Deleted    int           `json:"deleted"`
	Duration   time.Duration `json:"duration_ns"`
	FileErrors []FileError   `json:"file_errors,omitempty"`
}

// Options configures a Runner.
type Options struct {
	// Roots are the folders to index.
	Roots []string

	// ExcludeDirs are directory names skipped during the crawl.
	ExcludeDirs []string

	// MaxFileSize caps plain text files in bytes. PDF and Word files
	// are not size-capped at admission; extraction limits bound them.
	MaxFileSize int64

	// Workers bounds concurrent extraction. Zero means NumCPU.
	Workers int

	// Limits bounds per-file extraction work.
	Limits extract.Limits

	// LockPath is the cross-process run lock file. Empty disables
	// file locking, used by tests.
	LockPath string
}

// Runner executes indexing runs against one store.
type Runner struct {
	store *store.Store
	opts  Options

	runMu sync.Mutex
	state atomic.Int32
}

// NewRunner creates a runner. The store stays owned by the caller.
func NewRunner(s *store.Store, opts Options) *Runner {
	if opts.Limits.MaxTextChars <= 0 {
		opts.Limits = extract.DefaultLimits()
	}
	return &Runner{store: s, opts: opts}
}

// State reports the current phase without blocking.
func (r *Runner) State() State {
	return State(r.state.Load())
}

func (r *Runner) setState(s State) {
	r.state.Store(int32(s))
}
