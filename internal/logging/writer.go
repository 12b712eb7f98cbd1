package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// RotatingWriter implements io.Writer with size-based rotation.
// Rotation renames loadsearch.log to loadsearch.log.1, shifting older
// files up and dropping anything beyond maxFiles.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int

	mu      sync.Mutex
	file    *os.File
	written int64
}

// NewRotatingWriter creates a rotating log writer.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	if maxFiles <= 0 {
		maxFiles = 5
	}
	w := &RotatingWriter{
		path:     path,
		maxSize:  int64(maxSizeMB) * 1024 * 1024,
		maxFiles: maxFiles,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if err := w.openFile(); err != nil {
		return nil, err
	}
	return w, nil
}

// Write implements io.Writer with automatic rotation.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.written+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			// Keep writing to the current file if rotation fails.
			fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}

	n, err := w.file.Write(p)
	w.written += int64(n)
	return n, err
}

// Close closes the underlying file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// openFile opens or creates the log file and records its current size.
func (w *RotatingWriter) openFile() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	w.file = f
	w.written = info.Size()
	return nil
}

// rotate shifts rotated files up one slot and starts a fresh log file.
func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("close log file: %w", err)
		}
		w.file = nil
	}

	// Shift from the highest slot down so nothing is overwritten.
	for n := w.maxFiles - 1; n >= 1; n-- {
		from := w.rotatedPath(n)
		if _, err := os.Stat(from); err != nil {
			continue
		}
		if n == w.maxFiles-1 {
			_ = os.Remove(from)
			continue
		}
		_ = os.Rename(from, w.rotatedPath(n+1))
	}
	if err := os.Rename(w.path, w.rotatedPath(1)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rotate log file: %w", err)
	}

	w.written = 0
	return w.openFile()
}

// rotatedPath returns the path of the n-th rotated file.
func (w *RotatingWriter) rotatedPath(n int) string {
	return w.path + "." + strconv.Itoa(n)
}

// RotatedFiles returns the existing rotated files for path, oldest last.
// Used by the status command to report log disk usage.
func RotatedFiles(path string) []string {
	matches, err := filepath.Glob(path + ".*")
	if err != nil {
		return nil
	}
	var files []string
	for _, m := range matches {
		suffix := strings.TrimPrefix(m, path+".")
		if _, err := strconv.Atoi(suffix); err == nil {
			files = append(files, m)
		}
	}
	return files
}
