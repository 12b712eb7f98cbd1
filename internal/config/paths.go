package config

import (
	"os"
	"path/filepath"
)

// DataDir resolves the LoadSearch data directory: the LOADSEARCH_DATA
// environment variable when set, otherwise ~/LoadSearch. The directory is
// the sync boundary; only SearchIndexDir below is excluded from sync.
func DataDir() string {
	if env := os.Getenv("LOADSEARCH_DATA"); env != "" {
		if abs, err := filepath.Abs(env); err == nil {
			return abs
		}
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "LoadSearch")
	}
	return filepath.Join(home, "LoadSearch")
}

// FilePath returns the config file path within a data directory.
func FilePath(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

// SearchIndexDir returns the index directory. It is local to each machine
// and excluded from synchronization by directory boundary.
func SearchIndexDir(dataDir string) string {
	return filepath.Join(dataDir, "search_index")
}

// IndexPath returns the SQLite index database path.
func IndexPath(dataDir string) string {
	return filepath.Join(SearchIndexDir(dataDir), "index.db")
}

// LockPath returns the cross-process indexing lock file.
func LockPath(dataDir string) string {
	return filepath.Join(dataDir, "index.lock")
}

// LogsDir returns the log directory within a data directory.
func LogsDir(dataDir string) string {
	return filepath.Join(dataDir, "logs")
}

// EnsureDirs creates the data directory tree if missing.
func EnsureDirs(dataDir string) error {
	for _, dir := range []string{dataDir, SearchIndexDir(dataDir), LogsDir(dataDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
