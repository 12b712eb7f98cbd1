// Package store persists the inverted index and document catalog in a
// single SQLite database. One writer connection serializes commits while a
// read-only pool serves lookups; WAL mode gives readers a stable snapshot
// during a commit.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	enginerr "github.com/loadsearch/loadsearch/internal/errors"
)

// Document is one catalog entry. Content holds the extracted text so
// result snippets can be built without re-reading the source file.
type Document struct {
	Path        string
	Size        int64
	ModTime     time.Time
	Fingerprint string
	Status      string
	Reason      string
	Content     string
	IndexedAt   time.Time
}

// Posting is one term occurrence list joined with catalog metadata.
type Posting struct {
	Path      string
	Frequency int
	Positions []int
	ModTime   time.Time
}

// Stats summarizes index contents.
type Stats struct {
	Documents int64
	Terms     int64
	Postings  int64
	Version   int64
}

// Store owns the index database.
type Store struct {
	writer *sql.DB
	reader *sql.DB
	path   string
}

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS documents (
	path        TEXT PRIMARY KEY,
	size        INTEGER NOT NULL,
	mtime       INTEGER NOT NULL,
	fingerprint TEXT NOT NULL,
	status      TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL DEFAULT '',
	indexed_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS postings (
	term      TEXT NOT NULL,
	path      TEXT NOT NULL,
	tf        INTEGER NOT NULL,
	positions BLOB NOT NULL,
	PRIMARY KEY (term, path)
);

CREATE INDEX IF NOT EXISTS idx_postings_path ON postings(path);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

INSERT OR IGNORE INTO schema_version (version) VALUES (1);
INSERT OR IGNORE INTO meta (key, value) VALUES ('index_version', '0');
`

// Open opens or creates the index database at path. An empty path creates
// an in-memory store for tests. Corruption is reported as a fatal store
// error; the caller resets and reindexes.
func Open(path string) (*Store, error) {
	if path == "" {
		db, err := openWriter(":memory:")
		if err != nil {
			return nil, err
		}
		if err := initSchema(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Store{writer: db, reader: db}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	if err := validateIntegrity(path); err != nil {
		slog.Error("index database corrupted",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, enginerr.StoreCorrupt("index database corrupted", err)
	}

	writer, err := openWriter(path + "?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	if err := initSchema(writer); err != nil {
		_ = writer.Close()
		return nil, err
	}

	reader, err := sql.Open("sqlite", path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	if _, err := reader.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = writer.Close()
		_ = reader.Close()
		return nil, fmt.Errorf("configure reader: %w", err)
	}

	return &Store{writer: writer, reader: reader, path: path}, nil
}

func openWriter(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Single writer connection; commits are the one serialization point.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// DSN params may be ignored by the driver, set pragmas explicitly.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -65536",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	return db, nil
}

func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}

// validateIntegrity checks the database before opening it for writing.
// A missing file is fine; it will be created.
func validateIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check: %s", result)
	}
	return nil
}

// Reset removes the database and its WAL sidecar files. The next Open
// starts from an empty index; a full reindex is required afterwards.
func Reset(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

// Close releases both connections.
func (s *Store) Close() error {
	if s.writer != nil && s.path != "" {
		// Fold the WAL back into the main file so the on-disk database is
		// self-contained when the process exits.
		_, _ = s.writer.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	}
	var first error
	if s.reader != nil && s.reader != s.writer {
		if err := s.reader.Close(); err != nil {
			first = err
		}
	}
	if s.writer != nil {
		if err := s.writer.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.writer = nil
	s.reader = nil
	return first
}

// Path returns the database location, empty for in-memory stores.
func (s *Store) Path() string { return s.path }
