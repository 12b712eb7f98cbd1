package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Lookup returns the posting list for one folded term, most recently
// modified documents first. An unknown term yields an empty list.
func (s *Store) Lookup(ctx context.Context, term string) ([]Posting, error) {
	rows, err := s.reader.QueryContext(ctx, `
		SELECT p.path, p.tf, p.positions, d.mtime
		FROM postings p
		JOIN documents d ON d.path = p.path
		WHERE p.term = ?
		ORDER BY d.mtime DESC, p.path ASC`, term)
	if err != nil {
		return nil, fmt.Errorf("lookup term %q: %w", term, err)
	}
	defer rows.Close()

	var postings []Posting
	for rows.Next() {
		var (
			p     Posting
			blob  []byte
			mtime int64
		)
		if err := rows.Scan(&p.Path, &p.Frequency, &blob, &mtime); err != nil {
			return nil, fmt.Errorf("scan posting: %w", err)
		}
		if p.Positions, err = decodePositions(blob); err != nil {
			return nil, fmt.Errorf("posting %s/%s: %w", term, p.Path, err)
		}
		p.ModTime = time.Unix(mtime, 0)
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

// Record returns the catalog entry for path, or nil when unknown.
func (s *Store) Record(ctx context.Context, path string) (*Document, error) {
	row := s.reader.QueryRowContext(ctx, `
		SELECT path, size, mtime, fingerprint, status, reason, content, indexed_at
		FROM documents WHERE path = ?`, path)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load record %s: %w", path, err)
	}
	return doc, nil
}

// Records returns the whole catalog without content, used to diff against
// a fresh crawl.
func (s *Store) Records(ctx context.Context) ([]Document, error) {
	rows, err := s.reader.QueryContext(ctx, `
		SELECT path, size, mtime, fingerprint, status, reason, indexed_at
		FROM documents ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			doc       Document
			mtime     int64
			indexedAt int64
		)
		if err := rows.Scan(&doc.Path, &doc.Size, &mtime, &doc.Fingerprint,
			&doc.Status, &doc.Reason, &indexedAt); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		doc.ModTime = time.Unix(mtime, 0)
		doc.IndexedAt = time.Unix(indexedAt, 0)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Version returns the monotonic commit counter. Any committed batch bumps
// it, so equal versions mean identical index contents.
func (s *Store) Version(ctx context.Context) (int64, error) {
	var raw string
	err := s.reader.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = 'index_version'`).Scan(&raw)
	if err != nil {
		return 0, fmt.Errorf("read index version: %w", err)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse index version %q: %w", raw, err)
	}
	return v, nil
}

// Stats reports index size counters for the status surface.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents`).Scan(&st.Documents); err != nil {
		return st, fmt.Errorf("count documents: %w", err)
	}
	if err := s.reader.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT term), COUNT(*) FROM postings`).Scan(&st.Terms, &st.Postings); err != nil {
		return st, fmt.Errorf("count postings: %w", err)
	}
	var err error
	if st.Version, err = s.Version(ctx); err != nil {
		return st, err
	}
	return st, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var (
		doc       Document
		mtime     int64
		indexedAt int64
	)
	err := row.Scan(&doc.Path, &doc.Size, &mtime, &doc.Fingerprint,
		&doc.Status, &doc.Reason, &doc.Content, &indexedAt)
	if err != nil {
		return nil, err
	}
	doc.ModTime = time.Unix(mtime, 0)
	doc.IndexedAt = time.Unix(indexedAt, 0)
	return &doc, nil
}
