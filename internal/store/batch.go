package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/loadsearch/loadsearch/internal/analysis"
)

// Batch accumulates document changes inside one writer transaction.
// Nothing becomes visible to readers until Commit, which also bumps the
// index version so caches invalidate.
type Batch struct {
	tx   *sql.Tx
	done bool
}

// Begin starts a write batch. Only one batch runs at a time; the single
// writer connection blocks a second Begin until the first finishes.
func (s *Store) Begin(ctx context.Context) (*Batch, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	return &Batch{tx: tx}, nil
}

// Upsert replaces the catalog record and postings for one document.
// Tokens carry the folded terms with their ordinal positions.
func (b *Batch) Upsert(doc Document, tokens []analysis.Token) error {
	if _, err := b.tx.Exec(`DELETE FROM postings WHERE path = ?`, doc.Path); err != nil {
		return fmt.Errorf("clear postings for %s: %w", doc.Path, err)
	}

	_, err := b.tx.Exec(`
		INSERT INTO documents (path, size, mtime, fingerprint, status, reason, content, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			mtime = excluded.mtime,
			fingerprint = excluded.fingerprint,
			status = excluded.status,
			reason = excluded.reason,
			content = excluded.content,
			indexed_at = excluded.indexed_at`,
		doc.Path, doc.Size, doc.ModTime.Unix(), doc.Fingerprint,
		doc.Status, doc.Reason, doc.Content, doc.IndexedAt.Unix())
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.Path, err)
	}

	if len(tokens) == 0 {
		return nil
	}

	grouped := groupTerms(tokens)
	stmt, err := b.tx.Prepare(`INSERT INTO postings (term, path, tf, positions) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare postings insert: %w", err)
	}
	defer stmt.Close()

	for _, g := range grouped {
		if _, err := stmt.Exec(g.term, doc.Path, len(g.positions), encodePositions(g.positions)); err != nil {
			return fmt.Errorf("insert posting %s/%s: %w", g.term, doc.Path, err)
		}
	}
	return nil
}

// Touch refreshes size and mtime on an existing record whose content
// fingerprint did not move, leaving postings untouched.
func (b *Batch) Touch(path string, size int64, modTime time.Time) error {
	if _, err := b.tx.Exec(`UPDATE documents SET size = ?, mtime = ? WHERE path = ?`,
		size, modTime.Unix(), path); err != nil {
		return fmt.Errorf("touch document %s: %w", path, err)
	}
	return nil
}

// Remove deletes a document and its postings.
func (b *Batch) Remove(path string) error {
	if _, err := b.tx.Exec(`DELETE FROM postings WHERE path = ?`, path); err != nil {
		return fmt.Errorf("remove postings for %s: %w", path, err)
	}
	if _, err := b.tx.Exec(`DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("remove document %s: %w", path, err)
	}
	return nil
}

// Commit publishes the batch atomically and bumps the index version.
func (b *Batch) Commit() error {
	if b.done {
		return fmt.Errorf("batch already finished")
	}
	b.done = true

	_, err := b.tx.Exec(`
		UPDATE meta SET value = CAST(CAST(value AS INTEGER) + 1 AS TEXT)
		WHERE key = 'index_version'`)
	if err != nil {
		_ = b.tx.Rollback()
		return fmt.Errorf("bump index version: %w", err)
	}
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Rollback discards the batch. Safe to call after Commit.
func (b *Batch) Rollback() error {
	if b.done {
		return nil
	}
	b.done = true
	return b.tx.Rollback()
}

type termGroup struct {
	term      string
	positions []int
}

// groupTerms aggregates tokens into per-term sorted position lists.
func groupTerms(tokens []analysis.Token) []termGroup {
	byTerm := make(map[string][]int)
	for _, tok := range tokens {
		byTerm[tok.Term] = append(byTerm[tok.Term], tok.Position)
	}
	groups := make([]termGroup, 0, len(byTerm))
	for term, positions := range byTerm {
		sort.Ints(positions)
		groups = append(groups, termGroup{term: term, positions: positions})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].term < groups[j].term })
	return groups
}
