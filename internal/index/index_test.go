package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enginerr "github.com/loadsearch/loadsearch/internal/errors"
	"github.com/loadsearch/loadsearch/internal/extract"
	"github.com/loadsearch/loadsearch/internal/store"
)

type fixture struct {
	root   string
	store  *store.Store
	runner *Runner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	root := t.TempDir()
	return &fixture{
		root:   root,
		store:  s,
		runner: NewRunner(s, Options{Roots: []string{root}, Workers: 2}),
	}
}

func (f *fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.root, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunFullIndexesFiles(t *testing.T) {
	f := newFixture(t)
	f.write(t, "rapor.txt", "yıllık bütçe raporu")
	f.write(t, "plan.md", "tatil planı")

	summary, err := f.runner.Run(context.Background(), ModeFull)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Scanned)
	assert.Equal(t, 2, summary.Indexed)
	assert.Zero(t, summary.Failed)

	postings, err := f.store.Lookup(context.Background(), "bütçe")
	require.NoError(t, err)
	require.Len(t, postings, 1)

	rec, err := f.store.Record(context.Background(), filepath.Join(f.root, "rapor.txt"))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "ok", rec.Status)
	assert.NotEmpty(t, rec.Fingerprint)
}

func TestRunFullIsIdempotent(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "rapor.txt", "yıllık bütçe raporu")
	f.write(t, "plan.md", "tatil planı")

	_, err := f.runner.Run(context.Background(), ModeFull)
	require.NoError(t, err)
	before, err := f.store.Record(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, before)

	// Nothing changed, so the second full run re-extracts nothing and the
	// records come out byte for byte the same.
	summary, err := f.runner.Run(context.Background(), ModeFull)
	require.NoError(t, err)
	assert.Zero(t, summary.Indexed)
	assert.Equal(t, 2, summary.Skipped)

	after, err := f.store.Record(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRunIncrementalSkipsUnchanged(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.txt", "birinci")
	f.write(t, "b.txt", "ikinci")

	_, err := f.runner.Run(context.Background(), ModeFull)
	require.NoError(t, err)

	summary, err := f.runner.Run(context.Background(), ModeIncremental)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Scanned)
	assert.Zero(t, summary.Indexed)
	assert.Equal(t, 2, summary.Skipped)
}

func TestRunIncrementalReindexesModified(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "a.txt", "eski kelimeler")

	_, err := f.runner.Run(context.Background(), ModeFull)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("yepyeni kelimeler"), 0o644))
	// Push mtime forward so second-precision comparison sees the change.
	future := time.Now().Add(5 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	summary, err := f.runner.Run(context.Background(), ModeIncremental)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Indexed)

	postings, err := f.store.Lookup(context.Background(), "yepyeni")
	require.NoError(t, err)
	assert.Len(t, postings, 1)

	postings, err = f.store.Lookup(context.Background(), "eski")
	require.NoError(t, err)
	assert.Empty(t, postings)
}

func TestRunIncrementalFingerprintShortCircuit(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "a.txt", "sabit içerik")

	_, err := f.runner.Run(context.Background(), ModeFull)
	require.NoError(t, err)

	// Touch mtime only; content is identical so no re-extraction happens.
	future := time.Now().Add(5 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	summary, err := f.runner.Run(context.Background(), ModeIncremental)
	require.NoError(t, err)
	assert.Zero(t, summary.Indexed)
	assert.Equal(t, 1, summary.Skipped)

	rec, err := f.store.Record(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, future.Unix(), rec.ModTime.Unix())
}

func TestRunSkipsFilesWithNoTokens(t *testing.T) {
	f := newFixture(t)
	f.write(t, "bos.txt", "")
	f.write(t, "noktalar.txt", "... !!! ???")

	summary, err := f.runner.Run(context.Background(), ModeFull)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Scanned)
	assert.Zero(t, summary.Indexed)
	assert.Equal(t, 2, summary.Skipped)

	// Neither file gets a catalog record: ok records always carry postings.
	records, err := f.store.Records(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRunDropsRecordWhenContentEmptied(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "a.txt", "dolu içerik")

	_, err := f.runner.Run(context.Background(), ModeFull)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	future := time.Now().Add(5 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	summary, err := f.runner.Run(context.Background(), ModeIncremental)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)

	rec, err := f.store.Record(context.Background(), path)
	require.NoError(t, err)
	assert.Nil(t, rec)

	postings, err := f.store.Lookup(context.Background(), "dolu")
	require.NoError(t, err)
	assert.Empty(t, postings)
}

func TestRunExtractsPDFOverPageCapThreshold(t *testing.T) {
	f := newFixture(t)
	f.runner = NewRunner(f.store, Options{
		Roots:   []string{f.root},
		Workers: 2,
		Limits: extract.Limits{
			MaxTextChars:     1000,
			PDFByteThreshold: 512,
			PDFPageLimit:     50,
		},
	})
	f.write(t, "buyuk.pdf", string(make([]byte, 2048)))

	// A PDF past the byte threshold still reaches extraction; this one is
	// garbage so it lands as a failed record rather than no record at all.
	summary, err := f.runner.Run(context.Background(), ModeFull)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Scanned)
	assert.Equal(t, 1, summary.Failed)

	rec, err := f.store.Record(context.Background(), filepath.Join(f.root, "buyuk.pdf"))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "failed", rec.Status)
}

func TestRunRemovesDeletedFiles(t *testing.T) {
	f := newFixture(t)
	keep := f.write(t, "kalan.txt", "kalıcı")
	gone := f.write(t, "giden.txt", "geçici")

	_, err := f.runner.Run(context.Background(), ModeFull)
	require.NoError(t, err)

	require.NoError(t, os.Remove(gone))

	summary, err := f.runner.Run(context.Background(), ModeIncremental)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Deleted)

	rec, err := f.store.Record(context.Background(), gone)
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = f.store.Record(context.Background(), keep)
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestRunContainsPerFileFailures(t *testing.T) {
	f := newFixture(t)
	f.write(t, "iyi.txt", "sağlam içerik")
	f.write(t, "bozuk.docx", "bu bir zip arşivi değil")

	summary, err := f.runner.Run(context.Background(), ModeFull)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Indexed)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.FileErrors, 1)
	assert.Contains(t, summary.FileErrors[0].Path, "bozuk.docx")
	assert.Equal(t, enginerr.ErrCodeExtractionFailed, summary.FileErrors[0].Code)

	// The failure is recorded so the next incremental run skips it.
	rec, err := f.store.Record(context.Background(), filepath.Join(f.root, "bozuk.docx"))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "failed", rec.Status)

	summary, err = f.runner.Run(context.Background(), ModeIncremental)
	require.NoError(t, err)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, 2, summary.Skipped)
}

func TestRunLockContention(t *testing.T) {
	f := newFixture(t)
	lockPath := filepath.Join(t.TempDir(), "index.lock")
	f.runner = NewRunner(f.store, Options{Roots: []string{f.root}, LockPath: lockPath})

	other := flock.New(lockPath)
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer other.Unlock()

	_, err = f.runner.Run(context.Background(), ModeFull)
	assert.ErrorIs(t, err, ErrRunInProgress)
}

func TestRunCancellation(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.txt", "içerik")

	before, err := f.store.Version(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.runner.Run(ctx, ModeFull)
	require.Error(t, err)

	// Nothing was committed.
	after, err := f.store.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, StateIdle, f.runner.State())
}

func TestModeAndStateStrings(t *testing.T) {
	assert.Equal(t, "full", ModeFull.String())
	assert.Equal(t, "incremental", ModeIncremental.String())
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "committing", StateCommitting.String())
}
