package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	enginerr "github.com/loadsearch/loadsearch/internal/errors"
	"github.com/loadsearch/loadsearch/internal/filetype"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestExtractPlainTextUTF8(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("İstanbul toplantı notları\nikinci satır"))

	res := Extract(path, filetype.ClassPlainText, DefaultLimits())
	require.Equal(t, StatusOK, res.Status)
	assert.Contains(t, res.Text, "İstanbul")
	assert.Contains(t, res.Text, "ikinci satır")
}

func TestExtractPlainTextEmpty(t *testing.T) {
	path := writeFile(t, "empty.txt", nil)

	res := Extract(path, filetype.ClassPlainText, DefaultLimits())
	require.Equal(t, StatusOK, res.Status)
	assert.Empty(t, res.Text)
}

func TestExtractPlainTextWindows1254(t *testing.T) {
	raw, err := charmap.Windows1254.NewEncoder().Bytes([]byte("ışık görüş İstanbul"))
	require.NoError(t, err)
	require.False(t, utf8.Valid(raw))
	path := writeFile(t, "legacy.txt", raw)

	res := Extract(path, filetype.ClassPlainText, DefaultLimits())
	require.Equal(t, StatusOK, res.Status)
	assert.True(t, utf8.ValidString(res.Text))
	// ASCII bytes survive any of the single-byte fallback decoders.
	assert.Contains(t, res.Text, "stanbul")
	assert.NotEmpty(t, res.Text)
}

func TestExtractPlainTextTruncated(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxTextChars = 10
	path := writeFile(t, "big.txt", []byte(strings.Repeat("kelime ", 100)))

	res := Extract(path, filetype.ClassPlainText, limits)
	require.Equal(t, StatusTruncated, res.Status)
	assert.Len(t, []rune(res.Text), 10)
	assert.Equal(t, enginerr.ErrCodeTruncated, res.Code)
	assert.Contains(t, res.Reason, "cap")
}

func TestExtractMissingFile(t *testing.T) {
	res := Extract(filepath.Join(t.TempDir(), "gone.txt"), filetype.ClassPlainText, DefaultLimits())
	require.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, enginerr.ErrCodeFileNotFound, res.Code)
	assert.NotEmpty(t, res.Reason)
}

func TestExtractUnsupportedClass(t *testing.T) {
	path := writeFile(t, "movie.mp4", []byte{0x00, 0x01})

	res := Extract(path, filetype.ClassUnsupported, DefaultLimits())
	assert.Equal(t, StatusSkipped, res.Status)
	assert.Equal(t, enginerr.ErrCodeUnsupported, res.Code)
	assert.Empty(t, res.Text)
}

func TestExtractPDFGarbageFailsWithChain(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("not a pdf at all"))

	res := Extract(path, filetype.ClassPDF, DefaultLimits())
	require.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, enginerr.ErrCodeExtractionFailed, res.Code)
	// Both backends report their attempt.
	assert.Contains(t, res.Reason, "ledongthuc")
	assert.Contains(t, res.Reason, "dslipak")
}

func TestExtractWordDocGarbageFails(t *testing.T) {
	path := writeFile(t, "broken.docx", []byte("not a zip archive"))

	res := Extract(path, filetype.ClassWordDoc, DefaultLimits())
	require.Equal(t, StatusFailed, res.Status)
	assert.NotEmpty(t, res.Reason)
}

func TestPageLimit(t *testing.T) {
	limit, truncated := pageLimit(120, 50)
	assert.Equal(t, 50, limit)
	assert.True(t, truncated)

	limit, truncated = pageLimit(12, 50)
	assert.Equal(t, 12, limit)
	assert.False(t, truncated)

	limit, truncated = pageLimit(12, 0)
	assert.Equal(t, 12, limit)
	assert.False(t, truncated)
}

func TestPDFPageCapThreshold(t *testing.T) {
	limits := DefaultLimits()

	// Under or at the byte threshold the whole document is read.
	assert.Zero(t, pdfPageCap(1024, limits))
	assert.Zero(t, pdfPageCap(limits.PDFByteThreshold, limits))

	// Above it the page limit engages.
	assert.Equal(t, limits.PDFPageLimit, pdfPageCap(limits.PDFByteThreshold+1, limits))
}
