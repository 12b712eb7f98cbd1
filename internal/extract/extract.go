// Package extract converts file bytes into normalized Unicode text.
// Dispatch is by handler class from the filetype table; each format failure
// is isolated into the Result status, never a process error.
package extract

import (
	"os"

	enginerr "github.com/loadsearch/loadsearch/internal/errors"
	"github.com/loadsearch/loadsearch/internal/filetype"
)

// Status classifies the outcome of extracting one file.
type Status string

const (
	// StatusOK means the full text was extracted.
	StatusOK Status = "ok"
	// StatusTruncated means a size or page cap cut extraction short;
	// the partial text is still indexed.
	StatusTruncated Status = "truncated"
	// StatusFailed means no text could be extracted.
	StatusFailed Status = "failed"
	// StatusSkipped means the extension class is unsupported.
	StatusSkipped Status = "skipped-unsupported"
)

// Result is the outcome of extracting one file.
type Result struct {
	Text   string
	Status Status
	// Code is the taxonomy code for a non-ok outcome (ERR_2xx for IO,
	// ERR_3xx for extraction), empty for ok.
	Code string
	// Reason describes the failure or truncation, including each failed
	// strategy attempt for PDF chains.
	Reason string
}

// Limits bounds extraction work so no single file can stall a run.
type Limits struct {
	// MaxTextChars caps the amount of text retained per document.
	MaxTextChars int
	// PDFByteThreshold is the file size above which the page cap applies.
	PDFByteThreshold int64
	// PDFPageLimit is the page cap for oversized PDFs.
	PDFPageLimit int
}

// DefaultLimits returns the product defaults: 500k chars of text, and a
// 50-page cap for PDFs over 10 MB.
func DefaultLimits() Limits {
	return Limits{
		MaxTextChars:     500_000,
		PDFByteThreshold: 10 * 1024 * 1024,
		PDFPageLimit:     50,
	}
}

// Extract produces normalized text for the file at path according to its
// handler class. It is a pure function of the file bytes: no side effects,
// and every failure mode is reported through the Result.
func Extract(path string, class filetype.Class, limits Limits) Result {
	if limits.MaxTextChars <= 0 {
		limits = DefaultLimits()
	}

	switch class {
	case filetype.ClassPlainText:
		return extractPlainText(path, limits)
	case filetype.ClassPDF:
		return extractPDF(path, limits)
	case filetype.ClassWordDoc:
		return extractWordDoc(path, limits)
	default:
		return Result{Status: StatusSkipped, Code: enginerr.ErrCodeUnsupported}
	}
}

// readRaw reads the file, mapping I/O problems to a failed Result.
func readRaw(path string) ([]byte, *Result) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, failedIO(path, err)
	}
	return raw, nil
}

// failedIO builds a failed Result classified by the IO taxonomy.
func failedIO(path string, err error) *Result {
	ee := enginerr.FromIO(path, err)
	return &Result{Status: StatusFailed, Code: ee.Code, Reason: err.Error()}
}

// capText applies the char cap, reporting whether anything was dropped.
func capText(text string, limits Limits) (string, bool) {
	runes := []rune(text)
	if len(runes) <= limits.MaxTextChars {
		return text, false
	}
	return string(runes[:limits.MaxTextChars]), true
}
