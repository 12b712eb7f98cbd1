package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	enginerr "github.com/loadsearch/loadsearch/internal/errors"
)

// extractWordDoc pulls text from a .docx archive: every body item that can
// render itself as text contributes one block, including table cells.
func extractWordDoc(path string, limits Limits) Result {
	f, err := os.Open(path)
	if err != nil {
		return *failedIO(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return *failedIO(path, err)
	}

	doc, err := parseWordDoc(f, info.Size())
	if err != nil {
		return Result{
			Status: StatusFailed,
			Code:   enginerr.ErrCodeExtractionFailed,
			Reason: err.Error(),
		}
	}

	var blocks []string
	for _, item := range doc.Document.Body.Items {
		s, ok := item.(fmt.Stringer)
		if !ok {
			continue
		}
		if block := strings.TrimSpace(s.String()); block != "" {
			blocks = append(blocks, block)
		}
	}

	text := strings.Join(blocks, "\n")
	text, truncated := capText(text, limits)
	if truncated {
		return Result{
			Text:   text,
			Status: StatusTruncated,
			Code:   enginerr.ErrCodeTruncated,
			Reason: fmt.Sprintf("text cap of %d chars reached", limits.MaxTextChars),
		}
	}
	return Result{Text: text, Status: StatusOK}
}

// parseWordDoc isolates archive parser panics on malformed files.
func parseWordDoc(f *os.File, size int64) (doc *docx.Docx, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()
	return docx.Parse(f, size)
}
