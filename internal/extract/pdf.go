package extract

import (
	"fmt"
	"os"
	"strings"

	dslipak "github.com/dslipak/pdf"
	ledongthuc "github.com/ledongthuc/pdf"

	enginerr "github.com/loadsearch/loadsearch/internal/errors"
)

// pdfStrategy is one extraction backend. Strategies run in order until one
// yields usable text; every failed attempt's reason is retained so a fully
// failed file reports the whole chain.
type pdfStrategy struct {
	name string
	run  func(path string, maxPages, maxChars int) (text string, truncated bool, err error)
}

var pdfStrategies = []pdfStrategy{
	{name: "ledongthuc", run: ledongthucExtract},
	{name: "dslipak", run: dslipakExtract},
}

// extractPDF pulls plain text from a PDF. Files above the byte threshold
// are read only up to the page limit and marked truncated.
func extractPDF(path string, limits Limits) Result {
	info, err := os.Stat(path)
	if err != nil {
		return *failedIO(path, err)
	}

	maxPages := pdfPageCap(info.Size(), limits)

	var attempts []string
	for _, s := range pdfStrategies {
		text, truncated, err := runStrategy(s, path, maxPages, limits.MaxTextChars)
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: %v", s.name, err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			attempts = append(attempts, fmt.Sprintf("%s: no text content", s.name))
			continue
		}
		text, overCap := capText(text, limits)
		if truncated || overCap {
			return Result{
				Text:   text,
				Status: StatusTruncated,
				Code:   enginerr.ErrCodeTruncated,
				Reason: fmt.Sprintf("%s: page or size cap applied", s.name),
			}
		}
		return Result{Text: text, Status: StatusOK}
	}
	return Result{
		Status: StatusFailed,
		Code:   enginerr.ErrCodeExtractionFailed,
		Reason: strings.Join(attempts, "; "),
	}
}

// pdfPageCap returns the page limit for a PDF of the given size, zero when
// the whole document is read. The cap only engages above the byte
// threshold; smaller files are extracted in full.
func pdfPageCap(size int64, limits Limits) int {
	if limits.PDFByteThreshold > 0 && size > limits.PDFByteThreshold {
		return limits.PDFPageLimit
	}
	return 0
}

// runStrategy isolates backend panics, which corrupt PDFs are known to
// provoke, into ordinary errors.
func runStrategy(s pdfStrategy, path string, maxPages, maxChars int) (text string, truncated bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()
	return s.run(path, maxPages, maxChars)
}

func ledongthucExtract(path string, maxPages, maxChars int) (string, bool, error) {
	f, r, err := ledongthuc.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	total := r.NumPage()
	limit, truncated := pageLimit(total, maxPages)

	var b strings.Builder
	for i := 1; i <= limit; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
		if b.Len() > maxChars*4 {
			truncated = true
			break
		}
	}
	return b.String(), truncated, nil
}

func dslipakExtract(path string, maxPages, maxChars int) (string, bool, error) {
	r, err := dslipak.Open(path)
	if err != nil {
		return "", false, err
	}

	total := r.NumPage()
	limit, truncated := pageLimit(total, maxPages)

	var b strings.Builder
	for i := 1; i <= limit; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
		if b.Len() > maxChars*4 {
			truncated = true
			break
		}
	}
	return b.String(), truncated, nil
}

func pageLimit(total, maxPages int) (int, bool) {
	if maxPages > 0 && total > maxPages {
		return maxPages, true
	}
	return total, false
}
