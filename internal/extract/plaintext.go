package extract

import (
	"fmt"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"

	enginerr "github.com/loadsearch/loadsearch/internal/errors"
)

// detectionConfidence is the minimum chardet confidence before we trust a
// detected charset over the Turkish-local fallbacks.
const detectionConfidence = 70

// extractPlainText decodes a text file into UTF-8. Valid UTF-8 passes
// through untouched; otherwise charset detection runs first, then the
// legacy Turkish encodings, so files saved under Windows-1254 or
// ISO-8859-9 still index correctly.
func extractPlainText(path string, limits Limits) Result {
	raw, failed := readRaw(path)
	if failed != nil {
		return *failed
	}
	if len(raw) == 0 {
		return Result{Status: StatusOK}
	}

	text := decode(raw)
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

func decode(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	if enc := detectEncoding(raw); enc != nil {
		if out, err := enc.NewDecoder().Bytes(raw); err == nil && utf8.Valid(out) {
			return string(out)
		}
	}
	// Turkish legacy encodings, most common first. Single-byte decoders
	// accept any input, so the first candidate wins.
	for _, enc := range []encoding.Encoding{charmap.Windows1254, charmap.ISO8859_9} {
		if out, err := enc.NewDecoder().Bytes(raw); err == nil && utf8.Valid(out) {
			return string(out)
		}
	}
	// Lossy last resort: replace undecodable bytes rather than drop the file.
	return string([]rune(string(raw)))
}

func detectEncoding(raw []byte) encoding.Encoding {
	det := chardet.NewTextDetector()
	res, err := det.DetectBest(raw)
	if err != nil || res == nil || res.Confidence < detectionConfidence {
		return nil
	}
	enc, err := ianaindex.IANA.Encoding(res.Charset)
	if err != nil {
		return nil
	}
	return enc
}
