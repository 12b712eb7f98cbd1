// Package filetype maps file extensions to extraction handler classes.
// The table is static and consulted by both the crawler (admission) and the
// extractor (dispatch), so the two always agree on what is indexable.
package filetype

import (
	"path/filepath"
	"strings"
)

// Class identifies which extraction handler is responsible for a file.
type Class string

const (
	// ClassPlainText covers code, markup, config and data files read as text.
	ClassPlainText Class = "plaintext"
	// ClassPDF covers PDF documents.
	ClassPDF Class = "pdf"
	// ClassWordDoc covers Word (.docx) documents.
	ClassWordDoc Class = "worddoc"
	// ClassUnsupported covers everything else; such files are never indexed.
	ClassUnsupported Class = "unsupported"
)

// plainTextExtensions is the supported-format table for text-like files.
// It mirrors the product's documented format list: documents and notes,
// data and config, web, and common text-based source languages.
var plainTextExtensions = map[string]struct{}{
	// Documents & notes
	".txt": {}, ".md": {}, ".rst": {}, ".tex": {}, ".latex": {}, ".org": {},
	".adoc": {}, ".asciidoc": {},
	// Data & config
	".json": {}, ".yml": {}, ".yaml": {}, ".toml": {}, ".ini": {}, ".cfg": {},
	".conf": {}, ".xml": {}, ".csv": {},
	// Web
	".html": {}, ".htm": {}, ".xhtml": {}, ".css": {}, ".scss": {}, ".sass": {},
	".less": {},
	// JavaScript / TypeScript
	".js": {}, ".jsx": {}, ".mjs": {}, ".cjs": {}, ".ts": {}, ".tsx": {},
	".mts": {}, ".cts": {}, ".vue": {},
	// Python
	".py": {}, ".pyw": {}, ".pyi": {},
	// Other text-based source
	".c": {}, ".h": {}, ".cpp": {}, ".hpp": {}, ".cc": {}, ".cxx": {},
	".java": {}, ".kt": {}, ".kts": {}, ".rs": {}, ".go": {}, ".r": {},
	".rb": {}, ".php": {}, ".swift": {}, ".sql": {}, ".sh": {}, ".bash": {},
	".zsh": {}, ".ps1": {}, ".bat": {}, ".cmd": {}, ".rq": {}, ".sparql": {},
	// Other
	".log": {}, ".diff": {}, ".patch": {}, ".svg": {}, ".graphql": {}, ".gql": {},
}

// Detect returns the handler class for a file path based on its extension.
func Detect(path string) Class {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return ClassPDF
	case ".docx":
		return ClassWordDoc
	}
	if _, ok := plainTextExtensions[ext]; ok {
		return ClassPlainText
	}
	return ClassUnsupported
}

// Indexable reports whether a file path has a supported extension.
func Indexable(path string) bool {
	return Detect(path) != ClassUnsupported
}

// LargeFile reports whether the class is exempt from the plain-text
// admission cap. PDF and Word documents routinely exceed it; the extractor
// bounds their cost with page and char limits instead.
func LargeFile(c Class) bool {
	return c == ClassPDF || c == ClassWordDoc
}
