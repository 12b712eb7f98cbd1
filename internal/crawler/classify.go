package crawler

import (
	"sort"
	"time"
)

// Change classifies a crawled file against the stored catalog.
type Change int

const (
	// ChangeNew means the path has no stored record.
	ChangeNew Change = iota
	// ChangeModified means size or mtime differ from the stored record.
	// A fingerprint check downstream may still prove the content unchanged.
	ChangeModified
	// ChangeUnchanged means size and mtime both match.
	ChangeUnchanged
)

func (c Change) String() string {
	switch c {
	case ChangeNew:
		return "new"
	case ChangeModified:
		return "modified"
	default:
		return "unchanged"
	}
}

// Stored is the catalog view of a previously indexed file.
type Stored struct {
	Size        int64
	ModTime     time.Time
	Fingerprint string
}

// Classify compares one crawled file against its stored record, if any.
// Modification times are compared at second precision since filesystems
// differ in sub-second resolution.
func Classify(stored *Stored, f FileInfo) Change {
	if stored == nil {
		return ChangeNew
	}
	if stored.Size == f.Size && stored.ModTime.Unix() == f.ModTime.Unix() {
		return ChangeUnchanged
	}
	return ChangeModified
}

// Deleted returns the stored paths absent from the crawl, sorted for
// deterministic processing order.
func Deleted(stored map[string]Stored, seen map[string]struct{}) []string {
	var gone []string
	for path := range stored {
		if _, ok := seen[path]; !ok {
			gone = append(gone, path)
		}
	}
	sort.Strings(gone)
	return gone
}
