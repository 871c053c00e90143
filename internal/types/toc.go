// Package types provides shared types used across multiple packages.
// This package has no dependencies on other binder packages to avoid import cycles.
package types

import "fmt"

// TocEntry is one row of the generated table of contents.
// Entries are ordered; insertion order is directory-traversal order and
// defines document order.
type TocEntry struct {
	Title string // section title, derived from folder/file name
	Level int    // heading level, 1-based
	Page  int    // 1-based page number, assigned after provisional merge
}

// ValidateTocSequence checks the structural invariants of a TOC sequence:
// the first entry sits at level 1, no entry is more than one level deeper
// than its predecessor, and page numbers are monotonically non-decreasing.
// The level rule matches outline construction: after returning to a
// shallower level, the deeper nesting context is gone.
func ValidateTocSequence(entries []TocEntry) error {
	prevLevel := 0
	lastPage := 0
	for i, e := range entries {
		if e.Level < 1 {
			return fmt.Errorf("toc entry %d (%q): level %d below 1", i, e.Title, e.Level)
		}
		if e.Level > prevLevel+1 {
			return fmt.Errorf("toc entry %d (%q): level jumps from %d to %d", i, e.Title, prevLevel, e.Level)
		}
		prevLevel = e.Level
		if e.Page != 0 {
			if e.Page < lastPage {
				return fmt.Errorf("toc entry %d (%q): page %d precedes page %d", i, e.Title, e.Page, lastPage)
			}
			lastPage = e.Page
		}
	}
	return nil
}

// OffsetTocPages returns a copy of entries with each page number shifted by
// offset, clamped to a minimum of 1. Used when the generated TOC occupies
// more pages than the collector assumed.
func OffsetTocPages(entries []TocEntry, offset int) []TocEntry {
	out := make([]TocEntry, len(entries))
	copy(out, entries)
	if offset == 0 {
		return out
	}
	for i := range out {
		out[i].Page += offset
		if out[i].Page < 1 {
			out[i].Page = 1
		}
	}
	return out
}
