// Package models defines the data shared between the gallery build, the embedding index and search.
package models

import "time"

// SourcePhoto is a raw photo discovered in the source directory. Name is unique within that directory.
type SourcePhoto struct {
	Name      string
	Path      string
	Date      *time.Time // calendar date from embedded metadata; nil when none was found
	Discovery int        // position in the sorted directory listing
}

// HasDate reports whether a date was extracted for the photo.
func (p SourcePhoto) HasDate() bool {
	return p.Date != nil
}

// CaptionEntry is one entry of the caption mapping.
type CaptionEntry struct {
	Key     string
	Caption string
	Extra   []string // trailing values of the array form, e.g. category
}
