package opdscli

import (
	"sort"
	"strings"
)

// Link relations with special meaning in OPDS feeds.
const (
	RelAcquisitionPrefix = "http://opds-spec.org/acquisition"
	RelSortNew           = "http://opds-spec.org/sort/new"
	RelSortPopular       = "http://opds-spec.org/sort/popular"
	RelSubsection        = "subsection"
	RelNext              = "next"
	RelSearch            = "search"
)

// AcquisitionLink is one downloadable representation of a book.
type AcquisitionLink struct {
	Href string `json:"href"`
	Type string `json:"type"`
	Rel  string `json:"rel"`
}

// Entry is a book entry from an OPDS feed.
// An Entry is only ever returned by the engine if it has at least one
// acquisition link; entries without one are navigation placeholders.
type Entry struct {
	Title   string `json:"title"`
	Author  string `json:"author"`  // Author names joined by ", ".
	Summary string `json:"summary"` // Falls back to the entry's content.
	Updated string `json:"updated"` // Raw timestamp; compared lexically.
	ID      string `json:"id"`

	// Formats holds short format tags in first-seen order of AcquisitionLinks.
	Formats          []string          `json:"formats"`
	AcquisitionLinks []AcquisitionLink `json:"acquisitionLinks"`
}

// AddAcquisitionLink appends link if its media type is a known format and
// records the format tag. Returns false if the link is not an acquisition candidate.
func (e *Entry) AddAcquisitionLink(link AcquisitionLink) bool {
	format, ok := FormatForMediaType(link.Type)
	if !ok {
		return false
	}
	e.AcquisitionLinks = append(e.AcquisitionLinks, link)
	for _, f := range e.Formats {
		if f == format {
			return true
		}
	}
	e.Formats = append(e.Formats, format)
	return true
}

// IsBook reports whether the entry carries at least one acquisition link.
func (e *Entry) IsBook() bool {
	return len(e.AcquisitionLinks) > 0
}

// NavigationLink is a feed-to-feed edge: a subsection, sort view, or other catalog page.
type NavigationLink struct {
	Href  string `json:"href"`
	Title string `json:"title"` // Title of the entry that carried the link.
	Rel   string `json:"rel"`
}

// Feed is the result of parsing a single catalog document.
type Feed struct {
	Entries    []*Entry
	Navigation []NavigationLink

	// Next is the resolved rel="next" link, empty on the last page.
	Next string

	// SearchDescription is the resolved href of the feed's OpenSearch
	// description link, empty if the feed advertises none.
	SearchDescription string
}

// FindByTitle returns the first entry whose title equals title, ignoring case.
func FindByTitle(entries []*Entry, title string) *Entry {
	for _, e := range entries {
		if strings.EqualFold(e.Title, title) {
			return e
		}
	}
	return nil
}

// MatchEntries returns entries whose title, author or summary contains query,
// ignoring case.
func MatchEntries(entries []*Entry, query string) []*Entry {
	q := strings.ToLower(query)
	var matched []*Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Title), q) ||
			strings.Contains(strings.ToLower(e.Author), q) ||
			strings.Contains(strings.ToLower(e.Summary), q) {
			matched = append(matched, e)
		}
	}
	return matched
}

// SortByUpdated orders entries newest first by their raw updated timestamp.
func SortByUpdated(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Updated > entries[j].Updated
	})
}
