// Package levenshtein ranks entries by title similarity using
// github.com/agnivade/levenshtein.
package levenshtein

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/fwojciec/opdscli"
)

// Ensure Ranker implements opdscli.Ranker at compile time.
var _ opdscli.Ranker = (*Ranker)(nil)

// Ranker defaults.
const (
	// DefaultLimit is the number of suggestions returned.
	DefaultLimit = 5
	// DefaultThreshold is the score a title must exceed to be suggested.
	DefaultThreshold = 30
)

// Ranker suggests entries whose titles are close to a query.
// A Limit of zero or less means DefaultLimit.
type Ranker struct {
	Limit     int
	Threshold int
}

// NewRanker creates a Ranker with the default limit and threshold.
func NewRanker() *Ranker {
	return &Ranker{Limit: DefaultLimit, Threshold: DefaultThreshold}
}

type scored struct {
	entry *opdscli.Entry
	score int
}

// Rank scores every title against query and returns the best Limit entries
// scoring above Threshold, highest first. Ties keep input order.
func (r *Ranker) Rank(query string, entries []*opdscli.Entry) []*opdscli.Entry {
	candidates := make([]scored, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, scored{entry: e, score: Score(query, e.Title)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	limit := r.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var ranked []*opdscli.Entry
	for _, c := range candidates {
		if len(ranked) == limit || c.score <= r.Threshold {
			break
		}
		ranked = append(ranked, c.entry)
	}
	return ranked
}

// Score returns the case-insensitive similarity of a and b from 0 to 100,
// derived from their edit distance relative to the longer string.
func Score(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 100 - dist*100/longest
}
