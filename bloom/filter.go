// Package bloom provides approximate set membership for crawl statistics
// using Bloom filters.
package bloom

import (
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/opdscli"
)

// Filter wraps a Bloom filter keyed by strings.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add adds a key to the filter.
func (f *Filter) Add(key string) {
	f.f.AddString(key)
}

// Test returns true if the key might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(key string) bool {
	return f.f.TestString(key)
}

// TestAndAdd reports whether key might already be present, then adds it.
func (f *Filter) TestAndAdd(key string) bool {
	return f.f.TestAndAddString(key)
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

// EntryKey identifies an entry across feeds: its Atom id when present,
// otherwise its title and first acquisition href.
func EntryKey(e *opdscli.Entry) string {
	if e.ID != "" {
		return "id:" + e.ID
	}
	key := "title:" + e.Title
	if len(e.AcquisitionLinks) > 0 {
		key += "|" + e.AcquisitionLinks[0].Href
	}
	return key
}
