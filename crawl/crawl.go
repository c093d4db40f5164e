// Package crawl discovers book entries in OPDS catalogs. It provides the
// depth-bounded Crawler, the OpenSearch-backed Searcher, and the Finder that
// chooses between them.
package crawl

import (
	"context"
	"net/url"

	"github.com/fwojciec/opdscli"
	"github.com/fwojciec/opdscli/bloom"
)

// Ensure Crawler implements opdscli.CrawlService at compile time.
var _ opdscli.CrawlService = (*Crawler)(nil)

// Duplicate estimation configuration.
const (
	// duplicateExpectedEntries is the expected number of entries for Bloom filter sizing.
	duplicateExpectedEntries = 10000
	// duplicateFalsePositiveRate is the acceptable false positive rate of the estimate.
	duplicateFalsePositiveRate = 0.01
)

// Crawler collects book entries by walking a catalog's navigation graph.
// Traversal is sequential and depth-first.
type Crawler struct {
	Fetcher opdscli.Fetcher
	Parser  opdscli.FeedParser

	// RateLimiter, if set, is waited on before every fetch, keyed by host.
	RateLimiter opdscli.DomainLimiter

	// Progress, if set, receives an event per page and one when the crawl ends.
	Progress ProgressFunc
}

// Stats summarizes a crawl.
type Stats struct {
	Pages   int // Pages fetched and parsed.
	Failed  int // Pages pruned after a fetch or parse failure.
	Entries int // Entries collected.

	// Duplicates estimates how many collected entries were already seen
	// earlier in the crawl. It is informational; no entry is dropped.
	Duplicates int
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type    ProgressType
	URL     string
	Depth   int
	Entries int // Entries on this page, or in total for ProgressFinished.
	Error   error

	// Stats summarizes the whole crawl. Set only for ProgressFinished.
	Stats *Stats
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressFetched ProgressType = iota
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Crawl returns every book entry reachable from rootURL within maxDepth
// navigation steps, in encounter order.
func (c *Crawler) Crawl(ctx context.Context, rootURL string, maxDepth int) ([]*opdscli.Entry, error) {
	entries, _, err := c.CrawlWithStats(ctx, rootURL, maxDepth)
	return entries, err
}

// CrawlWithStats is Crawl returning a summary of the traversal.
//
// The worklist reproduces a recursive depth-first walk: for each page,
// navigation links are visited in document order before the next page.
// Pagination keeps the current depth; navigation adds one. A URL is marked
// visited when popped, before it is fetched, so cycles terminate.
//
// A failure on the root page is returned. Failures on other pages prune
// that page and its descendants only.
func (c *Crawler) CrawlWithStats(ctx context.Context, rootURL string, maxDepth int) ([]*opdscli.Entry, *Stats, error) {
	if maxDepth < 0 {
		return nil, nil, opdscli.Errorf(opdscli.EINVALID, "max depth must not be negative: %d", maxDepth)
	}

	stats := &Stats{}
	seen := bloom.NewFilter(duplicateExpectedEntries, duplicateFalsePositiveRate)
	frontier := NewFrontier()
	frontier.Push(rootURL, 0)

	var entries []*opdscli.Entry
	root := true
	for {
		item, ok := frontier.Pop()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if item.Depth > maxDepth {
			continue
		}
		if !frontier.Visit(item.URL) {
			continue
		}

		feed, err := c.fetchFeed(ctx, item.URL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			if root {
				return nil, nil, err
			}
			stats.Failed++
			c.notify(ProgressEvent{Type: ProgressFailed, URL: item.URL, Depth: item.Depth, Error: err})
			continue
		}
		root = false
		stats.Pages++

		for _, e := range feed.Entries {
			if seen.TestAndAdd(bloom.EntryKey(e)) {
				stats.Duplicates++
			}
		}
		entries = append(entries, feed.Entries...)
		c.notify(ProgressEvent{Type: ProgressFetched, URL: item.URL, Depth: item.Depth, Entries: len(feed.Entries)})

		// Pushed in reverse of visit order.
		if feed.Next != "" {
			frontier.Push(feed.Next, item.Depth)
		}
		for i := len(feed.Navigation) - 1; i >= 0; i-- {
			frontier.Push(feed.Navigation[i].Href, item.Depth+1)
		}
	}

	stats.Entries = len(entries)
	c.notify(ProgressEvent{Type: ProgressFinished, Entries: stats.Entries, Stats: stats})
	return entries, stats, nil
}

// fetchFeed rate limits, fetches and parses one catalog page.
func (c *Crawler) fetchFeed(ctx context.Context, pageURL string) (*opdscli.Feed, error) {
	if c.RateLimiter != nil {
		if u, err := url.Parse(pageURL); err == nil {
			if err := c.RateLimiter.Wait(ctx, u.Host); err != nil {
				return nil, err
			}
		}
	}

	doc, err := c.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return c.Parser.Parse(doc, pageURL)
}

func (c *Crawler) notify(event ProgressEvent) {
	if c.Progress != nil {
		c.Progress(event)
	}
}
