package crawl

import (
	"context"
	"strings"

	"github.com/fwojciec/opdscli"
)

// Ensure Finder implements opdscli.EntryFinder at compile time.
var _ opdscli.EntryFinder = (*Finder)(nil)

// latestKeywords mark a root navigation entry as the catalog's recent additions.
var latestKeywords = []string{"latest", "new", "recent"}

// Finder retrieves entries from a catalog, preferring its OpenSearch
// endpoint and falling back to a crawl.
type Finder struct {
	Fetcher  opdscli.Fetcher
	Parser   opdscli.FeedParser
	Searcher opdscli.SearchService
	Crawler  opdscli.CrawlService

	// MaxDepth bounds crawls.
	MaxDepth int
}

// NewFinder creates a Finder crawling to opdscli.DefaultMaxDepth.
func NewFinder(fetcher opdscli.Fetcher, parser opdscli.FeedParser, searcher opdscli.SearchService, crawler opdscli.CrawlService) *Finder {
	return &Finder{
		Fetcher:  fetcher,
		Parser:   parser,
		Searcher: searcher,
		Crawler:  crawler,
		MaxDepth: opdscli.DefaultMaxDepth,
	}
}

// Collect returns the server's results for query when the catalog has a
// search endpoint, otherwise every entry found by crawling.
func (f *Finder) Collect(ctx context.Context, rootURL, query string) ([]*opdscli.Entry, opdscli.Strategy, error) {
	if template, ok := f.Searcher.DetectEndpoint(ctx, rootURL); ok {
		entries, err := f.Searcher.Search(ctx, template, query)
		return entries, opdscli.StrategySearch, err
	}
	entries, err := f.Crawler.Crawl(ctx, rootURL, f.MaxDepth)
	return entries, opdscli.StrategyCrawl, err
}

// Search is Collect with crawled entries narrowed to those matching query.
func (f *Finder) Search(ctx context.Context, rootURL, query string) ([]*opdscli.Entry, opdscli.Strategy, error) {
	entries, strategy, err := f.Collect(ctx, rootURL, query)
	if err != nil {
		return nil, strategy, err
	}
	if strategy == opdscli.StrategyCrawl {
		entries = opdscli.MatchEntries(entries, query)
	}
	return entries, strategy, nil
}

// Latest returns up to limit entries from the catalog's "new" feed, newest
// first. The feed is the first root navigation link whose title mentions
// latest, new or recent, or whose rel is the OPDS sort/new relation. Without
// one the root feed itself is used. A non-positive limit returns all entries.
func (f *Finder) Latest(ctx context.Context, rootURL string, limit int) ([]*opdscli.Entry, error) {
	doc, err := f.Fetcher.Fetch(ctx, rootURL)
	if err != nil {
		return nil, err
	}
	feed, err := f.Parser.Parse(doc, rootURL)
	if err != nil {
		return nil, err
	}

	target := rootURL
	if nav, ok := latestLink(feed.Navigation); ok {
		target = nav.Href
	}

	entries, err := f.Searcher.FetchEntries(ctx, target)
	if err != nil {
		return nil, err
	}
	opdscli.SortByUpdated(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func latestLink(links []opdscli.NavigationLink) (opdscli.NavigationLink, bool) {
	for _, link := range links {
		if link.Rel == opdscli.RelSortNew {
			return link, true
		}
		title := strings.ToLower(link.Title)
		for _, kw := range latestKeywords {
			if strings.Contains(title, kw) {
				return link, true
			}
		}
	}
	return opdscli.NavigationLink{}, false
}
