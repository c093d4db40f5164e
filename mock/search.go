package mock

import (
	"context"

	"github.com/fwojciec/opdscli"
)

var _ opdscli.SearchService = (*SearchService)(nil)

// SearchService is a mock implementation of opdscli.SearchService.
type SearchService struct {
	DetectEndpointFn func(ctx context.Context, rootURL string) (string, bool)
	SearchFn         func(ctx context.Context, template, query string) ([]*opdscli.Entry, error)
	FetchEntriesFn   func(ctx context.Context, feedURL string) ([]*opdscli.Entry, error)
}

func (s *SearchService) DetectEndpoint(ctx context.Context, rootURL string) (string, bool) {
	return s.DetectEndpointFn(ctx, rootURL)
}

func (s *SearchService) Search(ctx context.Context, template, query string) ([]*opdscli.Entry, error) {
	return s.SearchFn(ctx, template, query)
}

func (s *SearchService) FetchEntries(ctx context.Context, feedURL string) ([]*opdscli.Entry, error) {
	return s.FetchEntriesFn(ctx, feedURL)
}

var _ opdscli.CrawlService = (*CrawlService)(nil)

// CrawlService is a mock implementation of opdscli.CrawlService.
type CrawlService struct {
	CrawlFn func(ctx context.Context, rootURL string, maxDepth int) ([]*opdscli.Entry, error)
}

func (s *CrawlService) Crawl(ctx context.Context, rootURL string, maxDepth int) ([]*opdscli.Entry, error) {
	return s.CrawlFn(ctx, rootURL, maxDepth)
}

var _ opdscli.EntryFinder = (*EntryFinder)(nil)

// EntryFinder is a mock implementation of opdscli.EntryFinder.
type EntryFinder struct {
	CollectFn func(ctx context.Context, rootURL, query string) ([]*opdscli.Entry, opdscli.Strategy, error)
	SearchFn  func(ctx context.Context, rootURL, query string) ([]*opdscli.Entry, opdscli.Strategy, error)
	LatestFn  func(ctx context.Context, rootURL string, limit int) ([]*opdscli.Entry, error)
}

func (f *EntryFinder) Collect(ctx context.Context, rootURL, query string) ([]*opdscli.Entry, opdscli.Strategy, error) {
	return f.CollectFn(ctx, rootURL, query)
}

func (f *EntryFinder) Search(ctx context.Context, rootURL, query string) ([]*opdscli.Entry, opdscli.Strategy, error) {
	return f.SearchFn(ctx, rootURL, query)
}

func (f *EntryFinder) Latest(ctx context.Context, rootURL string, limit int) ([]*opdscli.Entry, error) {
	return f.LatestFn(ctx, rootURL, limit)
}

var _ opdscli.Ranker = (*Ranker)(nil)

// Ranker is a mock implementation of opdscli.Ranker.
type Ranker struct {
	RankFn func(query string, entries []*opdscli.Entry) []*opdscli.Entry
}

func (r *Ranker) Rank(query string, entries []*opdscli.Entry) []*opdscli.Entry {
	return r.RankFn(query, entries)
}
