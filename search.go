package opdscli

import "context"

// DefaultMaxDepth is the navigation depth crawled when none is given.
const DefaultMaxDepth = 3

// Strategy identifies how a set of entries was retrieved.
type Strategy int

const (
	// StrategyCrawl means the catalog's navigation graph was crawled locally.
	StrategyCrawl Strategy = iota
	// StrategySearch means the catalog's OpenSearch endpoint answered the query.
	StrategySearch
)

func (s Strategy) String() string {
	switch s {
	case StrategySearch:
		return "search"
	default:
		return "crawl"
	}
}

// SearchService resolves queries against a catalog's OpenSearch endpoint.
type SearchService interface {
	// DetectEndpoint returns the OpenSearch query template advertised by the
	// catalog at rootURL. Detection failures are reported as false, never as errors.
	DetectEndpoint(ctx context.Context, rootURL string) (template string, ok bool)

	// Search substitutes query into template, fetches the result feed and returns
	// its book entries. When the result feed holds only navigation links, a
	// bounded number of them are followed and their entries concatenated.
	Search(ctx context.Context, template, query string) ([]*Entry, error)

	// FetchEntries fetches a feed page and returns its book entries, following
	// navigation links the same way Search does when the page has no books.
	FetchEntries(ctx context.Context, feedURL string) ([]*Entry, error)
}

// CrawlService collects book entries by traversing a catalog's link graph.
type CrawlService interface {
	// Crawl returns every book entry reachable from rootURL within maxDepth
	// navigation steps. Pagination does not consume depth.
	Crawl(ctx context.Context, rootURL string, maxDepth int) ([]*Entry, error)
}

// EntryFinder retrieves entries from a catalog, preferring server-side search
// and falling back to a crawl.
type EntryFinder interface {
	// Collect returns the candidate entries for query: the server's results
	// when search is available, otherwise every crawled entry.
	Collect(ctx context.Context, rootURL, query string) ([]*Entry, Strategy, error)

	// Search is Collect narrowed to entries matching query when crawled.
	Search(ctx context.Context, rootURL, query string) ([]*Entry, Strategy, error)

	// Latest returns up to limit of the catalog's most recently updated entries.
	Latest(ctx context.Context, rootURL string, limit int) ([]*Entry, error)
}

// Ranker orders entries by similarity of their titles to a query.
type Ranker interface {
	// Rank returns the best near matches for query. Output is advisory only.
	Rank(query string, entries []*Entry) []*Entry
}
