package crawl

import (
	"context"
	"net/url"
	"strings"

	"github.com/fwojciec/opdscli"
	"golang.org/x/sync/errgroup"
)

// Ensure Searcher implements opdscli.SearchService at compile time.
var _ opdscli.SearchService = (*Searcher)(nil)

// Searcher defaults.
const (
	// DefaultMaxFollows caps the navigation links followed when a result
	// feed holds no books.
	DefaultMaxFollows = 25
	// DefaultConcurrency is the number of follow-up fetches run at once.
	DefaultConcurrency = 4
)

// searchTermsParam is the OpenSearch placeholder substituted with the query.
const searchTermsParam = "{searchTerms}"

// Searcher resolves queries through a catalog's OpenSearch endpoint.
type Searcher struct {
	Fetcher opdscli.Fetcher
	Parser  opdscli.FeedParser

	// MaxFollows caps follow-up fetches. Defaults to DefaultMaxFollows.
	MaxFollows int

	// Concurrency bounds parallel follow-up fetches. Defaults to DefaultConcurrency.
	Concurrency int
}

// DetectEndpoint fetches the root feed and, if it links an OpenSearch
// description, returns that description's query template. Any failure
// along the way reports no endpoint.
func (s *Searcher) DetectEndpoint(ctx context.Context, rootURL string) (string, bool) {
	doc, err := s.Fetcher.Fetch(ctx, rootURL)
	if err != nil {
		return "", false
	}
	feed, err := s.Parser.Parse(doc, rootURL)
	if err != nil || feed.SearchDescription == "" {
		return "", false
	}

	descURL := feed.SearchDescription
	desc, err := s.Fetcher.Fetch(ctx, descURL)
	if err != nil {
		return "", false
	}
	template, err := s.Parser.ParseSearchDescription(desc)
	if err != nil || template == "" {
		return "", false
	}

	// Templates are not parsed as URLs; url.Parse would escape the braces.
	if strings.HasPrefix(template, "/") && !strings.HasPrefix(template, "//") {
		u, err := url.Parse(descURL)
		if err != nil || u.Host == "" {
			return "", false
		}
		template = u.Scheme + "://" + u.Host + template
	}
	return template, true
}

// Search substitutes the percent-encoded query into template and returns the
// books of the result feed. Failure of the query itself is returned.
func (s *Searcher) Search(ctx context.Context, template, query string) ([]*opdscli.Entry, error) {
	return s.FetchEntries(ctx, ExpandTemplate(template, query))
}

// FetchEntries returns the books of the feed at feedURL. When the feed has
// no books but has navigation links, up to MaxFollows of them are fetched
// and their books concatenated in link order; failed follow-ups are skipped.
func (s *Searcher) FetchEntries(ctx context.Context, feedURL string) ([]*opdscli.Entry, error) {
	doc, err := s.Fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	feed, err := s.Parser.Parse(doc, feedURL)
	if err != nil {
		return nil, err
	}
	if len(feed.Entries) > 0 || len(feed.Navigation) == 0 {
		return feed.Entries, nil
	}
	return s.follow(ctx, feed.Navigation)
}

// follow fetches navigation links concurrently, slotting results by index
// so output order equals link order.
func (s *Searcher) follow(ctx context.Context, links []opdscli.NavigationLink) ([]*opdscli.Entry, error) {
	maxFollows := s.MaxFollows
	if maxFollows <= 0 {
		maxFollows = DefaultMaxFollows
	}
	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if len(links) > maxFollows {
		links = links[:maxFollows]
	}

	results := make([][]*opdscli.Entry, len(links))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, link := range links {
		g.Go(func() error {
			doc, err := s.Fetcher.Fetch(ctx, link.Href)
			if err != nil {
				return nil
			}
			feed, err := s.Parser.Parse(doc, link.Href)
			if err != nil {
				return nil
			}
			results[i] = feed.Entries
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []*opdscli.Entry
	for _, r := range results {
		entries = append(entries, r...)
	}
	return entries, nil
}

// ExpandTemplate replaces {searchTerms} in an OpenSearch template with the
// query percent-encoded so that no reserved character survives: spaces become
// "%20" and "/" becomes "%2F".
func ExpandTemplate(template, query string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
	return strings.ReplaceAll(template, searchTermsParam, escaped)
}
