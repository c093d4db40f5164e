package crawl_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fwojciec/opdscli"
	"github.com/fwojciec/opdscli/crawl"
	"github.com/fwojciec/opdscli/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalog is an in-memory link graph. Fetching a URL returns the URL itself
// as the document, which the parser maps back to the page.
type catalog struct {
	mu      sync.Mutex
	pages   map[string]*opdscli.Feed
	fail    map[string]error
	fetched []string
}

func newCatalog() *catalog {
	return &catalog{
		pages: make(map[string]*opdscli.Feed),
		fail:  make(map[string]error),
	}
}

func (c *catalog) page(url string, feed *opdscli.Feed) {
	c.pages[url] = feed
}

func (c *catalog) fetcher() *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.fetched = append(c.fetched, url)
			if err, ok := c.fail[url]; ok {
				return "", err
			}
			if _, ok := c.pages[url]; !ok {
				return "", opdscli.Errorf(opdscli.EHTTP, "HTTP 404: Not Found")
			}
			return url, nil
		},
	}
}

func (c *catalog) parser() *mock.FeedParser {
	return &mock.FeedParser{
		ParseFn: func(doc string, _ string) (*opdscli.Feed, error) {
			return c.pages[doc], nil
		},
	}
}

func (c *catalog) crawler() *crawl.Crawler {
	return &crawl.Crawler{Fetcher: c.fetcher(), Parser: c.parser()}
}

func (c *catalog) fetchedURLs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.fetched...)
}

func book(title string) *opdscli.Entry {
	return &opdscli.Entry{
		Title:            title,
		ID:               "urn:" + title,
		Formats:          []string{"epub"},
		AcquisitionLinks: []opdscli.AcquisitionLink{{Href: "https://example.com/" + title + ".epub", Type: "application/epub+zip"}},
	}
}

func nav(hrefs ...string) []opdscli.NavigationLink {
	links := make([]opdscli.NavigationLink, len(hrefs))
	for i, href := range hrefs {
		links[i] = opdscli.NavigationLink{Href: href, Title: href, Rel: opdscli.RelSubsection}
	}
	return links
}

func titles(entries []*opdscli.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}

func TestCrawler_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("terminates on cycles and visits each page once", func(t *testing.T) {
		t.Parallel()

		c := newCatalog()
		c.page("https://example.com/a", &opdscli.Feed{Entries: []*opdscli.Entry{book("a1")}, Navigation: nav("https://example.com/b")})
		c.page("https://example.com/b", &opdscli.Feed{Entries: []*opdscli.Entry{book("b1")}, Navigation: nav("https://example.com/a")})

		entries, err := c.crawler().Crawl(context.Background(), "https://example.com/a", 3)

		require.NoError(t, err)
		assert.Equal(t, []string{"a1", "b1"}, titles(entries))
		assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, c.fetchedURLs())
	})

	t.Run("depth zero returns root entries only", func(t *testing.T) {
		t.Parallel()

		c := newCatalog()
		c.page("https://example.com/", &opdscli.Feed{Entries: []*opdscli.Entry{book("root")}, Navigation: nav("https://example.com/child")})
		c.page("https://example.com/child", &opdscli.Feed{Entries: []*opdscli.Entry{book("child")}})

		entries, err := c.crawler().Crawl(context.Background(), "https://example.com/", 0)

		require.NoError(t, err)
		assert.Equal(t, []string{"root"}, titles(entries))
		assert.Equal(t, []string{"https://example.com/"}, c.fetchedURLs())
	})

	t.Run("never fetches beyond max depth", func(t *testing.T) {
		t.Parallel()

		c := newCatalog()
		c.page("https://example.com/0", &opdscli.Feed{Navigation: nav("https://example.com/1")})
		c.page("https://example.com/1", &opdscli.Feed{Navigation: nav("https://example.com/2")})
		c.page("https://example.com/2", &opdscli.Feed{Entries: []*opdscli.Entry{book("deep")}, Navigation: nav("https://example.com/3")})
		c.page("https://example.com/3", &opdscli.Feed{Entries: []*opdscli.Entry{book("too-deep")}})

		entries, err := c.crawler().Crawl(context.Background(), "https://example.com/0", 2)

		require.NoError(t, err)
		assert.Equal(t, []string{"deep"}, titles(entries))
		assert.Equal(t, []string{"https://example.com/0", "https://example.com/1", "https://example.com/2"}, c.fetchedURLs())
	})

	t.Run("pagination does not consume depth", func(t *testing.T) {
		t.Parallel()

		c := newCatalog()
		c.page("https://example.com/p1", &opdscli.Feed{Entries: []*opdscli.Entry{book("p1")}, Next: "https://example.com/p2"})
		c.page("https://example.com/p2", &opdscli.Feed{Entries: []*opdscli.Entry{book("p2")}, Next: "https://example.com/p3"})
		c.page("https://example.com/p3", &opdscli.Feed{Entries: []*opdscli.Entry{book("p3")}})

		entries, err := c.crawler().Crawl(context.Background(), "https://example.com/p1", 0)

		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p2", "p3"}, titles(entries))
	})

	t.Run("visits navigation depth-first before the next page", func(t *testing.T) {
		t.Parallel()

		c := newCatalog()
		c.page("https://example.com/r", &opdscli.Feed{
			Entries:    []*opdscli.Entry{book("r")},
			Navigation: nav("https://example.com/b", "https://example.com/c"),
			Next:       "https://example.com/r2",
		})
		c.page("https://example.com/b", &opdscli.Feed{Entries: []*opdscli.Entry{book("b")}, Navigation: nav("https://example.com/d")})
		c.page("https://example.com/c", &opdscli.Feed{Entries: []*opdscli.Entry{book("c")}})
		c.page("https://example.com/d", &opdscli.Feed{Entries: []*opdscli.Entry{book("d")}})
		c.page("https://example.com/r2", &opdscli.Feed{Entries: []*opdscli.Entry{book("r2")}})

		entries, err := c.crawler().Crawl(context.Background(), "https://example.com/r", 3)

		require.NoError(t, err)
		assert.Equal(t, []string{"r", "b", "d", "c", "r2"}, titles(entries))
	})

	t.Run("prunes failed pages and keeps going", func(t *testing.T) {
		t.Parallel()

		c := newCatalog()
		c.page("https://example.com/", &opdscli.Feed{
			Entries:    []*opdscli.Entry{book("root")},
			Navigation: nav("https://example.com/broken", "https://example.com/missing", "https://example.com/ok"),
		})
		c.page("https://example.com/broken", &opdscli.Feed{Entries: []*opdscli.Entry{book("never")}})
		c.fail["https://example.com/broken"] = opdscli.Errorf(opdscli.ENETWORK, "network error after retry")
		c.page("https://example.com/ok", &opdscli.Feed{Entries: []*opdscli.Entry{book("ok")}})

		entries, stats, err := c.crawler().CrawlWithStats(context.Background(), "https://example.com/", 1)

		require.NoError(t, err)
		assert.Equal(t, []string{"root", "ok"}, titles(entries))
		assert.Equal(t, 2, stats.Failed)
		assert.Equal(t, 2, stats.Pages)
	})

	t.Run("prunes pages that fail to parse", func(t *testing.T) {
		t.Parallel()

		c := newCatalog()
		c.page("https://example.com/", &opdscli.Feed{Navigation: nav("https://example.com/bad", "https://example.com/good")})
		c.page("https://example.com/good", &opdscli.Feed{Entries: []*opdscli.Entry{book("good")}})
		crawler := c.crawler()
		crawler.Parser = &mock.FeedParser{
			ParseFn: func(doc string, _ string) (*opdscli.Feed, error) {
				if doc == "https://example.com/bad" {
					return nil, opdscli.Errorf(opdscli.EMALFORMED, "invalid XML: unexpected EOF")
				}
				return c.pages[doc], nil
			},
		}
		c.page("https://example.com/bad", &opdscli.Feed{})

		entries, err := crawler.Crawl(context.Background(), "https://example.com/", 1)

		require.NoError(t, err)
		assert.Equal(t, []string{"good"}, titles(entries))
	})

	t.Run("returns root failure", func(t *testing.T) {
		t.Parallel()

		c := newCatalog()
		c.page("https://example.com/", &opdscli.Feed{})
		c.fail["https://example.com/"] = &opdscli.Error{Code: opdscli.EAUTH, Message: "authentication failed", Status: 401}

		entries, err := c.crawler().Crawl(context.Background(), "https://example.com/", 3)

		require.Error(t, err)
		assert.Nil(t, entries)
		assert.Equal(t, opdscli.EAUTH, opdscli.ErrorCode(err))
		assert.Equal(t, 401, opdscli.ErrorStatus(err))
	})

	t.Run("treats URLs differing in case or fragment as visited", func(t *testing.T) {
		t.Parallel()

		c := newCatalog()
		c.page("https://example.com", &opdscli.Feed{
			Entries:    []*opdscli.Entry{book("root")},
			Navigation: nav("HTTPS://EXAMPLE.com/#top", "https://example.com/#section"),
		})

		entries, err := c.crawler().Crawl(context.Background(), "https://example.com", 2)

		require.NoError(t, err)
		assert.Equal(t, []string{"root"}, titles(entries))
		assert.Equal(t, []string{"https://example.com"}, c.fetchedURLs())
	})

	t.Run("keeps duplicate entries and counts them", func(t *testing.T) {
		t.Parallel()

		shared := book("shared")
		c := newCatalog()
		c.page("https://example.com/", &opdscli.Feed{
			Entries:    []*opdscli.Entry{shared},
			Navigation: nav("https://example.com/popular"),
		})
		c.page("https://example.com/popular", &opdscli.Feed{Entries: []*opdscli.Entry{shared, book("other")}})

		entries, stats, err := c.crawler().CrawlWithStats(context.Background(), "https://example.com/", 1)

		require.NoError(t, err)
		assert.Equal(t, []string{"shared", "shared", "other"}, titles(entries))
		assert.Equal(t, 3, stats.Entries)
		assert.Equal(t, 1, stats.Duplicates)
	})

	t.Run("rejects negative max depth", func(t *testing.T) {
		t.Parallel()

		c := newCatalog()

		_, err := c.crawler().Crawl(context.Background(), "https://example.com/", -1)

		assert.Equal(t, opdscli.EINVALID, opdscli.ErrorCode(err))
		assert.Empty(t, c.fetchedURLs())
	})

	t.Run("waits on rate limiter per host", func(t *testing.T) {
		t.Parallel()

		c := newCatalog()
		c.page("https://example.com/", &opdscli.Feed{Navigation: nav("https://mirror.example.org/x")})
		c.page("https://mirror.example.org/x", &opdscli.Feed{Entries: []*opdscli.Entry{book("x")}})

		var hosts []string
		crawler := c.crawler()
		crawler.RateLimiter = &mock.DomainLimiter{
			WaitFn: func(_ context.Context, domain string) error {
				hosts = append(hosts, domain)
				return nil
			},
		}

		_, err := crawler.Crawl(context.Background(), "https://example.com/", 1)

		require.NoError(t, err)
		assert.Equal(t, []string{"example.com", "mirror.example.org"}, hosts)
	})

	t.Run("stops when context is canceled", func(t *testing.T) {
		t.Parallel()

		c := newCatalog()
		c.page("https://example.com/", &opdscli.Feed{Navigation: nav("https://example.com/a")})
		c.page("https://example.com/a", &opdscli.Feed{Entries: []*opdscli.Entry{book("a")}})

		ctx, cancel := context.WithCancel(context.Background())
		crawler := c.crawler()
		crawler.Progress = func(event crawl.ProgressEvent) {
			if event.Type == crawl.ProgressFetched {
				cancel()
			}
		}

		_, err := crawler.Crawl(ctx, "https://example.com/", 1)

		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, []string{"https://example.com/"}, c.fetchedURLs())
	})

	t.Run("reports progress", func(t *testing.T) {
		t.Parallel()

		c := newCatalog()
		c.page("https://example.com/", &opdscli.Feed{
			Entries:    []*opdscli.Entry{book("root")},
			Navigation: nav("https://example.com/gone", "https://example.com/a"),
		})
		c.page("https://example.com/a", &opdscli.Feed{Entries: []*opdscli.Entry{book("a1"), book("a2")}})

		var events []crawl.ProgressEvent
		crawler := c.crawler()
		crawler.Progress = func(event crawl.ProgressEvent) {
			events = append(events, event)
		}

		_, err := crawler.Crawl(context.Background(), "https://example.com/", 1)

		require.NoError(t, err)
		require.Len(t, events, 4)
		assert.Equal(t, crawl.ProgressFetched, events[0].Type)
		assert.Equal(t, 1, events[0].Entries)
		assert.Equal(t, crawl.ProgressFailed, events[1].Type)
		assert.Equal(t, "https://example.com/gone", events[1].URL)
		assert.Equal(t, 1, events[1].Depth)
		assert.Error(t, events[1].Error)
		assert.Equal(t, crawl.ProgressFetched, events[2].Type)
		assert.Equal(t, 2, events[2].Entries)
		assert.Equal(t, crawl.ProgressFinished, events[3].Type)
		assert.Equal(t, 3, events[3].Entries)
		require.NotNil(t, events[3].Stats)
		assert.Equal(t, crawl.Stats{Pages: 2, Failed: 1, Entries: 3}, *events[3].Stats)
	})

	t.Run("finished event carries duplicate estimate", func(t *testing.T) {
		t.Parallel()

		shared := book("shared")
		c := newCatalog()
		c.page("https://example.com/", &opdscli.Feed{
			Entries:    []*opdscli.Entry{shared},
			Navigation: nav("https://example.com/popular"),
		})
		c.page("https://example.com/popular", &opdscli.Feed{Entries: []*opdscli.Entry{shared}})

		var finished *crawl.Stats
		crawler := c.crawler()
		crawler.Progress = func(event crawl.ProgressEvent) {
			if event.Type == crawl.ProgressFinished {
				finished = event.Stats
			}
		}

		_, err := crawler.Crawl(context.Background(), "https://example.com/", 1)

		require.NoError(t, err)
		require.NotNil(t, finished)
		assert.Equal(t, 1, finished.Duplicates)
		assert.Equal(t, 2, finished.Entries)
	})
}
