package opdscli

import (
	"context"
	"io"
)

// Fetcher retrieves catalog documents over the network.
type Fetcher interface {
	// Fetch returns the body of the document at url.
	// Returns EAUTH for 401/403 responses, EHTTP for other non-2xx responses,
	// and ENETWORK when the transport fails.
	Fetch(ctx context.Context, url string) (string, error)
}

// DownloadProgress reports bytes received during a download.
type DownloadProgress struct {
	URL      string
	Received int64
	Total    int64 // -1 if the server did not send a length.
}

// DownloadProgressFunc is called as download chunks arrive.
type DownloadProgressFunc func(DownloadProgress)

// Downloader streams a remote resource to a caller-supplied destination.
type Downloader interface {
	// Download writes the body at url to w and returns the number of bytes written.
	Download(ctx context.Context, url string, w io.Writer, progress DownloadProgressFunc) (int64, error)
}

// FeedParser parses OPDS catalog documents.
type FeedParser interface {
	// Parse parses an Atom document into book entries, navigation links and
	// the next-page link. Every href is resolved against baseURL.
	// Returns EMALFORMED if doc is not well-formed XML.
	Parse(doc string, baseURL string) (*Feed, error)

	// ParseSearchDescription extracts the query URL template from an
	// OpenSearch description document.
	// Returns ENOTFOUND if the document has no usable template.
	ParseSearchDescription(doc string) (string, error)
}

// Converter converts HTML summaries into display text.
type Converter interface {
	// Convert transforms HTML content into plain text or Markdown.
	Convert(html string) (string, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
