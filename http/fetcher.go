// Package http provides the HTTP transport for OPDS catalogs: authenticated
// document fetches with a single retry, and streaming downloads.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/opdscli"
)

// DefaultFetchTimeout is the default per-attempt timeout for document fetches.
const DefaultFetchTimeout = 30 * time.Second

// DefaultRetryDelay is the pause before the single retry of a failed fetch.
const DefaultRetryDelay = 1 * time.Second

const (
	feedAccept     = "application/atom+xml;profile=opds-catalog, application/atom+xml;q=0.9, application/xml;q=0.8, */*;q=0.5"
	downloadAccept = "*/*"
)

// Ensure Fetcher implements opdscli.Fetcher and opdscli.Downloader at compile time.
var (
	_ opdscli.Fetcher    = (*Fetcher)(nil)
	_ opdscli.Downloader = (*Fetcher)(nil)
)

// Fetcher retrieves catalog documents over HTTP using the credentials
// configured for one catalog.
type Fetcher struct {
	client    *http.Client // document fetches, bounded by timeout
	stream    *http.Client // downloads, bounded by ctx only
	transport http.RoundTripper
	timeout   time.Duration
	delays    []time.Duration
	auth      *opdscli.Auth
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout applied to each fetch attempt.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithRetryDelay sets the pause before retrying a transport failure.
// Defaults to DefaultRetryDelay (1s) if not specified.
func WithRetryDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.delays = []time.Duration{d}
	}
}

// WithAuth attaches catalog credentials to every request.
// A nil auth means unauthenticated requests.
func WithAuth(auth *opdscli.Auth) Option {
	return func(f *Fetcher) {
		f.auth = auth
	}
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) {
		f.transport = rt
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		delays:    []time.Duration{DefaultRetryDelay},
		userAgent: "opdscli/" + opdscli.Version,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Transport: f.transport,
		Timeout:   f.timeout,
	}
	f.stream = &http.Client{
		Transport: f.transport,
	}

	return f
}

// NewCatalogFetcher creates a Fetcher carrying the catalog's credentials.
func NewCatalogFetcher(catalog *opdscli.Catalog, opts ...Option) *Fetcher {
	return NewFetcher(append([]Option{WithAuth(catalog.Auth)}, opts...)...)
}

// Fetch retrieves the document at url. Transport failures are retried once
// after the retry delay; HTTP status failures are returned immediately.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	body, err := fetchWithRetryDelays(ctx, url, f.fetchOnce, f.delays)
	if err == nil {
		return body, nil
	}

	var terr *transportError
	if errors.As(err, &terr) {
		return "", &opdscli.Error{
			Code:    opdscli.ENETWORK,
			Message: fmt.Sprintf("network error after retry: %v", terr.err),
			Err:     terr.err,
		}
	}
	return "", err
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	resp, err := f.do(ctx, f.client, url, feedAccept)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &transportError{err: err}
	}

	return string(body), nil
}

// Download streams the body at url into w, reporting progress after each chunk.
// Downloads are attempted once and are bounded only by ctx.
func (f *Fetcher) Download(ctx context.Context, url string, w io.Writer, progress opdscli.DownloadProgressFunc) (int64, error) {
	resp, err := f.do(ctx, f.stream, url, downloadAccept)
	if err != nil {
		var terr *transportError
		if errors.As(err, &terr) {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			return 0, &opdscli.Error{
				Code:    opdscli.ENETWORK,
				Message: fmt.Sprintf("network error: %v", terr.err),
				Err:     terr.err,
			}
		}
		return 0, err
	}
	defer resp.Body.Close()

	pw := &progressWriter{
		w:        w,
		progress: progress,
		state:    opdscli.DownloadProgress{URL: url, Total: resp.ContentLength},
	}
	n, err := io.Copy(pw, resp.Body)
	if pw.err != nil {
		return n, pw.err
	}
	if err != nil {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		return n, &opdscli.Error{
			Code:    opdscli.ENETWORK,
			Message: fmt.Sprintf("download interrupted after %d bytes: %v", n, err),
			Err:     err,
		}
	}

	return n, nil
}

// do sends a GET request and classifies the response status.
// The caller must close the body of a successful response.
func (f *Fetcher) do(ctx context.Context, client *http.Client, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, opdscli.Errorf(opdscli.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", accept)
	f.authorize(req)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return resp, nil
}

// authorize attaches credentials. Incomplete credentials are ignored.
func (f *Fetcher) authorize(req *http.Request) {
	if f.auth == nil {
		return
	}
	switch f.auth.Type {
	case opdscli.AuthBasic:
		if f.auth.Username != "" && f.auth.Password != "" {
			req.SetBasicAuth(f.auth.Username, f.auth.Password)
		}
	case opdscli.AuthBearer:
		if f.auth.Token != "" {
			req.Header.Set("Authorization", "Bearer "+f.auth.Token)
		}
	}
}

// checkStatus maps 401/403 to EAUTH and any other non-2xx status to EHTTP.
func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &opdscli.Error{
			Code:    opdscli.EAUTH,
			Message: fmt.Sprintf("authentication failed (%d), check your credentials", code),
			Status:  code,
		}
	default:
		return &opdscli.Error{
			Code:    opdscli.EHTTP,
			Message: fmt.Sprintf("HTTP error %d: %s", code, reasonPhrase(resp)),
			Status:  code,
		}
	}
}

func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}

// transportError marks connect, timeout and read failures, the only
// failures that are retried.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }

func (e *transportError) Unwrap() error { return e.err }

// progressWriter forwards writes and reports the running byte count.
type progressWriter struct {
	w        io.Writer
	progress opdscli.DownloadProgressFunc
	state    opdscli.DownloadProgress
	err      error
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	if err != nil {
		p.err = err
		return n, err
	}
	p.state.Received += int64(n)
	if p.progress != nil {
		p.progress(p.state)
	}
	return n, nil
}
