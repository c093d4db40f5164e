package mock

import (
	"context"
	"io"

	"github.com/fwojciec/opdscli"
)

var _ opdscli.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of opdscli.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

var _ opdscli.Downloader = (*Downloader)(nil)

// Downloader is a mock implementation of opdscli.Downloader.
type Downloader struct {
	DownloadFn func(ctx context.Context, url string, w io.Writer, progress opdscli.DownloadProgressFunc) (int64, error)
}

func (d *Downloader) Download(ctx context.Context, url string, w io.Writer, progress opdscli.DownloadProgressFunc) (int64, error) {
	return d.DownloadFn(ctx, url, w, progress)
}

var _ opdscli.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of opdscli.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return d.WaitFn(ctx, domain)
}
