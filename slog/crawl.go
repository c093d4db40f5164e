package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/opdscli"
)

// Ensure LoggingCrawler implements opdscli.CrawlService.
var _ opdscli.CrawlService = (*LoggingCrawler)(nil)

// LoggingCrawler wraps a CrawlService with debug logging.
type LoggingCrawler struct {
	next   opdscli.CrawlService
	logger *slog.Logger
}

// NewLoggingCrawler creates a new LoggingCrawler.
func NewLoggingCrawler(next opdscli.CrawlService, logger *slog.Logger) *LoggingCrawler {
	return &LoggingCrawler{next: next, logger: logger}
}

// Crawl delegates to the wrapped service and logs the operation.
func (c *LoggingCrawler) Crawl(ctx context.Context, rootURL string, maxDepth int) (entries []*opdscli.Entry, err error) {
	defer func(begin time.Time) {
		c.logger.Info("crawl",
			"url", rootURL,
			"max_depth", maxDepth,
			"count", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Crawl(ctx, rootURL, maxDepth)
}
