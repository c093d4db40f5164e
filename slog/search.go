package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/opdscli"
)

// Ensure LoggingSearcher implements opdscli.SearchService.
var _ opdscli.SearchService = (*LoggingSearcher)(nil)

// LoggingSearcher wraps a SearchService with debug logging.
type LoggingSearcher struct {
	next   opdscli.SearchService
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher.
func NewLoggingSearcher(next opdscli.SearchService, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, logger: logger}
}

// DetectEndpoint delegates to the wrapped service and logs the outcome.
func (s *LoggingSearcher) DetectEndpoint(ctx context.Context, rootURL string) (template string, ok bool) {
	defer func(begin time.Time) {
		s.logger.Info("opensearch detection",
			"url", rootURL,
			"found", ok,
			"template", template,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return s.next.DetectEndpoint(ctx, rootURL)
}

// Search delegates to the wrapped service and logs the operation.
func (s *LoggingSearcher) Search(ctx context.Context, template, query string) (entries []*opdscli.Entry, err error) {
	defer func(begin time.Time) {
		s.logger.Info("search",
			"template", template,
			"query", query,
			"count", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, template, query)
}

// FetchEntries delegates to the wrapped service and logs the operation.
func (s *LoggingSearcher) FetchEntries(ctx context.Context, feedURL string) (entries []*opdscli.Entry, err error) {
	defer func(begin time.Time) {
		s.logger.Info("fetch entries",
			"url", feedURL,
			"count", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchEntries(ctx, feedURL)
}
