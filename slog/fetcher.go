// Package slog provides log/slog decorators for apiview services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/oser-cs/apiview"
)

// Ensure LoggingFetcher implements apiview.Fetcher.
var _ apiview.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging. Successful fetches are logged
// at Debug; failed ones at Warn with their error code, so a transport error
// can be told apart from a bad URL without -v.
type LoggingFetcher struct {
	next   apiview.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next apiview.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (body []byte, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"origin", apiview.Origin(url),
			"url", url,
			"duration", time.Since(begin),
		}
		if err != nil {
			f.logger.Warn("fetch failed", append(attrs, "code", apiview.ErrorCode(err), "err", err)...)
			return
		}
		f.logger.Debug("fetch", append(attrs, "bytes", len(body))...)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
