package slog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/oser-cs/apiview"
)

// Ensure LoggingCookieSource implements apiview.CookieSource.
var _ apiview.CookieSource = (*LoggingCookieSource)(nil)

// LoggingCookieSource wraps a CookieSource with logging. Cookie values are
// never logged.
type LoggingCookieSource struct {
	next   apiview.CookieSource
	logger *slog.Logger
}

// NewLoggingCookieSource creates a new LoggingCookieSource.
func NewLoggingCookieSource(next apiview.CookieSource, logger *slog.Logger) *LoggingCookieSource {
	return &LoggingCookieSource{next: next, logger: logger}
}

// CookieString delegates to the wrapped source and logs how many cookies it holds.
func (s *LoggingCookieSource) CookieString(ctx context.Context) (cookies string, err error) {
	defer func(begin time.Time) {
		count := 0
		if cookies != "" {
			count = strings.Count(cookies, ";") + 1
		}
		s.logger.Debug("cookie jar",
			"count", count,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CookieString(ctx)
}
