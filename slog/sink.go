package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/oser-cs/apiview"
)

// Ensure LoggingSink implements apiview.Sink.
var _ apiview.Sink = (*LoggingSink)(nil)

// LoggingSink wraps a Sink with logging.
type LoggingSink struct {
	next   apiview.Sink
	logger *slog.Logger
}

// NewLoggingSink creates a new LoggingSink.
func NewLoggingSink(next apiview.Sink, logger *slog.Logger) *LoggingSink {
	return &LoggingSink{next: next, logger: logger}
}

// SetText delegates to the wrapped sink and logs the write.
func (s *LoggingSink) SetText(ctx context.Context, text string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("display",
			"bytes", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SetText(ctx, text)
}
