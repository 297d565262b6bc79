package slog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/fedcrawl"
)

// Ensure LoggingSink implements fedcrawl.ResultSink.
var _ fedcrawl.ResultSink = (*LoggingSink)(nil)

// LoggingSink logs every domain outcome.
// Visited and skipped domains are logged at debug level, errors at info.
type LoggingSink struct {
	logger *slog.Logger
}

// NewLoggingSink creates a new LoggingSink.
func NewLoggingSink(logger *slog.Logger) *LoggingSink {
	return &LoggingSink{logger: logger}
}

func (s *LoggingSink) Visited(ctx context.Context, domain fedcrawl.Domain) error {
	s.logger.DebugContext(ctx, "visited", "domain", domain)
	return nil
}

func (s *LoggingSink) Skipped(ctx context.Context, domain fedcrawl.Domain) error {
	s.logger.DebugContext(ctx, "skipped", "domain", domain)
	return nil
}

func (s *LoggingSink) Errored(ctx context.Context, domain fedcrawl.Domain, err *fedcrawl.FetchError) error {
	s.logger.InfoContext(ctx, "errored", "domain", domain, "kind", err.Label(), "err", err.Err)
	return nil
}
