// Package slog provides logging decorators for fedcrawl services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/fedcrawl"
)

// Ensure LoggingPeerFetcher implements fedcrawl.PeerFetcher.
var _ fedcrawl.PeerFetcher = (*LoggingPeerFetcher)(nil)

// LoggingPeerFetcher wraps a PeerFetcher with debug logging.
type LoggingPeerFetcher struct {
	next   fedcrawl.PeerFetcher
	logger *slog.Logger
}

// NewLoggingPeerFetcher creates a new LoggingPeerFetcher.
func NewLoggingPeerFetcher(next fedcrawl.PeerFetcher, logger *slog.Logger) *LoggingPeerFetcher {
	return &LoggingPeerFetcher{next: next, logger: logger}
}

// FetchPeers delegates to the wrapped fetcher and logs the operation.
func (f *LoggingPeerFetcher) FetchPeers(ctx context.Context, domain fedcrawl.Domain) (peers []string, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"domain", domain,
			"peers", len(peers),
			"duration", time.Since(begin),
		}
		if fe := fedcrawl.AsFetchError(err); fe != nil {
			attrs = append(attrs, "kind", fe.Label(), "err", err)
		}
		f.logger.DebugContext(ctx, "fetch peers", attrs...)
	}(time.Now())
	return f.next.FetchPeers(ctx, domain)
}
