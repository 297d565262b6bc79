package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/fedcrawl"
)

// Ensure LoggingPeerCache implements fedcrawl.PeerCache.
var _ fedcrawl.PeerCache = (*LoggingPeerCache)(nil)

// LoggingPeerCache wraps a PeerCache with logging.
// Hits and misses are logged at debug level, failed writes as warnings.
type LoggingPeerCache struct {
	next   fedcrawl.PeerCache
	logger *slog.Logger
}

// NewLoggingPeerCache creates a new LoggingPeerCache.
func NewLoggingPeerCache(next fedcrawl.PeerCache, logger *slog.Logger) *LoggingPeerCache {
	return &LoggingPeerCache{next: next, logger: logger}
}

// Load delegates to the wrapped cache and logs hit or miss.
func (c *LoggingPeerCache) Load(ctx context.Context, domain fedcrawl.Domain) (peers []string, ok bool) {
	defer func(begin time.Time) {
		c.logger.DebugContext(ctx, "cache load",
			"domain", domain,
			"hit", ok,
			"peers", len(peers),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return c.next.Load(ctx, domain)
}

// Store delegates to the wrapped cache and logs failures.
func (c *LoggingPeerCache) Store(ctx context.Context, domain fedcrawl.Domain, peers []string) (err error) {
	defer func(begin time.Time) {
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		c.logger.Log(ctx, level, "cache store",
			"domain", domain,
			"peers", len(peers),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Store(ctx, domain, peers)
}
