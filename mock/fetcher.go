package mock

import (
	"context"

	"github.com/fwojciec/fedcrawl"
)

var _ fedcrawl.PeerFetcher = (*PeerFetcher)(nil)

// PeerFetcher is a mock implementation of fedcrawl.PeerFetcher.
type PeerFetcher struct {
	FetchPeersFn func(ctx context.Context, domain fedcrawl.Domain) ([]string, error)
}

func (f *PeerFetcher) FetchPeers(ctx context.Context, domain fedcrawl.Domain) ([]string, error) {
	return f.FetchPeersFn(ctx, domain)
}

var _ fedcrawl.PeerCache = (*PeerCache)(nil)

// PeerCache is a mock implementation of fedcrawl.PeerCache.
type PeerCache struct {
	LoadFn  func(ctx context.Context, domain fedcrawl.Domain) ([]string, bool)
	StoreFn func(ctx context.Context, domain fedcrawl.Domain, peers []string) error
}

func (c *PeerCache) Load(ctx context.Context, domain fedcrawl.Domain) ([]string, bool) {
	return c.LoadFn(ctx, domain)
}

func (c *PeerCache) Store(ctx context.Context, domain fedcrawl.Domain, peers []string) error {
	return c.StoreFn(ctx, domain, peers)
}
