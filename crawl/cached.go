package crawl

import (
	"context"

	"github.com/fwojciec/fedcrawl"
)

// Compile-time interface verification.
var _ fedcrawl.PeerFetcher = (*CachingFetcher)(nil)

// CachingFetcher serves peer lists from a cache and falls back to the network.
// Successful network fetches are written back to the cache.
type CachingFetcher struct {
	Cache   fedcrawl.PeerCache
	Network fedcrawl.PeerFetcher

	// Discard skips cache reads. Successful fetches still overwrite entries.
	Discard bool

	// OnStoreError, if set, is told about cache writes that failed.
	// A failed write never fails the fetch.
	OnStoreError func(domain fedcrawl.Domain, err error)
}

// FetchPeers returns the domain's peers from cache or network.
// Errors are always *fedcrawl.FetchError.
func (f *CachingFetcher) FetchPeers(ctx context.Context, domain fedcrawl.Domain) ([]string, error) {
	if f.Cache != nil && !f.Discard {
		if peers, ok := f.Cache.Load(ctx, domain); ok {
			return peers, nil
		}
	}

	peers, err := f.Network.FetchPeers(ctx, domain)
	if err != nil {
		return nil, fedcrawl.AsFetchError(err)
	}

	if f.Cache != nil {
		if err := f.Cache.Store(ctx, domain, peers); err != nil && f.OnStoreError != nil {
			f.OnStoreError(domain, err)
		}
	}
	return peers, nil
}
