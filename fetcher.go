package fedcrawl

import "context"

// DefaultPeersPath is the peer-list endpoint of a federated server.
const DefaultPeersPath = "/api/v1/instance/peers"

// PeerFetcher retrieves the raw peer list of a single domain.
// Failures are returned as *FetchError so callers can record their kind.
type PeerFetcher interface {
	// FetchPeers returns the peers the domain reports knowing about,
	// exactly as listed by the server.
	// The context controls timeout and cancellation.
	FetchPeers(ctx context.Context, domain Domain) ([]string, error)
}

// PeerCache persists the last successful peer list of each domain.
type PeerCache interface {
	// Load returns the cached peer list for the domain.
	// Any failure to read the entry is reported as a miss.
	Load(ctx context.Context, domain Domain) (peers []string, found bool)

	// Store replaces the cached entry for the domain. Writes are all-or-nothing.
	Store(ctx context.Context, domain Domain, peers []string) error
}

// Limiter caps the rate of outgoing requests.
type Limiter interface {
	// Wait blocks until a request may proceed.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context) error
}
