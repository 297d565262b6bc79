package crawl

import (
	"context"

	"github.com/fwojciec/fedcrawl"
	"golang.org/x/time/rate"
)

var _ fedcrawl.Limiter = (*Limiter)(nil)

// Limiter caps the overall request rate of a crawl using a token bucket.
// Peer fetches go to a different server almost every time, so a single
// bucket shared by all workers bounds outbound load.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a Limiter allowing rps requests per second with the
// given burst. A non-positive rps means no limit.
func NewLimiter(rps float64, burst int) *Limiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until a request is allowed.
// Returns an error if the context is canceled before the wait completes.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
