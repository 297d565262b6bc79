package crawl

import (
	"context"

	"github.com/fwojciec/fedcrawl"
	"golang.org/x/sync/errgroup"
)

// Completion is the outcome of fetching one domain.
// Exactly one of Peers or Err is meaningful.
type Completion struct {
	Domain fedcrawl.Domain
	Peers  []string
	Err    *fedcrawl.FetchError
}

// FetchFunc fetches a single domain. It must not panic.
type FetchFunc func(ctx context.Context, domain fedcrawl.Domain) Completion

// Pool runs fetches on a fixed number of workers sharing one work queue.
// The queue is unbuffered, so at most n fetches are in flight.
type Pool struct {
	work    chan fedcrawl.Domain
	results chan Completion
	cancel  context.CancelFunc
}

// NewPool starts n workers that call fetch for every domain sent to Work.
// Workers stop delivering results once ctx is canceled or Abort is called.
func NewPool(ctx context.Context, n int, fetch FetchFunc) *Pool {
	if n < 1 {
		n = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &Pool{
		work:    make(chan fedcrawl.Domain),
		results: make(chan Completion),
		cancel:  cancel,
	}

	g, ctx := errgroup.WithContext(ctx)
	for range n {
		g.Go(func() error {
			for domain := range p.work {
				c := fetch(ctx, domain)
				select {
				case p.results <- c:
				case <-ctx.Done():
					return nil
				}
			}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		cancel()
		close(p.results)
	}()

	return p
}

// Work returns the send side of the work queue.
func (p *Pool) Work() chan<- fedcrawl.Domain {
	return p.work
}

// Results returns completions. The channel is closed once every worker has exited.
func (p *Pool) Results() <-chan Completion {
	return p.results
}

// Close closes the work queue. Workers finish their current fetch and exit.
// Close must be called exactly once, after the last send to Work.
func (p *Pool) Close() {
	close(p.work)
}

// Abort cancels in-flight fetches and stops result delivery.
func (p *Pool) Abort() {
	p.cancel()
}
