package crawl

import (
	"sync"

	"github.com/fwojciec/fedcrawl"
)

// Compile-time interface verification.
var _ fedcrawl.DomainFrontier = (*Frontier)(nil)

// Frontier is an unbounded FIFO queue of domains awaiting dispatch.
// It is safe for concurrent use by multiple goroutines.
// Deduplication is the Registry's job; the frontier queues whatever it is given.
type Frontier struct {
	mu    sync.Mutex
	queue []fedcrawl.Domain
	head  int
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{}
}

// Push appends a domain to the back of the queue.
func (f *Frontier) Push(domain fedcrawl.Domain) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, domain)
}

// Pop removes the domain at the front of the queue.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (fedcrawl.Domain, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.head == len(f.queue) {
		return "", false
	}
	domain := f.queue[f.head]
	f.queue[f.head] = ""
	f.head++

	// Reclaim the consumed prefix once it dominates the slice.
	if f.head > 64 && f.head*2 >= len(f.queue) {
		n := copy(f.queue, f.queue[f.head:])
		f.queue = f.queue[:n]
		f.head = 0
	}
	return domain, true
}

// Len returns the number of queued domains.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue) - f.head
}
