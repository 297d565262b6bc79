package crawl

import (
	"sort"
	"sync"

	"github.com/fwojciec/fedcrawl"
)

// Status is the lifecycle state of a visited domain.
type Status int

const (
	// StatusQueued means the domain was claimed for dispatch and its
	// outcome has not been recorded yet.
	StatusQueued Status = iota
	// StatusDone means a successful fetch was recorded.
	StatusDone
	// StatusErrored means a terminal error was recorded.
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusDone:
		return "done"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Counts summarizes a Registry.
type Counts struct {
	Queued  int
	Done    int
	Errored int
	Skipped int
}

// Registry holds the visited and skipped sets of a single crawl.
// Every membership test and insert happens under one mutex, so two
// concurrent discoveries of the same domain yield exactly one winner.
type Registry struct {
	mu      sync.Mutex
	visited map[fedcrawl.Domain]Status
	skipped map[fedcrawl.Domain]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		visited: make(map[fedcrawl.Domain]Status),
		skipped: make(map[fedcrawl.Domain]struct{}),
	}
}

// Visit claims the domain for dispatch.
// It returns true only for the first caller; later calls and calls for
// skipped domains return false.
func (r *Registry) Visit(domain fedcrawl.Domain) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.visited[domain]; ok {
		return false
	}
	if _, ok := r.skipped[domain]; ok {
		return false
	}
	r.visited[domain] = StatusQueued
	return true
}

// Skip records an excluded domain.
// It returns true only the first time, and refuses domains already visited
// so the two sets stay disjoint.
func (r *Registry) Skip(domain fedcrawl.Domain) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.visited[domain]; ok {
		return false
	}
	if _, ok := r.skipped[domain]; ok {
		return false
	}
	r.skipped[domain] = struct{}{}
	return true
}

// MarkDone records a successful outcome for a visited domain.
func (r *Registry) MarkDone(domain fedcrawl.Domain) {
	r.mark(domain, StatusDone)
}

// MarkErrored records a terminal error for a visited domain.
func (r *Registry) MarkErrored(domain fedcrawl.Domain) {
	r.mark(domain, StatusErrored)
}

func (r *Registry) mark(domain fedcrawl.Domain, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.visited[domain]; ok {
		r.visited[domain] = status
	}
}

// Status returns the state of a visited domain.
// The bool result is false if the domain was never visited.
func (r *Registry) Status(domain fedcrawl.Domain) (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status, ok := r.visited[domain]
	return status, ok
}

// Counts returns the size of each set.
func (r *Registry) Counts() Counts {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := Counts{Skipped: len(r.skipped)}
	for _, status := range r.visited {
		switch status {
		case StatusQueued:
			c.Queued++
		case StatusDone:
			c.Done++
		case StatusErrored:
			c.Errored++
		}
	}
	return c
}

// Domains returns the sorted visited domains with the given status.
func (r *Registry) Domains(status Status) []fedcrawl.Domain {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []fedcrawl.Domain
	for d, s := range r.visited {
		if s == status {
			out = append(out, d)
		}
	}
	sortDomains(out)
	return out
}

func sortDomains(ds []fedcrawl.Domain) {
	sort.Slice(ds, func(i, j int) bool { return ds[i] < ds[j] })
}
