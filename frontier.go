package fedcrawl

// DomainFrontier is the queue of domains discovered but not yet fetched.
type DomainFrontier interface {
	// Push appends a domain to the back of the queue.
	Push(domain Domain)

	// Pop removes the domain at the front of the queue.
	// Returns false if the frontier is empty.
	Pop() (Domain, bool)

	// Len returns the number of queued domains.
	Len() int
}
