package crawl

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/fedcrawl"
)

// Phase is the lifecycle stage of a crawl.
type Phase int32

const (
	PhaseInit Phase = iota
	PhaseRunning
	PhaseDraining
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseRunning:
		return "running"
	case PhaseDraining:
		return "draining"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// ErrorRecord is one entry of the error log.
type ErrorRecord struct {
	Domain fedcrawl.Domain
	Err    *fedcrawl.FetchError
}

// Snapshot is a point-in-time view of a crawl's progress.
type Snapshot struct {
	Phase    Phase
	Queued   int // waiting in the frontier
	InFlight int
	Visited  int
	Skipped  int
	Errored  int
	Elapsed  time.Duration
}

// State is everything one crawl run owns: the registry, the frontier,
// the error log, the in-flight counter, and the phase.
// A State is created per run and discarded when the run returns.
type State struct {
	Registry *Registry
	Frontier fedcrawl.DomainFrontier

	started  time.Time
	phase    atomic.Int32
	inFlight atomic.Int64

	mu     sync.Mutex
	errors []ErrorRecord
}

// NewState creates the state for a crawl seeded with the given domain.
// The seed is visited and queued. A nil frontier means a new FIFO Frontier.
func NewState(seed fedcrawl.Domain, frontier fedcrawl.DomainFrontier) *State {
	if frontier == nil {
		frontier = NewFrontier()
	}
	s := &State{
		Registry: NewRegistry(),
		Frontier: frontier,
		started:  time.Now(),
	}
	s.Registry.Visit(seed)
	s.Frontier.Push(seed)
	return s
}

// Phase returns the current phase.
func (s *State) Phase() Phase {
	return Phase(s.phase.Load())
}

// SetPhase advances the phase.
func (s *State) SetPhase(p Phase) {
	s.phase.Store(int32(p))
}

// InFlight returns the number of dispatched domains without a completion.
func (s *State) InFlight() int {
	return int(s.inFlight.Load())
}

func (s *State) dispatched() { s.inFlight.Add(1) }
func (s *State) completed()  { s.inFlight.Add(-1) }

// RecordError appends to the error log.
func (s *State) RecordError(domain fedcrawl.Domain, err *fedcrawl.FetchError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, ErrorRecord{Domain: domain, Err: err})
}

// Errors returns a copy of the error log in recording order.
func (s *State) Errors() []ErrorRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ErrorRecord, len(s.errors))
	copy(out, s.errors)
	return out
}

// Elapsed returns the time since the state was created.
func (s *State) Elapsed() time.Duration {
	return time.Since(s.started)
}

// Snapshot returns the current progress. It is safe to call from any goroutine.
func (s *State) Snapshot() Snapshot {
	c := s.Registry.Counts()
	return Snapshot{
		Phase:    s.Phase(),
		Queued:   s.Frontier.Len(),
		InFlight: s.InFlight(),
		Visited:  c.Done,
		Skipped:  c.Skipped,
		Errored:  c.Errored,
		Elapsed:  s.Elapsed(),
	}
}
