// Package crawl provides federated peer discovery orchestration.
// It coordinates the frontier, the worker pool, exclusion, deduplication,
// and termination of a crawl started from a single seed domain.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/fedcrawl"
)

// DefaultConcurrency is the number of workers used when none is configured.
const DefaultConcurrency = 10

// DefaultDrainTimeout bounds how long a stopped crawl waits for in-flight fetches.
const DefaultDrainTimeout = 5 * time.Second

// Scheduler crawls the peer graph reachable from a seed domain.
type Scheduler struct {
	Fetcher    fedcrawl.PeerFetcher
	Exclusions *fedcrawl.ExclusionFilter
	Sink       fedcrawl.ResultSink

	Concurrency    int
	Budget         time.Duration
	SampleInterval time.Duration
	DrainTimeout   time.Duration

	// Progress, if set, receives events from the coordinator goroutine and
	// samples from the detector goroutine.
	Progress ProgressFunc
}

// Result holds the outcome of a crawl.
type Result struct {
	Seed    fedcrawl.Domain
	Visited int
	Skipped int
	Errored int
	// Pending counts domains that were discovered but have no recorded
	// outcome. It is zero when Reason is StopCompleted.
	Pending int
	// Unfinished lists the pending domains, sorted.
	Unfinished []fedcrawl.Domain
	Elapsed time.Duration
	Reason  StopReason
	Errors  []ErrorRecord
}

// EventType identifies a progress event.
type EventType int

const (
	EventVisited EventType = iota
	EventSkipped
	EventErrored
	EventSample
)

// Event reports crawl progress. Snapshot is only set for EventSample.
type Event struct {
	Type     EventType
	Domain   fedcrawl.Domain
	Err      *fedcrawl.FetchError
	Snapshot Snapshot
}

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event Event)

// Run crawls from seed until the frontier is exhausted, the budget runs out,
// or ctx is canceled. Per-domain failures never fail the run; they are
// recorded through the sink. The returned error is non-nil for invalid
// configuration or when a sink write failed, in which case the Result is
// still complete.
func (s *Scheduler) Run(ctx context.Context, seed fedcrawl.Domain) (*Result, error) {
	if seed == "" {
		return nil, fedcrawl.Errorf(fedcrawl.EINVALID, "seed domain required")
	}
	if s.Fetcher == nil {
		return nil, fedcrawl.Errorf(fedcrawl.EINVALID, "peer fetcher required")
	}
	if s.Sink == nil {
		return nil, fedcrawl.Errorf(fedcrawl.EINVALID, "result sink required")
	}

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	drainTimeout := s.DrainTimeout
	if drainTimeout <= 0 {
		drainTimeout = DefaultDrainTimeout
	}

	state := NewState(seed, nil)
	detector := &Detector{
		Interval: s.SampleInterval,
		Budget:   s.Budget,
		OnSample: func(snap Snapshot) {
			s.emit(Event{Type: EventSample, Snapshot: snap})
		},
	}
	watch := detector.Start(ctx, state.Snapshot)
	defer watch.Stop()

	pool := NewPool(ctx, concurrency, s.fetch)
	state.SetPhase(PhaseRunning)

	// Sink writes must land even while an interrupted run drains.
	sinkCtx := context.WithoutCancel(ctx)
	var sinkErr error
	record := func(c Completion) {
		if err := s.complete(sinkCtx, state, c); err != nil && sinkErr == nil {
			sinkErr = err
		}
	}

	var next fedcrawl.Domain
	hasNext := false

coordinatorLoop:
	for {
		if ctx.Err() != nil {
			watch.finish(StopInterrupted)
			break coordinatorLoop
		}
		// A stop must win over a ready worker.
		select {
		case <-watch.Done():
			break coordinatorLoop
		default:
		}

		if !hasNext {
			next, hasNext = state.Frontier.Pop()
		}

		if !hasNext && state.InFlight() == 0 {
			watch.Complete()
			break coordinatorLoop
		}

		// A nil channel disables the dispatch case when there is nothing to send.
		var work chan<- fedcrawl.Domain
		if hasNext {
			work = pool.Work()
		}

		select {
		case <-watch.Done():
			break coordinatorLoop
		case work <- next:
			state.dispatched()
			hasNext = false
		case c, ok := <-pool.Results():
			if !ok {
				break coordinatorLoop
			}
			state.completed()
			if abandoned(ctx, c) {
				continue
			}
			record(c)
		}
	}

	state.SetPhase(PhaseDraining)
	pool.Close()

	drainTimer := time.NewTimer(drainTimeout)
	defer drainTimer.Stop()
drainLoop:
	for {
		select {
		case c, ok := <-pool.Results():
			if !ok {
				break drainLoop
			}
			state.completed()
			if abandoned(ctx, c) {
				continue
			}
			record(c)
		case <-drainTimer.C:
			break drainLoop
		}
	}
	pool.Abort()
	state.SetPhase(PhaseDone)

	counts := state.Registry.Counts()
	result := &Result{
		Seed:       seed,
		Visited:    counts.Done,
		Skipped:    counts.Skipped,
		Errored:    counts.Errored,
		Pending:    counts.Queued,
		Unfinished: state.Registry.Domains(StatusQueued),
		Elapsed:    state.Elapsed(),
		Reason:     watch.Reason(),
		Errors:     state.Errors(),
	}
	if sinkErr != nil {
		return result, fmt.Errorf("result sink: %w", sinkErr)
	}
	return result, nil
}

// abandoned reports whether a completion was cut short by an interrupt.
// Such domains stay pending so a later run redoes them.
func abandoned(ctx context.Context, c Completion) bool {
	return ctx.Err() != nil && c.Err != nil && errors.Is(c.Err, context.Canceled)
}

// fetch runs the fetcher for one domain and converts every failure,
// including a panic, into a classified error.
func (s *Scheduler) fetch(ctx context.Context, domain fedcrawl.Domain) (c Completion) {
	c.Domain = domain
	defer func() {
		if r := recover(); r != nil {
			c.Peers = nil
			c.Err = &fedcrawl.FetchError{Kind: fedcrawl.KindUnknown, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	peers, err := s.Fetcher.FetchPeers(ctx, domain)
	if err != nil {
		c.Err = fedcrawl.AsFetchError(err)
		return c
	}
	c.Peers = peers
	return c
}

// complete records one completion: errors go to the error log, peers are
// filtered and deduplicated into the frontier, and the domain is marked
// only after its outcome reached the sink. A domain has one outcome; a
// completion for a domain that is not queued is ignored.
func (s *Scheduler) complete(ctx context.Context, state *State, c Completion) error {
	if status, ok := state.Registry.Status(c.Domain); !ok || status != StatusQueued {
		return nil
	}
	if c.Err != nil {
		state.RecordError(c.Domain, c.Err)
		err := s.Sink.Errored(ctx, c.Domain, c.Err)
		state.Registry.MarkErrored(c.Domain)
		s.emit(Event{Type: EventErrored, Domain: c.Domain, Err: c.Err})
		return err
	}

	var errs []error
	for _, raw := range c.Peers {
		peer, err := fedcrawl.ParseDomain(raw)
		if err != nil {
			continue
		}
		if s.Exclusions.IsExcluded(peer) {
			if state.Registry.Skip(peer) {
				errs = append(errs, s.Sink.Skipped(ctx, peer))
				s.emit(Event{Type: EventSkipped, Domain: peer})
			}
			continue
		}
		if state.Registry.Visit(peer) {
			state.Frontier.Push(peer)
		}
	}

	errs = append(errs, s.Sink.Visited(ctx, c.Domain))
	state.Registry.MarkDone(c.Domain)
	s.emit(Event{Type: EventVisited, Domain: c.Domain})
	return errors.Join(errs...)
}

func (s *Scheduler) emit(e Event) {
	if s.Progress != nil {
		s.Progress(e)
	}
}
