package crawl

import (
	"context"
	"sync"
	"time"
)

// DefaultSampleInterval is how often a Detector samples crawl state.
const DefaultSampleInterval = 5 * time.Second

// StopReason reports why a crawl stopped.
type StopReason int

const (
	// StopCompleted means the frontier drained with nothing in flight.
	StopCompleted StopReason = iota
	// StopBudgetExceeded means the wall-clock budget ran out.
	StopBudgetExceeded
	// StopInterrupted means the run context was canceled.
	StopInterrupted
)

func (r StopReason) String() string {
	switch r {
	case StopCompleted:
		return "completed"
	case StopBudgetExceeded:
		return "budget exceeded"
	case StopInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Detector decides when a crawl is over.
type Detector struct {
	// Interval between samples. Defaults to DefaultSampleInterval.
	Interval time.Duration

	// Budget is an optional wall-clock limit. Zero means none.
	Budget time.Duration

	// OnSample, if set, receives every sample.
	OnSample func(Snapshot)
}

// Start begins watching. sample is called on every tick.
// The caller must call Stop on the returned Watch.
func (d *Detector) Start(ctx context.Context, sample func() Snapshot) *Watch {
	interval := d.Interval
	if interval <= 0 {
		interval = DefaultSampleInterval
	}

	w := &Watch{
		done:    make(chan struct{}),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	var budget <-chan time.Time
	if d.Budget > 0 {
		w.timer = time.NewTimer(d.Budget)
		budget = w.timer.C
	}

	go w.run(ctx, interval, budget, sample, d.OnSample)
	return w
}

// Watch is a running termination check.
type Watch struct {
	mu     sync.Mutex
	reason StopReason
	once   sync.Once
	done   chan struct{}

	timer   *time.Timer
	stop    chan struct{}
	stopped chan struct{}
	halt    sync.Once
}

func (w *Watch) run(ctx context.Context, interval time.Duration, budget <-chan time.Time, sample func() Snapshot, onSample func(Snapshot)) {
	defer close(w.stopped)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	interrupt := ctx.Done()
	for {
		select {
		case <-w.stop:
			return
		case <-interrupt:
			interrupt = nil
			w.finish(StopInterrupted)
		case <-budget:
			budget = nil
			w.finish(StopBudgetExceeded)
		case <-ticker.C:
			if onSample != nil {
				onSample(sample())
			}
		}
	}
}

func (w *Watch) finish(reason StopReason) {
	w.once.Do(func() {
		w.mu.Lock()
		w.reason = reason
		w.mu.Unlock()
		close(w.done)
	})
}

// Done is closed on completion, budget expiry, or interrupt, whichever is first.
func (w *Watch) Done() <-chan struct{} {
	return w.done
}

// Reason reports why Done closed. It is only meaningful after Done is closed.
func (w *Watch) Reason() StopReason {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reason
}

// Complete signals that the crawl finished on its own.
func (w *Watch) Complete() {
	w.finish(StopCompleted)
}

// Stop ends sampling and waits for the watch goroutine to exit.
// It is safe to call more than once.
func (w *Watch) Stop() {
	w.halt.Do(func() {
		close(w.stop)
		<-w.stopped
		if w.timer != nil {
			w.timer.Stop()
		}
	})
}
