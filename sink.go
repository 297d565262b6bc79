package fedcrawl

import (
	"context"
	"errors"
)

// ResultSink receives exactly one event per domain outcome.
// Implementations must be safe for use by a single writer goroutine;
// the crawl scheduler never calls a sink concurrently.
type ResultSink interface {
	// Visited records a domain whose peer list was fetched successfully.
	Visited(ctx context.Context, domain Domain) error

	// Skipped records a domain matched by an exclusion pattern.
	Skipped(ctx context.Context, domain Domain) error

	// Errored records a domain whose fetch failed terminally.
	Errored(ctx context.Context, domain Domain, err *FetchError) error
}

// Ensure MultiSink implements ResultSink at compile time.
var _ ResultSink = MultiSink(nil)

// MultiSink fans every event out to each sink in order.
// All sinks receive the event even if an earlier one fails.
type MultiSink []ResultSink

func (m MultiSink) Visited(ctx context.Context, domain Domain) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Visited(ctx, domain))
	}
	return errors.Join(errs...)
}

func (m MultiSink) Skipped(ctx context.Context, domain Domain) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Skipped(ctx, domain))
	}
	return errors.Join(errs...)
}

func (m MultiSink) Errored(ctx context.Context, domain Domain, err *FetchError) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Errored(ctx, domain, err))
	}
	return errors.Join(errs...)
}

// Ensure RunSink implements ResultSink at compile time.
var _ ResultSink = (*RunSink)(nil)

// RunSink records outcomes against a run in a RunService.
type RunSink struct {
	Runs  RunService
	RunID string
}

func (s *RunSink) Visited(ctx context.Context, domain Domain) error {
	return s.Runs.RecordOutcome(ctx, &Outcome{
		RunID:  s.RunID,
		Domain: domain,
		Status: StatusVisited,
	})
}

func (s *RunSink) Skipped(ctx context.Context, domain Domain) error {
	return s.Runs.RecordOutcome(ctx, &Outcome{
		RunID:  s.RunID,
		Domain: domain,
		Status: StatusSkipped,
	})
}

func (s *RunSink) Errored(ctx context.Context, domain Domain, err *FetchError) error {
	return s.Runs.RecordOutcome(ctx, &Outcome{
		RunID:     s.RunID,
		Domain:    domain,
		Status:    StatusErrored,
		ErrorKind: err.Label(),
	})
}
