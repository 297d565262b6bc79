package fedcrawl

import (
	"context"
	"time"
)

// OutcomeStatus is the terminal state of a domain within a run.
type OutcomeStatus string

// Outcome statuses.
const (
	StatusVisited OutcomeStatus = "visited"
	StatusSkipped OutcomeStatus = "skipped"
	StatusErrored OutcomeStatus = "errored"
)

// Run is one crawl from a seed domain.
type Run struct {
	ID         string
	Seed       Domain
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is in progress

	Visited int
	Skipped int
	Errored int
	Pending int
	Reason  string
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.Seed == "" {
		return Errorf(EINVALID, "run seed required")
	}
	return nil
}

// Finished reports whether the run has completed.
func (r *Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Outcome is the recorded result for one domain in a run.
type Outcome struct {
	RunID      string
	Domain     Domain
	Status     OutcomeStatus
	ErrorKind  string // set for StatusErrored, e.g. "HTTPError(503)"
	RecordedAt time.Time
}

// Validate returns an error if the outcome contains invalid fields.
func (o *Outcome) Validate() error {
	if o.RunID == "" {
		return Errorf(EINVALID, "outcome run ID required")
	}
	if o.Domain == "" {
		return Errorf(EINVALID, "outcome domain required")
	}
	switch o.Status {
	case StatusVisited, StatusSkipped:
	case StatusErrored:
		if o.ErrorKind == "" {
			return Errorf(EINVALID, "errored outcome requires an error kind")
		}
	default:
		return Errorf(EINVALID, "unknown outcome status %q", o.Status)
	}
	return nil
}

// RunService manages crawl run history.
type RunService interface {
	// CreateRun starts a run, assigning its ID and start time.
	CreateRun(ctx context.Context, run *Run) error

	// FinishRun stores the final counts of a run and sets its finish time.
	// Returns ENOTFOUND if the run does not exist.
	FinishRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run by ID.
	// Returns ENOTFOUND if the run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns returns up to limit runs, newest first.
	FindRuns(ctx context.Context, limit int) ([]*Run, error)

	// RecordOutcome appends an outcome to a run.
	RecordOutcome(ctx context.Context, outcome *Outcome) error

	// FindOutcomes returns a run's outcomes in recording order.
	FindOutcomes(ctx context.Context, runID string) ([]*Outcome, error)
}
