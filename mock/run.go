package mock

import (
	"context"

	"github.com/fwojciec/fedcrawl"
)

var _ fedcrawl.RunService = (*RunService)(nil)

// RunService is a mock implementation of fedcrawl.RunService.
type RunService struct {
	CreateRunFn     func(ctx context.Context, run *fedcrawl.Run) error
	FinishRunFn     func(ctx context.Context, run *fedcrawl.Run) error
	FindRunByIDFn   func(ctx context.Context, id string) (*fedcrawl.Run, error)
	FindRunsFn      func(ctx context.Context, limit int) ([]*fedcrawl.Run, error)
	RecordOutcomeFn func(ctx context.Context, outcome *fedcrawl.Outcome) error
	FindOutcomesFn  func(ctx context.Context, runID string) ([]*fedcrawl.Outcome, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *fedcrawl.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FinishRun(ctx context.Context, run *fedcrawl.Run) error {
	return s.FinishRunFn(ctx, run)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*fedcrawl.Run, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, limit int) ([]*fedcrawl.Run, error) {
	return s.FindRunsFn(ctx, limit)
}

func (s *RunService) RecordOutcome(ctx context.Context, outcome *fedcrawl.Outcome) error {
	return s.RecordOutcomeFn(ctx, outcome)
}

func (s *RunService) FindOutcomes(ctx context.Context, runID string) ([]*fedcrawl.Outcome, error) {
	return s.FindOutcomesFn(ctx, runID)
}
