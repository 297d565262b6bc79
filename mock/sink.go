package mock

import (
	"context"

	"github.com/fwojciec/fedcrawl"
)

var _ fedcrawl.ResultSink = (*ResultSink)(nil)

// ResultSink is a mock implementation of fedcrawl.ResultSink.
type ResultSink struct {
	VisitedFn func(ctx context.Context, domain fedcrawl.Domain) error
	SkippedFn func(ctx context.Context, domain fedcrawl.Domain) error
	ErroredFn func(ctx context.Context, domain fedcrawl.Domain, err *fedcrawl.FetchError) error
}

func (s *ResultSink) Visited(ctx context.Context, domain fedcrawl.Domain) error {
	return s.VisitedFn(ctx, domain)
}

func (s *ResultSink) Skipped(ctx context.Context, domain fedcrawl.Domain) error {
	return s.SkippedFn(ctx, domain)
}

func (s *ResultSink) Errored(ctx context.Context, domain fedcrawl.Domain, err *fedcrawl.FetchError) error {
	return s.ErroredFn(ctx, domain, err)
}
