package mock

import (
	"context"

	"github.com/fwojciec/fedcrawl"
)

var _ fedcrawl.DomainFrontier = (*DomainFrontier)(nil)

// DomainFrontier is a mock implementation of fedcrawl.DomainFrontier.
type DomainFrontier struct {
	PushFn func(domain fedcrawl.Domain)
	PopFn  func() (fedcrawl.Domain, bool)
	LenFn  func() int
}

func (f *DomainFrontier) Push(domain fedcrawl.Domain) {
	f.PushFn(domain)
}

func (f *DomainFrontier) Pop() (fedcrawl.Domain, bool) {
	return f.PopFn()
}

func (f *DomainFrontier) Len() int {
	return f.LenFn()
}

var _ fedcrawl.Limiter = (*Limiter)(nil)

// Limiter is a mock implementation of fedcrawl.Limiter.
type Limiter struct {
	WaitFn func(ctx context.Context) error
}

func (l *Limiter) Wait(ctx context.Context) error {
	return l.WaitFn(ctx)
}
