package app

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Scope ties asynchronous loads to the lifetime of a screen. Results are only
// applied while the scope is alive; Close cancels everything in flight.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

func (s *Scope) Context() context.Context { return s.ctx }

// Run starts tasks concurrently and waits for all of them. The first error
// cancels the rest of the batch but not the scope.
func (s *Scope) Run(tasks ...func(ctx context.Context) error) error {
	if !s.Alive() {
		return context.Canceled
	}
	g, ctx := errgroup.WithContext(s.ctx)
	for _, t := range tasks {
		g.Go(func() error { return t(ctx) })
	}
	return g.Wait()
}

// Update applies fn under the scope's lock if the scope is still alive and
// reports whether it ran.
func (s *Scope) Update(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.ctx.Err() != nil {
		return false
	}
	fn()
	return true
}

// Read runs fn under the scope's lock regardless of liveness.
func (s *Scope) Read(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *Scope) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.ctx.Err() == nil
}

func (s *Scope) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}
