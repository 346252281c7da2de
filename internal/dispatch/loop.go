// Package dispatch delivers completions of background work on a single
// serial context, so callers that own mutable presentation state never see
// two callbacks at once.
package dispatch

import (
	"context"
	"sync"
)

// Loop runs posted functions one at a time in the order they were posted.
type Loop struct {
	tasks    chan func()
	quit     chan struct{}
	stopOnce sync.Once
	running  sync.WaitGroup
}

func NewLoop(buffer int) *Loop {
	if buffer < 0 {
		buffer = 0
	}
	return &Loop{
		tasks: make(chan func(), buffer),
		quit:  make(chan struct{}),
	}
}

// Run executes posted functions until ctx is done or Stop is called. The
// loop cannot be restarted once Run returns.
func (l *Loop) Run(ctx context.Context) error {
	l.running.Add(1)
	defer l.running.Done()
	defer l.close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.quit:
			return nil
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Start runs the loop on its own goroutine.
func (l *Loop) Start(ctx context.Context) {
	l.running.Add(1)
	go func() {
		defer l.running.Done()
		_ = l.Run(ctx)
	}()
}

// Post queues fn. It returns false once the loop has been stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.quit:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.quit:
		return false
	}
}

// Stop ends Run and waits for the function in progress to return. Queued
// functions that have not started are dropped.
func (l *Loop) Stop() {
	l.close()
	l.running.Wait()
}

// Done is closed once the loop stops accepting work.
func (l *Loop) Done() <-chan struct{} {
	return l.quit
}

func (l *Loop) close() {
	l.stopOnce.Do(func() { close(l.quit) })
}

// Sync posts fn and blocks until it has run on the loop.
func (l *Loop) Sync(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.quit:
		return ErrStopped
	}
}
