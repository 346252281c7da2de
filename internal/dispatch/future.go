package dispatch

import (
	"context"
	"errors"
	"sync"
)

var ErrStopped = errors.New("dispatch loop stopped")

// Future is the eventual result of a call started with Go.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(v T, err error) {
	f.once.Do(func() {
		f.value = v
		f.err = err
		close(f.done)
	})
}

func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is ready or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Go runs fn on a new goroutine. When it returns, cb receives the result on
// loop l. The returned Future resolves regardless of whether l still runs.
func Go[T any](l *Loop, ctx context.Context, fn func(context.Context) (T, error), cb func(T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		v, err := fn(ctx)
		f.resolve(v, err)
		if cb != nil && l != nil {
			l.Post(func() { cb(v, err) })
		}
	}()
	return f
}

// Call runs fn like Go and blocks until cb has run on l with the result. If
// l stops before delivering, Call returns once fn does.
func Call[T any](l *Loop, ctx context.Context, fn func(context.Context) (T, error), cb func(T, error)) (T, error) {
	delivered := make(chan struct{})
	f := Go(l, ctx, fn, func(v T, err error) {
		defer close(delivered)
		if cb != nil {
			cb(v, err)
		}
	})
	select {
	case <-delivered:
	case <-l.Done():
	}
	return f.Await(context.WithoutCancel(ctx))
}

// Resolved returns a Future that is already complete.
func Resolved[T any](v T, err error) *Future[T] {
	f := newFuture[T]()
	f.resolve(v, err)
	return f
}
