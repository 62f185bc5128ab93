package omophub

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Future is the pending result of a call running on its own goroutine.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go runs fn on a new goroutine and returns its Future.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn()
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks the calling goroutine until the result is ready or ctx ends.
// Abandoning a Future does not stop the call; cancel the context the call
// was started with for that.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		failure, _ := transportFailure(ctx, ctx.Err())
		return zero, failure
	}
}

// Gather awaits every future and returns the results in argument order,
// regardless of completion order. The first error is returned.
func Gather[T any](ctx context.Context, futures ...*Future[T]) ([]T, error) {
	results := make([]T, len(futures))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range futures {
		g.Go(func() error {
			value, err := f.Await(ctx)
			if err != nil {
				return err
			}
			results[i] = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
