package async

import (
	"context"
	"time"
)

// Future represents the result of an asynchronous computation started with Async.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

// Await waits for the asynchronous function to complete and returns its result and error.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout waits for completion at most timeout.
// Returns ErrTimeout if the function is still running when the timeout fires.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.result, f.err
	case <-timer.C:
		var zero U
		return zero, ErrTimeout
	}
}

// IsComplete checks if the asynchronous function is complete without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Operation adapts the future so it can be pushed into a Batch.
// The operation completes when the future does, or with ctx.Err() if the
// driving context ends first. The future itself keeps running either way.
func (f *Future[U]) Operation() Operation[U] {
	return func(ctx context.Context) (U, error) {
		select {
		case <-f.done:
			return f.result, f.err
		case <-ctx.Done():
			var zero U
			return zero, ctx.Err()
		}
	}
}

// Async executes fn in its own goroutine and returns a Future for its result.
// A pre-canceled ctx completes the future with ctx.Err() without calling fn.
func Async[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		f.result, f.err = fn(ctx, param)
	}()

	return f
}
