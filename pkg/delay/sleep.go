package delay

import (
	"context"
	"time"

	"github.com/dmitrymomot/fanout/pkg/async"
)

// wait blocks for d or until ctx ends.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sleep returns an operation that completes after at least d with the time it
// actually slept. It fails with ctx.Err() if the driving context ends first.
func Sleep(d time.Duration) async.Operation[time.Duration] {
	return func(ctx context.Context) (time.Duration, error) {
		start := time.Now()
		if err := wait(ctx, d); err != nil {
			return time.Since(start), err
		}
		return time.Since(start), nil
	}
}

// After returns an operation that completes with v after d.
func After[T any](d time.Duration, v T) async.Operation[T] {
	return func(ctx context.Context) (T, error) {
		if err := wait(ctx, d); err != nil {
			var zero T
			return zero, err
		}
		return v, nil
	}
}

// Fail returns an operation that fails with err after d.
func Fail[T any](d time.Duration, err error) async.Operation[T] {
	return func(ctx context.Context) (T, error) {
		var zero T
		if werr := wait(ctx, d); werr != nil {
			return zero, werr
		}
		return zero, err
	}
}

// Delay postpones op by d. The delay counts towards the operation's elapsed time.
func Delay[T any](d time.Duration, op async.Operation[T]) async.Operation[T] {
	return func(ctx context.Context) (T, error) {
		if err := wait(ctx, d); err != nil {
			var zero T
			return zero, err
		}
		return op(ctx)
	}
}
