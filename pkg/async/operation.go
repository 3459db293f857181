package async

import (
	"context"
	"time"
)

// Operation is a single unit of asynchronous work. It is driven exactly once
// and produces exactly one terminal value or error.
type Operation[T any] func(ctx context.Context) (T, error)

// Result is the terminal outcome of one Operation as yielded by a Batch.
type Result[T any] struct {
	// ID is the push index of the operation within its batch.
	// It identifies the operation for diagnostics only and says nothing about delivery order.
	ID      uint64
	Value   T
	Err     error
	Elapsed time.Duration
}

// OK reports whether the operation completed without an error.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Func adapts a context-free callable into an Operation.
func Func[T any](fn func() (T, error)) Operation[T] {
	if fn == nil {
		return nil
	}
	return func(context.Context) (T, error) {
		return fn()
	}
}

// Value returns an Operation that completes immediately with v.
func Value[T any](v T) Operation[T] {
	return func(context.Context) (T, error) {
		return v, nil
	}
}

// Fail returns an Operation that completes immediately with err.
func Fail[T any](err error) Operation[T] {
	return func(context.Context) (T, error) {
		var zero T
		return zero, err
	}
}
