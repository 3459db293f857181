package async

// Number is the set of types Sum can add up.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Partitioned splits drained results into successes and failures,
// each kept in completion order.
type Partitioned[T any] struct {
	Values []T
	Errors []error
}

// Drain pulls every result from b and hands it to fn until the batch is exhausted.
func Drain[T any](b *Batch[T], fn func(Result[T])) {
	for {
		res, ok := b.Next()
		if !ok {
			return
		}
		fn(res)
	}
}

// Fold drains b, threading an accumulator through fn.
func Fold[T, A any](b *Batch[T], init A, fn func(A, Result[T]) A) A {
	acc := init
	Drain(b, func(res Result[T]) {
		acc = fn(acc, res)
	})
	return acc
}

// Discard waits for every operation and drops the results.
// It returns the number of results drained.
func Discard[T any](b *Batch[T]) int {
	return Fold(b, 0, func(n int, _ Result[T]) int { return n + 1 })
}

// Sum adds up every successful value. Failures are not added; they are returned
// in completion order so the caller can still see them.
func Sum[N Number](b *Batch[N]) (N, []error) {
	var (
		total N
		errs  []error
	)
	Drain(b, func(res Result[N]) {
		if res.Err != nil {
			errs = append(errs, res.Err)
			return
		}
		total += res.Value
	})
	return total, errs
}

// Collect drains b into a slice in completion order.
func Collect[T any](b *Batch[T]) []Result[T] {
	out := make([]Result[T], 0, b.Len())
	Drain(b, func(res Result[T]) {
		out = append(out, res)
	})
	return out
}

// Partition drains b and separates successful values from errors.
func Partition[T any](b *Batch[T]) Partitioned[T] {
	return Fold(b, Partitioned[T]{}, func(p Partitioned[T], res Result[T]) Partitioned[T] {
		if res.Err != nil {
			p.Errors = append(p.Errors, res.Err)
		} else {
			p.Values = append(p.Values, res.Value)
		}
		return p
	})
}
