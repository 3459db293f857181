package async

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/dmitrymomot/fanout/pkg/logger"
)

// Batch drives a set of operations concurrently and yields their results in
// completion order. Every pushed operation produces exactly one Result, and a
// failing operation never affects its siblings.
//
// Batch is safe for concurrent use. Results are normally drained by a single
// consumer; concurrent pullers still receive each result exactly once.
type Batch[T any] struct {
	id   uuid.UUID
	opts *options
	log  *slog.Logger
	sem  *semaphore.Weighted

	mu       sync.Mutex
	nextID   uint64
	inflight int
	ready    []Result[T]
	pending  []pendingOp[T] // waiting for a concurrency slot, oldest first

	// signal holds at most one pending wake-up for pullers.
	signal chan struct{}
}

type pendingOp[T any] struct {
	id uint64
	op Operation[T]
}

// New creates an empty Batch.
func New[T any](opts ...Option) *Batch[T] {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	b := &Batch[T]{
		id:     uuid.New(),
		opts:   o,
		signal: make(chan struct{}, 1),
	}
	b.log = o.logger.With(
		logger.Component("async.batch"),
		logger.BatchID(b.id),
		slog.String("batch", o.name),
	)
	if o.maxConcurrency > 0 {
		b.sem = semaphore.NewWeighted(int64(o.maxConcurrency))
	}
	return b
}

// ID returns the unique identifier of the batch.
func (b *Batch[T]) ID() uuid.UUID {
	return b.id
}

// Len returns the number of operations pushed but not yet yielded by Next.
func (b *Batch[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inflight + len(b.ready)
}

// Push adds op to the batch and starts driving it. It returns the operation ID.
// Push may be called at any time, including while the batch is being drained.
// A nil op is delivered as a result carrying ErrNilOperation.
func (b *Batch[T]) Push(op Operation[T]) uint64 {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.inflight++
	b.mu.Unlock()

	b.log.DebugContext(b.opts.ctx, "operation pushed", logger.OperationID(id))

	if op == nil {
		b.complete(Result[T]{ID: id, Err: ErrNilOperation})
		return id
	}

	if b.sem == nil {
		go b.run(id, op)
		return id
	}

	b.mu.Lock()
	b.pending = append(b.pending, pendingOp[T]{id: id, op: op})
	b.mu.Unlock()
	b.admit()
	return id
}

// PushAll pushes every op in order and returns the number pushed.
func (b *Batch[T]) PushAll(ops ...Operation[T]) int {
	for _, op := range ops {
		b.Push(op)
	}
	return len(ops)
}

// Next blocks until some operation completes and returns its result.
// It returns ok=false only when the batch holds no pending operation; further
// calls keep returning ok=false until something new is pushed.
func (b *Batch[T]) Next() (Result[T], bool) {
	res, ok, _ := b.NextContext(context.Background())
	return res, ok
}

// NextContext is like Next but gives up when ctx ends, returning ctx.Err().
// A result that completes after the caller gave up stays queued for a later pull.
func (b *Batch[T]) NextContext(ctx context.Context) (Result[T], bool, error) {
	return b.next(ctx, false)
}

// next pops the oldest ready result. With hold set, the popped result stays
// counted as in flight until release or requeue hands it over.
func (b *Batch[T]) next(ctx context.Context, hold bool) (Result[T], bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		b.mu.Lock()
		if len(b.ready) > 0 {
			res := b.ready[0]
			b.ready[0] = Result[T]{}
			b.ready = b.ready[1:]
			if hold {
				b.inflight++
			}
			// Pass the wake-up on: another puller may be waiting for the rest.
			if len(b.ready) > 0 || b.inflight == 0 {
				b.notify()
			}
			b.mu.Unlock()
			return res, true, nil
		}
		if b.inflight == 0 {
			b.notify()
			b.mu.Unlock()
			var zero Result[T]
			return zero, false, nil
		}
		b.mu.Unlock()

		select {
		case <-b.signal:
		case <-ctx.Done():
			var zero Result[T]
			return zero, false, ctx.Err()
		}
	}
}

// Results adapts NextContext into a range-friendly channel.
// The channel closes when the batch is exhausted or ctx ends.
//
// To stop reading early, cancel ctx. The result waiting to be sent then goes
// back to the batch. Until ctx ends that result still counts in Len, and other
// pullers cannot observe exhaustion.
func (b *Batch[T]) Results(ctx context.Context) <-chan Result[T] {
	if ctx == nil {
		ctx = context.Background()
	}

	out := make(chan Result[T])
	go func() {
		defer close(out)
		for {
			res, ok, err := b.next(ctx, true)
			if err != nil || !ok {
				return
			}
			select {
			case out <- res:
				b.release()
			case <-ctx.Done():
				// Hand the result back so it is not lost.
				b.requeue(res)
				return
			}
		}
	}()
	return out
}

// All returns an iterator over results in completion order, keyed by operation ID.
func (b *Batch[T]) All() iter.Seq2[uint64, Result[T]] {
	return func(yield func(uint64, Result[T]) bool) {
		for {
			res, ok := b.Next()
			if !ok {
				return
			}
			if !yield(res.ID, res) {
				return
			}
		}
	}
}

// admit starts queued operations, oldest first, while concurrency slots are free.
func (b *Batch[T]) admit() {
	for {
		b.mu.Lock()
		if len(b.pending) == 0 || !b.sem.TryAcquire(1) {
			b.mu.Unlock()
			return
		}
		p := b.pending[0]
		b.pending[0] = pendingOp[T]{}
		b.pending = b.pending[1:]
		b.mu.Unlock()

		go b.run(p.id, p.op)
	}
}

func (b *Batch[T]) run(id uint64, op Operation[T]) {
	start := time.Now()
	value, err := b.invoke(id, op)
	elapsed := time.Since(start)

	if b.sem != nil {
		b.sem.Release(1)
		b.admit()
	}

	b.complete(Result[T]{
		ID:      id,
		Value:   value,
		Err:     err,
		Elapsed: elapsed,
	})
}

func (b *Batch[T]) invoke(id uint64, op Operation[T]) (value T, err error) {
	if b.opts.panicToError {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				value = zero
				err = fmt.Errorf("%w: %v", ErrPanic, r)
				b.log.WarnContext(b.opts.ctx, "operation panic recovered",
					logger.OperationID(id),
					slog.Any("panic", r),
				)
			}
		}()
	}
	return op(b.opts.ctx)
}

func (b *Batch[T]) complete(res Result[T]) {
	// Log before publishing so the record is written by the time a puller sees the result.
	b.log.DebugContext(b.opts.ctx, "operation completed",
		logger.OperationID(res.ID),
		logger.Duration(res.Elapsed),
		logger.Error(res.Err),
	)

	b.mu.Lock()
	b.inflight--
	b.ready = append(b.ready, res)
	b.notify()
	b.mu.Unlock()
}

// release marks a held result as delivered.
func (b *Batch[T]) release() {
	b.mu.Lock()
	b.inflight--
	b.notify()
	b.mu.Unlock()
}

// requeue puts a held result back at the front of the ready queue.
func (b *Batch[T]) requeue(res Result[T]) {
	b.mu.Lock()
	b.inflight--
	b.ready = append([]Result[T]{res}, b.ready...)
	b.notify()
	b.mu.Unlock()
}

// notify must be called with mu held.
func (b *Batch[T]) notify() {
	select {
	case b.signal <- struct{}{}:
	default:
	}
}
