// Package async provides generic helpers for fanning out asynchronous work and
// collecting the results as they finish.
//
// The centre of the package is Batch, an unordered completion multiplexer. An
// Operation is pushed into a Batch and starts running immediately in its own
// goroutine. The caller then pulls results with Next until the batch reports
// exhaustion. Results come back in the order the operations actually finished,
// never in the order they were pushed.
//
// Failures are ordinary results: an operation returning an error (or panicking,
// see WithPanicToError) is delivered through Next with Result.Err set, and the
// remaining operations keep running. The batch never aborts on its own.
//
// # Usage
//
//	import "github.com/dmitrymomot/fanout/pkg/async"
//
//	b := async.New[int](async.WithMaxConcurrency(8))
//	for i := range 10 {
//	    b.Push(func(ctx context.Context) (int, error) {
//	        return work(ctx, i)
//	    })
//	}
//
//	sum := 0
//	for {
//	    res, ok := b.Next()
//	    if !ok {
//	        break
//	    }
//	    if res.Err != nil {
//	        log.Printf("operation %d failed: %v", res.ID, res.Err)
//	        continue
//	    }
//	    sum += res.Value
//	}
//
// The drain loop above is available as folds: Drain, Fold, Discard, Sum,
// Collect and Partition. They all consume the same Next stream and differ only
// in what they accumulate. Results and All adapt the stream for range loops.
//
// # Futures
//
// Async starts a single function and returns a Future that can be awaited
// directly or pushed into a Batch via Future.Operation. WaitAll and WaitAny are
// built on top of Batch.
//
// # Concurrency
//
// Push, Next and Len are safe to call from multiple goroutines. Next may be
// interleaved with Push; a batch only reports exhaustion when nothing is in
// flight and nothing is waiting to be pulled. WithMaxConcurrency bounds the
// number of running operations; waiting operations are admitted in push order.
//
// # Error Handling
//
// Errors produced by operations are returned untouched in Result.Err. The
// package adds ErrNilOperation, ErrPanic, ErrTimeout and ErrNoFutures, all
// comparable with errors.Is.
package async
