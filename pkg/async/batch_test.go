package async_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fanout/pkg/async"
	"github.com/dmitrymomot/fanout/pkg/delay"
	"github.com/dmitrymomot/fanout/pkg/logger"
)

// tagError marks a failure with the index of the operation that produced it.
type tagError struct {
	tag int
}

func (e *tagError) Error() string {
	return fmt.Sprintf("it didn't work for operation %d", e.tag)
}

func TestBatchEmpty(t *testing.T) {
	t.Parallel()

	b := async.New[int]()
	res, ok := b.Next()
	assert.False(t, ok)
	assert.Equal(t, async.Result[int]{}, res)
	assert.Zero(t, b.Len())
}

func TestBatchExhaustionIsIdempotent(t *testing.T) {
	t.Parallel()

	b := async.New[int]()
	b.Push(async.Value(1))

	_, ok := b.Next()
	require.True(t, ok)

	for range 3 {
		_, ok = b.Next()
		assert.False(t, ok)
	}
}

func TestBatchExactlyOnceDelivery(t *testing.T) {
	t.Parallel()

	const n = 200
	b := async.New[int]()
	for i := range n {
		id := b.Push(delay.After(time.Duration(i%7)*time.Millisecond, i))
		require.Equal(t, uint64(i), id)
	}
	assert.Equal(t, n, b.Len())

	seen := make(map[uint64]bool, n)
	for {
		res, ok := b.Next()
		if !ok {
			break
		}
		require.False(t, seen[res.ID], "operation %d yielded twice", res.ID)
		seen[res.ID] = true
		assert.Equal(t, int(res.ID), res.Value)
	}

	assert.Len(t, seen, n)
	assert.Zero(t, b.Len())
}

func TestBatchCompletionOrderNotSubmissionOrder(t *testing.T) {
	t.Parallel()

	b := async.New[int]()
	first := make(chan struct{})
	second := make(chan struct{})
	third := make(chan struct{})

	b.Push(func(context.Context) (int, error) { <-first; return 1, nil })
	b.Push(func(context.Context) (int, error) { <-second; return 2, nil })
	b.Push(func(context.Context) (int, error) { <-third; return 3, nil })

	close(second)
	res, ok := b.Next()
	require.True(t, ok)
	assert.Equal(t, 2, res.Value)
	assert.Equal(t, uint64(1), res.ID)

	close(third)
	res, ok = b.Next()
	require.True(t, ok)
	assert.Equal(t, 3, res.Value)

	close(first)
	res, ok = b.Next()
	require.True(t, ok)
	assert.Equal(t, 1, res.Value)

	_, ok = b.Next()
	assert.False(t, ok)
}

func TestBatchOrderIndependence(t *testing.T) {
	t.Parallel()

	const (
		fast = 10 * time.Millisecond
		slow = 120 * time.Millisecond
	)

	tests := []struct {
		name  string
		first async.Operation[string]
		next  async.Operation[string]
	}{
		{name: "fast pushed first", first: delay.After(fast, "A"), next: delay.After(slow, "B")},
		{name: "slow pushed first", first: delay.After(slow, "B"), next: delay.After(fast, "A")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := async.New[string]()
			b.Push(tt.first)
			b.Push(tt.next)

			got := make([]string, 0, 2)
			async.Drain(b, func(res async.Result[string]) {
				got = append(got, res.Value)
			})
			assert.Equal(t, []string{"A", "B"}, got)
		})
	}
}

func TestBatchAggregationScenario(t *testing.T) {
	t.Parallel()

	src := delay.Reverse(10, 20*time.Millisecond)
	b := async.New[int]()
	for i := range 10 {
		b.Push(delay.After(src.Next(), i*10))
	}

	sum := 0
	order := make([]uint64, 0, 10)
	async.Drain(b, func(res async.Result[int]) {
		require.NoError(t, res.Err)
		sum += res.Value
		order = append(order, res.ID)
	})

	assert.Equal(t, 450, sum)
	assert.Equal(t, []uint64{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}, order)
}

func TestBatchMixedSuccessAndFailure(t *testing.T) {
	t.Parallel()

	b := async.New[int]()
	for i := range 10 {
		d := time.Duration(10-i) * time.Millisecond
		if i%2 == 0 {
			b.Push(delay.After(d, i*10))
		} else {
			b.Push(delay.Fail[int](d, &tagError{tag: i}))
		}
	}

	var (
		sum       int
		successes int
		tags      = map[int]int{}
	)
	for {
		res, ok := b.Next()
		if !ok {
			break
		}
		if res.Err != nil {
			var te *tagError
			require.ErrorAs(t, res.Err, &te)
			tags[te.tag]++
			continue
		}
		successes++
		sum += res.Value
	}

	assert.Equal(t, 5, successes)
	assert.Equal(t, 100, sum)
	assert.Equal(t, map[int]int{1: 1, 3: 1, 5: 1, 7: 1, 9: 1}, tags)
}

func TestBatchFailureIsolation(t *testing.T) {
	t.Parallel()

	const (
		n      = 10
		failAt = 3
	)
	errBoom := errors.New("boom")

	b := async.New[int]()
	for i := range n {
		if i == failAt {
			// The failing operation finishes first.
			b.Push(async.Fail[int](errBoom))
			continue
		}
		b.Push(delay.After(time.Duration(i+1)*5*time.Millisecond, i))
	}

	results := async.Collect(b)
	require.Len(t, results, n)

	assert.ErrorIs(t, results[0].Err, errBoom)
	assert.Equal(t, uint64(failAt), results[0].ID)

	for _, res := range results[1:] {
		require.NoError(t, res.Err)
		assert.Equal(t, int(res.ID), res.Value)
	}
}

func TestBatchPanicIsIsolated(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(logger.WithOutput(buf), logger.WithLevel(slog.LevelDebug))

	b := async.New[int](async.WithLogger(log))
	b.Push(func(context.Context) (int, error) { panic("kaboom") })
	b.Push(async.Value(7))

	p := async.Partition(b)
	assert.Equal(t, []int{7}, p.Values)
	require.Len(t, p.Errors, 1)
	assert.ErrorIs(t, p.Errors[0], async.ErrPanic)
	assert.Contains(t, p.Errors[0].Error(), "kaboom")

	assert.Contains(t, buf.String(), "operation panic recovered")
	assert.Contains(t, buf.String(), "batch_id")
}

func TestBatchNilOperation(t *testing.T) {
	t.Parallel()

	b := async.New[int]()
	b.Push(nil)

	res, ok := b.Next()
	require.True(t, ok)
	assert.ErrorIs(t, res.Err, async.ErrNilOperation)

	_, ok = b.Next()
	assert.False(t, ok)
}

func TestBatchMaxConcurrency(t *testing.T) {
	t.Parallel()

	const (
		limit = int32(2)
		total = 10
	)

	var running, maxRunning atomic.Int32
	b := async.New[int](async.WithMaxConcurrency(int(limit)))
	for range total {
		b.Push(func(context.Context) (int, error) {
			curr := running.Add(1)
			for {
				prev := maxRunning.Load()
				if curr <= prev || maxRunning.CompareAndSwap(prev, curr) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return 1, nil
		})
	}

	sum, errs := async.Sum(b)
	assert.Empty(t, errs)
	assert.Equal(t, total, sum)
	assert.LessOrEqual(t, maxRunning.Load(), limit)
}

func TestBatchMaxConcurrencyAdmitsInPushOrder(t *testing.T) {
	t.Parallel()

	const total = 200

	var (
		mu    sync.Mutex
		order []int
	)
	b := async.New[int](async.WithMaxConcurrency(1))
	for i := range total {
		b.Push(func(context.Context) (int, error) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return i, nil
		})
	}

	assert.Equal(t, total, async.Discard(b))

	want := make([]int, total)
	for i := range want {
		want[i] = i
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, want, order)
}

func TestWithMaxConcurrencyPanicsForNegativeInput(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		_ = async.WithMaxConcurrency(-1)
	})
}

func TestBatchPushWhileDraining(t *testing.T) {
	t.Parallel()

	b := async.New[int]()
	b.Push(async.Value(1))

	got := 0
	for {
		res, ok := b.Next()
		if !ok {
			break
		}
		got++
		if res.Value < 3 {
			b.Push(delay.After(5*time.Millisecond, res.Value+1))
		}
	}
	assert.Equal(t, 3, got)
}

func TestBatchNextContextKeepsResult(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	b := async.New[int]()
	b.Push(func(context.Context) (int, error) {
		<-release
		return 5, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, ok, err := b.NextContext(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, b.Len())

	close(release)
	res, ok, err := b.NextContext(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, res.Value)
}

func TestBatchOperationsReceiveParentContext(t *testing.T) {
	t.Parallel()

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "parent")

	b := async.New[string](async.WithContext(ctx))
	b.Push(func(ctx context.Context) (string, error) {
		v, _ := ctx.Value(key{}).(string)
		return v, nil
	})

	res, ok := b.Next()
	require.True(t, ok)
	assert.Equal(t, "parent", res.Value)
}

func TestBatchConcurrentPullers(t *testing.T) {
	t.Parallel()

	const n = 100
	b := async.New[int]()
	for i := range n {
		b.Push(delay.After(time.Duration(i%5)*time.Millisecond, i))
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[uint64]int, n)
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				res, ok := b.Next()
				if !ok {
					return
				}
				mu.Lock()
				seen[res.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, n)
	for id, count := range seen {
		assert.Equal(t, 1, count, "operation %d", id)
	}
}

func TestBatchResultsChannel(t *testing.T) {
	t.Parallel()

	b := async.New[int]()
	b.Push(delay.After(30*time.Millisecond, 1))
	b.Push(delay.After(5*time.Millisecond, 2))

	got := make([]int, 0, 2)
	for res := range b.Results(context.Background()) {
		got = append(got, res.Value)
	}
	assert.Equal(t, []int{2, 1}, got)
}

func TestBatchResultsChannelStopsOnCancel(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	b := async.New[int]()
	b.Push(func(context.Context) (int, error) { <-release; return 1, nil })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	count := 0
	for range b.Results(ctx) {
		count++
	}
	assert.Zero(t, count)
	assert.Equal(t, 1, b.Len())
}

func TestBatchResultsChannelCancelKeepsRemainder(t *testing.T) {
	t.Parallel()

	b := async.New[int]()
	b.PushAll(async.Value(1), async.Value(2), async.Value(3))

	ctx, cancel := context.WithCancel(context.Background())
	var first async.Result[int]
	for res := range b.Results(ctx) {
		first = res
		break
	}
	cancel()

	rest := async.Collect(b)
	require.Len(t, rest, 2)

	ids := map[uint64]bool{first.ID: true}
	for _, res := range rest {
		ids[res.ID] = true
	}
	assert.Len(t, ids, 3)
	assert.Zero(t, b.Len())
}

func TestBatchResultsChannelHeldResultCountsInLen(t *testing.T) {
	t.Parallel()

	b := async.New[int]()
	b.PushAll(async.Value(1), async.Value(2))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Results(ctx)
	<-ch

	// One result delivered; the other is either queued or held by the channel.
	assert.Eventually(t, func() bool { return b.Len() == 1 }, time.Second, 5*time.Millisecond)
	res, ok := <-ch
	require.True(t, ok)
	assert.NotZero(t, res.Value)
	_, ok = <-ch
	assert.False(t, ok)
	assert.Zero(t, b.Len())
}

func TestBatchLogsCarryContextValues(t *testing.T) {
	t.Parallel()

	type traceKey struct{}

	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithOutput(buf),
		logger.WithLevel(slog.LevelDebug),
		logger.WithContextValue("trace_id", traceKey{}),
	)
	ctx := context.WithValue(context.Background(), traceKey{}, "trace-42")

	b := async.New[int](async.WithLogger(log), async.WithContext(ctx))
	b.Push(async.Value(1))
	assert.Equal(t, 1, async.Discard(b))

	assert.Contains(t, buf.String(), `"msg":"operation completed"`)
	assert.Contains(t, buf.String(), `"trace_id":"trace-42"`)
}

func TestBatchAllIterator(t *testing.T) {
	t.Parallel()

	b := async.New[int]()
	b.PushAll(async.Value(1), async.Value(2), async.Value(3))

	sum := 0
	ids := map[uint64]bool{}
	for id, res := range b.All() {
		ids[id] = true
		sum += res.Value
	}
	assert.Equal(t, 6, sum)
	assert.Len(t, ids, 3)
}

func TestBatchAllIteratorBreakKeepsRemainder(t *testing.T) {
	t.Parallel()

	b := async.New[int]()
	b.PushAll(async.Value(1), async.Value(2), async.Value(3))

	for range b.All() {
		break
	}
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 2, async.Discard(b))
}

func TestBatchElapsed(t *testing.T) {
	t.Parallel()

	b := async.New[time.Duration]()
	b.Push(delay.Sleep(25 * time.Millisecond))

	res, ok := b.Next()
	require.True(t, ok)
	require.True(t, res.OK())
	assert.GreaterOrEqual(t, res.Elapsed, 25*time.Millisecond)
	assert.GreaterOrEqual(t, res.Value, 25*time.Millisecond)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	var running, maxRunning atomic.Int32
	b := async.NewFromConfig[int](async.Config{Name: "cfg", MaxConcurrency: 1, PanicToError: true})
	assert.NotEqual(t, b.ID(), async.New[int]().ID())

	for range 4 {
		b.Push(func(context.Context) (int, error) {
			curr := running.Add(1)
			if curr > maxRunning.Load() {
				maxRunning.Store(curr)
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return 1, nil
		})
	}
	b.Push(func(context.Context) (int, error) { panic("recovered") })

	p := async.Partition(b)
	assert.Len(t, p.Values, 4)
	require.Len(t, p.Errors, 1)
	assert.ErrorIs(t, p.Errors[0], async.ErrPanic)
	assert.Equal(t, int32(1), maxRunning.Load())
}
