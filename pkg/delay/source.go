package delay

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source hands out latencies. Implementations are safe for concurrent use.
type Source interface {
	Next() time.Duration
}

// SourceFunc adapts a function into a Source.
type SourceFunc func() time.Duration

func (f SourceFunc) Next() time.Duration { return f() }

// Fixed always returns d.
func Fixed(d time.Duration) Source {
	return SourceFunc(func() time.Duration { return d })
}

type sequence struct {
	mu  sync.Mutex
	ds  []time.Duration
	pos int
}

// Sequence returns ds in order and starts over when exhausted.
// An empty sequence always returns zero.
func Sequence(ds ...time.Duration) Source {
	return &sequence{ds: append([]time.Duration(nil), ds...)}
}

func (s *sequence) Next() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.ds) == 0 {
		return 0
	}
	d := s.ds[s.pos]
	s.pos = (s.pos + 1) % len(s.ds)
	return d
}

// Reverse returns (n-1)*unit, (n-2)*unit, ..., 0 and then repeats, so the
// i-th operation of a batch of n finishes (n-1-i) units after the start.
func Reverse(n int, unit time.Duration) Source {
	ds := make([]time.Duration, 0, max(n, 0))
	for i := n - 1; i >= 0; i-- {
		ds = append(ds, time.Duration(i)*unit)
	}
	return Sequence(ds...)
}

// Uniform draws durations uniformly from [lo, hi). If hi <= lo it always returns lo.
func Uniform(lo, hi time.Duration) Source {
	return SourceFunc(func() time.Duration {
		if hi <= lo {
			return lo
		}
		return lo + rand.N(hi-lo)
	})
}
