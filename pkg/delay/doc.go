// Package delay provides the suspending timer used to build time-based
// operations, plus pluggable latency sources for driving them.
//
// Sleep, After, Fail and Delay return async.Operation values that wait for a
// duration (or for the driving context to end) before completing. A Source
// hands out durations: Fixed and Sequence are deterministic and meant for
// tests, Uniform draws random durations for demos and load generation.
//
//	src := delay.Reverse(10, 20*time.Millisecond) // 180ms, 160ms, ..., 0
//	b := async.New[int]()
//	for i := range 10 {
//	    b.Push(delay.After(src.Next(), i*10))
//	}
package delay
