// Package fanout is a small toolkit for running many independent asynchronous
// operations at once and consuming their results in the order they finish.
//
// The toolkit is split into focused packages:
//
//   - pkg/async: the Batch completion multiplexer, Futures and drain folds
//   - pkg/fetch: HTTP, S3 and Redis fetch operations with classified errors
//   - pkg/delay: timed operations and delay sources for simulations and tests
//   - pkg/logger: slog factory and shared attribute helpers
//   - pkg/config: environment and .env loading into tagged structs
//
// Basic Usage:
//
//	b := async.New[fetch.Body](async.WithMaxConcurrency(16))
//	for _, target := range targets {
//		b.Push(resolver.Resolve(target))
//	}
//	for _, res := range b.All() {
//		if res.Err != nil {
//			log.Printf("failed: %v", res.Err)
//			continue
//		}
//		log.Printf("%s: %d bytes", res.Value.Target, res.Value.Len())
//	}
//
// The cmd/fanout program wires these packages together from environment
// configuration.
package fanout
