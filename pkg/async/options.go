package async

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/fanout/pkg/logger"
)

// Option configures a Batch.
type Option func(*options)

type options struct {
	ctx            context.Context
	logger         *slog.Logger
	name           string
	maxConcurrency int
	panicToError   bool
}

func defaultOptions() *options {
	return &options{
		ctx:          context.Background(),
		logger:       logger.Discard(),
		name:         "batch",
		panicToError: true,
	}
}

// WithMaxConcurrency limits how many operations run at the same time.
// 0 means unlimited. Operations waiting for a slot are admitted in push order.
// Panics for negative values: a misconfigured limit should fail at startup.
func WithMaxConcurrency(n int) Option {
	if n < 0 {
		panic("async: max concurrency cannot be negative")
	}
	return func(o *options) {
		o.maxConcurrency = n
	}
}

// WithPanicToError converts operation panics into ErrPanic results.
// Enabled by default. When disabled, a panicking operation crashes the process.
func WithPanicToError(enabled bool) Option {
	return func(o *options) {
		o.panicToError = enabled
	}
}

// WithLogger sets the logger used for batch diagnostics. Nil is ignored.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithContext sets the parent context handed to every operation.
// The batch never cancels it; cancellation stays with the owner of ctx.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithName sets the batch name reported in logs.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}
