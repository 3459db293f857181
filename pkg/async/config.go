package async

// Config holds batch settings that are usually sourced from the environment.
type Config struct {
	Name           string `env:"ASYNC_BATCH_NAME" envDefault:"batch"`
	MaxConcurrency int    `env:"ASYNC_MAX_CONCURRENCY" envDefault:"0"`
	PanicToError   bool   `env:"ASYNC_PANIC_TO_ERROR" envDefault:"true"`
}

// NewFromConfig creates a Batch from cfg. Explicit opts are applied after cfg
// and win on conflict. A negative MaxConcurrency is treated as unlimited.
func NewFromConfig[T any](cfg Config, opts ...Option) *Batch[T] {
	base := []Option{
		WithName(cfg.Name),
		WithPanicToError(cfg.PanicToError),
	}
	if cfg.MaxConcurrency > 0 {
		base = append(base, WithMaxConcurrency(cfg.MaxConcurrency))
	}
	return New[T](append(base, opts...)...)
}
