package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Option configures Load.
type Option func(*env.Options)

// WithPrefix prepends prefix to every env tag of the target struct.
func WithPrefix(prefix string) Option {
	return func(o *env.Options) {
		o.Prefix = prefix
	}
}

// WithEnvironment parses from the given map instead of the process environment.
// Useful in tests.
func WithEnvironment(vars map[string]string) Option {
	return func(o *env.Options) {
		o.Environment = vars
	}
}

// LoadEnv loads .env files into the process environment. Later files override
// earlier ones. Variables already present in the process environment are kept.
//
// Without arguments it loads ./.env and silently ignores a missing file.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Join(ErrLoadingEnvFile, err)
		}
		return nil
	}

	// godotenv.Load keeps the first value it sees, so walk files in reverse to
	// let later files win.
	for i := len(files) - 1; i >= 0; i-- {
		if err := godotenv.Load(files[i]); err != nil {
			return errors.Join(ErrLoadingEnvFile, fmt.Errorf("%s: %w", files[i], err))
		}
	}
	return nil
}

// MustLoadEnv is like LoadEnv but panics on failure.
func MustLoadEnv(files ...string) {
	if err := LoadEnv(files...); err != nil {
		panic(err)
	}
}

// Load parses environment variables into v according to its `env` struct tags.
//
// Example:
//
//	type HTTPConfig struct {
//		Timeout   time.Duration `env:"TIMEOUT" envDefault:"30s"`
//		UserAgent string        `env:"USER_AGENT,required"`
//	}
//
//	var cfg HTTPConfig
//	err := config.Load(&cfg, config.WithPrefix("FETCH_HTTP_"))
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	var o env.Options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if err := env.ParseWithOptions(v, o); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
// Use it for configuration the process cannot start without.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
