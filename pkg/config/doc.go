// Package config loads application configuration from environment variables.
//
// It wraps github.com/joho/godotenv for reading .env files and
// github.com/caarlos0/env/v11 for parsing the environment into tagged structs:
//
//	type Config struct {
//	    Targets        []string      `env:"FANOUT_TARGETS,required" envSeparator:","`
//	    MaxConcurrency int           `env:"ASYNC_MAX_CONCURRENCY" envDefault:"0"`
//	    Timeout        time.Duration `env:"FETCH_HTTP_TIMEOUT" envDefault:"30s"`
//	}
//
//	if err := config.LoadEnv(); err != nil { // optional ./.env
//	    return err
//	}
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// LoadEnv never overrides variables already set in the process environment;
// among several files the later one wins. Load wraps parse failures in
// ErrParsingConfig; MustLoad and MustLoadEnv panic instead of returning.
package config
