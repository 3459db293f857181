// Command fanout fetches every configured target concurrently and reports each
// one as soon as it finishes. Targets are URLs: http(s)://, s3://bucket/key and
// redis:key (the last two only when their backends are enabled).
//
// It exits with status 1 when any target failed.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/fanout/pkg/async"
	"github.com/dmitrymomot/fanout/pkg/config"
	"github.com/dmitrymomot/fanout/pkg/fetch"
	"github.com/dmitrymomot/fanout/pkg/logger"
)

type appConfig struct {
	Env          string   `env:"APP_ENV" envDefault:"development"`
	Targets      []string `env:"FANOUT_TARGETS,required" envSeparator:","`
	S3Enabled    bool     `env:"FANOUT_S3_ENABLED"`
	RedisEnabled bool     `env:"FANOUT_REDIS_ENABLED"`

	Batch async.Config
	HTTP  fetch.HTTPConfig
	S3    fetch.S3Config
	Redis fetch.RedisConfig
}

func main() {
	os.Exit(start())
}

func start() int {
	config.MustLoadEnv()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := newLogger(cfg.Env, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver, closeFn, err := newResolver(ctx, cfg)
	if err != nil {
		log.Error("failed to set up fetchers", logger.Error(err))
		return 1
	}
	defer closeFn()

	sum := run(ctx, cfg, resolver, log, os.Stdout)
	log.Info("fanout finished",
		logger.Count("total", sum.Total),
		logger.Count("succeeded", sum.Succeeded),
		logger.Count("failed", sum.Failed),
		logger.Duration(sum.Elapsed),
	)
	if sum.Failed > 0 {
		return 1
	}
	return 0
}

// newLogger writes diagnostics to w so they stay apart from the report on stdout.
func newLogger(env string, w io.Writer) *slog.Logger {
	return logger.New(
		logger.WithEnvironment(env, "fanout"),
		logger.WithOutput(w),
	)
}

func newResolver(ctx context.Context, cfg appConfig) (*fetch.Resolver, func(), error) {
	opts := []fetch.ResolverOption{
		fetch.WithHTTP(fetch.NewHTTP(cfg.HTTP)),
	}
	closeFn := func() {}

	if cfg.S3Enabled {
		client, err := fetch.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, closeFn, err
		}
		opts = append(opts, fetch.WithS3(fetch.NewS3(client, cfg.S3.MaxBodyBytes)))
	}

	if cfg.RedisEnabled {
		client, err := fetch.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, closeFn, err
		}
		closeFn = func() { _ = client.Close() }
		opts = append(opts, fetch.WithRedis(fetch.NewRedis(client)))
	}

	return fetch.NewResolver(opts...), closeFn, nil
}

type summary struct {
	Total     int
	Succeeded int
	Failed    int
	Bytes     int
	Elapsed   time.Duration
}

// run pushes one operation per target and reports results in completion order.
func run(ctx context.Context, cfg appConfig, resolver *fetch.Resolver, log *slog.Logger, w io.Writer) summary {
	began := time.Now()
	b := async.NewFromConfig[fetch.Body](cfg.Batch,
		async.WithLogger(log),
		async.WithContext(ctx),
	)

	targets := make(map[uint64]string, len(cfg.Targets))
	for _, target := range cfg.Targets {
		targets[b.Push(resolver.Resolve(target))] = target
	}

	sum := summary{Total: len(cfg.Targets)}
	async.Drain(b, func(res async.Result[fetch.Body]) {
		target := targets[res.ID]
		if res.Err != nil {
			sum.Failed++
			log.Warn("target failed",
				logger.Target(target),
				logger.Duration(res.Elapsed),
				logger.Error(res.Err),
			)
			fmt.Fprintf(w, "FAIL %s (%s): %v\n", target, res.Elapsed.Round(time.Millisecond), res.Err)
			return
		}

		sum.Succeeded++
		sum.Bytes += res.Value.Len()
		log.Info("target fetched",
			logger.Target(target),
			logger.Count("bytes", res.Value.Len()),
			logger.Duration(res.Elapsed),
		)
		fmt.Fprintf(w, "OK   %s (%s): %d bytes\n", target, res.Elapsed.Round(time.Millisecond), res.Value.Len())
	})
	sum.Elapsed = time.Since(began)

	fmt.Fprintf(w, "%d targets: %d ok, %d failed, %d bytes in %s\n",
		sum.Total, sum.Succeeded, sum.Failed, sum.Bytes, sum.Elapsed.Round(time.Millisecond))
	return sum
}
