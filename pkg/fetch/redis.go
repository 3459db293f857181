package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/fanout/pkg/async"
)

// RedisClient defines the Redis commands used by the Redis fetcher.
// *redis.Client and redis.UniversalClient satisfy it.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisConfig describes how to reach a Redis server.
type RedisConfig struct {
	ConnectionURL  string        `env:"FETCH_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"FETCH_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"FETCH_REDIS_RETRY_INTERVAL" envDefault:"1s"`
	ConnectTimeout time.Duration `env:"FETCH_REDIS_CONNECT_TIMEOUT" envDefault:"10s"`
}

// ConnectRedis dials Redis and pings it, retrying up to cfg.RetryAttempts times
// with cfg.RetryInterval between attempts.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidRedisURL, err)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	var lastErr error
	for attempt := range max(cfg.RetryAttempts, 1) {
		if attempt > 0 {
			if err := sleepCtx(ctx, cfg.RetryInterval); err != nil {
				return nil, errors.Join(ErrRedisNotReady, err)
			}
		}

		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()
	}

	return nil, errors.Join(ErrRedisNotReady, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Redis reads string values by key. It is safe for concurrent use.
type Redis struct {
	client RedisClient
}

// NewRedis wraps client.
func NewRedis(client RedisClient) *Redis {
	return &Redis{client: client}
}

// Key returns an operation that reads key. A missing key fails with KindNotFound.
func (r *Redis) Key(key string) async.Operation[Body] {
	target := "redis:" + key

	return func(ctx context.Context) (Body, error) {
		if key == "" {
			return Body{}, newError(KindInvalidTarget, target, errors.New("empty key"))
		}

		data, err := r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return Body{}, newError(KindNotFound, target, err)
		}
		if err != nil {
			return Body{}, newError(KindConnection, target, err)
		}

		return Body{Target: target, Data: data}, nil
	}
}
