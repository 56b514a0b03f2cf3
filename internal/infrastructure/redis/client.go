package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// ClientOptions tunes how NewClient connects.
type ClientOptions struct {
	// ConnectTimeout bounds the total time spent pinging the server.
	ConnectTimeout time.Duration
	PoolSize       int
}

// NewClient creates a Redis client from redisURL and waits until the server
// answers PING, retrying with exponential backoff up to ConnectTimeout.
func NewClient(ctx context.Context, redisURL string, o ClientOptions) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if o.PoolSize > 0 {
		opts.PoolSize = o.PoolSize
	}

	client := redis.NewClient(opts)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxElapsedTime = o.ConnectTimeout
	if b.MaxElapsedTime <= 0 {
		b.MaxElapsedTime = 5 * time.Second
	}

	err = backoff.Retry(func() error {
		return client.Ping(ctx).Err()
	}, backoff.WithContext(b, ctx))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
