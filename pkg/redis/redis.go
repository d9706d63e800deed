// Package redis opens go-redis clients for the cache and health checks.
package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidURL  = errors.New("redis: invalid connection url")
	ErrConnect     = errors.New("redis: connection failed")
	ErrUnavailable = errors.New("redis: unavailable")
)

// Client defaults.
const (
	DefaultPoolSize      = 10
	DefaultRetryAttempts = 3
	DefaultRetryInterval = 2 * time.Second
	DefaultTimeout       = 3 * time.Second
)

type clientConfig struct {
	poolSize      int
	retryAttempts int
	retryInterval time.Duration
	timeout       time.Duration
}

// Option configures Open.
type Option func(*clientConfig)

// WithPoolSize caps the number of pooled connections.
func WithPoolSize(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithTimeout sets the dial, read and write timeouts.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetry sets the connection attempts and the base wait between them.
// Attempt n waits n*interval.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(c *clientConfig) {
		if attempts > 0 {
			c.retryAttempts = attempts
		}
		if interval > 0 {
			c.retryInterval = interval
		}
	}
}

// Open parses a redis:// or rediss:// url, connects and pings the server,
// retrying with linear backoff.
func Open(ctx context.Context, url string, opts ...Option) (redis.UniversalClient, error) {
	cfg := &clientConfig{
		poolSize:      DefaultPoolSize,
		retryAttempts: DefaultRetryAttempts,
		retryInterval: DefaultRetryInterval,
		timeout:       DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}
	ro, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}
	ro.PoolSize = cfg.poolSize
	ro.DialTimeout, ro.ReadTimeout, ro.WriteTimeout = cfg.timeout, cfg.timeout, cfg.timeout

	var lastErr error
	for i := range cfg.retryAttempts {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrConnect, ctx.Err())
			case <-time.After(time.Duration(i) * cfg.retryInterval):
			}
		}
		client := redis.NewClient(ro)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()
	}
	return nil, errors.Join(ErrConnect, lastErr)
}

// Healthcheck pings the server. It plugs into the readiness endpoint.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrUnavailable
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrUnavailable, err)
		}
		return nil
	}
}

// Shutdown closes the client. It plugs into the app's shutdown hooks.
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}
