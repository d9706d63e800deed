package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool defaults.
const (
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
	DefaultHealthCheckPeriod = time.Minute
	DefaultMaxConnIdleTime   = 10 * time.Minute
	DefaultMaxConnLifetime   = 30 * time.Minute
	DefaultRetryAttempts     = 3
	DefaultRetryInterval     = 2 * time.Second
)

type poolConfig struct {
	maxConns          int32
	minConns          int32
	healthCheckPeriod time.Duration
	maxConnIdleTime   time.Duration
	maxConnLifetime   time.Duration
	retryAttempts     int
	retryInterval     time.Duration
}

// Option configures Open.
type Option func(*poolConfig)

// WithMaxConns caps the pool size.
func WithMaxConns(n int32) Option {
	return func(c *poolConfig) {
		if n > 0 {
			c.maxConns = n
		}
	}
}

// WithMinConns keeps n idle connections open.
func WithMinConns(n int32) Option {
	return func(c *poolConfig) {
		if n >= 0 {
			c.minConns = n
		}
	}
}

// WithConnLifetime sets the idle and total lifetime of pooled connections.
func WithConnLifetime(idle, total time.Duration) Option {
	return func(c *poolConfig) {
		if idle > 0 {
			c.maxConnIdleTime = idle
		}
		if total > 0 {
			c.maxConnLifetime = total
		}
	}
}

// WithHealthCheckPeriod sets how often idle connections are checked.
func WithHealthCheckPeriod(d time.Duration) Option {
	return func(c *poolConfig) {
		if d > 0 {
			c.healthCheckPeriod = d
		}
	}
}

// WithRetry sets the connection attempts and the base wait between them.
// Attempt n waits n*interval.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(c *poolConfig) {
		if attempts > 0 {
			c.retryAttempts = attempts
		}
		if interval > 0 {
			c.retryInterval = interval
		}
	}
}

// Open connects to url and pings the server, retrying with linear backoff.
func Open(ctx context.Context, url string, opts ...Option) (*pgxpool.Pool, error) {
	cfg := &poolConfig{
		maxConns:          DefaultMaxConns,
		minConns:          DefaultMinConns,
		healthCheckPeriod: DefaultHealthCheckPeriod,
		maxConnIdleTime:   DefaultMaxConnIdleTime,
		maxConnLifetime:   DefaultMaxConnLifetime,
		retryAttempts:     DefaultRetryAttempts,
		retryInterval:     DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if url == "" {
		return nil, fmt.Errorf("%w: empty database url", ErrInvalidConfig)
	}
	if cfg.minConns > cfg.maxConns {
		cfg.minConns = cfg.maxConns
	}

	pc, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	pc.MaxConns = cfg.maxConns
	pc.MinConns = cfg.minConns
	pc.HealthCheckPeriod = cfg.healthCheckPeriod
	pc.MaxConnIdleTime = cfg.maxConnIdleTime
	pc.MaxConnLifetime = cfg.maxConnLifetime

	var lastErr error
	for i := range cfg.retryAttempts {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrConnect, ctx.Err())
			case <-time.After(time.Duration(i) * cfg.retryInterval):
			}
		}

		pool, err := pgxpool.NewWithConfig(ctx, pc)
		if err != nil {
			lastErr = err
			continue
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			lastErr = err
			continue
		}
		return pool, nil
	}
	return nil, errors.Join(ErrConnect, lastErr)
}

// Healthcheck returns a readiness check that pings the pool.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if pool == nil {
			return fmt.Errorf("%w: pool is nil", ErrHealthcheck)
		}
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheck, err)
		}
		return nil
	}
}

// Shutdown returns a shutdown hook that closes the pool.
//
//	app.Run(addr, mwm.ShutdownHook(db.Shutdown(pool)))
func Shutdown(pool *pgxpool.Pool) func(context.Context) error {
	return func(context.Context) error {
		pool.Close()
		return nil
	}
}
