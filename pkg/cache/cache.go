// Package cache stores short-lived values in memory or in Redis.
//
// The sign-in throttle keeps its failure counters here. Memory is enough
// for a single instance; Redis shares the counters across instances.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get for missing or expired keys.
	ErrNotFound = errors.New("cache: key not found")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("cache: closed")
)

// Cache is a key-value store with per-entry expiry.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	// Set stores value for ttl. A ttl of zero or less keeps it until deleted.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Counter counts events per key in fixed windows.
type Counter interface {
	// Incr atomically adds one to key and returns the new count. The first
	// increment of a window sets its expiry to ttl.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Delete(ctx context.Context, key string) error
}
