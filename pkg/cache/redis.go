package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache on a Redis server. Values are stored as JSON under
// "<prefix>:<key>".
type Redis[V any] struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis wraps a client opened with pkg/redis.
func NewRedis[V any](client redis.UniversalClient, prefix string) *Redis[V] {
	return &Redis[V]{client: client, prefix: prefix}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var v V
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, ErrNotFound
	}
	if err != nil {
		return v, fmt.Errorf("cache: get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return v, nil
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("cache: delete %s: %w", key, err)
	}
	return nil
}

// Incr increments an integer counter with INCR. The expiry is only set
// when the key has none, so the window is fixed at the first increment.
func (r *Redis[V]) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	k := r.key(key)
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		if ttl > 0 {
			pipe.ExpireNX(ctx, k, ttl)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cache: incr %s: %w", key, err)
	}
	return incr.Val(), nil
}

func (r *Redis[V]) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

var (
	_ Cache[int] = (*Redis[int])(nil)
	_ Counter    = (*Redis[int64])(nil)
)
