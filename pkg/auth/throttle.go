package auth

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrymomot/mwm/pkg/cache"
)

// Default throttle settings.
const (
	DefaultMaxAttempts = 5
	DefaultLockout     = 15 * time.Minute
)

// Throttle limits sign-in attempts per key within a fixed window.
// Every attempt is counted before the password is checked, so parallel
// requests cannot all slip under the limit. A successful sign-in resets
// the count.
type Throttle struct {
	counter cache.Counter
	limit   int64
	window  time.Duration
}

// NewThrottle creates a throttle allowing limit attempts per window.
func NewThrottle(c cache.Counter, limit int, window time.Duration) *Throttle {
	if limit <= 0 {
		limit = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultLockout
	}
	return &Throttle{counter: c, limit: int64(limit), window: window}
}

// Attempt records an attempt for key and reports whether it is within the
// limit.
func (t *Throttle) Attempt(ctx context.Context, key string) (bool, error) {
	n, err := t.counter.Incr(ctx, t.key(key), t.window)
	if err != nil {
		return false, err
	}
	return n <= t.limit, nil
}

// Reset forgets attempts for key.
func (t *Throttle) Reset(ctx context.Context, key string) error {
	return t.counter.Delete(ctx, t.key(key))
}

func (t *Throttle) key(k string) string {
	return "signin:" + strings.ToLower(strings.TrimSpace(k))
}
