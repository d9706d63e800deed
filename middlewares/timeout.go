package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/mwm/internal"
)

// DefaultTimeout applies when Timeout gets a non-positive duration.
const DefaultTimeout = 30 * time.Second

type deadlineKey struct{}

// Timeout ends requests that run longer than d with a *TimeoutError, which
// the app answers with 503.
//
// The handler keeps running in the background after the deadline, so long
// queries should use DeadlineContext to stop early:
//
//	rows, err := repo.ListRoles(middlewares.DeadlineContext(c))
func Timeout(d time.Duration) internal.Middleware {
	if d <= 0 {
		d = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), d)
			defer cancel()
			c.Set(deadlineKey{}, ctx)

			done := make(chan error, 1)
			go func() { done <- next(c) }()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					c.LogWarn("request timeout", "timeout", d.String(), "path", c.Request().URL.Path)
					return &TimeoutError{Duration: d}
				}
				return ctx.Err()
			}
		}
	}
}

// DeadlineContext returns the context carrying the Timeout deadline, or the
// request context when Timeout is not installed.
func DeadlineContext(c internal.Context) context.Context {
	if ctx, ok := c.Get(deadlineKey{}).(context.Context); ok {
		return ctx
	}
	return c.Context()
}
