package middlewares

import (
	"runtime"

	"github.com/dmitrymomot/mwm/internal"
)

// DefaultStackSize caps the captured stack trace.
const DefaultStackSize = 4 << 10

type recoverConfig struct {
	stackSize int
	noStack   bool
}

// RecoverOption configures the Recover middleware.
type RecoverOption func(*recoverConfig)

// WithRecoverStackSize sets the maximum stack trace size in bytes.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *recoverConfig) {
		if size > 0 {
			cfg.stackSize = size
		}
	}
}

// WithRecoverDisablePrintStack skips stack capture.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *recoverConfig) {
		cfg.noStack = true
	}
}

// Recover turns a panic in a page, layout or handler into a *PanicError.
// The app answers it like any other unexpected error, with a generic 500.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &recoverConfig{stackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				pe := &PanicError{Value: r}
				attrs := []any{
					"panic", r,
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
				}
				if !cfg.noStack {
					buf := make([]byte, cfg.stackSize)
					pe.Stack = buf[:runtime.Stack(buf, false)]
					attrs = append(attrs, "stack", string(pe.Stack))
				}
				c.LogError("panic recovered", attrs...)
				err = pe
			}()

			return next(c)
		}
	}
}
