package mwm

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/dmitrymomot/mwm/internal"
)

// Logger sets the logger for server lifecycle events.
func Logger(l *slog.Logger) RunOption { return internal.Logger(l) }

// ShutdownTimeout bounds graceful shutdown, hooks included. Defaults to 30s.
func ShutdownTimeout(d time.Duration) RunOption { return internal.ShutdownTimeout(d) }

// StartupHook runs fn before the server accepts connections:
//
//	mwm.StartupHook(func(ctx context.Context) error {
//	    return job.Migrate(ctx, pool)
//	})
func StartupHook(fn func(context.Context) error) RunOption { return internal.StartupHook(fn) }

// ShutdownHook runs fn after the server stops, in registration order.
func ShutdownHook(fn func(context.Context) error) RunOption { return internal.ShutdownHook(fn) }

// WithContext sets the parent context; cancelling it shuts the server down.
func WithContext(ctx context.Context) RunOption { return internal.WithContext(ctx) }

// WithListener serves on ln, for example one from systemd socket activation.
func WithListener(ln net.Listener) RunOption { return internal.WithListener(ln) }
