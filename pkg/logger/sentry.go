package logger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig configures error reporting.
type SentryConfig struct {
	DSN         string
	Environment string
	// MinLevel is the lowest level stored as a Sentry log. Errors always
	// become Sentry issues.
	MinLevel slog.Level
}

// ErrSentryFlush is returned by FlushSentry when events are still queued
// at the deadline.
var ErrSentryFlush = errors.New("logger: sentry events not delivered")

// NewWithSentry logs to stdout and, when cfg.DSN is set, to Sentry. A
// failing Sentry setup is logged and the logger falls back to stdout.
func NewWithSentry(cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	stdout := stdoutHandler()
	if cfg.DSN == "" {
		return slog.New(NewContextHandler(stdout, extractors...))
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	})
	if err != nil {
		slog.New(stdout).Error("sentry disabled", slog.Any("error", err))
		return slog.New(NewContextHandler(stdout, extractors...))
	}

	logLevels := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel >= slog.LevelError {
		logLevels = []slog.Level{slog.LevelError}
	}
	toSentry := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevels,
	}.NewSentryHandler(context.Background())

	return slog.New(NewContextHandler(fanout{stdout, toSentry}, extractors...))
}

// FlushSentry waits for queued Sentry events until ctx is done or two
// seconds pass. It fits the app's shutdown hooks.
func FlushSentry(ctx context.Context) error {
	timeout := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	if !sentry.Flush(timeout) {
		return ErrSentryFlush
	}
	return nil
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, rec slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, rec.Level) {
			errs = append(errs, h.Handle(ctx, rec.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
