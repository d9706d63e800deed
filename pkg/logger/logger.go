// Package logger builds the application's slog loggers.
//
// Records are written as JSON to stdout. ContextExtractors copy
// request-scoped values, such as the request id, from the context passed to
// the *Context logging methods onto every record. NewWithSentry additionally
// forwards warnings and errors to Sentry.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// ContextExtractor returns an attribute found on ctx.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// New returns a JSON logger on stdout at info level.
func New(extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewContextHandler(stdoutHandler(), extractors...))
}

// NewNope returns a logger that discards everything.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
}

// NewContextHandler wraps next so every record gets the attributes the
// extractors find on the logging context. Nil extractors are dropped.
func NewContextHandler(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	h := &contextHandler{next: next}
	for _, ex := range extractors {
		if ex != nil {
			h.extractors = append(h.extractors, ex)
		}
	}
	return h
}

type contextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}
