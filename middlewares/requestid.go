package middlewares

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mwm/internal"
	"github.com/dmitrymomot/mwm/pkg/logger"
)

// RequestIDHeader is the header the request id is echoed in.
const RequestIDHeader = "X-Request-ID"

// DefaultRequestIDHeaders are the headers checked, in order, for an id set
// by a proxy or the calling service.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Request-Id", "X-Correlation-ID"}

type requestIDKey struct{}

type requestIDConfig struct {
	generate func() string
	response string
	headers  []string
}

// RequestIDOption configures the RequestID middleware.
type RequestIDOption func(*requestIDConfig)

// WithRequestIDHeaders replaces the headers checked for an incoming id.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.headers = headers
	}
}

// WithRequestIDGenerator sets the id generator. Defaults to a random UUID.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if gen != nil {
			cfg.generate = gen
		}
	}
}

// WithRequestIDResponseHeader renames the response header.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if header != "" {
			cfg.response = header
		}
	}
}

// RequestID tags each request with an id. An incoming id is kept so traces
// line up across services. The id is stored on the request context, where
// pages, the JSON API and the logger pick it up.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &requestIDConfig{
		headers:  DefaultRequestIDHeaders,
		generate: uuid.NewString,
		response: RequestIDHeader,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			reqID := ""
			for _, h := range cfg.headers {
				if reqID = c.Header(h); reqID != "" {
					break
				}
			}
			if reqID == "" {
				reqID = cfg.generate()
			}

			c.Set(requestIDKey{}, reqID)
			c.SetHeader(cfg.response, reqID)
			return next(c)
		}
	}
}

// GetRequestID returns the id assigned to the request, or "".
func GetRequestID(c internal.Context) string {
	return RequestIDFromContext(c.Request().Context())
}

// RequestIDFromContext returns the id stored on ctx, or "".
// Use it from plain http.Handlers mounted on the app.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// RequestIDExtractor adds "request_id" to log entries written with the
// request context.
//
//	log := logger.New(middlewares.RequestIDExtractor())
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := RequestIDFromContext(ctx); v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
