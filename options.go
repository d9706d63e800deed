package mwm

import (
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/mwm/internal"
	"github.com/dmitrymomot/mwm/pkg/auth"
	"github.com/dmitrymomot/mwm/pkg/health"
	"github.com/dmitrymomot/mwm/pkg/storage"
)

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes outside the page table,
// such as the JSON API mount.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithPages serves a compiled page route table.
// The table is produced by cmd/routegen from the routes directory.
func WithPages(routes []PageRoute) Option {
	return internal.WithPages(routes)
}

// WithDocument sets the HTML document shell around full page renders.
// Partial (HTMX) renders skip it.
func WithDocument(fn DocumentFunc) Option {
	return internal.WithDocument(fn)
}

// WithAssets serves the static asset table from fsys.
// Production responses are cached for a year and carry a content ETag.
//
// Example:
//
//	mwm.WithAssets(public.FS, routetable.Assets, cfg.App.Env == "development")
func WithAssets(fsys fs.FS, assets []Asset, dev bool) Option {
	return internal.WithAssets(fsys, assets, dev)
}

// WithErrorHandler sets a custom error handler for handler errors.
// Called when a handler or page returns a non-nil, non-redirect error.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	mwm.WithHealthChecks(
//	    mwm.WithReadinessCheck("postgres", db.Healthcheck(pool)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger creates a logger with a component name and optional extractors.
// Extractors pull values from context (e.g., request_id, user_id).
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithCookieOptions configures the cookie manager used for flash messages
// and signed cookies.
func WithCookieOptions(opts ...CookieOption) Option {
	return internal.WithCookieOptions(opts...)
}

// WithAuth enables cookie sessions resolved on every request.
func WithAuth(m *auth.Manager) Option {
	return internal.WithAuth(m)
}

// WithJobs enables background job processing in this process.
// Workers start with Run and stop during graceful shutdown.
func WithJobs(pool *pgxpool.Pool, opts ...JobOption) Option {
	return internal.WithJobs(pool, opts...)
}

// WithJobQueue enables enqueueing into q without running workers here.
func WithJobQueue(q JobQueue) Option {
	return internal.WithJobQueue(q)
}

// WithStorage enables file uploads through the request context.
func WithStorage(s storage.Storage) Option {
	return internal.WithStorage(s)
}

// Health check options

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel on every readiness request.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}
