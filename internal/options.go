package internal

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/mwm/pkg/auth"
	"github.com/dmitrymomot/mwm/pkg/cookie"
	"github.com/dmitrymomot/mwm/pkg/job"
	"github.com/dmitrymomot/mwm/pkg/logger"
	"github.com/dmitrymomot/mwm/pkg/storage"
)

// Option configures the application.
type Option func(*App)

// WithMiddleware adds global middleware. Middleware runs in the order given.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes outside the page table.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithPages serves a compiled page route table. Unmatched paths get 404
// and methods a page does not handle get 405.
//
// Example:
//
//	mwm.New(
//	    mwm.WithPages(routetable.Routes),
//	    mwm.WithDocument(views.Document),
//	)
func WithPages(routes []PageRoute) Option {
	return func(a *App) {
		a.routes = append(a.routes, routes...)
	}
}

// WithDocument sets the HTML document shell around full page renders.
func WithDocument(fn DocumentFunc) Option {
	return func(a *App) {
		a.document = fn
	}
}

// WithAssets serves the static asset table from fsys. In dev mode files
// are re-read per request and sent with "no-cache".
//
// Example:
//
//	mwm.WithAssets(public.FS, routetable.Assets, cfg.IsDev())
func WithAssets(fsys fs.FS, assets []Asset, dev bool) Option {
	return func(a *App) {
		a.assets = &assetConfig{fsys: fsys, assets: assets, dev: dev}
	}
}

// WithErrorHandler sets the handler for errors returned by pages and handlers.
// Redirect errors never reach it.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler for non-page routes.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithHealthChecks enables /health/live and /health/ready.
//
// Example:
//
//	mwm.WithHealthChecks(
//	    mwm.WithReadinessCheck("postgres", db.Healthcheck(pool)),
//	    mwm.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger creates a JSON logger tagged with component. Extractors add
// request-scoped attributes such as the request id.
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCookieOptions configures the cookie manager used for flash messages
// and signed cookies.
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(a *App) {
		a.cookieManager = cookie.New(opts...)
	}
}

// WithAuth enables cookie sessions. Pages see the resolved session through
// Context.Session and reqctx.
//
// Example:
//
//	sessions := auth.NewManager(session.NewPostgresStore(pool), users,
//	    auth.WithSecure(cfg.IsProd()),
//	)
//	mwm.New(mwm.WithAuth(sessions))
func WithAuth(m *auth.Manager) Option {
	return func(a *App) {
		a.authManager = m
	}
}

// JobQueue inserts jobs. *job.Manager and *job.Enqueuer implement it.
type JobQueue interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) error
	EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error
}

// WithJobs processes jobs in this process. Workers start with Run, stop
// first during shutdown and report on the readiness endpoint as "jobs".
//
//	mwm.WithJobs(pool,
//	    job.WithTask[tasks.WelcomePayload](tasks.NewSendWelcome(mailer)),
//	    job.WithScheduledTask(tasks.NewPurgeSessions(sessions)),
//	)
func WithJobs(pool *pgxpool.Pool, opts ...job.Option) Option {
	return func(a *App) {
		m, err := job.NewManager(pool, opts...)
		if err != nil {
			panic(fmt.Sprintf("job manager: %v", err))
		}
		a.jobs, a.worker = m, m
	}
}

// WithJobQueue lets handlers enqueue into q while workers run elsewhere.
//
//	enq, _ := job.NewEnqueuer(pool)
//	mwm.WithJobQueue(enq)
func WithJobQueue(q JobQueue) Option {
	return func(a *App) { a.jobs = q }
}

// WithStorage enables c.Upload and c.DeleteFile.
func WithStorage(s storage.Storage) Option {
	return func(a *App) {
		a.storage = s
	}
}
