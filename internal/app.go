package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mwm/pkg/auth"
	"github.com/dmitrymomot/mwm/pkg/cookie"
	"github.com/dmitrymomot/mwm/pkg/health"
	"github.com/dmitrymomot/mwm/pkg/htmx"
	"github.com/dmitrymomot/mwm/pkg/job"
	"github.com/dmitrymomot/mwm/pkg/logger"
	"github.com/dmitrymomot/mwm/pkg/storage"
)

// App orchestrates the application lifecycle: routing, middleware, page
// dispatch and graceful shutdown. It is immutable after New.
type App struct {
	router                  chi.Router
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	document                DocumentFunc
	healthConfig            *healthConfig
	assets                  *assetConfig
	logger                  *slog.Logger
	cookieManager           *cookie.Manager
	authManager             *auth.Manager
	jobs                    JobQueue
	worker                  *job.Manager
	storage                 storage.Storage
	pages                   *dispatcher
	middlewares             []Middleware
	handlers                []Handler
	routes                  []PageRoute
}

// New creates an application. It panics when the page table is invalid,
// since that is a build error rather than a runtime condition.
//
// Example:
//
//	app := mwm.New(
//	    mwm.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    mwm.WithPages(routetable.Routes),
//	    mwm.WithHandlers(apiv1.New(log)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:        chi.NewRouter(),
		logger:        logger.NewNope(),
		cookieManager: cookie.New(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if err := a.setupRoutes(); err != nil {
		panic(err)
	}
	return a
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) setupRoutes() error {
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}
	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	}

	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	if a.assets != nil {
		if err := a.mountAssets(); err != nil {
			return err
		}
	}

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.Liveness())
		checks := a.healthConfig.checks
		if a.worker != nil {
			if checks == nil {
				checks = make(health.Checks)
			}
			if _, ok := checks["jobs"]; !ok {
				checks["jobs"] = job.Healthcheck(a.worker)
			}
		}
		a.router.Get(a.healthConfig.readinessPath, health.Readiness(checks, health.WithLogger(a.logger)))
	}

	r := &chiRouter{mux: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}

	if len(a.routes) > 0 {
		d, err := newDispatcher(a.routes, a.document)
		if err != nil {
			return fmt.Errorf("page routes: %w", err)
		}
		a.pages = d
		a.router.Handle("/*", a.pageHandler())
	}
	return nil
}

// pageHandler hands every request chi did not route itself to the page
// dispatcher, which owns 404 and 405 for pages.
func (a *App) pageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		if err := a.pages.serve(c); err != nil {
			if he := AsHTTPError(err); he != nil && he.Code == http.StatusNotFound && a.notFoundHandler != nil {
				err = a.notFoundHandler(c)
			}
			if err != nil {
				a.handleError(c, err)
			}
		}
	}
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the app's error handler.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// handleError writes redirects, then delegates to the configured error
// handler, then falls back to a plain-text response with the error status.
func (a *App) handleError(c Context, err error) {
	if errors.Is(err, errResponded) {
		return
	}
	if re, ok := AsRedirect(err); ok {
		if !c.Written() {
			htmx.RedirectWithStatus(c.Response(), c.Request(), re.URL, re.Code)
		}
		return
	}

	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		c.LogError("request failed",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Request().URL.Path),
			slog.Any("error", err),
		)
	}

	if c.Written() {
		return
	}

	if a.errorHandler != nil {
		herr := a.errorHandler(c, err)
		if herr == nil || c.Written() {
			return
		}
		c.LogError("error handler failed", slog.Any("error", herr))
		status = http.StatusInternalServerError
	}

	msg := http.StatusText(status)
	if he := AsHTTPError(err); he != nil && he.Message != "" && status < http.StatusInternalServerError {
		msg = he.Message
	}
	http.Error(c.Response(), msg, status)
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath overrides "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath overrides "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check. Checks run in parallel.
//
//	mwm.WithReadinessCheck("postgres", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if fn == nil {
			return
		}
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
