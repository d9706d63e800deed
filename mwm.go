package mwm

import (
	"github.com/dmitrymomot/mwm/internal"
	"github.com/dmitrymomot/mwm/pkg/cookie"
	"github.com/dmitrymomot/mwm/pkg/job"
	"github.com/dmitrymomot/mwm/pkg/logger"
)

// Type aliases - public API
type (
	// App orchestrates the application lifecycle.
	// It manages HTTP routing, page dispatch, middleware, and graceful shutdown.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	// It implements context.Context.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers and pages.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// Component is the interface for renderable templates.
	Component = internal.Component

	// ComponentFunc adapts a function to Component.
	ComponentFunc = internal.ComponentFunc

	// ValidationErrors is a collection of validation errors.
	ValidationErrors = internal.ValidationErrors

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// CookieOption configures the cookie manager.
	CookieOption = cookie.Option

	// ResponseWriter wraps http.ResponseWriter with hooks and HTMX support.
	ResponseWriter = internal.ResponseWriter

	// JobOption configures the job manager.
	JobOption = job.Option

	// EnqueueOption configures job enqueueing.
	EnqueueOption = job.EnqueueOption

	// JobQueue inserts background jobs.
	JobQueue = internal.JobQueue
)

// New creates a new application with the given options.
// The App is immutable after creation. It panics when the page table holds
// duplicate or empty routes.
//
// Example:
//
//	app := mwm.New(
//	    mwm.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    mwm.WithPages(routetable.Routes),
//	    mwm.WithDocument(views.Document),
//	    mwm.WithHandlers(apiv1.New(log)),
//	)
//
//	err := app.Run(":8080", mwm.Logger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}
