package internal

import (
	"context"
	"io"
)

// Handler declares routes on a router.
//
// Example:
//
//	type APIHandler struct {
//	    api *api.API
//	}
//
//	func (h *APIHandler) Routes(r mwm.Router) {
//	    r.Mount("/api", h.api)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// Returning a non-nil error hands the error to the app's error handler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
//
// Example:
//
//	func Auth(next mwm.HandlerFunc) mwm.HandlerFunc {
//	    return func(c mwm.Context) error {
//	        if !c.IsAuthenticated() {
//	            return mwm.RedirectTo("/identity/sign-in")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error

// Component is the interface for renderable templates.
// It is satisfied by templ.Component.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// ComponentFunc adapts a function to Component.
type ComponentFunc func(ctx context.Context, w io.Writer) error

// Render calls f.
func (f ComponentFunc) Render(ctx context.Context, w io.Writer) error {
	return f(ctx, w)
}
