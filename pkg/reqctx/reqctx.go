// Package reqctx carries per-request data on a context.Context.
//
// The page dispatcher builds one Context for every matched request and
// attaches it to the request context before any layout or module runs.
// Any code that receives that context.Context (including goroutines started
// from it) can read the request, its URL, the route params, the query and the
// resolved auth session without explicit parameter threading:
//
//	func load(ctx context.Context) error {
//	    rc, err := reqctx.From(ctx)
//	    if err != nil {
//	        return err // reqctx.ErrNoContext outside of a request
//	    }
//	    id := rc.Params.Get("id")
//	    ...
//	}
//
// A Context is an immutable snapshot. It is never stored globally, so
// concurrent requests cannot observe each other's data.
package reqctx

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/mwm/pkg/auth"
	"github.com/dmitrymomot/mwm/pkg/routing"
)

// ErrNoContext is returned when request data is read from a context that
// was not produced for a request.
var ErrNoContext = errors.New("reqctx: no request context")

// Context is the request-scoped data bundle.
type Context struct {
	Request *http.Request
	URL     *url.URL
	Params  routing.Params
	Query   url.Values
	Session auth.Session
}

type contextKey struct{}

// New builds a Context for r. Nil params are replaced by an empty set.
func New(r *http.Request, params routing.Params, sess auth.Session) *Context {
	if params == nil {
		params = routing.Params{}
	}
	return &Context{
		Request: r,
		URL:     r.URL,
		Params:  params,
		Query:   r.URL.Query(),
		Session: sess,
	}
}

// WithContext returns a copy of ctx carrying rc.
func WithContext(ctx context.Context, rc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, rc)
}

// From returns the Context attached to ctx or ErrNoContext.
func From(ctx context.Context) (*Context, error) {
	if ctx == nil {
		return nil, ErrNoContext
	}
	rc, ok := ctx.Value(contextKey{}).(*Context)
	if !ok || rc == nil {
		return nil, ErrNoContext
	}
	return rc, nil
}

// MustFrom is like From but panics outside a request scope.
func MustFrom(ctx context.Context) *Context {
	rc, err := From(ctx)
	if err != nil {
		panic(err)
	}
	return rc
}

// Param returns a route param or an empty string.
func Param(ctx context.Context, name string) string {
	rc, err := From(ctx)
	if err != nil {
		return ""
	}
	return rc.Params.Get(name)
}

// Session returns the resolved auth session, or a guest session outside a
// request scope.
func Session(ctx context.Context) auth.Session {
	rc, err := From(ctx)
	if err != nil {
		return auth.Guest()
	}
	return rc.Session
}
