package internal

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
)

// Router declares routes that live beside the file-routed pages, such as
// JSON endpoints and webhooks. Paths use chi syntax ("/users/{id}").
type Router interface {
	GET(path string, h HandlerFunc, mw ...Middleware)
	POST(path string, h HandlerFunc, mw ...Middleware)
	PUT(path string, h HandlerFunc, mw ...Middleware)
	PATCH(path string, h HandlerFunc, mw ...Middleware)
	DELETE(path string, h HandlerFunc, mw ...Middleware)
	Group(fn func(r Router))
	Route(prefix string, fn func(r Router))
	Use(mw ...Middleware)
	// Mount attaches a plain http.Handler such as the typed API router.
	Mount(prefix string, h http.Handler)
}

type chiRouter struct {
	mux chi.Router
	app *App
}

func (r *chiRouter) GET(p string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodGet, p, h, mw)
}

func (r *chiRouter) POST(p string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodPost, p, h, mw)
}

func (r *chiRouter) PUT(p string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodPut, p, h, mw)
}

func (r *chiRouter) PATCH(p string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodPatch, p, h, mw)
}

func (r *chiRouter) DELETE(p string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodDelete, p, h, mw)
}

// handle registers h behind mw; the first middleware listed is outermost.
func (r *chiRouter) handle(method, p string, h HandlerFunc, mw []Middleware) {
	for _, m := range slices.Backward(mw) {
		h = m(h)
	}
	r.mux.Method(method, p, r.app.wrapHandler(h))
}

func (r *chiRouter) Group(fn func(Router)) {
	r.mux.Group(func(sub chi.Router) { fn(&chiRouter{mux: sub, app: r.app}) })
}

func (r *chiRouter) Route(prefix string, fn func(Router)) {
	r.mux.Route(prefix, func(sub chi.Router) { fn(&chiRouter{mux: sub, app: r.app}) })
}

func (r *chiRouter) Use(mw ...Middleware) {
	for _, m := range mw {
		r.mux.Use(r.app.adaptMiddleware(m))
	}
}

func (r *chiRouter) Mount(prefix string, h http.Handler) {
	r.mux.Mount(prefix, h)
}

// adaptMiddleware runs mw as chi middleware. The request and writer the
// middleware leaves on its Context are what next receives, so values stored
// with c.Set reach the handler.
func (a *App) adaptMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := newContext(w, r, a)
			err := mw(func(c Context) error {
				next.ServeHTTP(c.Response(), c.Request())
				return nil
			})(c)
			if err != nil {
				a.handleError(c, err)
			}
		})
	}
}
