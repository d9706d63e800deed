package internal_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/mwm/internal"
)

// captureHandler registers GET and POST routes that hand the Context to fn.
type captureHandler struct {
	fn func(c internal.Context)
}

func (h *captureHandler) Routes(r internal.Router) {
	handle := func(c internal.Context) error {
		h.fn(c)
		return nil
	}
	r.GET("/capture/{id}", handle)
	r.POST("/capture/{id}", handle)
}

// requestVia serves req through a fresh App whose only route runs fn.
func requestVia(t *testing.T, req *http.Request, opts []internal.Option, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()

	opts = append(opts, internal.WithHandlers(&captureHandler{fn: fn}))
	app := internal.New(opts...)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func serve(app *internal.App, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func text(s string) internal.Component {
	return internal.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

// tagWrap surrounds content with <tag>...</tag>.
func tagWrap(tag string) internal.WrapFunc {
	return func(_ internal.Context, content internal.Component) internal.Component {
		return internal.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			if _, err := io.WriteString(w, "<"+tag+">"); err != nil {
				return err
			}
			if err := content.Render(ctx, w); err != nil {
				return err
			}
			_, err := io.WriteString(w, "</"+tag+">")
			return err
		})
	}
}

func document(_ internal.Context, body internal.Component) internal.Component {
	return tagWrap("html")(nil, body)
}
