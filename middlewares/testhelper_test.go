package middlewares_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/mwm/internal"
)

type routeFunc func(r internal.Router)

func (f routeFunc) Routes(r internal.Router) { f(r) }

// serve runs req through an app with mw installed globally and h on every
// method of /t.
func serve(t *testing.T, mw internal.Middleware, h internal.HandlerFunc, req *http.Request, opts ...internal.Option) *httptest.ResponseRecorder {
	t.Helper()

	base := []internal.Option{
		internal.WithMiddleware(mw),
		internal.WithHandlers(routeFunc(func(r internal.Router) {
			r.GET("/t", h)
			r.POST("/t", h)
			r.PUT("/t", h)
		})),
	}
	app := internal.New(append(base, opts...)...)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}
