package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/internal"
)

func staticFS() fstest.MapFS {
	return fstest.MapFS{
		"public/app.css": &fstest.MapFile{Data: []byte("body{margin:0}")},
		"public/app.js":  &fstest.MapFile{Data: []byte("console.log(1)")},
	}
}

var staticAssets = []internal.Asset{
	{Path: "/app.css", File: "public/app.css", ContentType: "text/css; charset=utf-8"},
	{Path: "/app.js", File: "public/app.js", ContentType: "text/javascript; charset=utf-8"},
}

func TestStaticAssets(t *testing.T) {
	t.Parallel()

	t.Run("production", func(t *testing.T) {
		t.Parallel()
		app := internal.New(internal.WithAssets(staticFS(), staticAssets, false))

		w := serve(app, httptest.NewRequest(http.MethodGet, "/app.css", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "body{margin:0}", w.Body.String())
		assert.Equal(t, "text/css; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, internal.CacheControlImmutable, w.Header().Get("Cache-Control"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

		etag := w.Header().Get("ETag")
		require.Len(t, etag, 18)

		req := httptest.NewRequest(http.MethodGet, "/app.css", nil)
		req.Header.Set("If-None-Match", etag)
		w = serve(app, req)
		assert.Equal(t, http.StatusNotModified, w.Code)
	})

	t.Run("development rereads files", func(t *testing.T) {
		t.Parallel()
		fsys := staticFS()
		app := internal.New(internal.WithAssets(fsys, staticAssets, true))

		fsys["public/app.js"].Data = []byte("console.log(2)")
		w := serve(app, httptest.NewRequest(http.MethodGet, "/app.js", nil))
		assert.Equal(t, "console.log(2)", w.Body.String())
		assert.Equal(t, internal.CacheControlNoCache, w.Header().Get("Cache-Control"))
		assert.Empty(t, w.Header().Get("ETag"))
	})

	t.Run("head", func(t *testing.T) {
		t.Parallel()
		app := internal.New(internal.WithAssets(staticFS(), staticAssets, false))
		w := serve(app, httptest.NewRequest(http.MethodHead, "/app.js", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("missing file fails at startup", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			internal.New(internal.WithAssets(fstest.MapFS{}, staticAssets, false))
		})
	})

	t.Run("assets win over pages", func(t *testing.T) {
		t.Parallel()
		app := internal.New(
			internal.WithAssets(staticFS(), staticAssets, false),
			internal.WithPages([]internal.PageRoute{{Pattern: "/:slug", Module: internal.Module{
				Page: func(internal.Context) (internal.Component, error) { return text("page"), nil },
			}}}),
		)
		assert.Equal(t, "body{margin:0}", serve(app, httptest.NewRequest(http.MethodGet, "/app.css", nil)).Body.String())
		assert.Equal(t, "page", serve(app, httptest.NewRequest(http.MethodGet, "/about", nil)).Body.String())
	})
}
