package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mwm/internal"
)

type ctxKey struct{}

func TestTypedParams(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/capture/42?limit=5&ratio=0.25&active=true&bad=x", nil)

	requestVia(t, req, nil, func(c internal.Context) {
		assert.Equal(t, 42, internal.Param[int](c, "id"))
		assert.Equal(t, int64(42), internal.Param[int64](c, "id"))
		assert.Equal(t, "42", internal.Param[string](c, "id"))

		assert.Equal(t, 5, internal.Query[int](c, "limit"))
		assert.InDelta(t, 0.25, internal.Query[float64](c, "ratio"), 0.0001)
		assert.True(t, internal.Query[bool](c, "active"))
		assert.Equal(t, 0, internal.Query[int](c, "bad"))

		assert.Equal(t, 10, internal.QueryDefault(c, "missing", 10))
		assert.Equal(t, 10, internal.QueryDefault(c, "bad", 10))
		assert.Equal(t, 5, internal.QueryDefault(c, "limit", 10))
	})
}

func TestContextValue(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/capture/1", nil)
	requestVia(t, req, nil, func(c internal.Context) {
		assert.Empty(t, internal.ContextValue[string](c, ctxKey{}))
		c.Set(ctxKey{}, "org-1")
		assert.Equal(t, "org-1", internal.ContextValue[string](c, ctxKey{}))
		assert.Equal(t, 0, internal.ContextValue[int](c, ctxKey{}))
	})
}
