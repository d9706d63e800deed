package reqctx_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/pkg/auth"
	"github.com/dmitrymomot/mwm/pkg/reqctx"
	"github.com/dmitrymomot/mwm/pkg/routing"
)

func TestFrom(t *testing.T) {
	t.Parallel()

	t.Run("fails outside request scope", func(t *testing.T) {
		t.Parallel()
		_, err := reqctx.From(context.Background())
		require.ErrorIs(t, err, reqctx.ErrNoContext)
		assert.Empty(t, reqctx.Param(context.Background(), "id"))
		assert.False(t, reqctx.Session(context.Background()).IsAuthenticated())
		assert.Panics(t, func() { reqctx.MustFrom(context.Background()) })
	})

	t.Run("returns attached data", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest("GET", "/users/42?tab=profile", nil)
		sess := auth.NewSession("sid", auth.Identity{ID: "u1", Email: "a@example.com"})
		ctx := reqctx.WithContext(r.Context(), reqctx.New(r, routing.Params{"id": "42"}, sess))

		rc, err := reqctx.From(ctx)
		require.NoError(t, err)
		assert.Equal(t, "/users/42", rc.URL.Path)
		assert.Equal(t, "profile", rc.Query.Get("tab"))
		assert.Equal(t, "42", reqctx.Param(ctx, "id"))
		assert.Equal(t, "u1", reqctx.Session(ctx).UserID())
	})

	t.Run("nil params become empty", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest("GET", "/", nil)
		rc := reqctx.New(r, nil, auth.Guest())
		require.NotNil(t, rc.Params)
		assert.Empty(t, rc.Params)
	})
}

func TestIsolation(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := string(rune('a' + i%26))
			r := httptest.NewRequest("GET", "/items/"+id, nil)
			ctx := reqctx.WithContext(r.Context(), reqctx.New(r, routing.Params{"id": id}, auth.Guest()))

			done := make(chan string)
			go func() { done <- reqctx.Param(ctx, "id") }()
			assert.Equal(t, id, <-done)
		}()
	}
	wg.Wait()
}
