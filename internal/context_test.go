package internal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/internal"
	"github.com/dmitrymomot/mwm/pkg/auth"
	"github.com/dmitrymomot/mwm/pkg/htmx"
	"github.com/dmitrymomot/mwm/pkg/job"
	"github.com/dmitrymomot/mwm/pkg/reqctx"
	"github.com/dmitrymomot/mwm/pkg/session"
	"github.com/dmitrymomot/mwm/pkg/storage"
)

type staticUsers map[string]auth.Identity

func (u staticUsers) IdentityByID(_ context.Context, id string) (auth.Identity, error) {
	if ident, ok := u[id]; ok {
		return ident, nil
	}
	return auth.Identity{}, auth.ErrUserNotFound
}

type signInForm struct {
	Email    string `form:"email" sanitize:"trim,lower" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

func TestContextSession(t *testing.T) {
	t.Parallel()

	users := staticUsers{"u1": {ID: "u1", Email: "admin@example.com", Name: "Admin"}}
	manager := auth.NewManager(session.NewMemoryStore(), users)

	home := internal.Module{Page: func(c internal.Context) (internal.Component, error) {
		who := "guest"
		if reqctx.Session(c).IsAuthenticated() {
			who = c.UserID()
		}
		return text(who), nil
	}}
	signIn := internal.HandlerFunc(func(c internal.Context) error {
		if err := c.SignIn(users["u1"]); err != nil {
			return err
		}
		return c.String(http.StatusOK, c.UserID())
	})
	signOut := internal.HandlerFunc(func(c internal.Context) error {
		if err := c.SignOut(); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})

	app := internal.New(
		internal.WithAuth(manager),
		internal.WithPages([]internal.PageRoute{
			{Pattern: "/", Module: home},
			{Pattern: "/sign-in", Module: internal.Module{POST: signIn}},
			{Pattern: "/sign-out", Module: internal.Module{POST: signOut}},
		}),
	)

	w := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "guest", w.Body.String())

	w = serve(app, httptest.NewRequest(http.MethodPost, "/sign-in", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	sid := cookies[0]
	assert.Equal(t, auth.DefaultCookieName, sid.Name)
	assert.True(t, sid.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sid)
	assert.Equal(t, "u1", serve(app, req).Body.String())

	req = httptest.NewRequest(http.MethodPost, "/sign-out", nil)
	req.AddCookie(sid)
	w = serve(app, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sid)
	assert.Equal(t, "guest", serve(app, req).Body.String())
}

func TestContextWithoutAuth(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/capture/1", nil)
	requestVia(t, req, nil, func(c internal.Context) {
		assert.False(t, c.IsAuthenticated())
		assert.Empty(t, c.UserID())
		assert.False(t, c.IsCurrentUser(""))
		assert.ErrorIs(t, c.SignIn(auth.Identity{ID: "u1"}), auth.ErrNotConfigured)
		assert.ErrorIs(t, c.SignOut(), auth.ErrNotConfigured)
		assert.ErrorIs(t, c.Enqueue("send_welcome", nil), job.ErrNotConfigured)
		_, err := c.Storage()
		assert.ErrorIs(t, err, storage.ErrNotConfigured)
	})
}

func TestContextBind(t *testing.T) {
	t.Parallel()

	t.Run("sanitizes then validates", func(t *testing.T) {
		t.Parallel()
		body := url.Values{"email": {"  Admin@Example.COM "}, "password": {"admin123"}}
		req := httptest.NewRequest(http.MethodPost, "/capture/1", strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		requestVia(t, req, nil, func(c internal.Context) {
			var in signInForm
			ve, err := c.Bind(&in)
			require.NoError(t, err)
			assert.Nil(t, ve)
			assert.Equal(t, "admin@example.com", in.Email)
		})
	})

	t.Run("field errors", func(t *testing.T) {
		t.Parallel()
		body := url.Values{"email": {"nope"}, "password": {"123"}}
		req := httptest.NewRequest(http.MethodPost, "/capture/1", strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		requestVia(t, req, nil, func(c internal.Context) {
			var in signInForm
			ve, err := c.Bind(&in)
			require.NoError(t, err)
			assert.Equal(t, "Please enter a valid email address", ve.Get("email"))
			assert.Equal(t, "Password must be at least 6 characters", ve.Get("password"))
		})
	})
}

func TestContextResponses(t *testing.T) {
	t.Parallel()

	t.Run("htmx redirect", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/capture/1", nil)
		req.Header.Set("HX-Request", "true")
		w := requestVia(t, req, nil, func(c internal.Context) {
			_ = c.Redirect(http.StatusSeeOther, "/admin")
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "/admin", w.Header().Get("HX-Redirect"))
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/capture/1", nil)
		w := requestVia(t, req, nil, func(c internal.Context) {
			_ = c.JSON(http.StatusCreated, map[string]bool{"deleted": true})
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"deleted":true}`, w.Body.String())
	})

	t.Run("htmx render with out-of-band swap", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/capture/1", nil)
		req.Header.Set("HX-Request", "true")
		w := requestVia(t, req, nil, func(c internal.Context) {
			_ = c.Render(http.StatusUnprocessableEntity, text("<form></form>"),
				htmx.WithTrigger("saved"),
				htmx.WithOOB(text(`<p id="notice" hx-swap-oob="true">Saved</p>`)))
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "saved", w.Header().Get("HX-Trigger"))
		assert.Equal(t, `<form></form><p id="notice" hx-swap-oob="true">Saved</p>`, w.Body.String())
	})

	t.Run("render options ignored without htmx", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/capture/1", nil)
		w := requestVia(t, req, nil, func(c internal.Context) {
			_ = c.Render(http.StatusOK, text("page"), htmx.WithOOB(text("oob")))
		})
		assert.Equal(t, "page", w.Body.String())
		assert.Empty(t, w.Header().Get("HX-Trigger"))
	})

	t.Run("partial detection", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/capture/1?partial=yes", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			assert.True(t, c.IsPartial())
			assert.False(t, c.IsHTMX())
		})
	})
}
