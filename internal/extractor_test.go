package internal_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mwm/internal"
)

func TestExtractor(t *testing.T) {
	t.Parallel()

	t.Run("first non-empty source wins", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/capture/7?returnUrl=%2Fadmin", nil)
		req.Header.Set("X-Return", "")

		var got string
		var ok bool
		requestVia(t, req, nil, func(c internal.Context) {
			got, ok = internal.NewExtractor(
				internal.FromHeader("X-Return"),
				internal.FromQuery("returnUrl"),
				internal.FromParam("id"),
			).Extract(c)
		})
		assert.True(t, ok)
		assert.Equal(t, "/admin", got)
	})

	t.Run("form and param", func(t *testing.T) {
		t.Parallel()
		body := url.Values{"email": {"admin@example.com"}}
		req := httptest.NewRequest(http.MethodPost, "/capture/7", strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		var email, id string
		requestVia(t, req, nil, func(c internal.Context) {
			email, _ = internal.NewExtractor(internal.FromForm("email")).Extract(c)
			id, _ = internal.NewExtractor(internal.FromParam("id")).Extract(c)
		})
		assert.Equal(t, "admin@example.com", email)
		assert.Equal(t, "7", id)
	})

	t.Run("cookie", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/capture/1", nil)
		req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})

		var got string
		requestVia(t, req, nil, func(c internal.Context) {
			got, _ = internal.NewExtractor(internal.FromCookie("missing"), internal.FromCookie("theme")).Extract(c)
		})
		assert.Equal(t, "dark", got)
	})

	t.Run("bearer token", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			header string
			want   string
			ok     bool
		}{
			{header: "Bearer abc123", want: "abc123", ok: true},
			{header: "bearer  abc123 ", want: "abc123", ok: true},
			{header: "Basic abc123"},
			{header: "Bearer "},
			{header: ""},
		}
		for _, tt := range tests {
			req := httptest.NewRequest(http.MethodGet, "/capture/1", nil)
			req.Header.Set("Authorization", tt.header)

			var got string
			var ok bool
			requestVia(t, req, nil, func(c internal.Context) {
				got, ok = internal.NewExtractor(internal.FromBearerToken()).Extract(c)
			})
			assert.Equal(t, tt.ok, ok, tt.header)
			assert.Equal(t, tt.want, got, tt.header)
		}
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/capture/1", nil)
		var ok bool
		requestVia(t, req, nil, func(c internal.Context) {
			_, ok = internal.NewExtractor(internal.FromQuery("x"), internal.FromHeader("X-Y")).Extract(c)
		})
		assert.False(t, ok)
	})
}
