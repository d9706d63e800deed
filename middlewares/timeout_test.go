package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mwm/internal"
	"github.com/dmitrymomot/mwm/middlewares"
)

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("fast handler", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, middlewares.Timeout(time.Second), func(c internal.Context) error {
			return c.String(http.StatusOK, "done")
		}, httptest.NewRequest(http.MethodGet, "/t", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "done", rec.Body.String())
	})

	t.Run("slow handler gets 503", func(t *testing.T) {
		t.Parallel()
		release := make(chan struct{})
		defer close(release)

		rec := serve(t, middlewares.Timeout(20*time.Millisecond), func(c internal.Context) error {
			select {
			case <-middlewares.DeadlineContext(c).Done():
			case <-release:
			}
			return nil
		}, httptest.NewRequest(http.MethodGet, "/t", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("deadline context without middleware", func(t *testing.T) {
		t.Parallel()
		var hasDeadline bool
		serve(t, middlewares.RequestID(), func(c internal.Context) error {
			_, hasDeadline = middlewares.DeadlineContext(c).Deadline()
			return c.NoContent(http.StatusNoContent)
		}, httptest.NewRequest(http.MethodGet, "/t", nil))

		assert.False(t, hasDeadline)
	})
}
