package middlewares_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mwm/internal"
	"github.com/dmitrymomot/mwm/middlewares"
)

func TestErrorTypes(t *testing.T) {
	t.Parallel()

	pe := &middlewares.PanicError{Value: "x"}
	te := &middlewares.TimeoutError{Duration: 2 * time.Second}

	assert.True(t, middlewares.IsPanicError(fmt.Errorf("wrap: %w", pe)))
	assert.False(t, middlewares.IsPanicError(errors.New("x")))
	assert.True(t, middlewares.IsTimeoutError(fmt.Errorf("wrap: %w", te)))
	assert.Equal(t, "request timeout after 2s", te.Error())

	assert.Equal(t, http.StatusInternalServerError, internal.StatusOf(pe))
	assert.Equal(t, http.StatusServiceUnavailable, internal.StatusOf(te))

	got, ok := middlewares.AsTimeoutError(te)
	assert.True(t, ok)
	assert.Same(t, te, got)
}
