package internal_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/internal"
)

func TestRun(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		calls []string
	)
	record := func(name string, err error) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, name)
			return err
		}
	}

	app := internal.New(internal.WithHandlers(&captureHandler{fn: func(c internal.Context) {
		_ = c.String(http.StatusOK, "pong")
	}}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	hookErr := errors.New("close failed")
	go func() {
		done <- app.Run("", internal.WithListener(ln), internal.WithContext(ctx),
			internal.StartupHook(record("startup", nil)),
			internal.ShutdownHook(record("first", hookErr)),
			internal.ShutdownHook(record("second", nil)),
			internal.ShutdownTimeout(5*time.Second),
		)
	}()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String() + "/capture/1")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, hookErr)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"startup", "first", "second"}, calls)
}

func TestRunStartupHookFails(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	boom := errors.New("migrations failed")
	err = internal.New().Run("", internal.WithListener(ln),
		internal.StartupHook(func(context.Context) error { return boom }))
	require.ErrorIs(t, err, boom)
}
