package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/pkg/redis"
)

func TestOpenRejectsBadURLs(t *testing.T) {
	t.Parallel()
	for _, url := range []string{"", "localhost:6379", "http://localhost:6379", "redis://localhost:6379/notadb"} {
		t.Run(url, func(t *testing.T) {
			t.Parallel()
			_, err := redis.Open(context.Background(), url)
			require.ErrorIs(t, err, redis.ErrInvalidURL)
		})
	}
}

func TestOpenGivesUp(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Port 1 is never a redis server.
	_, err := redis.Open(ctx, "redis://127.0.0.1:1/0",
		redis.WithRetry(2, 10*time.Millisecond),
		redis.WithTimeout(200*time.Millisecond),
	)
	require.ErrorIs(t, err, redis.ErrConnect)
}

func TestHealthcheckWithoutClient(t *testing.T) {
	t.Parallel()
	require.ErrorIs(t, redis.Healthcheck(nil)(context.Background()), redis.ErrUnavailable)
}

type closer struct{ err error }

func (c closer) Close() error { return c.err }

func TestShutdown(t *testing.T) {
	t.Parallel()
	assert.NoError(t, redis.Shutdown(closer{})(context.Background()))
	boom := errors.New("boom")
	assert.ErrorIs(t, redis.Shutdown(closer{err: boom})(context.Background()), boom)
}
