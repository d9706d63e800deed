package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("set get delete", func(t *testing.T) {
		t.Parallel()
		m := NewMemory[int]()
		t.Cleanup(func() { _ = m.Close() })

		_, err := m.Get(ctx, "a")
		require.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, m.Set(ctx, "a", 3, time.Minute))
		v, err := m.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 3, v)

		require.NoError(t, m.Delete(ctx, "a"))
		_, err = m.Get(ctx, "a")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("entries expire", func(t *testing.T) {
		t.Parallel()
		m := NewMemory[string]()
		t.Cleanup(func() { _ = m.Close() })
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		m.now = func() time.Time { return now }

		require.NoError(t, m.Set(ctx, "short", "x", time.Second))
		require.NoError(t, m.Set(ctx, "forever", "y", 0))
		assert.Equal(t, 2, m.Len())

		now = now.Add(time.Second)
		_, err := m.Get(ctx, "short")
		require.ErrorIs(t, err, ErrNotFound)
		v, err := m.Get(ctx, "forever")
		require.NoError(t, err)
		assert.Equal(t, "y", v)

		m.prune()
		assert.Equal(t, 1, m.Len())
	})

	t.Run("closed", func(t *testing.T) {
		t.Parallel()
		m := NewMemory[int]()
		require.NoError(t, m.Close())
		require.NoError(t, m.Close())
		require.ErrorIs(t, m.Set(ctx, "a", 1, 0), ErrClosed)
		_, err := m.Get(ctx, "a")
		require.ErrorIs(t, err, ErrClosed)
	})
}

func TestMemoryCounter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemoryCounter()
	t.Cleanup(func() { _ = c.Close() })
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for want := int64(1); want <= 3; want++ {
		n, err := c.Incr(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	// Later increments do not extend the window.
	now = now.Add(time.Minute)
	n, err := c.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, c.Close())
	_, err = c.Incr(ctx, "k", time.Minute)
	require.ErrorIs(t, err, ErrClosed)
}
