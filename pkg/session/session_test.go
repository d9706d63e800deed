package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/pkg/session"
)

func TestNew(t *testing.T) {
	t.Parallel()

	s, err := session.New("user-1", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, "user-1", s.UserID)
	assert.False(t, s.IsExpired())

	other, err := session.New("user-1", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, s.Token, other.Token)
	assert.NotEqual(t, s.ID, other.ID)
}

func TestHashToken(t *testing.T) {
	t.Parallel()

	assert.Equal(t, session.HashToken("abc"), session.HashToken("abc"))
	assert.NotEqual(t, session.HashToken("abc"), session.HashToken("abd"))
	assert.Len(t, session.HashToken("abc"), 64)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		s, err := session.New("u1", time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Create(ctx, s))

		got, err := store.Get(ctx, s.Token)
		require.NoError(t, err)
		assert.Equal(t, s.ID, got.ID)
		assert.Equal(t, "u1", got.UserID)
	})

	t.Run("unknown token", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		_, err := store.Get(ctx, "nope")
		require.ErrorIs(t, err, session.ErrNotFound)
		_, err = store.Get(ctx, "")
		require.ErrorIs(t, err, session.ErrInvalidToken)
	})

	t.Run("expired session", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		s, err := session.New("u1", -time.Minute)
		require.NoError(t, err)
		require.NoError(t, store.Create(ctx, s))

		_, err = store.Get(ctx, s.Token)
		require.ErrorIs(t, err, session.ErrExpired)

		n, err := store.DeleteExpired(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		_, err = store.Get(ctx, s.Token)
		require.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("delete by user", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		a, _ := session.New("u1", time.Hour)
		b, _ := session.New("u1", time.Hour)
		c, _ := session.New("u2", time.Hour)
		for _, s := range []*session.Session{a, b, c} {
			require.NoError(t, store.Create(ctx, s))
		}

		require.NoError(t, store.DeleteByUserID(ctx, "u1"))
		_, err := store.Get(ctx, a.Token)
		require.ErrorIs(t, err, session.ErrNotFound)
		_, err = store.Get(ctx, b.Token)
		require.ErrorIs(t, err, session.ErrNotFound)
		_, err = store.Get(ctx, c.Token)
		require.NoError(t, err)
	})

	t.Run("touch", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		s, _ := session.New("u1", time.Hour)
		require.NoError(t, store.Create(ctx, s))

		at := time.Now().Add(time.Minute).Truncate(time.Second)
		require.NoError(t, store.Touch(ctx, s.ID, at))
		got, err := store.Get(ctx, s.Token)
		require.NoError(t, err)
		assert.True(t, at.Equal(got.LastActiveAt))

		require.ErrorIs(t, store.Touch(ctx, "missing", at), session.ErrNotFound)
	})
}
