package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/pkg/auth"
	"github.com/dmitrymomot/mwm/pkg/cache"
	"github.com/dmitrymomot/mwm/pkg/session"
)

// Cheap parameters keep the suite fast.
var testParams = auth.Params{Memory: 1024, Time: 1, Threads: 1}

type fakeUsers struct {
	accounts map[string]auth.Account // by email
}

func (f *fakeUsers) AccountByEmail(_ context.Context, email string) (auth.Account, error) {
	acc, ok := f.accounts[email]
	if !ok {
		return auth.Account{}, auth.ErrUserNotFound
	}
	return acc, nil
}

func (f *fakeUsers) IdentityByID(_ context.Context, id string) (auth.Identity, error) {
	for _, acc := range f.accounts {
		if acc.ID == id && acc.Active {
			return acc.Identity, nil
		}
	}
	return auth.Identity{}, auth.ErrUserNotFound
}

func newUsers(t *testing.T, h *auth.Hasher) *fakeUsers {
	t.Helper()
	hash, err := h.Hash("admin123")
	require.NoError(t, err)
	return &fakeUsers{accounts: map[string]auth.Account{
		"admin@example.com": {
			Identity:     auth.Identity{ID: "u1", Email: "admin@example.com", Name: "Admin"},
			PasswordHash: hash,
			Active:       true,
		},
		"gone@example.com": {
			Identity:     auth.Identity{ID: "u2", Email: "gone@example.com"},
			PasswordHash: hash,
		},
		"oauth@example.com": {
			Identity: auth.Identity{ID: "u3", Email: "oauth@example.com"},
			Active:   true,
		},
	}}
}

func TestHasher(t *testing.T) {
	t.Parallel()
	h := auth.NewHasher(testParams)

	hash, err := h.Hash("secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := h.Verify("secret", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("Secret", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := h.Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salts must differ")

	t.Run("verifies hashes made with other parameters", func(t *testing.T) {
		t.Parallel()
		strong := auth.NewHasher(auth.Params{Memory: 2048, Time: 2, Threads: 1})
		hash, err := strong.Hash("pw")
		require.NoError(t, err)
		ok, err := h.Verify("pw", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects malformed hashes", func(t *testing.T) {
		t.Parallel()
		for _, bad := range []string{"", "plain", "$argon2i$v=19$m=1,t=1,p=1$a$b", "$argon2id$v=19$m=x$a$b", "$argon2id$v=19$m=1,t=1,p=1$!!$b"} {
			_, err := h.Verify("pw", bad)
			require.ErrorIs(t, err, auth.ErrInvalidHash, bad)
		}
		_, err := h.Verify("pw", "$argon2id$v=16$m=1,t=1,p=1$YQ$Yg")
		require.ErrorIs(t, err, auth.ErrIncompatibleVersion)
	})
}

func TestAuthenticator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := auth.NewHasher(testParams)

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()
		a := auth.NewAuthenticator(newUsers(t, h), h)
		id, err := a.Authenticate(ctx, "admin@example.com", "admin123")
		require.NoError(t, err)
		assert.Equal(t, "u1", id.ID)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		t.Parallel()
		a := auth.NewAuthenticator(newUsers(t, h), h)
		_, errUnknown := a.Authenticate(ctx, "nobody@example.com", "admin123")
		_, errWrong := a.Authenticate(ctx, "admin@example.com", "wrong-password")
		_, errNoPassword := a.Authenticate(ctx, "oauth@example.com", "whatever")
		require.ErrorIs(t, errUnknown, auth.ErrInvalidCredentials)
		require.ErrorIs(t, errWrong, auth.ErrInvalidCredentials)
		require.ErrorIs(t, errNoPassword, auth.ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("inactive account", func(t *testing.T) {
		t.Parallel()
		a := auth.NewAuthenticator(newUsers(t, h), h)
		_, err := a.Authenticate(ctx, "gone@example.com", "admin123")
		require.ErrorIs(t, err, auth.ErrInactive)

		_, err = a.Authenticate(ctx, "gone@example.com", "bad")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("throttles repeated failures", func(t *testing.T) {
		t.Parallel()
		mem := cache.NewMemoryCounter()
		t.Cleanup(func() { _ = mem.Close() })
		a := auth.NewAuthenticator(newUsers(t, h), h, auth.WithThrottle(auth.NewThrottle(mem, 3, time.Minute)))

		for range 3 {
			_, err := a.Authenticate(ctx, "admin@example.com", "bad")
			require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		}
		_, err := a.Authenticate(ctx, "ADMIN@example.com", "admin123")
		require.ErrorIs(t, err, auth.ErrThrottled)

		_, err = a.Authenticate(ctx, "other@example.com", "x")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("success resets throttle", func(t *testing.T) {
		t.Parallel()
		mem := cache.NewMemoryCounter()
		t.Cleanup(func() { _ = mem.Close() })
		th := auth.NewThrottle(mem, 2, time.Minute)
		a := auth.NewAuthenticator(newUsers(t, h), h, auth.WithThrottle(th))

		_, _ = a.Authenticate(ctx, "admin@example.com", "bad")
		_, err := a.Authenticate(ctx, "admin@example.com", "admin123")
		require.NoError(t, err)

		_, err = mem.Get(ctx, "signin:admin@example.com")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})
}

func TestThrottleConcurrentAttempts(t *testing.T) {
	t.Parallel()
	counter := cache.NewMemoryCounter()
	t.Cleanup(func() { _ = counter.Close() })
	th := auth.NewThrottle(counter, 5, time.Minute)

	var (
		allowed atomic.Int32
		wg      sync.WaitGroup
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := th.Attempt(context.Background(), "ada@example.com")
			if err == nil && ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(5), allowed.Load())

	require.NoError(t, th.Reset(context.Background(), "ada@example.com"))
	ok, err := th.Attempt(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestManager(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := auth.NewHasher(testParams)

	newManager := func(t *testing.T) (*auth.Manager, *session.MemoryStore) {
		t.Helper()
		store := session.NewMemoryStore()
		return auth.NewManager(store, newUsers(t, h), auth.WithMaxAge(time.Hour)), store
	}

	requestWith := func(c *http.Cookie) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if c != nil {
			r.AddCookie(c)
		}
		return r
	}

	t.Run("create then resolve", func(t *testing.T) {
		t.Parallel()
		m, _ := newManager(t)
		c, err := m.CreateSession(ctx, requestWith(nil), auth.Identity{ID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, auth.DefaultCookieName, c.Name)
		assert.Equal(t, 3600, c.MaxAge)
		assert.True(t, c.HttpOnly)
		assert.NotEmpty(t, c.Value)

		sess := m.SessionFromRequest(requestWith(c))
		require.True(t, sess.IsAuthenticated())
		id, ok := sess.Identity()
		require.True(t, ok)
		assert.Equal(t, "admin@example.com", id.Email)
		assert.NotEmpty(t, sess.ID())
	})

	t.Run("guest on bad cookies", func(t *testing.T) {
		t.Parallel()
		m, _ := newManager(t)
		cases := []*http.Cookie{
			nil,
			{Name: auth.DefaultCookieName, Value: ""},
			{Name: auth.DefaultCookieName, Value: "garbage"},
			{Name: "other", Value: "x"},
		}
		for _, c := range cases {
			assert.False(t, m.SessionFromRequest(requestWith(c)).IsAuthenticated())
		}
	})

	t.Run("guest when user deactivated", func(t *testing.T) {
		t.Parallel()
		m, _ := newManager(t)
		c, err := m.CreateSession(ctx, requestWith(nil), auth.Identity{ID: "u2"})
		require.NoError(t, err)
		assert.False(t, m.SessionFromRequest(requestWith(c)).IsAuthenticated())
	})

	t.Run("guest when expired", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		m := auth.NewManager(store, newUsers(t, h))
		s, err := session.New("u1", -time.Second)
		require.NoError(t, err)
		require.NoError(t, store.Create(ctx, s))

		r := requestWith(&http.Cookie{Name: m.CookieName(), Value: s.Token})
		assert.False(t, m.SessionFromRequest(r).IsAuthenticated())
	})

	t.Run("destroy clears cookie and record", func(t *testing.T) {
		t.Parallel()
		m, store := newManager(t)
		c, err := m.CreateSession(ctx, requestWith(nil), auth.Identity{ID: "u1"})
		require.NoError(t, err)

		cleared := m.DestroySession(requestWith(c))
		assert.Equal(t, -1, cleared.MaxAge)
		assert.Empty(t, cleared.Value)

		_, err = store.Get(ctx, c.Value)
		require.ErrorIs(t, err, session.ErrNotFound)
		assert.False(t, m.SessionFromRequest(requestWith(c)).IsAuthenticated())
	})

	t.Run("destroy without cookie", func(t *testing.T) {
		t.Parallel()
		m, _ := newManager(t)
		assert.Equal(t, -1, m.DestroySession(requestWith(nil)).MaxAge)
	})
}

func TestGuestSession(t *testing.T) {
	t.Parallel()

	g := auth.Guest()
	assert.False(t, g.IsAuthenticated())
	assert.Empty(t, g.UserID())
	assert.Empty(t, g.ID())
	_, ok := g.Identity()
	assert.False(t, ok)
}
