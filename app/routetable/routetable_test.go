package routetable_test

import (
	"context"
	"go/build"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/app/repository"
	"github.com/dmitrymomot/mwm/app/routetable"
	"github.com/dmitrymomot/mwm/app/services"
	"github.com/dmitrymomot/mwm/app/views"
	"github.com/dmitrymomot/mwm/pkg/auth"
	"github.com/dmitrymomot/mwm/pkg/routegen"
	"github.com/dmitrymomot/mwm/pkg/session"
)

var testHasher = auth.NewHasher(auth.Params{Memory: 1024, Time: 1})

type fixture struct {
	app       *mwm.App
	store     *repository.Memory
	adminRole repository.Role
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemory()

	_, err := store.CreateRole(ctx, repository.RoleParams{Name: services.DefaultRole, DisplayName: "User", IsSystem: true})
	require.NoError(t, err)
	adminRole, err := store.CreateRole(ctx, repository.RoleParams{Name: "admin", DisplayName: "Administrator", IsSystem: true})
	require.NoError(t, err)

	for _, u := range []struct {
		email      string
		superadmin bool
	}{
		{"admin@example.com", true},
		{"ada@example.com", false},
	} {
		hash, err := testHasher.Hash("secret123")
		require.NoError(t, err)
		_, err = store.CreateUser(ctx, repository.CreateUserParams{
			Email: u.email, Name: "Test", PasswordHash: hash, IsSuperadmin: u.superadmin,
		})
		require.NoError(t, err)
	}

	svc := services.New(store, testHasher)
	app := mwm.New(
		mwm.WithMiddleware(services.Inject(svc)),
		mwm.WithAuth(auth.NewManager(session.NewMemoryStore(), svc)),
		mwm.WithPages(routetable.Routes),
		mwm.WithDocument(views.Document),
	)
	return &fixture{app: app, store: store, adminRole: adminRole}
}

func (f *fixture) get(target string, cookie *http.Cookie, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) post(target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) signIn(t *testing.T, email string) *http.Cookie {
	t.Helper()
	rec := f.post("/identity/sign-in", url.Values{"email": {email}, "password": {"secret123"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.DefaultCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestRoutesAreSorted(t *testing.T) {
	t.Parallel()
	for i := 1; i < len(routetable.Routes); i++ {
		assert.Less(t, routetable.Routes[i-1].Pattern, routetable.Routes[i].Pattern)
	}
}

func TestRouteTreeBuilds(t *testing.T) {
	t.Parallel()
	const root = "../routes"

	res, err := routegen.Compile(os.DirFS(root), routegen.Config{ModulePath: "github.com/dmitrymomot/mwm/app/routes"})
	require.NoError(t, err)
	require.NoError(t, res.SkippedErrors())
	require.Len(t, res.Routes, len(routetable.Routes))

	for i, r := range res.Routes {
		assert.Equal(t, routetable.Routes[i].Pattern, r.Pattern)
		assert.Equal(t, routetable.Routes[i].File, r.File)

		pkg, err := build.ImportDir(filepath.Join(root, filepath.FromSlash(path.Dir(r.File))), 0)
		require.NoError(t, err, r.File)
		assert.Contains(t, pkg.GoFiles, path.Base(r.File))
	}
}

func TestSignIn(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	t.Run("redirects to the return url with a session cookie", func(t *testing.T) {
		t.Parallel()
		rec := f.post("/identity/sign-in", url.Values{
			"email":     {"ada@example.com"},
			"password":  {"secret123"},
			"returnUrl": {"/cms"},
		}, nil)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/cms", rec.Header().Get("Location"))
		assert.NotEmpty(t, rec.Result().Cookies())
	})

	t.Run("foreign return url falls back to root", func(t *testing.T) {
		t.Parallel()
		rec := f.post("/identity/sign-in", url.Values{
			"email":     {"ada@example.com"},
			"password":  {"secret123"},
			"returnUrl": {"https://evil.example.com"},
		}, nil)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("wrong password and unknown email read the same", func(t *testing.T) {
		t.Parallel()
		wrong := f.post("/identity/sign-in", url.Values{"email": {"ada@example.com"}, "password": {"wrong-pass"}}, nil)
		unknown := f.post("/identity/sign-in", url.Values{"email": {"nobody@example.com"}, "password": {"secret123"}}, nil)

		for _, rec := range []*httptest.ResponseRecorder{wrong, unknown} {
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), services.MsgInvalidCredentials)
			assert.Empty(t, rec.Result().Cookies())
		}
	})

	t.Run("htmx failure returns the form alone with 200", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/identity/sign-in",
			strings.NewReader(url.Values{"email": {"ada@example.com"}, "password": {"wrong-pass"}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()
		f.app.ServeHTTP(rec, req)

		// htmx only swaps 2xx responses.
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Body.String(), `<form id="sign-in-form"`))
		assert.Contains(t, rec.Body.String(), services.MsgInvalidCredentials)
	})
}

func TestGuards(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.get("/cms", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/identity/sign-in?returnUrl=%2Fcms", rec.Header().Get("Location"))

	rec = f.get("/admin/roles", nil)
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = f.get("/admin/roles", f.signIn(t, "ada@example.com"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDocumentShell(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	cookie := f.signIn(t, "ada@example.com")

	full := f.get("/cms", cookie)
	require.Equal(t, http.StatusOK, full.Code)
	assert.Contains(t, full.Body.String(), "<!doctype html>")
	assert.Contains(t, full.Body.String(), "Welcome to the CMS Home Page!")

	for _, rec := range []*httptest.ResponseRecorder{
		f.get("/cms?partial=yes", cookie),
		f.get("/cms", cookie, "HX-Request", "true"),
	} {
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "<!doctype html>")
		assert.NotContains(t, rec.Body.String(), `class="site-header"`)
		assert.Contains(t, rec.Body.String(), "Welcome to the CMS Home Page!")
	}
}

func TestAdminRoles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	cookie := f.signIn(t, "admin@example.com")

	t.Run("listing", func(t *testing.T) {
		rec := f.get("/admin/roles", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Administrator")
	})

	t.Run("create redirects to the listing", func(t *testing.T) {
		rec := f.post("/admin/roles", url.Values{"name": {"editor"}, "displayName": {"Editor"}}, cookie)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/admin/roles", rec.Header().Get("Location"))

		_, err := f.store.RoleByName(ctx, "editor")
		require.NoError(t, err)
	})

	t.Run("duplicate name re-renders with a conflict", func(t *testing.T) {
		before, err := f.store.ListRoles(ctx)
		require.NoError(t, err)

		rec := f.post("/admin/roles", url.Values{"name": {"editor"}, "displayName": {"Other"}}, cookie)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), services.MsgRoleExists)

		after, err := f.store.ListRoles(ctx)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("deleting a system role is a no-op redirect", func(t *testing.T) {
		rec := f.post("/admin/roles/"+f.adminRole.ID+"/delete", nil, cookie)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/admin/roles", rec.Header().Get("Location"))

		_, err := f.store.RoleByID(ctx, f.adminRole.ID)
		assert.NoError(t, err)
	})

	t.Run("unknown role redirects to the listing", func(t *testing.T) {
		rec := f.get("/admin/roles/missing", cookie)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/admin/roles", rec.Header().Get("Location"))
	})
}

func TestAdminPermissions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	cookie := f.signIn(t, "admin@example.com")

	form := url.Values{"resource": {"reports"}, "action": {"export"}, "displayName": {"Export reports"}}
	rec := f.post("/admin/permissions", form, cookie)
	require.Equal(t, http.StatusFound, rec.Code)

	rec = f.post("/admin/permissions", form, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "reports:export")

	p, err := f.store.PermissionByName(ctx, "reports:export")
	require.NoError(t, err)
	rec = f.post("/admin/permissions/"+p.ID+"/delete", nil, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/permissions", rec.Header().Get("Location"))

	_, err = f.store.PermissionByID(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSignOut(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	cookie := f.signIn(t, "ada@example.com")

	rec := f.post("/identity/sign-out", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/identity/sign-in", rec.Header().Get("Location"))

	rec = f.get("/cms", cookie)
	assert.Equal(t, http.StatusFound, rec.Code, "the old cookie no longer authenticates")
}

func TestProfileEdit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	cookie := f.signIn(t, "ada@example.com")
	ada, err := f.store.UserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	admin, err := f.store.UserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)

	rec := f.get("/users/"+admin.ID+"/edit", cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.post("/users/"+ada.ID+"/edit", url.Values{"name": {"Ada Lovelace"}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)

	ada, err = f.store.UserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", ada.Name)
}

func TestNotFound(t *testing.T) {
	t.Parallel()
	rec := newFixture(t).get("/no/such/page", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
