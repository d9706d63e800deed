package services_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/app/repository"
	"github.com/dmitrymomot/mwm/app/services"
	"github.com/dmitrymomot/mwm/pkg/auth"
	"github.com/dmitrymomot/mwm/pkg/cache"
	"github.com/dmitrymomot/mwm/pkg/storage"
	"github.com/dmitrymomot/mwm/pkg/validator"
)

var testHasher = auth.NewHasher(auth.Params{Memory: 1024, Time: 1})

func newServices(t *testing.T, opts ...services.Option) (*services.Services, *repository.Memory) {
	t.Helper()
	store := repository.NewMemory()
	_, err := store.CreateRole(context.Background(), repository.RoleParams{Name: services.DefaultRole, DisplayName: "User", IsSystem: true})
	require.NoError(t, err)
	return services.New(store, testHasher, opts...), store
}

func signUp(t *testing.T, svc *services.Services, email string) auth.Identity {
	t.Helper()
	id, err := svc.SignUp(context.Background(), services.SignUpInput{Name: "Ada", Email: email, Password: "secret123"})
	require.NoError(t, err)
	return id
}

func TestSignIn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("valid credentials record the login", func(t *testing.T) {
		t.Parallel()
		svc, store := newServices(t)
		created := signUp(t, svc, "ada@example.com")

		id, err := svc.SignIn(ctx, services.SignInInput{Email: "ada@example.com", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, created.ID, id.ID)

		u, err := store.UserByID(ctx, id.ID)
		require.NoError(t, err)
		assert.NotNil(t, u.LastLoginAt)
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		t.Parallel()
		svc, _ := newServices(t)
		signUp(t, svc, "ada@example.com")

		_, errUnknown := svc.SignIn(ctx, services.SignInInput{Email: "nobody@example.com", Password: "secret123"})
		_, errWrong := svc.SignIn(ctx, services.SignInInput{Email: "ada@example.com", Password: "wrong-pass"})

		msgUnknown, ok := services.SignInMessage(errUnknown)
		require.True(t, ok)
		msgWrong, ok := services.SignInMessage(errWrong)
		require.True(t, ok)
		assert.Equal(t, services.MsgInvalidCredentials, msgUnknown)
		assert.Equal(t, msgUnknown, msgWrong)
	})

	t.Run("deactivated account", func(t *testing.T) {
		t.Parallel()
		svc, store := newServices(t)
		id := signUp(t, svc, "ada@example.com")
		store.SetActive(id.ID, false)

		_, err := svc.SignIn(ctx, services.SignInInput{Email: "ada@example.com", Password: "secret123"})
		require.ErrorIs(t, err, auth.ErrInactive)
		msg, _ := services.SignInMessage(err)
		assert.Equal(t, services.MsgDeactivated, msg)

		_, err = svc.IdentityByID(ctx, id.ID)
		require.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("throttled after repeated failures", func(t *testing.T) {
		t.Parallel()
		mem := cache.NewMemoryCounter()
		t.Cleanup(func() { _ = mem.Close() })
		svc, _ := newServices(t, services.WithThrottle(auth.NewThrottle(mem, 2, time.Minute)))
		signUp(t, svc, "ada@example.com")

		for range 2 {
			_, err := svc.SignIn(ctx, services.SignInInput{Email: "ada@example.com", Password: "wrong-pass"})
			require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		}
		_, err := svc.SignIn(ctx, services.SignInInput{Email: "ada@example.com", Password: "secret123"})
		require.ErrorIs(t, err, auth.ErrThrottled)
	})

	t.Run("infrastructure errors are not user messages", func(t *testing.T) {
		t.Parallel()
		_, ok := services.SignInMessage(errors.New("db down"))
		assert.False(t, ok)
	})
}

func TestSignUp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("assigns the default role and runs the hook", func(t *testing.T) {
		t.Parallel()
		var hooked string
		svc, store := newServices(t, services.WithSignUpHook(func(_ context.Context, tx pgx.Tx, u repository.User) error {
			assert.Nil(t, tx)
			hooked = u.Email
			return nil
		}))
		id := signUp(t, svc, "ada@example.com")
		assert.Equal(t, "ada@example.com", hooked)

		roles, err := store.UserRoles(ctx, id.ID)
		require.NoError(t, err)
		require.Len(t, roles, 1)
		assert.Equal(t, services.DefaultRole, roles[0].Name)
	})

	t.Run("hook failure rolls back the user", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("queue down")
		svc, store := newServices(t, services.WithSignUpHook(func(context.Context, pgx.Tx, repository.User) error {
			return boom
		}))
		_, err := svc.SignUp(ctx, services.SignUpInput{Name: "Ada", Email: "ada@example.com", Password: "secret123"})
		require.ErrorIs(t, err, boom)

		_, err = store.UserByEmail(ctx, "ada@example.com")
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("taken email is a field error", func(t *testing.T) {
		t.Parallel()
		svc, _ := newServices(t)
		signUp(t, svc, "ada@example.com")

		_, err := svc.SignUp(ctx, services.SignUpInput{Name: "Ada", Email: "ada@example.com", Password: "secret123"})
		ve := validator.ExtractValidationErrors(err)
		require.NotNil(t, ve)
		assert.Equal(t, services.MsgEmailTaken, ve.Get("email"))
	})
}

func TestRoles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newServices(t)

	read, err := store.CreatePermission(ctx, repository.PermissionParams{Resource: "users", Action: "read", DisplayName: "Read users"})
	require.NoError(t, err)
	update, err := store.CreatePermission(ctx, repository.PermissionParams{Resource: "users", Action: "update", DisplayName: "Update users"})
	require.NoError(t, err)
	view, err := store.CreatePermission(ctx, repository.PermissionParams{Resource: "roles", Action: "read", DisplayName: "Read roles"})
	require.NoError(t, err)

	editor, err := svc.CreateRole(ctx, services.RoleInput{Name: "editor", DisplayName: "Editor"})
	require.NoError(t, err)

	t.Run("duplicate name writes nothing", func(t *testing.T) {
		before, err := svc.Roles(ctx)
		require.NoError(t, err)

		_, err = svc.CreateRole(ctx, services.RoleInput{Name: "editor", DisplayName: "Other"})
		ve := validator.ExtractValidationErrors(err)
		require.NotNil(t, ve)
		assert.Equal(t, services.MsgRoleExists, ve.Get("name"))

		after, err := svc.Roles(ctx)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("update replaces permissions", func(t *testing.T) {
		err := svc.UpdateRole(ctx, editor.ID, services.RoleInput{
			Name:          "editor",
			DisplayName:   "Editors",
			PermissionIDs: []string{read.ID, view.ID},
		})
		require.NoError(t, err)
		require.NoError(t, svc.UpdateRole(ctx, editor.ID, services.RoleInput{
			Name:          "editor",
			DisplayName:   "Editors",
			PermissionIDs: []string{update.ID},
		}))

		detail, err := svc.Role(ctx, editor.ID)
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{update.ID: true}, detail.Assigned)
		assert.Equal(t, "Editors", detail.Role.DisplayName)
		require.Len(t, detail.Groups, 2)
		assert.Equal(t, "roles", detail.Groups[0].Resource)
		assert.Len(t, detail.Groups[1].Permissions, 2)
	})

	t.Run("rename onto a taken name", func(t *testing.T) {
		err := svc.UpdateRole(ctx, editor.ID, services.RoleInput{Name: services.DefaultRole, DisplayName: "Editors"})
		ve := validator.ExtractValidationErrors(err)
		require.NotNil(t, ve)
		assert.Equal(t, services.MsgRoleExists, ve.Get("name"))
	})

	t.Run("system role keeps name and cannot be deleted", func(t *testing.T) {
		role, err := store.RoleByName(ctx, services.DefaultRole)
		require.NoError(t, err)

		require.NoError(t, svc.UpdateRole(ctx, role.ID, services.RoleInput{Name: "renamed", DisplayName: "Members"}))
		got, err := store.RoleByID(ctx, role.ID)
		require.NoError(t, err)
		assert.Equal(t, services.DefaultRole, got.Name)
		assert.Equal(t, "Members", got.DisplayName)

		deleted, err := svc.DeleteRole(ctx, role.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := svc.Role(ctx, "00000000-0000-0000-0000-000000000000")
		require.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestPermissions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newServices(t)

	p, err := svc.CreatePermission(ctx, services.PermissionInput{Resource: "reports", Action: "export", DisplayName: "Export reports"})
	require.NoError(t, err)
	assert.Equal(t, "reports:export", p.Name)

	_, err = svc.CreatePermission(ctx, services.PermissionInput{Resource: "reports", Action: "export", DisplayName: "Again"})
	ve := validator.ExtractValidationErrors(err)
	require.NotNil(t, ve)
	assert.Equal(t, `Permission "reports:export" already exists`, ve.Get(services.FormErrorKey))

	require.NoError(t, svc.DeletePermission(ctx, p.ID))
	require.NoError(t, svc.DeletePermission(ctx, p.ID), "deleting twice is not an error")
}

func TestCan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newServices(t)
	id := signUp(t, svc, "ada@example.com")

	manage, err := store.CreatePermission(ctx, repository.PermissionParams{Resource: "roles", Action: "manage", DisplayName: "Manage roles"})
	require.NoError(t, err)
	role, err := store.RoleByName(ctx, services.DefaultRole)
	require.NoError(t, err)

	ok, err := svc.Can(ctx, id, "roles:update")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.GrantPermissions(ctx, role.ID, []string{manage.ID}))

	tests := []struct {
		perm string
		want bool
	}{
		{"roles:update", true},
		{"roles:manage", true},
		{"users:update", false},
	}
	for _, tt := range tests {
		ok, err := svc.Can(ctx, id, tt.perm)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, tt.perm)
	}

	ok, err = svc.Can(ctx, auth.Identity{ID: "x", IsSuperadmin: true}, "anything:at-all")
	require.NoError(t, err)
	assert.True(t, ok)
}

// fileHeader builds a real multipart file header by parsing a request body.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("avatar", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	_, fh, err := req.FormFile("avatar")
	require.NoError(t, err)
	return fh
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func TestUpdateProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("owner updates name and avatar", func(t *testing.T) {
		t.Parallel()
		svc, _ := newServices(t, services.WithStorage(storage.NewMemory("https://cdn.example.com")))
		id := signUp(t, svc, "ada@example.com")

		u, err := svc.UpdateProfile(ctx, id, id.ID, services.ProfileInput{Name: "Ada L."}, fileHeader(t, "me.png", pngHeader))
		require.NoError(t, err)
		assert.Equal(t, "Ada L.", u.Name)
		assert.True(t, strings.HasPrefix(u.AvatarURL, "https://cdn.example.com/avatars/"))
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		t.Parallel()
		svc, _ := newServices(t)
		owner := signUp(t, svc, "ada@example.com")
		other := signUp(t, svc, "bob@example.com")

		_, err := svc.UpdateProfile(ctx, other, owner.ID, services.ProfileInput{Name: "Hacked"}, nil)
		require.ErrorIs(t, err, services.ErrForbidden)

		admin := auth.Identity{ID: "root", IsSuperadmin: true}
		u, err := svc.UpdateProfile(ctx, admin, owner.ID, services.ProfileInput{Name: "Renamed"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", u.Name)
	})

	t.Run("non-image avatar is a field error", func(t *testing.T) {
		t.Parallel()
		svc, _ := newServices(t, services.WithStorage(storage.NewMemory("https://cdn.example.com")))
		id := signUp(t, svc, "ada@example.com")

		_, err := svc.UpdateProfile(ctx, id, id.ID, services.ProfileInput{Name: "Ada"}, fileHeader(t, "me.png", []byte("plain text, not an image")))
		ve := validator.ExtractValidationErrors(err)
		require.NotNil(t, ve)
		assert.True(t, ve.Has("avatar"))
	})

	t.Run("uploads without storage", func(t *testing.T) {
		t.Parallel()
		svc, _ := newServices(t)
		id := signUp(t, svc, "ada@example.com")

		_, err := svc.UpdateProfile(ctx, id, id.ID, services.ProfileInput{Name: "Ada"}, fileHeader(t, "me.png", pngHeader))
		assert.True(t, validator.ExtractValidationErrors(err).Has("avatar"))
	})
}

func TestFrom(t *testing.T) {
	t.Parallel()
	_, err := services.From(context.Background())
	require.ErrorIs(t, err, services.ErrNotInjected)

	svc, _ := newServices(t)
	got, err := services.From(services.WithContext(context.Background(), svc))
	require.NoError(t, err)
	assert.Same(t, svc, got)
}
