package views_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/app/repository"
	"github.com/dmitrymomot/mwm/app/services"
	"github.com/dmitrymomot/mwm/app/views"
	"github.com/dmitrymomot/mwm/pkg/validator"
)

func render(t *testing.T, c mwm.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestSignInForm(t *testing.T) {
	t.Parallel()

	t.Run("defaults return url to root", func(t *testing.T) {
		t.Parallel()
		html := render(t, views.SignInForm(services.SignInInput{}, nil, ""))
		assert.Contains(t, html, `id="sign-in-form"`)
		assert.Contains(t, html, `hx-post="/identity/sign-in"`)
		assert.Contains(t, html, `hx-target="#sign-in-form"`)
		assert.Contains(t, html, `name="returnUrl" value="/"`)
		assert.Contains(t, html, `href="/identity/sign-up"`)
		assert.NotContains(t, html, `role="alert"`)
	})

	t.Run("keeps email, drops password and shows errors", func(t *testing.T) {
		t.Parallel()
		in := services.SignInInput{Email: "ada@example.com", Password: "secret123", ReturnURL: "/cms"}
		errs := validator.ValidationErrors{}.Add("password", "Password is too short")
		html := render(t, views.SignInForm(in, errs, services.MsgInvalidCredentials))
		assert.Contains(t, html, `value="ada@example.com"`)
		assert.NotContains(t, html, "secret123")
		assert.Contains(t, html, "Password is too short")
		assert.Contains(t, html, "Invalid email or password")
		assert.Contains(t, html, `name="returnUrl" value="/cms"`)
	})
}

func TestEscaping(t *testing.T) {
	t.Parallel()
	roles := []repository.Role{{ID: "r1", Name: "evil", DisplayName: `<script>alert("x")</script>`}}
	html := render(t, views.RolesPage(roles, "", services.RoleInput{}, nil))
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRolesPage(t *testing.T) {
	t.Parallel()
	roles := []repository.Role{
		{ID: "a", Name: "admin", DisplayName: "Administrator", IsSystem: true, PermissionCount: 20, UserCount: 1},
		{ID: "b", Name: "editor", DisplayName: "Editor"},
	}
	errs := validator.ValidationErrors{}.Add("name", services.MsgRoleExists)
	html := render(t, views.RolesPage(roles, "", services.RoleInput{Name: "editor"}, errs))

	assert.Contains(t, html, `href="/admin/roles/a"`)
	assert.Contains(t, html, `<td>20</td>`)
	assert.Contains(t, html, services.MsgRoleExists)
	assert.Contains(t, html, views.MsgFixErrors)
	assert.Contains(t, html, `action="/admin/roles/b/delete"`)
	assert.NotContains(t, html, `action="/admin/roles/a/delete"`, "system roles have no delete button")
}

func TestRoleEditPage(t *testing.T) {
	t.Parallel()
	perms := []repository.Permission{
		{ID: "p1", Name: "users:read", Resource: "users", Action: "read", DisplayName: "Read users"},
		{ID: "p2", Name: "users:update", Resource: "users", Action: "update", DisplayName: "Update users"},
	}
	detail := services.RoleDetail{
		Role:   repository.Role{ID: "r1", Name: "admin", DisplayName: "Administrator", IsSystem: true},
		Groups: services.GroupPermissions(perms),
	}
	in := services.RoleInput{Name: "admin", DisplayName: "Administrator"}
	html := render(t, views.RoleEditPage(detail, in, map[string]bool{"p2": true}, nil))

	assert.Contains(t, html, `<input type="hidden" name="name" value="admin">`)
	assert.Contains(t, html, `name="name" type="text" value="admin" required disabled`)
	assert.Contains(t, html, `value="p1">`)
	assert.Contains(t, html, `value="p2" checked>`)
	assert.NotContains(t, html, "/delete")
}

func TestFormMessage(t *testing.T) {
	t.Parallel()
	assert.Empty(t, views.FormMessage(nil))
	assert.Equal(t, views.MsgFixErrors, views.FormMessage(validator.ValidationErrors{}.Add("name", "x")))
	formErr := validator.ValidationErrors{}.Add(services.FormErrorKey, `Permission "a:b" already exists`)
	assert.Equal(t, `Permission "a:b" already exists`, views.FormMessage(formErr))
}

func TestErrorPage(t *testing.T) {
	t.Parallel()
	html := render(t, views.ErrorPage(404, "Page not found", "req-1"))
	assert.Contains(t, html, "404 Not Found")
	assert.Contains(t, html, "Page not found")
	assert.Contains(t, html, "req-1")
}

func TestCMSPage(t *testing.T) {
	t.Parallel()
	assert.Contains(t, render(t, views.CMSPage()), "Welcome to the CMS Home Page!")
}

func TestUsersPage(t *testing.T) {
	t.Parallel()
	users := []repository.User{
		{ID: "u1", Name: "Ada", Email: "ada@example.com", AvatarURL: "javascript:alert(1)", IsActive: true},
		{ID: "u2", Name: `Bob "the" Builder`, Email: "bob@example.com", AvatarURL: "/media/bob.png"},
	}

	t.Run("sanitizes avatar urls", func(t *testing.T) {
		t.Parallel()
		html := render(t, views.UsersPage(users, "u1", false))
		assert.NotContains(t, html, "javascript:")
		assert.Contains(t, html, `src="about:invalid#TemplFailedSanitizationURL"`)
		assert.Contains(t, html, `src="/media/bob.png"`)
	})

	t.Run("escapes names and links only editable rows", func(t *testing.T) {
		t.Parallel()
		html := render(t, views.UsersPage(users, "u1", false))
		assert.Contains(t, html, "Bob &#34;the&#34; Builder")
		assert.Contains(t, html, `href="/users/u1/edit"`)
		assert.NotContains(t, html, `href="/users/u2/edit"`)
		assert.Contains(t, html, "deactivated")
	})

	t.Run("superadmin edits everyone", func(t *testing.T) {
		t.Parallel()
		html := render(t, views.UsersPage(users, "u1", true))
		assert.Contains(t, html, `href="/users/u2/edit"`)
	})
}

func TestInput(t *testing.T) {
	t.Parallel()

	t.Run("password value is never echoed", func(t *testing.T) {
		t.Parallel()
		html := render(t, views.Input(views.Field{Label: "Password", Name: "password", Type: "password", Value: "hunter2"}))
		assert.NotContains(t, html, "hunter2")
		assert.Contains(t, html, `type="password"`)
	})

	t.Run("error links the message", func(t *testing.T) {
		t.Parallel()
		html := render(t, views.Input(views.Field{Label: "Name", Name: "name", Error: "Name is required", Hint: "Shown to others"}))
		assert.Contains(t, html, `aria-invalid="true" aria-describedby="name-error"`)
		assert.Contains(t, html, `<p class="field-error" id="name-error">Name is required</p>`)
		assert.Contains(t, html, `<small class="hint">Shown to others</small>`)
	})

	t.Run("attribute values are escaped", func(t *testing.T) {
		t.Parallel()
		html := render(t, views.Input(views.Field{Label: "Name", Name: "name", Value: `"><script>`}))
		assert.Contains(t, html, `value="&#34;&gt;&lt;script&gt;"`)
	})
}
