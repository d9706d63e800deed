package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mwm/app/access"
)

func TestSafeReturnURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/admin/roles?page=2", "/admin/roles?page=2"},
		{"https://evil.example.com", "/"},
		{"//evil.example.com/path", "/"},
		{`/\evil.example.com`, "/"},
		{"javascript:alert(1)", "/"},
		{"relative/path", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, access.SafeReturnURL(tt.in))
		})
	}
}

func TestSignInURL(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "/identity/sign-in", access.SignInURL("/"))
	assert.Equal(t, "/identity/sign-in?returnUrl=%2Fadmin%2Froles%3Fx%3D1", access.SignInURL("/admin/roles?x=1"))
}
