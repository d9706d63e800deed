package validator_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/pkg/validator"
)

type signIn struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

type role struct {
	Name        string `json:"name" validate:"required,max=50,slug"`
	DisplayName string `json:"displayName" validate:"required,min=1,max=100"`
	Description string `json:"description" label:"Summary" validate:"max=500"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	t.Run("valid input", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, validator.ValidateStruct(&signIn{Email: "a@example.com", Password: "secret"}))
	})

	t.Run("field keys and messages", func(t *testing.T) {
		t.Parallel()
		err := validator.ValidateStruct(&signIn{Email: "nope", Password: "123"})
		require.True(t, validator.IsValidationError(err))

		ve := validator.ExtractValidationErrors(err)
		assert.Equal(t, "Please enter a valid email address", ve.Get("email"))
		assert.Equal(t, "Password must be at least 6 characters", ve.Get("password"))
	})

	t.Run("required", func(t *testing.T) {
		t.Parallel()
		ve := validator.ExtractValidationErrors(validator.ValidateStruct(&signIn{Email: "a@example.com"}))
		assert.Equal(t, "Password is required", ve.Get("password"))
		assert.False(t, ve.Has("email"))
	})

	t.Run("slug rule and labels", func(t *testing.T) {
		t.Parallel()
		long := make([]byte, 501)
		for i := range long {
			long[i] = 'x'
		}
		ve := validator.ExtractValidationErrors(validator.ValidateStruct(&role{
			Name:        "Bad Name",
			Description: string(long),
		}))
		require.NotNil(t, ve)
		assert.Contains(t, ve.Get("name"), "must start with a letter")
		assert.Equal(t, "Display name is required", ve.Get("displayName"))
		assert.Equal(t, "Summary must be at most 500 characters", ve.Get("description"))
		assert.Len(t, ve.Map(), 3)
	})

	t.Run("slug accepts kebab and snake", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"admin", "content-editor", "ops_team2"} {
			require.NoError(t, validator.ValidateStruct(&role{Name: name, DisplayName: "X"}), name)
		}
		for _, name := range []string{"1admin", "-x", "Admin", "a b"} {
			require.Error(t, validator.ValidateStruct(&role{Name: name, DisplayName: "X"}), name)
		}
	})

	t.Run("non struct input", func(t *testing.T) {
		t.Parallel()
		err := validator.ValidateStruct(42)
		require.Error(t, err)
		assert.False(t, validator.IsValidationError(err))
	})
}

func TestVar(t *testing.T) {
	t.Parallel()

	require.NoError(t, validator.Var("resource", "Resource", "users", "required,max=50,slug"))

	err := validator.Var("resource", "Resource", "", "required")
	ve := validator.ExtractValidationErrors(err)
	assert.Equal(t, "Resource is required", ve.Get("resource"))
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	var ve validator.ValidationErrors
	ve = ve.Add("name", "taken").Add("name", "too short").Add("email", "bad")

	assert.Equal(t, "taken", ve.Get("name"))
	assert.Equal(t, []string{"taken", "too short"}, ve.Map()["name"])
	assert.Contains(t, ve.Error(), "email: bad")

	wrapped := errors.Join(errors.New("ctx"), ve)
	assert.True(t, validator.IsValidationError(wrapped))
	assert.Nil(t, validator.ExtractValidationErrors(errors.New("plain")))
}
