package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccountControllerDefaults(t *testing.T) {
	repo, cleanup := setupAccountsRepo(t)
	defer cleanup()

	c := NewAccountController(WithControllerRepo(repo))

	assert.Equal(t, "/accounts/signup", c.Routes.Signup)
	assert.Equal(t, "/accounts/activate", c.Routes.Activate)
	assert.Equal(t, "/accounts/email", c.Routes.EmailChange)
	assert.Equal(t, "/accounts/confirm-email", c.Routes.EmailConfirm)
	assert.Equal(t, "accounts/signup", c.Views.Signup)
	assert.NotNil(t, c.Logger)
	assert.NotNil(t, c.ErrorHandler)
}

func TestNewAccountControllerRequiresRepo(t *testing.T) {
	assert.Panics(t, func() {
		NewAccountController()
	})
}

func TestFormatValidationErrorToMap(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Empty(t, FormatValidationErrorToMap(nil))
	})

	t.Run("ozzo field errors", func(t *testing.T) {
		err := SignupPayload{Username: "janedoe"}.Validate()
		require.Error(t, err)

		out := FormatValidationErrorToMap(err)
		assert.Contains(t, out, "email")
		assert.Contains(t, out, "password")
		assert.NotContains(t, out, "username")
	})

	t.Run("taxonomy errors keyed by text code", func(t *testing.T) {
		out := FormatValidationErrorToMap(ErrUsernameTaken)
		assert.Equal(t, ErrUsernameTaken.Message, out[TextCodeUsernameTaken])
	})

	t.Run("plain errors fall back to form", func(t *testing.T) {
		out := FormatValidationErrorToMap(assert.AnError)
		assert.Equal(t, assert.AnError.Error(), out["form"])
	})
}
