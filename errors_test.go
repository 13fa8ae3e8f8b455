package accounts

import (
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		err      *errors.Error
		textCode string
		category errors.Category
		code     int
	}{
		{ErrUsernameTaken, TextCodeUsernameTaken, errors.CategoryValidation, errors.CodeConflict},
		{ErrUsernameForbidden, TextCodeUsernameForbidden, errors.CategoryValidation, errors.CodeBadRequest},
		{ErrEmailAlreadyActivated, TextCodeEmailActivated, errors.CategoryValidation, errors.CodeConflict},
		{ErrEmailPendingActivation, TextCodeEmailPending, errors.CategoryValidation, errors.CodeConflict},
		{ErrPasswordMismatch, TextCodePasswordMismatch, errors.CategoryValidation, errors.CodeBadRequest},
		{ErrTermsNotAccepted, TextCodeTermsNotAccepted, errors.CategoryValidation, errors.CodeBadRequest},
		{ErrInvalidActivationKey, TextCodeInvalidKey, errors.CategoryBadInput, errors.CodeBadRequest},
		{ErrActivationExpired, TextCodeActivationExpired, errors.CategoryBadInput, errors.CodeBadRequest},
		{ErrEmailUnchanged, TextCodeEmailUnchanged, errors.CategoryValidation, errors.CodeBadRequest},
		{ErrEmailInUse, TextCodeEmailInUse, errors.CategoryValidation, errors.CodeConflict},
		{ErrInvalidConfirmationKey, TextCodeInvalidConfirmation, errors.CategoryBadInput, errors.CodeBadRequest},
		{ErrMailDelivery, TextCodeMailDelivery, errors.CategoryInternal, errors.CodeInternal},
		{ErrInvalidInput, TextCodeInvalidInput, errors.CategoryBadInput, errors.CodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.textCode, func(t *testing.T) {
			assert.Equal(t, tt.textCode, tt.err.TextCode)
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(ErrUsernameTaken))
	assert.True(t, IsValidationError(ErrInvalidActivationKey))
	assert.False(t, IsValidationError(ErrMailDelivery))
	assert.False(t, IsValidationError(nil))
	assert.False(t, IsValidationError(assert.AnError))
}

func TestIsValidationErrorWrapped(t *testing.T) {
	wrapped := errors.Wrap(ErrUsernameTaken, errors.CategoryValidation, "signup failed")
	assert.True(t, IsValidationError(wrapped))
}
