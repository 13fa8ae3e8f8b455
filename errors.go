package accounts

import "github.com/goliatone/go-errors"

const (
	TextCodeUsernameTaken       = "username_taken"
	TextCodeUsernameForbidden   = "username_forbidden"
	TextCodeEmailActivated      = "email_already_activated"
	TextCodeEmailPending        = "email_pending_activation"
	TextCodePasswordMismatch    = "password_mismatch"
	TextCodeTermsNotAccepted    = "terms_not_accepted"
	TextCodeInvalidKey          = "invalid_activation_key"
	TextCodeActivationExpired   = "activation_expired"
	TextCodeEmailUnchanged      = "email_unchanged"
	TextCodeEmailInUse          = "email_in_use"
	TextCodeInvalidConfirmation = "invalid_confirmation_key"
	TextCodeMailDelivery        = "mail_delivery_failed"
	TextCodeInvalidInput        = "invalid_input"
)

// ErrUsernameTaken is returned when the username exists case-insensitively.
var ErrUsernameTaken = errors.New("this username is already taken", errors.CategoryValidation).
	WithTextCode(TextCodeUsernameTaken).
	WithCode(errors.CodeConflict)

// ErrUsernameForbidden is returned when the username is on the forbidden list.
var ErrUsernameForbidden = errors.New("this username is not allowed", errors.CategoryValidation).
	WithTextCode(TextCodeUsernameForbidden).
	WithCode(errors.CodeBadRequest)

// ErrEmailAlreadyActivated is returned when the email belongs to an
// activated account.
var ErrEmailAlreadyActivated = errors.New("this email address is already associated with an activated account", errors.CategoryValidation).
	WithTextCode(TextCodeEmailActivated).
	WithCode(errors.CodeConflict)

// ErrEmailPendingActivation is returned when the email belongs to an
// unactivated account. With resend-on-signup enabled the caller should
// resend the activation email instead of creating a duplicate.
var ErrEmailPendingActivation = errors.New("this email address is already associated with an account pending activation", errors.CategoryValidation).
	WithTextCode(TextCodeEmailPending).
	WithCode(errors.CodeConflict)

// ErrPasswordMismatch is returned when the two password fields differ.
var ErrPasswordMismatch = errors.New("the two password fields did not match", errors.CategoryValidation).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(errors.CodeBadRequest)

// ErrTermsNotAccepted is returned when the terms of service box is unchecked.
var ErrTermsNotAccepted = errors.New("you must agree to the terms to register", errors.CategoryValidation).
	WithTextCode(TextCodeTermsNotAccepted).
	WithCode(errors.CodeBadRequest)

// ErrInvalidActivationKey is returned when no signup matches the key.
// The sentinel never matches a lookup, so activation is exactly once.
var ErrInvalidActivationKey = errors.New("invalid activation key", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidKey).
	WithCode(errors.CodeBadRequest)

// ErrActivationExpired is returned when the activation window has passed.
var ErrActivationExpired = errors.New("activation key expired", errors.CategoryBadInput).
	WithTextCode(TextCodeActivationExpired).
	WithCode(errors.CodeBadRequest)

// ErrEmailUnchanged is returned when the new email equals the current one.
var ErrEmailUnchanged = errors.New("you are already known under this email", errors.CategoryValidation).
	WithTextCode(TextCodeEmailUnchanged).
	WithCode(errors.CodeBadRequest)

// ErrEmailInUse is returned when the new email belongs to another account.
var ErrEmailInUse = errors.New("this email is already in use, please supply a different email", errors.CategoryValidation).
	WithTextCode(TextCodeEmailInUse).
	WithCode(errors.CodeConflict)

// ErrInvalidConfirmationKey is returned when no signup matches the
// email confirmation key.
var ErrInvalidConfirmationKey = errors.New("invalid email confirmation key", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidConfirmation).
	WithCode(errors.CodeBadRequest)

// ErrMailDelivery is returned when the outbound mail collaborator fails.
// The record mutation that triggered the email has already committed;
// callers should offer a manual resend.
var ErrMailDelivery = errors.New("failed to deliver notification email", errors.CategoryInternal).
	WithTextCode(TextCodeMailDelivery).
	WithCode(errors.CodeInternal)

// ErrInvalidInput is returned at the boundary for malformed payloads.
var ErrInvalidInput = errors.New("invalid input", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidInput).
	WithCode(errors.CodeBadRequest)

// IsValidationError reports whether err carries a validation category,
// meaning the user should correct input and resubmit.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return false
	}
	return rich.Category == errors.CategoryValidation || rich.Category == errors.CategoryBadInput
}
