package accounts

import (
	"context"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

var usernameRE = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

// SignupPayload is the signup form payload. Username may be empty when
// the deployment runs without usernames; one is generated at save time.
type SignupPayload struct {
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
	Tos             bool   `form:"tos" json:"tos"`
}

// Validate runs the stateless field rules. Uniqueness and policy checks
// happen in SignupValidator, which needs the repositories.
func (r SignupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Length(1, 30), validation.Match(usernameRE).
			Error("username must contain only letters, numbers, dots and underscores")),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return ErrPasswordMismatch
		}
		return nil
	}
}

// ValidatedSignup is the outcome of a successful validation, ready to
// be consumed by the signup handler.
type ValidatedSignup struct {
	Username string
	Email    string
	Password string

	// ResendTo is set instead of the other fields when the email
	// belongs to a pending signup and the resend policy is on; the
	// caller should re-issue that signup's activation email.
	ResendTo *Signup
}

// SignupValidator checks a candidate username/email/password triple
// against uniqueness and policy rules. Validation is pure with respect
// to the stores: nothing is created here.
type SignupValidator struct {
	repo   RepositoryManager
	config Config
}

// NewSignupValidator builds a validator bound to the given stores and
// configuration.
func NewSignupValidator(repo RepositoryManager, cfg Config) *SignupValidator {
	return &SignupValidator{repo: repo, config: cfg}
}

// Validate applies field rules, username policy, and uniqueness checks.
// Failures come back as the structured errors of the package taxonomy
// so callers can map them to form fields.
func (v *SignupValidator) Validate(ctx context.Context, payload SignupPayload) (*ValidatedSignup, error) {
	if v.config.RequireTos && !payload.Tos {
		return nil, ErrTermsNotAccepted
	}

	if v.config.WithoutUsernames {
		username, err := v.generateUsername(ctx)
		if err != nil {
			return nil, err
		}
		payload.Username = username
	} else if payload.Username == "" {
		return nil, ErrInvalidInput.WithMetadata(map[string]any{
			"field": "username",
		})
	}

	if err := payload.Validate(); err != nil {
		if IsValidationError(err) {
			return nil, err
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "signup payload failed validation")
	}

	if err := v.checkUsername(ctx, payload.Username); err != nil {
		return nil, err
	}

	if resend, err := v.checkEmail(ctx, payload.Email); err != nil {
		return nil, err
	} else if resend != nil {
		return &ValidatedSignup{ResendTo: resend}, ErrEmailPendingActivation
	}

	return &ValidatedSignup{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	}, nil
}

func (v *SignupValidator) checkUsername(ctx context.Context, username string) error {
	if v.config.UsernameForbidden(username) {
		return ErrUsernameForbidden
	}

	_, err := v.repo.Users().FindByUsername(ctx, username)
	if err == nil {
		return ErrUsernameTaken
	}
	if !repository.IsRecordNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username uniqueness")
	}

	return nil
}

// checkEmail returns the pending signup to resend to, when applicable.
func (v *SignupValidator) checkEmail(ctx context.Context, email string) (*Signup, error) {
	user, err := v.repo.Users().FindByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
	}

	signup, err := v.repo.Signups().GetByUserID(ctx, user.ID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			// identity exists without a signup record; treat as activated
			return nil, ErrEmailAlreadyActivated
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load signup for email check")
	}

	if signup.Activated() {
		return nil, ErrEmailAlreadyActivated
	}

	if v.config.ResendOnSignup {
		return signup, nil
	}

	return nil, ErrEmailPendingActivation
}

func (v *SignupValidator) generateUsername(ctx context.Context) (string, error) {
	for {
		username, err := GenerateUsername(12)
		if err != nil {
			return "", err
		}

		_, err = v.repo.Users().FindByUsername(ctx, username)
		if repository.IsRecordNotFound(err) {
			return username, nil
		}
		if err != nil {
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check generated username")
		}
		// collision, try again
	}
}

// NormalizeEmail lowercases and trims an email address for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
