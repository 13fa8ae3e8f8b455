package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// ViewProfilePermission is granted to the owner of a freshly created
// profile so the visibility rule covers owners through the same
// permission path as admins.
const ViewProfilePermission = "view_profile"

// SignupMessage carries validated-or-raw signup input. SendEmail
// controls the activation email; Active overrides the configured
// activation policy for deployments that auto activate.
type SignupMessage struct {
	Payload   SignupPayload `json:"payload"`
	SendEmail bool          `json:"send_email"`
	Active    *bool         `json:"active,omitempty"`
	UseHashid bool
	OnResponse func(resp *SignupResponse)
}

func (e SignupMessage) Type() string { return "account.signup" }

// SignupResponse reports the created records, or the signup that got a
// fresh activation email on the duplicate-signup resend path.
type SignupResponse struct {
	User    *User
	Signup  *Signup
	Profile *Profile
	Resent  bool
}

// SignupHandler creates the account identity, its signup record, and
// its profile in one transaction, then sends the activation email.
type SignupHandler struct {
	repo        RepositoryManager
	validator   *SignupValidator
	mail        *MailSender
	permissions PermissionChecker
	sink        ActivitySink
	logger      Logger
	config      Config
}

// NewSignupHandler wires the signup flow. mail may be nil when
// SendEmail is never used; permissions may be nil to skip owner grants.
func NewSignupHandler(repo RepositoryManager, mail *MailSender, permissions PermissionChecker, cfg Config, opts ...SignupHandlerOption) *SignupHandler {
	h := &SignupHandler{
		repo:        repo,
		validator:   NewSignupValidator(repo, cfg),
		mail:        mail,
		permissions: permissions,
		logger:      defLogger{},
		config:      cfg,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	return h
}

// SignupHandlerOption customizes the handler.
type SignupHandlerOption func(*SignupHandler)

// WithSignupActivitySink sets the audit sink for signup events.
func WithSignupActivitySink(sink ActivitySink) SignupHandlerOption {
	return func(h *SignupHandler) {
		h.sink = sink
	}
}

// WithSignupLogger overrides the handler logger.
func WithSignupLogger(logger Logger) SignupHandlerOption {
	return func(h *SignupHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func (h *SignupHandler) Execute(ctx context.Context, event SignupMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during signup",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SignupHandler) execute(ctx context.Context, event SignupMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	resp := &SignupResponse{}

	validated, err := h.validator.Validate(ctx, event.Payload)
	if err != nil {
		if validated != nil && validated.ResendTo != nil && event.SendEmail {
			return h.resend(ctx, event, validated.ResendTo, resp)
		}
		return err
	}

	hash, err := HashPassword(validated.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	key, err := GenerateKey()
	if err != nil {
		return err
	}

	user := &User{
		Username:     validated.Username,
		Email:        validated.Email,
		PasswordHash: hash,
		IsActive:     h.accountActive(event),
	}

	if event.UseHashid {
		if id, err := hashid.NewUUID(validated.Email); err == nil {
			user.ID = id
		}
	}

	signup := &Signup{ActivationKey: key}
	profile := &Profile{Privacy: h.config.DefaultPrivacy}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		signup.UserID = &user.ID
		if signup, err = h.repo.Signups().CreateTx(ctx, tx, signup); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create signup record")
		}

		profile.UserID = &user.ID
		if profile, err = h.repo.Profiles().CreateTx(ctx, tx, profile); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create profile")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "signup transaction failed")
	}

	if h.permissions != nil {
		owner := AuthenticatedViewer(user.ID)
		if err := h.permissions.Grant(ctx, owner, ViewProfilePermission, profile.PermissionKey()); err != nil {
			h.logger.Error("failed to grant view_profile to owner", "error", err)
		}
	}

	recordActivity(ctx, h.sink, h.logger, ActivityEvent{
		EventType: ActivityEventSignupCreated,
		UserID:    user.ID,
		Email:     user.Email,
	})

	resp.User = user
	resp.Signup = signup
	resp.Profile = profile

	if event.SendEmail {
		if err := h.sendActivation(ctx, user, signup); err != nil {
			// the account is committed; surface the delivery failure
			h.respond(event, resp)
			return err
		}
	}

	h.respond(event, resp)
	return nil
}

// resend handles a duplicate signup against a pending account when the
// resend policy is enabled: no new records, just a fresh email.
func (h *SignupHandler) resend(ctx context.Context, event SignupMessage, signup *Signup, resp *SignupResponse) error {
	user := signup.User
	if user == nil {
		var err error
		if user, err = h.repo.Users().GetByID(ctx, signup.UserID.String()); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user for activation resend")
		}
	}

	if err := h.sendActivation(ctx, user, signup); err != nil {
		return err
	}

	resp.User = user
	resp.Signup = signup
	resp.Resent = true
	h.respond(event, resp)

	return ErrEmailPendingActivation
}

func (h *SignupHandler) sendActivation(ctx context.Context, user *User, signup *Signup) error {
	if h.mail == nil {
		return ErrMailDelivery.WithMetadata(map[string]any{
			"reason": "no mail sender configured",
		})
	}

	if err := h.mail.SendActivationEmail(ctx, user, signup); err != nil {
		return err
	}

	recordActivity(ctx, h.sink, h.logger, ActivityEvent{
		EventType: ActivityEventActivationEmailSent,
		UserID:    user.ID,
		Email:     user.Email,
	})

	return nil
}

func (h *SignupHandler) accountActive(event SignupMessage) bool {
	if event.Active != nil {
		return *event.Active
	}
	return !h.config.ActivationRequired
}

func (h *SignupHandler) respond(event SignupMessage, resp *SignupResponse) {
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}
}
