package accounts

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RequestEmailChangeMessage asks to move an account to a new email
// address. The change only takes effect after confirmation.
type RequestEmailChangeMessage struct {
	UserID     uuid.UUID `json:"user_id"`
	NewEmail   string    `json:"new_email"`
	OnResponse func(resp *RequestEmailChangeResponse)
}

func (e RequestEmailChangeMessage) Type() string { return "account.email_change" }

// Validate runs the stateless field rules.
func (e RequestEmailChangeMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.NewEmail, validation.Required, validation.Length(6, 100), is.Email),
	)
}

// RequestEmailChangeResponse reports the pending change.
type RequestEmailChangeResponse struct {
	Signup *Signup
	// MailFailed is set when the record mutation committed but one of
	// the notification emails could not be delivered.
	MailFailed bool
}

// RequestEmailChangeHandler stores the unconfirmed address plus a fresh
// confirmation key, then notifies both the current and the new address.
// The mail sends happen after commit: a transport failure surfaces as
// ErrMailDelivery but does not roll the pending change back.
type RequestEmailChangeHandler struct {
	repo   RepositoryManager
	mail   *MailSender
	sink   ActivitySink
	logger Logger
	now    func() time.Time
}

// NewRequestEmailChangeHandler builds the email change handler.
func NewRequestEmailChangeHandler(repo RepositoryManager, mail *MailSender, opts ...EmailChangeOption) *RequestEmailChangeHandler {
	h := &RequestEmailChangeHandler{
		repo:   repo,
		mail:   mail,
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	return h
}

// EmailChangeOption customizes the handler.
type EmailChangeOption func(*RequestEmailChangeHandler)

// WithEmailChangeClock injects a custom clock (useful for tests).
func WithEmailChangeClock(clock func() time.Time) EmailChangeOption {
	return func(h *RequestEmailChangeHandler) {
		if clock != nil {
			h.now = clock
		}
	}
}

// WithEmailChangeActivitySink sets the audit sink.
func WithEmailChangeActivitySink(sink ActivitySink) EmailChangeOption {
	return func(h *RequestEmailChangeHandler) {
		h.sink = sink
	}
}

func (h *RequestEmailChangeHandler) Execute(ctx context.Context, event RequestEmailChangeMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email change request",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RequestEmailChangeHandler) execute(ctx context.Context, event RequestEmailChangeMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid email change payload")
	}

	resp := &RequestEmailChangeResponse{}
	var user *User

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByIDTx(ctx, tx, event.UserID.String())
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return err
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user for email change")
		}

		if NormalizeEmail(event.NewEmail) == NormalizeEmail(user.Email) {
			return ErrEmailUnchanged
		}

		if other, err := h.repo.Users().FindByEmailTx(ctx, tx, event.NewEmail); err == nil && other.ID != user.ID {
			return ErrEmailInUse
		} else if err != nil && !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check new email uniqueness")
		}

		signup, err := h.repo.Signups().GetByUserIDTx(ctx, tx, user.ID)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load signup for email change")
		}

		key, err := GenerateKey()
		if err != nil {
			return err
		}

		now := h.now()
		signup.EmailUnconfirmed = event.NewEmail
		signup.EmailConfirmationKey = key
		signup.EmailConfirmationKeyCreated = &now

		if signup, err = h.repo.Signups().UpdateTx(ctx, tx, signup, repository.UpdateByID(signup.ID.String())); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist pending email change")
		}

		resp.Signup = signup
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "email change request failed")
	}

	recordActivity(ctx, h.sink, h.logger, ActivityEvent{
		EventType: ActivityEventEmailChangeRequested,
		UserID:    user.ID,
		Email:     user.Email,
		Metadata:  map[string]any{"new_email": event.NewEmail},
	})

	if h.mail != nil {
		if err := h.mail.SendConfirmationEmails(ctx, user, resp.Signup); err != nil {
			// committed already; report the delivery failure
			resp.MailFailed = true
			h.respond(event, resp)
			return err
		}
	}

	h.respond(event, resp)
	return nil
}

func (h *RequestEmailChangeHandler) respond(event RequestEmailChangeMessage, resp *RequestEmailChangeResponse) {
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}
}
