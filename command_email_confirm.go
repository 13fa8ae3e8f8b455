package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// ConfirmEmailChangeMessage carries the confirmation key sent to the
// new address.
type ConfirmEmailChangeMessage struct {
	Key        string `json:"key"`
	OnResponse func(resp *ConfirmEmailChangeResponse)
}

func (e ConfirmEmailChangeMessage) Type() string { return "account.email_confirm" }

// ConfirmEmailChangeResponse reports the updated account.
type ConfirmEmailChangeResponse struct {
	User   *User
	Signup *Signup
}

// ConfirmEmailChangeHandler promotes a pending email to the primary
// address. Confirmation keys never expire; the asymmetry with
// activation keys is deliberate. A pending address is inert until
// confirmed, and requesting another change rotates the key.
type ConfirmEmailChangeHandler struct {
	repo   RepositoryManager
	sink   ActivitySink
	logger Logger
}

// NewConfirmEmailChangeHandler builds the confirmation handler.
func NewConfirmEmailChangeHandler(repo RepositoryManager, opts ...EmailConfirmOption) *ConfirmEmailChangeHandler {
	h := &ConfirmEmailChangeHandler{
		repo:   repo,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	return h
}

// EmailConfirmOption customizes the handler.
type EmailConfirmOption func(*ConfirmEmailChangeHandler)

// WithEmailConfirmActivitySink sets the audit sink.
func WithEmailConfirmActivitySink(sink ActivitySink) EmailConfirmOption {
	return func(h *ConfirmEmailChangeHandler) {
		h.sink = sink
	}
}

func (h *ConfirmEmailChangeHandler) Execute(ctx context.Context, event ConfirmEmailChangeMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email confirmation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmEmailChangeHandler) execute(ctx context.Context, event ConfirmEmailChangeMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	resp := &ConfirmEmailChangeResponse{}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		signup, err := h.repo.Signups().GetByConfirmationKeyTx(ctx, tx, event.Key)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidConfirmationKey
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up confirmation key")
		}

		if !signup.EmailChangePending() {
			return ErrInvalidConfirmationKey
		}

		user, err := h.repo.Users().SetEmailTx(ctx, tx, *signup.UserID, signup.EmailUnconfirmed)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update primary email")
		}

		_, err = tx.NewRaw(`
			UPDATE "account_signups" AS "sgn"
			SET
				"email_unconfirmed" = '',
				"email_confirmation_key" = '',
				"email_confirmation_key_created" = NULL
			WHERE ("sgn".id = ?);
		`, signup.ID).Exec(ctx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to clear pending email change")
		}

		signup.EmailUnconfirmed = ""
		signup.EmailConfirmationKey = ""
		signup.EmailConfirmationKeyCreated = nil

		resp.User = user
		resp.Signup = signup
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "email confirmation failed")
	}

	recordActivity(ctx, h.sink, h.logger, ActivityEvent{
		EventType: ActivityEventEmailChangeConfirmed,
		UserID:    resp.User.ID,
		Email:     resp.User.Email,
	})

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
