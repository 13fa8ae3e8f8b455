package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// ActivateAccountMessage carries the activation key from the clicked
// link.
type ActivateAccountMessage struct {
	Key        string `json:"key"`
	OnResponse func(resp *ActivateAccountResponse)
}

func (e ActivateAccountMessage) Type() string { return "account.activate" }

// ActivateAccountResponse reports the activated account.
type ActivateAccountResponse struct {
	User   *User
	Signup *Signup
}

// ActivateAccountHandler consumes an activation key: exactly once per
// key, inside the configured activation window.
type ActivateAccountHandler struct {
	repo   RepositoryManager
	sink   ActivitySink
	logger Logger
	config Config
	now    func() time.Time
}

// NewActivateAccountHandler builds the activation handler.
func NewActivateAccountHandler(repo RepositoryManager, cfg Config, opts ...ActivateAccountOption) *ActivateAccountHandler {
	h := &ActivateAccountHandler{
		repo:   repo,
		logger: defLogger{},
		config: cfg,
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	return h
}

// ActivateAccountOption customizes the handler.
type ActivateAccountOption func(*ActivateAccountHandler)

// WithActivationClock injects a custom clock (useful for tests).
func WithActivationClock(clock func() time.Time) ActivateAccountOption {
	return func(h *ActivateAccountHandler) {
		if clock != nil {
			h.now = clock
		}
	}
}

// WithActivationActivitySink sets the audit sink for activation events.
func WithActivationActivitySink(sink ActivitySink) ActivateAccountOption {
	return func(h *ActivateAccountHandler) {
		h.sink = sink
	}
}

func (h *ActivateAccountHandler) Execute(ctx context.Context, event ActivateAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account activation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ActivateAccountHandler) execute(ctx context.Context, event ActivateAccountMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	resp := &ActivateAccountResponse{}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		signup, err := h.repo.Signups().GetByActivationKeyTx(ctx, tx, event.Key)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidActivationKey
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up activation key")
		}

		now := h.now()
		switch ActivationStatus(signup, signup.User, now, h.config) {
		case ActivationExpired:
			return ErrActivationExpired
		case ActivationActive:
			// unreachable: the sentinel never matches a lookup
			return ErrInvalidActivationKey
		}

		signup.MarkActivated(now)
		if _, err := h.repo.Signups().UpdateTx(ctx, tx, signup, repository.UpdateByID(signup.ID.String())); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist activation")
		}

		user, err := h.repo.Users().SetActiveTx(ctx, tx, *signup.UserID, true)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark user active")
		}

		resp.User = user
		resp.Signup = signup
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account activation failed")
	}

	recordActivity(ctx, h.sink, h.logger, ActivityEvent{
		EventType: ActivityEventAccountActivated,
		UserID:    resp.User.ID,
		Email:     resp.User.Email,
	})

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
