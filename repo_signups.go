package accounts

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Signups stores activation and email confirmation state, one record
// per user.
type Signups interface {
	repository.Repository[*Signup]

	GetByActivationKey(ctx context.Context, key string) (*Signup, error)
	GetByActivationKeyTx(ctx context.Context, tx bun.IDB, key string) (*Signup, error)
	GetByConfirmationKey(ctx context.Context, key string) (*Signup, error)
	GetByConfirmationKeyTx(ctx context.Context, tx bun.IDB, key string) (*Signup, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Signup, error)
	GetByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*Signup, error)

	Create(ctx context.Context, record *Signup, criteria ...repository.InsertCriteria) (*Signup, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Signup, criteria ...repository.InsertCriteria) (*Signup, error)

	MarkNotificationSent(ctx context.Context, id uuid.UUID) (*Signup, error)
	MarkNotificationSentTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Signup, error)
}

type signups struct {
	repository.Repository[*Signup]
	db *bun.DB
}

var (
	_ Signups                        = (*signups)(nil)
	_ repository.Repository[*Signup] = (*signups)(nil)
)

func NewSignupsRepository(db *bun.DB) Signups {
	repo := repository.NewRepository[*Signup](db, repository.ModelHandlers[*Signup]{
		NewRecord: func() *Signup { return &Signup{} },
		GetID: func(s *Signup) uuid.UUID {
			if s == nil {
				return uuid.Nil
			}
			return s.ID
		},
		SetID: func(s *Signup, id uuid.UUID) {
			if s != nil {
				s.ID = id
			}
		},
	})

	return &signups{
		Repository: repo,
		db:         db,
	}
}

func (a *signups) GetByActivationKey(ctx context.Context, key string) (*Signup, error) {
	return a.GetByActivationKeyTx(ctx, a.db, key)
}

// GetByActivationKeyTx looks up a signup by exact key match. The
// sentinel is rejected before touching the database so a consumed key
// can never be replayed.
func (a *signups) GetByActivationKeyTx(ctx context.Context, tx bun.IDB, key string) (*Signup, error) {
	if key == "" || key == ActivationCompleted {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"activation_key": key,
			})
	}
	return a.getByColumnTx(ctx, tx, "activation_key", key)
}

func (a *signups) GetByConfirmationKey(ctx context.Context, key string) (*Signup, error) {
	return a.GetByConfirmationKeyTx(ctx, a.db, key)
}

func (a *signups) GetByConfirmationKeyTx(ctx context.Context, tx bun.IDB, key string) (*Signup, error) {
	if key == "" {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"email_confirmation_key": key,
			})
	}
	return a.getByColumnTx(ctx, tx, "email_confirmation_key", key)
}

func (a *signups) GetByUserID(ctx context.Context, userID uuid.UUID) (*Signup, error) {
	return a.GetByUserIDTx(ctx, a.db, userID)
}

func (a *signups) GetByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*Signup, error) {
	return a.getByColumnTx(ctx, tx, "user_id", userID.String())
}

func (a *signups) getByColumnTx(ctx context.Context, tx bun.IDB, column, value string) (*Signup, error) {
	record := &Signup{}
	err := tx.NewSelect().
		Model(record).
		Relation("User").
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					column: value,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *signups) MarkNotificationSent(ctx context.Context, id uuid.UUID) (*Signup, error) {
	return a.MarkNotificationSentTx(ctx, a.db, id)
}

// MarkNotificationSentTx records that the activation reminder went out,
// so ActivationReminderDue stops reporting the signup as due.
func (a *signups) MarkNotificationSentTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Signup, error) {
	_, err := tx.NewRaw(`
		UPDATE "account_signups" AS "sgn"
		SET "activation_notification_sent" = ?
		WHERE ("sgn".id = ?);
	`, true, id).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return a.Repository.GetByIDTx(ctx, tx, id.String())
}

func (a *signups) Create(ctx context.Context, record *Signup, criteria ...repository.InsertCriteria) (*Signup, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *signups) CreateTx(ctx context.Context, tx bun.IDB, record *Signup, criteria ...repository.InsertCriteria) (*Signup, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}
