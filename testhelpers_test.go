package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

const (
	sqliteCreateUsers = `CREATE TABLE users (
    id TEXT NOT NULL PRIMARY KEY,
    username TEXT NOT NULL,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL,
    password_hash TEXT NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT FALSE,
    date_joined TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_login TIMESTAMP NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP NULL
);`

	sqliteCreateSignups = `CREATE TABLE account_signups (
    id TEXT NOT NULL PRIMARY KEY,
    user_id TEXT NOT NULL,
    activation_key TEXT NOT NULL DEFAULT '',
    last_active TIMESTAMP NULL,
    activation_notification_sent BOOLEAN NOT NULL DEFAULT FALSE,
    email_unconfirmed TEXT NOT NULL DEFAULT '',
    email_confirmation_key TEXT NOT NULL DEFAULT '',
    email_confirmation_key_created TIMESTAMP NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
    CONSTRAINT uq_account_signups_user UNIQUE (user_id)
);`

	sqliteCreateProfiles = `CREATE TABLE account_profiles (
    id TEXT NOT NULL PRIMARY KEY,
    user_id TEXT NOT NULL,
    privacy TEXT NOT NULL DEFAULT 'registered',
    mugshot TEXT NOT NULL DEFAULT '',
    language TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
    CONSTRAINT uq_account_profiles_user UNIQUE (user_id)
);`
)

func setupAccountsRepo(t *testing.T) (RepositoryManager, func()) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	for _, stmt := range []string{sqliteCreateUsers, sqliteCreateSignups, sqliteCreateProfiles} {
		_, err = bunDB.Exec(stmt)
		require.NoError(t, err)
	}

	cleanup := func() {
		_ = bunDB.Close()
		_ = db.Close()
	}

	return NewRepositoryManager(bunDB, DefaultConfig()), cleanup
}

// capturingMailer records outgoing mail, or fails every send when fail
// is set.
type capturingMailer struct {
	mails []Mail
	fail  bool
}

func (m *capturingMailer) Send(ctx context.Context, mail Mail) error {
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.mails = append(m.mails, mail)
	return nil
}

type capturingSink struct {
	events []ActivityEvent
}

func (s *capturingSink) Record(ctx context.Context, event ActivityEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *capturingSink) types() []ActivityEventType {
	out := make([]ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.FromEmail = "noreply@example.com"
	cfg.SiteDomain = "example.com"
	return cfg
}

func newTestMailSender(mailer Mailer, cfg Config) *MailSender {
	return NewMailSender(mailer, nil, nil, cfg)
}

func mustSignup(t *testing.T, repo RepositoryManager, mail *MailSender, cfg Config, username, email string, sendEmail bool) *SignupResponse {
	t.Helper()

	var res *SignupResponse
	handler := NewSignupHandler(repo, mail, nil, cfg)
	err := handler.Execute(context.Background(), SignupMessage{
		Payload: SignupPayload{
			Username:        username,
			Email:           email,
			Password:        "secret123",
			ConfirmPassword: "secret123",
			Tos:             true,
		},
		SendEmail: sendEmail,
		OnResponse: func(resp *SignupResponse) {
			res = resp
		},
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotNil(t, res.User)
	require.NotNil(t, res.Signup)

	return res
}
