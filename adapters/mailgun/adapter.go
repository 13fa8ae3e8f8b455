package mailgunadapter

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/mailgun/mailgun-go/v5"

	accounts "github.com/goliatone/go-accounts"
)

// Option customizes Mailer behavior.
type Option func(*Mailer)

// Mailer delivers accounts.Mail through the Mailgun API.
type Mailer struct {
	client *mailgun.Client
	domain string
}

// NewMailer builds a Mailgun backed accounts.Mailer for the given
// sending domain.
func NewMailer(apiKey, domain string, opts ...Option) *Mailer {
	m := &Mailer{
		client: mailgun.NewMailgun(apiKey),
		domain: domain,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// WithAPIBase points the client at a non default API endpoint, e.g.
// the EU region or a local test double.
func WithAPIBase(url string) Option {
	return func(m *Mailer) {
		if m == nil || m.client == nil {
			return
		}
		m.client.SetAPIBase(url)
	}
}

// Send implements accounts.Mailer.
func (m *Mailer) Send(ctx context.Context, mail accounts.Mail) error {
	if m == nil || m.client == nil {
		return goerrors.New("mailgun client not configured", goerrors.CategoryInternal)
	}

	msg := mailgun.NewMessage(m.domain, mail.From, mail.Subject, mail.Body, mail.To...)

	if _, err := m.client.Send(ctx, msg); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "mailgun send failed").
			WithMetadata(map[string]any{
				"domain": m.domain,
			})
	}

	return nil
}

var _ accounts.Mailer = (*Mailer)(nil)
