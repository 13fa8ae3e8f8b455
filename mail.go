package accounts

import (
	"context"
	"strings"

	"github.com/flosch/pongo2/v6"
	goerrors "github.com/goliatone/go-errors"
)

// Template identifiers used by the mail sender. Override any of them
// through a custom TemplateRenderer.
const (
	TemplateActivationSubject      = "emails/activation_subject"
	TemplateActivationMessage      = "emails/activation_message"
	TemplateConfirmationSubjectOld = "emails/confirmation_subject_old"
	TemplateConfirmationMessageOld = "emails/confirmation_message_old"
	TemplateConfirmationSubjectNew = "emails/confirmation_subject_new"
	TemplateConfirmationMessageNew = "emails/confirmation_message_new"
)

var defaultTemplates = map[string]string{
	TemplateActivationSubject: `Account activation on {{ site.Domain }}`,
	TemplateActivationMessage: `Thank you for signing up at {{ site.Domain }}.

To activate your account please follow this link within {{ activation_days }} days:

{{ protocol }}://{{ site.Domain }}/accounts/activate/{{ activation_key }}/
`,
	TemplateConfirmationSubjectOld: `Email change requested on {{ site.Domain }}`,
	TemplateConfirmationMessageOld: `You requested a change of your email address at {{ site.Domain }}.

A confirmation email has been sent to {{ new_email }}. Your address only
changes after that message is confirmed. If you did not request this,
please contact us.
`,
	TemplateConfirmationSubjectNew: `Confirm your new email on {{ site.Domain }}`,
	TemplateConfirmationMessageNew: `You requested to use this email address at {{ site.Domain }}.

To confirm, please follow this link:

{{ protocol }}://{{ site.Domain }}/accounts/confirm-email/{{ confirmation_key }}/
`,
}

// PongoRenderer renders mail templates with pongo2, the same engine the
// site views use. The zero value serves the built in templates; Source
// lets hosts replace any of them.
type PongoRenderer struct {
	// Source maps template ids to template bodies, taking precedence
	// over the defaults.
	Source map[string]string
}

// Render implements TemplateRenderer.
func (r PongoRenderer) Render(templateID string, ctx map[string]any) (string, error) {
	body, ok := r.Source[templateID]
	if !ok {
		body, ok = defaultTemplates[templateID]
	}
	if !ok {
		return "", goerrors.New("unknown mail template", goerrors.CategoryInternal).
			WithMetadata(map[string]any{"template": templateID})
	}

	tpl, err := pongo2.FromString(body)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to parse mail template")
	}

	out, err := tpl.Execute(pongo2.Context(ctx))
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render mail template")
	}

	return out, nil
}

// MailSender renders and dispatches the lifecycle emails.
type MailSender struct {
	mailer   Mailer
	renderer TemplateRenderer
	site     SiteProvider
	config   Config
}

// NewMailSender wires the outbound mail collaborator. A nil renderer
// falls back to the built in pongo2 templates; a nil site provider uses
// the configured static domain.
func NewMailSender(mailer Mailer, renderer TemplateRenderer, site SiteProvider, cfg Config) *MailSender {
	if renderer == nil {
		renderer = PongoRenderer{}
	}
	if site == nil {
		site = StaticSite{Domain: cfg.SiteDomain, Protocol: cfg.Protocol}
	}
	return &MailSender{
		mailer:   mailer,
		renderer: renderer,
		site:     site,
		config:   cfg,
	}
}

// SendActivationEmail sends the activation key to the account's current
// address. Transport failures surface as ErrMailDelivery.
func (m *MailSender) SendActivationEmail(ctx context.Context, user *User, signup *Signup) error {
	site := m.site.CurrentSite()
	tctx := map[string]any{
		"user":            user,
		"protocol":        site.Protocol,
		"activation_days": m.config.ActivationDays,
		"activation_key":  signup.ActivationKey,
		"site":            site,
	}

	return m.send(ctx, TemplateActivationSubject, TemplateActivationMessage, tctx, user.Email)
}

// SendConfirmationEmails sends two messages for a pending email change:
// a notice to the current address, without the key, and the
// confirmation key to the new address.
func (m *MailSender) SendConfirmationEmails(ctx context.Context, user *User, signup *Signup) error {
	site := m.site.CurrentSite()
	tctx := map[string]any{
		"user":      user,
		"new_email": signup.EmailUnconfirmed,
		"protocol":  site.Protocol,
		"site":      site,
	}

	// Current address first: it must never see the confirmation key.
	if err := m.send(ctx, TemplateConfirmationSubjectOld, TemplateConfirmationMessageOld, tctx, user.Email); err != nil {
		return err
	}

	tctx["confirmation_key"] = signup.EmailConfirmationKey
	return m.send(ctx, TemplateConfirmationSubjectNew, TemplateConfirmationMessageNew, tctx, signup.EmailUnconfirmed)
}

func (m *MailSender) send(ctx context.Context, subjectID, messageID string, tctx map[string]any, to string) error {
	subject, err := m.renderer.Render(subjectID, tctx)
	if err != nil {
		return err
	}

	body, err := m.renderer.Render(messageID, tctx)
	if err != nil {
		return err
	}

	mail := Mail{
		Subject: singleLine(subject),
		Body:    body,
		From:    m.config.FromEmail,
		To:      []string{to},
	}

	if m.mailer == nil {
		return ErrMailDelivery.WithMetadata(map[string]any{
			"reason": "no mailer configured",
		})
	}

	if err := m.mailer.Send(ctx, mail); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to deliver notification email").
			WithTextCode(TextCodeMailDelivery).
			WithMetadata(map[string]any{"to": to})
	}

	return nil
}

// singleLine strips newlines so a rendered subject cannot inject headers.
func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}
