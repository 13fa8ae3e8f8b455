package accounts

import (
	"context"
	"fmt"
)

// Logger is the minimal logging surface the module needs
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Mail is a rendered outbound message.
type Mail struct {
	Subject string
	Body    string
	From    string
	To      []string
}

// Mailer is the outbound mail collaborator. Implementations must be
// synchronous; delivery failures are surfaced to the caller.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// MailerFunc adapts a function to the Mailer interface.
type MailerFunc func(ctx context.Context, mail Mail) error

// Send implements Mailer.
func (f MailerFunc) Send(ctx context.Context, mail Mail) error {
	if f == nil {
		return nil
	}
	return f(ctx, mail)
}

// TemplateRenderer renders a named template with a context map.
type TemplateRenderer interface {
	Render(templateID string, ctx map[string]any) (string, error)
}

// Site describes the deployment used to build absolute links in emails.
type Site struct {
	Domain   string
	Protocol string
}

// SiteProvider resolves the current site. Hosts serving multiple
// domains can swap in their own resolver.
type SiteProvider interface {
	CurrentSite() Site
}

// StaticSite is a SiteProvider for single-domain deployments.
type StaticSite struct {
	Domain   string
	Protocol string
}

// CurrentSite implements SiteProvider.
func (s StaticSite) CurrentSite() Site {
	protocol := s.Protocol
	if protocol == "" {
		protocol = "https"
	}
	return Site{Domain: s.Domain, Protocol: protocol}
}

// PermissionChecker is the external permission collaborator. It covers
// explicit grants, profile owners, and administrators.
type PermissionChecker interface {
	PermissionsOf(ctx context.Context, viewer Viewer, resource string) ([]string, error)
	Grant(ctx context.Context, viewer Viewer, permission, resource string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
