package accounts

import "strings"

// Config enumerates every tunable of the accounts module. An explicit
// instance is passed to each component at construction; there is no
// process-wide settings object.
type Config struct {
	// ActivationDays is the window, in days, a user has to activate a
	// new account before the key expires.
	ActivationDays int

	// ActivationRequired creates accounts inactive until the activation
	// key is used. When false, accounts are active right away.
	ActivationRequired bool

	// ResendOnSignup re-sends the activation email when someone signs up
	// with an email that already belongs to an unactivated account,
	// instead of creating a duplicate.
	ResendOnSignup bool

	// ActivationNotify enables a one-time reminder email for accounts
	// that are about to lose their activation window.
	ActivationNotify bool

	// ActivationNotifyDays is how many days before the window closes the
	// reminder becomes due.
	ActivationNotifyDays int

	// ForbiddenUsernames are rejected case-insensitively at signup.
	ForbiddenUsernames []string

	// WithoutUsernames drops the username from signup input; one is
	// generated instead and presentation falls back to the email.
	WithoutUsernames bool

	// RequireTos demands an accepted terms-of-service box at signup.
	RequireTos bool

	// DefaultPrivacy is applied to new profiles.
	DefaultPrivacy PrivacyLevel

	// MugshotGravatar enables the Gravatar fallback when no mugshot
	// has been uploaded.
	MugshotGravatar bool

	// MugshotDefault is passed to Gravatar as the default-image
	// parameter. A custom URL (anything that is not one of the reserved
	// Gravatar keywords) is also used as the no-Gravatar fallback.
	MugshotDefault string

	// MugshotSize is the requested avatar size in pixels.
	MugshotSize int

	// MugshotPath prefixes hashed mugshot upload paths.
	MugshotPath string

	// MugshotSecure requests Gravatar over https.
	MugshotSecure bool

	// RememberMeDays is how long a remember-me session should last.
	// Session issuance itself belongs to the host.
	RememberMeDays int

	// FromEmail is the sender address for activation and confirmation
	// emails.
	FromEmail string

	// SiteDomain and Protocol feed absolute links in outgoing emails
	// when no SiteProvider is configured.
	SiteDomain string
	Protocol   string
}

// DefaultConfig returns the stock settings: a 7 day activation window,
// activation required, resend on duplicate signup, and Gravatar
// fallbacks enabled.
func DefaultConfig() Config {
	return Config{
		ActivationDays:       7,
		ActivationRequired:   true,
		ResendOnSignup:       true,
		ActivationNotify:     true,
		ActivationNotifyDays: 5,
		ForbiddenUsernames:   []string{"signup", "signout", "signin", "activate", "me", "password"},
		DefaultPrivacy:       PrivacyRegistered,
		MugshotGravatar:      true,
		MugshotDefault:       "identicon",
		MugshotSize:          80,
		MugshotPath:          "mugshots/",
		MugshotSecure:        true,
		RememberMeDays:       14,
		Protocol:             "https",
	}
}

// UsernameForbidden checks the configured forbidden list, case-insensitive.
func (c Config) UsernameForbidden(username string) bool {
	username = strings.ToLower(username)
	for _, forbidden := range c.ForbiddenUsernames {
		if strings.ToLower(forbidden) == username {
			return true
		}
	}
	return false
}
