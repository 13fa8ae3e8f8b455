package accounts

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ActivationCompleted is the sentinel stored in Signup.ActivationKey once an
// account has been activated. A signup carrying this value is permanently
// considered activated, no matter how much time has passed.
const ActivationCompleted = "ALREADY_ACTIVATED"

// PrivacyLevel controls who can view a profile
type PrivacyLevel string

const (
	// PrivacyOpen makes the profile visible to everyone, anonymous included
	PrivacyOpen PrivacyLevel = "open"
	// PrivacyRegistered limits the profile to signed in users
	PrivacyRegistered PrivacyLevel = "registered"
	// PrivacyClosed hides the profile from everyone but owner/admins
	PrivacyClosed PrivacyLevel = "closed"
)

// User is the account identity record. The module only reads
// username/email/names/date joined and toggles IsActive; every other
// field belongs to the host application.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	FirstName     string     `bun:"first_name" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name" json:"last_name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"password_hash,omitempty"`
	IsActive      bool       `bun:"is_active" json:"is_active,omitempty"`
	DateJoined    *time.Time `bun:"date_joined,nullzero,default:current_timestamp" json:"date_joined,omitempty"`
	LastLogin     *time.Time `bun:"last_login,nullzero" json:"last_login,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Signup stores everything needed to take an account through activation
// and email confirmation. Exactly one exists per user, created in the
// same transaction as the user itself.
type Signup struct {
	bun.BaseModel `bun:"table:account_signups,alias:sgn"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        *uuid.UUID `bun:"user_id,notnull,unique" json:"user_id,omitempty"`
	User          *User      `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	ActivationKey string     `bun:"activation_key" json:"activation_key,omitempty"`
	LastActive    *time.Time `bun:"last_active,nullzero" json:"last_active,omitempty"`

	// NotificationSent tracks whether the user already got a reminder
	// about activating their account.
	NotificationSent bool `bun:"activation_notification_sent" json:"activation_notification_sent,omitempty"`

	// EmailUnconfirmed holds a requested new email address until the user
	// confirms it. Empty means no change is pending.
	EmailUnconfirmed            string     `bun:"email_unconfirmed" json:"email_unconfirmed,omitempty"`
	EmailConfirmationKey        string     `bun:"email_confirmation_key" json:"email_confirmation_key,omitempty"`
	EmailConfirmationKeyCreated *time.Time `bun:"email_confirmation_key_created,nullzero" json:"email_confirmation_key_created,omitempty"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Activated reports whether the activation key was already consumed.
func (s *Signup) Activated() bool {
	return s != nil && s.ActivationKey == ActivationCompleted
}

// EmailChangePending reports whether an email change awaits confirmation.
func (s *Signup) EmailChangePending() bool {
	return s != nil && s.EmailUnconfirmed != ""
}

// MarkActivated consumes the activation key and stamps last_active.
func (s *Signup) MarkActivated(now time.Time) {
	s.ActivationKey = ActivationCompleted
	s.LastActive = &now
}

// Profile carries the privacy setting and presentation extras for a user.
type Profile struct {
	bun.BaseModel `bun:"table:account_profiles,alias:prf"`
	ID            uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        *uuid.UUID   `bun:"user_id,notnull,unique" json:"user_id,omitempty"`
	User          *User        `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	Privacy       PrivacyLevel `bun:"privacy,notnull" json:"privacy,omitempty"`
	Mugshot       string       `bun:"mugshot" json:"mugshot,omitempty"`
	Language      string       `bun:"language" json:"language,omitempty"`
	CreatedAt     *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EnsurePrivacy defaults the privacy level when unset or unknown.
func (p *Profile) EnsurePrivacy(def PrivacyLevel) {
	switch p.Privacy {
	case PrivacyOpen, PrivacyRegistered, PrivacyClosed:
		return
	}
	if def == "" {
		def = PrivacyRegistered
	}
	p.Privacy = def
}

// PermissionKey identifies a profile as a permission target.
func (p *Profile) PermissionKey() string {
	return "profile:" + p.ID.String()
}

// FullName joins first and last name, trimming the result. Concatenation
// order is fixed; locale aware ordering is a future concern.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
