package accounts

import "time"

// ActivationState is the account's position in the activation lifecycle.
// A tagged value instead of a single expired/not-expired boolean, so
// callers cannot mistake "already activated" for "expired and invalid".
type ActivationState int

const (
	// ActivationPending means the key was issued and is still inside the
	// activation window.
	ActivationPending ActivationState = iota
	// ActivationActive means the key was consumed; the account stays
	// activated forever.
	ActivationActive
	// ActivationExpired means the window passed without activation.
	ActivationExpired
)

func (s ActivationState) String() string {
	switch s {
	case ActivationPending:
		return "pending"
	case ActivationActive:
		return "active"
	case ActivationExpired:
		return "expired"
	}
	return "unknown"
}

// ActivationStatus evaluates the signup against the activation window.
// Pure: no clock access, no side effects. The window starts at the
// user's join date and lasts cfg.ActivationDays; the sentinel key wins
// over any elapsed time.
func ActivationStatus(signup *Signup, user *User, now time.Time, cfg Config) ActivationState {
	if signup.Activated() {
		return ActivationActive
	}

	joined := activationReference(signup, user, now)
	expiration := joined.Add(time.Duration(cfg.ActivationDays) * 24 * time.Hour)
	if !now.Before(expiration) {
		return ActivationExpired
	}

	return ActivationPending
}

// activationReference picks the moment the activation window opened:
// the join date when known, the signup row's creation time otherwise.
func activationReference(signup *Signup, user *User, fallback time.Time) time.Time {
	if user != nil && user.DateJoined != nil {
		return *user.DateJoined
	}
	if signup != nil && signup.CreatedAt != nil {
		return *signup.CreatedAt
	}
	return fallback
}

// ActivationKeyExpired reproduces the legacy check: true both when the
// window has passed and when the key was already used. Prefer
// ActivationStatus; callers of this helper must pair it with a separate
// Activated check to tell the two cases apart.
func ActivationKeyExpired(signup *Signup, user *User, now time.Time, cfg Config) bool {
	return ActivationStatus(signup, user, now, cfg) != ActivationPending
}
