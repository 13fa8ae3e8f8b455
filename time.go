package accounts

import (
	"fmt"
	"time"
)

// IsWithinThresholdPeriod checks if the given time is within the threshold
func IsWithinThresholdPeriod(t time.Time, pattern string) (bool, error) {
	duration, err := time.ParseDuration(pattern)
	if err != nil {
		return false, err
	}

	threshold := time.Now().Add(-duration)
	if t.After(threshold) {
		return true, nil
	}

	return false, nil
}

// IsOutsideThresholdPeriod is the negation of IsWithinThresholdPeriod
func IsOutsideThresholdPeriod(t time.Time, pattern string) (bool, error) {
	valid, err := IsWithinThresholdPeriod(t, pattern)
	if err != nil {
		return false, err
	}

	return !valid, nil
}

// ActivationReminderDue reports whether a one-time reminder email should
// go out for an account that has not activated yet. A reminder is due
// once the signup enters the final ActivationNotifyDays of its window,
// provided none was sent before. Callers that deliver the reminder
// should persist the fact with Signups.MarkNotificationSent so it only
// fires once.
func ActivationReminderDue(signup *Signup, user *User, cfg Config) (bool, error) {
	if !cfg.ActivationNotify || signup == nil {
		return false, nil
	}

	if signup.NotificationSent || signup.Activated() {
		return false, nil
	}

	if ActivationStatus(signup, user, time.Now(), cfg) != ActivationPending {
		return false, nil
	}

	quietHours := (cfg.ActivationDays - cfg.ActivationNotifyDays) * 24
	if quietHours <= 0 {
		return true, nil
	}

	joined := activationReference(signup, user, time.Now())
	return IsOutsideThresholdPeriod(joined, fmt.Sprintf("%dh", quietHours))
}
