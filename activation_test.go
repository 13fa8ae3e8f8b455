package accounts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActivationStatus(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ActivationDays = 7

	joined := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	key := "0123456789abcdef0123456789abcdef01234567"

	tests := []struct {
		name     string
		signup   *Signup
		user     *User
		now      time.Time
		expected ActivationState
	}{
		{
			name:     "pending inside window",
			signup:   &Signup{ActivationKey: key},
			user:     &User{DateJoined: &joined},
			now:      joined.Add(24 * time.Hour),
			expected: ActivationPending,
		},
		{
			name:     "pending just before expiration",
			signup:   &Signup{ActivationKey: key},
			user:     &User{DateJoined: &joined},
			now:      joined.Add(7*24*time.Hour - time.Second),
			expected: ActivationPending,
		},
		{
			name:     "expired at the boundary",
			signup:   &Signup{ActivationKey: key},
			user:     &User{DateJoined: &joined},
			now:      joined.Add(7 * 24 * time.Hour),
			expected: ActivationExpired,
		},
		{
			name:     "expired long after",
			signup:   &Signup{ActivationKey: key},
			user:     &User{DateJoined: &joined},
			now:      joined.Add(30 * 24 * time.Hour),
			expected: ActivationExpired,
		},
		{
			name:     "sentinel wins over elapsed time",
			signup:   &Signup{ActivationKey: ActivationCompleted},
			user:     &User{DateJoined: &joined},
			now:      joined.Add(365 * 24 * time.Hour),
			expected: ActivationActive,
		},
		{
			name:     "falls back to signup created at",
			signup:   &Signup{ActivationKey: key, CreatedAt: &joined},
			user:     &User{},
			now:      joined.Add(8 * 24 * time.Hour),
			expected: ActivationExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ActivationStatus(tt.signup, tt.user, tt.now, cfg)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestActivationStateString(t *testing.T) {
	assert.Equal(t, "pending", ActivationPending.String())
	assert.Equal(t, "active", ActivationActive.String())
	assert.Equal(t, "expired", ActivationExpired.String())
	assert.Equal(t, "unknown", ActivationState(99).String())
}

func TestActivationKeyExpired(t *testing.T) {
	cfg := DefaultConfig()
	joined := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	key := "0123456789abcdef0123456789abcdef01234567"

	user := &User{DateJoined: &joined}

	pending := &Signup{ActivationKey: key}
	assert.False(t, ActivationKeyExpired(pending, user, joined.Add(time.Hour), cfg))
	assert.True(t, ActivationKeyExpired(pending, user, joined.Add(8*24*time.Hour), cfg))

	// the legacy helper also reports true for consumed keys
	used := &Signup{ActivationKey: ActivationCompleted}
	assert.True(t, ActivationKeyExpired(used, user, joined.Add(time.Hour), cfg))
}
