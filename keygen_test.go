package accounts

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	assert.Len(t, key, KeyLength)

	_, err = hex.DecodeString(key)
	assert.NoError(t, err, "key should be hex encoded")

	assert.NotEqual(t, ActivationCompleted, key)

	other, err := GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestGenerateUsername(t *testing.T) {
	username, err := GenerateUsername(12)
	require.NoError(t, err)
	assert.Len(t, username, 12)

	for _, r := range username {
		assert.Contains(t, usernameAlphabet, string(r))
	}
}

func TestGenerateUsernameDefaultsLength(t *testing.T) {
	username, err := GenerateUsername(0)
	require.NoError(t, err)
	assert.Len(t, username, 12)
}
