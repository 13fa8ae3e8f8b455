package accounts

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/goliatone/go-errors"
)

// KeyLength is the length of activation and confirmation keys. Kept at
// 40 hex characters for compatibility with stored records.
const KeyLength = 40

const usernameAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateKey returns a 40 character hex token from a cryptographically
// secure source.
func GenerateKey() (string, error) {
	buf := make([]byte, KeyLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate random key")
	}
	return hex.EncodeToString(buf), nil
}

// GenerateUsername returns a random lowercase alphanumeric username of
// the given length. Callers check uniqueness and retry on collision.
func GenerateUsername(length int) (string, error) {
	if length <= 0 {
		length = 12
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate random username")
	}

	for i, b := range buf {
		buf[i] = usernameAlphabet[int(b)%len(usernameAlphabet)]
	}

	return string(buf), nil
}
