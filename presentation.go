package accounts

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// gravatarReserved are the default-image keywords Gravatar interprets
// itself; anything else configured as MugshotDefault is treated as a
// custom fallback URL.
var gravatarReserved = []string{"404", "mm", "identicon", "monsterid", "wavatar"}

// DisplayName derives a user's display name: full name when either part
// is present, otherwise the username, or the email on deployments
// running without usernames. The result is trimmed.
func DisplayName(user *User, cfg Config) string {
	if user == nil {
		return ""
	}

	if user.FirstName != "" || user.LastName != "" {
		return user.FullName()
	}

	if cfg.WithoutUsernames {
		return strings.TrimSpace(user.Email)
	}

	return strings.TrimSpace(user.Username)
}

// GravatarURL builds the deterministic Gravatar URL for an email, keyed
// by the md5 of the lowercased trimmed address.
func GravatarURL(email string, size int, defaultImage string, secure bool) string {
	base := "http://www.gravatar.com/avatar/"
	if secure {
		base = "https://secure.gravatar.com/avatar/"
	}

	sum := md5.Sum([]byte(NormalizeEmail(email)))

	params := url.Values{}
	if size > 0 {
		params.Set("s", fmt.Sprintf("%d", size))
	}
	if defaultImage != "" {
		params.Set("d", defaultImage)
	}

	u := base + hex.EncodeToString(sum[:])
	if encoded := params.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// MugshotURL resolves a user's avatar with a deterministic fallback
// order: uploaded mugshot, Gravatar when enabled, then a custom default
// URL. Empty string means no avatar.
func MugshotURL(user *User, profile *Profile, cfg Config) string {
	if profile != nil && profile.Mugshot != "" {
		return profile.Mugshot
	}

	if cfg.MugshotGravatar {
		if user == nil {
			return ""
		}
		return GravatarURL(user.Email, cfg.MugshotSize, cfg.MugshotDefault, cfg.MugshotSecure)
	}

	if cfg.MugshotDefault != "" && !isGravatarReserved(cfg.MugshotDefault) {
		return cfg.MugshotDefault
	}

	return ""
}

// MugshotPath builds the storage path for an uploaded mugshot. The file
// name is hashed so the mugshot directory cannot be browsed by guessing
// usernames.
func MugshotPath(user *User, filename string, cfg Config) string {
	extension := ""
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		extension = strings.ToLower(filename[idx+1:])
	}

	sum := sha1.Sum([]byte(user.ID.String()))
	hash := hex.EncodeToString(sum[:])[:10]

	if extension == "" {
		return cfg.MugshotPath + hash
	}
	return cfg.MugshotPath + hash + "." + extension
}

func isGravatarReserved(value string) bool {
	for _, reserved := range gravatarReserved {
		if value == reserved {
			return true
		}
	}
	return false
}
