// Package auth contains the API authentication.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/matthewhartstonge/argon2"

	"github.com/ctenhank/viscactl/internal/conf"
)

// ErrInvalidCredentials is returned when user or password do not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Manager checks API credentials.
type Manager struct {
	Users []conf.Credential
}

// Enabled returns whether credentials are required.
func (m *Manager) Enabled() bool {
	return len(m.Users) != 0
}

// Authenticate checks a user and a password.
func (m *Manager) Authenticate(user string, pass string) error {
	if !m.Enabled() {
		return nil
	}

	for _, u := range m.Users {
		if u.User != user {
			continue
		}

		if u.IsHashed() {
			ok, err := argon2.VerifyEncoded([]byte(pass), []byte(strings.TrimPrefix(u.Pass, "argon2:")))
			if err == nil && ok {
				return nil
			}
		} else if subtle.ConstantTimeCompare([]byte(u.Pass), []byte(pass)) == 1 {
			return nil
		}
	}

	return ErrInvalidCredentials
}

// HashPassword returns the "argon2:" form of a password, suitable for apiUsers.
func HashPassword(pass string) (string, error) {
	cfg := argon2.DefaultConfig()
	encoded, err := cfg.HashEncoded([]byte(pass))
	if err != nil {
		return "", err
	}
	return "argon2:" + string(encoded), nil
}
