package conf

import (
	"fmt"
	"strings"
)

// Credential is an API user.
// Pass is either plain text or an "argon2:" prefixed argon2 encoded hash.
type Credential struct {
	User string `json:"user" yaml:"user"`
	Pass string `json:"-" yaml:"pass"`
}

// IsHashed checks whether the password is an argon2 hash.
func (c Credential) IsHashed() bool {
	return strings.HasPrefix(c.Pass, "argon2:")
}

func (c Credential) validate() error {
	if c.User == "" {
		return fmt.Errorf("empty API user")
	}
	if c.Pass == "" {
		return fmt.Errorf("API user '%s' has no password", c.User)
	}
	if c.IsHashed() && !strings.HasPrefix(c.Pass, "argon2:$argon2") {
		return fmt.Errorf("API user '%s': invalid argon2 hash", c.User)
	}
	return nil
}
