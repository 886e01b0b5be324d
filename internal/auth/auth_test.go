package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ctenhank/viscactl/internal/conf"
)

func TestAuthDisabled(t *testing.T) {
	m := &Manager{}
	require.False(t, m.Enabled())
	require.NoError(t, m.Authenticate("", ""))
}

func TestAuthPlain(t *testing.T) {
	m := &Manager{Users: []conf.Credential{{User: "op", Pass: "secret"}}}
	require.NoError(t, m.Authenticate("op", "secret"))
	require.ErrorIs(t, m.Authenticate("op", "wrong"), ErrInvalidCredentials)
	require.ErrorIs(t, m.Authenticate("other", "secret"), ErrInvalidCredentials)
}

func TestAuthArgon2(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	require.True(t, conf.Credential{Pass: hash}.IsHashed())

	m := &Manager{Users: []conf.Credential{{User: "op", Pass: hash}}}
	require.NoError(t, m.Authenticate("op", "secret"))
	require.ErrorIs(t, m.Authenticate("op", "wrong"), ErrInvalidCredentials)
}
