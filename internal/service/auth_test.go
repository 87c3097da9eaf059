package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAdminAuthenticator(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	a := NewAdminAuthenticator(" Admin@Example.com ", string(hash))

	assert.NoError(t, a.Authenticate("admin@example.com", "correct horse"))
	assert.NoError(t, a.Authenticate("ADMIN@example.com", "correct horse"))
	assert.ErrorIs(t, a.Authenticate("admin@example.com", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, a.Authenticate("other@example.com", "correct horse"), ErrInvalidCredentials)
	assert.ErrorIs(t, a.Authenticate("", ""), ErrInvalidCredentials)
}

func TestAdminAuthenticator_MalformedHash(t *testing.T) {
	a := NewAdminAuthenticator("admin@example.com", "not-a-bcrypt-hash")
	assert.ErrorIs(t, a.Authenticate("admin@example.com", "anything"), ErrInvalidCredentials)
}
