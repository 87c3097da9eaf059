package service

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// AdminAuthenticator checks credentials against the single configured admin.
type AdminAuthenticator struct {
	email        string
	passwordHash []byte
}

func NewAdminAuthenticator(email, passwordHash string) *AdminAuthenticator {
	return &AdminAuthenticator{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: []byte(passwordHash),
	}
}

func (a *AdminAuthenticator) Authenticate(email, password string) error {
	// compare even on an email mismatch so both failures cost the same
	hashErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))

	if strings.ToLower(strings.TrimSpace(email)) != a.email || hashErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}
