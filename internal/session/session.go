// Package session keeps the admin session in a signed cookie. The cookie
// value is an HS256 JWT, so the server holds no session state.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const CookieName = "__session"

var ErrNoSession = errors.New("no valid session")

type ToastType string

const ToastSuccess ToastType = "success"

type Toast struct {
	Message string    `json:"message"`
	Type    ToastType `json:"type"`
}

type Session struct {
	Email string `json:"email,omitempty"`
	Toast *Toast `json:"toast,omitempty"`
}

func (s *Session) IsAuthenticated() bool {
	return s.Email != ""
}

func (s *Session) SetToast(message string, t ToastType) {
	s.Toast = &Toast{Message: message, Type: t}
}

// PopToast returns the pending toast, if any, and clears it.
func (s *Session) PopToast() *Toast {
	toast := s.Toast
	s.Toast = nil
	return toast
}

type claims struct {
	Session
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	maxAge time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(secret string, maxAge time.Duration, secure bool) *Manager {
	return &Manager{
		secret: []byte(secret),
		maxAge: maxAge,
		secure: secure,
		now:    time.Now,
	}
}

// Get never returns nil. A missing, tampered or expired cookie yields an
// empty session.
func (m *Manager) Get(r *http.Request) *Session {
	s, err := m.Load(r)
	if err != nil {
		return &Session{}
	}
	return s
}

func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, ErrNoSession
	}

	var c claims
	_, err = jwt.ParseWithClaims(cookie.Value, &c, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSession, err)
	}

	s := c.Session
	return &s, nil
}

// Commit signs s into a fresh cookie with a renewed expiry.
func (m *Manager) Commit(s *Session) (*http.Cookie, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Session: *s,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}

	return m.cookie(signed, int(m.maxAge.Seconds())), nil
}

// Destroy returns a cookie that removes the session from the browser.
func (m *Manager) Destroy() *http.Cookie {
	return m.cookie("", -1)
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
