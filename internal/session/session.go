// Package session holds the signed-in user's identity and access token and
// the login/logout lifecycle of everything scoped to them.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession is returned when an operation needs a signed-in user
var ErrNoSession = errors.New("no active session")

// Session is the signed-in user. It is immutable once created.
type Session struct {
	UserID      string
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// FromToken builds a session from an access token. The token is not
// verified here; the backend verifies it on every request.
func FromToken(accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, ErrNoSession
	}

	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("access token has no subject")
	}

	s := &Session{
		UserID:      claims.Subject,
		Email:       claims.Email,
		AccessToken: accessToken,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Valid reports whether the session can be used for requests
func (s *Session) Valid() bool {
	if s == nil || s.UserID == "" || s.AccessToken == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || time.Now().Before(s.ExpiresAt)
}

// StartFunc starts the work scoped to a session. The returned closer is
// closed on logout.
type StartFunc func(ctx context.Context, s *Session) (io.Closer, error)

// Manager owns the current session and the resources started for it
type Manager struct {
	mu      sync.Mutex
	current *Session
	scope   io.Closer
	start   StartFunc
}

// NewManager creates a manager that runs start after each login. start may be nil.
func NewManager(start StartFunc) *Manager {
	return &Manager{start: start}
}

// Login replaces any current session with one for accessToken
func (m *Manager) Login(ctx context.Context, accessToken string) (*Session, error) {
	s, err := FromToken(accessToken)
	if err != nil {
		return nil, err
	}
	if !s.Valid() {
		return nil, fmt.Errorf("%w: access token expired", ErrNoSession)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.teardown()

	if m.start != nil {
		scope, err := m.start(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("failed to start session: %w", err)
		}
		m.scope = scope
	}
	m.current = s
	log.Printf("Signed in as %s", s.UserID)
	return s, nil
}

// Logout ends the current session and closes everything started for it.
// It is safe to call without a session.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardown()
}

// Current returns the active session or ErrNoSession
func (m *Manager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.current.Valid() {
		return nil, ErrNoSession
	}
	return m.current, nil
}

func (m *Manager) teardown() {
	if m.scope != nil {
		if err := m.scope.Close(); err != nil {
			log.Printf("Failed to close session scope: %v", err)
		}
		m.scope = nil
	}
	if m.current != nil {
		log.Printf("Signed out %s", m.current.UserID)
		m.current = nil
	}
}
