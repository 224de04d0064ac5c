package session

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/golang-jwt/jwt/v5"
)

func makeToken(t *testing.T, subject string, expires time.Time) string {
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Email: subject + "@example.com",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestFromToken(t *testing.T) {
	s, err := FromToken(makeToken(t, "alice", time.Now().Add(time.Hour)))
	assert.Equal(t, err, nil)
	assert.Equal(t, s.UserID, "alice")
	assert.Equal(t, s.Email, "alice@example.com")
	assert.Equal(t, s.Valid(), true)

	_, err = FromToken("")
	assert.Equal(t, errors.Is(err, ErrNoSession), true)

	_, err = FromToken("garbage")
	assert.NotEqual(t, err, nil)

	expired, err := FromToken(makeToken(t, "alice", time.Now().Add(-time.Hour)))
	assert.Equal(t, err, nil)
	assert.Equal(t, expired.Valid(), false)
}

func TestManagerLifecycle(t *testing.T) {
	started := 0
	closed := 0
	m := NewManager(func(ctx context.Context, s *Session) (io.Closer, error) {
		started++
		return closerFunc(func() error {
			closed++
			return nil
		}), nil
	})
	ctx := context.Background()

	_, err := m.Current()
	assert.Equal(t, err, ErrNoSession)

	s, err := m.Login(ctx, makeToken(t, "alice", time.Now().Add(time.Hour)))
	assert.Equal(t, err, nil)
	assert.Equal(t, s.UserID, "alice")
	assert.Equal(t, started, 1)

	// Logging in again tears down the previous scope first
	_, err = m.Login(ctx, makeToken(t, "bob", time.Now().Add(time.Hour)))
	assert.Equal(t, err, nil)
	assert.Equal(t, started, 2)
	assert.Equal(t, closed, 1)

	current, err := m.Current()
	assert.Equal(t, err, nil)
	assert.Equal(t, current.UserID, "bob")

	m.Logout()
	m.Logout()
	assert.Equal(t, closed, 2)

	_, err = m.Current()
	assert.Equal(t, err, ErrNoSession)
}

func TestManagerRejectsExpiredToken(t *testing.T) {
	m := NewManager(nil)
	_, err := m.Login(context.Background(), makeToken(t, "alice", time.Now().Add(-time.Minute)))
	assert.Equal(t, errors.Is(err, ErrNoSession), true)
}

func TestManagerStartFailure(t *testing.T) {
	m := NewManager(func(ctx context.Context, s *Session) (io.Closer, error) {
		return nil, errors.New("feed unavailable")
	})
	_, err := m.Login(context.Background(), makeToken(t, "alice", time.Now().Add(time.Hour)))
	assert.NotEqual(t, err, nil)

	_, err = m.Current()
	assert.Equal(t, err, ErrNoSession)
}
