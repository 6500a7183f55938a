// Package session models opaque server-side sessions. The secret is the only
// artifact that crosses into client storage; everything else is re-derived
// per request.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a secret does not resolve to a live session.
var ErrNotFound = errors.New("session not found")

const secretBytes = 32

type Session struct {
	Secret    string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// New creates a session with a freshly generated secret.
func New(userID int64, ttl time.Duration) (*Session, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}

	now := time.Now()
	return &Session{
		Secret:    base64.RawURLEncoding.EncodeToString(buf),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// Store defines the external session store (create/query/delete).
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, secret string) (*Session, error)
	Delete(ctx context.Context, secret string) error
}
