// Package session holds the application session: the logged-in user, the
// bearer token used against the ERP, and its lifetime. It is created at
// login, loaded per request and deleted at logout.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session: not found")

type User struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	ProfileImage string `json:"profile_image,omitempty"`
}

type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// New returns a session with a fresh id valid for ttl.
func New(token string, u User, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{ID: uuid.NewString(), Token: token, User: u, CreatedAt: now, ExpiresAt: now.Add(ttl)}
}

// Expired reports whether the session is past its expiry at t.
func (s *Session) Expired(t time.Time) bool { return !s.ExpiresAt.IsZero() && !t.Before(s.ExpiresAt) }

// Store persists sessions by id.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type ctxKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by WithSession.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
