package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/devmarks/internal/domain"
)

// SessionStore persists live sessions.
type SessionStore interface {
	SaveSession(ctx context.Context, sess *domain.Session) error
	GetSession(ctx context.Context, sid string) (*domain.Session, error)
	DeleteSession(ctx context.Context, sid string) error
}

// Sessions issues, resolves and revokes login sessions.
//
// A token is only honoured while its session id is still stored, so
// logging out takes effect immediately even though the token itself
// has not expired.
type Sessions struct {
	store  SessionStore
	tokens *Tokens
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions creates a session manager with the given lifetime.
func NewSessions(store SessionStore, tokens *Tokens, ttl time.Duration) *Sessions {
	return &Sessions{
		store:  store,
		tokens: tokens,
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is the lifetime of newly issued sessions.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue creates a session for user and returns its signed token.
func (s *Sessions) Issue(ctx context.Context, user *domain.User) (string, *domain.Session, error) {
	now := s.now().UTC()
	sess := &domain.Session{
		SID:       uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	token, err := s.tokens.Sign(sess.SID, sess.UserID, sess.Email, sess.IssuedAt, sess.ExpiresAt)
	if err != nil {
		return "", nil, err
	}

	if err := s.store.SaveSession(ctx, sess); err != nil {
		return "", nil, fmt.Errorf("issue session: %w", err)
	}

	return token, sess, nil
}

// Resolve returns the user behind token. Every failure, including a
// store error, is reported as domain.ErrUnauthenticated with the cause
// attached for logging.
func (s *Sessions) Resolve(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, errors.Join(domain.ErrUnauthenticated, err)
	}

	sess, err := s.store.GetSession(ctx, claims.SID)
	if err != nil {
		return nil, errors.Join(domain.ErrUnauthenticated, err)
	}

	if sess.UserID != claims.UserID || !s.now().Before(sess.ExpiresAt) {
		return nil, domain.ErrUnauthenticated
	}

	return &domain.User{ID: sess.UserID, Email: sess.Email}, nil
}

// Revoke ends the session behind token. Unverifiable tokens are ignored.
func (s *Sessions) Revoke(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	return s.store.DeleteSession(ctx, claims.SID)
}
