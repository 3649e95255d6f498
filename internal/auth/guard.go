// Package auth resolves who is calling and runs the magic-link sign-in flow.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/devmarks/internal/domain"
)

type ctxKey struct{}

// Guard resolves the authenticated user of a request.
type Guard struct {
	sessions   *Sessions
	cookieName string
}

// NewGuard creates a guard reading cookieName or a Bearer header.
func NewGuard(sessions *Sessions, cookieName string) *Guard {
	return &Guard{sessions: sessions, cookieName: cookieName}
}

// CookieName is the cookie carrying the session token.
func (g *Guard) CookieName() string { return g.cookieName }

// ResolveUser returns the signed-in user or domain.ErrUnauthenticated.
// It has no side effects.
func (g *Guard) ResolveUser(r *http.Request) (*domain.User, error) {
	return g.sessions.Resolve(r.Context(), TokenFromRequest(r, g.cookieName))
}

// TokenFromRequest returns the Bearer token, or the session cookie value.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// WithUser stores user in ctx.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFromContext returns the user stored by WithUser, or nil.
func UserFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(ctxKey{}).(*domain.User)
	return u
}
