package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/devmarks/internal/auth"
	"github.com/MrSnakeDoc/devmarks/internal/domain"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/respond"
	"github.com/MrSnakeDoc/devmarks/internal/logger"
)

// RequireUser rejects requests without a valid session with 401 and
// stores the resolved user in the request context otherwise.
func RequireUser(g *auth.Guard, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := g.ResolveUser(r)
			if err != nil {
				log.Debug("request not authenticated",
					logger.String("path", r.URL.Path),
					logger.Error(err))
				respond.Error(w, r, domain.ErrUnauthenticated)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// OptionalUser resolves the user when possible and continues anonymously otherwise.
func OptionalUser(g *auth.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, err := g.ResolveUser(r); err == nil {
				r = r.WithContext(auth.WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}
