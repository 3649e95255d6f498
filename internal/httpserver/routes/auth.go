package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/devmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/mw"
)

func init() { Register(registerAuth) }

func registerAuth(r chi.Router, d deps.Deps) {
	r.Route("/api/auth", func(r chi.Router) {
		r.With(mw.RateLimit(mw.RateLimitConfig{
			Name:       "magic_link",
			Burst:      d.MagicLinkBurst,
			PerMinute:  d.MagicLinkPerMin,
			MaxEntries: 10000,
			Key:        mw.ByClientIP(d.TrustProxy),
		})).Post("/magic-link", handlers.RequestMagicLink(d))
		r.Get("/callback", handlers.AuthCallback(d))
		r.With(mw.RequireUser(d.Guard, d.Logger)).Get("/me", handlers.Me(d))
		r.Post("/logout", handlers.Logout(d))
	})
}
