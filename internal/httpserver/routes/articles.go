package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/devmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/mw"
)

func init() { Register(registerArticles) }

func registerArticles(r chi.Router, d deps.Deps) {
	r.With(
		mw.RateLimit(mw.RateLimitConfig{
			Name:       "articles",
			Burst:      d.ArticlesBurst,
			PerMinute:  d.ArticlesPerMin,
			MaxEntries: 10000,
			Key:        mw.ByClientIP(d.TrustProxy),
		}),
		mw.OptionalUser(d.Guard),
	).Get("/api/articles", handlers.ListArticles(d))
}
