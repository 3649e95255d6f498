package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/devmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Use(mw.RequireUser(d.Guard, d.Logger))
		r.Get("/", handlers.ListBookmarks(d))

		writes := r.With(mw.RateLimit(mw.RateLimitConfig{
			Name:      "bookmark_writes",
			Burst:     d.BookmarkWriteBurst,
			PerMinute: d.BookmarkWritePerMin,
			Key:       mw.ByUser,
		}))
		writes.Post("/", handlers.CreateBookmark(d))
		writes.Delete("/{article_id}", handlers.DeleteBookmark(d))
	})
}
