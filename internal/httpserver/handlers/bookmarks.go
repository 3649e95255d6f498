package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/devmarks/internal/auth"
	"github.com/MrSnakeDoc/devmarks/internal/domain"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/respond"
	"github.com/MrSnakeDoc/devmarks/internal/logger"
)

type messageResponse struct {
	Message string `json:"message"`
}

// ListBookmarks returns the caller's bookmarks.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Bookmarks.List(r.Context(), auth.UserFromContext(r.Context()))
		if err != nil {
			fail(d, w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, list)
	}
}

// CreateBookmark stores a bookmark for the caller. Any user_id in the
// body is ignored.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload domain.NewBookmark
		if err := respond.Decode(r, &payload); err != nil {
			fail(d, w, r, err)
			return
		}

		b, err := d.Bookmarks.Create(r.Context(), auth.UserFromContext(r.Context()), payload)
		if err != nil {
			fail(d, w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, b)
	}
}

// DeleteBookmark removes the caller's bookmark for {article_id}.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		articleID := chi.URLParam(r, "article_id")

		if err := d.Bookmarks.Delete(r.Context(), auth.UserFromContext(r.Context()), articleID); err != nil {
			fail(d, w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, messageResponse{Message: "bookmark deleted"})
	}
}

// fail logs server-side failures and writes the mapped error.
func fail(d deps.Deps, w http.ResponseWriter, r *http.Request, err error) {
	if status, _ := respond.Classify(err); status >= http.StatusInternalServerError {
		d.Logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err))
	}
	respond.Error(w, r, err)
}
