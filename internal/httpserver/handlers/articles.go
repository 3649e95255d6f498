package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/devmarks/internal/auth"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/respond"
	"github.com/MrSnakeDoc/devmarks/internal/logger"
)

// ListArticles returns one page of articles. Signed-in callers get the
// bookmarked flag filled from their bookmarks. Upstream or bookmark
// lookup failures never fail the request.
func ListArticles(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "page", 1)
		perPage := queryInt(r, "per_page", d.PerPage)

		list := d.Articles.List(r.Context(), page, perPage)

		if user := auth.UserFromContext(r.Context()); user != nil && len(list) > 0 {
			ids, err := d.Bookmarks.BookmarkedIDs(r.Context(), user)
			if err != nil {
				d.Logger.Warn("could not load bookmarked ids",
					logger.String("user_id", user.ID),
					logger.Error(err))
			}
			for i := range list {
				_, list[i].Bookmarked = ids[list[i].ID]
			}
		}

		w.Header().Set("Cache-Control", "private, max-age=60")
		respond.JSON(w, http.StatusOK, list)
	}
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}
