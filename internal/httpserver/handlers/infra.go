package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/devmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/respond"
)

var errNotConfigured = errors.New("client not initialized")

type componentStatus struct {
	OK             bool   `json:"ok"`
	ArticlesLoaded *int   `json:"articles_loaded,omitempty"`
	LastReload     string `json:"last_reload,omitempty"`
	Impact         string `json:"impact,omitempty"`
	Error          string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports per-component health and the resulting service mode.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := d.MemoryIndex.Count()
		lastReload := "never"
		if t := d.MemoryIndex.GetLastReload(); !t.IsZero() {
			lastReload = t.Format("2006-01-02 15:04:05")
		}

		components := map[string]componentStatus{
			"articles": {
				OK:             count > 0,
				ArticlesLoaded: &count,
				LastReload:     lastReload,
				Impact:         "article listing served from cache or empty",
			},
			"postgres": checkComponent(r.Context(), d, "postgres", d.Postgres, "bookmarks and sign-in unavailable"),
			"redis":    checkComponent(r.Context(), d, "redis", d.Redis, "sessions unavailable, all requests unauthenticated"),
		}

		respond.JSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if !components["postgres"].OK || !components["redis"].OK {
		return "critical"
	}
	if !components["articles"].OK {
		return "degraded"
	}
	return "optimal"
}

func checkComponent(ctx context.Context, d deps.Deps, name string, p deps.Pinger, impact string) componentStatus {
	if err := ping(ctx, d, name, p); err != nil {
		return componentStatus{OK: false, Impact: impact, Error: err.Error()}
	}
	return componentStatus{OK: true}
}
