package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/devmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/respond"
	"github.com/MrSnakeDoc/devmarks/internal/version"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	version.Info
}

// Healthz reports liveness. It never touches backing services.
func Healthz(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			UptimeSeconds: d.Now().Sub(start).Seconds(),
			Info:          d.Build,
		})
	}
}
