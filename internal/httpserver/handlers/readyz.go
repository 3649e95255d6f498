package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/devmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/respond"
	"github.com/MrSnakeDoc/devmarks/internal/logger"
)

type readyzResponse struct {
	Ready  bool            `json:"ready"`
	Checks map[string]bool `json:"checks"`
}

// Readyz is ready only when both Postgres and Redis answer.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]bool{
			"postgres": ping(r.Context(), d, "postgres", d.Postgres) == nil,
			"redis":    ping(r.Context(), d, "redis", d.Redis) == nil,
		}

		ready := checks["postgres"] && checks["redis"]
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(w, status, readyzResponse{Ready: ready, Checks: checks})
	}
}

func ping(ctx context.Context, d deps.Deps, name string, p deps.Pinger) error {
	if p == nil {
		return errNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := p.Ping(ctx)
	if err != nil {
		d.Logger.Warn("readiness check failed",
			logger.String("component", name),
			logger.Error(err))
	}
	return err
}
