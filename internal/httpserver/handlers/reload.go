package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/devmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/respond"
	"github.com/MrSnakeDoc/devmarks/internal/logger"
	"github.com/MrSnakeDoc/devmarks/internal/utils"
)

type reloadResponse struct {
	Message string `json:"message"`
}

// Reload triggers a manual refresh of the article front page
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := utils.ClientIP(r, d.TrustProxy)

		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual article refresh triggered via endpoint",
				logger.String("remote_ip", ip))
			respond.JSON(w, http.StatusAccepted, reloadResponse{Message: "reload triggered"})
		default:
			d.Logger.Warn("article refresh already pending",
				logger.String("remote_ip", ip))
			respond.Status(w, r, http.StatusTooManyRequests, "reload_pending", "reload already in progress, please wait")
		}
	}
}
