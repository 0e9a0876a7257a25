package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/pterostats/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pterostats/internal/logger"
)

type refreshResponse struct {
	Queued  bool   `json:"queued"`
	Message string `json:"message"`
}

// Refresh queues an immediate cycle.
func Refresh(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Engine.Trigger() {
			d.Logger.Info("manual refresh triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, d.Logger, http.StatusAccepted, refreshResponse{
				Queued:  true,
				Message: "refresh queued",
			})
			return
		}

		d.Logger.Warn("refresh already pending",
			logger.String("remote_ip", r.RemoteAddr))
		writeJSON(w, d.Logger, http.StatusTooManyRequests, refreshResponse{
			Queued:  false,
			Message: "refresh already pending, please wait",
		})
	}
}
