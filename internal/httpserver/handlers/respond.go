package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/pterostats/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, log logger.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Debug("failed to write response", logger.Error(err))
	}
}

func writeError(w http.ResponseWriter, log logger.Logger, status int, msg string) {
	writeJSON(w, log, status, errorResponse{Error: msg})
}
