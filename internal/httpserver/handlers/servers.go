package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/pterostats/internal/domain"
	"github.com/MrSnakeDoc/pterostats/internal/httpserver/deps"
)

type serversResponse struct {
	Servers []string `json:"servers"`
}

type addServerRequest struct {
	ID string `json:"id"`
}

func ListServers(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids := d.Engine.Tracked()
		if ids == nil {
			ids = []string{}
		}
		writeJSON(w, d.Logger, http.StatusOK, serversResponse{Servers: ids})
	}
}

// AddServer appends a server to the end of the display order.
func AddServer(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addServerRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, "invalid JSON body")
			return
		}

		err := d.Engine.AddTracked(strings.TrimSpace(req.ID))
		switch {
		case err == nil:
			writeJSON(w, d.Logger, http.StatusCreated, serversResponse{Servers: d.Engine.Tracked()})
		case errors.Is(err, domain.ErrEmptyID):
			writeError(w, d.Logger, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrAlreadyTracked):
			writeError(w, d.Logger, http.StatusConflict, err.Error())
		default:
			writeError(w, d.Logger, http.StatusInternalServerError, err.Error())
		}
	}
}

// RemoveServer stops tracking a server; its message is deleted on the next cycle.
func RemoveServer(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := d.Engine.RemoveTracked(r.Context(), id)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, domain.ErrNotTracked):
			writeError(w, d.Logger, http.StatusNotFound, err.Error())
		default:
			writeError(w, d.Logger, http.StatusInternalServerError, err.Error())
		}
	}
}
