package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/pterostats/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready  bool  `json:"ready"`
	Cycles int64 `json:"cycles"`
}

// Readyz answers 503 until the first cycle has completed.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Engine.Status()
		code := http.StatusOK
		if !d.Engine.Ready() {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, d.Logger, code, readyzResponse{Ready: code == http.StatusOK, Cycles: st.Cycles})
	}
}
