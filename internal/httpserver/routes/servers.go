package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/pterostats/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pterostats/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/pterostats/internal/httpserver/mw"
)

func init() { Register(registerServers) }

func registerServers(r chi.Router, d deps.Deps) {
	r.Get("/servers", handlers.ListServers(d))

	limited := r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             10,
		RefillPerIPPerMin: 30,
		TrustProxy:        d.TrustProxy,
	}))
	limited.Post("/servers", handlers.AddServer(d))
	limited.Delete("/servers/{id}", handlers.RemoveServer(d))
}
