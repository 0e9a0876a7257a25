package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/pterostats/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pterostats/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/pterostats/internal/httpserver/mw"
)

func init() { Register(registerRefresh) }

func registerRefresh(r chi.Router, d deps.Deps) {
	r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             3,
		RefillPerIPPerMin: 6,
		TrustProxy:        d.TrustProxy,
	})).Post("/refresh", handlers.Refresh(d))
}
