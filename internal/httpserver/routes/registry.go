package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/pterostats/internal/httpserver/deps"
)

// Registrar mounts a group of routes. Per-route middleware that needs deps,
// such as rate limiting, is applied inside the registrar with r.With.
type Registrar func(r chi.Router, d deps.Deps)

var registry []Registrar

// Register adds a registrar. Called from init in each route file.
func Register(reg Registrar) {
	registry = append(registry, reg)
}

// RegisterAll mounts every registered route on r. Called once from server.New().
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, reg := range registry {
		reg(r, d)
	}
}
