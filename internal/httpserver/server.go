// Package httpserver exposes the local control surface: health probes,
// cycle status, manual refresh and tracked-set mutations.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/pterostats/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pterostats/internal/httpserver/mw"
	"github.com/MrSnakeDoc/pterostats/internal/httpserver/routes"
	"github.com/MrSnakeDoc/pterostats/internal/logger"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http   *http.Server
	logger logger.Logger
}

// NewRouter builds the router with middlewares and every registered route.
func NewRouter(loggerClient logger.Logger, d deps.Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer) // never crash the process on panic
	r.Use(middleware.Timeout(5 * time.Second))
	r.Use(mw.Log(loggerClient))
	r.Use(mw.AllowOnlyCIDRs(d.AllowedCIDRs, d.TrustProxy, loggerClient))

	routes.RegisterAll(r, d)
	return r
}

// New builds the HTTP server listening on addr.
func New(addr string, loggerClient logger.Logger, d deps.Deps) *Server {
	s := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(loggerClient, d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{
		http:   s,
		logger: loggerClient,
	}
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.logger.Infof("HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
