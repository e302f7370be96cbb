// Package observability provides the metrics and monitoring HTTP server,
// served on its own port, separate from the API.
package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"verdict-service/internal/logging"
)

// ReadyProbe reports whether a dependency can serve traffic. A nil probe
// counts as always ready.
type ReadyProbe func(ctx context.Context) error

// Server serves /metrics, /healthz and /readyz.
type Server struct {
	server  *http.Server
	addr    string
	started time.Time
	probe   ReadyProbe
}

// NewServer creates an observability server. probe gates /readyz; pass the
// store's health check so the pod is not marked ready before persistence is.
func NewServer(addr string, probe ReadyProbe) *Server {
	s := &Server{
		addr:    addr,
		started: time.Now().UTC(),
		probe:   probe,
	}

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", s.health)
	r.Get("/readyz", s.ready)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if s.probe != nil {
		if err := s.probe(r.Context()); err != nil {
			logger := logging.WithComponent("observability")
			logger.Warn().Err(err).Msg("Readiness probe failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	go func() {
		logger := logging.WithComponent("observability")
		logger.Info().Str("addr", s.addr).Msg("Starting observability HTTP server")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Observability HTTP server error")
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	logger := logging.WithComponent("observability")
	logger.Info().Msg("Shutting down observability HTTP server")
	return s.server.Shutdown(ctx)
}
