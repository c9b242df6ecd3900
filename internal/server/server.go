// Package server runs the formrunner HTTP server: the form routes plus
// Kubernetes-style health probes, with graceful shutdown that drains open
// connections before exiting.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/formrunner/internal/health"
)

// Server serves an application handler alongside the health endpoints
type Server struct {
	httpServer      *http.Server
	probeManager    *health.ProbeManager
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
}

// Config holds server configuration. Zero timeouts take the defaults: 30s
// shutdown, 10s read and write, 60s idle.
type Config struct {
	Address         string
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration

	// Metrics is served at MetricsPath when both are set
	Metrics     http.Handler
	MetricsPath string
}

// NewServer creates a server. Requests outside the health endpoints go to app,
// which may be nil to serve only the probes.
func NewServer(probeManager *health.ProbeManager, cfg Config, app http.Handler) *Server {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}

	s := &Server{
		probeManager:    probeManager,
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health/live", s.handleLiveness)
	mux.HandleFunc("GET /health/ready", s.handleReadiness)
	mux.HandleFunc("GET /health/startup", s.handleStartup)
	mux.HandleFunc("GET /healthz", s.handleReadiness)
	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		mux.Handle("GET "+cfg.MetricsPath, cfg.Metrics)
	}
	if app != nil {
		mux.Handle("/", app)
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens on the configured address and blocks until the server stops.
// It returns http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. The startup probe passes from here on.
func (s *Server) Serve(ln net.Listener) error {
	s.probeManager.MarkInitialized()
	return s.httpServer.Serve(ln)
}

// Shutdown fails the readiness probe, stops keep-alives and waits up to the
// shutdown timeout for open requests to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.probeManager.MarkShutdown()
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}

func writeProbeResponse(w http.ResponseWriter, result *health.ProbeResult, unhealthyStatus int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if result.Status == health.StatusUnhealthy {
		w.WriteHeader(unhealthyStatus)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(result) //nolint:errcheck,gosec // headers already sent
}

// handleLiveness always answers 200, degraded while shutting down
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeProbeResponse(w, s.probeManager.CheckLiveness(r.Context()), http.StatusOK)
}

// handleReadiness answers 503 while shutting down or when a dependency is unhealthy
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	writeProbeResponse(w, s.probeManager.CheckReadiness(r.Context()), http.StatusServiceUnavailable)
}

// handleStartup answers 503 until the server is listening
func (s *Server) handleStartup(w http.ResponseWriter, r *http.Request) {
	writeProbeResponse(w, s.probeManager.CheckStartup(r.Context()), http.StatusServiceUnavailable)
}
