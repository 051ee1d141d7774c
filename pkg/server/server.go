// Package server wires the relay's HTTP front door: routes, middleware
// chain, and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"bridgehq/relay/pkg/config"
	"bridgehq/relay/pkg/proxy/handlers"
	"bridgehq/relay/pkg/proxy/middleware"
	"bridgehq/relay/pkg/telemetry/metrics"
)

// Server is the relay's HTTP server.
type Server struct {
	cfg          *config.Store
	handler      *handlers.Handler
	metrics      *metrics.Metrics
	httpServer   *http.Server
	shutdownOnce sync.Once
}

// New creates a server around the API handler.
func New(cfg *config.Store, h *handlers.Handler, m *metrics.Metrics) *Server {
	return &Server{cfg: cfg, handler: h, metrics: m}
}

// routes builds the mux with the middleware chain applied.
func (s *Server) routes() http.Handler {
	cfg := s.cfg.Current()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handler.Chat)
	mux.HandleFunc("GET /api/models", s.handler.Models)
	mux.HandleFunc("GET /health", s.handler.Health)
	if cfg.Telemetry.Metrics.Enabled {
		mux.Handle("GET "+cfg.Telemetry.Metrics.Path, s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.Server.CORS)(handler)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(handler)
	return handler
}

// Start runs the server until the context is cancelled or a shutdown
// signal arrives, then drains in-flight requests within the configured
// shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.cfg.Current()

	s.httpServer = &http.Server{
		Addr:           cfg.Server.ListenAddress,
		Handler:        s.routes(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting relay server", "address", cfg.Server.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown()
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown()
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		timeout := s.cfg.Current().Server.ShutdownTimeout
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		slog.Info("shutting down server", "timeout", timeout)
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}
