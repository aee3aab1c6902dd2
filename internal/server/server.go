// Package server receives GitHub App webhooks and hands pull request events to
// the job dispatcher.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sevigo/lint-warden/internal/config"
	"github.com/sevigo/lint-warden/internal/core"
)

const shutdownTimeout = 30 * time.Second

// Server is the webhook HTTP server. Request contexts derive from the context
// passed to NewServer, so cancelling it aborts in-flight dispatches.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates an HTTP server that dispatches pull request webhooks.
func NewServer(ctx context.Context, cfg *config.Config, dispatcher core.JobDispatcher, logger *slog.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:              net.JoinHostPort("", cfg.Server.Port),
			Handler:           NewRouter(cfg, dispatcher, logger),
			BaseContext:       func(net.Listener) context.Context { return ctx },
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// Start listens on the configured port and blocks until Stop is called.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. A shutdown through Stop is not an error.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("HTTP server listening", "address", ln.Addr().String())
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// Stop stops accepting requests and waits for open ones to finish.
func (s *Server) Stop() error {
	s.logger.Info("shutting down HTTP server", "timeout", shutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
