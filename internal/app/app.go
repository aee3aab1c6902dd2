// Package app holds the webhook server mode of Lint Warden: the HTTP server
// and the worker pool that reconciles pull requests in the background.
package app

import (
	"log/slog"

	"github.com/sevigo/lint-warden/internal/config"
	"github.com/sevigo/lint-warden/internal/jobs"
	"github.com/sevigo/lint-warden/internal/server"
)

// App holds the main application components.
type App struct {
	cfg        *config.Config
	server     *server.Server
	dispatcher *jobs.Dispatcher
	logger     *slog.Logger
}

// NewApp assembles the server-mode application.
func NewApp(cfg *config.Config, srv *server.Server, dispatcher *jobs.Dispatcher, logger *slog.Logger) *App {
	return &App{
		cfg:        cfg,
		server:     srv,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start runs the HTTP server and blocks until it stops.
func (a *App) Start() error {
	a.logger.Info("starting Lint Warden",
		"server_port", a.cfg.Server.Port,
		"max_workers", a.cfg.Server.MaxWorkers,
		"linter", a.cfg.Linter.Command)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	a.logger.Info("shutting down Lint Warden services")

	// Stop the HTTP server first to prevent new incoming requests.
	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	// Let in-flight reconciliations finish so no pull request is left half updated.
	a.dispatcher.Stop()

	if serverErr != nil {
		a.logger.Error("Lint Warden stopped with errors", "error", serverErr)
		return serverErr
	}
	a.logger.Info("Lint Warden stopped successfully")
	return nil
}
