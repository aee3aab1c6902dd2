package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/lint-warden/internal/wire"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a GitHub App and reconcile pull requests on webhook events",
	Long: `Start the webhook server. Every opened, reopened or synchronized pull
request is checked out and reconciled by a worker. Requires GITHUB_APP_ID,
GITHUB_PRIVATE_KEY_PATH and GITHUB_WEBHOOK_SECRET.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	app, err := wire.InitializeApp(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	log.Info("starting lint-warden server", "port", cfg.Server.Port)

	go func() {
		if err := app.Start(); err != nil {
			log.Error("server error", "error", err)
			cancel()
		}
	}()

	// The root context is cancelled on SIGINT and SIGTERM.
	<-ctx.Done()
	log.Info("shutting down")

	if err := app.Stop(); err != nil {
		return fmt.Errorf("failed to stop application: %w", err)
	}
	return nil
}
