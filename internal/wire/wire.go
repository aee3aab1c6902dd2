//go:build wireinject
// +build wireinject

package wire

import (
	"context"
	"log/slog"

	"github.com/google/wire"

	"github.com/sevigo/lint-warden/internal/app"
	"github.com/sevigo/lint-warden/internal/config"
	"github.com/sevigo/lint-warden/internal/server"
)

func InitializeApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app.App, error) {
	wire.Build(
		AppSet,
		server.NewServer,
		app.NewApp,
	)
	return &app.App{}, nil
}
