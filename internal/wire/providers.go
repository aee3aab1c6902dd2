// Package wire builds the server-mode dependency graph with google/wire.
package wire

import (
	"log/slog"

	"github.com/google/wire"

	"github.com/sevigo/lint-warden/internal/config"
	"github.com/sevigo/lint-warden/internal/core"
	"github.com/sevigo/lint-warden/internal/gitutil"
	"github.com/sevigo/lint-warden/internal/jobs"
	"github.com/sevigo/lint-warden/internal/linter"
)

// AppSet provides everything the server needs besides config and logger.
var AppSet = wire.NewSet(
	gitutil.NewCloner,
	wire.Bind(new(jobs.Checkouter), new(*gitutil.Cloner)),
	provideLinterSource,
	jobs.NewReconcileJob,
	provideDispatcher,
	wire.Bind(new(core.JobDispatcher), new(*jobs.Dispatcher)),
)

func provideLinterSource(cfg *config.Config, logger *slog.Logger) linter.Source {
	return linter.NewRunner(cfg.Linter.Command, logger)
}

func provideDispatcher(job core.Job, cfg *config.Config, logger *slog.Logger) *jobs.Dispatcher {
	return jobs.NewDispatcher(job, cfg.Server.MaxWorkers, logger)
}
