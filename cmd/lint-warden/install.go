package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/lint-warden/internal/config"
	"github.com/sevigo/lint-warden/internal/linter"
	"github.com/sevigo/lint-warden/internal/logger"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the erb_lint gems",
	Long: `Install the erb_lint gems named by ERB_LINT_GEM_VERSIONS.

The value is either a whitespace separated list of name[:version] specifiers
or the word "gemfile", in which case every erb_lint gem pinned in Gemfile.lock
is installed.
An empty value skips installation and uses the erb_lint already on PATH.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		return installLinter(cmd.Context(), cfg.Linter, log)
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(installCmd)
}

func installLinter(ctx context.Context, cfg config.LinterConfig, log *slog.Logger) error {
	defer logger.Group(os.Stdout, "Installing linter")()

	gems, err := linter.ResolveGems(cfg)
	if err != nil {
		return err
	}
	return linter.NewInstaller(log).Install(ctx, gems)
}
