package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/lint-warden/internal/config"
	"github.com/sevigo/lint-warden/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "lint-warden",
	Short: "lint-warden keeps erb_lint pull request comments in sync with the code.",
	Long: `lint-warden runs erb_lint on the templates a pull request touches and
reconciles its own review comments: new offenses get comments, fixed ones lose
them, and offenses outside the diff are gathered into one summary comment.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	flags := rootCmd.PersistentFlags()
	flags.StringP("github-token", "t", "", "GitHub token (defaults to GITHUB_TOKEN)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: actions, text or json")

	for key, flag := range map[string]string{
		"github.token":   "github-token",
		"logging.level":  "log-level",
		"logging.format": "log-format",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			slog.Error("Error binding flag", "flag", flag, "error", err)
			os.Exit(1)
		}
	}
}

// setup loads the configuration and installs the process logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewLogger(cfg.Logging, nil)
	slog.SetDefault(log)
	return cfg, log, nil
}
