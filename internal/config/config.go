// Package config loads the runtime configuration from the environment and the
// per-repository .lint-warden.yml file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/sevigo/lint-warden/internal/logger"
)

// DefaultFailureExitCode is the exit status of a run that found offenses.
const DefaultFailureExitCode = 109

// GemfileMode is the linter version specifier that derives versions from the lockfile.
const GemfileMode = "gemfile"

// Config holds the application's configuration values.
type Config struct {
	GitHub  GitHubConfig
	Linter  LinterConfig
	Review  ReviewConfig
	Server  ServerConfig
	Logging logger.Config
}

// GitHubConfig describes how to reach the host and which pull request to reconcile.
type GitHubConfig struct {
	Token          string
	APIURL         string
	Repository     string // owner/repo
	EventPath      string
	PRNumber       int
	AppID          int64
	PrivateKeyPath string
	WebhookSecret  string
}

// LinterConfig describes the linter binary and how to install it.
type LinterConfig struct {
	Command   string
	Versions  string
	Lockfile  string
	GemPrefix string
}

// ReviewConfig controls how findings turn into comments and exit codes.
type ReviewConfig struct {
	PostOutsideDiff bool
	FailureExitCode int
}

// ServerConfig holds the webhook server settings.
type ServerConfig struct {
	Port       string
	MaxWorkers int
}

// LoadConfig reads configuration from environment variables, sets sensible
// defaults and parses typed values. Required fields are checked separately by
// ValidateForRun and ValidateForServe because each command needs a different set.
func LoadConfig() (*Config, error) {
	v := viper.GetViper()

	bindings := map[string][]string{
		"github.token":            {"GITHUB_TOKEN", "LW_GITHUB_TOKEN"},
		"github.api_url":          {"GITHUB_API_URL"},
		"github.repository":       {"GITHUB_REPOSITORY"},
		"github.event_path":       {"GITHUB_EVENT_PATH"},
		"github.pr_number":        {"LW_PR_NUMBER"},
		"github.app_id":           {"GITHUB_APP_ID"},
		"github.private_key_path": {"GITHUB_PRIVATE_KEY_PATH"},
		"github.webhook_secret":   {"GITHUB_WEBHOOK_SECRET"},
		"linter.command":          {"LW_LINTER_COMMAND"},
		"linter.versions":         {"ERB_LINT_GEM_VERSIONS", "LW_LINTER_VERSIONS"},
		"linter.lockfile":         {"LW_LOCKFILE"},
		"linter.gem_prefix":       {"LW_GEM_PREFIX"},
		"review.outside_diff":     {"OUTSIDE_DIFF"},
		"review.failure_exit":     {"FAILURE_EXIT_CODE"},
		"server.port":             {"SERVER_PORT"},
		"server.max_workers":      {"MAX_WORKERS"},
		"logging.level":           {"LOG_LEVEL"},
		"logging.format":          {"LOG_FORMAT"},
		"logging.output":          {"LOG_OUTPUT"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	v.SetDefault("github.api_url", "https://api.github.com/")
	v.SetDefault("linter.command", "erb_lint")
	v.SetDefault("linter.lockfile", "Gemfile.lock")
	v.SetDefault("linter.gem_prefix", "erb_lint")
	v.SetDefault("review.outside_diff", "true")
	v.SetDefault("review.failure_exit", DefaultFailureExitCode)
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.max_workers", 1)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "actions")
	v.SetDefault("logging.output", "stdout")

	exitCode := v.GetInt("review.failure_exit")
	if exitCode < 1 || exitCode > 255 {
		return nil, fmt.Errorf("FAILURE_EXIT_CODE must be between 1 and 255, got %q", v.GetString("review.failure_exit"))
	}

	return &Config{
		GitHub: GitHubConfig{
			Token:          v.GetString("github.token"),
			APIURL:         v.GetString("github.api_url"),
			Repository:     v.GetString("github.repository"),
			EventPath:      v.GetString("github.event_path"),
			PRNumber:       v.GetInt("github.pr_number"),
			AppID:          v.GetInt64("github.app_id"),
			PrivateKeyPath: v.GetString("github.private_key_path"),
			WebhookSecret:  v.GetString("github.webhook_secret"),
		},
		Linter: LinterConfig{
			Command:   v.GetString("linter.command"),
			Versions:  strings.TrimSpace(v.GetString("linter.versions")),
			Lockfile:  v.GetString("linter.lockfile"),
			GemPrefix: v.GetString("linter.gem_prefix"),
		},
		Review: ReviewConfig{
			// Only the literal "true" enables posting, matching the workflow input.
			PostOutsideDiff: strings.EqualFold(strings.TrimSpace(v.GetString("review.outside_diff")), "true"),
			FailureExitCode: exitCode,
		},
		Server: ServerConfig{
			Port:       v.GetString("server.port"),
			MaxWorkers: v.GetInt("server.max_workers"),
		},
		Logging: logger.Config{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
			Output: v.GetString("logging.output"),
		},
	}, nil
}

// GemfileMode reports whether linter versions come from the lockfile.
func (c LinterConfig) GemfileMode() bool {
	return strings.EqualFold(c.Versions, GemfileMode)
}

// OwnerRepo splits the configured owner/repo identifier.
func (c GitHubConfig) OwnerRepo() (string, string, error) {
	parts := strings.SplitN(c.Repository, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GITHUB_REPOSITORY %q: expected owner/repo", c.Repository)
	}
	return parts[0], parts[1], nil
}

// ValidateForRun checks the values a CI run needs before anything touches the host.
func (c *Config) ValidateForRun() error {
	if c.GitHub.Token == "" {
		return fmt.Errorf("GITHUB_TOKEN must be set")
	}
	if _, _, err := c.GitHub.OwnerRepo(); err != nil {
		return err
	}
	if c.GitHub.EventPath == "" && c.GitHub.PRNumber <= 0 {
		return fmt.Errorf("GITHUB_EVENT_PATH or LW_PR_NUMBER must be set")
	}
	if c.Linter.Command == "" {
		return fmt.Errorf("LW_LINTER_COMMAND must not be empty")
	}
	return nil
}

// ValidateForServe checks the GitHub App settings the webhook server needs.
func (c *Config) ValidateForServe() error {
	if c.GitHub.AppID == 0 {
		return fmt.Errorf("GITHUB_APP_ID must be set")
	}
	if c.GitHub.WebhookSecret == "" {
		return fmt.Errorf("GITHUB_WEBHOOK_SECRET must be set")
	}
	if c.GitHub.PrivateKeyPath == "" {
		return fmt.Errorf("GITHUB_PRIVATE_KEY_PATH must be set")
	}
	if c.Linter.Command == "" {
		return fmt.Errorf("LW_LINTER_COMMAND must not be empty")
	}
	return nil
}
