package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/lint-warden/internal/config"
	"github.com/sevigo/lint-warden/internal/core"
	"github.com/sevigo/lint-warden/internal/github"
	"github.com/sevigo/lint-warden/internal/jobs"
	"github.com/sevigo/lint-warden/internal/linter"
	"github.com/sevigo/lint-warden/internal/reconcile"
)

var (
	skipInstall bool
	repoDir     string
)

var runCmd = &cobra.Command{
	Use:   "run [-- erb_lint-args...]",
	Short: "Lint the pull request and reconcile its comments",
	Long: `Lint the ERB files changed by the pull request and reconcile the
comments lint-warden left on it.

The pull request is read from the webhook payload at GITHUB_EVENT_PATH, or
from GITHUB_REPOSITORY and LW_PR_NUMBER. The process exits with
FAILURE_EXIT_CODE (109 by default) when offenses remain.

Examples:
  lint-warden run
  lint-warden run --skip-install -- --enable-all-linters`,
	Args: func(cmd *cobra.Command, args []string) error {
		if positional, _ := splitArgs(cmd, args); len(positional) > 0 {
			return fmt.Errorf("unexpected argument %q: pass linter arguments after --", positional[0])
		}
		return nil
	},
	RunE: runReconcile,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	runCmd.Flags().BoolVar(&skipInstall, "skip-install", false, "Use the installed linter without running gem install")
	runCmd.Flags().StringVarP(&repoDir, "dir", "C", ".", "Directory of the checked out pull request")
	rootCmd.AddCommand(runCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if err := cfg.ValidateForRun(); err != nil {
		return err
	}

	if !skipInstall {
		if err := installLinter(ctx, cfg.Linter, log); err != nil {
			return err
		}
	}

	event, err := loadEvent(cfg.GitHub)
	if err != nil {
		return err
	}

	_, linterArgs := splitArgs(cmd, args)
	plan, err := reconcilePullRequest(ctx, cfg, event, linterArgs, false, log)
	if err != nil {
		return err
	}
	printSummary(event, plan)
	return jobs.Verdict(plan, cfg.Review.FailureExitCode)
}

// loadEvent identifies the pull request to reconcile. An explicit PR number
// wins over the event payload so a run can be pointed at any pull request.
func loadEvent(cfg config.GitHubConfig) (*core.GitHubEvent, error) {
	if cfg.PRNumber > 0 {
		owner, repo, err := cfg.OwnerRepo()
		if err != nil {
			return nil, err
		}
		return &core.GitHubEvent{
			RepoOwner:    owner,
			RepoName:     repo,
			RepoFullName: owner + "/" + repo,
			PRNumber:     cfg.PRNumber,
		}, nil
	}
	return core.EventFromFile(cfg.EventPath)
}

func reconcilePullRequest(ctx context.Context, cfg *config.Config, event *core.GitHubEvent, linterArgs []string, dryRun bool, log *slog.Logger) (*reconcile.Plan, error) {
	client, err := github.NewPATClient(cfg.GitHub.Token, cfg.GitHub.APIURL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	reconciler := jobs.NewReconciler(client, linter.NewRunner(cfg.Linter.Command, log), jobs.ReconcilerOptions{
		PostOutsideDiff: cfg.Review.PostOutsideDiff,
		LinterArgs:      linterArgs,
		DryRun:          dryRun,
		GroupOutput:     os.Stdout,
	}, log)

	return reconciler.Reconcile(ctx, event, repoDir)
}
