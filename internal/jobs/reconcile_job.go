package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevigo/lint-warden/internal/config"
	"github.com/sevigo/lint-warden/internal/core"
	"github.com/sevigo/lint-warden/internal/github"
	"github.com/sevigo/lint-warden/internal/linter"
)

// ClientFactory creates a host client for an App installation and returns the
// installation token alongside it.
type ClientFactory func(ctx context.Context, installationID int64) (github.Client, string, error)

// Checkouter places the head commit of a pull request in a local directory.
type Checkouter interface {
	CheckoutPullRequest(ctx context.Context, repoURL string, prNumber int, sha, token string) (string, func(), error)
}

// ReconcileJob is the webhook-triggered counterpart of the CLI run: it checks
// out the pull request, reconciles its comments and reports the verdict as a
// check run.
type ReconcileJob struct {
	cfg       *config.Config
	newClient ClientFactory
	checkout  Checkouter
	source    linter.Source
	logger    *slog.Logger
}

// NewReconcileJob creates a ReconcileJob authenticating as the configured GitHub App.
func NewReconcileJob(cfg *config.Config, checkout Checkouter, source linter.Source, logger *slog.Logger) core.Job {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ReconcileJob{
		cfg: cfg,
		newClient: func(ctx context.Context, installationID int64) (github.Client, string, error) {
			return github.CreateInstallationClient(ctx, cfg, installationID, logger)
		},
		checkout: checkout,
		source:   source,
		logger:   logger,
	}
}

// Run executes the reconciliation for a given GitHub event.
func (j *ReconcileJob) Run(ctx context.Context, event *core.GitHubEvent) error {
	if err := validateEvent(event); err != nil {
		j.logger.Error("Input validation failed", "error", err)
		return fmt.Errorf("input validation failed: %w", err)
	}

	j.logger.Info("Starting reconcile job", "repo", event.RepoFullName, "pr", event.PRNumber)

	ghClient, token, err := j.newClient(ctx, event.InstallationID)
	if err != nil {
		j.logger.Error("Failed to create GitHub client", "error", err)
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	// The webhook may be stale by the time a worker picks it up.
	pr, err := ghClient.GetPullRequest(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return fmt.Errorf("failed to get PR details: %w", err)
	}
	if pr.GetHead().GetSHA() == "" {
		return fmt.Errorf("PR %d has no valid head SHA", event.PRNumber)
	}
	event.HeadSHA = pr.GetHead().GetSHA()

	statusUpdater := github.NewStatusUpdater(ghClient)
	checkRunID, err := statusUpdater.InProgress(ctx, event, "Linting", "Running the linter on changed files...")
	if err != nil {
		j.logger.Error("Failed to set in-progress status", "error", err)
		return fmt.Errorf("failed to set in-progress status: %w", err)
	}

	cloneCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	repoPath, cleanup, err := j.checkout.CheckoutPullRequest(cloneCtx, event.RepoCloneURL, event.PRNumber, event.HeadSHA, token)
	if err != nil {
		j.updateStatusOnError(ctx, statusUpdater, event, checkRunID, "Failed to check out the pull request")
		return fmt.Errorf("failed to check out repository: %w", err)
	}
	defer cleanup()

	reconciler := NewReconciler(ghClient, j.source, ReconcilerOptions{
		PostOutsideDiff: j.cfg.Review.PostOutsideDiff,
	}, j.logger)

	plan, err := reconciler.Reconcile(ctx, event, repoPath)
	if err != nil {
		j.updateStatusOnError(ctx, statusUpdater, event, checkRunID, err.Error())
		return fmt.Errorf("failed to reconcile comments: %w", err)
	}

	conclusion, title, summary := github.Verdict(plan.FindingCount, len(plan.OutsideDiff))
	if err := statusUpdater.Completed(ctx, event, checkRunID, conclusion, title, summary); err != nil {
		j.logger.Error("Failed to update completion status", "error", err)
		return fmt.Errorf("failed to update completion status: %w", err)
	}

	j.logger.Info("Reconcile job completed", "repo", event.RepoFullName, "pr", event.PRNumber, "conclusion", conclusion)
	return nil
}

// validateEvent ensures the event contains all required fields.
func validateEvent(event *core.GitHubEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.RepoOwner == "" {
		return fmt.Errorf("repository owner cannot be empty")
	}
	if event.RepoName == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if event.RepoCloneURL == "" {
		return fmt.Errorf("repository clone URL cannot be empty")
	}
	if event.PRNumber <= 0 {
		return fmt.Errorf("pull request number must be positive, got: %d", event.PRNumber)
	}
	if event.InstallationID <= 0 {
		return fmt.Errorf("installation ID must be positive, got: %d", event.InstallationID)
	}
	return nil
}

// updateStatusOnError sends a failure status to GitHub Check Runs.
func (j *ReconcileJob) updateStatusOnError(ctx context.Context, statusUpdater github.StatusUpdater, event *core.GitHubEvent, checkRunID int64, message string) {
	if err := statusUpdater.Completed(ctx, event, checkRunID, "failure", "Lint run failed", message); err != nil {
		j.logger.Error("Failed to update failure status", "error", err)
	}
}
