// Package jobs wires the reconciliation pipeline together and runs it either
// once from the CLI or per webhook from a worker pool.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sevigo/lint-warden/internal/config"
	"github.com/sevigo/lint-warden/internal/core"
	"github.com/sevigo/lint-warden/internal/github"
	"github.com/sevigo/lint-warden/internal/linter"
	"github.com/sevigo/lint-warden/internal/logger"
	"github.com/sevigo/lint-warden/internal/reconcile"
)

// ReconcilerOptions tune a Reconciler.
type ReconcilerOptions struct {
	// Tool is embedded in comment markers. Defaults to reconcile.DefaultTool.
	Tool string
	// Title names the linter in the summary comment.
	Title           string
	PostOutsideDiff bool
	// LinterArgs are appended after the repository's own linter_args.
	LinterArgs []string
	// DryRun computes the plan without applying it.
	DryRun bool
	// GroupOutput receives CI log group markers around the lint step when set.
	GroupOutput io.Writer
}

// Reconciler makes the tool-authored comments of one pull request mirror the
// linter's current findings.
type Reconciler struct {
	client   github.Client
	source   linter.Source
	engine   *reconcile.Engine
	executor *reconcile.Executor
	marker   reconcile.Marker
	opts     ReconcilerOptions
	logger   *slog.Logger
}

// NewReconciler creates a Reconciler that talks to the host through client
// and gets findings from source.
func NewReconciler(client github.Client, source linter.Source, opts ReconcilerOptions, logger *slog.Logger) *Reconciler {
	if opts.Tool == "" {
		opts.Tool = reconcile.DefaultTool
	}
	marker := reconcile.NewMarker(opts.Tool)
	return &Reconciler{
		client: client,
		source: source,
		engine: reconcile.NewEngine(marker, reconcile.Options{
			Title:           opts.Title,
			PostOutsideDiff: opts.PostOutsideDiff,
		}, logger),
		executor: reconcile.NewExecutor(client, logger),
		marker:   marker,
		opts:     opts,
		logger:   logger,
	}
}

// Reconcile lints the changed files checked out in repoDir, plans the comment
// changes and applies them unless running dry. Any linter or host failure
// aborts the run before further mutations.
func (r *Reconciler) Reconcile(ctx context.Context, event *core.GitHubEvent, repoDir string) (*reconcile.Plan, error) {
	log := r.logger.With("repo", event.RepoFullName, "pr", event.PRNumber)

	if event.HeadSHA == "" {
		pr, err := r.client.GetPullRequest(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to get PR details: %w", err)
		}
		if pr.GetHead().GetSHA() == "" {
			return nil, fmt.Errorf("PR %d has no valid head SHA", event.PRNumber)
		}
		event.HeadSHA = pr.GetHead().GetSHA()
	}

	changed, err := r.client.GetChangedFiles(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list changed files: %w", err)
	}

	repoCfg, err := config.LoadRepoConfig(repoDir)
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		log.Debug("No repository config found, using defaults", "file", config.RepoConfigFile)
	case err != nil:
		return nil, err
	}

	targets := repoCfg.LintTargets(changed)
	log.Info("Selected files to lint", "changed", len(changed), "targets", len(targets))

	args := append(append([]string{}, repoCfg.LinterArgs...), r.opts.LinterArgs...)
	findings, err := r.lint(ctx, repoDir, targets, args)
	if err != nil {
		return nil, err
	}

	inv, err := reconcile.FetchInventory(ctx, r.client, event, r.marker, log)
	if err != nil {
		return nil, err
	}

	plan := r.engine.Plan(findings, reconcile.NewRangeIndex(changed), inv, event.HeadSHA)
	log.Info("Planned comment changes",
		"findings", plan.FindingCount,
		"outside_diff", len(plan.OutsideDiff),
		"create", plan.Count(reconcile.ActionCreate),
		"update", plan.Count(reconcile.ActionUpdate),
		"delete", plan.Count(reconcile.ActionDelete),
		"unchanged", plan.Unchanged,
	)

	if r.opts.DryRun {
		log.Info("Dry run, leaving comments untouched")
		return plan, nil
	}
	if err := r.executor.Apply(ctx, event, plan.Actions); err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *Reconciler) lint(ctx context.Context, repoDir string, targets, args []string) ([]core.Finding, error) {
	if r.opts.GroupOutput != nil {
		defer logger.Group(r.opts.GroupOutput, "Running linter")()
	}
	findings, err := r.source.Run(ctx, repoDir, targets, args)
	if err != nil {
		return nil, fmt.Errorf("linter run failed: %w", err)
	}
	return findings, nil
}

// Verdict converts a finished plan into the error a CLI run returns: nil when
// clean, a *FindingsError carrying failureCode otherwise.
func Verdict(plan *reconcile.Plan, failureCode int) error {
	if !plan.Failed() {
		return nil
	}
	return &FindingsError{
		Count:       plan.FindingCount,
		OutsideDiff: len(plan.OutsideDiff),
		ExitCode:    plan.ExitCode(failureCode),
	}
}
