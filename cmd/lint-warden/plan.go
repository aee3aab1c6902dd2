package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/lint-warden/internal/gitutil"
	"github.com/sevigo/lint-warden/internal/jobs"
)

var showBodies bool

var planCmd = &cobra.Command{
	Use:   "plan [pr-ref] [-- erb_lint-args...]",
	Short: "Show the comment changes a run would make without applying them",
	Long: `Lint the checked out pull request and print the comments lint-warden
would create, update and delete. Nothing is written to GitHub.

The pull request defaults to the one the CI environment names. Pass a pull
request URL or owner/repo#number to point at another one.

Examples:
  lint-warden plan
  lint-warden plan https://github.com/owner/repo/pull/123
  lint-warden plan --bodies owner/repo#123`,
	RunE: runPlan,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	planCmd.Flags().BoolVar(&showBodies, "bodies", false, "Print the full body of every comment to create or update")
	planCmd.Flags().StringVarP(&repoDir, "dir", "C", ".", "Directory of the checked out pull request")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	positional, linterArgs := splitArgs(cmd, args)
	if len(positional) > 1 {
		return fmt.Errorf("expected at most one pull request reference, got %d", len(positional))
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if len(positional) == 1 {
		ref, err := gitutil.ParsePullRequest(positional[0])
		if err != nil {
			return err
		}
		cfg.GitHub.Repository = ref.Owner + "/" + ref.Repo
		cfg.GitHub.PRNumber = ref.Number
	}
	if err := cfg.ValidateForRun(); err != nil {
		return err
	}

	event, err := loadEvent(cfg.GitHub)
	if err != nil {
		return err
	}

	plan, err := reconcilePullRequest(cmd.Context(), cfg, event, linterArgs, true, log)
	if err != nil {
		return err
	}
	if err := printPlan(event, plan, showBodies); err != nil {
		return err
	}
	return jobs.Verdict(plan, cfg.Review.FailureExitCode)
}

// splitArgs separates positional arguments from the ones after "--".
func splitArgs(cmd *cobra.Command, args []string) (positional, passthrough []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, nil
	}
	return args[:dash], args[dash:]
}
