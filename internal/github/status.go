package github

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/lint-warden/internal/core"
)

// CheckRunName is the name shown for the check run in the pull request UI.
const CheckRunName = "Lint Warden"

// StatusUpdater reports the outcome of a run as a GitHub Check Run. The server
// has no process exit status, so the check run carries the build verdict.
type StatusUpdater interface {
	InProgress(ctx context.Context, event *core.GitHubEvent, title, summary string) (int64, error)
	Completed(ctx context.Context, event *core.GitHubEvent, checkRunID int64, conclusion, title, summary string) error
}

type statusUpdater struct {
	client Client
}

// NewStatusUpdater creates and returns a new instance of a statusUpdater.
func NewStatusUpdater(client Client) StatusUpdater {
	return &statusUpdater{client: client}
}

// InProgress creates a new GitHub Check Run with an "in_progress" status.
func (s *statusUpdater) InProgress(ctx context.Context, event *core.GitHubEvent, title, summary string) (int64, error) {
	opts := github.CreateCheckRunOptions{
		Name:    CheckRunName,
		HeadSHA: event.HeadSHA,
		Status:  github.Ptr("in_progress"),
		Output: &github.CheckRunOutput{
			Title:   &title,
			Summary: &summary,
		},
	}
	checkRun, err := s.client.CreateCheckRun(ctx, event.RepoOwner, event.RepoName, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to create check run: %w", err)
	}
	return checkRun.GetID(), nil
}

// Completed updates an existing GitHub Check Run to a "completed" status.
func (s *statusUpdater) Completed(ctx context.Context, event *core.GitHubEvent, checkRunID int64, conclusion, title, summary string) error {
	opts := github.UpdateCheckRunOptions{
		Name:        CheckRunName,
		Status:      github.Ptr("completed"),
		Conclusion:  &conclusion,
		CompletedAt: &github.Timestamp{Time: time.Now()},
		Output: &github.CheckRunOutput{
			Title:   &title,
			Summary: &summary,
		},
	}
	_, err := s.client.UpdateCheckRun(ctx, event.RepoOwner, event.RepoName, checkRunID, opts)
	return err
}

// Verdict turns finding counts into a check run conclusion, title and summary.
func Verdict(findings, outsideDiff int) (conclusion, title, summary string) {
	if findings == 0 {
		return "success", "No offenses", "The linter reported no offenses in the changed files."
	}

	title = fmt.Sprintf("%d %s found", findings, plural(findings, "offense", "offenses"))
	summary = fmt.Sprintf("The linter reported %d %s in the changed files.", findings, plural(findings, "offense", "offenses"))
	if outsideDiff > 0 {
		summary += fmt.Sprintf(" %d %s outside the diff and %s listed in a pull request comment.",
			outsideDiff, plural(outsideDiff, "is", "are"), plural(outsideDiff, "is", "are"))
	}
	return "failure", title, summary
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
