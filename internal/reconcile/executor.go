package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/lint-warden/internal/core"
	"github.com/sevigo/lint-warden/internal/github"
)

// Executor applies planned actions to a pull request, one API call each.
type Executor struct {
	client github.Client
	logger *slog.Logger
}

// NewExecutor creates an Executor that mutates comments through client.
func NewExecutor(client github.Client, logger *slog.Logger) *Executor {
	return &Executor{client: client, logger: logger}
}

// Apply performs actions in order and stops at the first failure. Nothing is
// retried: the next run recomputes state from a fresh inventory.
func (x *Executor) Apply(ctx context.Context, event *core.GitHubEvent, actions []Action) error {
	for i, a := range actions {
		if err := x.apply(ctx, event, a); err != nil {
			return fmt.Errorf("action %d of %d (%s) failed: %w", i+1, len(actions), a, err)
		}
	}
	return nil
}

func (x *Executor) apply(ctx context.Context, event *core.GitHubEvent, a Action) error {
	owner, repo := event.RepoOwner, event.RepoName

	switch a.Target {
	case TargetInline:
		switch a.Kind {
		case ActionCreate:
			id, err := x.client.CreateReviewComment(ctx, owner, repo, event.PRNumber, github.DraftReviewComment{
				Path: a.Key.Path, Line: a.Key.Line, Body: a.Body, CommitID: a.CommitSHA,
			})
			if err != nil {
				return err
			}
			x.logger.Info("Commented on line", "path", a.Key.Path, "line", a.Key.Line, "comment_id", id)
			return nil
		case ActionUpdate:
			if err := x.client.UpdateReviewComment(ctx, owner, repo, a.CommentID, a.Body); err != nil {
				return err
			}
			x.logger.Info("Updated comment", "path", a.Key.Path, "line", a.Key.Line, "comment_id", a.CommentID)
			return nil
		case ActionDelete:
			if err := x.client.DeleteReviewComment(ctx, owner, repo, a.CommentID); err != nil {
				return err
			}
			x.logger.Info("Deleted resolved comment", "path", a.Key.Path, "line", a.Key.Line, "comment_id", a.CommentID)
			return nil
		}
	case TargetSummary:
		switch a.Kind {
		case ActionCreate:
			id, err := x.client.CreateComment(ctx, owner, repo, event.PRNumber, a.Body)
			if err != nil {
				return err
			}
			x.logger.Info("Posted outside-diff summary", "comment_id", id)
			return nil
		case ActionUpdate:
			if err := x.client.UpdateComment(ctx, owner, repo, a.CommentID, a.Body); err != nil {
				return err
			}
			x.logger.Info("Updated outside-diff summary", "comment_id", a.CommentID)
			return nil
		case ActionDelete:
			if err := x.client.DeleteComment(ctx, owner, repo, a.CommentID); err != nil {
				return err
			}
			x.logger.Info("Deleted resolved outside-diff summary", "comment_id", a.CommentID)
			return nil
		}
	}
	return fmt.Errorf("unsupported action %q on %q", a.Kind, a.Target)
}
