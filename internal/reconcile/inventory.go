package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/lint-warden/internal/core"
	"github.com/sevigo/lint-warden/internal/github"
)

// Inventory is the tool-authored comment state of a pull request, captured
// once before any action is applied.
type Inventory struct {
	Inline  map[Key]core.Comment
	Summary *core.Comment
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{Inline: make(map[Key]core.Comment)}
}

// FetchInventory lists the review and issue comments of the pull request
// concurrently and indexes the ones carrying the tool's marker.
func FetchInventory(ctx context.Context, client github.Client, event *core.GitHubEvent, marker Marker, logger *slog.Logger) (*Inventory, error) {
	var review, issue []core.Comment
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if review, err = client.ListReviewComments(gctx, event.RepoOwner, event.RepoName, event.PRNumber); err != nil {
			return fmt.Errorf("failed to fetch review comments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if issue, err = client.ListIssueComments(gctx, event.RepoOwner, event.RepoName, event.PRNumber); err != nil {
			return fmt.Errorf("failed to fetch issue comments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	inv := BuildInventory(review, issue, marker, logger)
	logger.Info("Fetched existing comments",
		"review_comments", len(review),
		"issue_comments", len(issue),
		"owned_inline", len(inv.Inline),
		"has_summary", inv.Summary != nil,
	)
	return inv, nil
}

// BuildInventory partitions fetched comments. Comments without the marker are
// foreign and ignored. Ambiguous tool comments are logged and left alone: the
// first comment for an identity wins and later ones are never touched.
func BuildInventory(review, issue []core.Comment, marker Marker, logger *slog.Logger) *Inventory {
	inv := NewInventory()

	for _, c := range review {
		id, ok := marker.Identity(c.Body)
		if !ok {
			continue
		}
		key, ok := ParseKey(id)
		if !ok {
			logger.Warn("Ignoring review comment with unrecognized marker", "comment_id", c.ID, "marker", id)
			continue
		}
		if c.Line == 0 {
			logger.Warn("Ignoring outdated review comment", "comment_id", c.ID, "path", key.Path, "line", key.Line)
			continue
		}
		if first, dup := inv.Inline[key]; dup {
			logger.Warn("Duplicate inline comment, leaving it for manual cleanup",
				"comment_id", c.ID, "canonical_id", first.ID, "path", key.Path, "line", key.Line)
			continue
		}
		inv.Inline[key] = c
	}

	for _, c := range issue {
		id, ok := marker.Identity(c.Body)
		if !ok || !IsOutsideDiff(id) {
			continue
		}
		if inv.Summary != nil {
			logger.Warn("Duplicate outside-diff summary comment, leaving it for manual cleanup",
				"comment_id", c.ID, "canonical_id", inv.Summary.ID)
			continue
		}
		summary := c
		inv.Summary = &summary
	}
	return inv
}
