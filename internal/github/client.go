// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit/github_secondary_ratelimit"
	"github.com/google/go-github/v73/github"

	"github.com/sevigo/lint-warden/internal/core"
)

// DraftReviewComment is an inline comment to be anchored to one line of the
// pull request head commit.
type DraftReviewComment struct {
	Path     string
	Line     int
	Body     string
	CommitID string
}

// Client defines a set of operations for interacting with the GitHub API,
// focusing on pull request files, review comments, issue comments and check runs.
//
//go:generate mockgen -destination=../../mocks/mock_github_client.go -package=mocks . Client
type Client interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]core.ChangedFile, error)
	ListReviewComments(ctx context.Context, owner, repo string, number int) ([]core.Comment, error)
	ListIssueComments(ctx context.Context, owner, repo string, number int) ([]core.Comment, error)
	CreateReviewComment(ctx context.Context, owner, repo string, number int, comment DraftReviewComment) (int64, error)
	UpdateReviewComment(ctx context.Context, owner, repo string, commentID int64, body string) error
	DeleteReviewComment(ctx context.Context, owner, repo string, commentID int64) error
	CreateComment(ctx context.Context, owner, repo string, number int, body string) (int64, error)
	UpdateComment(ctx context.Context, owner, repo string, commentID int64, body string) error
	DeleteComment(ctx context.Context, owner, repo string, commentID int64) error
	CreateCheckRun(ctx context.Context, owner, repo string, opts github.CreateCheckRunOptions) (*github.CheckRun, error)
	UpdateCheckRun(ctx context.Context, owner, repo string, checkRunID int64, opts github.UpdateCheckRunOptions) (*github.CheckRun, error)
}

type gitHubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewGitHubClient wraps the official go-github client to provide a focused,
// testable interface for application-specific GitHub operations.
func NewGitHubClient(client *github.Client, logger *slog.Logger) Client {
	return &gitHubClient{client: client, logger: logger}
}

// NewPATClient creates a client authenticated with a token, as provided to CI jobs.
func NewPATClient(token, apiURL string, logger *slog.Logger) (Client, error) {
	client, err := newRESTClient(nil, apiURL, logger)
	if err != nil {
		return nil, err
	}
	return NewGitHubClient(client.WithAuthToken(token), logger), nil
}

// newRESTClient puts go-github-ratelimit over base. Requests are refused while
// a known primary limit is exhausted, and a secondary limit response is
// returned to the caller instead of being retried after a sleep. A nil base
// uses the default transport.
func newRESTClient(base http.RoundTripper, apiURL string, logger *slog.Logger) (*github.Client, error) {
	onSecondaryLimit := func(cb *github_secondary_ratelimit.CallbackContext) {
		logger.Warn("secondary rate limit hit, not retrying",
			"method", cb.Request.Method, "url", cb.Request.URL.Path, "reset_at", cb.ResetTime)
	}
	client := github.NewClient(github_ratelimit.NewClient(base,
		github_secondary_ratelimit.WithSingleSleepLimit(0, onSecondaryLimit),
	))

	if apiURL != "" {
		if err := setBaseURL(client, apiURL); err != nil {
			return nil, err
		}
	}
	return client, nil
}

func setBaseURL(client *github.Client, apiURL string) error {
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	u, err := url.Parse(apiURL)
	if err != nil {
		return fmt.Errorf("invalid GitHub API URL %q: %w", apiURL, err)
	}
	client.BaseURL = u
	return nil
}

// GetPullRequest retrieves a single pull request by its number.
func (g *gitHubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, _, err := g.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		g.logger.Error("failed to get pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
		return nil, fmt.Errorf("getting pull request %s/%s#%d: %w", owner, repo, number, err)
	}
	return pr, nil
}

// GetChangedFiles retrieves the list of files modified in a pull request,
// each with the new-side line numbers of its patch.
// It handles pagination automatically to ensure all files are fetched
// from the GitHub API, which returns a maximum of 100 files per page.
func (g *gitHubClient) GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]core.ChangedFile, error) {
	var allFiles []core.ChangedFile
	opts := &github.ListOptions{PerPage: 100}

	for {
		files, resp, err := g.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list files for pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, fmt.Errorf("listing files for %s/%s#%d: %w", owner, repo, number, err)
		}

		for _, file := range files {
			allFiles = append(allFiles, core.ChangedFile{
				Path:         file.GetFilename(),
				Status:       file.GetStatus(),
				ChangedLines: ParseValidLinesFromPatch(file.GetPatch(), g.logger),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allFiles, nil
}

// ListReviewComments retrieves every inline review comment on a pull request.
func (g *gitHubClient) ListReviewComments(ctx context.Context, owner, repo string, number int) ([]core.Comment, error) {
	var comments []core.Comment
	opts := &github.PullRequestListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}

	for {
		page, resp, err := g.client.PullRequests.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list review comments", "owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, fmt.Errorf("listing review comments for %s/%s#%d: %w", owner, repo, number, err)
		}

		for _, c := range page {
			comments = append(comments, core.Comment{
				ID:   c.GetID(),
				Path: c.GetPath(),
				Line: c.GetLine(),
				Body: c.GetBody(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return comments, nil
}

// ListIssueComments retrieves every pull-request-wide comment.
func (g *gitHubClient) ListIssueComments(ctx context.Context, owner, repo string, number int) ([]core.Comment, error) {
	var comments []core.Comment
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}

	for {
		page, resp, err := g.client.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list issue comments", "owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, fmt.Errorf("listing issue comments for %s/%s#%d: %w", owner, repo, number, err)
		}

		for _, c := range page {
			comments = append(comments, core.Comment{ID: c.GetID(), Body: c.GetBody()})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return comments, nil
}

// CreateReviewComment anchors a new comment to a line on the right side of the diff.
func (g *gitHubClient) CreateReviewComment(ctx context.Context, owner, repo string, number int, comment DraftReviewComment) (int64, error) {
	created, _, err := g.client.PullRequests.CreateComment(ctx, owner, repo, number, &github.PullRequestComment{
		Body:     github.Ptr(comment.Body),
		Path:     github.Ptr(comment.Path),
		Line:     github.Ptr(comment.Line),
		Side:     github.Ptr("RIGHT"),
		CommitID: github.Ptr(comment.CommitID),
	})
	if err != nil {
		g.logger.Error("failed to create review comment", "owner", owner, "repo", repo, "pr", number,
			"path", comment.Path, "line", comment.Line, "error", err)
		return 0, fmt.Errorf("creating review comment on %s:%d: %w", comment.Path, comment.Line, err)
	}
	return created.GetID(), nil
}

// UpdateReviewComment replaces the body of an existing review comment.
func (g *gitHubClient) UpdateReviewComment(ctx context.Context, owner, repo string, commentID int64, body string) error {
	_, _, err := g.client.PullRequests.EditComment(ctx, owner, repo, commentID, &github.PullRequestComment{Body: github.Ptr(body)})
	if err != nil {
		g.logger.Error("failed to update review comment", "owner", owner, "repo", repo, "comment_id", commentID, "error", err)
		return fmt.Errorf("updating review comment %d: %w", commentID, err)
	}
	return nil
}

// DeleteReviewComment removes a review comment.
func (g *gitHubClient) DeleteReviewComment(ctx context.Context, owner, repo string, commentID int64) error {
	_, err := g.client.PullRequests.DeleteComment(ctx, owner, repo, commentID)
	if err != nil {
		g.logger.Error("failed to delete review comment", "owner", owner, "repo", repo, "comment_id", commentID, "error", err)
		return fmt.Errorf("deleting review comment %d: %w", commentID, err)
	}
	return nil
}

// CreateComment creates a new comment on a pull request.
func (g *gitHubClient) CreateComment(ctx context.Context, owner, repo string, number int, body string) (int64, error) {
	created, _, err := g.client.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{Body: github.Ptr(body)})
	if err != nil {
		g.logger.Error("failed to create comment", "owner", owner, "repo", repo, "pr", number, "error", err)
		return 0, fmt.Errorf("creating comment on %s/%s#%d: %w", owner, repo, number, err)
	}
	return created.GetID(), nil
}

// UpdateComment replaces the body of a pull request comment.
func (g *gitHubClient) UpdateComment(ctx context.Context, owner, repo string, commentID int64, body string) error {
	_, _, err := g.client.Issues.EditComment(ctx, owner, repo, commentID, &github.IssueComment{Body: github.Ptr(body)})
	if err != nil {
		g.logger.Error("failed to update comment", "owner", owner, "repo", repo, "comment_id", commentID, "error", err)
		return fmt.Errorf("updating comment %d: %w", commentID, err)
	}
	return nil
}

// DeleteComment removes a pull request comment.
func (g *gitHubClient) DeleteComment(ctx context.Context, owner, repo string, commentID int64) error {
	_, err := g.client.Issues.DeleteComment(ctx, owner, repo, commentID)
	if err != nil {
		g.logger.Error("failed to delete comment", "owner", owner, "repo", repo, "comment_id", commentID, "error", err)
		return fmt.Errorf("deleting comment %d: %w", commentID, err)
	}
	return nil
}

// CreateCheckRun creates a new check run.
func (g *gitHubClient) CreateCheckRun(ctx context.Context, owner, repo string, opts github.CreateCheckRunOptions) (*github.CheckRun, error) {
	checkRun, _, err := g.client.Checks.CreateCheckRun(ctx, owner, repo, opts)
	if err != nil {
		g.logger.Error("failed to create check run", "owner", owner, "repo", repo, "error", err)
		return nil, err
	}
	return checkRun, nil
}

// UpdateCheckRun updates an existing check run.
func (g *gitHubClient) UpdateCheckRun(ctx context.Context, owner, repo string, checkRunID int64, opts github.UpdateCheckRunOptions) (*github.CheckRun, error) {
	checkRun, _, err := g.client.Checks.UpdateCheckRun(ctx, owner, repo, checkRunID, opts)
	if err != nil {
		g.logger.Error("failed to update check run", "owner", owner, "repo", repo, "checkRunID", checkRunID, "error", err)
	}
	return checkRun, err
}
