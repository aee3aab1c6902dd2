// Package gitutil checks out pull request heads and parses pull request references.
package gitutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/sevigo/lint-warden/internal/util"
)

// Cloner checks out the head commit of a pull request into a temporary directory.
type Cloner struct {
	logger *slog.Logger
}

// NewCloner returns a new Cloner.
func NewCloner(logger *slog.Logger) *Cloner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cloner{logger: logger}
}

// CheckoutPullRequest clones repoURL, fetches the pull request head ref so that
// commits from forks are present, and checks out sha. The returned cleanup
// removes the directory.
func (c *Cloner) CheckoutPullRequest(ctx context.Context, repoURL string, prNumber int, sha, token string) (string, func(), error) {
	auth, err := authFor(repoURL, token)
	if err != nil {
		return "", nil, err
	}

	repoPath, err := os.MkdirTemp("", util.WorkspacePattern(repoURL, prNumber))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	cleanup := func() {
		c.logger.Info("cleaning up temporary repository", "path", repoPath)
		if removeErr := os.RemoveAll(repoPath); removeErr != nil {
			c.logger.Error("failed to remove temp repo", "path", repoPath, "error", removeErr)
		}
	}

	c.logger.InfoContext(ctx, "cloning repository", "url", repoURL, "path", repoPath)
	repo, err := git.PlainCloneContext(ctx, repoPath, false, &git.CloneOptions{
		URL:        repoURL,
		Auth:       auth,
		NoCheckout: true,
	})
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("git clone failed: %w", err)
	}

	ref := PullRequestRefSpec(prNumber)
	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: git.DefaultRemoteName,
		RefSpecs:   []gitconfig.RefSpec{ref},
		Auth:       auth,
		Force:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		cleanup()
		return "", nil, fmt.Errorf("git fetch %s failed: %w", ref, err)
	}

	if err := checkout(repo, sha); err != nil {
		cleanup()
		return "", nil, err
	}

	c.logger.InfoContext(ctx, "repository cloned and checked out successfully", "sha", sha)
	return repoPath, cleanup, nil
}

// PullRequestRefSpec maps the host's pull request head ref to a local remote ref.
func PullRequestRefSpec(prNumber int) gitconfig.RefSpec {
	return gitconfig.RefSpec(fmt.Sprintf("+refs/pull/%d/head:refs/remotes/origin/pr/%d", prNumber, prNumber))
}

func checkout(repo *git.Repository, sha string) error {
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(sha), Force: true}); err != nil {
		return fmt.Errorf("git checkout %s failed: %w", sha, err)
	}
	return nil
}

// authFor returns token auth for http(s) remotes and none for local paths.
func authFor(repoURL, token string) (transport.AuthMethod, error) {
	if !strings.Contains(repoURL, "://") {
		return nil, nil
	}
	if !strings.HasPrefix(repoURL, "https://") && !strings.HasPrefix(repoURL, "http://") {
		return nil, fmt.Errorf("invalid repository URL: %s", repoURL)
	}
	if token == "" {
		return nil, nil
	}
	return &http.BasicAuth{Username: "x-access-token", Password: token}, nil
}
