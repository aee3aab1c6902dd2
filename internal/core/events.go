// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"fmt"
	"os"

	"github.com/google/go-github/v73/github"
)

// GitHubEvent represents a simplified, internal view of a pull request event.
type GitHubEvent struct {
	// Repository details
	RepoOwner    string
	RepoName     string
	RepoFullName string
	RepoCloneURL string

	PRNumber int
	HeadSHA  string

	InstallationID int64
}

// reconcileActions lists the pull_request actions that change the diff or make
// the pull request reviewable again.
var reconcileActions = map[string]bool{
	"opened":           true,
	"synchronize":      true,
	"reopened":         true,
	"ready_for_review": true,
}

// EventFromPullRequest transforms a raw GitHub PullRequestEvent into the
// application's internal GitHubEvent representation. It rejects payloads that
// lack the repository, the pull request number or the head commit, because
// no comment can be anchored without them.
func EventFromPullRequest(event *github.PullRequestEvent) (*GitHubEvent, error) {
	pr := event.GetPullRequest()
	if pr == nil {
		return nil, fmt.Errorf("event has no pull_request object")
	}

	repo := event.GetRepo()
	if repo == nil || repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return nil, fmt.Errorf("repository or owner information is missing from the event")
	}

	if pr.GetNumber() <= 0 {
		return nil, fmt.Errorf("invalid pull request number: %d", pr.GetNumber())
	}

	headSHA := pr.GetHead().GetSHA()
	if headSHA == "" {
		return nil, fmt.Errorf("pull request %d has no head SHA", pr.GetNumber())
	}

	return &GitHubEvent{
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		RepoCloneURL:   repo.GetCloneURL(),
		PRNumber:       pr.GetNumber(),
		HeadSHA:        headSHA,
		InstallationID: event.GetInstallation().GetID(),
	}, nil
}

// ShouldReconcile reports whether a webhook action warrants a new run.
func ShouldReconcile(action string) bool {
	return reconcileActions[action]
}

// EventFromFile reads the pull_request webhook payload the CI runner stores at
// path and converts it like EventFromPullRequest.
func EventFromFile(path string) (*GitHubEvent, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event payload: %w", err)
	}
	raw, err := github.ParseWebHook("pull_request", payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event payload %s: %w", path, err)
	}
	event, ok := raw.(*github.PullRequestEvent)
	if !ok {
		return nil, fmt.Errorf("event payload %s is not a pull_request event", path)
	}
	return EventFromPullRequest(event)
}
