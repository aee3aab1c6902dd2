package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pullRequestEvent() *github.PullRequestEvent {
	return &github.PullRequestEvent{
		Action: github.Ptr("synchronize"),
		PullRequest: &github.PullRequest{
			Number: github.Ptr(7),
			Head:   &github.PullRequestBranch{SHA: github.Ptr("abc123")},
		},
		Repo: &github.Repository{
			Name:     github.Ptr("shop"),
			FullName: github.Ptr("acme/shop"),
			CloneURL: github.Ptr("https://github.com/acme/shop.git"),
			Owner:    &github.User{Login: github.Ptr("acme")},
		},
		Installation: &github.Installation{ID: github.Ptr(int64(99))},
	}
}

func TestEventFromPullRequest(t *testing.T) {
	ev, err := EventFromPullRequest(pullRequestEvent())
	require.NoError(t, err)
	assert.Equal(t, "acme", ev.RepoOwner)
	assert.Equal(t, "shop", ev.RepoName)
	assert.Equal(t, "acme/shop", ev.RepoFullName)
	assert.Equal(t, 7, ev.PRNumber)
	assert.Equal(t, "abc123", ev.HeadSHA)
	assert.Equal(t, int64(99), ev.InstallationID)
}

func TestEventFromPullRequest_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *github.PullRequestEvent)
	}{
		{"missing pull request", func(e *github.PullRequestEvent) { e.PullRequest = nil }},
		{"missing owner", func(e *github.PullRequestEvent) { e.Repo.Owner = nil }},
		{"zero number", func(e *github.PullRequestEvent) { e.PullRequest.Number = github.Ptr(0) }},
		{"missing head sha", func(e *github.PullRequestEvent) { e.PullRequest.Head = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := pullRequestEvent()
			tt.mutate(e)
			_, err := EventFromPullRequest(e)
			assert.Error(t, err)
		})
	}
}

func TestShouldReconcile(t *testing.T) {
	assert.True(t, ShouldReconcile("synchronize"))
	assert.True(t, ShouldReconcile("opened"))
	assert.False(t, ShouldReconcile("closed"))
	assert.False(t, ShouldReconcile("labeled"))
}

func TestEventFromFile(t *testing.T) {
	payload := `{
  "action": "synchronize",
  "number": 7,
  "pull_request": {"number": 7, "head": {"sha": "abc123"}},
  "repository": {"name": "shop", "full_name": "acme/shop", "clone_url": "https://github.com/acme/shop.git", "owner": {"login": "acme"}}
}`
	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	ev, err := EventFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "acme/shop", ev.RepoFullName)
	assert.Equal(t, 7, ev.PRNumber)
	assert.Equal(t, "abc123", ev.HeadSHA)

	_, err = EventFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = EventFromFile(bad)
	assert.Error(t, err)
}
