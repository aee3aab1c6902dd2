package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/lint-warden/internal/config"
	"github.com/sevigo/lint-warden/internal/core"
)

const secret = "s3cret"

type recordingDispatcher struct {
	events []*core.GitHubEvent
	err    error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, event *core.GitHubEvent) error {
	if d.err != nil {
		return d.err
	}
	d.events = append(d.events, event)
	return nil
}

func pullRequestPayload(action string) string {
	return `{
  "action": "` + action + `",
  "number": 7,
  "pull_request": {"number": 7, "head": {"sha": "deadbeef"}},
  "repository": {"name": "shop", "full_name": "acme/shop", "clone_url": "https://github.com/acme/shop.git", "owner": {"login": "acme"}},
  "installation": {"id": 99}
}`
}

func signedRequest(t *testing.T, eventType, body, key string) *http.Request {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(key))
	_, _ = mac.Write([]byte(body))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", eventType)
	req.Header.Set("X-Hub-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func newHandler(d core.JobDispatcher) *WebhookHandler {
	cfg := &config.Config{GitHub: config.GitHubConfig{WebhookSecret: secret}}
	return NewWebhookHandler(cfg, d, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestWebhookHandler(t *testing.T) {
	tests := []struct {
		name        string
		eventType   string
		body        string
		key         string
		dispatchErr error
		wantStatus  int
		wantEvents  int
	}{
		{name: "synchronize dispatches", eventType: "pull_request", body: pullRequestPayload("synchronize"), key: secret, wantStatus: http.StatusAccepted, wantEvents: 1},
		{name: "opened dispatches", eventType: "pull_request", body: pullRequestPayload("opened"), key: secret, wantStatus: http.StatusAccepted, wantEvents: 1},
		{name: "closed is ignored", eventType: "pull_request", body: pullRequestPayload("closed"), key: secret, wantStatus: http.StatusOK},
		{name: "bad signature", eventType: "pull_request", body: pullRequestPayload("opened"), key: "wrong", wantStatus: http.StatusUnauthorized},
		{name: "ping", eventType: "ping", body: `{"zen": "Keep it logically awesome.", "hook_id": 5}`, key: secret, wantStatus: http.StatusOK},
		{name: "other event type", eventType: "issues", body: `{"action": "opened"}`, key: secret, wantStatus: http.StatusOK},
		{
			name: "missing head sha", eventType: "pull_request", key: secret, wantStatus: http.StatusBadRequest,
			body: `{"action": "opened", "pull_request": {"number": 7}, "repository": {"name": "shop", "owner": {"login": "acme"}}}`,
		},
		{name: "queue full", eventType: "pull_request", body: pullRequestPayload("reopened"), key: secret, dispatchErr: errors.New("job queue is full"), wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &recordingDispatcher{err: tt.dispatchErr}
			rec := httptest.NewRecorder()

			newHandler(d).Handle(rec, signedRequest(t, tt.eventType, tt.body, tt.key))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Len(t, d.events, tt.wantEvents)
		})
	}
}

func TestWebhookHandler_EventMapping(t *testing.T) {
	d := &recordingDispatcher{}
	rec := httptest.NewRecorder()

	newHandler(d).Handle(rec, signedRequest(t, "pull_request", pullRequestPayload("ready_for_review"), secret))

	require.Len(t, d.events, 1)
	assert.Equal(t, &core.GitHubEvent{
		RepoOwner:      "acme",
		RepoName:       "shop",
		RepoFullName:   "acme/shop",
		RepoCloneURL:   "https://github.com/acme/shop.git",
		PRNumber:       7,
		HeadSHA:        "deadbeef",
		InstallationID: 99,
	}, d.events[0])
}

func TestWebhookHandler_Ping(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(&recordingDispatcher{}).Handle(rec, signedRequest(t, "ping", `{"zen": "Design for failure.", "hook_id": 5}`, secret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}
