// Package handler provides the HTTP handlers of the webhook server.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/lint-warden/internal/config"
	"github.com/sevigo/lint-warden/internal/core"
)

// WebhookHandler turns signed pull_request deliveries into reconcile jobs.
type WebhookHandler struct {
	secret     []byte
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewWebhookHandler creates a handler that verifies deliveries with the
// configured webhook secret.
func NewWebhookHandler(cfg *config.Config, dispatcher core.JobDispatcher, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		secret:     []byte(cfg.GitHub.WebhookSecret),
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle verifies, parses and routes one webhook delivery.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	eventType := github.WebHookType(r)
	log := h.logger.With("delivery", github.DeliveryID(r), "event", eventType)

	payload, err := github.ValidatePayload(r, h.secret)
	if err != nil {
		log.Warn("rejected webhook with invalid signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		log.Error("could not parse webhook", "error", err)
		http.Error(w, "Could not parse webhook", http.StatusBadRequest)
		return
	}

	switch e := event.(type) {
	case *github.PingEvent:
		log.Info("received ping", "hook_id", e.GetHookID())
		_, _ = fmt.Fprint(w, "pong")
	case *github.PullRequestEvent:
		h.handlePullRequest(r.Context(), w, e, log)
	default:
		log.Debug("ignoring unhandled webhook event type")
		_, _ = fmt.Fprint(w, "Event type not handled")
	}
}

func (h *WebhookHandler) handlePullRequest(ctx context.Context, w http.ResponseWriter, event *github.PullRequestEvent, log *slog.Logger) {
	log = log.With("action", event.GetAction(), "repo", event.GetRepo().GetFullName(), "pr", event.GetNumber())
	if !core.ShouldReconcile(event.GetAction()) {
		log.Debug("ignoring pull request action")
		_, _ = fmt.Fprint(w, "Action ignored")
		return
	}

	prEvent, err := core.EventFromPullRequest(event)
	if err != nil {
		log.Warn("ignoring incomplete pull request event", "reason", err.Error())
		http.Error(w, "Incomplete pull request event", http.StatusBadRequest)
		return
	}

	// A full queue is transient; 503 lets the sender redeliver later.
	if err := h.dispatcher.Dispatch(ctx, prEvent); err != nil {
		log.Error("failed to dispatch reconcile job", "error", err)
		http.Error(w, "Failed to start reconcile job", http.StatusServiceUnavailable)
		return
	}

	log.Info("reconcile job dispatched", "head_sha", prEvent.HeadSHA)
	w.WriteHeader(http.StatusAccepted)
	_, _ = fmt.Fprint(w, "Reconcile job accepted")
}
