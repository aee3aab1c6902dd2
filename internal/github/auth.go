package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/lint-warden/internal/config"
)

// CreateInstallationClient authenticates as one installation of the GitHub App.
// It returns the client together with the raw installation token, which the
// cloner needs to fetch private repositories.
func CreateInstallationClient(ctx context.Context, cfg *config.Config, installationID int64, logger *slog.Logger) (Client, string, error) {
	log := logger.With("installation_id", installationID)

	token, err := installationToken(ctx, cfg.GitHub, installationID)
	if err != nil {
		return nil, "", err
	}
	log.Info("Created installation token", "expires_at", token.GetExpiresAt())

	// Installation tokens are short lived; one client serves a single job.
	auth := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.GetToken()}),
	}
	client, err := newRESTClient(auth, cfg.GitHub.APIURL, log)
	if err != nil {
		return nil, "", err
	}
	return NewGitHubClient(client, log), token.GetToken(), nil
}

// installationToken exchanges an App JWT for an installation access token.
func installationToken(ctx context.Context, cfg config.GitHubConfig, installationID int64) (*github.InstallationToken, error) {
	appTransport, err := ghinstallation.NewAppsTransportKeyFromFile(http.DefaultTransport, cfg.AppID, cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport from %s: %w", cfg.PrivateKeyPath, err)
	}
	if cfg.APIURL != "" {
		appTransport.BaseURL = strings.TrimSuffix(cfg.APIURL, "/")
	}

	appClient := github.NewClient(&http.Client{Transport: appTransport})
	if cfg.APIURL != "" {
		if err := setBaseURL(appClient, cfg.APIURL); err != nil {
			return nil, err
		}
	}

	token, _, err := appClient.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation token for installation ID %d: %w", installationID, err)
	}
	if token.GetToken() == "" {
		return nil, fmt.Errorf("received an empty installation token for installation ID %d", installationID)
	}
	return token, nil
}
