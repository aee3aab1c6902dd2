package github

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/lint-warden/internal/config"
)

func writeTestKey(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "app.pem")
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))
	return path
}

func TestCreateInstallationClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /app/installations/42/access_tokens", func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "), "app JWT expected")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "ghs_test", "expires_at": "2030-01-01T00:00:00Z"})
	})
	mux.HandleFunc("GET /repos/acme/shop/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ghs_test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"number": 7, "head": map[string]any{"sha": "abc"}})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := &config.Config{GitHub: config.GitHubConfig{
		AppID:          1,
		PrivateKeyPath: writeTestKey(t),
		APIURL:         server.URL + "/",
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, token, err := CreateInstallationClient(context.Background(), cfg, 42, logger)
	require.NoError(t, err)
	assert.Equal(t, "ghs_test", token)

	pr, err := client.GetPullRequest(context.Background(), "acme", "shop", 7)
	require.NoError(t, err)
	assert.Equal(t, "abc", pr.GetHead().GetSHA())
}

func TestCreateInstallationClient_MissingKey(t *testing.T) {
	cfg := &config.Config{GitHub: config.GitHubConfig{AppID: 1, PrivateKeyPath: filepath.Join(t.TempDir(), "missing.pem")}}
	_, _, err := CreateInstallationClient(context.Background(), cfg, 42, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorContains(t, err, "missing.pem")
}
