package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/lint-warden/internal/core"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(server.Client())
	require.NoError(t, setBaseURL(client, server.URL))

	return NewGitHubClient(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGetChangedFiles_Pagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/shop/pulls/7/files", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<http://%s%s?page=2>; rel="next"`, r.Host, r.URL.Path))
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"filename": "a.erb", "status": "modified", "patch": "@@ -1,1 +1,2 @@\n a\n+b"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"filename": "gone.erb", "status": "removed"},
		})
	})

	client := newTestClient(t, mux)
	files, err := client.GetChangedFiles(context.Background(), "acme", "shop", 7)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "a.erb", files[0].Path)
	assert.Equal(t, map[int]struct{}{1: {}, 2: {}}, files[0].ChangedLines)
	assert.Equal(t, "gone.erb", files[1].Path)
	assert.True(t, files[1].Removed())
	assert.Empty(t, files[1].ChangedLines)
}

func TestListReviewComments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/shop/pulls/7/comments", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 42, "path": "a.erb", "line": 5, "body": "hello"},
			{"id": 43, "path": "a.erb", "line": nil, "body": "outdated"},
		})
	})

	client := newTestClient(t, mux)
	comments, err := client.ListReviewComments(context.Background(), "acme", "shop", 7)
	require.NoError(t, err)
	assert.Equal(t, []core.Comment{
		{ID: 42, Path: "a.erb", Line: 5, Body: "hello"},
		{ID: 43, Path: "a.erb", Line: 0, Body: "outdated"},
	}, comments)
}

func TestListIssueComments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/shop/issues/7/comments", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{{"id": 9, "body": "summary"}})
	})

	client := newTestClient(t, mux)
	comments, err := client.ListIssueComments(context.Background(), "acme", "shop", 7)
	require.NoError(t, err)
	assert.Equal(t, []core.Comment{{ID: 9, Body: "summary"}}, comments)
}

func TestCreateReviewComment(t *testing.T) {
	var got map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/shop/pulls/7/comments", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 77}`))
	})

	client := newTestClient(t, mux)
	id, err := client.CreateReviewComment(context.Background(), "acme", "shop", 7, DraftReviewComment{
		Path: "a.erb", Line: 5, Body: "body", CommitID: "abc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(77), id)
	assert.Equal(t, "a.erb", got["path"])
	assert.Equal(t, float64(5), got["line"])
	assert.Equal(t, "RIGHT", got["side"])
	assert.Equal(t, "abc", got["commit_id"])
	assert.Equal(t, "body", got["body"])
}

func TestUpdateAndDeleteComments(t *testing.T) {
	var calls []string
	mux := http.NewServeMux()
	record := func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 1}`))
	}
	mux.HandleFunc("/repos/acme/shop/pulls/comments/1", record)
	mux.HandleFunc("/repos/acme/shop/issues/comments/2", record)

	client := newTestClient(t, mux)
	ctx := context.Background()
	require.NoError(t, client.UpdateReviewComment(ctx, "acme", "shop", 1, "new"))
	require.NoError(t, client.DeleteReviewComment(ctx, "acme", "shop", 1))
	require.NoError(t, client.UpdateComment(ctx, "acme", "shop", 2, "new"))
	require.NoError(t, client.DeleteComment(ctx, "acme", "shop", 2))

	assert.Equal(t, []string{
		"PATCH /repos/acme/shop/pulls/comments/1",
		"DELETE /repos/acme/shop/pulls/comments/1",
		"PATCH /repos/acme/shop/issues/comments/2",
		"DELETE /repos/acme/shop/issues/comments/2",
	}, calls)
}

func TestClient_SurfacesAPIErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message": "Resource not accessible by integration"}`, http.StatusForbidden)
	})

	client := newTestClient(t, mux)
	ctx := context.Background()

	_, err := client.ListReviewComments(ctx, "acme", "shop", 7)
	assert.Error(t, err)
	_, err = client.CreateComment(ctx, "acme", "shop", 7, "x")
	assert.Error(t, err)
	assert.Error(t, client.DeleteReviewComment(ctx, "acme", "shop", 1))
}

func TestNewPATClient_BaseURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := NewPATClient("tok", "https://ghe.example.com/api/v3", logger)
	require.NoError(t, err)

	gc, ok := client.(*gitHubClient)
	require.True(t, ok)
	assert.Equal(t, "https://ghe.example.com/api/v3/", gc.client.BaseURL.String())
}

func TestNewPATClient_ListsAreNeverServedFromCache(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/shop/issues/7/comments", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "private, max-age=60")
		w.Header().Set("ETag", `"v1"`)
		if hits.Add(1) == 1 {
			_ = json.NewEncoder(w).Encode([]map[string]any{{"id": 9, "body": "summary"}})
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewPATClient("tok", server.URL, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	ctx := context.Background()

	first, err := client.ListIssueComments(ctx, "acme", "shop", 7)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := client.ListIssueComments(ctx, "acme", "shop", 7)
	require.NoError(t, err)
	assert.Empty(t, second, "deleted comment must not be replayed")
	assert.Equal(t, int32(2), hits.Load())
}

func TestNewPATClient_SecondaryRateLimitIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/shop/issues/7/comments", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "You have exceeded a secondary rate limit. Please wait a few minutes before you try again.",` +
			` "documentation_url": "https://docs.github.com/rest/overview/rate-limits-for-the-rest-api#about-secondary-rate-limits"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewPATClient("tok", server.URL, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	_, err = client.ListIssueComments(context.Background(), "acme", "shop", 7)
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}
