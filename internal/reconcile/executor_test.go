package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/lint-warden/internal/core"
	"github.com/sevigo/lint-warden/internal/github"
	"github.com/sevigo/lint-warden/mocks"
)

func testEvent() *core.GitHubEvent {
	return &core.GitHubEvent{RepoOwner: "acme", RepoName: "shop", PRNumber: 7, HeadSHA: headSHA}
}

func TestExecutor_Apply(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	gomock.InOrder(
		client.EXPECT().CreateReviewComment(gomock.Any(), "acme", "shop", 7, github.DraftReviewComment{
			Path: "a.erb", Line: 5, Body: "inline", CommitID: headSHA,
		}).Return(int64(1), nil),
		client.EXPECT().UpdateReviewComment(gomock.Any(), "acme", "shop", int64(42), "changed").Return(nil),
		client.EXPECT().DeleteReviewComment(gomock.Any(), "acme", "shop", int64(43)).Return(nil),
		client.EXPECT().CreateComment(gomock.Any(), "acme", "shop", 7, "summary").Return(int64(2), nil),
		client.EXPECT().UpdateComment(gomock.Any(), "acme", "shop", int64(50), "summary v2").Return(nil),
		client.EXPECT().DeleteComment(gomock.Any(), "acme", "shop", int64(51)).Return(nil),
	)

	actions := []Action{
		{Kind: ActionCreate, Target: TargetInline, Key: Key{Path: "a.erb", Line: 5}, CommitSHA: headSHA, Body: "inline"},
		{Kind: ActionUpdate, Target: TargetInline, CommentID: 42, Body: "changed"},
		{Kind: ActionDelete, Target: TargetInline, CommentID: 43},
		{Kind: ActionCreate, Target: TargetSummary, Body: "summary"},
		{Kind: ActionUpdate, Target: TargetSummary, CommentID: 50, Body: "summary v2"},
		{Kind: ActionDelete, Target: TargetSummary, CommentID: 51},
	}

	err := NewExecutor(client, discardLogger()).Apply(context.Background(), testEvent(), actions)
	require.NoError(t, err)
}

func TestExecutor_StopsAtFirstFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	client.EXPECT().DeleteReviewComment(gomock.Any(), "acme", "shop", int64(1)).Return(errors.New("403 Resource not accessible by integration"))

	actions := []Action{
		{Kind: ActionDelete, Target: TargetInline, CommentID: 1},
		{Kind: ActionDelete, Target: TargetInline, CommentID: 2},
	}

	err := NewExecutor(client, discardLogger()).Apply(context.Background(), testEvent(), actions)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "action 1 of 2")
	assert.Contains(t, err.Error(), "Resource not accessible")
}

func TestExecutor_UnknownAction(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	err := NewExecutor(client, discardLogger()).Apply(context.Background(), testEvent(), []Action{{Kind: "rename", Target: TargetInline}})
	assert.Error(t, err)
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "create inline a.erb:5", Action{Kind: ActionCreate, Target: TargetInline, Key: Key{"a.erb", 5}}.String())
	assert.Equal(t, "delete summary (comment 9)", Action{Kind: ActionDelete, Target: TargetSummary, CommentID: 9}.String())
}
