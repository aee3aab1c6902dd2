package reconcile

import (
	"io"
	"log/slog"
	"slices"

	"github.com/sevigo/lint-warden/internal/core"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMarker() Marker {
	return NewMarker("erb_lint")
}

func testEngine(postOutsideDiff bool) *Engine {
	return NewEngine(testMarker(), Options{Title: "Erb Lint", PostOutsideDiff: postOutsideDiff}, discardLogger())
}

func lines(ls ...int) map[int]struct{} {
	set := make(map[int]struct{}, len(ls))
	for _, l := range ls {
		set[l] = struct{}{}
	}
	return set
}

// fakeHost keeps comments the way the host would and applies plans to them.
type fakeHost struct {
	nextID int64
	review map[int64]core.Comment
	issue  map[int64]core.Comment
}

func newFakeHost() *fakeHost {
	return &fakeHost{nextID: 100, review: map[int64]core.Comment{}, issue: map[int64]core.Comment{}}
}

func (h *fakeHost) apply(plan *Plan) {
	for _, a := range plan.Actions {
		comments := h.review
		if a.Target == TargetSummary {
			comments = h.issue
		}
		switch a.Kind {
		case ActionCreate:
			h.nextID++
			comments[h.nextID] = core.Comment{ID: h.nextID, Path: a.Key.Path, Line: a.Key.Line, Body: a.Body}
		case ActionUpdate:
			c := comments[a.CommentID]
			c.Body = a.Body
			comments[a.CommentID] = c
		case ActionDelete:
			delete(comments, a.CommentID)
		}
	}
}

func sortedComments(m map[int64]core.Comment) []core.Comment {
	out := make([]core.Comment, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b core.Comment) int { return int(a.ID - b.ID) })
	return out
}

func (h *fakeHost) inventory() *Inventory {
	return BuildInventory(sortedComments(h.review), sortedComments(h.issue), testMarker(), discardLogger())
}
