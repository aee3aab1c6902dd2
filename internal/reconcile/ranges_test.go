package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/lint-warden/internal/core"
)

func TestRangeIndex_IsInDiff(t *testing.T) {
	idx := NewRangeIndex([]core.ChangedFile{
		{Path: "app/views/a.html.erb", ChangedLines: lines(1, 10, 20)},
		{Path: "app/views/b.html.erb", ChangedLines: lines(5)},
		{Path: "app/views/removed.html.erb", Status: "removed"},
	})

	tests := []struct {
		name string
		path string
		line int
		want bool
	}{
		{"changed line", "app/views/a.html.erb", 10, true},
		{"unchanged line", "app/views/a.html.erb", 11, false},
		{"dot slash prefix", "./app/views/b.html.erb", 5, true},
		{"file not in pull request", "app/views/other.html.erb", 1, false},
		{"removed file", "app/views/removed.html.erb", 1, false},
		{"zero line", "app/views/a.html.erb", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idx.IsInDiff(tt.path, tt.line))
		})
	}
	assert.Equal(t, 3, idx.Files())
}

func TestRangeIndex_DoesNotAliasInput(t *testing.T) {
	changed := lines(1)
	idx := NewRangeIndex([]core.ChangedFile{{Path: "a.erb", ChangedLines: changed}})
	changed[2] = struct{}{}

	assert.False(t, idx.IsInDiff("a.erb", 2))
}

func TestRangeIndex_Nil(t *testing.T) {
	var idx *RangeIndex
	assert.False(t, idx.IsInDiff("a.erb", 1))
	assert.Equal(t, 0, idx.Files())
}
