package reconcile

import (
	"strings"

	"github.com/sevigo/lint-warden/internal/core"
)

// RangeIndex answers whether a line of a file can carry an inline review
// comment. It is built once from the pull request's changed files and is
// read-only afterwards.
type RangeIndex struct {
	lines map[string]map[int]struct{}
}

// NewRangeIndex indexes the commentable lines of every changed file.
func NewRangeIndex(files []core.ChangedFile) *RangeIndex {
	idx := &RangeIndex{lines: make(map[string]map[int]struct{}, len(files))}
	for _, f := range files {
		set, ok := idx.lines[normalizePath(f.Path)]
		if !ok {
			set = make(map[int]struct{}, len(f.ChangedLines))
			idx.lines[normalizePath(f.Path)] = set
		}
		for line := range f.ChangedLines {
			set[line] = struct{}{}
		}
	}
	return idx
}

// IsInDiff reports whether line of path is part of the reviewable diff.
// A path the pull request does not touch is never in the diff.
func (r *RangeIndex) IsInDiff(path string, line int) bool {
	if r == nil || line < 1 {
		return false
	}
	set, ok := r.lines[normalizePath(path)]
	if !ok {
		return false
	}
	_, ok = set[line]
	return ok
}

// Files returns the number of indexed files.
func (r *RangeIndex) Files() int {
	if r == nil {
		return 0
	}
	return len(r.lines)
}

func normalizePath(p string) string {
	return strings.TrimPrefix(p, "./")
}
