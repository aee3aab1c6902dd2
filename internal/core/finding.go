package core

import "fmt"

// Finding is a single lint violation reported by the linter.
type Finding struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// String renders the finding the way it appears inside a comment body.
func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Rule, f.Message)
}

// ChangedFile is a file touched by the pull request together with the
// line numbers on the new side of the diff that can receive a review comment.
type ChangedFile struct {
	Path         string
	Status       string // "added", "modified", "removed", "renamed", ...
	ChangedLines map[int]struct{}
}

// Removed reports whether the file was deleted by the pull request.
func (f ChangedFile) Removed() bool {
	return f.Status == "removed"
}

// Comment is a comment as it currently exists on the host. Line is zero for
// issue-level comments and for review comments GitHub reports as outdated.
type Comment struct {
	ID   int64
	Path string
	Line int
	Body string
}
