package reconcile

import (
	"fmt"
	"strconv"
	"strings"
)

// outsideDiffID identifies the single pull-request-wide summary comment.
const outsideDiffID = "outside-diff"

// Key identifies one inline comment: a file and the line it is anchored to.
type Key struct {
	Path string
	Line int
}

// String renders the key the way it is embedded in a comment marker.
func (k Key) String() string {
	return fmt.Sprintf("%s-%d", k.Path, k.Line)
}

// Marker writes and recognizes the hidden identity line embedded in every
// comment the tool posts, e.g. "<!-- erb_lint-comment-id: app/a.erb-5 -->".
// Comment bodies are never matched by content; the marker is the identity.
type Marker struct {
	label string
}

// NewMarker creates a Marker for comments owned by tool.
func NewMarker(tool string) Marker {
	return Marker{label: tool + "-comment-id: "}
}

// Inline returns the marker line for the inline comment at key.
func (m Marker) Inline(key Key) string {
	return m.line(key.String())
}

// OutsideDiff returns the marker line for the summary comment.
func (m Marker) OutsideDiff() string {
	return m.line(outsideDiffID)
}

func (m Marker) line(id string) string {
	return "<!-- " + m.label + id + " -->"
}

// Identity extracts the identity embedded in body. ok is false for comments
// the tool did not write.
func (m Marker) Identity(body string) (id string, ok bool) {
	start := strings.Index(body, m.label)
	if start < 0 {
		return "", false
	}
	rest := body[start+len(m.label):]
	if end := strings.IndexAny(rest, "\r\n"); end >= 0 {
		rest = rest[:end]
	}
	rest = strings.TrimSuffix(strings.TrimSpace(rest), "-->")
	id = strings.TrimSpace(rest)
	return id, id != ""
}

// IsOutsideDiff reports whether id names the summary comment.
func IsOutsideDiff(id string) bool {
	return id == outsideDiffID
}

// ParseKey splits an inline identity into its path and line. Paths may
// contain dashes, so the line is whatever follows the last one.
func ParseKey(id string) (Key, bool) {
	i := strings.LastIndex(id, "-")
	if i <= 0 || i == len(id)-1 {
		return Key{}, false
	}
	line, err := strconv.Atoi(id[i+1:])
	if err != nil || line < 1 {
		return Key{}, false
	}
	return Key{Path: id[:i], Line: line}, true
}
