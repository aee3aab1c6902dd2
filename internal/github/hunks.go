package github

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// ParseValidLinesFromPatch extracts all line numbers that can receive a comment in a GitHub PR.
// These are the lines present in the "new" side of the diff: added and context lines.
// A patch that cannot be parsed yields no lines, so every finding in that file
// is reported outside the diff instead of failing an API call.
func ParseValidLinesFromPatch(patch string, logger *slog.Logger) map[int]struct{} {
	validLines := make(map[int]struct{})
	if strings.TrimSpace(patch) == "" {
		return validLines
	}
	if !strings.HasSuffix(patch, "\n") {
		patch += "\n"
	}

	hunks, err := diff.ParseHunks([]byte(patch))
	if err != nil {
		if logger != nil {
			logger.Warn("skipped malformed patch", "error", err)
		}
		return validLines
	}

	for _, hunk := range hunks {
		currentLine := int(hunk.NewStartLine)
		for _, line := range bytes.Split(hunk.Body, []byte("\n")) {
			if len(line) == 0 {
				continue
			}
			// '+' added, ' ' unchanged, '-' removed (only in the old file),
			// '\' is the "No newline at end of file" marker.
			switch line[0] {
			case '+', ' ':
				validLines[currentLine] = struct{}{}
				currentLine++
			}
		}
	}

	return validLines
}
