package util

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

var workspaceNameRegexp = regexp.MustCompile("[^a-z0-9_-]+")

// maxWorkspacePrefixLength keeps temp directory names well under common
// filesystem name limits once the random suffix is appended.
const maxWorkspacePrefixLength = 100

// WorkspacePattern builds an os.MkdirTemp pattern that names the repository and
// pull request being checked out, e.g. "lint-warden-acme-shop-pr7-*".
func WorkspacePattern(repoURL string, prNumber int) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(repoURL, "/"), ".git")
	owner, repo := path.Split(strings.ReplaceAll(trimmed, ":", "/"))
	owner = path.Base(strings.TrimRight(owner, "/"))

	safe := strings.ToLower(owner + "-" + repo)
	safe = workspaceNameRegexp.ReplaceAllString(safe, "")
	safe = strings.Trim(safe, "-")

	prefix := "lint-warden"
	if safe != "" {
		prefix += "-" + safe
	}
	prefix = fmt.Sprintf("%s-pr%d", prefix, prNumber)
	if len(prefix) > maxWorkspacePrefixLength {
		prefix = prefix[:maxWorkspacePrefixLength]
	}
	return prefix + "-*"
}
