package gitutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PullRequestRef names a pull request on the host.
type PullRequestRef struct {
	Owner  string
	Repo   string
	Number int
}

// String renders the ref in owner/repo#number form.
func (r PullRequestRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

var (
	prURLRegex       = regexp.MustCompile(`^(?:https?://)?[^/]+/([^/]+)/([^/]+)/pull/(\d+)$`)
	prShorthandRegex = regexp.MustCompile(`^([^/\s#]+)/([^/\s#]+)#(\d+)$`)
)

// ParsePullRequest accepts a pull request URL on github.com or an Enterprise
// host (https://host/owner/repo/pull/123) or the owner/repo#123 shorthand.
func ParsePullRequest(s string) (PullRequestRef, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "/")

	matches := prURLRegex.FindStringSubmatch(s)
	if matches == nil {
		matches = prShorthandRegex.FindStringSubmatch(s)
	}
	if len(matches) != 4 {
		return PullRequestRef{}, fmt.Errorf("invalid pull request reference: %s", s)
	}

	number, err := strconv.Atoi(matches[3])
	if err != nil || number <= 0 {
		return PullRequestRef{}, fmt.Errorf("invalid PR number '%s'", matches[3])
	}
	return PullRequestRef{Owner: matches[1], Repo: matches[2], Number: number}, nil
}
