package github

import (
	"fmt"
	"strings"
)

// Locator identifies a spot in a GitHub repository tree.
type Locator struct {
	Owner  string
	Name   string
	Branch string
	Path   string
}

// LocatorError reports a repository URL that could not be parsed. It is always
// a caller fault and never retried.
type LocatorError struct {
	URL    string
	Reason string
}

func (e *LocatorError) Error() string {
	return fmt.Sprintf("invalid repository locator %q: %s", e.URL, e.Reason)
}

// ParseLocator accepts https://github.com/{owner}/{repo} (branch defaults to
// "main", path empty) or https://github.com/{owner}/{repo}/tree/{branch}/{path...}.
func ParseLocator(url string) (Locator, error) {
	trimmed := strings.TrimSuffix(url, "/")
	parts := strings.Split(trimmed, "/")

	// parts: ["https:", "", "github.com", owner, repo, ...]
	if len(parts) < 5 || parts[0] != "https:" || parts[1] != "" || parts[2] != "github.com" {
		return Locator{}, &LocatorError{URL: url, Reason: "expected https://github.com/{owner}/{repo}"}
	}

	loc := Locator{
		Owner:  parts[3],
		Name:   parts[4],
		Branch: "main",
	}

	if len(parts) == 5 {
		return loc, nil
	}

	if parts[5] != "tree" {
		return Locator{}, &LocatorError{URL: url, Reason: fmt.Sprintf("unexpected segment %q, expected \"tree\"", parts[5])}
	}
	if len(parts) < 7 {
		return Locator{}, &LocatorError{URL: url, Reason: "\"tree\" segment without a branch"}
	}

	loc.Branch = parts[6]
	loc.Path = strings.Join(parts[7:], "/")
	return loc, nil
}

// Expression renders the Git revision expression ("branch:path") for the
// subtree at the given ancestor segments below the locator's path.
func (l Locator) Expression(segments []string) string {
	return l.Branch + ":" + joinSegments(l.Path, segments)
}

func joinSegments(root string, segments []string) string {
	all := make([]string, 0, len(segments)+1)
	if root != "" {
		all = append(all, root)
	}
	all = append(all, segments...)
	return strings.Join(all, "/")
}
