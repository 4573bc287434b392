package github

import "fmt"

// NotFoundError reports an owner/name pair that does not resolve to a
// repository.
type NotFoundError struct {
	Owner string
	Name  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("repository %s/%s not found", e.Owner, e.Name)
}

// PathNotFoundError reports a branch:path expression that resolves to nothing.
type PathNotFoundError struct {
	Expression string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("path %q not found", e.Expression)
}

// FetchError wraps a transport-level failure during tree traversal, carrying
// the sub-path that was being resolved.
type FetchError struct {
	Path string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed at %q: %v", e.Path, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
