// Package github fetches repository file trees through the GitHub GraphQL API.
package github

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"repochat/internal/ignore"
)

// RepositoryFile is one text blob captured during tree traversal. Paths are
// repository-root-relative with forward slashes and no leading slash.
type RepositoryFile struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	RawURL   string `json:"raw_url"`
	WebURL   string `json:"web_url"`
	ByteSize int    `json:"byte_size"`
	IsBinary bool   `json:"is_binary"`
	OID      string `json:"oid"`
}

// FetchResult is the outcome of one repository fetch. RawCount is the number
// of text blobs seen before ignore filtering.
type FetchResult struct {
	Owner    string
	Name     string
	Branch   string
	Path     string
	Files    []RepositoryFile
	RawCount int
}

type treeEntry struct {
	Name     string
	Type     string // "blob" or "tree"
	OID      string
	Text     *string
	ByteSize int
	IsBinary bool
}

// treeLister resolves one level of a repository tree. Split out so traversal
// can be tested without the GraphQL transport.
type treeLister interface {
	listTree(ctx context.Context, owner, name, expression string) ([]treeEntry, error)
}

// Client walks remote repository trees and returns filtered file lists.
type Client struct {
	trees treeLister
}

// NewClient builds a Client backed by the GitHub GraphQL API using the given
// token for authentication.
func NewClient(ctx context.Context, token string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, src)
	return &Client{trees: &gqlTreeLister{client: githubv4.NewClient(httpClient)}}
}

// NewClientWithHTTP builds a Client over a caller-supplied HTTP client,
// used by tests to point at a stub server.
func NewClientWithHTTP(httpClient *http.Client) *Client {
	return &Client{trees: &gqlTreeLister{client: githubv4.NewClient(httpClient)}}
}

// FetchRepository parses the locator, walks the tree at {branch}:{path} and
// returns the filtered file list. Binary or textless blobs never appear in
// the result; an empty directory yields an empty list, not an error.
func (c *Client) FetchRepository(ctx context.Context, url string) (*FetchResult, error) {
	loc, err := ParseLocator(url)
	if err != nil {
		return nil, err
	}

	var files []RepositoryFile
	if err := c.walk(ctx, loc, nil, &files); err != nil {
		return nil, err
	}

	rawCount := len(files)
	kept := make([]RepositoryFile, 0, len(files))
	for _, f := range files {
		if !ignore.ShouldIgnore(f.Path) {
			kept = append(kept, f)
		}
	}

	slog.InfoContext(ctx, "repository fetched",
		"owner", loc.Owner, "name", loc.Name, "branch", loc.Branch,
		"raw_files", rawCount, "filtered_files", len(kept))

	return &FetchResult{
		Owner:    loc.Owner,
		Name:     loc.Name,
		Branch:   loc.Branch,
		Path:     loc.Path,
		Files:    kept,
		RawCount: rawCount,
	}, nil
}

// walk resolves one tree level and recurses into subtrees, carrying the
// ancestor segments explicitly so path reconstruction never relies on string
// slicing.
func (c *Client) walk(ctx context.Context, loc Locator, segments []string, out *[]RepositoryFile) error {
	expr := loc.Expression(segments)
	entries, err := c.trees.listTree(ctx, loc.Owner, loc.Name, expr)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		switch entry.Type {
		case "blob":
			if entry.IsBinary || entry.Text == nil {
				continue
			}
			full := joinSegments(loc.Path, append(segments[:len(segments):len(segments)], entry.Name))
			*out = append(*out, RepositoryFile{
				Path:     full,
				Content:  *entry.Text,
				RawURL:   "https://raw.githubusercontent.com/" + loc.Owner + "/" + loc.Name + "/" + loc.Branch + "/" + full,
				WebURL:   "https://github.com/" + loc.Owner + "/" + loc.Name + "/blob/" + loc.Branch + "/" + full,
				ByteSize: entry.ByteSize,
				IsBinary: entry.IsBinary,
				OID:      entry.OID,
			})
		case "tree":
			child := append(segments[:len(segments):len(segments)], entry.Name)
			if err := c.walk(ctx, loc, child, out); err != nil {
				return err
			}
		}
	}
	return nil
}

type gqlTreeLister struct {
	client *githubv4.Client
}

func (l *gqlTreeLister) listTree(ctx context.Context, owner, name, expression string) ([]treeEntry, error) {
	var q struct {
		Repository struct {
			Object *struct {
				Tree struct {
					Entries []struct {
						Name   string
						Type   string
						Oid    string
						Object struct {
							Blob struct {
								Text     *string
								ByteSize int
								IsBinary bool
							} `graphql:"... on Blob"`
						}
					}
				} `graphql:"... on Tree"`
			} `graphql:"object(expression: $expr)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	vars := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(name),
		"expr":  githubv4.String(expression),
	}

	if err := l.client.Query(ctx, &q, vars); err != nil {
		if strings.Contains(err.Error(), "Could not resolve to a Repository") {
			return nil, &NotFoundError{Owner: owner, Name: name}
		}
		return nil, &FetchError{Path: expression, Err: err}
	}

	if q.Repository.Object == nil {
		return nil, &PathNotFoundError{Expression: expression}
	}

	entries := make([]treeEntry, 0, len(q.Repository.Object.Tree.Entries))
	for _, e := range q.Repository.Object.Tree.Entries {
		entries = append(entries, treeEntry{
			Name:     e.Name,
			Type:     e.Type,
			OID:      e.Oid,
			Text:     e.Object.Blob.Text,
			ByteSize: e.Object.Blob.ByteSize,
			IsBinary: e.Object.Blob.IsBinary,
		})
	}
	return entries, nil
}
