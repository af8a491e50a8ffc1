// Package github provides a client for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// DefaultConcurrency is the default number of in-flight blob uploads
const DefaultConcurrency = 8

// FileMeta contains metadata about a file stored in a repository
type FileMeta struct {
	Path string
	// SHA is the hex git blob id of the file content
	SHA  string
	Size int
}

// CommitAction is a single file change submitted as part of a commit.
// The JSON shape is the wire format printed by `push --json`.
type CommitAction struct {
	Action          string `json:"action"`
	FilePath        string `json:"file_path"`
	Content         string `json:"content"`
	Encoding        string `json:"encoding"`
	ExecuteFilemode bool   `json:"execute_filemode"`
}

// Action values accepted in CommitAction.Action
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// EncodingBase64 is the only content encoding used for commit actions
const EncodingBase64 = "base64"

// CommitOptions contains options for creating a commit
type CommitOptions struct {
	Branch  string
	Message string
	Actions []CommitAction
	// AuthorName and AuthorEmail are optional; GitHub uses the token owner when empty
	AuthorName  string
	AuthorEmail string
}

// CommitInfo describes a commit created on the remote
type CommitInfo struct {
	SHA     string
	HTMLURL string
	Branch  string
}

// Client is an interface for GitHub API interactions
type Client interface {
	// ListTreePaths returns the paths of all files on branch, recursively,
	// limited to those under path when path is not empty
	ListTreePaths(ctx context.Context, owner, repo, branch, path string) ([]string, error)

	// GetFileMeta fetches the metadata of a single file at branch
	GetFileMeta(ctx context.Context, owner, repo, path, branch string) (*FileMeta, error)

	// CreateCommit applies the actions on top of the branch head as one commit
	CreateCommit(ctx context.Context, owner, repo string, opts CommitOptions) (*CommitInfo, error)
}

// TokenKind describes how a token is presented to the API
type TokenKind int

const (
	// TokenPlain is sent as "Authorization: token <value>"
	TokenPlain TokenKind = iota
	// TokenOAuth is sent as "Authorization: Bearer <value>"
	TokenOAuth
)

func (k TokenKind) String() string {
	if k == TokenOAuth {
		return "oauth"
	}
	return "token"
}

// Credential is an access token together with how it is presented
type Credential struct {
	Token string
	Kind  TokenKind
}

func (c Credential) oauth2Token() *oauth2.Token {
	tokenType := "token"
	if c.Kind == TokenOAuth {
		tokenType = "Bearer"
	}
	return &oauth2.Token{AccessToken: c.Token, TokenType: tokenType}
}

// RESTClient implements Client using the GitHub REST API
type RESTClient struct {
	client      *github.Client
	concurrency int
}

// Option configures a RESTClient
type Option func(*RESTClient)

// WithConcurrency limits the number of concurrent blob uploads during CreateCommit
func WithConcurrency(n int) Option {
	return func(c *RESTClient) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// NewClient creates a RESTClient for the API at baseURL. An empty baseURL
// targets api.github.com. Enterprise base URLs are used verbatim, so they
// should already include the /api/v3/ suffix.
func NewClient(ctx context.Context, baseURL string, cred Credential, opts ...Option) (*RESTClient, error) {
	ts := oauth2.StaticTokenSource(cred.oauth2Token())
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse base URL %s: %w", baseURL, err)
		}
		uploadURL := *parsed
		if strings.HasSuffix(uploadURL.Path, "/api/v3/") {
			uploadURL.Path = strings.TrimSuffix(uploadURL.Path, "v3/") + "uploads/"
		}
		client.BaseURL = parsed
		client.UploadURL = &uploadURL
	}

	return NewClientFromGitHub(client, opts...), nil
}

// NewClientFromGitHub wraps an already configured go-github client
func NewClientFromGitHub(client *github.Client, opts ...Option) *RESTClient {
	c := &RESTClient{
		client:      client,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnterpriseBaseURL returns the REST API root of a GitHub Enterprise host
func EnterpriseBaseURL(hostname string) string {
	return fmt.Sprintf("https://%s/api/v3/", hostname)
}
