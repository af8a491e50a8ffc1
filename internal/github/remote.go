package github

import (
	"fmt"
	"strings"

	"repopush.dev/repopush/internal/errors"
)

// PublicHost is the hostname of github.com
const PublicHost = "github.com"

// RepoInfo contains parsed information from a git remote URL
type RepoInfo struct {
	Hostname string
	Owner    string
	Repo     string
}

// String returns the owner/repo form
func (r RepoInfo) String() string {
	return r.Owner + "/" + r.Repo
}

// ParseRemoteURL parses a git remote URL and extracts hostname, owner, and repo
// Supports both github.com and GitHub Enterprise URLs
// Examples:
//   - https://github.com/owner/repo.git
//   - git@github.com:owner/repo.git
//   - ssh://git@github.company.com/owner/repo.git
//   - https://github.company.com/owner/repo
func ParseRemoteURL(remoteURL string) (*RepoInfo, error) {
	remoteURL = strings.TrimSpace(remoteURL)
	remoteURL = strings.TrimSuffix(remoteURL, "/")
	remoteURL = strings.TrimSuffix(remoteURL, ".git")

	var hostname, path string

	switch {
	case strings.HasPrefix(remoteURL, "https://"), strings.HasPrefix(remoteURL, "http://"), strings.HasPrefix(remoteURL, "ssh://"):
		rest := remoteURL[strings.Index(remoteURL, "://")+3:]
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: %s: missing path", errors.ErrInvalidRemoteURL, remoteURL)
		}
		hostname = parts[0]
		path = parts[1]
		// Drop credentials and port
		if at := strings.LastIndex(hostname, "@"); at >= 0 {
			hostname = hostname[at+1:]
		}
		if colon := strings.Index(hostname, ":"); colon >= 0 {
			hostname = hostname[:colon]
		}
	case strings.Contains(remoteURL, "@"):
		// SCP-like format: git@hostname:owner/repo
		parts := strings.SplitN(remoteURL, "@", 2)
		hostAndPath := parts[1]
		sep := strings.IndexAny(hostAndPath, ":/")
		if sep < 0 {
			return nil, fmt.Errorf("%w: %s: missing path", errors.ErrInvalidRemoteURL, remoteURL)
		}
		hostname = hostAndPath[:sep]
		path = hostAndPath[sep+1:]
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrInvalidRemoteURL, remoteURL)
	}

	pathParts := strings.Split(strings.Trim(path, "/"), "/")
	if len(pathParts) < 2 {
		return nil, fmt.Errorf("%w: %s: path must be owner/repo", errors.ErrInvalidRemoteURL, remoteURL)
	}
	owner := pathParts[len(pathParts)-2]
	repo := pathParts[len(pathParts)-1]

	if hostname == "" || owner == "" || repo == "" {
		return nil, fmt.Errorf("%w: %s", errors.ErrInvalidRemoteURL, remoteURL)
	}

	return &RepoInfo{
		Hostname: strings.ToLower(hostname),
		Owner:    owner,
		Repo:     repo,
	}, nil
}
