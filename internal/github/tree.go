package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v62/github"

	"repopush.dev/repopush/internal/errors"
)

// headSHA resolves the commit a branch points to
func (c *RESTClient) headSHA(ctx context.Context, owner, repo, branch string) (string, error) {
	ref, _, err := c.client.Git.GetRef(ctx, owner, repo, "heads/"+branch)
	if err != nil {
		return "", errors.NewRemoteError("get branch", branch, err)
	}
	if ref.Object == nil || ref.Object.GetSHA() == "" {
		return "", errors.NewRemoteError("get branch", branch, fmt.Errorf("reference has no target"))
	}
	return ref.Object.GetSHA(), nil
}

// ListTreePaths returns the paths of all files on branch. The listing is
// always recursive; when path is set only files under it are returned. A
// truncated listing is reported as ErrTreeTruncated instead of being used.
func (c *RESTClient) ListTreePaths(ctx context.Context, owner, repo, branch, path string) ([]string, error) {
	sha, err := c.headSHA(ctx, owner, repo, branch)
	if err != nil {
		return nil, err
	}

	tree, _, err := c.client.Git.GetTree(ctx, owner, repo, sha, true)
	if err != nil {
		return nil, errors.NewRemoteError("list tree", branch, err)
	}
	if tree.GetTruncated() {
		return nil, errors.NewRemoteError("list tree", branch, errors.ErrTreeTruncated)
	}

	prefix := strings.Trim(path, "/")
	paths := make([]string, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		p := entry.GetPath()
		if prefix != "" && p != prefix && !strings.HasPrefix(p, prefix+"/") {
			continue
		}
		paths = append(paths, p)
	}

	return paths, nil
}

// GetFileMeta fetches the metadata of a single file at branch
func (c *RESTClient) GetFileMeta(ctx context.Context, owner, repo, path, branch string) (*FileMeta, error) {
	file, _, _, err := c.client.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{
		Ref: branch,
	})
	if err != nil {
		return nil, errors.NewRemoteError("get file", path, err)
	}
	if file == nil || file.GetType() != "file" {
		return nil, errors.NewRemoteError("get file", path, errors.ErrNotAFile)
	}

	return &FileMeta{
		Path: file.GetPath(),
		SHA:  file.GetSHA(),
		Size: file.GetSize(),
	}, nil
}
