package commitset

import (
	"context"

	"repopush.dev/repopush/internal/github"
)

// RemoteReader is the read side of the hosting service. github.Client
// satisfies it.
type RemoteReader interface {
	ListTreePaths(ctx context.Context, owner, repo, branch, path string) ([]string, error)
	GetFileMeta(ctx context.Context, owner, repo, path, branch string) (*github.FileMeta, error)
}

// Target identifies the branch being synchronized
type Target struct {
	Owner  string
	Repo   string
	Branch string
}

// RemoteSet is the set of file paths present on the remote branch. It is
// built once per run and only read afterwards.
type RemoteSet struct {
	paths map[string]struct{}
}

// NewRemoteSet builds a set from a tree listing
func NewRemoteSet(paths []string) RemoteSet {
	set := RemoteSet{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		set.paths[p] = struct{}{}
	}
	return set
}

// Contains reports whether path exists remotely
func (s RemoteSet) Contains(path string) bool {
	_, ok := s.paths[path]
	return ok
}

// Len returns the number of remote paths
func (s RemoteSet) Len() int {
	return len(s.paths)
}
