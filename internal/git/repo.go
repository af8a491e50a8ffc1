package git

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
)

// DefaultRemote is the remote whose URL is used when no repository is given
const DefaultRemote = "origin"

// ErrNoRemoteURL indicates that a remote exists but has no URL configured
var ErrNoRemoteURL = errors.New("remote has no URL")

func open(dir string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	return repo, nil
}

// FindRepoRoot returns the root directory of the git repository containing dir
func FindRepoRoot(dir string) (string, error) {
	repo, err := open(dir)
	if err != nil {
		return "", err
	}

	// Get the worktree to find the root
	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	return worktree.Filesystem.Root(), nil
}

// RemoteURL returns the first URL of the named remote of the repository containing dir
func RemoteURL(dir, name string) (string, error) {
	repo, err := open(dir)
	if err != nil {
		return "", err
	}

	remote, err := repo.Remote(name)
	if err != nil {
		return "", fmt.Errorf("failed to get remote %s: %w", name, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 || urls[0] == "" {
		return "", fmt.Errorf("%w: %s", ErrNoRemoteURL, name)
	}
	return urls[0], nil
}

// OriginURL returns the URL of the origin remote
func OriginURL(dir string) (string, error) {
	return RemoteURL(dir, DefaultRemote)
}

// CurrentBranch returns the short name of the checked out branch. It fails
// on a detached HEAD and in a repository without commits.
func CurrentBranch(dir string) (string, error) {
	repo, err := open(dir)
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is detached at %s", head.Hash().String()[:7])
	}

	return head.Name().Short(), nil
}
