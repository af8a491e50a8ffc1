// Package git inspects the local git repository a workspace lives in.
//
// It is used to pick defaults for the push command:
//   - the workspace root (the enclosing repository's worktree)
//   - the repository URL (the origin remote)
//   - the branch (the checked out branch)
//
// Nothing here shells out to git; repositories are read with go-git.
package git
