package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v62/github"
	"golang.org/x/sync/errgroup"

	"repopush.dev/repopush/internal/errors"
)

const (
	modeFile       = "100644"
	modeExecutable = "100755"
)

// CreateCommit applies opts.Actions on top of the head of opts.Branch as a
// single commit and fast-forwards the branch to it.
//
// Content of create and update actions is uploaded as base64 blobs first,
// then a tree is built on the head commit's tree. Deletes are tree entries
// without a sha. The ref update is not forced, so a concurrent push to the
// branch makes the call fail instead of discarding the other commit.
func (c *RESTClient) CreateCommit(ctx context.Context, owner, repo string, opts CommitOptions) (*CommitInfo, error) {
	if len(opts.Actions) == 0 {
		return nil, fmt.Errorf("no actions to commit")
	}

	headSHA, err := c.headSHA(ctx, owner, repo, opts.Branch)
	if err != nil {
		return nil, err
	}

	head, _, err := c.client.Git.GetCommit(ctx, owner, repo, headSHA)
	if err != nil {
		return nil, errors.NewRemoteError("get commit", headSHA, err)
	}

	entries, err := c.treeEntries(ctx, owner, repo, opts.Actions)
	if err != nil {
		return nil, err
	}

	tree, _, err := c.client.Git.CreateTree(ctx, owner, repo, head.GetTree().GetSHA(), entries)
	if err != nil {
		return nil, errors.NewRemoteError("create tree", "", err)
	}

	commit := &github.Commit{
		Message: github.String(opts.Message),
		Tree:    &github.Tree{SHA: tree.SHA},
		Parents: []*github.Commit{{SHA: github.String(headSHA)}},
	}
	if opts.AuthorName != "" && opts.AuthorEmail != "" {
		commit.Author = &github.CommitAuthor{
			Name:  github.String(opts.AuthorName),
			Email: github.String(opts.AuthorEmail),
		}
	}

	created, _, err := c.client.Git.CreateCommit(ctx, owner, repo, commit, nil)
	if err != nil {
		return nil, errors.NewRemoteError("create commit", "", err)
	}

	_, _, err = c.client.Git.UpdateRef(ctx, owner, repo, &github.Reference{
		Ref:    github.String("refs/heads/" + opts.Branch),
		Object: &github.GitObject{SHA: created.SHA},
	}, false)
	if err != nil {
		return nil, errors.NewRemoteError("update branch", opts.Branch, err)
	}

	return &CommitInfo{
		SHA:     created.GetSHA(),
		HTMLURL: created.GetHTMLURL(),
		Branch:  opts.Branch,
	}, nil
}

// treeEntries uploads the blobs for all actions and returns the tree entries
// in the same order as actions
func (c *RESTClient) treeEntries(ctx context.Context, owner, repo string, actions []CommitAction) ([]*github.TreeEntry, error) {
	for _, action := range actions {
		switch action.Action {
		case ActionCreate, ActionUpdate, ActionDelete:
		default:
			return nil, fmt.Errorf("unsupported action %q for %s", action.Action, action.FilePath)
		}
	}

	entries := make([]*github.TreeEntry, len(actions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, action := range actions {
		mode := modeFile
		if action.ExecuteFilemode {
			mode = modeExecutable
		}
		entry := &github.TreeEntry{
			Path: github.String(action.FilePath),
			Mode: github.String(mode),
			Type: github.String("blob"),
		}
		entries[i] = entry

		if action.Action == ActionDelete {
			continue
		}

		g.Go(func() error {
			blob, _, err := c.client.Git.CreateBlob(gctx, owner, repo, &github.Blob{
				Content:  github.String(action.Content),
				Encoding: github.String(action.Encoding),
			})
			if err != nil {
				return errors.NewRemoteError("upload blob", action.FilePath, err)
			}
			entry.SHA = blob.SHA
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return entries, nil
}
