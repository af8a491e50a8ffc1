package commitset

import (
	"context"
	"fmt"

	"repopush.dev/repopush/internal/content"
	"repopush.dev/repopush/internal/workspace"
)

// Reconciler decides the action for one local file at a time
type Reconciler struct {
	remote RemoteReader
	target Target
	known  RemoteSet
}

// NewReconciler creates a reconciler against a snapshot of the remote paths
func NewReconciler(remote RemoteReader, target Target, known RemoteSet) *Reconciler {
	return &Reconciler{remote: remote, target: target, known: known}
}

// Decide returns the action for file, which is stored remotely at fullPath.
//
// Explicit modes return their action as is. In auto mode a file missing from
// the remote set is created; otherwise its remote metadata is fetched and
// the file is skipped when the content hashes match and updated when they
// don't. A failed fetch is returned as an error, never as a decision.
func (r *Reconciler) Decide(ctx context.Context, file workspace.File, fullPath string, mode Mode) (Action, error) {
	if action, ok := mode.Action(); ok {
		return action, nil
	}

	if !r.known.Contains(fullPath) {
		return ActionCreate, nil
	}

	meta, err := r.remote.GetFileMeta(ctx, r.target.Owner, r.target.Repo, fullPath, r.target.Branch)
	if err != nil {
		return "", fmt.Errorf("failed to compare %s: %w", fullPath, err)
	}
	if meta == nil {
		return "", fmt.Errorf("failed to compare %s: no metadata returned", fullPath)
	}

	if content.Equal(file.Hash(), meta.SHA) {
		return ActionSkip, nil
	}
	return ActionUpdate, nil
}
