// Package commitset decides which commit actions bring a remote branch in
// line with a local directory tree.
//
// The flow is:
//  1. Resolve the local root to scan under the workspace
//  2. In auto mode, list the remote files under the target path once
//  3. Serialize the local files
//  4. Decide an action per file with a Reconciler, concurrently
//  5. Drop skipped files and render the rest as wire commit actions
//
// Files that exist remotely are compared by content hash, so an unchanged
// file never produces an action.
package commitset
