// Package workspace reads the local side of a sync run.
//
// It handles:
//   - Serializing a directory tree into in-memory files, honoring .gitignore
//   - Resolving subpaths under a workspace root without escaping it
package workspace
