// Package content computes content digests comparable with the ones the
// hosting service reports for repository files.
package content

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// Hash returns the hex-encoded git blob object id of data. This is the same
// value GitHub reports as the sha of a file, so a local and a remote digest
// are equal exactly when the contents are.
func Hash(data []byte) string {
	return plumbing.ComputeHash(plumbing.BlobObject, data).String()
}

// Equal reports whether a local digest matches the digest reported by the
// hosting service. An empty remote digest never matches.
func Equal(local, remote string) bool {
	return remote != "" && strings.EqualFold(local, remote)
}
