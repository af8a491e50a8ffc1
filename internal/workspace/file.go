package workspace

import (
	"repopush.dev/repopush/internal/content"
)

// File is a local file read from the workspace
type File struct {
	// Path is relative to the scanned root and always uses forward slashes
	Path       string
	Content    []byte
	Executable bool
}

// Hash returns the content digest of the file. It is computed on every call.
func (f File) Hash() string {
	return content.Hash(f.Content)
}

// Options controls how a directory tree is serialized
type Options struct {
	// UseIgnoreFiles drops files matched by .gitignore and .git/info/exclude
	UseIgnoreFiles bool
}

// Disk serializes and resolves paths against the local filesystem
type Disk struct{}

// Serialize implements serialization of root using the local filesystem
func (Disk) Serialize(root string, opts Options) ([]File, error) {
	return Serialize(root, opts)
}

// Resolve implements path-safe resolution using the local filesystem
func (Disk) Resolve(base, subpath string) (string, error) {
	return Resolve(base, subpath)
}
