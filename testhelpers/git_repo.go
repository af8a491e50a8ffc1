package testhelpers

import (
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

// WorkspaceFile describes a file to write into a test workspace
type WorkspaceFile struct {
	Content    string
	Executable bool
}

// NewWorkspace writes files into a fresh temporary directory and returns its path.
// Keys are slash-separated paths relative to the workspace root.
func NewWorkspace(t *testing.T, files map[string]WorkspaceFile) string {
	t.Helper()
	dir := t.TempDir()
	WriteFiles(t, dir, files)
	return dir
}

// WriteFiles writes files below dir, creating parent directories as needed
func WriteFiles(t *testing.T, dir string, files map[string]WorkspaceFile) {
	t.Helper()
	for rel, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", rel, err)
		}
		perm := os.FileMode(0o644)
		if f.Executable {
			perm = 0o755
		}
		if err := os.WriteFile(path, []byte(f.Content), perm); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
}

// NewGitWorkspace creates a workspace that is also a git repository with an
// origin remote pointing at originURL (no remote is added when it is empty)
func NewGitWorkspace(t *testing.T, files map[string]WorkspaceFile, originURL string) string {
	t.Helper()
	dir := NewWorkspace(t, files)

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	if originURL != "" {
		_, err = repo.CreateRemote(&config.RemoteConfig{
			Name: "origin",
			URLs: []string{originURL},
		})
		if err != nil {
			t.Fatalf("failed to create origin remote: %v", err)
		}
	}

	return dir
}
