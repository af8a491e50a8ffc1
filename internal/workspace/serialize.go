package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const gitDir = ".git"

// Serialize reads every regular file under root into memory. Paths are
// relative to root with forward slashes, sorted lexically. The .git
// directory is never included. Symlinks and other special files are skipped.
func Serialize(root string, opts Options) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	bfs := osfs.New(root)

	var matcher gitignore.Matcher
	if opts.UseIgnoreFiles {
		patterns, err := gitignore.ReadPatterns(bfs, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read ignore files: %w", err)
		}
		matcher = gitignore.NewMatcher(patterns)
	}

	var files []File
	err = util.Walk(bfs, ".", func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == "." {
			return nil
		}

		rel := filepath.ToSlash(path)
		parts := strings.Split(rel, "/")

		if info.IsDir() {
			if info.Name() == gitDir {
				return filepath.SkipDir
			}
			if matcher != nil && matcher.Match(parts, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}
		if matcher != nil && matcher.Match(parts, false) {
			return nil
		}

		data, err := util.ReadFile(bfs, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", rel, err)
		}

		files = append(files, File{
			Path:       rel,
			Content:    data,
			Executable: info.Mode().Perm()&0o111 != 0,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}
