package workspace

import (
	"fmt"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"

	"repopush.dev/repopush/internal/errors"
)

// Resolve returns the absolute path of subpath under base. Lexical escapes
// such as "../x" or absolute subpaths are rejected; symlinks inside base are
// resolved as if base were the filesystem root, so the result always stays
// within base.
func Resolve(base, subpath string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", base, err)
	}

	if subpath == "" {
		return absBase, nil
	}

	local := filepath.FromSlash(subpath)
	if filepath.IsAbs(local) || !filepath.IsLocal(local) {
		return "", errors.NewPathEscapeError(absBase, subpath)
	}

	resolved, err := securejoin.SecureJoin(absBase, local)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s under %s: %w", subpath, absBase, err)
	}

	return resolved, nil
}
