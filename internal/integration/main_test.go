// Package integration runs the repopush binary end to end against a mock GitHub server.
package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"repopush.dev/repopush/testhelpers"
)

// binary returns the path to the built repopush binary
func binary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping binary test in short mode")
	}
	path, err := testhelpers.BinaryPath()
	require.NoError(t, err, "failed to build repopush binary")
	return path
}

// shell runs repopush commands in a workspace with an isolated config
type shell struct {
	t          *testing.T
	binaryPath string
	dir        string
	configPath string
}

func newShell(t *testing.T, dir, serverURL string) *shell {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "integrations.yaml")
	body := "integrations:\n  - host: ghe.test\n    base_url: " + serverURL + "/\n    token: configured\n"
	require.NoError(t, os.WriteFile(configPath, []byte(body), 0600))
	return &shell{t: t, binaryPath: binary(t), dir: dir, configPath: configPath}
}

// run executes repopush and returns its combined output
func (s *shell) run(args ...string) (string, error) {
	s.t.Helper()
	cmd := exec.Command(s.binaryPath, args...)
	cmd.Dir = s.dir
	cmd.Env = append(os.Environ(),
		"REPOPUSH_CONFIG="+s.configPath,
		"REPOPUSH_NO_INTERACTIVE=1",
		"GITHUB_TOKEN=",
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func (s *shell) mustRun(args ...string) string {
	s.t.Helper()
	out, err := s.run(args...)
	require.NoError(s.t, err, out)
	return out
}
