// Package testhelpers provides testing utilities for repopush,
// including a mock GitHub server and workspace builders.
package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/require"

	githubpkg "repopush.dev/repopush/internal/github"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value. This is useful for test setup code
// where errors are not expected and should halt execution immediately.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ActionSummary maps each file path to its action
func ActionSummary(actions []githubpkg.CommitAction) map[string]string {
	out := make(map[string]string, len(actions))
	for _, a := range actions {
		out[a.FilePath] = a.Action
	}
	return out
}

// ExpectActions asserts the actions of a commit set in order. Each expected
// entry has the form "<action> <path>", for example "create docs/a.md".
func ExpectActions(t *testing.T, actions []githubpkg.CommitAction, expected ...string) {
	t.Helper()

	got := make([]string, 0, len(actions))
	for _, a := range actions {
		got = append(got, a.Action+" "+a.FilePath)
	}
	if len(expected) == 0 {
		require.Empty(t, got)
		return
	}
	require.Equal(t, expected, got)
}
