package commitset

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"repopush.dev/repopush/internal/errors"
	"repopush.dev/repopush/internal/github"
	"repopush.dev/repopush/internal/workspace"
	"repopush.dev/repopush/testhelpers"
)

func newTestBuilder(remote RemoteReader, files []workspace.File) (*Builder, *fakeSerializer, *fakeResolver) {
	serializer := &fakeSerializer{files: files}
	resolver := &fakeResolver{}
	return NewBuilder(remote, WithSerializer(serializer), WithPathResolver(resolver)), serializer, resolver
}

func baseOptions() Options {
	return Options{Owner: "owner", Repo: "repo", Branch: "main", Workspace: "/ws"}
}

func TestBuilder_Build(t *testing.T) {
	t.Parallel()

	t.Run("identical remote file is skipped and new file created", func(t *testing.T) {
		t.Parallel()
		remote := newFakeRemote(map[string]string{"a.txt": "X"})
		b, _, _ := newTestBuilder(remote, localFiles("a.txt", "X", "b.txt", "Y"))

		actions, err := b.Build(context.Background(), baseOptions())
		require.NoError(t, err)

		require.Equal(t, []github.CommitAction{{
			Action:   "create",
			FilePath: "b.txt",
			Content:  base64.StdEncoding.EncodeToString([]byte("Y")),
			Encoding: "base64",
		}}, actions)
	})

	t.Run("changed remote file is updated", func(t *testing.T) {
		t.Parallel()
		remote := newFakeRemote(map[string]string{"a.txt": "old X"})
		b, _, _ := newTestBuilder(remote, localFiles("a.txt", "X", "b.txt", "Y"))

		actions, err := b.Build(context.Background(), baseOptions())
		require.NoError(t, err)
		testhelpers.ExpectActions(t, actions, "update a.txt", "create b.txt")
		require.Equal(t, base64.StdEncoding.EncodeToString([]byte("X")), actions[0].Content)
	})

	t.Run("every absent file is created", func(t *testing.T) {
		t.Parallel()
		remote := newFakeRemote(map[string]string{"unrelated.txt": "Z"})
		b, _, _ := newTestBuilder(remote, localFiles("a.txt", "1", "b/c.txt", "2", "d.txt", "3"))

		actions, err := b.Build(context.Background(), baseOptions())
		require.NoError(t, err)
		testhelpers.ExpectActions(t, actions, "create a.txt", "create b/c.txt", "create d.txt")

		_, meta := remote.calls()
		require.Empty(t, meta, "no metadata fetch for files absent remotely")
	})

	t.Run("explicit delete applies to every file without listing", func(t *testing.T) {
		t.Parallel()
		remote := newFakeRemote(map[string]string{"a.txt": "X"})
		b, _, _ := newTestBuilder(remote, localFiles("a.txt", "X", "b.txt", "Y"))

		opts := baseOptions()
		opts.Mode = Explicit(ActionDelete)
		actions, err := b.Build(context.Background(), opts)
		require.NoError(t, err)
		testhelpers.ExpectActions(t, actions, "delete a.txt", "delete b.txt")

		list, meta := remote.calls()
		require.Zero(t, list)
		require.Empty(t, meta)
	})

	t.Run("explicit create and update are uniform", func(t *testing.T) {
		t.Parallel()
		for _, action := range []Action{ActionCreate, ActionUpdate} {
			remote := newFakeRemote(map[string]string{"a.txt": "X"})
			b, _, _ := newTestBuilder(remote, localFiles("a.txt", "X", "b.txt", "Y"))

			opts := baseOptions()
			opts.Mode = Explicit(action)
			actions, err := b.Build(context.Background(), opts)
			require.NoError(t, err)
			testhelpers.ExpectActions(t, actions, string(action)+" a.txt", string(action)+" b.txt")

			list, meta := remote.calls()
			require.Zero(t, list)
			require.Empty(t, meta)
		}
	})

	t.Run("skip mode returns nothing without enumeration", func(t *testing.T) {
		t.Parallel()
		remote := newFakeRemote(map[string]string{"a.txt": "X"})
		b, serializer, _ := newTestBuilder(remote, localFiles("a.txt", "X"))

		opts := baseOptions()
		opts.Mode = Explicit(ActionSkip)
		actions, err := b.Build(context.Background(), opts)
		require.NoError(t, err)
		require.Empty(t, actions)

		list, meta := remote.calls()
		require.Zero(t, list)
		require.Empty(t, meta)
		require.Zero(t, serializer.calls())
	})

	t.Run("target path is joined with forward slashes", func(t *testing.T) {
		t.Parallel()
		remote := newFakeRemote(map[string]string{"site/docs/a.txt": "X"})
		b, serializer, resolver := newTestBuilder(remote, localFiles("a.txt", "X", "sub/b.txt", "Y"))

		opts := baseOptions()
		opts.TargetPath = "/site/docs/"
		actions, err := b.Build(context.Background(), opts)
		require.NoError(t, err)
		testhelpers.ExpectActions(t, actions, "create site/docs/sub/b.txt")

		list, meta := remote.calls()
		require.Equal(t, 1, list)
		require.Equal(t, []string{"site/docs/a.txt"}, meta)
		require.Equal(t, "site/docs", remote.listPrefix)
		require.Equal(t, []string{"/site/docs/"}, resolver.calls, "target doubles as the scan root")
		require.Equal(t, []string{"/ws//site/docs/"}, serializer.roots)
	})

	t.Run("without target the relative path is used unchanged", func(t *testing.T) {
		t.Parallel()
		remote := newFakeRemote(nil)
		b, serializer, resolver := newTestBuilder(remote, localFiles("nested/deep/file.go", "package x"))

		actions, err := b.Build(context.Background(), baseOptions())
		require.NoError(t, err)
		testhelpers.ExpectActions(t, actions, "create nested/deep/file.go")
		require.Empty(t, resolver.calls)
		require.Equal(t, []string{"/ws"}, serializer.roots)
		require.Equal(t, "", remote.listPrefix)
	})

	t.Run("source path wins over target for the scan root", func(t *testing.T) {
		t.Parallel()
		remote := newFakeRemote(nil)
		b, serializer, resolver := newTestBuilder(remote, localFiles("a.txt", "X"))

		opts := baseOptions()
		opts.SourcePath = "build"
		opts.TargetPath = "public"
		opts.UseIgnoreFiles = true
		actions, err := b.Build(context.Background(), opts)
		require.NoError(t, err)
		testhelpers.ExpectActions(t, actions, "create public/a.txt")
		require.Equal(t, []string{"build"}, resolver.calls)
		require.Equal(t, []string{"/ws/build"}, serializer.roots)
		require.Equal(t, []workspace.Options{{UseIgnoreFiles: true}}, serializer.opts)
	})

	t.Run("executable flag is carried", func(t *testing.T) {
		t.Parallel()
		remote := newFakeRemote(nil)
		files := []workspace.File{{Path: "run.sh", Content: []byte("#!/bin/sh\n"), Executable: true}}
		b, _, _ := newTestBuilder(remote, files)

		actions, err := b.Build(context.Background(), baseOptions())
		require.NoError(t, err)
		require.Len(t, actions, 1)
		require.True(t, actions[0].ExecuteFilemode)
	})

	t.Run("output never contains skip or auto", func(t *testing.T) {
		t.Parallel()
		remote := newFakeRemote(map[string]string{"same.txt": "same", "old.txt": "before"})
		b, _, _ := newTestBuilder(remote, localFiles("new.txt", "n", "old.txt", "after", "same.txt", "same"))

		actions, err := b.Build(context.Background(), baseOptions())
		require.NoError(t, err)
		for _, a := range actions {
			require.NotEqual(t, "skip", a.Action)
			require.NotEqual(t, "auto", a.Action)
		}
		testhelpers.ExpectActions(t, actions, "create new.txt", "update old.txt")
	})
}

func TestBuilder_Errors(t *testing.T) {
	t.Parallel()

	t.Run("listing failure aborts", func(t *testing.T) {
		t.Parallel()
		remote := newFakeRemote(nil)
		remote.listErr = errors.NewRemoteError("list tree", "main", errors.ErrTreeTruncated)
		b, serializer, _ := newTestBuilder(remote, localFiles("a.txt", "X"))

		actions, err := b.Build(context.Background(), baseOptions())
		require.ErrorIs(t, err, errors.ErrTreeTruncated)
		require.Nil(t, actions)
		require.Zero(t, serializer.calls())
	})

	t.Run("serializer failure aborts", func(t *testing.T) {
		t.Parallel()
		remote := newFakeRemote(nil)
		b, serializer, _ := newTestBuilder(remote, nil)
		serializer.err = fmt.Errorf("permission denied")

		_, err := b.Build(context.Background(), baseOptions())
		require.ErrorContains(t, err, "permission denied")
	})

	t.Run("metadata failure aborts with no partial result", func(t *testing.T) {
		t.Parallel()
		boom := fmt.Errorf("rate limited")
		remote := newFakeRemote(map[string]string{"a.txt": "X", "b.txt": "Y"})
		remote.metaErr["b.txt"] = boom
		b, _, _ := newTestBuilder(remote, localFiles("a.txt", "changed", "b.txt", "Y", "c.txt", "Z"))

		plan, err := b.Plan(context.Background(), baseOptions())
		require.ErrorIs(t, err, boom)
		require.Nil(t, plan)
	})

	t.Run("path escape is reported", func(t *testing.T) {
		t.Parallel()
		remote := newFakeRemote(nil)
		b, _, resolver := newTestBuilder(remote, nil)
		resolver.err = errors.NewPathEscapeError("/ws", "../etc")

		opts := baseOptions()
		opts.SourcePath = "../etc"
		_, err := b.Build(context.Background(), opts)
		require.ErrorIs(t, err, errors.ErrPathEscape)

		var escape *errors.PathEscapeError
		require.ErrorAs(t, err, &escape)
		require.Equal(t, "../etc", escape.Path)

		list, _ := remote.calls()
		require.Zero(t, list)
	})

	t.Run("target above the repository root is rejected before any request", func(t *testing.T) {
		t.Parallel()
		for _, target := range []string{"../outside", "docs/../../x"} {
			remote := newFakeRemote(nil)
			b, serializer, _ := newTestBuilder(remote, localFiles("a.txt", "X"))

			opts := baseOptions()
			opts.SourcePath = "build"
			opts.TargetPath = target
			actions, err := b.Build(context.Background(), opts)
			require.ErrorIs(t, err, errors.ErrPathEscape, target)
			require.Nil(t, actions)

			var escape *errors.PathEscapeError
			require.ErrorAs(t, err, &escape)
			require.Equal(t, target, escape.Path)

			list, meta := remote.calls()
			require.Zero(t, list)
			require.Empty(t, meta)
			require.Zero(t, serializer.calls())
		}
	})

	t.Run("invalid explicit mode is rejected", func(t *testing.T) {
		t.Parallel()
		remote := newFakeRemote(nil)
		b, serializer, _ := newTestBuilder(remote, localFiles("a.txt", "X"))

		opts := baseOptions()
		opts.Mode = Explicit("auto")
		_, err := b.Build(context.Background(), opts)
		require.ErrorIs(t, err, errors.ErrInvalidMode)
		require.Zero(t, serializer.calls())
	})
}

func TestBuilder_Concurrency(t *testing.T) {
	t.Parallel()

	t.Run("order follows local enumeration", func(t *testing.T) {
		t.Parallel()
		files := map[string]string{}
		var pairs []string
		for i := 0; i < 10; i++ {
			p := fmt.Sprintf("f%02d.txt", i)
			files[p] = "remote"
			pairs = append(pairs, p, "local")
		}
		remote := newFakeRemote(files)
		// Earlier files finish later
		for i := 0; i < 10; i++ {
			remote.delays[fmt.Sprintf("f%02d.txt", i)] = time.Duration(10-i) * 5 * time.Millisecond
		}
		b, _, _ := newTestBuilder(remote, localFiles(pairs...))

		actions, err := b.Build(context.Background(), baseOptions())
		require.NoError(t, err)
		require.Len(t, actions, 10)
		for i, a := range actions {
			require.Equal(t, fmt.Sprintf("f%02d.txt", i), a.FilePath)
			require.Equal(t, "update", a.Action)
		}
	})

	t.Run("in-flight fetches are bounded", func(t *testing.T) {
		t.Parallel()
		files := map[string]string{}
		var pairs []string
		for i := 0; i < 20; i++ {
			p := fmt.Sprintf("f%02d.txt", i)
			files[p] = "same"
			pairs = append(pairs, p, "same")
		}
		remote := newFakeRemote(files)
		for p := range files {
			remote.delays[p] = 5 * time.Millisecond
		}
		b, _, _ := newTestBuilder(remote, localFiles(pairs...))

		opts := baseOptions()
		opts.Concurrency = 3
		plan, err := b.Plan(context.Background(), opts)
		require.NoError(t, err)
		require.Equal(t, 20, plan.Count(ActionSkip))
		require.True(t, plan.Empty())
		require.Empty(t, plan.Actions())

		remote.mu.Lock()
		defer remote.mu.Unlock()
		require.LessOrEqual(t, remote.maxInFlight, 3)
		require.Len(t, remote.metaCalls, 20)
	})

	t.Run("canceled context stops the run", func(t *testing.T) {
		t.Parallel()
		remote := newFakeRemote(map[string]string{"a.txt": "X"})
		remote.delays["a.txt"] = time.Second
		b, _, _ := newTestBuilder(remote, localFiles("a.txt", "changed"))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := b.Build(ctx, baseOptions())
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestPlan(t *testing.T) {
	t.Parallel()

	plan := &Plan{Decisions: []Decision{
		{File: workspace.File{Path: "a", Content: []byte("a")}, Path: "a", Action: ActionCreate},
		{File: workspace.File{Path: "b", Content: []byte("b")}, Path: "b", Action: ActionSkip},
		{File: workspace.File{Path: "c", Content: []byte("c")}, Path: "c", Action: ActionCreate},
	}}

	require.Equal(t, 2, plan.Count(ActionCreate))
	require.Equal(t, map[string]int{"create": 2, "skip": 1}, plan.Counts())
	require.False(t, plan.Empty())
	testhelpers.ExpectActions(t, plan.Actions(), "create a", "create c")
	require.True(t, (&Plan{}).Empty())
}

func TestTargetPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target, rel, want string
	}{
		{"", "a.txt", "a.txt"},
		{"", "dir/a.txt", "dir/a.txt"},
		{"docs", "a.txt", "docs/a.txt"},
		{"docs/api", "v1/a.txt", "docs/api/v1/a.txt"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, TargetPath(tt.target, tt.rel))
	}

	normalized := []struct {
		in, want string
	}{
		{"", ""},
		{"/", ""},
		{"./", ""},
		{"/docs/", "docs"},
		{"a//b", "a/b"},
		{"docs/../site", "site"},
		{"..docs", "..docs"},
	}
	for _, tt := range normalized {
		got, ok := normalizeTarget(tt.in)
		require.True(t, ok, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}

	for _, in := range []string{"..", "../outside", "docs/../../x", "/../x"} {
		_, ok := normalizeTarget(in)
		require.False(t, ok, in)
	}
}

func TestBuilder_AgainstMockServer(t *testing.T) {
	t.Parallel()

	dir := testhelpers.NewWorkspace(t, map[string]testhelpers.WorkspaceFile{
		"docs/a.txt":  {Content: "X"},
		"docs/b.txt":  {Content: "Y"},
		"docs/run.sh": {Content: "#!/bin/sh\n", Executable: true},
		"other.txt":   {Content: "not scanned"},
	})

	config := testhelpers.NewMockGitHubServerConfig().
		WithFile("docs/a.txt", "X").
		WithFile("docs/run.sh", "#!/bin/bash\n").
		WithFile("readme.md", "hi")
	client, owner, repo := testhelpers.NewMockRESTClient(t, config)

	b := NewBuilder(client)
	actions, err := b.Build(context.Background(), Options{
		Owner:      owner,
		Repo:       repo,
		Branch:     "main",
		Workspace:  dir,
		TargetPath: "docs",
	})
	require.NoError(t, err)
	testhelpers.ExpectActions(t, actions, "create docs/b.txt", "update docs/run.sh")
	require.True(t, actions[1].ExecuteFilemode)

	require.Equal(t, 1, config.RequestCount("GET tree"))
	require.Equal(t, 2, config.RequestCount("GET contents"))

	info, err := client.CreateCommit(context.Background(), owner, repo, github.CommitOptions{
		Branch:  "main",
		Message: "sync docs",
		Actions: actions,
	})
	require.NoError(t, err)
	require.NotEmpty(t, info.SHA)

	// A second run finds nothing to do
	again, err := b.Build(context.Background(), Options{
		Owner:      owner,
		Repo:       repo,
		Branch:     "main",
		Workspace:  dir,
		TargetPath: "docs",
	})
	require.NoError(t, err)
	require.Empty(t, again)

	head := config.HeadFiles()
	require.Equal(t, "Y", string(head["docs/b.txt"].Content))
	require.True(t, head["docs/run.sh"].Executable)
}

func TestBuilder_KnownBlobIDs(t *testing.T) {
	t.Parallel()

	// Blob ids as reported by git hash-object, not computed by this module
	const (
		helloSHA = "ce013625030ba8dba906f756967f9e9ca394464a" // "hello\n"
		emptySHA = "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391" // ""
	)

	dir := testhelpers.NewWorkspace(t, map[string]testhelpers.WorkspaceFile{
		"hello.txt": {Content: "hello\n"},
		"empty.txt": {Content: ""},
		"stale.txt": {Content: "hello\n"},
	})

	config := testhelpers.NewMockGitHubServerConfig().
		WithFileSHA("hello.txt", "hello\n", helloSHA).
		WithFileSHA("empty.txt", "", emptySHA).
		WithFileSHA("stale.txt", "hello\n", emptySHA)
	client, owner, repo := testhelpers.NewMockRESTClient(t, config)

	actions, err := NewBuilder(client).Build(context.Background(), Options{
		Owner:     owner,
		Repo:      repo,
		Branch:    "main",
		Workspace: dir,
	})
	require.NoError(t, err)
	testhelpers.ExpectActions(t, actions, "update stale.txt")
}
