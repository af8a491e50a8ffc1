package github_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"repopush.dev/repopush/internal/errors"
	"repopush.dev/repopush/internal/github"
	"repopush.dev/repopush/testhelpers"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestCreateCommit(t *testing.T) {
	t.Parallel()

	t.Run("applies create, update and delete in one commit", func(t *testing.T) {
		t.Parallel()
		cfg := testhelpers.NewMockGitHubServerConfig().
			WithFile("keep.txt", "keep").
			WithFile("update.txt", "old").
			WithFile("delete.txt", "bye")
		client, owner, repo := testhelpers.NewMockRESTClient(t, cfg, github.WithConcurrency(2))

		info, err := client.CreateCommit(context.Background(), owner, repo, github.CommitOptions{
			Branch:  "main",
			Message: "sync",
			Actions: []github.CommitAction{
				{Action: github.ActionCreate, FilePath: "bin/run.sh", Content: b64("#!/bin/sh\n"), Encoding: github.EncodingBase64, ExecuteFilemode: true},
				{Action: github.ActionUpdate, FilePath: "update.txt", Content: b64("new"), Encoding: github.EncodingBase64},
				{Action: github.ActionDelete, FilePath: "delete.txt", Content: b64("bye"), Encoding: github.EncodingBase64},
			},
		})
		require.NoError(t, err)
		require.Equal(t, "main", info.Branch)
		require.NotEmpty(t, info.SHA)
		require.Contains(t, info.HTMLURL, info.SHA)

		head := cfg.HeadFiles()
		require.Len(t, head, 3)
		require.Equal(t, "keep", string(head["keep.txt"].Content))
		require.Equal(t, "new", string(head["update.txt"].Content))
		require.Equal(t, "#!/bin/sh\n", string(head["bin/run.sh"].Content))
		require.True(t, head["bin/run.sh"].Executable)
		require.NotContains(t, head, "delete.txt")

		require.Equal(t, 2, cfg.RequestCount("POST blobs"))
		require.Equal(t, 1, cfg.RequestCount("POST commits"))

		commits := cfg.CreatedCommits()
		require.Len(t, commits, 1)
		require.Equal(t, "sync", commits[0].Message)
	})

	t.Run("no actions", func(t *testing.T) {
		t.Parallel()
		cfg := testhelpers.NewMockGitHubServerConfig()
		client, owner, repo := testhelpers.NewMockRESTClient(t, cfg)

		_, err := client.CreateCommit(context.Background(), owner, repo, github.CommitOptions{Branch: "main"})
		require.ErrorContains(t, err, "no actions")
		require.Zero(t, cfg.RequestCount("GET ref"))
	})

	t.Run("unsupported action uploads nothing", func(t *testing.T) {
		t.Parallel()
		cfg := testhelpers.NewMockGitHubServerConfig()
		client, owner, repo := testhelpers.NewMockRESTClient(t, cfg)

		_, err := client.CreateCommit(context.Background(), owner, repo, github.CommitOptions{
			Branch: "main",
			Actions: []github.CommitAction{
				{Action: github.ActionCreate, FilePath: "a.txt", Content: b64("a"), Encoding: github.EncodingBase64},
				{Action: "skip", FilePath: "b.txt"},
			},
		})
		require.ErrorContains(t, err, `unsupported action "skip"`)
		require.Zero(t, cfg.RequestCount("POST blobs"))
	})

	t.Run("rejected ref update leaves the branch alone", func(t *testing.T) {
		t.Parallel()
		cfg := testhelpers.NewMockGitHubServerConfig().WithFile("a.txt", "a")
		cfg.ErrorResponses["PATCH ref"] = 422
		client, owner, repo := testhelpers.NewMockRESTClient(t, cfg)

		_, err := client.CreateCommit(context.Background(), owner, repo, github.CommitOptions{
			Branch:  "main",
			Message: "sync",
			Actions: []github.CommitAction{{Action: github.ActionUpdate, FilePath: "a.txt", Content: b64("b"), Encoding: github.EncodingBase64}},
		})
		var remoteErr *errors.RemoteError
		require.ErrorAs(t, err, &remoteErr)
		require.Equal(t, "update branch", remoteErr.Op)
		require.Equal(t, "a", string(cfg.HeadFiles()["a.txt"].Content))
		require.Empty(t, cfg.CreatedCommits())
	})

	t.Run("blob upload failure", func(t *testing.T) {
		t.Parallel()
		cfg := testhelpers.NewMockGitHubServerConfig()
		cfg.ErrorResponses["POST blobs"] = 500
		client, owner, repo := testhelpers.NewMockRESTClient(t, cfg)

		_, err := client.CreateCommit(context.Background(), owner, repo, github.CommitOptions{
			Branch:  "main",
			Actions: []github.CommitAction{{Action: github.ActionCreate, FilePath: "a.txt", Content: b64("a"), Encoding: github.EncodingBase64}},
		})
		var remoteErr *errors.RemoteError
		require.ErrorAs(t, err, &remoteErr)
		require.Equal(t, "upload blob", remoteErr.Op)
		require.Zero(t, cfg.RequestCount("POST trees"))
	})
}
