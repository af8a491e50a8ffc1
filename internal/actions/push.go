package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"repopush.dev/repopush/internal/commitset"
	"repopush.dev/repopush/internal/config"
	"repopush.dev/repopush/internal/github"
	"repopush.dev/repopush/internal/output"
	"repopush.dev/repopush/internal/runtime"
	"repopush.dev/repopush/internal/tui"
)

// DefaultCommitMessage is used when no message is given
const DefaultCommitMessage = "Sync files with repopush"

// PushOptions contains options for the push command
type PushOptions struct {
	// RepoURL is the https or ssh URL of the repository
	RepoURL string
	Branch  string

	Workspace  string
	SourcePath string
	TargetPath string

	Mode    commitset.Mode
	Message string
	// Token is the caller-supplied access token; the integration's token is used when empty
	Token          string
	Concurrency    int
	UseIgnoreFiles bool

	DryRun  bool
	JSON    bool
	Confirm bool

	// For testing: optional GitHub client
	// If nil, one is built from the resolved integration
	Client github.Client
}

// PushResult describes what a push did
type PushResult struct {
	Plan    *commitset.Plan
	Actions []github.CommitAction
	// Commit is nil when nothing was committed
	Commit *github.CommitInfo
}

// PushAction syncs the workspace into the repository branch as one commit
func PushAction(ctx *runtime.Context, opts PushOptions) (*PushResult, error) {
	splog := ctx.Splog

	if opts.Branch == "" {
		return nil, fmt.Errorf("no branch given")
	}

	client, repo, err := pushClient(ctx, opts)
	if err != nil {
		return nil, err
	}

	if opts.JSON {
		// Keep stdout machine readable
		splog.SetQuiet(true)
		defer splog.SetQuiet(false)
	}

	splog.Info("Comparing %s with %s@%s (mode %s)...", opts.Workspace, repo, output.ColorBranchName(opts.Branch), opts.Mode)

	builder := commitset.NewBuilder(client, commitset.WithSplog(splog))
	var plan *commitset.Plan
	err = runStep(ctx, opts, "Comparing files", func(stepCtx context.Context) error {
		var err error
		plan, err = builder.Plan(stepCtx, commitset.Options{
			Owner:          repo.Owner,
			Repo:           repo.Repo,
			Branch:         opts.Branch,
			Workspace:      opts.Workspace,
			SourcePath:     opts.SourcePath,
			TargetPath:     opts.TargetPath,
			Mode:           opts.Mode,
			Concurrency:    opts.Concurrency,
			UseIgnoreFiles: opts.UseIgnoreFiles,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &PushResult{Plan: plan, Actions: plan.Actions()}

	if opts.JSON {
		data, err := json.MarshalIndent(result.Actions, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode actions: %w", err)
		}
		splog.SetQuiet(false)
		splog.Page(string(data) + "\n")
		splog.SetQuiet(true)
	}

	if plan.Empty() {
		splog.Info("Already up to date (%d files unchanged).", plan.Count(commitset.ActionSkip))
		return result, nil
	}

	splog.Newline()
	splog.Page(output.FormatPlan(result.Actions))
	splog.Newline()
	splog.Info("Plan: %s", output.FormatSummary(plan.Counts()))

	if opts.DryRun {
		splog.Info("Dry run, nothing was pushed.")
		splog.Tip("Run again without --dry-run to commit, or with --confirm to review first.")
		return result, nil
	}

	if opts.Confirm {
		confirmed, err := tui.PromptConfirm(fmt.Sprintf("Commit %d changes to %s?", len(result.Actions), opts.Branch), false)
		if err != nil {
			return nil, err
		}
		if !confirmed {
			splog.Info("Aborted.")
			return result, nil
		}
	}

	message := opts.Message
	if message == "" {
		message = DefaultCommitMessage
	}

	err = runStep(ctx, opts, "Committing", func(stepCtx context.Context) error {
		var err error
		result.Commit, err = client.CreateCommit(stepCtx, repo.Owner, repo.Repo, github.CommitOptions{
			Branch:  opts.Branch,
			Message: message,
			Actions: result.Actions,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to commit to %s: %w", opts.Branch, err)
	}

	splog.Logger().Debug("commit created",
		"repo", repo.String(),
		"branch", opts.Branch,
		"sha", result.Commit.SHA,
		"actions", len(result.Actions),
	)
	splog.Info("✅ Committed %s to %s.", shortSHA(result.Commit.SHA), output.ColorBranchName(opts.Branch))
	if result.Commit.HTMLURL != "" {
		splog.Info("%s", output.ColorDim(result.Commit.HTMLURL))
	}

	return result, nil
}

// pushClient returns the client to use and the repository it targets
func pushClient(ctx *runtime.Context, opts PushOptions) (github.Client, *github.RepoInfo, error) {
	if opts.Client != nil {
		repo, err := github.ParseRemoteURL(opts.RepoURL)
		if err != nil {
			return nil, nil, err
		}
		return opts.Client, repo, nil
	}

	resolved, err := config.Resolve(opts.RepoURL, ctx.Registry, opts.Token)
	if err != nil {
		return nil, nil, err
	}
	ctx.Splog.Debug("Using %s token for %s", resolved.Credential.Kind, resolved.Repo.Hostname)

	client, err := github.NewClient(ctx, resolved.BaseURL, resolved.Credential, github.WithConcurrency(opts.Concurrency))
	if err != nil {
		return nil, nil, err
	}
	return client, &resolved.Repo, nil
}

// runStep runs work behind a spinner unless the output is machine readable
func runStep(ctx context.Context, opts PushOptions, title string, work func(context.Context) error) error {
	if opts.JSON {
		return work(ctx)
	}
	return tui.RunWithSpinner(ctx, title, work)
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
