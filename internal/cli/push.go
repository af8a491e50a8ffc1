package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"repopush.dev/repopush/internal/actions"
	"repopush.dev/repopush/internal/cli/common"
	"repopush.dev/repopush/internal/commitset"
	"repopush.dev/repopush/internal/git"
	"repopush.dev/repopush/internal/github"
	"repopush.dev/repopush/internal/runtime"
	"repopush.dev/repopush/internal/utils"
)

// newPushCmd creates the push command
func newPushCmd() *cobra.Command {
	var (
		repoURL     string
		branch      string
		workspace   string
		source      string
		target      string
		mode        commitset.Mode
		message     string
		token       string
		concurrency int
		noIgnore    bool
		dryRun      bool
		jsonOutput  bool
		confirm     bool
		web         bool
	)

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Commit the new and changed files of a directory to a branch",
		Long: `Compare the files of a local directory with a branch and commit the difference.

In auto mode (the default) files missing from the branch are created, files whose
content differs are updated and identical files are skipped. An explicit --mode
applies the same action to every local file without looking at the branch.

The repository defaults to the origin remote of the enclosing git repository and
the branch defaults to the checked out branch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				ws, err := resolveWorkspace(workspace)
				if err != nil {
					return err
				}

				if repoURL == "" {
					repoURL, err = git.OriginURL(ws)
					if err != nil {
						return fmt.Errorf("no --repo given and no origin remote found: %w", err)
					}
				}
				if branch == "" {
					branch, err = git.CurrentBranch(ws)
					if err != nil {
						return fmt.Errorf("no --branch given and no branch checked out: %w", err)
					}
				}
				if token == "" {
					token = os.Getenv("GITHUB_TOKEN")
				}
				message, err = utils.ResolveMessage(message, os.Stdin)
				if err != nil {
					return err
				}

				result, err := actions.PushAction(ctx, actions.PushOptions{
					RepoURL:        repoURL,
					Branch:         branch,
					Workspace:      ws,
					SourcePath:     source,
					TargetPath:     target,
					Mode:           mode,
					Message:        message,
					Token:          token,
					Concurrency:    concurrency,
					UseIgnoreFiles: !noIgnore,
					DryRun:         dryRun,
					JSON:           jsonOutput,
					Confirm:        confirm,
				})
				if err != nil {
					return err
				}

				if web && result.Commit != nil && result.Commit.HTMLURL != "" {
					if err := utils.OpenBrowser(result.Commit.HTMLURL); err != nil {
						ctx.Splog.Warn("Failed to open browser: %v", err)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&repoURL, "repo", "", "Repository URL (https or ssh)")
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Branch to commit to")
	cmd.Flags().StringVar(&workspace, "workspace", "", "Local workspace root (default: enclosing git repository, else the current directory)")
	cmd.Flags().StringVar(&source, "source", "", "Directory under the workspace to read files from")
	cmd.Flags().StringVar(&target, "target", "", "Directory in the repository to write files to")
	cmd.Flags().Var(&mode, "mode", "auto, create, update, delete or skip")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message, or - to read it from stdin")
	cmd.Flags().StringVar(&token, "token", "", "Access token (default $GITHUB_TOKEN, then the integration's token)")
	cmd.Flags().IntVar(&concurrency, "concurrency", github.DefaultConcurrency, "Maximum concurrent requests to the hosting service")
	cmd.Flags().BoolVar(&noIgnore, "no-ignore", false, "Include files matched by .gitignore")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the plan without committing")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the commit actions as JSON")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Ask before committing")
	cmd.Flags().BoolVarP(&web, "web", "w", false, "Open the created commit in the browser")

	return cmd
}

// resolveWorkspace returns dir, or the enclosing git repository root, or the
// current directory
func resolveWorkspace(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	if root, err := git.FindRepoRoot(wd); err == nil {
		return root, nil
	}
	return wd, nil
}
