// Package cli wires repopush actions to cobra commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"repopush.dev/repopush/internal/config"
	"repopush.dev/repopush/internal/output"
	"repopush.dev/repopush/internal/runtime"
)

// globalFlags are shared by every command
type globalFlags struct {
	configPath string
	debug      bool
	logFile    string
	noColor    bool
}

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	var flags globalFlags
	var splog *output.Splog

	rootCmd := &cobra.Command{
		Use:   "repopush",
		Short: "repopush syncs a local directory into a GitHub branch as a single commit",
		Long: `repopush syncs a local directory into a branch of a GitHub or GitHub Enterprise
repository. Files are compared by content hash, so only new and changed files are
committed, and the whole change lands as one commit.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if flags.noColor || os.Getenv("NO_COLOR") != "" {
				output.DisableColor()
			}

			var err error
			splog, err = newSplog(cmd, flags)
			if err != nil {
				return err
			}

			registry, err := loadRegistry(flags.configPath)
			if err != nil {
				splog.Debug("Failed to load integrations: %v", err)
				_ = splog.Close()
				return err
			}
			splog.Debug("Loaded %d integrations", len(registry.Integrations))

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			rc := runtime.NewContext(ctx, splog, registry)
			cmd.SetContext(runtime.WithContext(ctx, rc))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to the integrations file (default $REPOPUSH_CONFIG or ~/.repopush/integrations.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Print debug output")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output (also $NO_COLOR)")
	rootCmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "Also write a detailed log to this file (default $REPOPUSH_LOG_FILE)")

	// Add subcommands
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newIntegrationsCmd())

	// PersistentPostRunE is skipped when a command fails, so the log file is
	// closed around RunE instead
	for _, sub := range rootCmd.Commands() {
		withLogClose(sub, func() *output.Splog { return splog })
	}

	return rootCmd
}

// withLogClose records a failing command in the log and closes the log
// once the command returns
func withLogClose(cmd *cobra.Command, current func() *output.Splog) {
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		splog := current()
		if splog == nil {
			return run(cmd, args)
		}
		defer func() {
			if cerr := splog.Close(); err == nil {
				err = cerr
			}
		}()

		err = run(cmd, args)
		if err != nil {
			splog.Logger().Debug("command failed", "command", cmd.CommandPath(), "error", err)
		}
		return err
	}
}

func newSplog(cmd *cobra.Command, flags globalFlags) (*output.Splog, error) {
	logFile := flags.logFile
	if logFile == "" {
		logFile = os.Getenv("REPOPUSH_LOG_FILE")
	}
	return output.NewSplogWithConfig(output.Config{
		Writer:  cmd.OutOrStdout(),
		Debug:   flags.debug || os.Getenv("DEBUG") != "",
		LogFile: logFile,
	})
}

func loadRegistry(path string) (*config.Registry, error) {
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return config.LoadRegistry(path)
}
