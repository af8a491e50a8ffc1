package cli

import (
	"github.com/spf13/cobra"

	"repopush.dev/repopush/internal/actions"
	"repopush.dev/repopush/internal/cli/common"
	"repopush.dev/repopush/internal/runtime"
)

// newIntegrationsCmd creates the integrations command
func newIntegrationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "integrations",
		Short: "List the configured hosting-service integrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				return actions.IntegrationsAction(ctx)
			})
		},
	}
}
