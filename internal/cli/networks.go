package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-kit/internal/cli/render"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
)

// NewNetworksCmd creates the networks command
func NewNetworksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "networks",
		Short: "List available networks from foundry.toml",
		Long: `List all networks configured in the [rpc_endpoints] section of foundry.toml.

This command shows all available networks and attempts to fetch their chain IDs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListNetworks.Run(cmd.Context(), usecase.ListNetworksParams{})
			if err != nil {
				return err
			}

			return output(cmd, app, result, render.NewNetworksRenderer(cmd.OutOrStdout()).Render)
		},
	}

	return cmd
}
