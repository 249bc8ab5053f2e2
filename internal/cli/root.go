package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-kit/internal/app"
	"github.com/trebuchet-org/treb-kit/internal/cli/render"
	"github.com/trebuchet-org/treb-kit/internal/config"
	domainconfig "github.com/trebuchet-org/treb-kit/internal/domain/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"

	// projectOptional marks commands that also run outside a project
	projectOptional = "project-optional"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trebkit",
		Short: "Artifact exports and deterministic deployments for EVM projects",
		Long: `trebkit turns compiled Foundry and Hardhat artifacts into Go packages,
deploys contracts to deterministic addresses through the CREATE2 deployer
proxy and derives the anvil test accounts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				if !isProjectOptional(cmd) {
					return err
				}
				if projectRoot, err = os.Getwd(); err != nil {
					return err
				}
			}

			v, err := config.SetupViper(projectRoot, cmd.Flags())
			if err != nil {
				return err
			}

			appInstance, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringP("output", "o", string(domainconfig.OutputText), "Output format (text, json, yaml)")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network from foundry.toml [rpc_endpoints]")
	rootCmd.PersistentFlags().String("rpc-url", "", "RPC URL, overrides the network's endpoint")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Timeout for the whole command (default 5m)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	artifactsCmd := NewArtifactsCmd()
	artifactsCmd.GroupID = "main"
	rootCmd.AddCommand(artifactsCmd)

	deterministicCmd := NewDeterministicCmd()
	deterministicCmd.GroupID = "main"
	rootCmd.AddCommand(deterministicCmd)

	accountsCmd := NewAccountsCmd()
	accountsCmd.GroupID = "management"
	rootCmd.AddCommand(accountsCmd)

	networksCmd := NewNetworksCmd()
	networksCmd.GroupID = "management"
	rootCmd.AddCommand(networksCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// isProjectOptional reports whether cmd or one of its parents may run
// outside a project
func isProjectOptional(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[projectOptional] == "true" {
			return true
		}
	}
	return false
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}

// output writes result in the configured structured format, or with
// renderText for text output
func output[T any](cmd *cobra.Command, a *app.App, result T, renderText func(T) error) error {
	handled, err := render.Structured(cmd.OutOrStdout(), a.Config.Output, result)
	if handled || err != nil {
		return err
	}
	return renderText(result)
}
