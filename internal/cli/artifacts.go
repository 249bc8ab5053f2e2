package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-kit/internal/cli/render"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
)

// NewArtifactsCmd creates the artifacts command group
func NewArtifactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Work with compiled contract artifacts",
	}
	cmd.AddCommand(newArtifactsExportCmd())
	return cmd
}

func newArtifactsExportCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Generate Go packages from compiled artifacts",
		Long: `Generate one Go package per compiled contract holding its ABI items,
ABI and bytecode, plus aggregate lists of every function, event and error
and an index of all packages.

Artifacts are found with the configured globs. Foundry projects default to
<out>/**/*.json and Hardhat projects to artifacts/contracts/**/*.json.
Contracts whose artifact did not change since the last export are skipped.

Examples:
  # Export with the project defaults
  trebkit artifacts export

  # Export Hardhat artifacts into ./abi
  trebkit artifacts export --preset hardhat --out abi

  # Regenerate everything
  trebkit artifacts export --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			// Globs, directories and package come from configuration, which
			// the flags below override
			result, err := app.ExportArtifacts.Run(cmd.Context(), usecase.ExportArtifactsParams{Force: force})
			if err != nil {
				return err
			}

			return output(cmd, app, result, render.NewExportRenderer(cmd.OutOrStdout(), app.Config.ProjectRoot).Render)
		},
	}

	cmd.Flags().String("preset", "", "Artifact layout: foundry or hardhat (detected by default)")
	cmd.Flags().StringSlice("glob", nil, "Artifact glob, relative to the project root (repeatable)")
	cmd.Flags().String("out", "", "Output directory for generated packages (default \"bindings\")")
	cmd.Flags().String("cache", "", "Directory of the export cache (default \"cache\")")
	cmd.Flags().String("package", "", "Package name of the aggregate and index files (default \"bindings\")")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Regenerate every contract, ignoring the cache")

	return cmd
}
