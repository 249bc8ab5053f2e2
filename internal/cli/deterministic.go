package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-kit/internal/cli/render"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
)

// NewDeterministicCmd creates the deterministic deployment command group
func NewDeterministicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deterministic",
		Aliases: []string{"det"},
		Short:   "Deterministic CREATE2 deployments",
		Long: `Deploy contracts through the deterministic deployer proxy at
0x4e59b44847b379578588920cA78FbF26c0B4956C. The address of a contract only
depends on its init code and the salt, so it is the same on every chain.`,
	}
	cmd.AddCommand(newDeterministicAddressCmd())
	cmd.AddCommand(newDeterministicDeployCmd())
	cmd.AddCommand(newDeterministicBootstrapCmd())
	return cmd
}

// addBytecodeFlags binds the init code selection flags
func addBytecodeFlags(cmd *cobra.Command, input *usecase.BytecodeInput, salt *string) {
	cmd.Flags().StringVar(&input.Bytecode, "bytecode", "", "Init code as hex")
	cmd.Flags().StringVarP(&input.Artifact, "artifact", "a", "", "Contract name or artifact path")
	cmd.Flags().StringVar(salt, "salt", "", "Salt as hex, up to 32 bytes (default zero)")
	cmd.MarkFlagsMutuallyExclusive("bytecode", "artifact")
}

// addSignerFlags binds the deploying key selection flags
func addSignerFlags(cmd *cobra.Command, input *usecase.SignerInput) {
	cmd.Flags().Uint32Var(&input.AccountIndex, "account", 0, "Index of the account derived from the mnemonic")
	cmd.Flags().StringVar(&input.PrivateKey, "private-key", "", "Hex private key, overrides --account")
	cmd.Flags().String("mnemonic", "", "Mnemonic to derive accounts from (default anvil's)")
	cmd.Flags().String("passphrase", "", "BIP-39 passphrase of the mnemonic")
}

// artifactArg lets the artifact be given as the only positional argument
func artifactArg(input *usecase.BytecodeInput, args []string) {
	if len(args) == 1 && input.Artifact == "" && input.Bytecode == "" {
		input.Artifact = args[0]
	}
}

func newDeterministicAddressCmd() *cobra.Command {
	var params usecase.PredictDeterministicParams

	cmd := &cobra.Command{
		Use:   "address [contract]",
		Short: "Compute the deterministic address of a contract",
		Long: `Compute where a contract lands when deployed through the deterministic
deployer. No network connection is needed.

Examples:
  trebkit deterministic address Counter --salt 0x01
  trebkit deterministic address --bytecode 0x6080... --salt 0x01`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{projectOptional: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			artifactArg(&params.BytecodeInput, args)
			result, err := app.PredictDeterministic.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			return output(cmd, app, result, render.NewPredictionRenderer(cmd.OutOrStdout()).Render)
		},
	}

	addBytecodeFlags(cmd, &params.BytecodeInput, &params.Salt)
	return cmd
}

func newDeterministicDeployCmd() *cobra.Command {
	var params usecase.DeployDeterministicParams

	cmd := &cobra.Command{
		Use:   "deploy [contract]",
		Short: "Deploy a contract to its deterministic address",
		Long: `Deploy a contract through the deterministic deployer unless code already
exists at its address. Deployments to chains other than anvil (31337) and
the simulated chain (1337) ask for confirmation unless --yes is given.

Examples:
  # Deploy Counter on a local anvil with its first test account
  trebkit deterministic deploy Counter --network anvil

  # Show the transaction without sending it
  trebkit deterministic deploy Counter --network sepolia --dry-run

  # Deploy raw init code with an explicit key
  trebkit deterministic deploy --bytecode 0x6080... --rpc-url http://localhost:8545 --private-key 0x...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			artifactArg(&params.BytecodeInput, args)
			result, err := app.DeployDeterministic.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			return output(cmd, app, result, render.NewDeployRenderer(cmd.OutOrStdout()).Render)
		},
	}

	addBytecodeFlags(cmd, &params.BytecodeInput, &params.Salt)
	addSignerFlags(cmd, &params.SignerInput)
	cmd.Flags().BoolVar(&params.DryRun, "dry-run", false, "Prepare the transaction without sending it")
	cmd.Flags().BoolVarP(&params.Yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newDeterministicBootstrapCmd() *cobra.Command {
	var params usecase.BootstrapDeployerParams

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Deploy the deterministic deployer proxy",
		Long: `Deploy the deterministic deployer on a chain that lacks it by funding its
presigned deployment signer and broadcasting the presigned transaction.
The transaction has no chain ID, so chains that require replay protection
reject it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.BootstrapDeployer.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			return output(cmd, app, result, render.NewBootstrapRenderer(cmd.OutOrStdout()).Render)
		},
	}

	addSignerFlags(cmd, &params.SignerInput)
	cmd.Flags().BoolVar(&params.NoFund, "no-fund", false, "Fail instead of funding the presigned signer")
	return cmd
}
