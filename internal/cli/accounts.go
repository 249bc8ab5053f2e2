package cli

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-kit/internal/cli/render"
	"github.com/trebuchet-org/treb-kit/internal/domain"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
)

// NewAccountsCmd creates the accounts command group
func NewAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "accounts",
		Short:       "Derive test accounts from a mnemonic",
		Annotations: map[string]string{projectOptional: "true"},
	}
	cmd.AddCommand(newAccountsListCmd())
	cmd.AddCommand(newAccountsKeystoreCmd())
	return cmd
}

func newAccountsListCmd() *cobra.Command {
	var params usecase.ListAccountsParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the accounts derived from the mnemonic",
		Long: `List the accounts of m/44'/60'/0'/0/<index>. Without a configured mnemonic
these are the well-known anvil and hardhat test accounts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListAccounts.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			return output(cmd, app, result, render.NewAccountsRenderer(cmd.OutOrStdout()).Render)
		},
	}

	cmd.Flags().Uint32("count", 0, "Number of accounts (default 10)")
	cmd.Flags().BoolVar(&params.ShowKeys, "show-keys", false, "Include private keys")
	cmd.Flags().String("mnemonic", "", "Mnemonic to derive accounts from (default anvil's)")
	cmd.Flags().String("passphrase", "", "BIP-39 passphrase of the mnemonic")
	return cmd
}

func newAccountsKeystoreCmd() *cobra.Command {
	var params usecase.ExportKeystoreParams

	cmd := &cobra.Command{
		Use:   "keystore",
		Short: "Write an account to an encrypted keystore file",
		Long: `Encrypt a derived account, or the key given with --private-key, into a
V3 keystore file usable with cast and forge --keystore.

Examples:
  trebkit accounts keystore --account 1 --out ~/.foundry/keystores`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			if params.Password == "" {
				if app.Config.NonInteractive {
					return fmt.Errorf("%w: pass --password", domain.ErrNonInteractive)
				}
				password, err := promptPassword()
				if err != nil {
					return err
				}
				params.Password = password
			}

			result, err := app.ExportKeystore.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			return output(cmd, app, result, render.NewKeystoreRenderer(cmd.OutOrStdout()).Render)
		},
	}

	addSignerFlags(cmd, &params.SignerInput)
	cmd.Flags().StringVar(&params.Password, "password", "", "Keystore password (prompted when empty)")
	cmd.Flags().StringVar(&params.OutDir, "dir", "", "Directory for the keystore file (default \"keystore\")")
	return cmd
}

func promptPassword() (string, error) {
	prompt := promptui.Prompt{
		Label: "Keystore password",
		Mask:  '*',
		Validate: func(input string) error {
			if input == "" {
				return usecase.ErrEmptyPassword
			}
			return nil
		},
	}
	password, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) {
		return "", domain.ErrCancelled
	}
	if err != nil {
		return "", fmt.Errorf("password prompt failed: %w", err)
	}
	return password, nil
}
