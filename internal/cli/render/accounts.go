package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
)

// AccountsRenderer renders derived accounts as a table
type AccountsRenderer struct {
	out io.Writer
}

// NewAccountsRenderer creates a new accounts renderer
func NewAccountsRenderer(out io.Writer) *AccountsRenderer {
	return &AccountsRenderer{out: out}
}

// Render renders the account list
func (r *AccountsRenderer) Render(result *usecase.ListAccountsResult) error {
	if result.Default {
		fmt.Fprintln(r.out, headerStyle.Sprint("🔑 Anvil test accounts"))
	} else {
		fmt.Fprintln(r.out, headerStyle.Sprint("🔑 Accounts of the configured mnemonic"))
	}
	fmt.Fprintln(r.out)

	showKeys := len(result.Accounts) > 0 && result.Accounts[0].PrivateKey != ""

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateHeader = false

	header := table.Row{"#", "Address", "Path"}
	if showKeys {
		header = append(header, "Private Key")
	}
	t.AppendHeader(header)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
	})

	for _, account := range result.Accounts {
		row := table.Row{account.Index, addressStyle.Sprint(account.Address.Hex()), account.Path}
		if showKeys {
			row = append(row, hashStyle.Sprint(account.PrivateKey))
		}
		t.AppendRow(row)
	}
	t.Render()

	if showKeys && result.Default {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, FormatWarning("These keys are public. Never use them on a live network."))
	}
	return nil
}

// KeystoreRenderer renders written keystores
type KeystoreRenderer struct {
	out io.Writer
}

// NewKeystoreRenderer creates a new keystore renderer
func NewKeystoreRenderer(out io.Writer) *KeystoreRenderer {
	return &KeystoreRenderer{out: out}
}

// Render renders the keystore result
func (r *KeystoreRenderer) Render(result *usecase.ExportKeystoreResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Keystore written for %s", result.Address.Hex())))
	fmt.Fprint(r.out, field("Path", result.Path))
	return nil
}

var (
	_ Renderer[*usecase.ListAccountsResult]   = (*AccountsRenderer)(nil)
	_ Renderer[*usecase.ExportKeystoreResult] = (*KeystoreRenderer)(nil)
)
