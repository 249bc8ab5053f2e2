package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-kit/internal/domain/config"
	"github.com/trebuchet-org/treb-kit/pkg/anvil"
)

// ListAccountsParams contains parameters for listing derived accounts
type ListAccountsParams struct {
	Count    uint32
	ShowKeys bool
}

// AccountInfo describes one derived account
type AccountInfo struct {
	Index      uint32         `json:"index" yaml:"index"`
	Path       string         `json:"path" yaml:"path"`
	Address    common.Address `json:"address" yaml:"address"`
	PrivateKey string         `json:"privateKey,omitempty" yaml:"privateKey,omitempty"`
}

// ListAccountsResult contains the derived accounts
type ListAccountsResult struct {
	Mnemonic string        `json:"-" yaml:"-"`
	Default  bool          `json:"defaultMnemonic" yaml:"defaultMnemonic"`
	Accounts []AccountInfo `json:"accounts" yaml:"accounts"`
}

// ListAccounts derives the accounts of the configured mnemonic
type ListAccounts struct {
	config   *config.RuntimeConfig
	accounts AccountProvider
}

// NewListAccounts creates a new ListAccounts use case
func NewListAccounts(cfg *config.RuntimeConfig, accounts AccountProvider) *ListAccounts {
	return &ListAccounts{
		config:   cfg,
		accounts: accounts,
	}
}

// Run executes the use case
func (uc *ListAccounts) Run(ctx context.Context, params ListAccountsParams) (*ListAccountsResult, error) {
	count := params.Count
	if count == 0 {
		count = uc.config.Accounts.Count
	}
	if count == 0 {
		count = anvil.DefaultAccountCount
	}

	derived, err := uc.accounts.Accounts(ctx, count)
	if err != nil {
		return nil, err
	}

	mnemonic := uc.config.Accounts.Mnemonic
	if mnemonic == "" {
		mnemonic = anvil.Mnemonic
	}

	result := &ListAccountsResult{
		Mnemonic: mnemonic,
		Default:  mnemonic == anvil.Mnemonic,
		Accounts: make([]AccountInfo, 0, len(derived)),
	}
	for _, account := range derived {
		info := AccountInfo{
			Index:   account.Index,
			Path:    account.Path,
			Address: account.Address,
		}
		if params.ShowKeys {
			info.PrivateKey = account.PrivateKeyHex()
		}
		result.Accounts = append(result.Accounts, info)
	}

	return result, nil
}
