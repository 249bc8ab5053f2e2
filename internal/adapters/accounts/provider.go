package accounts

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-kit/internal/domain/config"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
	"github.com/trebuchet-org/treb-kit/pkg/anvil"
)

// ProviderAdapter derives accounts from the configured mnemonic
type ProviderAdapter struct {
	mnemonic   string
	passphrase string
}

// NewProviderAdapter creates a new account provider
func NewProviderAdapter(cfg *config.RuntimeConfig) *ProviderAdapter {
	mnemonic := cfg.Accounts.Mnemonic
	if mnemonic == "" {
		mnemonic = anvil.Mnemonic
	}
	return &ProviderAdapter{
		mnemonic:   mnemonic,
		passphrase: cfg.Accounts.Passphrase,
	}
}

// Account derives the account at address index index
func (p *ProviderAdapter) Account(ctx context.Context, index uint32, opts ...anvil.Option) (*anvil.Account, error) {
	opts = append([]anvil.Option{anvil.WithPassphrase(p.passphrase)}, opts...)
	return anvil.MnemonicToAccount(p.mnemonic, 0, index, opts...)
}

// Accounts derives the first count accounts
func (p *ProviderAdapter) Accounts(ctx context.Context, count uint32) ([]*anvil.Account, error) {
	accounts := make([]*anvil.Account, 0, count)
	for i := uint32(0); i < count; i++ {
		account, err := p.Account(ctx, i)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// PrivateKey parses a hex private key, with or without 0x
func (p *ProviderAdapter) PrivateKey(ctx context.Context, hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// Ensure the adapter implements the interface
var _ usecase.AccountProvider = (*ProviderAdapter)(nil)
