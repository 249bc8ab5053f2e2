// Package anvil derives the well-known test accounts of a local anvil or
// hardhat node from their fixed mnemonic.
package anvil

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// Mnemonic funds the default accounts of local development nodes.
const Mnemonic = "test test test test test test test test test test test junk"

// DefaultAccountCount is how many accounts a local node funds by default.
const DefaultAccountCount = 10

// Account is a derived test account.
type Account struct {
	Index      uint32
	Path       string
	Address    common.Address
	PrivateKey *ecdsa.PrivateKey

	// Optional, shared between accounts derived with the same manager
	Nonces *NonceManager
}

// PrivateKeyHex returns the 0x-prefixed private key.
func (a *Account) PrivateKeyHex() string {
	return hexutil.Encode(crypto.FromECDSA(a.PrivateKey))
}

// NextNonce returns the next nonce from the account's nonce manager.
func (a *Account) NextNonce(ctx context.Context) (uint64, error) {
	if a.Nonces == nil {
		return 0, fmt.Errorf("account %s has no nonce manager", a.Address.Hex())
	}
	return a.Nonces.NextNonce(ctx, a.Address)
}

// Option configures account derivation.
type Option func(*options)

type options struct {
	passphrase string
	nonces     *NonceManager
}

// WithNonceManager attaches manager to derived accounts.
func WithNonceManager(manager *NonceManager) Option {
	return func(o *options) {
		o.nonces = manager
	}
}

// WithPassphrase sets the BIP-39 passphrase used to build the seed.
func WithPassphrase(passphrase string) Option {
	return func(o *options) {
		o.passphrase = passphrase
	}
}

// DerivationPath returns m/44'/60'/<account>'/0/<address>.
func DerivationPath(accountIndex, addressIndex uint32) string {
	return fmt.Sprintf("m/44'/60'/%d'/0/%d", accountIndex, addressIndex)
}

// GetAccount returns the n-th default account of a local node.
func GetAccount(n uint32, opts ...Option) (*Account, error) {
	return MnemonicToAccount(Mnemonic, 0, n, opts...)
}

// GetAccounts returns the first count default accounts.
func GetAccounts(count uint32, opts ...Option) ([]*Account, error) {
	result := make([]*Account, 0, count)
	for i := uint32(0); i < count; i++ {
		account, err := GetAccount(i, opts...)
		if err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, nil
}

// MnemonicToAccount derives the account at m/44'/60'/<accountIndex>'/0/<addressIndex>.
func MnemonicToAccount(mnemonic string, accountIndex, addressIndex uint32, opts ...Option) (*Account, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, o.passphrase)
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}

	path := DerivationPath(accountIndex, addressIndex)
	key, err := deriveKey(seed, path)
	if err != nil {
		return nil, fmt.Errorf("failed to derive %s: %w", path, err)
	}

	return &Account{
		Index:      addressIndex,
		Path:       path,
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		PrivateKey: key,
		Nonces:     o.nonces,
	}, nil
}

func deriveKey(seed []byte, path string) (*ecdsa.PrivateKey, error) {
	derivation, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return nil, err
	}

	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}
	for _, n := range derivation {
		key, err = key.Derive(n)
		if err != nil {
			return nil, err
		}
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, err
	}
	return crypto.ToECDSA(priv.Serialize())
}
