package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-kit/internal/domain/config"
)

// ErrEmptyPassword is returned when a keystore would be written unencrypted
var ErrEmptyPassword = errors.New("keystore password must not be empty")

// ExportKeystoreParams contains parameters for writing an account keystore
type ExportKeystoreParams struct {
	SignerInput
	Password string
	OutDir   string
}

// ExportKeystoreResult contains the written keystore
type ExportKeystoreResult struct {
	Address common.Address `json:"address" yaml:"address"`
	Path    string         `json:"path" yaml:"path"`
}

// ExportKeystore encrypts a derived or given key into a V3 keystore file
type ExportKeystore struct {
	config   *config.RuntimeConfig
	accounts AccountProvider
	writer   FileWriter
	keystore KeystoreWriter
}

// NewExportKeystore creates a new ExportKeystore use case
func NewExportKeystore(cfg *config.RuntimeConfig, accounts AccountProvider, writer FileWriter, keystore KeystoreWriter) *ExportKeystore {
	return &ExportKeystore{
		config:   cfg,
		accounts: accounts,
		writer:   writer,
		keystore: keystore,
	}
}

// Run executes the use case
func (uc *ExportKeystore) Run(ctx context.Context, params ExportKeystoreParams) (*ExportKeystoreResult, error) {
	if params.Password == "" {
		return nil, ErrEmptyPassword
	}

	key, err := signerKey(ctx, uc.accounts, params.SignerInput)
	if err != nil {
		return nil, err
	}

	dir := params.OutDir
	if dir == "" {
		dir = "keystore"
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(uc.config.ProjectRoot, dir)
	}
	if err := uc.writer.EnsureDirectory(ctx, dir); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path, err := uc.keystore.WriteKeystore(ctx, key, params.Password, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to write keystore: %w", err)
	}

	return &ExportKeystoreResult{
		Address: crypto.PubkeyToAddress(key.PublicKey),
		Path:    path,
	}, nil
}
