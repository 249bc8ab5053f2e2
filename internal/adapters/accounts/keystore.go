package accounts

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
)

// KeystoreAdapter writes V3 keystore files in geth's naming scheme
type KeystoreAdapter struct {
	scryptN int
	scryptP int
}

// NewKeystoreAdapter creates a keystore writer with the standard scrypt cost
func NewKeystoreAdapter() *KeystoreAdapter {
	return &KeystoreAdapter{
		scryptN: keystore.StandardScryptN,
		scryptP: keystore.StandardScryptP,
	}
}

// WriteKeystore encrypts key with password into dir and returns the file path
func (k *KeystoreAdapter) WriteKeystore(ctx context.Context, key *ecdsa.PrivateKey, password, dir string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate key id: %w", err)
	}

	address := crypto.PubkeyToAddress(key.PublicKey)
	encrypted, err := keystore.EncryptKey(&keystore.Key{
		Id:         id,
		Address:    address,
		PrivateKey: key,
	}, password, k.scryptN, k.scryptP)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt key: %w", err)
	}

	path := filepath.Join(dir, keyFileName(address.Hex(), time.Now().UTC()))
	if err := os.WriteFile(path, encrypted, 0600); err != nil {
		return "", err
	}
	return path, nil
}

// keyFileName returns UTC--<created>--<address> like geth does
func keyFileName(address string, t time.Time) string {
	ts := strings.ReplaceAll(t.Format("2006-01-02T15-04-05.000000000Z"), ":", "-")
	return fmt.Sprintf("UTC--%s--%s", ts, strings.ToLower(strings.TrimPrefix(address, "0x")))
}

// Ensure the adapter implements the interface
var _ usecase.KeystoreWriter = (*KeystoreAdapter)(nil)
