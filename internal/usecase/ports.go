package usecase

import (
	"context"
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-kit/internal/domain/config"
	"github.com/trebuchet-org/treb-kit/pkg/abiexport"
	"github.com/trebuchet-org/treb-kit/pkg/anvil"
	"github.com/trebuchet-org/treb-kit/pkg/deterministic"
)

// ArtifactRepository discovers and loads compiled contract artifacts
type ArtifactRepository interface {
	// Discover returns the artifact files matching globs below root, sorted
	Discover(ctx context.Context, root string, globs []string) ([]string, error)
	Load(ctx context.Context, path string) (*abiexport.Artifact, error)
	// FindByName returns the contract artifacts named name. No match yields a
	// *domain.ContractNotFoundError carrying close names.
	FindByName(ctx context.Context, root string, globs []string, name string) ([]*abiexport.Artifact, error)
}

// ExportCache persists the contract name -> artifact hash mapping
type ExportCache interface {
	Load(ctx context.Context, path string) (map[string]string, error)
	Save(ctx context.Context, path string, hashes map[string]string) error
}

// FileWriter handles file system writes
type FileWriter interface {
	WriteFile(ctx context.Context, path string, content []byte) error
	FileExists(ctx context.Context, path string) (bool, error)
	EnsureDirectory(ctx context.Context, path string) error
}

// ContractModule is the input of a generated contract package
type ContractModule struct {
	Artifact *abiexport.Artifact
	Exports  *abiexport.Exports
	Package  string
}

// IndexEntry lists one generated contract package in the index file
type IndexEntry struct {
	Contract string
	Package  string
}

// ModuleGenerator renders generated Go source
type ModuleGenerator interface {
	// PackageName returns the package a contract is generated into
	PackageName(contractName string) string
	GenerateContract(ctx context.Context, module ContractModule) ([]byte, error)
	GenerateAggregate(ctx context.Context, pkg string, kind abiexport.Kind, items []abiexport.Item) ([]byte, error)
	GenerateIndex(ctx context.Context, pkg string, entries []IndexEntry) ([]byte, error)
}

// ChainClient is a connection to a network
type ChainClient interface {
	deterministic.BootstrapClient
	// WaitMined blocks until the transaction has a receipt
	WaitMined(ctx context.Context, hash common.Hash) (*ReceiptInfo, error)
	Close()
}

// ReceiptInfo is the part of a receipt the use cases report
type ReceiptInfo struct {
	BlockNumber uint64 `json:"blockNumber" yaml:"blockNumber"`
	GasUsed     uint64 `json:"gasUsed" yaml:"gasUsed"`
	Success     bool   `json:"success" yaml:"success"`
}

// ChainDialer opens chain connections
type ChainDialer interface {
	Dial(ctx context.Context, rpcURL string) (ChainClient, error)
}

// NetworkResolver resolves foundry.toml networks
type NetworkResolver interface {
	GetNetworks(ctx context.Context) []string
	ResolveNetwork(ctx context.Context, name string) (*config.Network, error)
}

// AccountProvider derives signing accounts
type AccountProvider interface {
	Account(ctx context.Context, index uint32, opts ...anvil.Option) (*anvil.Account, error)
	Accounts(ctx context.Context, count uint32) ([]*anvil.Account, error)
	PrivateKey(ctx context.Context, hexKey string) (*ecdsa.PrivateKey, error)
}

// KeystoreWriter writes encrypted V3 keystore files
type KeystoreWriter interface {
	WriteKeystore(ctx context.Context, key *ecdsa.PrivateKey, password, dir string) (string, error)
}

// InteractiveSelector asks the user for input
type InteractiveSelector interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
	SelectArtifact(ctx context.Context, artifacts []*abiexport.Artifact, prompt string) (*abiexport.Artifact, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   string
	Current int
	Total   int
	Message string
	Spinner bool
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
