package usecase_test

import (
	"context"
	"crypto/ecdsa"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-kit/internal/domain/config"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
	"github.com/trebuchet-org/treb-kit/pkg/abiexport"
	"github.com/trebuchet-org/treb-kit/pkg/anvil"
	"github.com/trebuchet-org/treb-kit/pkg/deterministic"
)

// Returns 0x2a from every call
const counterInitCode = "0x600a600c600039600a6000f3602a60005260206000f3"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockArtifactRepository struct {
	mock.Mock
}

func (m *MockArtifactRepository) Discover(ctx context.Context, root string, globs []string) ([]string, error) {
	args := m.Called(ctx, root, globs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockArtifactRepository) Load(ctx context.Context, path string) (*abiexport.Artifact, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*abiexport.Artifact), args.Error(1)
}

func (m *MockArtifactRepository) FindByName(ctx context.Context, root string, globs []string, name string) ([]*abiexport.Artifact, error) {
	args := m.Called(ctx, root, globs, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*abiexport.Artifact), args.Error(1)
}

// memoryCache keeps export hashes in memory
type memoryCache struct {
	hashes map[string]string
	saves  int
}

func (c *memoryCache) Load(ctx context.Context, path string) (map[string]string, error) {
	out := make(map[string]string, len(c.hashes))
	for k, v := range c.hashes {
		out[k] = v
	}
	return out, nil
}

func (c *memoryCache) Save(ctx context.Context, path string, hashes map[string]string) error {
	c.hashes = hashes
	c.saves++
	return nil
}

// memoryWriter records written files
type memoryWriter struct {
	files map[string][]byte
	dirs  map[string]bool
}

func newMemoryWriter() *memoryWriter {
	return &memoryWriter{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

func (w *memoryWriter) WriteFile(ctx context.Context, path string, content []byte) error {
	w.files[path] = content
	return nil
}

func (w *memoryWriter) FileExists(ctx context.Context, path string) (bool, error) {
	_, ok := w.files[path]
	return ok, nil
}

func (w *memoryWriter) EnsureDirectory(ctx context.Context, path string) error {
	w.dirs[path] = true
	return nil
}

// stubGenerator renders the contract name so tests can tell outputs apart
type stubGenerator struct {
	contracts  []string
	aggregates map[abiexport.Kind]int
	index      []usecase.IndexEntry
}

func newStubGenerator() *stubGenerator {
	return &stubGenerator{aggregates: make(map[abiexport.Kind]int)}
}

func (g *stubGenerator) PackageName(contractName string) string {
	switch contractName {
	case "Token", "token":
		return "token"
	}
	return contractName
}

func (g *stubGenerator) GenerateContract(ctx context.Context, module usecase.ContractModule) ([]byte, error) {
	g.contracts = append(g.contracts, module.Artifact.ContractName)
	return []byte("package " + module.Package), nil
}

func (g *stubGenerator) GenerateAggregate(ctx context.Context, pkg string, kind abiexport.Kind, items []abiexport.Item) ([]byte, error) {
	g.aggregates[kind] = len(items)
	return []byte("package " + pkg), nil
}

func (g *stubGenerator) GenerateIndex(ctx context.Context, pkg string, entries []usecase.IndexEntry) ([]byte, error) {
	g.index = entries
	return []byte("package " + pkg), nil
}

type MockInteractiveSelector struct {
	mock.Mock
}

func (m *MockInteractiveSelector) Confirm(ctx context.Context, prompt string) (bool, error) {
	args := m.Called(ctx, prompt)
	return args.Bool(0), args.Error(1)
}

func (m *MockInteractiveSelector) SelectArtifact(ctx context.Context, artifacts []*abiexport.Artifact, prompt string) (*abiexport.Artifact, error) {
	args := m.Called(ctx, artifacts, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*abiexport.Artifact), args.Error(1)
}

type MockNetworkResolver struct {
	mock.Mock
}

func (m *MockNetworkResolver) GetNetworks(ctx context.Context) []string {
	args := m.Called(ctx)
	return args.Get(0).([]string)
}

func (m *MockNetworkResolver) ResolveNetwork(ctx context.Context, name string) (*config.Network, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*config.Network), args.Error(1)
}

type MockKeystoreWriter struct {
	mock.Mock
}

func (m *MockKeystoreWriter) WriteKeystore(ctx context.Context, key *ecdsa.PrivateKey, password, dir string) (string, error) {
	args := m.Called(ctx, key, password, dir)
	return args.String(0), args.Error(1)
}

// anvilAccounts derives from the default mnemonic
type anvilAccounts struct{}

func (anvilAccounts) Account(ctx context.Context, index uint32, opts ...anvil.Option) (*anvil.Account, error) {
	return anvil.GetAccount(index, opts...)
}

func (anvilAccounts) Accounts(ctx context.Context, count uint32) ([]*anvil.Account, error) {
	return anvil.GetAccounts(count)
}

func (anvilAccounts) PrivateKey(ctx context.Context, hexKey string) (*ecdsa.PrivateKey, error) {
	raw, err := hexutil.Decode(hexKey)
	if err != nil {
		return nil, err
	}
	return crypto.ToECDSA(raw)
}

// simChain serves a simulated backend as a ChainClient and mines on demand
type simChain struct {
	simulated.Client
	backend *simulated.Backend
	closed  bool
}

func (c *simChain) WaitMined(ctx context.Context, hash common.Hash) (*usecase.ReceiptInfo, error) {
	c.backend.Commit()
	receipt, err := c.Client.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	return &usecase.ReceiptInfo{
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
		Success:     receipt.Status == types.ReceiptStatusSuccessful,
	}, nil
}

func (c *simChain) Close() {
	c.closed = true
}

type simDialer struct {
	chain *simChain
	urls  []string
}

func (d *simDialer) Dial(ctx context.Context, rpcURL string) (usecase.ChainClient, error) {
	d.urls = append(d.urls, rpcURL)
	return d.chain, nil
}

// newSimChain starts a chain that funds the first anvil account and,
// optionally, carries the deterministic deployer
func newSimChain(t *testing.T, withDeployer bool) *simChain {
	t.Helper()

	account, err := anvil.GetAccount(0)
	require.NoError(t, err)

	balance := new(big.Int).Mul(big.NewInt(1000), big.NewInt(params.Ether))
	alloc := types.GenesisAlloc{
		account.Address: {Balance: balance},
	}
	if withDeployer {
		alloc[deterministic.DeployerAddress] = types.Account{
			Code:    hexutil.MustDecode(deterministic.DeployerRuntimeCode),
			Balance: new(big.Int),
		}
	}

	backend := simulated.NewBackend(alloc)
	t.Cleanup(func() { _ = backend.Close() })
	return &simChain{Client: backend.Client(), backend: backend}
}
