package usecase_test

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-kit/internal/domain"
	"github.com/trebuchet-org/treb-kit/internal/domain/config"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
	"github.com/trebuchet-org/treb-kit/pkg/abiexport"
	"github.com/trebuchet-org/treb-kit/pkg/deterministic"
)

var counterRuntime = hexutil.MustDecode("0x602a60005260206000f3")

func counterArtifact(t *testing.T, name string) *abiexport.Artifact {
	t.Helper()
	artifact, err := abiexport.ParseArtifact([]byte(`{"contractName":"` + name + `","abi":[` + ownerFn + `],"bytecode":"` + counterInitCode + `","deployedBytecode":"0x602a60005260206000f3"}`))
	require.NoError(t, err)
	return artifact
}

func TestPredictDeterministic(t *testing.T) {
	cfg := &config.RuntimeConfig{
		ProjectRoot: "/project",
		Artifacts:   config.ArtifactsConfig{Globs: []string{"out/**/*.json"}},
	}
	salt := "0x" + strings.Repeat("00", 31) + "01"
	code := hexutil.MustDecode(counterInitCode)
	expected := deterministic.Address(common.HexToHash(salt), code)

	t.Run("raw bytecode", func(t *testing.T) {
		uc := usecase.NewPredictDeterministic(cfg, &MockArtifactRepository{}, &MockInteractiveSelector{})

		prediction, err := uc.Run(context.Background(), usecase.PredictDeterministicParams{
			BytecodeInput: usecase.BytecodeInput{Bytecode: counterInitCode},
			Salt:          salt,
		})
		require.NoError(t, err)

		assert.Equal(t, expected, prediction.Address)
		assert.Equal(t, deterministic.DeployerAddress, prediction.Deployer)
		assert.Empty(t, prediction.Contract)
		assert.Equal(t, append(common.HexToHash(salt).Bytes(), code...), []byte(prediction.CallData))
	})

	t.Run("artifact by name", func(t *testing.T) {
		repo := &MockArtifactRepository{}
		repo.On("FindByName", mock.Anything, "/project", []string{"out/**/*.json"}, "Counter").
			Return([]*abiexport.Artifact{counterArtifact(t, "Counter")}, nil)
		uc := usecase.NewPredictDeterministic(cfg, repo, &MockInteractiveSelector{})

		prediction, err := uc.Run(context.Background(), usecase.PredictDeterministicParams{
			BytecodeInput: usecase.BytecodeInput{Artifact: "Counter"},
			Salt:          salt,
		})
		require.NoError(t, err)
		assert.Equal(t, "Counter", prediction.Contract)
		assert.Equal(t, expected, prediction.Address)
		repo.AssertExpectations(t)
	})

	t.Run("artifact by path", func(t *testing.T) {
		repo := &MockArtifactRepository{}
		repo.On("Load", mock.Anything, "/project/out/Counter.sol/Counter.json").Return(counterArtifact(t, "Counter"), nil)
		uc := usecase.NewPredictDeterministic(cfg, repo, &MockInteractiveSelector{})

		prediction, err := uc.Run(context.Background(), usecase.PredictDeterministicParams{
			BytecodeInput: usecase.BytecodeInput{Artifact: "out/Counter.sol/Counter.json"},
			Salt:          salt,
		})
		require.NoError(t, err)
		assert.Equal(t, expected, prediction.Address)
	})

	t.Run("ambiguous name asks the selector", func(t *testing.T) {
		first, second := counterArtifact(t, "Counter"), counterArtifact(t, "Counter")
		second.SourceName = "src/other/Counter.sol"

		repo := &MockArtifactRepository{}
		repo.On("FindByName", mock.Anything, mock.Anything, mock.Anything, "Counter").
			Return([]*abiexport.Artifact{first, second}, nil)
		selector := &MockInteractiveSelector{}
		selector.On("SelectArtifact", mock.Anything, []*abiexport.Artifact{first, second}, mock.Anything).Return(second, nil)

		uc := usecase.NewPredictDeterministic(cfg, repo, selector)
		_, err := uc.Run(context.Background(), usecase.PredictDeterministicParams{
			BytecodeInput: usecase.BytecodeInput{Artifact: "Counter"},
			Salt:          salt,
		})
		require.NoError(t, err)
		selector.AssertExpectations(t)
	})

	t.Run("errors", func(t *testing.T) {
		abstract := counterArtifact(t, "Abstract")
		abstract.Bytecode = "0x"
		repo := &MockArtifactRepository{}
		repo.On("FindByName", mock.Anything, mock.Anything, mock.Anything, "Abstract").
			Return([]*abiexport.Artifact{abstract}, nil)
		repo.On("FindByName", mock.Anything, mock.Anything, mock.Anything, "Countr").
			Return(nil, &domain.ContractNotFoundError{Name: "Countr", Suggestions: []string{"Counter"}})
		uc := usecase.NewPredictDeterministic(cfg, repo, &MockInteractiveSelector{})

		_, err := uc.Run(context.Background(), usecase.PredictDeterministicParams{Salt: salt})
		assert.ErrorIs(t, err, domain.ErrMissingBytecode)

		_, err = uc.Run(context.Background(), usecase.PredictDeterministicParams{
			BytecodeInput: usecase.BytecodeInput{Bytecode: "0x60"},
			Salt:          "0x" + strings.Repeat("11", 33),
		})
		assert.Error(t, err)

		_, err = uc.Run(context.Background(), usecase.PredictDeterministicParams{
			BytecodeInput: usecase.BytecodeInput{Bytecode: "zz"},
			Salt:          salt,
		})
		var bytecodeErr *deterministic.BytecodeError
		assert.ErrorAs(t, err, &bytecodeErr)

		_, err = uc.Run(context.Background(), usecase.PredictDeterministicParams{
			BytecodeInput: usecase.BytecodeInput{Artifact: "Abstract"},
			Salt:          salt,
		})
		var noCode *domain.ArtifactWithoutBytecodeError
		assert.ErrorAs(t, err, &noCode)

		_, err = uc.Run(context.Background(), usecase.PredictDeterministicParams{
			BytecodeInput: usecase.BytecodeInput{Artifact: "Countr"},
			Salt:          salt,
		})
		assert.ErrorIs(t, err, domain.ErrContractNotFound)
	})
}

func newDeployUseCase(cfg *config.RuntimeConfig, chain *simChain, selector usecase.InteractiveSelector) (*usecase.DeployDeterministic, *simDialer) {
	dialer := &simDialer{chain: chain}
	return usecase.NewDeployDeterministic(cfg, &MockArtifactRepository{}, dialer, anvilAccounts{}, selector, usecase.NopProgress{}, discardLogger()), dialer
}

func localConfig() *config.RuntimeConfig {
	return &config.RuntimeConfig{
		ProjectRoot: "/project",
		Network:     &config.Network{Name: "local", ChainID: 1337, RPCURL: "http://localhost:8545"},
	}
}

func TestDeployDeterministic(t *testing.T) {
	salt := "0x" + strings.Repeat("ab", 32)
	params := usecase.DeployDeterministicParams{
		BytecodeInput: usecase.BytecodeInput{Bytecode: counterInitCode},
		Salt:          salt,
	}

	t.Run("deploys then reports existing", func(t *testing.T) {
		chain := newSimChain(t, true)
		uc, dialer := newDeployUseCase(localConfig(), chain, &MockInteractiveSelector{})

		result, err := uc.Run(context.Background(), params)
		require.NoError(t, err)
		require.NotNil(t, result.TxHash)
		require.NotNil(t, result.Receipt)
		assert.True(t, result.Receipt.Success)
		assert.False(t, result.Existed)
		assert.Equal(t, uint64(1337), result.ChainID)
		assert.Equal(t, []string{"http://localhost:8545"}, dialer.urls)
		assert.True(t, chain.closed)

		code, err := chain.CodeAt(context.Background(), result.Prediction.Address, nil)
		require.NoError(t, err)
		assert.Equal(t, counterRuntime, code)

		again, err := uc.Run(context.Background(), params)
		require.NoError(t, err)
		assert.True(t, again.Existed)
		assert.Nil(t, again.TxHash)
	})

	t.Run("dry run prepares without sending", func(t *testing.T) {
		chain := newSimChain(t, true)
		uc, _ := newDeployUseCase(localConfig(), chain, &MockInteractiveSelector{})

		dry := params
		dry.DryRun = true
		result, err := uc.Run(context.Background(), dry)
		require.NoError(t, err)
		require.NotNil(t, result.Prepared)
		assert.Nil(t, result.TxHash)
		assert.Equal(t, deterministic.DeployerAddress, result.Prepared.To)
		assert.Equal(t, result.Prediction.CallData, result.Prepared.Data)
		assert.NotZero(t, result.Prepared.Gas)

		code, err := chain.CodeAt(context.Background(), result.Prediction.Address, nil)
		require.NoError(t, err)
		assert.Empty(t, code)
	})

	t.Run("missing deployer", func(t *testing.T) {
		chain := newSimChain(t, false)
		uc, _ := newDeployUseCase(localConfig(), chain, &MockInteractiveSelector{})

		_, err := uc.Run(context.Background(), params)
		var notDeployed *deterministic.DeployerNotDeployedError
		assert.ErrorAs(t, err, &notDeployed)
	})

	t.Run("no network", func(t *testing.T) {
		uc, _ := newDeployUseCase(&config.RuntimeConfig{}, nil, &MockInteractiveSelector{})
		_, err := uc.Run(context.Background(), params)
		assert.ErrorIs(t, err, domain.ErrNoNetwork)
	})

	t.Run("explicit private key", func(t *testing.T) {
		chain := newSimChain(t, true)
		uc, _ := newDeployUseCase(localConfig(), chain, &MockInteractiveSelector{})

		withKey := params
		withKey.PrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
		result, err := uc.Run(context.Background(), withKey)
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), result.From)
	})
}

// remoteChain reports a public chain ID on top of the simulated backend
type remoteChain struct {
	*simChain
}

func (c *remoteChain) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(11155111), nil
}

type remoteDialer struct {
	chain *remoteChain
}

func (d *remoteDialer) Dial(ctx context.Context, rpcURL string) (usecase.ChainClient, error) {
	return d.chain, nil
}

func TestDeployDeterministicConfirmation(t *testing.T) {
	params := usecase.DeployDeterministicParams{
		BytecodeInput: usecase.BytecodeInput{Bytecode: counterInitCode},
		Salt:          "0x01",
	}
	cfg := &config.RuntimeConfig{Network: &config.Network{Name: "sepolia", RPCURL: "https://rpc.sepolia.org"}}

	t.Run("declined", func(t *testing.T) {
		chain := &remoteChain{newSimChain(t, true)}
		selector := &MockInteractiveSelector{}
		selector.On("Confirm", mock.Anything, mock.MatchedBy(func(prompt string) bool {
			return strings.Contains(prompt, "sepolia") && strings.Contains(prompt, "11155111")
		})).Return(false, nil)

		uc := usecase.NewDeployDeterministic(cfg, &MockArtifactRepository{}, &remoteDialer{chain}, anvilAccounts{}, selector, usecase.NopProgress{}, discardLogger())
		_, err := uc.Run(context.Background(), params)
		assert.ErrorIs(t, err, domain.ErrCancelled)
		selector.AssertExpectations(t)
	})

	t.Run("prompt failure", func(t *testing.T) {
		chain := &remoteChain{newSimChain(t, true)}
		selector := &MockInteractiveSelector{}
		selector.On("Confirm", mock.Anything, mock.Anything).Return(false, domain.ErrNonInteractive)

		uc := usecase.NewDeployDeterministic(cfg, &MockArtifactRepository{}, &remoteDialer{chain}, anvilAccounts{}, selector, usecase.NopProgress{}, discardLogger())
		_, err := uc.Run(context.Background(), params)
		assert.ErrorIs(t, err, domain.ErrNonInteractive)
	})

	t.Run("dry run never prompts", func(t *testing.T) {
		chain := &remoteChain{newSimChain(t, true)}
		selector := &MockInteractiveSelector{}

		dry := params
		dry.DryRun = true
		uc := usecase.NewDeployDeterministic(cfg, &MockArtifactRepository{}, &remoteDialer{chain}, anvilAccounts{}, selector, usecase.NopProgress{}, discardLogger())
		result, err := uc.Run(context.Background(), dry)
		require.NoError(t, err)
		assert.Equal(t, uint64(11155111), result.ChainID)
		require.NotNil(t, result.Prepared)
		assert.NotNil(t, result.Prepared.GasFeeCap)
		selector.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
	})

	t.Run("local chains never prompt", func(t *testing.T) {
		chain := newSimChain(t, true)
		selector := &MockInteractiveSelector{}
		uc, _ := newDeployUseCase(localConfig(), chain, selector)

		_, err := uc.Run(context.Background(), params)
		require.NoError(t, err)
		selector.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
	})
}

func TestBootstrapDeployer(t *testing.T) {
	t.Run("already deployed", func(t *testing.T) {
		chain := newSimChain(t, true)
		dialer := &simDialer{chain: chain}
		uc := usecase.NewBootstrapDeployer(localConfig(), dialer, anvilAccounts{}, &MockInteractiveSelector{}, usecase.NopProgress{}, discardLogger())

		result, err := uc.Run(context.Background(), usecase.BootstrapDeployerParams{})
		require.NoError(t, err)
		assert.True(t, result.Existed)
		assert.Equal(t, deterministic.DeployerAddress, result.Deployer)
		assert.Nil(t, result.DeployTx)
	})

	t.Run("no funding", func(t *testing.T) {
		chain := newSimChain(t, false)
		dialer := &simDialer{chain: chain}
		uc := usecase.NewBootstrapDeployer(localConfig(), dialer, anvilAccounts{}, &MockInteractiveSelector{}, usecase.NopProgress{}, discardLogger())

		_, err := uc.Run(context.Background(), usecase.BootstrapDeployerParams{NoFund: true})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "needs 10000000000000000 wei")
	})

	t.Run("no network", func(t *testing.T) {
		uc := usecase.NewBootstrapDeployer(&config.RuntimeConfig{}, &simDialer{}, anvilAccounts{}, &MockInteractiveSelector{}, usecase.NopProgress{}, discardLogger())
		_, err := uc.Run(context.Background(), usecase.BootstrapDeployerParams{})
		assert.ErrorIs(t, err, domain.ErrNoNetwork)
	})
}
