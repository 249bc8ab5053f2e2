package usecase

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-kit/internal/domain"
	"github.com/trebuchet-org/treb-kit/internal/domain/config"
	"github.com/trebuchet-org/treb-kit/pkg/anvil"
	"github.com/trebuchet-org/treb-kit/pkg/deterministic"
)

// SignerInput selects the deploying key: a raw private key, or else the
// configured mnemonic's account at AccountIndex
type SignerInput struct {
	AccountIndex uint32
	PrivateKey   string
}

// DeployDeterministicParams contains parameters for a deterministic deployment
type DeployDeterministicParams struct {
	BytecodeInput
	SignerInput
	Salt   string
	DryRun bool
	Yes    bool
}

// PreparedTransaction is a deployment transaction that was not sent
type PreparedTransaction struct {
	To        common.Address `json:"to" yaml:"to"`
	Data      hexutil.Bytes  `json:"data" yaml:"data"`
	Gas       uint64         `json:"gas" yaml:"gas"`
	GasPrice  *hexutil.Big   `json:"gasPrice,omitempty" yaml:"gasPrice,omitempty"`
	GasTipCap *hexutil.Big   `json:"maxPriorityFeePerGas,omitempty" yaml:"maxPriorityFeePerGas,omitempty"`
	GasFeeCap *hexutil.Big   `json:"maxFeePerGas,omitempty" yaml:"maxFeePerGas,omitempty"`
}

// DeployDeterministicResult contains the result of a deterministic deployment
type DeployDeterministicResult struct {
	Prediction *DeterministicPrediction `json:"prediction" yaml:"prediction"`
	Network    string                   `json:"network" yaml:"network"`
	ChainID    uint64                   `json:"chainId" yaml:"chainId"`
	From       common.Address           `json:"from" yaml:"from"`
	Existed    bool                     `json:"existed" yaml:"existed"`
	DryRun     bool                     `json:"dryRun" yaml:"dryRun"`
	TxHash     *common.Hash             `json:"txHash,omitempty" yaml:"txHash,omitempty"`
	Receipt    *ReceiptInfo             `json:"receipt,omitempty" yaml:"receipt,omitempty"`
	Prepared   *PreparedTransaction     `json:"prepared,omitempty" yaml:"prepared,omitempty"`
}

// DeployDeterministic deploys a contract through the deterministic deployer
// unless it is already there
type DeployDeterministic struct {
	config    *config.RuntimeConfig
	artifacts ArtifactRepository
	dialer    ChainDialer
	accounts  AccountProvider
	selector  InteractiveSelector
	progress  ProgressSink
	log       *slog.Logger
}

// NewDeployDeterministic creates a new DeployDeterministic use case
func NewDeployDeterministic(
	cfg *config.RuntimeConfig,
	artifacts ArtifactRepository,
	dialer ChainDialer,
	accounts AccountProvider,
	selector InteractiveSelector,
	progress ProgressSink,
	log *slog.Logger,
) *DeployDeterministic {
	return &DeployDeterministic{
		config:    cfg,
		artifacts: artifacts,
		dialer:    dialer,
		accounts:  accounts,
		selector:  selector,
		progress:  progress,
		log:       log,
	}
}

// Run executes the use case
func (uc *DeployDeterministic) Run(ctx context.Context, params DeployDeterministicParams) (*DeployDeterministicResult, error) {
	if uc.config.Network == nil {
		return nil, domain.ErrNoNetwork
	}

	salt, err := deterministic.ParseSalt(params.Salt)
	if err != nil {
		return nil, err
	}
	code, contract, err := resolveBytecode(ctx, uc.config, uc.artifacts, uc.selector, params.BytecodeInput)
	if err != nil {
		return nil, err
	}
	key, err := signerKey(ctx, uc.accounts, params.SignerInput)
	if err != nil {
		return nil, err
	}

	client, err := uc.dialer.Dial(ctx, uc.config.Network.RPCURL)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	from := crypto.PubkeyToAddress(key.PublicKey)
	result := &DeployDeterministicResult{
		Prediction: predict(contract, salt, code),
		Network:    uc.config.Network.Name,
		ChainID:    chainID.Uint64(),
		From:       from,
		DryRun:     params.DryRun,
	}

	uc.progress.OnProgress(ctx, ProgressEvent{Stage: "prepare", Message: "Checking deployer and target address", Spinner: true})
	prepared, err := deterministic.GetOrPrepare(ctx, client, from, salt, code)
	if err != nil {
		uc.progress.OnProgress(ctx, ProgressEvent{Stage: "prepare"})
		return nil, err
	}
	uc.progress.OnProgress(ctx, ProgressEvent{Stage: "prepare"})

	if prepared.Existed {
		result.Existed = true
		uc.log.Debug("contract already deployed", "address", prepared.Address)
		return result, nil
	}

	if params.DryRun {
		result.Prepared = preparedTransaction(prepared.Request)
		return result, nil
	}

	nonces := anvil.NewNonceManager(client)
	var hash common.Hash
	if uc.needsConfirmation(result.ChainID, params.Yes) {
		ok, err := uc.selector.Confirm(ctx, fmt.Sprintf("Deploy %s to %s (chain %d) at %s?", describe(contract), result.Network, result.ChainID, prepared.Address.Hex()))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrCancelled
		}
		hash, err = deterministic.Send(ctx, client, key, prepared.Request, nonces)
		if err != nil {
			return nil, err
		}
	} else {
		deployed, err := deterministic.GetOrDeploy(ctx, client, key, salt, code, deterministic.WithNonceSource(nonces))
		if err != nil {
			return nil, err
		}
		if deployed.Hash == nil {
			result.Existed = true
			return result, nil
		}
		hash = *deployed.Hash
	}
	result.TxHash = &hash

	uc.progress.OnProgress(ctx, ProgressEvent{Stage: "mining", Message: fmt.Sprintf("Waiting for %s", hash.Hex()), Spinner: true})
	receipt, err := client.WaitMined(ctx, hash)
	uc.progress.OnProgress(ctx, ProgressEvent{Stage: "mining"})
	if err != nil {
		return nil, fmt.Errorf("failed waiting for deployment %s: %w", hash.Hex(), err)
	}
	result.Receipt = receipt
	if !receipt.Success {
		return result, fmt.Errorf("deployment transaction %s reverted", hash.Hex())
	}

	uc.log.Debug("deployed contract", "address", prepared.Address, "tx", hash, "gas", receipt.GasUsed)
	return result, nil
}

func (uc *DeployDeterministic) needsConfirmation(chainID uint64, yes bool) bool {
	if yes || uc.config.NonInteractive {
		return false
	}
	network := &config.Network{ChainID: chainID}
	return !network.IsLocal()
}

func describe(contract string) string {
	if contract == "" {
		return "bytecode"
	}
	return contract
}

func preparedTransaction(request *deterministic.Request) *PreparedTransaction {
	return &PreparedTransaction{
		To:        request.To,
		Data:      request.Data,
		Gas:       request.Gas,
		GasPrice:  bigOrNil(request.GasPrice),
		GasTipCap: bigOrNil(request.GasTipCap),
		GasFeeCap: bigOrNil(request.GasFeeCap),
	}
}

func bigOrNil(v *big.Int) *hexutil.Big {
	if v == nil {
		return nil
	}
	return (*hexutil.Big)(v)
}

// signerKey loads the private key selected by input
func signerKey(ctx context.Context, accounts AccountProvider, input SignerInput) (*ecdsa.PrivateKey, error) {
	if input.PrivateKey != "" {
		return accounts.PrivateKey(ctx, input.PrivateKey)
	}
	account, err := accounts.Account(ctx, input.AccountIndex)
	if err != nil {
		return nil, err
	}
	return account.PrivateKey, nil
}
