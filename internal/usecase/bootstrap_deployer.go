package usecase

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-kit/internal/domain"
	"github.com/trebuchet-org/treb-kit/internal/domain/config"
	"github.com/trebuchet-org/treb-kit/pkg/deterministic"
)

// BootstrapDeployerParams contains parameters for deploying the deployer proxy
type BootstrapDeployerParams struct {
	SignerInput
	// NoFund refuses to top up the presigned signer
	NoFund bool
}

// BootstrapDeployerResult contains the result of a bootstrap
type BootstrapDeployerResult struct {
	Network    string         `json:"network" yaml:"network"`
	ChainID    uint64         `json:"chainId" yaml:"chainId"`
	Deployer   common.Address `json:"deployer" yaml:"deployer"`
	Existed    bool           `json:"existed" yaml:"existed"`
	FundingTx  *common.Hash   `json:"fundingTx,omitempty" yaml:"fundingTx,omitempty"`
	DeployTx   *common.Hash   `json:"deployTx,omitempty" yaml:"deployTx,omitempty"`
	FundedWith *big.Int       `json:"fundedWith,omitempty" yaml:"fundedWith,omitempty"`
}

// BootstrapDeployer puts the deterministic deployer proxy on a chain that
// lacks it
type BootstrapDeployer struct {
	config   *config.RuntimeConfig
	dialer   ChainDialer
	accounts AccountProvider
	selector InteractiveSelector
	progress ProgressSink
	log      *slog.Logger
}

// NewBootstrapDeployer creates a new BootstrapDeployer use case
func NewBootstrapDeployer(
	cfg *config.RuntimeConfig,
	dialer ChainDialer,
	accounts AccountProvider,
	selector InteractiveSelector,
	progress ProgressSink,
	log *slog.Logger,
) *BootstrapDeployer {
	return &BootstrapDeployer{
		config:   cfg,
		dialer:   dialer,
		accounts: accounts,
		selector: selector,
		progress: progress,
		log:      log,
	}
}

// Run executes the use case
func (uc *BootstrapDeployer) Run(ctx context.Context, params BootstrapDeployerParams) (*BootstrapDeployerResult, error) {
	if uc.config.Network == nil {
		return nil, domain.ErrNoNetwork
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

	var funder *ecdsa.PrivateKey
	if !params.NoFund {
		funder, err = signerKey(ctx, uc.accounts, params.SignerInput)
		if err != nil {
			return nil, err
		}
	}

	network := &config.Network{ChainID: chainID.Uint64()}
	if !network.IsLocal() && !uc.config.NonInteractive {
		exists, err := deterministic.DeployerExists(ctx, client)
		if err != nil {
			return nil, err
		}
		if !exists {
			ok, err := uc.selector.Confirm(ctx, fmt.Sprintf("Deploy the deterministic deployer to %s (chain %d)?", uc.config.Network.Name, chainID.Uint64()))
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, domain.ErrCancelled
			}
		}
	}

	uc.progress.OnProgress(ctx, ProgressEvent{Stage: "bootstrap", Message: "Deploying deterministic deployer", Spinner: true})
	res, err := deterministic.Bootstrap(ctx, client, funder)
	uc.progress.OnProgress(ctx, ProgressEvent{Stage: "bootstrap"})
	if err != nil {
		return nil, err
	}

	uc.log.Debug("bootstrap finished", "existed", res.Existed, "chain", chainID)
	return &BootstrapDeployerResult{
		Network:    uc.config.Network.Name,
		ChainID:    chainID.Uint64(),
		Deployer:   res.Deployer,
		Existed:    res.Existed,
		FundingTx:  res.FundingTx,
		DeployTx:   res.DeployTx,
		FundedWith: res.FundedWith,
	}, nil
}
