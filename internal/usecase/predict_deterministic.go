package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-kit/internal/domain"
	"github.com/trebuchet-org/treb-kit/internal/domain/config"
	"github.com/trebuchet-org/treb-kit/pkg/abiexport"
	"github.com/trebuchet-org/treb-kit/pkg/deterministic"
)

// BytecodeInput selects the init code of a deterministic deployment: raw hex
// bytecode, or an artifact given as a file path or a contract name
type BytecodeInput struct {
	Bytecode string
	Artifact string
}

// PredictDeterministicParams contains parameters for computing an address
type PredictDeterministicParams struct {
	BytecodeInput
	Salt string
}

// DeterministicPrediction is where a deterministic deployment will land
type DeterministicPrediction struct {
	Contract     string         `json:"contract,omitempty" yaml:"contract,omitempty"`
	Salt         common.Hash    `json:"salt" yaml:"salt"`
	BytecodeHash common.Hash    `json:"bytecodeHash" yaml:"bytecodeHash"`
	Deployer     common.Address `json:"deployer" yaml:"deployer"`
	Address      common.Address `json:"address" yaml:"address"`
	CallData     hexutil.Bytes  `json:"callData" yaml:"callData"`
}

// PredictDeterministic computes deterministic deployment addresses offline
type PredictDeterministic struct {
	config    *config.RuntimeConfig
	artifacts ArtifactRepository
	selector  InteractiveSelector
}

// NewPredictDeterministic creates a new PredictDeterministic use case
func NewPredictDeterministic(cfg *config.RuntimeConfig, artifacts ArtifactRepository, selector InteractiveSelector) *PredictDeterministic {
	return &PredictDeterministic{
		config:    cfg,
		artifacts: artifacts,
		selector:  selector,
	}
}

// Run executes the use case
func (uc *PredictDeterministic) Run(ctx context.Context, params PredictDeterministicParams) (*DeterministicPrediction, error) {
	salt, err := deterministic.ParseSalt(params.Salt)
	if err != nil {
		return nil, err
	}

	code, contract, err := resolveBytecode(ctx, uc.config, uc.artifacts, uc.selector, params.BytecodeInput)
	if err != nil {
		return nil, err
	}

	return predict(contract, salt, code), nil
}

func predict(contract string, salt common.Hash, code []byte) *DeterministicPrediction {
	call := deterministic.FunctionData(salt, code)
	return &DeterministicPrediction{
		Contract:     contract,
		Salt:         salt,
		BytecodeHash: crypto.Keccak256Hash(code),
		Deployer:     deterministic.DeployerAddress,
		Address:      deterministic.Address(salt, code),
		CallData:     call.Data,
	}
}

// resolveBytecode returns the init code and, for artifacts, the contract name
func resolveBytecode(ctx context.Context, cfg *config.RuntimeConfig, artifacts ArtifactRepository, selector InteractiveSelector, input BytecodeInput) ([]byte, string, error) {
	if input.Bytecode != "" {
		code, err := deterministic.ParseBytecode(input.Bytecode)
		if err != nil {
			return nil, "", err
		}
		return code, "", nil
	}
	if input.Artifact == "" {
		return nil, "", domain.ErrMissingBytecode
	}

	artifact, err := findArtifact(ctx, cfg, artifacts, selector, input.Artifact)
	if err != nil {
		return nil, "", err
	}
	if !artifact.HasBytecode() {
		return nil, "", &domain.ArtifactWithoutBytecodeError{Name: artifact.ContractName}
	}

	code, err := deterministic.ParseBytecode(string(artifact.Bytecode))
	if err != nil {
		return nil, "", fmt.Errorf("artifact %s: %w", artifact.ContractName, err)
	}
	return code, artifact.ContractName, nil
}

// findArtifact loads a path ("out/Counter.sol/Counter.json") directly and
// looks names ("Counter") up among the configured artifact globs
func findArtifact(ctx context.Context, cfg *config.RuntimeConfig, artifacts ArtifactRepository, selector InteractiveSelector, ref string) (*abiexport.Artifact, error) {
	if strings.HasSuffix(ref, ".json") || strings.ContainsRune(ref, '/') || strings.ContainsRune(ref, filepath.Separator) {
		path := ref
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.ProjectRoot, path)
		}
		return artifacts.Load(ctx, path)
	}

	matches, err := artifacts.FindByName(ctx, cfg.ProjectRoot, cfg.Artifacts.Globs, ref)
	if err != nil {
		return nil, err
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	return selector.SelectArtifact(ctx, matches, fmt.Sprintf("Multiple artifacts named %s", ref))
}
