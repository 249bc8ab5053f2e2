package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrNetworkNotFound is returned when a network is not in foundry.toml [rpc_endpoints]
	ErrNetworkNotFound = errors.New("network not found")

	// ErrNoNetwork is returned when a command needs a chain but none was selected
	ErrNoNetwork = errors.New("no network selected, use --network or --rpc-url")

	// ErrContractNotFound is returned when a contract artifact can't be found
	ErrContractNotFound = errors.New("contract not found")

	// ErrCancelled is returned when the user declines a confirmation
	ErrCancelled = errors.New("cancelled by user")

	// ErrNonInteractive is returned when a prompt is needed in non-interactive mode
	ErrNonInteractive = errors.New("interactive input required in non-interactive mode")

	// ErrInvalidPreset is returned for an unknown artifact preset
	ErrInvalidPreset = errors.New("invalid artifact preset")

	// ErrMissingBytecode is returned when neither bytecode nor an artifact was given
	ErrMissingBytecode = errors.New("either --bytecode or --artifact is required")
)

// ContractNotFoundError carries close matches for a contract name that
// matched no artifact.
type ContractNotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *ContractNotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("no artifact found for contract %q", e.Name)
	}
	return fmt.Sprintf("no artifact found for contract %q, did you mean: %s?", e.Name, strings.Join(e.Suggestions, ", "))
}

func (e *ContractNotFoundError) Unwrap() error {
	return ErrContractNotFound
}

// ArtifactWithoutBytecodeError is returned when deploying an artifact of an
// interface or abstract contract.
type ArtifactWithoutBytecodeError struct {
	Name string
}

func (e *ArtifactWithoutBytecodeError) Error() string {
	return fmt.Sprintf("artifact %s has no bytecode (interface or abstract contract?)", e.Name)
}
