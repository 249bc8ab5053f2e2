package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string

	// Context settings
	Network *Network // nil if not specified

	// Execution settings
	Debug          bool
	NonInteractive bool
	Output         OutputFormat
	Timeout        time.Duration

	Artifacts ArtifactsConfig
	Accounts  AccountsConfig

	// Resolved configurations
	FoundryConfig *FoundryConfig
	ConfigSource  string // "trebkit.toml" or "" when running on defaults
}

// OutputFormat selects how command results are printed
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// Network represents network configuration
type Network struct {
	ChainID uint64 `json:"chainId" yaml:"chainId"`
	Name    string `json:"name" yaml:"name"`
	RPCURL  string `json:"rpcUrl" yaml:"rpcUrl"`
}

// IsLocal reports whether the network is a local development node
func (n *Network) IsLocal() bool {
	return n.ChainID == LocalChainID || n.ChainID == DevChainID
}

const (
	// LocalChainID is the default chain ID of anvil and hardhat
	LocalChainID uint64 = 31337
	// DevChainID is used by geth --dev and simulated backends
	DevChainID uint64 = 1337
)

// ArtifactPreset names a build tool layout for artifact discovery
type ArtifactPreset string

const (
	PresetHardhat ArtifactPreset = "hardhat"
	PresetFoundry ArtifactPreset = "foundry"
)

// ArtifactsConfig holds the [artifacts] section of trebkit.toml
type ArtifactsConfig struct {
	Preset   ArtifactPreset
	Globs    []string
	OutDir   string
	CacheDir string
	Package  string
}

// AccountsConfig holds the [accounts] section of trebkit.toml
type AccountsConfig struct {
	Mnemonic   string
	Passphrase string
	Count      uint32
}
