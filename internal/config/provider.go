package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-kit/internal/domain"
	"github.com/trebuchet-org/treb-kit/internal/domain/config"
	"github.com/trebuchet-org/treb-kit/pkg/anvil"
)

const (
	// ConfigFileName is the optional project configuration file
	ConfigFileName = "trebkit.toml"

	// EnvPrefix prefixes every environment override, e.g. TREBKIT_ARTIFACTS_OUT
	EnvPrefix = "TREBKIT"
)

// flagKeys maps command flags onto their configuration keys. Flags not
// listed bind to their own name with dashes replaced by underscores.
var flagKeys = map[string]string{
	"preset":     "artifacts.preset",
	"glob":       "artifacts.globs",
	"out":        "artifacts.out",
	"cache":      "artifacts.cache",
	"package":    "artifacts.package",
	"mnemonic":   "accounts.mnemonic",
	"passphrase": "accounts.passphrase",
	"count":      "accounts.count",
}

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		Output:         config.OutputFormat(v.GetString("output")),
		Timeout:        v.GetDuration("timeout"),
		Accounts: config.AccountsConfig{
			Mnemonic:   v.GetString("accounts.mnemonic"),
			Passphrase: v.GetString("accounts.passphrase"),
			Count:      v.GetUint32("accounts.count"),
		},
	}
	if v.GetBool("json") {
		cfg.Output = config.OutputJSON
	}
	switch cfg.Output {
	case config.OutputText, config.OutputJSON, config.OutputYAML:
	default:
		return nil, fmt.Errorf("invalid output format %q (want text, json or yaml)", cfg.Output)
	}
	if v.ConfigFileUsed() != "" {
		cfg.ConfigSource = ConfigFileName
	}

	LoadEnvFiles(projectRoot)

	foundryConfig, err := LoadFoundryConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load foundry config: %w", err)
	}
	cfg.FoundryConfig = foundryConfig

	artifacts, err := artifactsConfig(v, projectRoot, foundryConfig)
	if err != nil {
		return nil, err
	}
	cfg.Artifacts = *artifacts

	if rpcURL := v.GetString("rpc_url"); rpcURL != "" {
		name := v.GetString("network")
		if name == "" {
			name = "custom"
		}
		cfg.Network = &config.Network{Name: name, RPCURL: rpcURL}
	} else if networkName := v.GetString("network"); networkName != "" {
		network, err := NewNetworkResolver(projectRoot, foundryConfig).Resolve(networkName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve network %s: %w", networkName, err)
		}
		cfg.Network = network
	}

	return cfg, nil
}

func artifactsConfig(v *viper.Viper, projectRoot string, foundry *config.FoundryConfig) (*config.ArtifactsConfig, error) {
	preset := config.ArtifactPreset(v.GetString("artifacts.preset"))
	globs := v.GetStringSlice("artifacts.globs")

	if len(globs) == 0 {
		if preset == "" {
			preset = detectPreset(projectRoot)
		}
		switch preset {
		case config.PresetHardhat:
			globs = []string{"artifacts/contracts/**/*.json"}
		case config.PresetFoundry:
			globs = []string{filepath.ToSlash(filepath.Join(foundry.OutDir(config.DefaultProfile), "**", "*.json"))}
		default:
			return nil, fmt.Errorf("%w: %q (want hardhat or foundry)", domain.ErrInvalidPreset, preset)
		}
	}

	out, err := expandPath(projectRoot, v.GetString("artifacts.out"))
	if err != nil {
		return nil, err
	}
	cache, err := expandPath(projectRoot, v.GetString("artifacts.cache"))
	if err != nil {
		return nil, err
	}

	return &config.ArtifactsConfig{
		Preset:   preset,
		Globs:    globs,
		OutDir:   out,
		CacheDir: cache,
		Package:  v.GetString("artifacts.package"),
	}, nil
}

// detectPreset picks hardhat when the project has a hardhat config and
// foundry otherwise.
func detectPreset(projectRoot string) config.ArtifactPreset {
	matches, _ := filepath.Glob(filepath.Join(projectRoot, "hardhat.config.*"))
	if len(matches) > 0 {
		return config.PresetHardhat
	}
	return config.PresetFoundry
}

// expandPath resolves ~ and makes relative paths relative to the project root
func expandPath(projectRoot, path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	if filepath.IsAbs(expanded) {
		return expanded, nil
	}
	return filepath.Join(projectRoot, expanded), nil
}

// projectMarkers identify a project root, checked in order in every directory
var projectMarkers = []string{ConfigFileName, "foundry.toml", "hardhat.config.ts", "hardhat.config.js", "hardhat.config.cjs", "hardhat.config.mjs"}

// FindProjectRoot walks up from current directory to find a project marker
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindProjectRootFrom(dir)
}

// FindProjectRootFrom walks up from dir to find a project marker
func FindProjectRootFrom(dir string) (string, error) {
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("not in a project (no trebkit.toml, foundry.toml or hardhat.config.* found)")
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()

	v.SetConfigName(strings.TrimSuffix(ConfigFileName, ".toml"))
	v.SetConfigType("toml")
	v.AddConfigPath(projectRoot)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("project_root", projectRoot)
	v.SetDefault("timeout", "5m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("output", string(config.OutputText))
	v.SetDefault("artifacts.out", "bindings")
	v.SetDefault("artifacts.cache", "cache")
	v.SetDefault("artifacts.package", "bindings")
	v.SetDefault("accounts.mnemonic", anvil.Mnemonic)
	v.SetDefault("accounts.count", anvil.DefaultAccountCount)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
		}
	}

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(FlagKey(f.Name), f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	return v, nil
}

// FlagKey returns the configuration key a flag binds to
func FlagKey(flag string) string {
	if key, ok := flagKeys[flag]; ok {
		return key
	}
	return strings.ReplaceAll(flag, "-", "_")
}
