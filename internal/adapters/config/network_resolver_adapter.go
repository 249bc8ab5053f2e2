package config

import (
	"context"

	"github.com/trebuchet-org/treb-kit/internal/config"
	domainconfig "github.com/trebuchet-org/treb-kit/internal/domain/config"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
)

// NetworkResolverAdapter adapts the config.NetworkResolver to the usecase.NetworkResolver interface
type NetworkResolverAdapter struct {
	resolver *config.NetworkResolver
}

// NewNetworkResolverAdapter creates a resolver over the project's foundry.toml
func NewNetworkResolverAdapter(cfg *domainconfig.RuntimeConfig) *NetworkResolverAdapter {
	foundry := cfg.FoundryConfig
	if foundry == nil {
		foundry = &domainconfig.FoundryConfig{}
	}
	return &NetworkResolverAdapter{
		resolver: config.NewNetworkResolver(cfg.ProjectRoot, foundry),
	}
}

// GetNetworks returns all configured network names
func (a *NetworkResolverAdapter) GetNetworks(ctx context.Context) []string {
	return a.resolver.Names()
}

// ResolveNetwork resolves a network name to its RPC URL and chain ID
func (a *NetworkResolverAdapter) ResolveNetwork(ctx context.Context, networkName string) (*domainconfig.Network, error) {
	return a.resolver.Resolve(networkName)
}

// Ensure the adapter implements the interface
var _ usecase.NetworkResolver = (*NetworkResolverAdapter)(nil)
