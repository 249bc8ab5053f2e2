package usecase

import (
	"context"

	"github.com/trebuchet-org/treb-kit/internal/domain/config"
)

// ListNetworksParams contains parameters for listing networks
type ListNetworksParams struct{}

// ListNetworksResult contains the result of listing networks
type ListNetworksResult struct {
	Networks []NetworkStatus `json:"networks" yaml:"networks"`
	Current  string          `json:"current,omitempty" yaml:"current,omitempty"`
}

// NetworkStatus represents the status of a network
type NetworkStatus struct {
	Name    string `json:"name" yaml:"name"`
	ChainID uint64 `json:"chainId,omitempty" yaml:"chainId,omitempty"`
	RPCURL  string `json:"rpcUrl,omitempty" yaml:"rpcUrl,omitempty"`
	Error   error  `json:"-" yaml:"-"`
	Status  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ListNetworks is a use case for listing available networks
type ListNetworks struct {
	config   *config.RuntimeConfig
	resolver NetworkResolver
}

// NewListNetworks creates a new ListNetworks use case
func NewListNetworks(cfg *config.RuntimeConfig, resolver NetworkResolver) *ListNetworks {
	return &ListNetworks{
		config:   cfg,
		resolver: resolver,
	}
}

// Run executes the use case
func (uc *ListNetworks) Run(ctx context.Context, params ListNetworksParams) (*ListNetworksResult, error) {
	networkNames := uc.resolver.GetNetworks(ctx)

	// Resolve each network to report its chain ID
	networks := make([]NetworkStatus, 0, len(networkNames))
	for _, name := range networkNames {
		status := NetworkStatus{
			Name: name,
		}

		info, err := uc.resolver.ResolveNetwork(ctx, name)
		if err != nil {
			status.Error = err
			status.Status = err.Error()
		} else {
			status.ChainID = info.ChainID
			status.RPCURL = info.RPCURL
		}

		networks = append(networks, status)
	}

	result := &ListNetworksResult{Networks: networks}
	if uc.config.Network != nil {
		result.Current = uc.config.Network.Name
	}
	return result, nil
}
