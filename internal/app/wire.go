//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-kit/internal/adapters"
	"github.com/trebuchet-org/treb-kit/internal/config"
	"github.com/trebuchet-org/treb-kit/internal/logging"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewExportArtifacts,
		usecase.NewPredictDeterministic,
		usecase.NewDeployDeterministic,
		usecase.NewBootstrapDeployer,
		usecase.NewListAccounts,
		usecase.NewExportKeystore,
		usecase.NewListNetworks,

		// App
		NewApp,
	)
	return nil, nil
}
