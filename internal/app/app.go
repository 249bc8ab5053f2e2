package app

import (
	"log/slog"

	"github.com/trebuchet-org/treb-kit/internal/domain/config"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Use cases
	ExportArtifacts      *usecase.ExportArtifacts
	PredictDeterministic *usecase.PredictDeterministic
	DeployDeterministic  *usecase.DeployDeterministic
	BootstrapDeployer    *usecase.BootstrapDeployer
	ListAccounts         *usecase.ListAccounts
	ExportKeystore       *usecase.ExportKeystore
	ListNetworks         *usecase.ListNetworks
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	exportArtifacts *usecase.ExportArtifacts,
	predictDeterministic *usecase.PredictDeterministic,
	deployDeterministic *usecase.DeployDeterministic,
	bootstrapDeployer *usecase.BootstrapDeployer,
	listAccounts *usecase.ListAccounts,
	exportKeystore *usecase.ExportKeystore,
	listNetworks *usecase.ListNetworks,
) (*App, error) {
	return &App{
		Config:               cfg,
		Log:                  log,
		ExportArtifacts:      exportArtifacts,
		PredictDeterministic: predictDeterministic,
		DeployDeterministic:  deployDeterministic,
		BootstrapDeployer:    bootstrapDeployer,
		ListAccounts:         listAccounts,
		ExportKeystore:       exportKeystore,
		ListNetworks:         listNetworks,
	}, nil
}
