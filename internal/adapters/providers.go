package adapters

import (
	"os"

	"github.com/google/wire"
	"github.com/mattn/go-isatty"
	"github.com/trebuchet-org/treb-kit/internal/adapters/accounts"
	"github.com/trebuchet-org/treb-kit/internal/adapters/blockchain"
	internalconfig "github.com/trebuchet-org/treb-kit/internal/adapters/config"
	"github.com/trebuchet-org/treb-kit/internal/adapters/fs"
	"github.com/trebuchet-org/treb-kit/internal/adapters/interactive"
	"github.com/trebuchet-org/treb-kit/internal/adapters/progress"
	"github.com/trebuchet-org/treb-kit/internal/adapters/template"
	"github.com/trebuchet-org/treb-kit/internal/domain/config"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
)

// ProvideProgressSink shows spinners only for text output on a terminal
func ProvideProgressSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.Output != config.OutputText || cfg.NonInteractive || !isTerminal(os.Stderr.Fd()) {
		return progress.NewNopSink()
	}
	return progress.NewSpinnerProgress()
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewArtifactRepositoryAdapter,
	wire.Bind(new(usecase.ArtifactRepository), new(*fs.ArtifactRepositoryAdapter)),

	fs.NewFileWriterAdapter,
	wire.Bind(new(usecase.FileWriter), new(*fs.FileWriterAdapter)),

	fs.NewExportCacheAdapter,
	wire.Bind(new(usecase.ExportCache), new(*fs.ExportCacheAdapter)),
)

// TemplateSet provides template-based implementations
var TemplateSet = wire.NewSet(
	template.NewModuleGeneratorAdapter,
	wire.Bind(new(usecase.ModuleGenerator), new(*template.ModuleGeneratorAdapter)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.InteractiveSelector), new(*interactive.SelectorAdapter)),

	ProvideProgressSink,
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	internalconfig.NewNetworkResolverAdapter,
	wire.Bind(new(usecase.NetworkResolver), new(*internalconfig.NetworkResolverAdapter)),
)

// BlockchainSet provides blockchain-based implementations
var BlockchainSet = wire.NewSet(
	blockchain.NewDialerAdapter,
	wire.Bind(new(usecase.ChainDialer), new(*blockchain.DialerAdapter)),
)

// AccountsSet provides key derivation and storage
var AccountsSet = wire.NewSet(
	accounts.NewProviderAdapter,
	wire.Bind(new(usecase.AccountProvider), new(*accounts.ProviderAdapter)),

	accounts.NewKeystoreAdapter,
	wire.Bind(new(usecase.KeystoreWriter), new(*accounts.KeystoreAdapter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	TemplateSet,
	InteractiveSet,
	ConfigSet,
	BlockchainSet,
	AccountsSet,
)
