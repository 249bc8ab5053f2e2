package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/trebuchet-org/treb-kit/internal/domain/config"
	"github.com/trebuchet-org/treb-kit/pkg/abiexport"
)

// ExportCacheFileName is the cache file inside the cache directory
const ExportCacheFileName = "artifact-exports-cache.json"

// IndexFileName is the generated index of all contract packages
const IndexFileName = "contracts.go"

// ExportArtifactsParams contains parameters for exporting artifacts.
// Empty fields fall back to the [artifacts] configuration.
type ExportArtifactsParams struct {
	Globs    []string
	OutDir   string
	CacheDir string
	Package  string
	Force    bool
}

// ExportedModule is one generated contract package
type ExportedModule struct {
	Contract string `json:"contract" yaml:"contract"`
	Package  string `json:"package" yaml:"package"`
	Path     string `json:"path" yaml:"path"`
	Hash     string `json:"hash" yaml:"hash"`
}

// ExportArtifactsResult contains the result of an export run
type ExportArtifactsResult struct {
	Discovered int              `json:"discovered" yaml:"discovered"`
	Exported   []ExportedModule `json:"exported" yaml:"exported"`
	Unchanged  []string         `json:"unchanged" yaml:"unchanged"`
	Skipped    []string         `json:"skipped" yaml:"skipped"`
	Duplicates []string         `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Aggregates []string         `json:"aggregates,omitempty" yaml:"aggregates,omitempty"`
	IndexPath  string           `json:"index" yaml:"index"`
	CachePath  string           `json:"cache" yaml:"cache"`
}

// ExportArtifacts turns compiled artifacts into generated Go packages,
// regenerating only what changed since the last run
type ExportArtifacts struct {
	config    *config.RuntimeConfig
	artifacts ArtifactRepository
	cache     ExportCache
	writer    FileWriter
	generator ModuleGenerator
	progress  ProgressSink
	log       *slog.Logger
}

// NewExportArtifacts creates a new ExportArtifacts use case
func NewExportArtifacts(
	cfg *config.RuntimeConfig,
	artifacts ArtifactRepository,
	cache ExportCache,
	writer FileWriter,
	generator ModuleGenerator,
	progress ProgressSink,
	log *slog.Logger,
) *ExportArtifacts {
	return &ExportArtifacts{
		config:    cfg,
		artifacts: artifacts,
		cache:     cache,
		writer:    writer,
		generator: generator,
		progress:  progress,
		log:       log,
	}
}

type exportTarget struct {
	artifact *abiexport.Artifact
	pkg      string
	path     string
}

// Run executes the export
func (uc *ExportArtifacts) Run(ctx context.Context, params ExportArtifactsParams) (*ExportArtifactsResult, error) {
	params = uc.withDefaults(params)

	for _, dir := range []string{params.OutDir, params.CacheDir} {
		if err := uc.writer.EnsureDirectory(ctx, dir); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	files, err := uc.artifacts.Discover(ctx, uc.config.ProjectRoot, params.Globs)
	if err != nil {
		return nil, fmt.Errorf("failed to discover artifacts: %w", err)
	}
	uc.log.Debug("discovered artifacts", "count", len(files), "globs", params.Globs)

	result := &ExportArtifactsResult{
		Discovered: len(files),
		Exported:   []ExportedModule{},
		Unchanged:  []string{},
		Skipped:    []string{},
		CachePath:  filepath.Join(params.CacheDir, ExportCacheFileName),
		IndexPath:  filepath.Join(params.OutDir, IndexFileName),
	}

	targets, err := uc.loadTargets(ctx, files, params.OutDir, result)
	if err != nil {
		return nil, err
	}

	hashes, err := uc.cache.Load(ctx, result.CachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load export cache: %w", err)
	}

	for i, target := range targets {
		name := target.artifact.ContractName
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "export",
			Current: i + 1,
			Total:   len(targets),
			Message: name,
		})

		hash, err := target.artifact.Hash()
		if err != nil {
			return nil, err
		}
		exists, err := uc.writer.FileExists(ctx, target.path)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", target.path, err)
		}
		if !params.Force && exists && hashes[name] == hash {
			result.Unchanged = append(result.Unchanged, name)
			continue
		}

		if err := uc.exportContract(ctx, target); err != nil {
			return nil, err
		}
		hashes[name] = hash
		result.Exported = append(result.Exported, ExportedModule{
			Contract: name,
			Package:  target.pkg,
			Path:     target.path,
			Hash:     hash,
		})
	}

	if len(result.Exported) > 0 {
		all := make([]*abiexport.Artifact, len(targets))
		for i, target := range targets {
			all[i] = target.artifact
		}
		aggregates, err := uc.writeAggregates(ctx, params, all)
		if err != nil {
			return nil, err
		}
		result.Aggregates = aggregates
	}

	if err := uc.writeIndex(ctx, params, targets, result.IndexPath); err != nil {
		return nil, err
	}

	if err := uc.cache.Save(ctx, result.CachePath, hashes); err != nil {
		return nil, fmt.Errorf("failed to save export cache: %w", err)
	}

	if len(result.Exported) > 0 {
		uc.log.Info(fmt.Sprintf("Exported %d Artifact file(s) successfully", len(result.Exported)))
	} else {
		uc.log.Info("Nothing to export")
	}

	return result, nil
}

func (uc *ExportArtifacts) withDefaults(params ExportArtifactsParams) ExportArtifactsParams {
	if len(params.Globs) == 0 {
		params.Globs = uc.config.Artifacts.Globs
	}
	if params.OutDir == "" {
		params.OutDir = uc.config.Artifacts.OutDir
	}
	if params.CacheDir == "" {
		params.CacheDir = uc.config.Artifacts.CacheDir
	}
	if params.Package == "" {
		params.Package = uc.config.Artifacts.Package
	}
	if params.Package == "" {
		params.Package = "bindings"
	}
	return params
}

// loadTargets loads every artifact and keeps the first contract per name,
// each with a distinct package directory
func (uc *ExportArtifacts) loadTargets(ctx context.Context, files []string, outDir string, result *ExportArtifactsResult) ([]exportTarget, error) {
	seen := make(map[string]bool)
	packages := make(map[string]bool)
	targets := make([]exportTarget, 0, len(files))

	for _, file := range files {
		artifact, err := uc.artifacts.Load(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("failed to load artifact %s: %w", file, err)
		}
		if !artifact.IsContract() {
			result.Skipped = append(result.Skipped, artifact.ContractName)
			continue
		}
		if seen[artifact.ContractName] {
			uc.log.Warn("duplicate contract name, keeping the first artifact", "contract", artifact.ContractName, "file", file)
			result.Duplicates = append(result.Duplicates, file)
			continue
		}
		seen[artifact.ContractName] = true

		base := uc.generator.PackageName(artifact.ContractName)
		pkg := base
		for i := 2; packages[pkg]; i++ {
			pkg = base + strconv.Itoa(i)
		}
		packages[pkg] = true

		targets = append(targets, exportTarget{
			artifact: artifact,
			pkg:      pkg,
			path:     filepath.Join(outDir, pkg, pkg+".go"),
		})
	}

	return targets, nil
}

func (uc *ExportArtifacts) exportContract(ctx context.Context, target exportTarget) error {
	name := target.artifact.ContractName

	exports, err := abiexport.ResolveExports(target.artifact.ABI)
	if err != nil {
		return fmt.Errorf("failed to resolve exports of %s: %w", name, err)
	}

	code, err := uc.generator.GenerateContract(ctx, ContractModule{
		Artifact: target.artifact,
		Exports:  exports,
		Package:  target.pkg,
	})
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", name, err)
	}

	if err := uc.writer.EnsureDirectory(ctx, filepath.Dir(target.path)); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	if err := uc.writer.WriteFile(ctx, target.path, code); err != nil {
		return fmt.Errorf("failed to write %s: %w", target.path, err)
	}

	uc.log.Debug("exported contract", "contract", name, "path", target.path, "exports", len(exports.Entries))
	return nil
}

func (uc *ExportArtifacts) writeAggregates(ctx context.Context, params ExportArtifactsParams, artifacts []*abiexport.Artifact) ([]string, error) {
	aggregates := []struct {
		kind   abiexport.Kind
		file   string
		unique func([]*abiexport.Artifact) ([]abiexport.Item, error)
	}{
		{abiexport.KindFunction, "functions.go", abiexport.UniqueFunctions},
		{abiexport.KindEvent, "events.go", abiexport.UniqueEvents},
		{abiexport.KindError, "errors.go", abiexport.UniqueErrors},
	}

	written := make([]string, 0, len(aggregates))
	for _, aggregate := range aggregates {
		items, err := aggregate.unique(artifacts)
		if err != nil {
			return nil, fmt.Errorf("failed to collect %ss: %w", aggregate.kind, err)
		}
		code, err := uc.generator.GenerateAggregate(ctx, params.Package, aggregate.kind, items)
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s: %w", aggregate.file, err)
		}
		path := filepath.Join(params.OutDir, aggregate.file)
		if err := uc.writer.WriteFile(ctx, path, code); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func (uc *ExportArtifacts) writeIndex(ctx context.Context, params ExportArtifactsParams, targets []exportTarget, path string) error {
	entries := make([]IndexEntry, len(targets))
	for i, target := range targets {
		entries[i] = IndexEntry{
			Contract: target.artifact.ContractName,
			Package:  target.pkg,
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Contract < entries[j].Contract
	})

	code, err := uc.generator.GenerateIndex(ctx, params.Package, entries)
	if err != nil {
		return fmt.Errorf("failed to generate index: %w", err)
	}
	if err := uc.writer.WriteFile(ctx, path, code); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
