package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-kit/internal/domain"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
	"github.com/trebuchet-org/treb-kit/pkg/abiexport"
)

// maxSuggestions bounds the close names reported for an unknown contract
const maxSuggestions = 3

// ArtifactRepositoryAdapter finds compiled artifacts on disk
type ArtifactRepositoryAdapter struct{}

// NewArtifactRepositoryAdapter creates a new artifact repository
func NewArtifactRepositoryAdapter() *ArtifactRepositoryAdapter {
	return &ArtifactRepositoryAdapter{}
}

// Discover expands globs below root. Patterns may be absolute. Hardhat debug
// files and build-info outputs are not artifacts and are left out.
func (r *ArtifactRepositoryAdapter) Discover(ctx context.Context, root string, globs []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range globs {
		matches, err := glob(root, pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid artifact glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			if !isArtifactFile(match) || seen[match] {
				continue
			}
			seen[match] = true
			files = append(files, match)
		}
	}

	sort.Strings(files)
	return files, nil
}

func glob(root, pattern string) ([]string, error) {
	if filepath.IsAbs(pattern) {
		return doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	}

	matches, err := doublestar.Glob(os.DirFS(root), filepath.ToSlash(pattern), doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	return lo.Map(matches, func(match string, _ int) string {
		return filepath.Join(root, filepath.FromSlash(match))
	}), nil
}

func isArtifactFile(path string) bool {
	slashed := filepath.ToSlash(path)
	switch {
	case !strings.HasSuffix(slashed, ".json"):
		return false
	case strings.HasSuffix(slashed, ".dbg.json"):
		return false
	case strings.HasPrefix(slashed, "build-info/"), strings.Contains(slashed, "/build-info/"):
		return false
	}
	return true
}

// Load parses the artifact at path
func (r *ArtifactRepositoryAdapter) Load(ctx context.Context, path string) (*abiexport.Artifact, error) {
	return abiexport.LoadArtifact(path)
}

// FindByName returns every discovered artifact named name. Unreadable files
// are ignored since globs commonly match unrelated JSON.
func (r *ArtifactRepositoryAdapter) FindByName(ctx context.Context, root string, globs []string, name string) ([]*abiexport.Artifact, error) {
	files, err := r.Discover(ctx, root, globs)
	if err != nil {
		return nil, err
	}

	var matches []*abiexport.Artifact
	names := make(map[string]bool)
	for _, file := range files {
		artifact, err := abiexport.LoadArtifact(file)
		if err != nil {
			continue
		}
		names[artifact.ContractName] = true
		if artifact.ContractName == name {
			matches = append(matches, artifact)
		}
	}

	if len(matches) == 0 {
		return nil, &domain.ContractNotFoundError{
			Name:        name,
			Suggestions: suggest(name, lo.Keys(names)),
		}
	}
	return matches, nil
}

// suggest returns the names closest to name, best first
func suggest(name string, candidates []string) []string {
	sort.Strings(candidates)
	found := fuzzy.Find(strings.ToLower(name), lo.Map(candidates, func(c string, _ int) string {
		return strings.ToLower(c)
	}))

	suggestions := make([]string, 0, maxSuggestions)
	for _, match := range found {
		if len(suggestions) == maxSuggestions {
			break
		}
		suggestions = append(suggestions, candidates[match.Index])
	}
	return suggestions
}

// Ensure the adapter implements the interface
var _ usecase.ArtifactRepository = (*ArtifactRepositoryAdapter)(nil)
