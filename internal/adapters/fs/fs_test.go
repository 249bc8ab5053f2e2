package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-kit/internal/domain"
)

const counterArtifact = `{"abi":[{"type":"function","name":"count","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"}],"bytecode":{"object":"0x6001"},"deployedBytecode":{"object":"0x6001"}}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func setupArtifacts(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "out", "Counter.sol", "Counter.json"), counterArtifact)
	writeFile(t, filepath.Join(root, "out", "Vault.sol", "Vault.json"), counterArtifact)
	writeFile(t, filepath.Join(root, "out", "build-info", "abc.json"), `{}`)
	writeFile(t, filepath.Join(root, "artifacts", "contracts", "Counter.sol", "Counter.dbg.json"), `{}`)
	writeFile(t, filepath.Join(root, "artifacts", "contracts", "Counter.sol", "Counter.json"), `{"contractName":"Counter","abi":[],"bytecode":"0x"}`)
	return root
}

func TestArtifactRepositoryDiscover(t *testing.T) {
	root := setupArtifacts(t)
	repo := NewArtifactRepositoryAdapter()

	t.Run("relative globs", func(t *testing.T) {
		files, err := repo.Discover(context.Background(), root, []string{"out/**/*.json"})
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(root, "out", "Counter.sol", "Counter.json"),
			filepath.Join(root, "out", "Vault.sol", "Vault.json"),
		}, files)
	})

	t.Run("overlapping and absolute globs", func(t *testing.T) {
		files, err := repo.Discover(context.Background(), root, []string{
			"artifacts/contracts/**/*.json",
			filepath.ToSlash(filepath.Join(root, "artifacts", "**", "*.json")),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(root, "artifacts", "contracts", "Counter.sol", "Counter.json")}, files)
	})

	t.Run("no matches", func(t *testing.T) {
		files, err := repo.Discover(context.Background(), root, []string{"nothing/**/*.json"})
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}

func TestArtifactRepositoryDiscoverRelativeRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Counter.json"), counterArtifact)
	writeFile(t, filepath.Join(root, "build-info", "abc.json"), `{}`)
	t.Chdir(root)

	files, err := NewArtifactRepositoryAdapter().Discover(context.Background(), ".", []string{"**/*.json"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Counter.json"}, files)
}

func TestIsArtifactFile(t *testing.T) {
	tests := map[string]bool{
		"out/Counter.sol/Counter.json":     true,
		"Counter.json":                     true,
		"build-info/abc.json":              false,
		"out/build-info/abc.json":          false,
		"/abs/out/build-info/abc.json":     false,
		"Counter.dbg.json":                 false,
		"out/Counter.sol/Counter.metadata": false,
		"my-build-info/Counter.sol/A.json": true,
	}
	for path, expected := range tests {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, expected, isArtifactFile(filepath.FromSlash(path)))
		})
	}
}

func TestArtifactRepositoryFindByName(t *testing.T) {
	root := setupArtifacts(t)
	repo := NewArtifactRepositoryAdapter()
	globs := []string{"out/**/*.json", "artifacts/contracts/**/*.json"}

	matches, err := repo.FindByName(context.Background(), root, globs, "Counter")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	_, err = repo.FindByName(context.Background(), root, globs, "Countr")
	var notFound *domain.ContractNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, []string{"Counter"}, notFound.Suggestions)
	assert.ErrorIs(t, err, domain.ErrContractNotFound)
}

func TestExportCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	cache := NewExportCacheAdapter(NewFileWriterAdapter())

	hashes, err := cache.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, hashes)

	require.NoError(t, cache.Save(context.Background(), path, map[string]string{"Counter": "0x01"}))
	hashes, err = cache.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Counter": "0x01"}, hashes)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = cache.Load(context.Background(), path)
	assert.ErrorContains(t, err, "corrupt cache")
}

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()
	writer := NewFileWriterAdapter()
	path := filepath.Join(dir, "nested", "file.go")

	exists, err := writer.FileExists(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, writer.EnsureDirectory(context.Background(), filepath.Dir(path)))
	require.NoError(t, writer.WriteFile(context.Background(), path, []byte("package x\n")))
	require.NoError(t, writer.WriteFile(context.Background(), path, []byte("package y\n")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package y\n", string(content))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
