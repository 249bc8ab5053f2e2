package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/trebuchet-org/treb-kit/internal/usecase"
)

// ExportCacheAdapter stores export hashes as a JSON object of contract name
// to artifact hash
type ExportCacheAdapter struct {
	writer *FileWriterAdapter
}

// NewExportCacheAdapter creates a new export cache
func NewExportCacheAdapter(writer *FileWriterAdapter) *ExportCacheAdapter {
	return &ExportCacheAdapter{writer: writer}
}

// Load reads the cache at path. A missing file is an empty cache.
func (c *ExportCacheAdapter) Load(ctx context.Context, path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, err
	}

	hashes := make(map[string]string)
	if err := json.Unmarshal(data, &hashes); err != nil {
		return nil, fmt.Errorf("corrupt cache %s: %w", path, err)
	}
	return hashes, nil
}

// Save replaces the cache at path
func (c *ExportCacheAdapter) Save(ctx context.Context, path string, hashes map[string]string) error {
	data, err := json.MarshalIndent(hashes, "", "  ")
	if err != nil {
		return err
	}
	return c.writer.WriteFile(ctx, path, append(data, '\n'))
}

// Ensure the adapter implements the interface
var _ usecase.ExportCache = (*ExportCacheAdapter)(nil)
