package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/trebuchet-org/treb-kit/internal/domain/config"
	"gopkg.in/yaml.v3"
)

// Renderer renders the result of a use case
type Renderer[T any] interface {
	Render(result T) error
}

// Structured writes result as JSON or YAML and reports whether it did.
// Text output is left to the command's renderer.
func Structured(out io.Writer, format config.OutputFormat, result any) (bool, error) {
	switch format {
	case config.OutputJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return true, fmt.Errorf("failed to encode json: %w", err)
		}
		return true, nil
	case config.OutputYAML:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		defer encoder.Close()
		if err := encoder.Encode(result); err != nil {
			return true, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return true, nil
	}
	return false, nil
}
