package render

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
)

// ExportRenderer renders artifact export runs
type ExportRenderer struct {
	out  io.Writer
	root string
}

// NewExportRenderer creates a new export renderer. Paths are shown relative
// to root when possible.
func NewExportRenderer(out io.Writer, root string) *ExportRenderer {
	return &ExportRenderer{out: out, root: root}
}

// Render renders the export result
func (r *ExportRenderer) Render(result *usecase.ExportArtifactsResult) error {
	if result.Discovered == 0 {
		fmt.Fprintln(r.out, FormatWarning("No artifacts matched the configured globs"))
		return nil
	}

	for _, module := range result.Exported {
		fmt.Fprintf(r.out, "  %s %s → %s\n",
			color.GreenString("+"),
			nameStyle.Sprint(module.Contract),
			r.relative(module.Path),
		)
	}
	for _, file := range result.Duplicates {
		fmt.Fprintln(r.out, "  "+FormatWarning(fmt.Sprintf("%s ignored, contract name already exported", r.relative(file))))
	}
	for _, name := range result.Skipped {
		fmt.Fprintf(r.out, "  %s %s\n", hashStyle.Sprint("-"), hashStyle.Sprintf("%s (not a contract artifact)", name))
	}

	if len(result.Exported) > 0 {
		fmt.Fprintln(r.out)
	}

	summary := fmt.Sprintf("Exported %d contract(s), %d unchanged", len(result.Exported), len(result.Unchanged))
	if len(result.Skipped) > 0 {
		summary += fmt.Sprintf(", %d skipped", len(result.Skipped))
	}
	fmt.Fprintln(r.out, FormatSuccess(summary))
	fmt.Fprint(r.out, field("Index", r.relative(result.IndexPath)))
	fmt.Fprint(r.out, field("Cache", r.relative(result.CachePath)))
	return nil
}

func (r *ExportRenderer) relative(path string) string {
	if r.root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return path
	}
	return rel
}

var _ Renderer[*usecase.ExportArtifactsResult] = (*ExportRenderer)(nil)
