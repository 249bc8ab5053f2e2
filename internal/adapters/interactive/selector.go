package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/treb-kit/internal/domain"
	"github.com/trebuchet-org/treb-kit/internal/domain/config"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
	"github.com/trebuchet-org/treb-kit/pkg/abiexport"
)

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	config *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg}
}

// Confirm asks a yes/no question. Declining is not an error.
func (s *SelectorAdapter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if s.config.NonInteractive {
		return false, domain.ErrNonInteractive
	}

	confirm := promptui.Prompt{
		Label:     prompt,
		IsConfirm: true,
	}
	_, err := confirm.Run()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	if errors.Is(err, promptui.ErrInterrupt) {
		return false, domain.ErrCancelled
	}
	return false, fmt.Errorf("confirmation failed: %w", err)
}

// SelectArtifact picks one of several artifacts sharing a contract name
func (s *SelectorAdapter) SelectArtifact(ctx context.Context, artifacts []*abiexport.Artifact, prompt string) (*abiexport.Artifact, error) {
	if len(artifacts) == 0 {
		return nil, fmt.Errorf("no artifacts provided for selection")
	}
	if len(artifacts) == 1 {
		return artifacts[0], nil
	}

	// In non-interactive mode, we can't select
	if s.config.NonInteractive {
		return nil, fmt.Errorf("%w: %d artifacts named %s, pass the artifact path instead",
			domain.ErrNonInteractive, len(artifacts), artifacts[0].ContractName)
	}

	options := formatArtifactOptions(artifacts)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             prompt,
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	return artifacts[index], nil
}

// formatArtifactOptions creates display strings for artifact selection
func formatArtifactOptions(artifacts []*abiexport.Artifact) []string {
	options := make([]string, len(artifacts))
	for i, artifact := range artifacts {
		source := artifact.SourceName
		if source == "" {
			source = "unknown source"
		}
		source = strings.TrimPrefix(source, "src/")

		name := color.New(color.FgWhite, color.Bold).Sprint(artifact.ContractName)
		path := color.New(color.FgBlue).Sprint(source)
		if !artifact.HasBytecode() {
			options[i] = fmt.Sprintf("%s %s (%s)", name, color.New(color.FgYellow).Sprint("[no bytecode]"), path)
		} else {
			options[i] = fmt.Sprintf("%s (%s)", name, path)
		}
	}
	return options
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		// Empty search shows all items
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		pattern := fuzzy.Find(input, []string{item})
		return len(pattern) > 0
	}
}

// Ensure the adapter implements the interface
var _ usecase.InteractiveSelector = (*SelectorAdapter)(nil)
