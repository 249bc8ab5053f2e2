package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/trebuchet-org/treb-kit/internal/cli"
	"github.com/trebuchet-org/treb-kit/internal/cli/render"
	"github.com/trebuchet-org/treb-kit/internal/domain"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, domain.ErrCancelled) {
			fmt.Fprintln(os.Stderr, render.FormatWarning("Cancelled"))
		} else {
			fmt.Fprintln(os.Stderr, render.FormatError(err.Error()))
		}
		os.Exit(1)
	}
}
