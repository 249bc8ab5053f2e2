package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
)

// SpinnerProgress shows a spinner while network operations run and a
// counter line for batch stages
type SpinnerProgress struct {
	spinner *spinner.Spinner
	out     io.Writer
	stage   string
}

// NewSpinnerProgress creates a spinner progress sink writing to stderr
func NewSpinnerProgress() *SpinnerProgress {
	return newSpinnerProgress(os.Stderr)
}

func newSpinnerProgress(out io.Writer) *SpinnerProgress {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false

	return &SpinnerProgress{
		spinner: s,
		out:     out,
	}
}

// OnProgress handles progress events. A spinner event starts or updates the
// spinner, any other event stops it.
func (p *SpinnerProgress) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if event.Spinner {
		p.spinner.Suffix = " " + event.Message
		if !p.spinner.Active() {
			p.spinner.Start()
		}
		p.stage = event.Stage
		return
	}

	if p.spinner.Active() {
		p.spinner.Stop()
	}
	p.stage = event.Stage

	if event.Total > 0 && event.Message != "" {
		fmt.Fprintf(p.out, "%s %s\n",
			color.New(color.Faint).Sprintf("[%d/%d]", event.Current, event.Total),
			event.Message)
	}
}

// Info prints an info message
func (p *SpinnerProgress) Info(message string) {
	p.pause(func() {
		color.New(color.FgCyan).Fprintln(p.out, message)
	})
}

// Error prints an error message
func (p *SpinnerProgress) Error(message string) {
	p.pause(func() {
		color.New(color.FgRed).Fprintln(p.out, message)
	})
}

// pause stops the spinner around fn so the output is not interleaved
func (p *SpinnerProgress) pause(fn func()) {
	wasActive := p.spinner.Active()
	if wasActive {
		p.spinner.Stop()
	}
	fn()
	if wasActive {
		p.spinner.Start()
	}
}

// Ensure SpinnerProgress implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerProgress)(nil)
