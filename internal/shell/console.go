// Package shell is the terminal front end of a batch: it runs the job off the
// calling goroutine, renders its progress and reports the single outcome.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/UnknownOlympus/geosheet/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Job is a batch that reports progress while it runs.
type Job interface {
	Run(ctx context.Context, source string, progress chan<- service.Progress) (string, error)
}

// Console writes the outcome to out and progress to status. When interactive
// is set, progress is drawn as a bar, otherwise as one line per update.
type Console struct {
	out         io.Writer
	status      io.Writer
	interactive bool
}

type outcome struct {
	destination string
	err         error
}

// NewConsole creates a Console on the given writers.
func NewConsole(out, status io.Writer, interactive bool) *Console {
	return &Console{out: out, status: status, interactive: interactive}
}

// NewTerminalConsole writes the outcome to stdout and progress to stderr,
// drawing a bar only when stderr is a terminal.
func NewTerminalConsole() *Console {
	fd := os.Stderr.Fd()
	return NewConsole(os.Stdout, os.Stderr, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

// Run executes job on source and blocks until it finishes. The returned
// error is the job's error, already reported to the user.
func (c *Console) Run(ctx context.Context, job Job, source string) error {
	progress := make(chan service.Progress)
	done := make(chan outcome, 1)

	go func() {
		defer close(progress)
		destination, err := job.Run(ctx, source, progress)
		done <- outcome{destination: destination, err: err}
	}()

	var bar *progressbar.ProgressBar
	for update := range progress {
		bar = c.render(bar, update)
	}
	if bar != nil {
		_ = bar.Clear()
	}

	result := <-done
	if result.err != nil {
		fmt.Fprintf(c.out, "An error occurred: %v\n", result.err)
	} else {
		fmt.Fprintf(c.out, "Process completed! File saved as: %s\n", result.destination)
	}
	fmt.Fprintln(c.out, "Process finished.")

	return result.err
}

func (c *Console) render(bar *progressbar.ProgressBar, update service.Progress) *progressbar.ProgressBar {
	if !c.interactive {
		c.statusLine(update)
		return bar
	}

	switch update.Phase {
	case service.PhaseProcessing:
	case service.PhaseSaving:
		if bar != nil {
			_ = bar.Set(update.Total)
			bar.Describe("Saving results")
		}
		return bar
	case service.PhaseIdle, service.PhaseLoading, service.PhaseDone, service.PhaseFailed:
		return bar
	}

	if bar == nil {
		bar = progressbar.NewOptions(update.Total,
			progressbar.OptionSetDescription("Geocoding"),
			progressbar.OptionSetWriter(c.status),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = bar.Set(update.Row)
	bar.Describe(fmt.Sprintf("Processing row %d of %d", update.Row, update.Total))

	return bar
}

func (c *Console) statusLine(update service.Progress) {
	switch update.Phase {
	case service.PhaseLoading:
		fmt.Fprintln(c.status, "Loading spreadsheet...")
	case service.PhaseProcessing:
		fmt.Fprintf(c.status, "Processing row %d of %d...\n", update.Row, update.Total)
	case service.PhaseSaving:
		fmt.Fprintln(c.status, "Saving results...")
	case service.PhaseIdle, service.PhaseDone, service.PhaseFailed:
	}
}
