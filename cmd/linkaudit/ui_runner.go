package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"linkaudit/internal/scan"
	"linkaudit/internal/ui"
)

type scanOutcome struct {
	report *scan.Report
	err    error
}

// runScanWithUI drives the scan in the background while a Bubble Tea model
// renders per-artifact progress.
func runScanWithUI(ctx context.Context, title string, files []string, opts scan.Options) (*scan.Report, error) {
	events := make(chan scan.Event, 256)
	outcomeCh := make(chan scanOutcome, 1)

	go func() {
		opts.Progress = scan.ChannelSink{Ch: events}
		report, err := scan.Scan(ctx, opts)
		outcomeCh <- scanOutcome{report: report, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.report, uiErr
	}
	return outcome.report, outcome.err
}
