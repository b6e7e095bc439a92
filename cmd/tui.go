package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/scanarr/internal/shared"
	"github.com/desertthunder/scanarr/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/scanarr-tui.log"

// TUI launches the interactive barcode scanner.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.config.Log.File
	if logPath == "" {
		logPath = tuiLogPath
	}
	fileLogger, err := shared.NewFileLogger(logPath, r.config.Log)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)
	r.configure(r.config)
	r.withHistory()

	model := ui.NewModel(ctx, r.engine)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
