package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mixview/mixview/internal/shared"
	"github.com/mixview/mixview/internal/ui"
	"github.com/urfave/cli/v3"
)

// Wizard launches the interactive terminal UI for linking services.
func (r *Runner) Wizard(ctx context.Context, cmd *cli.Command) error {
	if r.orchestrator == nil {
		return fmt.Errorf("%w: setup orchestrator not initialized", shared.ErrServiceUnavailable)
	}

	// Log lines would tear the alt screen, so they go to a file while
	// the wizard runs.
	fileLogger, err := shared.NewFileLogger("./tmp/mixview-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.orchestrator)
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running wizard: %w", err)
	}

	return nil
}
