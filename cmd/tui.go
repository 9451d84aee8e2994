package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lrcx/internal/models"
	"github.com/desertthunder/lrcx/internal/shared"
	"github.com/desertthunder/lrcx/internal/tasks"
	"github.com/desertthunder/lrcx/internal/ui"
	"github.com/urfave/cli/v3"
)

// defaultTUILog receives logs during a TUI run when no log file is configured.
const defaultTUILog = "./tmp/lrcx-tui.log"

// runTUI runs the batch behind the live progress view and returns its report once the view exits.
func (r *Runner) runTUI(ctx context.Context, cmd *cli.Command, settings shared.FetchConfig, raw []string) (*models.Report, error) {
	// Redirect logs to file to avoid interfering with TUI rendering
	if len(r.closers) == 0 {
		if err := r.useLogFile(defaultTUILog); err != nil {
			return nil, err
		}
	}

	run := func(ctx context.Context, observer tasks.Observer) (*models.Report, error) {
		return r.newEngine(cmd, settings, observer).Run(ctx, raw)
	}

	model := ui.NewModel(ctx, run, len(raw))
	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil && model.Report() == nil {
		return nil, fmt.Errorf("error running TUI: %w", err)
	}
	return model.Report(), model.Err()
}
