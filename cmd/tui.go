package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/traxyt/internal/models"
	"github.com/desertthunder/traxyt/internal/shared"
	"github.com/desertthunder/traxyt/internal/tasks"
	"github.com/desertthunder/traxyt/internal/ui"
)

// convertTUI runs the conversion behind the interactive progress screen.
//
// Returns a nil result when the user quits before the run finishes.
func (r *Runner) convertTUI(ctx context.Context, tracks []models.Track) (*models.ConversionResult, error) {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/traxyt-tui.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	previous := r.logger
	r.SetLogger(fileLogger)
	defer r.SetLogger(previous)

	// room for a searching and a final update per track plus the terminal event
	events := make(chan models.Event, 2*len(tracks)+1)
	converter := r.newConverter(tasks.ChannelEmitter(events))

	model := ui.NewModel(ctx, tracks, converter, events)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("error running TUI: %w", err)
	}
	return model.Result()
}
