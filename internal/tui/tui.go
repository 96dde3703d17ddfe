// Package tui implements an interactive terminal UI for browsing and
// editing team configuration profiles, plus the prompts used by the CLI,
// using the Charmbracelet Bubble Tea framework.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"go.dot.industries/zcfg/internal/config"
	"go.dot.industries/zcfg/internal/tui/bridge"
)

// Run starts the interactive config browser over cfg. It blocks until the
// user quits or ctx is canceled.
func Run(ctx context.Context, cfg *config.Config) error {
	m := newModel(bridge.New(ctx, cfg))

	p := tea.NewProgram(
		m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}
