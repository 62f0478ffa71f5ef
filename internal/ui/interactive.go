package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/config"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/ui/models"
)

// RunInteractive starts the interactive TUI mode. roots pre-fills the
// root picker; the recursion flag and scan limits come from cfg.
func RunInteractive(cfg *config.Config, roots []string) error {
	m := models.NewAppModel(cfg, roots)

	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running interactive mode: %w", err)
	}

	return nil
}
