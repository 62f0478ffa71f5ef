package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/config"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/ui/styles"
	uiutils "github.com/Ivan-Ryukendo/FileXSorter/internal/ui/utils"
	"github.com/Ivan-Ryukendo/FileXSorter/pkg/utils"
)

// maxConfirmListing bounds how many paths the confirmation screen lists
const maxConfirmListing = 8

// ConfirmViewModel handles the confirmation screen for deletes and moves
type ConfirmViewModel struct {
	action     ApplyAction
	paths      []string
	totalBytes int64
	config     *config.Config
	input      textinput.Model
	editing    bool
	cursor     int // 0 = Yes, 1 = Review, 2 = Cancel
	status     string
	width      int
	height     int
}

// NewConfirmViewModel creates a new confirm view model
func NewConfirmViewModel(action ApplyAction, paths []string, totalBytes int64, cfg *config.Config, width, height int) *ConfirmViewModel {
	ti := textinput.New()
	ti.Placeholder = "/path/to/destination"
	ti.Width = 50

	// Large batches default to Cancel so a stray enter does nothing
	defaultCursor := 0
	if action == ActionDelete && len(paths) > 500 {
		defaultCursor = 2
	}

	// Use default dimensions if not provided
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	m := &ConfirmViewModel{
		action:     action,
		paths:      paths,
		totalBytes: totalBytes,
		config:     cfg,
		input:      ti,
		cursor:     defaultCursor,
		width:      width,
		height:     height,
	}

	// Moves start in the destination prompt
	if action == ActionMove {
		m.editing = true
		m.input.Focus()
	}

	return m
}

// Init initializes the confirm view
func (m *ConfirmViewModel) Init() tea.Cmd {
	if m.editing {
		return textinput.Blink
	}
	return nil
}

// EditingInput reports whether the destination input is capturing keys
func (m *ConfirmViewModel) EditingInput() bool {
	return m.editing
}

// Update handles messages
func (m *ConfirmViewModel) Update(msg tea.Msg) (*ConfirmViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if m.editing {
			return m.updateInput(msg)
		}

		switch msg.String() {
		case "left", "h":
			if m.cursor > 0 {
				m.cursor--
			}
		case "right", "l":
			if m.cursor < 2 {
				m.cursor++
			}
		case "tab":
			m.cursor = (m.cursor + 1) % 3
		case "enter":
			switch m.cursor {
			case 0: // Yes
				return m, m.confirm()
			case 1: // Review
				return m, func() tea.Msg { return ReviewSelectionMsg{} }
			case 2: // Cancel
				return m, tea.Quit
			}
		case "y":
			// Quick confirm
			return m, m.confirm()
		case "e":
			// Edit/Review selection
			return m, func() tea.Msg { return ReviewSelectionMsg{} }
		case "n":
			// Quick cancel
			return m, tea.Quit
		}
	}

	return m, nil
}

// updateInput handles keys while the destination input is focused
func (m *ConfirmViewModel) updateInput(msg tea.KeyMsg) (*ConfirmViewModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		dest := strings.TrimSpace(m.input.Value())
		if dest == "" {
			m.status = "Destination directory is required"
			return m, nil
		}
		m.status = ""
		m.input.Blur()
		m.editing = false
		// Without a confirm step the entered destination is enough
		if m.config != nil && !m.config.UI.ConfirmMove {
			return m, m.confirm()
		}
		return m, nil
	case "esc":
		// Abandon the move, back to the browser
		return m, func() tea.Msg { return ReviewSelectionMsg{} }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// confirm emits the confirmed operation, re-prompting for a missing
// move destination
func (m *ConfirmViewModel) confirm() tea.Cmd {
	dest := strings.TrimSpace(m.input.Value())
	if m.action == ActionMove && dest == "" {
		m.editing = true
		m.input.Focus()
		m.status = "Destination directory is required"
		return textinput.Blink
	}

	action := m.action
	paths := m.paths
	return func() tea.Msg {
		return ActionConfirmedMsg{Action: action, Paths: paths, Destination: dest}
	}
}

// View renders the confirmation view
func (m *ConfirmViewModel) View() string {
	var b strings.Builder

	// Show warning if terminal is too small
	if warning := uiutils.GetSizeWarningBanner(m.width, m.height); warning != "" {
		b.WriteString(warning)
	}

	// Title
	if m.action == ActionMove {
		b.WriteString(styles.TitleStyle.Render("📦 Confirm Move"))
	} else {
		b.WriteString(styles.TitleStyle.Render("⚠️  Confirm Deletion"))
	}
	b.WriteString("\n\n")

	verb := "delete"
	if m.action == ActionMove {
		verb = "move"
	}
	b.WriteString(styles.BoldStyle.Render(fmt.Sprintf("You are about to %s %d files (%s)",
		verb, len(m.paths), utils.FormatBytes(m.totalBytes))))
	b.WriteString("\n\n")

	// Sample of affected paths
	shown := len(m.paths)
	if shown > maxConfirmListing {
		shown = maxConfirmListing
	}
	for _, path := range m.paths[:shown] {
		b.WriteString("  " + styles.FilePathStyle.Render(uiutils.TruncatePath(path, m.width-6)))
		b.WriteString("\n")
	}
	if len(m.paths) > shown {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  … and %d more", len(m.paths)-shown)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Destination prompt for moves
	if m.action == ActionMove {
		b.WriteString(styles.SubtitleStyle.Render("Destination directory:"))
		b.WriteString("\n")
		if m.editing {
			b.WriteString(m.input.View())
			b.WriteString("\n")
			b.WriteString(styles.HelpStyle.Render("enter:accept  esc:back"))
			b.WriteString("\n")
		} else {
			b.WriteString(styles.FilePathStyle.Render(m.input.Value()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render("Name collisions are resolved by appending _1, _2, …"))
		b.WriteString("\n")
	} else {
		b.WriteString(styles.WarningStyle.Render("⚠️  This action cannot be undone!"))
		b.WriteString("\n")
	}

	// Status message
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(m.status))
		b.WriteString("\n")
	}

	if !m.editing {
		b.WriteString("\n")

		// Three buttons: Yes, Review, Cancel
		yesLabel := "[ Yes, delete ]"
		if m.action == ActionMove {
			yesLabel = "[ Yes, move ]"
		}
		yesBtn := yesLabel
		reviewBtn := "[ Review ]"
		cancelBtn := "[ Cancel ]"

		switch m.cursor {
		case 0:
			yesBtn = styles.HighlightStyle.Render(yesLabel)
		case 1:
			reviewBtn = styles.HighlightStyle.Render("[ Review ]")
		case 2:
			cancelBtn = styles.HighlightStyle.Render("[ Cancel ]")
		}

		b.WriteString(fmt.Sprintf("%s  %s  %s", yesBtn, reviewBtn, cancelBtn))
		b.WriteString("\n\n")

		// Adjust help text based on terminal width
		helpText := "y:confirm  e:edit selection  n:cancel  ←/→:navigate"
		if m.width < 60 {
			helpText = "y:yes  e:edit  n:no  ←/→"
		}
		b.WriteString(styles.HelpStyle.Render(helpText))
	}

	return b.String()
}
