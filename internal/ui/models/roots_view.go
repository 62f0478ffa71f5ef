package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/config"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/ui/components"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/ui/styles"
	uiutils "github.com/Ivan-Ryukendo/FileXSorter/internal/ui/utils"
)

// RootItem is a candidate scan directory
type RootItem struct {
	Path     string
	Selected bool
}

// RootsViewModel handles scan root selection
type RootsViewModel struct {
	config    *config.Config
	roots     []RootItem
	cursor    int
	recursive bool
	input     textinput.Model
	editing   bool
	status    string
	width     int
	height    int
}

// NewRootsViewModel creates a new roots view model. Initial roots come
// in pre-selected so enter starts a scan immediately.
func NewRootsViewModel(cfg *config.Config, initial []string, width, height int) *RootsViewModel {
	items := make([]RootItem, 0, len(initial))
	for _, root := range initial {
		items = append(items, RootItem{Path: root, Selected: true})
	}

	ti := textinput.New()
	ti.Placeholder = "/path/to/directory"
	ti.Width = 50

	// Use default dimensions if not provided
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	return &RootsViewModel{
		config:    cfg,
		roots:     items,
		cursor:    0,
		recursive: cfg.Scan.Recursive,
		input:     ti,
		width:     width,
		height:    height,
	}
}

// Init initializes the roots view
func (m *RootsViewModel) Init() tea.Cmd {
	return textinput.Blink
}

// EditingInput reports whether the path input is capturing keys
func (m *RootsViewModel) EditingInput() bool {
	return m.editing
}

// SetStatus sets the status message shown under the list
func (m *RootsViewModel) SetStatus(status string) {
	m.status = status
}

// Update handles messages
func (m *RootsViewModel) Update(msg tea.Msg) (*RootsViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if m.editing {
			return m.updateInput(msg)
		}

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.roots)-1 {
				m.cursor++
			}
		case "g":
			m.cursor = 0
		case "G":
			if len(m.roots) > 0 {
				m.cursor = len(m.roots) - 1
			}
		case "space", " ":
			if m.cursor >= 0 && m.cursor < len(m.roots) {
				m.roots[m.cursor].Selected = !m.roots[m.cursor].Selected
				m.status = ""
			}
		case "a":
			m.editing = true
			m.status = ""
			m.input.Focus()
			return m, textinput.Blink
		case "x":
			if m.cursor >= 0 && m.cursor < len(m.roots) {
				m.roots = append(m.roots[:m.cursor], m.roots[m.cursor+1:]...)
				if m.cursor >= len(m.roots) && m.cursor > 0 {
					m.cursor--
				}
			}
		case "r":
			m.recursive = !m.recursive
		case "enter":
			return m, m.startScan()
		}
	}

	return m, nil
}

// updateInput handles keys while the path input is focused
func (m *RootsViewModel) updateInput(msg tea.KeyMsg) (*RootsViewModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		path := strings.TrimSpace(m.input.Value())
		if path != "" {
			m.roots = append(m.roots, RootItem{Path: path, Selected: true})
			m.cursor = len(m.roots) - 1
		}
		m.input.SetValue("")
		m.input.Blur()
		m.editing = false
		return m, nil
	case "esc":
		m.input.SetValue("")
		m.input.Blur()
		m.editing = false
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// startScan emits the scan request for the selected roots
func (m *RootsViewModel) startScan() tea.Cmd {
	var selected []string
	for _, item := range m.roots {
		if item.Selected {
			selected = append(selected, item.Path)
		}
	}

	if len(selected) == 0 {
		m.status = "Select at least one directory to scan"
		return nil
	}

	recursive := m.recursive
	return func() tea.Msg {
		return ScanRequestedMsg{Roots: selected, Recursive: recursive}
	}
}

// View renders the root selection view
func (m *RootsViewModel) View() string {
	var b strings.Builder

	// Show warning if terminal is too small
	if warning := uiutils.GetSizeWarningBanner(m.width, m.height); warning != "" {
		b.WriteString(warning)
	}

	// Title
	b.WriteString(styles.TitleStyle.Render("🔎 Choose Directories to Scan"))
	b.WriteString("\n\n")

	if len(m.roots) == 0 {
		b.WriteString(styles.DimStyle.Render("No directories yet. Press 'a' to add one."))
		b.WriteString("\n")
	}

	// Directory list
	for i, item := range m.roots {
		cursor := "  "
		if i == m.cursor && !m.editing {
			cursor = styles.SelectedStyle.Render("→ ")
		}

		checkbox := styles.UncheckedBox()
		if item.Selected {
			checkbox = styles.CheckedBox()
		}

		line := fmt.Sprintf("%s%s %s",
			cursor,
			checkbox,
			styles.FilePathStyle.Render(uiutils.TruncatePath(item.Path, m.width-10)),
		)

		b.WriteString(line)
		b.WriteString("\n")
	}

	// Recursion toggle
	b.WriteString("\n")
	recState := styles.DimStyle.Render("off")
	if m.recursive {
		recState = styles.SuccessStyle.Render("on")
	}
	b.WriteString(fmt.Sprintf("Recurse into subdirectories: %s %s\n",
		recState,
		styles.DimStyle.Render("(press r)")))

	// Path input
	if m.editing {
		b.WriteString("\n")
		b.WriteString(styles.SubtitleStyle.Render("Add directory:"))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render("enter:add  esc:cancel"))
		b.WriteString("\n")
	}

	// Status message
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styles.WarningStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")

	// Status bar
	selectedCount := 0
	for _, item := range m.roots {
		if item.Selected {
			selectedCount++
		}
	}

	statusBar := components.NewStatusBar()
	statusBar.SetView("Root Selection")
	statusBar.SetSelection(selectedCount, len(m.roots), 0)
	statusBar.SetShortcuts(map[string]string{
		"↑/↓":   "navigate",
		"space": "toggle",
		"a":     "add",
		"x":     "remove",
		"r":     "recursion",
		"enter": "scan",
		"q":     "quit",
	})

	b.WriteString(statusBar.Render(m.width))

	return b.String()
}
