package models

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/fileops"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/platform"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/ui/styles"
	uiutils "github.com/Ivan-Ryukendo/FileXSorter/internal/ui/utils"
	"github.com/Ivan-Ryukendo/FileXSorter/pkg/utils"
)

// maxSummaryFailures bounds how many failures the summary lists
const maxSummaryFailures = 5

// SummaryViewModel handles the results view after an apply
type SummaryViewModel struct {
	action         ApplyAction
	destination    string
	outcomes       []fileops.Outcome
	bytesProcessed int64
	freeBytes      int64
	haveFree       bool
	width          int
	height         int
}

// NewSummaryViewModel creates a new summary view model
func NewSummaryViewModel(result ApplyCompleteMsg, width, height int) *SummaryViewModel {
	// Use default dimensions if not provided
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	m := &SummaryViewModel{
		action:         result.Action,
		destination:    result.Destination,
		outcomes:       result.Outcomes,
		bytesProcessed: result.BytesProcessed,
		width:          width,
		height:         height,
	}

	// Free space on the volume the operation touched
	probe := result.Destination
	if probe == "" && len(result.Outcomes) > 0 {
		probe = filepath.Dir(result.Outcomes[0].Path)
	}
	if probe != "" {
		if free, err := platform.FreeSpace(probe); err == nil {
			m.freeBytes = free
			m.haveFree = true
		}
	}

	return m
}

// Init initializes the summary view
func (m *SummaryViewModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *SummaryViewModel) Update(msg tea.Msg) (*SummaryViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m, tea.Quit
		case "n":
			return m, func() tea.Msg { return RescanMsg{} }
		}
	}

	return m, nil
}

// View renders the summary view
func (m *SummaryViewModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("✨ Operation Summary"))
	b.WriteString("\n\n")

	succeeded := 0
	renamed := 0
	for _, outcome := range m.outcomes {
		if !outcome.Succeeded() {
			continue
		}
		succeeded++
		if outcome.NewPath != "" && filepath.Base(outcome.NewPath) != filepath.Base(outcome.Path) {
			renamed++
		}
	}

	// Success metrics
	if m.action == ActionMove {
		b.WriteString(styles.SuccessStyle.Render(fmt.Sprintf("✓ Successfully moved %d files", succeeded)))
		b.WriteString("\n")
		if m.destination != "" {
			b.WriteString(styles.DimStyle.Render("Into: "))
			b.WriteString(styles.FilePathStyle.Render(uiutils.TruncatePath(m.destination, m.width-8)))
			b.WriteString("\n")
		}
		b.WriteString(styles.BoldStyle.Render(fmt.Sprintf("Data moved: %s",
			utils.FormatBytes(m.bytesProcessed))))
		b.WriteString("\n")
		if renamed > 0 {
			b.WriteString(styles.InfoStyle.Render(fmt.Sprintf("%d renamed to avoid name collisions", renamed)))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(styles.SuccessStyle.Render(fmt.Sprintf("✓ Successfully deleted %d files", succeeded)))
		b.WriteString("\n")
		b.WriteString(styles.BoldStyle.Render(fmt.Sprintf("Space freed: %s",
			utils.FormatBytes(m.bytesProcessed))))
		b.WriteString("\n")
	}
	if m.haveFree {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("Volume free space: %s",
			utils.FormatBytes(m.freeBytes))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Failures
	failures := fileops.FailedOutcomes(m.outcomes)
	if len(failures) > 0 {
		b.WriteString(styles.ErrorStyle.Render(fmt.Sprintf("✗ %d files failed", len(failures))))
		b.WriteString("\n")

		shown := len(failures)
		if shown > maxSummaryFailures {
			shown = maxSummaryFailures
		}
		for _, failure := range failures[:shown] {
			b.WriteString("  " + failure.UserMessage())
			b.WriteString("\n")
		}
		if len(failures) > shown {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  … and %d more", len(failures)-shown)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.HelpStyle.Render("n:new scan  enter/q:exit"))

	return b.String()
}
