package models

import (
	"fmt"
	"strings"
	"time"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/fileops"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/progress"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/ui/styles"
	uiutils "github.com/Ivan-Ryukendo/FileXSorter/internal/ui/utils"
	"github.com/Ivan-Ryukendo/FileXSorter/pkg/utils"
)

// ApplyViewModel handles the delete/move progress view
type ApplyViewModel struct {
	action      ApplyAction
	paths       []string
	destination string
	spinner     spinner.Model
	bar         progressbar.Model
	op          *fileops.Operator
	updates     <-chan interface{}
	latest      *progress.ApplyProgress
	startTime   time.Time
	width       int
	height      int
}

// applyProgressMsg carries one update from the operator's reporter
type applyProgressMsg struct {
	update interface{}
}

// applyFeedClosedMsg signals that the progress subscription ended
type applyFeedClosedMsg struct{}

// NewApplyViewModel creates a new apply view model
func NewApplyViewModel(action ApplyAction, paths []string, destination string, width, height int) *ApplyViewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	bar := progressbar.New(progressbar.WithDefaultGradient())

	op := fileops.New()

	return &ApplyViewModel{
		action:      action,
		paths:       paths,
		destination: destination,
		spinner:     s,
		bar:         bar,
		op:          op,
		updates:     op.GetProgressReporter().Subscribe(),
		startTime:   time.Now(),
		width:       width,
		height:      height,
	}
}

// Init initializes the apply view
func (m *ApplyViewModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.performApply(),
		m.waitForProgress(),
	)
}

// Close releases the progress subscription. Call once the app has
// consumed the ApplyCompleteMsg.
func (m *ApplyViewModel) Close() {
	if m.op != nil && m.updates != nil {
		m.op.GetProgressReporter().Unsubscribe(m.updates)
		m.updates = nil
	}
}

// Update handles messages
func (m *ApplyViewModel) Update(msg tea.Msg) (*ApplyViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case applyProgressMsg:
		if p, ok := msg.update.(*progress.ApplyProgress); ok {
			m.latest = p
		}
		return m, m.waitForProgress()

	case applyFeedClosedMsg:
		return m, nil
	}

	return m, nil
}

// performApply runs the file operation and reports the outcomes
func (m *ApplyViewModel) performApply() tea.Cmd {
	op := m.op
	action := m.action
	paths := m.paths
	destination := m.destination

	return func() tea.Msg {
		var outcomes []fileops.Outcome
		if action == ActionMove {
			outcomes = op.Move(paths, destination)
		} else {
			outcomes = op.Delete(paths)
		}

		var bytes int64
		if p := op.GetProgressReporter().GetApplyProgress(); p != nil {
			bytes = p.BytesProcessed
		}

		return ApplyCompleteMsg{
			Action:         action,
			Destination:    destination,
			Outcomes:       outcomes,
			BytesProcessed: bytes,
		}
	}
}

// waitForProgress blocks on the reporter feed for the next update
func (m *ApplyViewModel) waitForProgress() tea.Cmd {
	updates := m.updates
	if updates == nil {
		return nil
	}

	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return applyFeedClosedMsg{}
		}
		return applyProgressMsg{update: update}
	}
}

// View renders the apply view
func (m *ApplyViewModel) View() string {
	var b strings.Builder

	if m.action == ActionMove {
		b.WriteString(styles.TitleStyle.Render("📦 Moving Files"))
	} else {
		b.WriteString(styles.TitleStyle.Render("🗑️  Deleting Files"))
	}
	b.WriteString("\n\n")

	verb := "Deleting"
	if m.action == ActionMove {
		verb = "Moving"
	}

	b.WriteString(m.spinner.View())
	b.WriteString(fmt.Sprintf(" %s files... ", verb))
	b.WriteString(styles.DimStyle.Render(fmt.Sprintf("(%s)", time.Since(m.startTime).Round(time.Second))))
	b.WriteString("\n\n")

	done := 0
	total := len(m.paths)
	if p := m.latest; p != nil {
		done = p.Done
		if p.Total > 0 {
			total = p.Total
		}
	}

	// Progress bar
	if total > 0 {
		percent := float64(done) / float64(total)
		b.WriteString(m.bar.ViewAs(percent))
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("Progress: %d/%d files", done, total))
	if p := m.latest; p != nil {
		b.WriteString(fmt.Sprintf(" (%s)", styles.FileSizeStyle.Render(utils.FormatBytes(p.BytesProcessed))))
		if p.Failed > 0 {
			b.WriteString("  " + styles.WarningStyle.Render(fmt.Sprintf("%d failed", p.Failed)))
		}
	}
	b.WriteString("\n")

	// Current file
	if p := m.latest; p != nil && p.CurrentPath != "" {
		b.WriteString(styles.DimStyle.Render("Current: "))
		b.WriteString(styles.FilePathStyle.Render(uiutils.TruncatePath(p.CurrentPath, 60)))
		b.WriteString("\n")
	}

	if m.action == ActionMove && m.destination != "" {
		b.WriteString(styles.DimStyle.Render("Into:    "))
		b.WriteString(styles.FilePathStyle.Render(uiutils.TruncatePath(m.destination, 60)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("Failed files are skipped; the rest continue"))

	return b.String()
}
