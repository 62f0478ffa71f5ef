package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/config"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/progress"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/scanner"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/ui/styles"
	uiutils "github.com/Ivan-Ryukendo/FileXSorter/internal/ui/utils"
	"github.com/Ivan-Ryukendo/FileXSorter/pkg/utils"
)

// ScanViewModel handles the scanning progress view
type ScanViewModel struct {
	roots      []string
	recursive  bool
	spinner    spinner.Model
	scnr       *scanner.Scanner
	cancel     context.CancelFunc
	ctx        context.Context
	updates    <-chan interface{}
	latest     *progress.ScanProgress
	cancelling bool
	startTime  time.Time
	err        error
	width      int
	height     int
}

// scanProgressMsg carries one update from the progress reporter
type scanProgressMsg struct {
	update interface{}
}

// scanFeedClosedMsg signals that the progress subscription ended
type scanFeedClosedMsg struct{}

// NewScanViewModel creates a new scan view model
func NewScanViewModel(cfg *config.Config, roots []string, recursive bool, width, height int) *ScanViewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	m := &ScanViewModel{
		roots:     roots,
		recursive: recursive,
		spinner:   s,
		startTime: time.Now(),
		width:     width,
		height:    height,
	}

	opts, err := cfg.ScannerOptions()
	if err != nil {
		m.err = err
		return m
	}

	m.scnr = scanner.New(opts)
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.updates = m.scnr.GetProgressReporter().Subscribe()

	return m
}

// Init initializes the scan view
func (m *ScanViewModel) Init() tea.Cmd {
	if m.err != nil {
		err := m.err
		return func() tea.Msg {
			return ScanCompleteMsg{Err: err}
		}
	}

	return tea.Batch(
		m.spinner.Tick,
		m.performScan(),
		m.waitForProgress(),
	)
}

// Cancel requests that the running scan stop
func (m *ScanViewModel) Cancel() {
	m.cancelling = true
	if m.cancel != nil {
		m.cancel()
	}
}

// Close releases the progress subscription. Call once the app has
// consumed the ScanCompleteMsg.
func (m *ScanViewModel) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.scnr != nil && m.updates != nil {
		m.scnr.GetProgressReporter().Unsubscribe(m.updates)
		m.updates = nil
	}
}

// Update handles messages
func (m *ScanViewModel) Update(msg tea.Msg) (*ScanViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanProgressMsg:
		if p, ok := msg.update.(*progress.ScanProgress); ok {
			m.latest = p
		}
		return m, m.waitForProgress()

	case scanFeedClosedMsg:
		return m, nil
	}

	return m, nil
}

// performScan runs the scan and reports the result
func (m *ScanViewModel) performScan() tea.Cmd {
	ctx := m.ctx
	scnr := m.scnr
	roots := m.roots
	recursive := m.recursive

	return func() tea.Msg {
		result, err := scnr.Scan(ctx, roots, recursive)
		return ScanCompleteMsg{Result: result, Err: err}
	}
}

// waitForProgress blocks on the reporter feed for the next update
func (m *ScanViewModel) waitForProgress() tea.Cmd {
	updates := m.updates
	if updates == nil {
		return nil
	}

	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return scanFeedClosedMsg{}
		}
		return scanProgressMsg{update: update}
	}
}

// View renders the scan view
func (m *ScanViewModel) View() string {
	var b strings.Builder

	// Title
	b.WriteString(styles.TitleStyle.Render("🔎 Scanning for Duplicates"))
	b.WriteString("\n\n")

	// Spinner and current status
	b.WriteString(m.spinner.View())
	if m.cancelling {
		b.WriteString(" " + styles.WarningStyle.Render("Cancelling..."))
	} else {
		b.WriteString(" Scanning... ")
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("(%s)", time.Since(m.startTime).Round(time.Second))))
	}
	b.WriteString("\n\n")

	// Roots being scanned
	b.WriteString(styles.DimStyle.Render("Roots: "))
	b.WriteString(styles.FilePathStyle.Render(uiutils.TruncateString(strings.Join(m.roots, ", "), 70)))
	b.WriteString("\n")
	mode := "shallow"
	if m.recursive {
		mode = "recursive"
	}
	b.WriteString(styles.DimStyle.Render("Mode:  " + mode))
	b.WriteString("\n\n")

	if p := m.latest; p != nil {
		// Current phase and path
		b.WriteString(styles.SubtitleStyle.Render(phaseLabel(p.Phase)))
		b.WriteString("\n")

		if p.CurrentPath != "" {
			b.WriteString(styles.DimStyle.Render("Current: "))
			b.WriteString(styles.FilePathStyle.Render(uiutils.TruncatePath(p.CurrentPath, 60)))
			b.WriteString("\n")
		}
		b.WriteString("\n")

		// Counters
		b.WriteString(fmt.Sprintf("  Files seen:  %s (%s)\n",
			styles.BoldStyle.Render(fmt.Sprintf("%d", p.FilesSeen)),
			styles.FileSizeStyle.Render(utils.FormatBytes(p.TotalBytes)),
		))
		b.WriteString(fmt.Sprintf("  Candidates:  %s (%s)\n",
			styles.BoldStyle.Render(fmt.Sprintf("%d", p.Candidates)),
			styles.FileSizeStyle.Render(utils.FormatBytes(p.CandidateBytes)),
		))

		// Hash progress bar once candidates are known
		if p.Phase == progress.PhaseHashing && p.Candidates > 0 {
			b.WriteString(fmt.Sprintf("  Hashed:      %s/%d\n\n",
				styles.BoldStyle.Render(fmt.Sprintf("%d", p.HashedFiles)),
				p.Candidates,
			))
			b.WriteString("  " + styles.ProgressBar(p.HashedFiles, p.Candidates, 40))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(styles.DimStyle.Render("Starting..."))
		b.WriteString("\n")
	}

	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("esc:cancel scan  ctrl+c:cancel and quit"))

	return b.String()
}

// phaseLabel maps a scan phase to its display heading
func phaseLabel(p progress.Phase) string {
	switch p {
	case progress.PhaseEnumerating:
		return "Enumerating files"
	case progress.PhaseFiltering:
		return "Filtering by size"
	case progress.PhaseHashing:
		return "Hashing candidates"
	case progress.PhaseGrouping:
		return "Grouping duplicates"
	case progress.PhaseCancelled:
		return "Cancelled"
	case progress.PhaseComplete:
		return "Complete"
	default:
		return string(p)
	}
}
