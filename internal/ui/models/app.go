package models

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/config"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/fileops"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/scanner"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/ui/styles"
)

// ViewState represents the current view in the app
type ViewState int

const (
	ViewRoots ViewState = iota
	ViewScanning
	ViewBrowser
	ViewConfirm
	ViewApplying
	ViewSummary
	ViewHelp
)

// ApplyAction is the file operation the user asked for
type ApplyAction int

const (
	ActionDelete ApplyAction = iota
	ActionMove
)

// String returns the action name used in progress reports
func (a ApplyAction) String() string {
	if a == ActionMove {
		return "move"
	}
	return "delete"
}

// AppModel is the root model for the interactive TUI
type AppModel struct {
	// Current state
	state         ViewState
	previousState ViewState // For back navigation

	// Shared data
	config     *config.Config
	roots      []string
	scanResult *scanner.ScanResult

	// View models
	rootsView   *RootsViewModel
	scanView    *ScanViewModel
	browserView *BrowserViewModel
	confirmView *ConfirmViewModel
	applyView   *ApplyViewModel
	summaryView *SummaryViewModel

	// UI state
	width  int
	height int
	err    error
}

// NewAppModel creates a new app model. roots pre-fills the root picker.
func NewAppModel(cfg *config.Config, roots []string) *AppModel {
	return &AppModel{
		state:  ViewRoots,
		config: cfg,
		roots:  roots,
	}
}

// Init initializes the model
func (m *AppModel) Init() tea.Cmd {
	m.rootsView = NewRootsViewModel(m.config, m.roots, m.width, m.height)
	return m.rootsView.Init()
}

// Update handles messages
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			// Never interrupt an apply mid-flight; files could be half-moved
			if m.state == ViewApplying {
				return m, nil
			}
			if m.state == ViewScanning && m.scanView != nil {
				m.scanView.Cancel()
			}
			return m, tea.Quit
		case "q":
			if m.textEntryActive() {
				break
			}
			if m.state == ViewApplying {
				return m, nil
			}
			if m.state == ViewScanning && m.scanView != nil {
				m.scanView.Cancel()
			}
			return m, tea.Quit
		case "?":
			if m.textEntryActive() || m.state == ViewHelp {
				break
			}
			m.previousState = m.state
			m.state = ViewHelp
			return m, nil
		case "esc":
			if m.textEntryActive() {
				break
			}
			// Handle back navigation
			switch m.state {
			case ViewHelp:
				// Return to previous view
				m.state = m.previousState
				return m, nil
			case ViewScanning:
				// Request cancellation; ScanCompleteMsg follows
				if m.scanView != nil {
					m.scanView.Cancel()
				}
				return m, nil
			case ViewBrowser:
				// Close the info panel if open, else back to root selection
				if m.browserView != nil && m.browserView.ConsumeEsc() {
					return m, nil
				}
				m.state = ViewRoots
				return m, nil
			case ViewConfirm:
				// Go back to the group browser
				m.state = ViewBrowser
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ScanRequestedMsg:
		// Roots chosen, start scanning
		m.scanView = NewScanViewModel(m.config, msg.Roots, msg.Recursive, m.width, m.height)
		m.state = ViewScanning
		return m, m.scanView.Init()

	case ScanCompleteMsg:
		if m.scanView != nil {
			m.scanView.Close()
		}
		if msg.Err != nil {
			// Cancelled or failed, back to root selection
			m.state = ViewRoots
			if m.rootsView != nil {
				if msg.Err == scanner.ErrCancelled {
					m.rootsView.SetStatus("Scan cancelled")
				} else {
					m.rootsView.SetStatus(fmt.Sprintf("Scan failed: %v", msg.Err))
				}
			}
			return m, nil
		}
		m.scanResult = msg.Result
		m.browserView = NewBrowserViewModel(m.scanResult, m.config, m.width, m.height)
		m.state = ViewBrowser
		return m, nil

	case ActionRequestedMsg:
		// Delete without confirmation when the config says so
		if msg.Action == ActionDelete && !m.config.UI.ConfirmDelete {
			return m.startApply(msg.Action, msg.Paths, "")
		}
		m.confirmView = NewConfirmViewModel(msg.Action, msg.Paths, msg.TotalBytes, m.config, m.width, m.height)
		m.state = ViewConfirm
		return m, m.confirmView.Init()

	case ReviewSelectionMsg:
		// User wants to review/edit selection, go back to the browser
		m.state = ViewBrowser
		return m, nil

	case ActionConfirmedMsg:
		return m.startApply(msg.Action, msg.Paths, msg.Destination)

	case ApplyCompleteMsg:
		if m.applyView != nil {
			m.applyView.Close()
		}
		m.summaryView = NewSummaryViewModel(msg, m.width, m.height)
		m.state = ViewSummary
		return m, nil

	case RescanMsg:
		// Back to the root picker for another pass
		m.state = ViewRoots
		if m.rootsView != nil {
			m.rootsView.SetStatus("")
			return m, m.rootsView.Init()
		}
		return m, nil
	}

	// Delegate to current view
	return m.delegateUpdate(msg)
}

// startApply switches to the applying view and kicks off the operation
func (m *AppModel) startApply(action ApplyAction, paths []string, destination string) (tea.Model, tea.Cmd) {
	m.applyView = NewApplyViewModel(action, paths, destination, m.width, m.height)
	m.state = ViewApplying
	return m, m.applyView.Init()
}

// textEntryActive reports whether the focused view is capturing typed text
func (m *AppModel) textEntryActive() bool {
	switch m.state {
	case ViewRoots:
		return m.rootsView != nil && m.rootsView.EditingInput()
	case ViewConfirm:
		return m.confirmView != nil && m.confirmView.EditingInput()
	}
	return false
}

// delegateUpdate delegates the update to the current view
func (m *AppModel) delegateUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.state {
	case ViewRoots:
		if m.rootsView != nil {
			m.rootsView, cmd = m.rootsView.Update(msg)
		}
	case ViewScanning:
		if m.scanView != nil {
			m.scanView, cmd = m.scanView.Update(msg)
		}
	case ViewBrowser:
		if m.browserView != nil {
			m.browserView, cmd = m.browserView.Update(msg)
		}
	case ViewConfirm:
		if m.confirmView != nil {
			m.confirmView, cmd = m.confirmView.Update(msg)
		}
	case ViewApplying:
		if m.applyView != nil {
			m.applyView, cmd = m.applyView.Update(msg)
		}
	case ViewSummary:
		if m.summaryView != nil {
			m.summaryView, cmd = m.summaryView.Update(msg)
		}
	}

	return m, cmd
}

// View renders the current view
func (m *AppModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit."
	}

	switch m.state {
	case ViewRoots:
		if m.rootsView != nil {
			return m.rootsView.View()
		}
	case ViewScanning:
		if m.scanView != nil {
			return m.scanView.View()
		}
	case ViewBrowser:
		if m.browserView != nil {
			return m.browserView.View()
		}
	case ViewConfirm:
		if m.confirmView != nil {
			return m.confirmView.View()
		}
	case ViewApplying:
		if m.applyView != nil {
			return m.applyView.View()
		}
	case ViewSummary:
		if m.summaryView != nil {
			return m.summaryView.View()
		}
	case ViewHelp:
		return m.renderHelp()
	}

	return "Loading..."
}

// renderHelp renders the help view with context-aware content
func (m *AppModel) renderHelp() string {
	var b strings.Builder

	// Get help content based on current view
	var viewName string
	var helpContent string

	switch m.previousState {
	case ViewRoots:
		viewName = "Root Selection"
		helpContent = m.getHelpForRoots()
	case ViewScanning:
		viewName = "Scan View"
		helpContent = m.getHelpForScan()
	case ViewBrowser:
		viewName = "Group Browser"
		helpContent = m.getHelpForBrowser()
	case ViewConfirm:
		viewName = "Confirmation"
		helpContent = m.getHelpForConfirm()
	case ViewApplying:
		viewName = "Applying"
		helpContent = m.getHelpForApply()
	case ViewSummary:
		viewName = "Summary"
		helpContent = m.getHelpForSummary()
	default:
		viewName = "General"
		helpContent = m.getHelpForGeneral()
	}

	// Build help screen
	// Title
	title := fmt.Sprintf("Help - %s", viewName)
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n\n")

	// Content
	b.WriteString(helpContent)

	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("Press esc to close"))

	return b.String()
}

func (m *AppModel) getHelpForRoots() string {
	return `Choose which directories to scan for duplicate files.

Navigation:
  ↑/k     - Move up
  ↓/j     - Move down

Selection:
  space   - Toggle directory
  a       - Add a directory by path
  x       - Remove directory from list
  r       - Toggle recursive scanning

Actions:
  enter   - Start scanning
  q       - Quit`
}

func (m *AppModel) getHelpForScan() string {
	return `Scanning the selected directories for duplicate files.

Files are grouped by size first; only files sharing a size are
hashed, so most of the tree is never read.

Actions:
  esc     - Cancel the scan
  ctrl+c  - Cancel and exit

The scan proceeds to the group browser when complete.`
}

func (m *AppModel) getHelpForBrowser() string {
	return `Browse duplicate groups and mark files to delete or move.

Each group lists identical copies of one file. The KEEP marker
shows which copy will be preserved; selections never touch it.

Navigation               Selection
  ↑/k     Move up          space    Toggle file (or group)
  ↓/j     Move down        a        Select all duplicates
  g       Top              d        Deselect all
  G       Bottom

Actions                  Other
  x/enter Delete selected  i        File/group details
  m       Move selected    o        Reveal in file manager
  k       Mark as keeper   esc      New scan
  ?       Toggle help      q        Quit`
}

func (m *AppModel) getHelpForConfirm() string {
	return `Review and confirm the operation.

Navigation:
  ←/→/h/l - Switch between buttons

Actions:
  enter   - Confirm selection
  y       - Yes, proceed
  e       - Edit selection (go back)
  n       - No, cancel
  esc     - Go back
  q       - Quit

Warning: Deleted files cannot be recovered!`
}

func (m *AppModel) getHelpForApply() string {
	return `Applying the operation to the selected files.

Files that fail are skipped; the rest of the batch continues.
Progress is shown in real time, and a summary follows when the
operation finishes. The operation cannot be interrupted.`
}

func (m *AppModel) getHelpForSummary() string {
	return `Operation complete. Review the results.

Actions:
  n       - Start a new scan
  enter   - Exit application
  q       - Exit application

Results show:
  - Files successfully processed
  - Space reclaimed
  - Any failures with their reasons`
}

func (m *AppModel) getHelpForGeneral() string {
	return `FileXSorter - Interactive Mode Help

Global Shortcuts:
  ?       - Toggle this help
  esc     - Go back / Close help
  q       - Quit (from most views)
  ctrl+c  - Force quit

This interactive mode guides you through:
  1. Root Selection - Choose directories to scan
  2. Scanning - Find duplicate files by content
  3. Group Browser - Pick which copies to remove
  4. Confirmation - Review your choices
  5. Applying - Delete or move the files
  6. Summary - View results

Press ? at any time to see context-specific help.`
}

// Custom messages

// ScanRequestedMsg starts a scan over the chosen roots
type ScanRequestedMsg struct {
	Roots     []string
	Recursive bool
}

// ScanCompleteMsg carries the finished (or failed) scan
type ScanCompleteMsg struct {
	Result *scanner.ScanResult
	Err    error
}

// ActionRequestedMsg asks for confirmation of a delete or move
type ActionRequestedMsg struct {
	Action     ApplyAction
	Paths      []string
	TotalBytes int64
}

// ActionConfirmedMsg carries a confirmed operation ready to run
type ActionConfirmedMsg struct {
	Action      ApplyAction
	Paths       []string
	Destination string
}

// ReviewSelectionMsg returns to the browser to edit the selection
type ReviewSelectionMsg struct{}

// ApplyCompleteMsg carries the per-target outcomes of an operation
type ApplyCompleteMsg struct {
	Action         ApplyAction
	Destination    string
	Outcomes       []fileops.Outcome
	BytesProcessed int64
}

// RescanMsg restarts the flow at root selection
type RescanMsg struct{}
