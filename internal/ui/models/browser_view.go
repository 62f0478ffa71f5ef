package models

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/config"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/platform"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/preview"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/scanner"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/ui/components"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/ui/styles"
	uiutils "github.com/Ivan-Ryukendo/FileXSorter/internal/ui/utils"
	"github.com/Ivan-Ryukendo/FileXSorter/pkg/utils"
)

// browserRow addresses one display row. file is -1 for group headers.
type browserRow struct {
	group int
	file  int
}

// BrowserViewModel handles duplicate group browsing and selection
type BrowserViewModel struct {
	result   *scanner.ScanResult
	config   *config.Config
	rows     []browserRow
	cursor   int
	offset   int
	pageSize int
	selected map[string]bool
	info     *components.InfoPanel
	status   string
	width    int
	height   int
}

// NewBrowserViewModel creates a new browser view model
func NewBrowserViewModel(result *scanner.ScanResult, cfg *config.Config, width, height int) *BrowserViewModel {
	// Flatten groups into display rows: one header per group, then
	// one row per member file
	var rows []browserRow
	for gi, group := range result.Groups {
		rows = append(rows, browserRow{group: gi, file: -1})
		for fi := range group.Files {
			rows = append(rows, browserRow{group: gi, file: fi})
		}
	}

	// Use default dimensions if not provided
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	m := &BrowserViewModel{
		result:   result,
		config:   cfg,
		rows:     rows,
		cursor:   0,
		offset:   0,
		selected: make(map[string]bool),
		width:    width,
		height:   height,
	}
	m.pageSize = m.resolvePageSize()

	return m
}

// resolvePageSize prefers the configured page size, falling back to
// whatever fits the terminal
func (m *BrowserViewModel) resolvePageSize() int {
	if m.config != nil && m.config.UI.PageSize > 0 {
		return m.config.UI.PageSize
	}
	return uiutils.CalculatePageSize(m.height)
}

// Init initializes the browser view
func (m *BrowserViewModel) Init() tea.Cmd {
	return nil
}

// ConsumeEsc gives the browser a chance to use esc for closing the
// info panel before the app treats it as back navigation
func (m *BrowserViewModel) ConsumeEsc() bool {
	if m.info != nil && m.info.IsVisible() {
		m.info.SetVisible(false)
		return true
	}
	return false
}

// Update handles messages
func (m *BrowserViewModel) Update(msg tea.Msg) (*BrowserViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.pageSize = m.resolvePageSize()

	case tea.KeyMsg:
		m.status = ""

		// "k" marks the keeper here, so only arrows and "j" navigate
		switch msg.String() {
		case "up":
			m.moveCursor(-1)
		case "down", "j":
			m.moveCursor(1)
		case "g":
			m.cursor = 0
			m.offset = 0
		case "G":
			if len(m.rows) > 0 {
				m.cursor = len(m.rows) - 1
				if m.cursor >= m.offset+m.pageSize {
					m.offset = m.cursor - m.pageSize + 1
				}
			}
		case "space", " ":
			m.toggleCurrent()
		case "k":
			m.markKeeper()
		case "a":
			m.selectAllRedundant()
		case "d":
			m.selected = make(map[string]bool)
		case "i":
			m.toggleInfo()
		case "o":
			m.revealCurrent()
		case "x", "enter":
			return m, m.requestAction(ActionDelete)
		case "m":
			return m, m.requestAction(ActionMove)
		}
	}

	return m, nil
}

// moveCursor moves the cursor by delta rows, scrolling the window
func (m *BrowserViewModel) moveCursor(delta int) {
	next := m.cursor + delta
	if next < 0 || next >= len(m.rows) {
		return
	}
	m.cursor = next

	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.pageSize {
		m.offset = m.cursor - m.pageSize + 1
	}
}

// currentRow returns the row under the cursor
func (m *BrowserViewModel) currentRow() (browserRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return browserRow{}, false
	}
	return m.rows[m.cursor], true
}

// toggleCurrent toggles selection of the current file, or of the whole
// group's redundant members when on a header row
func (m *BrowserViewModel) toggleCurrent() {
	row, ok := m.currentRow()
	if !ok {
		return
	}
	group := &m.result.Groups[row.group]

	if row.file < 0 {
		// Header row: toggle every redundant member of the group
		redundant := group.Redundant()
		allSelected := len(redundant) > 0
		for _, path := range redundant {
			if !m.selected[path] {
				allSelected = false
				break
			}
		}
		for _, path := range redundant {
			m.selected[path] = !allSelected
		}
		return
	}

	path := group.Files[row.file].Path
	if row.file == group.Keep {
		m.status = "That copy is marked KEEP; press k on another file to change it"
		return
	}
	m.selected[path] = !m.selected[path]
}

// markKeeper makes the file under the cursor the kept member
func (m *BrowserViewModel) markKeeper() {
	row, ok := m.currentRow()
	if !ok || row.file < 0 {
		return
	}
	group := &m.result.Groups[row.group]
	group.SetKeep(row.file)
	// The keeper can never stay selected for removal
	delete(m.selected, group.Files[row.file].Path)
}

// selectAllRedundant selects every non-kept member of every group
func (m *BrowserViewModel) selectAllRedundant() {
	for gi := range m.result.Groups {
		for _, path := range m.result.Groups[gi].Redundant() {
			m.selected[path] = true
		}
	}
}

// toggleInfo shows details for the file or group under the cursor
func (m *BrowserViewModel) toggleInfo() {
	if m.info != nil && m.info.IsVisible() {
		m.info.SetVisible(false)
		return
	}

	row, ok := m.currentRow()
	if !ok {
		return
	}
	group := &m.result.Groups[row.group]

	if row.file < 0 {
		m.info = components.GroupInfoPanel(group, m.width)
	} else {
		m.info = components.FileInfoPanel(group.Files[row.file], group.Digest, m.width)
	}
	m.info.SetVisible(true)
}

// revealCurrent opens the current file's directory in the file manager
func (m *BrowserViewModel) revealCurrent() {
	row, ok := m.currentRow()
	if !ok {
		return
	}
	group := &m.result.Groups[row.group]

	path := group.Files[0].Path
	if row.file >= 0 {
		path = group.Files[row.file].Path
	}

	if err := platform.OpenFileManager(path); err != nil {
		m.status = fmt.Sprintf("Could not open file manager: %v", err)
	}
}

// selection returns the selected paths in group order with their total size
func (m *BrowserViewModel) selection() ([]string, int64) {
	var paths []string
	var bytes int64
	for _, group := range m.result.Groups {
		for _, file := range group.Files {
			if m.selected[file.Path] {
				paths = append(paths, file.Path)
				bytes += group.Size
			}
		}
	}
	return paths, bytes
}

// requestAction asks the app to confirm a delete or move of the selection
func (m *BrowserViewModel) requestAction(action ApplyAction) tea.Cmd {
	paths, bytes := m.selection()
	if len(paths) == 0 {
		m.status = "Nothing selected; press space or a to select duplicates"
		return nil
	}

	return func() tea.Msg {
		return ActionRequestedMsg{Action: action, Paths: paths, TotalBytes: bytes}
	}
}

// View renders the browser view
func (m *BrowserViewModel) View() string {
	var b strings.Builder

	// Show warning if terminal is too small
	if warning := uiutils.GetSizeWarningBanner(m.width, m.height); warning != "" {
		b.WriteString(warning)
	}

	// Title
	b.WriteString(styles.TitleStyle.Render("🗂  Duplicate Groups"))
	b.WriteString("\n\n")

	if len(m.result.Groups) == 0 {
		b.WriteString(styles.SuccessStyle.Render("✓ No duplicates found!"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("Scanned %s files (%s) in %s.\n",
			styles.BoldStyle.Render(fmt.Sprintf("%d", m.result.TotalFiles)),
			styles.FileSizeStyle.Render(utils.FormatBytes(m.result.TotalBytes)),
			m.result.Duration.Round(10*time.Millisecond),
		))
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render("esc:new scan  q:quit"))
		return b.String()
	}

	// Scan summary
	b.WriteString(fmt.Sprintf("%s groups · %s duplicate files · %s reclaimable\n\n",
		styles.BoldStyle.Render(fmt.Sprintf("%d", len(m.result.Groups))),
		styles.BoldStyle.Render(fmt.Sprintf("%d", m.result.DuplicateCount())),
		styles.FileSizeStyle.Render(utils.FormatBytes(m.result.WastedBytes())),
	))

	// Visible window of rows
	end := m.offset + m.pageSize
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := m.offset; i < end; i++ {
		row := m.rows[i]
		group := &m.result.Groups[row.group]

		cursor := "  "
		if i == m.cursor {
			cursor = styles.SelectedStyle.Render("→ ")
		}

		if row.file < 0 {
			header := fmt.Sprintf("▸ %d copies × %s · #%s · wasted %s",
				len(group.Files),
				utils.FormatBytes(group.Size),
				group.Digest.Short(),
				utils.FormatBytes(group.WastedBytes),
			)
			b.WriteString(cursor + styles.GroupHeaderStyle.Render(header))
			b.WriteString("\n")
			continue
		}

		file := group.Files[row.file]

		marker := styles.UncheckedBox()
		if row.file == group.Keep {
			marker = styles.KeepBadge()
		} else if m.selected[file.Path] {
			marker = styles.CheckedBox()
		}

		icon := preview.KindForPath(file.Path).Icon()

		line := fmt.Sprintf("%s  %s %s %s %s",
			cursor,
			marker,
			icon,
			styles.FilePathStyle.Render(uiutils.TruncatePath(file.Path, m.width-35)),
			styles.DimStyle.Render(file.ModTime.Format("2006-01-02 15:04")),
		)

		b.WriteString(line)
		b.WriteString("\n")
	}

	if end < len(m.rows) {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  … %d more rows", len(m.rows)-end)))
		b.WriteString("\n")
	}

	// Status message
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styles.WarningStyle.Render(m.status))
		b.WriteString("\n")
	}

	// Info panel
	if m.info != nil && m.info.IsVisible() {
		b.WriteString("\n")
		b.WriteString(m.info.Render())
		b.WriteString("\n")
	}

	b.WriteString("\n")

	// Status bar
	paths, bytes := m.selection()
	statusBar := components.NewStatusBar()
	statusBar.SetView("Group Browser")
	statusBar.SetSelection(len(paths), m.result.DuplicateCount(), bytes)
	statusBar.SetShortcuts(map[string]string{
		"space": "select",
		"k":     "keep",
		"a":     "all",
		"x":     "delete",
		"m":     "move",
		"i":     "info",
		"o":     "reveal",
		"?":     "help",
	})

	b.WriteString(statusBar.Render(m.width))

	return b.String()
}
