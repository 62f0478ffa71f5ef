package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/preview"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/scanner"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/ui/styles"
	"github.com/Ivan-Ryukendo/FileXSorter/pkg/utils"
)

// InfoPanel represents a contextual information panel
type InfoPanel struct {
	title   string
	content []InfoItem
	visible bool
	width   int
}

// InfoItem represents a single piece of information
type InfoItem struct {
	Label string
	Value string
	Icon  string
}

// NewInfoPanel creates a new info panel
func NewInfoPanel(title string, width int) *InfoPanel {
	return &InfoPanel{
		title:   title,
		content: []InfoItem{},
		visible: false,
		width:   width,
	}
}

// AddItem adds an information item to the panel
func (p *InfoPanel) AddItem(label, value, icon string) {
	p.content = append(p.content, InfoItem{
		Label: label,
		Value: value,
		Icon:  icon,
	})
}

// SetVisible sets the visibility of the panel
func (p *InfoPanel) SetVisible(visible bool) {
	p.visible = visible
}

// IsVisible returns whether the panel is visible
func (p *InfoPanel) IsVisible() bool {
	return p.visible
}

// Toggle toggles the visibility of the panel
func (p *InfoPanel) Toggle() {
	p.visible = !p.visible
}

// Clear clears all content from the panel
func (p *InfoPanel) Clear() {
	p.content = []InfoItem{}
}

// SetWidth sets the width of the panel
func (p *InfoPanel) SetWidth(width int) {
	p.width = width
}

// Render renders the info panel
func (p *InfoPanel) Render() string {
	if !p.visible || len(p.content) == 0 {
		return ""
	}

	var b strings.Builder

	// Calculate panel width (use half of terminal width, min 40)
	panelWidth := p.width / 2
	if panelWidth < 40 {
		panelWidth = 40
	}
	if panelWidth > 80 {
		panelWidth = 80
	}

	// Create panel style
	panelStyle := lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(styles.Primary).
		Padding(1, 2).
		Width(panelWidth).
		Background(styles.BgDark)

	// Title
	titleStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Underline(true)

	var content strings.Builder
	content.WriteString(titleStyle.Render(p.title))
	content.WriteString("\n\n")

	// Content items
	for i, item := range p.content {
		// Icon and label
		labelStyle := lipgloss.NewStyle().
			Foreground(styles.Secondary).
			Bold(true)

		if item.Icon != "" {
			content.WriteString(item.Icon + " ")
		}
		content.WriteString(labelStyle.Render(item.Label) + ": ")

		// Value
		valueStyle := lipgloss.NewStyle().
			Foreground(styles.Text)

		content.WriteString(valueStyle.Render(item.Value))

		if i < len(p.content)-1 {
			content.WriteString("\n")
		}
	}

	// Footer hint
	content.WriteString("\n\n")
	footerStyle := lipgloss.NewStyle().
		Foreground(styles.TextDim).
		Italic(true)
	content.WriteString(footerStyle.Render("Press 'i' or 'esc' to close"))

	b.WriteString(panelStyle.Render(content.String()))

	return b.String()
}

// RenderAsOverlay renders the panel as an overlay (centered on screen)
func (p *InfoPanel) RenderAsOverlay(terminalWidth, terminalHeight int) string {
	if !p.visible || len(p.content) == 0 {
		return ""
	}

	panelContent := p.Render()

	// Calculate positioning to center the panel
	lines := strings.Split(panelContent, "\n")
	panelHeight := len(lines)
	panelWidth := 0
	for _, line := range lines {
		if len(line) > panelWidth {
			panelWidth = len(line)
		}
	}

	// Center vertically and horizontally
	topPadding := (terminalHeight - panelHeight) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	leftPadding := (terminalWidth - panelWidth) / 2
	if leftPadding < 0 {
		leftPadding = 0
	}

	var b strings.Builder

	// Add top padding
	for i := 0; i < topPadding; i++ {
		b.WriteString("\n")
	}

	// Add left padding to each line
	for _, line := range lines {
		b.WriteString(strings.Repeat(" ", leftPadding))
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

// GroupInfoPanel creates an info panel for a duplicate group
func GroupInfoPanel(group *scanner.DuplicateGroup, width int) *InfoPanel {
	panel := NewInfoPanel("Group Information", width)

	panel.AddItem("Digest", group.Digest.Short(), "#")
	panel.AddItem("Copies", fmt.Sprintf("%d", len(group.Files)), "📊")
	panel.AddItem("File Size", utils.FormatBytes(group.Size), "💾")
	panel.AddItem("Reclaimable", utils.FormatBytes(group.WastedBytes), "♻️")
	if group.Keep >= 0 && group.Keep < len(group.Files) {
		panel.AddItem("Keeping", group.Files[group.Keep].Path, "✓")
	}

	return panel
}

// FileInfoPanel creates an info panel for a file within a group
func FileInfoPanel(entry scanner.FileEntry, digest scanner.Digest, width int) *InfoPanel {
	panel := NewInfoPanel("File Information", width)

	// Truncate path if too long
	displayPath := entry.Path
	if len(displayPath) > 60 {
		displayPath = displayPath[:30] + "..." + displayPath[len(displayPath)-30:]
	}

	kind := preview.KindForPath(entry.Path)

	panel.AddItem("Path", displayPath, "📁")
	panel.AddItem("Size", utils.FormatBytes(entry.Size), "💾")
	panel.AddItem("Modified", entry.ModTime.Format("2006-01-02 15:04:05"), "🕒")
	panel.AddItem("Type", kind.String(), kind.Icon())
	panel.AddItem("Digest", digest.Short(), "#")

	// First line of small text files as a content hint
	if snippet := preview.TextSnippet(entry.Path, entry.Size); snippet != "" {
		line := snippet
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		if len(line) > 48 {
			line = line[:45] + "..."
		}
		panel.AddItem("Preview", line, "📄")
	}

	return panel
}
