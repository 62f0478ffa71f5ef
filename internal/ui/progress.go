package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/progress"
)

// LiveProgress renders a small in-place status area on the terminal for
// non-interactive scans and applies. It consumes updates from a
// ProgressReporter subscription; the reporter already rate-limits
// emission, so every received update is drawn.
type LiveProgress struct {
	mu          sync.Mutex
	termWidth   int
	enabled     bool
	statusLines int

	reporter *progress.ProgressReporter
	updates  <-chan interface{}
	drained  chan struct{}
}

// NewLiveProgress creates a live progress display sized to the terminal
func NewLiveProgress() *LiveProgress {
	width := 80
	enabled := term.IsTerminal(int(os.Stdout.Fd()))
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	return &LiveProgress{
		termWidth:   width,
		enabled:     enabled,
		statusLines: 3,
	}
}

// SetEnabled enables or disables live progress
func (lp *LiveProgress) SetEnabled(enabled bool) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	lp.enabled = enabled
}

// Watch subscribes to the reporter and starts rendering updates until
// Stop is called.
func (lp *LiveProgress) Watch(pr *progress.ProgressReporter) {
	lp.reporter = pr
	lp.updates = pr.Subscribe()
	lp.drained = make(chan struct{})

	lp.start()
	go func() {
		defer close(lp.drained)
		for update := range lp.updates {
			lp.render(update)
		}
	}()
}

// Stop unsubscribes, waits for the renderer to drain and clears the
// status area.
func (lp *LiveProgress) Stop() {
	if lp.reporter == nil {
		return
	}
	lp.reporter.Unsubscribe(lp.updates)
	<-lp.drained
	lp.finish()
}

// start reserves the status area
func (lp *LiveProgress) start() {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if !lp.enabled {
		return
	}
	fmt.Print(strings.Repeat("\n", lp.statusLines))
	fmt.Printf("\033[%dA", lp.statusLines)
}

// render draws one update into the status area
func (lp *LiveProgress) render(update interface{}) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if !lp.enabled {
		return
	}

	var status, currentPath string
	switch p := update.(type) {
	case *progress.ScanProgress:
		status = progress.FormatScanProgress(p)
		currentPath = p.CurrentPath
	case *progress.ApplyProgress:
		status = progress.FormatApplyProgress(p)
		currentPath = p.CurrentPath
	default:
		return
	}

	width := lp.termWidth - 2

	// Save cursor, draw the three lines, restore
	fmt.Print("\033[s")

	fmt.Printf("\033[K%s\n", truncate(status, width))

	spinner := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinIdx := int(time.Now().UnixMilli()/100) % len(spinner)
	path := currentPath
	if len(path) > width-10 {
		path = "..." + path[len(path)-(width-13):]
	}
	fmt.Printf("\033[K%s %s\n", spinner[spinIdx], path)

	fmt.Printf("\033[K%s", strings.Repeat("─", width))

	fmt.Print("\033[u")
}

// finish clears the status area and moves past it
func (lp *LiveProgress) finish() {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if !lp.enabled {
		return
	}
	for i := 0; i < lp.statusLines; i++ {
		fmt.Print("\033[K\033[1B")
	}
	fmt.Printf("\033[%dA", lp.statusLines)
}

// truncate truncates a string to fit width
func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return "..."
	}
	return s[:width-3] + "..."
}
