package progress

import (
	"fmt"
	"sync"
	"time"
)

// Phase represents the current phase of a scan or apply operation
type Phase string

const (
	PhaseEnumerating Phase = "enumerating"
	PhaseFiltering   Phase = "filtering"
	PhaseHashing     Phase = "hashing"
	PhaseGrouping    Phase = "grouping"
	PhaseApplying    Phase = "applying"
	PhaseComplete    Phase = "complete"
	PhaseCancelled   Phase = "cancelled"
)

// DefaultMinInterval bounds how often intermediate updates reach
// listeners. Phase transitions and terminal updates always go through.
const DefaultMinInterval = 100 * time.Millisecond

// ScanProgress represents progress during a duplicate scan
type ScanProgress struct {
	Phase          Phase
	CurrentPath    string
	FilesSeen      int
	TotalBytes     int64
	Candidates     int
	CandidateBytes int64
	HashedFiles    int
	HashedBytes    int64
	StartTime      time.Time
}

// ApplyProgress represents progress while deleting or moving files
type ApplyProgress struct {
	Phase          Phase
	Action         string // "delete" or "move"
	CurrentPath    string
	Done           int
	Total          int
	BytesProcessed int64
	Failed         int
	StartTime      time.Time
}

// ProgressReporter provides thread-safe, rate-bounded progress fan-out.
// Listeners receive updates on buffered channels; a listener that falls
// behind misses intermediate updates rather than stalling the producer.
type ProgressReporter struct {
	scanProgress  *ScanProgress
	applyProgress *ApplyProgress
	mu            sync.RWMutex
	listeners     []chan interface{}
	minInterval   time.Duration
	lastScanEmit  time.Time
	lastApplyEmit time.Time
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		listeners:   make([]chan interface{}, 0),
		minInterval: DefaultMinInterval,
	}
}

// SetMinInterval overrides the coalescing interval. Zero disables
// coalescing so every update is forwarded (useful in tests).
func (pr *ProgressReporter) SetMinInterval(d time.Duration) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.minInterval = d
}

// Subscribe returns a channel that receives progress updates
func (pr *ProgressReporter) Subscribe() <-chan interface{} {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	ch := make(chan interface{}, 10)
	pr.listeners = append(pr.listeners, ch)
	return ch
}

// Unsubscribe closes and removes a listener channel
func (pr *ProgressReporter) Unsubscribe(ch <-chan interface{}) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	for i, listener := range pr.listeners {
		if listener == ch {
			close(listener)
			pr.listeners = append(pr.listeners[:i], pr.listeners[i+1:]...)
			return
		}
	}
}

// UpdateScanProgress records scan progress and notifies listeners.
// Intermediate updates inside the same phase are coalesced to at most
// one per minInterval; phase changes and terminal phases always emit.
func (pr *ProgressReporter) UpdateScanProgress(update *ScanProgress) {
	pr.mu.Lock()
	prev := pr.scanProgress
	pr.scanProgress = update

	emit := pr.shouldEmit(prev == nil || prev.Phase != update.Phase, update.Phase, &pr.lastScanEmit)
	if !emit {
		pr.mu.Unlock()
		return
	}
	listeners := make([]chan interface{}, len(pr.listeners))
	copy(listeners, pr.listeners)
	pr.mu.Unlock()

	// Notify all listeners (non-blocking)
	for _, listener := range listeners {
		select {
		case listener <- update:
		default:
			// Skip if channel is full
		}
	}
}

// UpdateApplyProgress records apply progress and notifies listeners
// under the same coalescing rules as scan updates.
func (pr *ProgressReporter) UpdateApplyProgress(update *ApplyProgress) {
	pr.mu.Lock()
	prev := pr.applyProgress
	pr.applyProgress = update

	emit := pr.shouldEmit(prev == nil || prev.Phase != update.Phase, update.Phase, &pr.lastApplyEmit)
	if !emit {
		pr.mu.Unlock()
		return
	}
	listeners := make([]chan interface{}, len(pr.listeners))
	copy(listeners, pr.listeners)
	pr.mu.Unlock()

	for _, listener := range listeners {
		select {
		case listener <- update:
		default:
		}
	}
}

// shouldEmit decides whether an update passes the rate bound. Caller
// must hold pr.mu.
func (pr *ProgressReporter) shouldEmit(phaseChanged bool, phase Phase, lastEmit *time.Time) bool {
	if phaseChanged || phase == PhaseComplete || phase == PhaseCancelled {
		*lastEmit = time.Now()
		return true
	}
	if pr.minInterval <= 0 || time.Since(*lastEmit) >= pr.minInterval {
		*lastEmit = time.Now()
		return true
	}
	return false
}

// GetScanProgress returns the most recent scan progress
func (pr *ProgressReporter) GetScanProgress() *ScanProgress {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.scanProgress
}

// GetApplyProgress returns the most recent apply progress
func (pr *ProgressReporter) GetApplyProgress() *ApplyProgress {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.applyProgress
}

// FormatScanProgress returns a human-readable scan progress string
func FormatScanProgress(p *ScanProgress) string {
	if p == nil {
		return "Initializing..."
	}

	elapsed := time.Since(p.StartTime)

	switch p.Phase {
	case PhaseEnumerating:
		return fmt.Sprintf("Enumerating... %d files (%s) [%s]",
			p.FilesSeen,
			FormatBytes(p.TotalBytes),
			FormatDuration(elapsed))
	case PhaseFiltering:
		return fmt.Sprintf("Filtering by size... %d of %d files need hashing",
			p.Candidates,
			p.FilesSeen)
	case PhaseHashing:
		percentage := 0
		if p.Candidates > 0 {
			percentage = (p.HashedFiles * 100) / p.Candidates
		}
		return fmt.Sprintf("Hashing %d/%d (%d%%) - %s read [%s]",
			p.HashedFiles,
			p.Candidates,
			percentage,
			FormatBytes(p.HashedBytes),
			FormatDuration(elapsed))
	case PhaseGrouping:
		return "Grouping duplicates..."
	case PhaseComplete:
		return fmt.Sprintf("Scan complete: %d files (%s) in %s",
			p.FilesSeen,
			FormatBytes(p.TotalBytes),
			FormatDuration(elapsed))
	case PhaseCancelled:
		return "Scan cancelled"
	default:
		return "Scanning..."
	}
}

// FormatApplyProgress returns a human-readable apply progress string
func FormatApplyProgress(p *ApplyProgress) string {
	if p == nil {
		return "Preparing..."
	}

	elapsed := time.Since(p.StartTime)

	switch p.Phase {
	case PhaseApplying:
		percentage := 0
		if p.Total > 0 {
			percentage = (p.Done * 100) / p.Total
		}
		return fmt.Sprintf("%s... %d/%d files (%d%%) - %s",
			applyVerb(p.Action),
			p.Done,
			p.Total,
			percentage,
			FormatBytes(p.BytesProcessed))
	case PhaseComplete:
		failed := ""
		if p.Failed > 0 {
			failed = fmt.Sprintf(", %d failed", p.Failed)
		}
		return fmt.Sprintf("%s complete: %d files (%s)%s in %s",
			applyVerb(p.Action),
			p.Done,
			FormatBytes(p.BytesProcessed),
			failed,
			FormatDuration(elapsed))
	default:
		return "Preparing..."
	}
}

func applyVerb(action string) string {
	switch action {
	case "move":
		return "Moving"
	case "delete":
		return "Deleting"
	default:
		return "Applying"
	}
}

// FormatBytes formats bytes in human-readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGT"[exp])
}

// FormatDuration formats duration in human-readable format
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
