package fileops

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// Reason categorizes why a file operation failed
type Reason int

const (
	ReasonIO Reason = iota
	ReasonVanished
	ReasonInvalidDestination
	ReasonExhausted
)

// String returns a human-readable failure reason
func (r Reason) String() string {
	switch r {
	case ReasonIO:
		return "I/O error"
	case ReasonVanished:
		return "Path vanished"
	case ReasonInvalidDestination:
		return "Invalid destination"
	case ReasonExhausted:
		return "Resources exhausted"
	default:
		return "Unspecified error"
	}
}

// OpError represents a detailed per-target operation failure
type OpError struct {
	Path     string
	Reason   Reason
	Original error
}

// Error implements the error interface
func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s (%v)", e.Path, e.Reason, e.Original)
}

// Unwrap returns the underlying error
func (e *OpError) Unwrap() error {
	return e.Original
}

// UserMessage returns a user-friendly error message
func (e *OpError) UserMessage() string {
	switch e.Reason {
	case ReasonVanished:
		return fmt.Sprintf("ℹ️  File no longer exists: %s", e.Path)
	case ReasonInvalidDestination:
		return fmt.Sprintf("⚠️  Invalid destination for %s: %v", e.Path, e.Original)
	case ReasonExhausted:
		return fmt.Sprintf("⚠️  System resources exhausted at %s (close some applications and retry)", e.Path)
	default:
		return fmt.Sprintf("❌ Error processing %s: %v", e.Path, e.Original)
	}
}

// Categorize analyzes an error and returns a categorized OpError
func Categorize(path string, err error) *OpError {
	if err == nil {
		return nil
	}

	opErr := &OpError{
		Path:     path,
		Original: err,
		Reason:   ReasonIO,
	}

	// The entry disappeared between enumeration and this operation
	if os.IsNotExist(err) {
		opErr.Reason = ReasonVanished
		return opErr
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ENOENT:
			opErr.Reason = ReasonVanished
		case syscall.EMFILE, syscall.ENFILE, syscall.ENOSPC:
			opErr.Reason = ReasonExhausted
		default:
			// Permission denied, busy files and the rest are plain
			// I/O failures on this path
			opErr.Reason = ReasonIO
		}
		return opErr
	}

	return opErr
}

// GroupByReason groups operation errors by reason
func GroupByReason(opErrors []*OpError) map[Reason][]*OpError {
	grouped := make(map[Reason][]*OpError)
	for _, err := range opErrors {
		grouped[err.Reason] = append(grouped[err.Reason], err)
	}
	return grouped
}

// FormatErrorSummary creates a user-friendly summary of errors
func FormatErrorSummary(opErrors []*OpError) string {
	if len(opErrors) == 0 {
		return ""
	}

	grouped := GroupByReason(opErrors)
	summary := "\n⚠️  Issues encountered:\n"

	if ioErrs, ok := grouped[ReasonIO]; ok {
		summary += fmt.Sprintf("   ├─ I/O failures: %d files\n", len(ioErrs))
		summary += "   │  └─ Tip: Check permissions and whether files are in use\n"
	}

	if vanished, ok := grouped[ReasonVanished]; ok {
		summary += fmt.Sprintf("   ├─ Already gone: %d files\n", len(vanished))
	}

	if invalid, ok := grouped[ReasonInvalidDestination]; ok {
		summary += fmt.Sprintf("   ├─ Invalid destination: %d files\n", len(invalid))
		summary += "   │  └─ Tip: Pick a writable directory outside the source folders\n"
	}

	if exhausted, ok := grouped[ReasonExhausted]; ok {
		summary += fmt.Sprintf("   └─ Resources exhausted: %d files\n", len(exhausted))
	}

	return summary
}
