package platform

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Platform represents the operating system platform
type Platform string

const (
	MacOS   Platform = "darwin"
	Linux   Platform = "linux"
	Unknown Platform = "unknown"
)

// Detect returns the current platform
func Detect() Platform {
	switch runtime.GOOS {
	case "darwin":
		return MacOS
	case "linux":
		return Linux
	default:
		return Unknown
	}
}

// OpenFileManager reveals a path in the system file manager. Regular
// files open their containing directory, since the common managers
// either reject file arguments or hand them to an application instead.
func OpenFileManager(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	target := path
	if !info.IsDir() {
		target = filepath.Dir(path)
	}

	switch Detect() {
	case MacOS:
		return exec.Command("open", target).Start()
	case Linux:
		return exec.Command("xdg-open", target).Start()
	default:
		return ErrUnsupportedPlatform
	}
}

// DefaultScanRoots returns the user directories most likely to collect
// duplicate files. Only directories that exist are returned.
func DefaultScanRoots() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	candidates := []string{
		filepath.Join(homeDir, "Downloads"),
		filepath.Join(homeDir, "Documents"),
		filepath.Join(homeDir, "Desktop"),
		filepath.Join(homeDir, "Pictures"),
	}

	roots := make([]string, 0, len(candidates))
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			roots = append(roots, dir)
		}
	}

	return roots
}

// Errors
var (
	ErrUnsupportedPlatform = &PlatformError{"unsupported platform"}
)

// PlatformError represents a platform-related error
type PlatformError struct {
	Message string
}

func (e *PlatformError) Error() string {
	return e.Message
}
