//go:build !linux && !darwin

package platform

import "os"

// FreeSpace is not implemented on this platform
func FreeSpace(path string) (int64, error) {
	return 0, ErrUnsupportedPlatform
}

// Writable probes dir by creating and removing a scratch file
func Writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".fxsorter-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
