//go:build linux || darwin

package platform

import "golang.org/x/sys/unix"

// FreeSpace returns the bytes available to the current user on the
// filesystem containing path.
func FreeSpace(path string) (int64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return int64(st.Bavail) * int64(st.Bsize), nil
}

// Writable reports whether the current user can create entries in dir
func Writable(dir string) bool {
	return unix.Access(dir, unix.W_OK) == nil
}
