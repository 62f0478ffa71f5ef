package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/progress"
)

var errNotDirectory = errors.New("not a directory")

// normalizeRoots resolves each root to a cleaned absolute path and
// drops exact repeats while preserving caller order.
func normalizeRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	seen := make(map[string]struct{}, len(roots))

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			abs = filepath.Clean(root)
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}

	return out
}

// enumerate walks each root and records the regular files found.
// Unusable roots and unreadable entries are recorded as per-file errors
// and traversal continues. The only error returned is the context's,
// when the scan is cancelled mid-walk.
func (s *session) enumerate(roots []string, recursive bool) error {
	for _, root := range roots {
		if err := s.ctx.Err(); err != nil {
			return err
		}

		info, err := os.Stat(root)
		if err != nil {
			s.recordError(root, err)
			continue
		}
		if !info.IsDir() {
			s.recordError(root, errNotDirectory)
			continue
		}
		s.validRoots++

		if recursive {
			err = s.walkTree(root)
		} else {
			err = s.walkShallow(root)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// walkTree descends through the whole tree under root in lexical
// order. Symlinks are not followed; they are skipped as non-regular
// entries, and directory symlinks are never descended into, so cycles
// cannot occur.
func (s *session) walkTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if cerr := s.ctx.Err(); cerr != nil {
			return cerr
		}

		if err != nil {
			// Permission denied or a directory vanished mid-walk;
			// record and keep going
			s.recordError(path, err)
			return nil
		}

		if d.IsDir() {
			if path != root && s.shouldExclude(path) {
				return fs.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if s.shouldExclude(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.recordError(path, err)
			return nil
		}

		s.addFile(path, info)
		return nil
	})
}

// walkShallow considers only the direct children of root
func (s *session) walkShallow(root string) error {
	dirents, err := os.ReadDir(root)
	if err != nil {
		s.recordError(root, err)
		return nil
	}

	for _, d := range dirents {
		if err := s.ctx.Err(); err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			continue
		}

		path := filepath.Join(root, d.Name())
		if s.shouldExclude(path) {
			continue
		}

		info, err := d.Info()
		if err != nil {
			s.recordError(path, err)
			continue
		}

		s.addFile(path, info)
	}

	return nil
}

// addFile appends a discovered regular file to the session, applying
// the size limits and collapsing paths that resolve to the same
// canonical file. The first-discovered spelling of a path wins; later
// routes to the same file (overlapping roots, symlinked directories)
// are dropped so a file is never reported as a duplicate of itself.
func (s *session) addFile(path string, info fs.FileInfo) {
	size := info.Size()
	if size < s.opts.MinFileSize {
		return
	}
	if s.opts.MaxFileSize > 0 && size > s.opts.MaxFileSize {
		return
	}

	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		canonical = path
	}
	if _, dup := s.seen[canonical]; dup {
		return
	}
	s.seen[canonical] = struct{}{}

	s.entries = append(s.entries, FileEntry{
		Path:    path,
		Size:    size,
		ModTime: info.ModTime(),
	})
	s.totalBytes += size

	s.reportScan(progress.PhaseEnumerating, path)
}

// shouldExclude checks a path against the configured exclude patterns
func (s *session) shouldExclude(path string) bool {
	for _, pattern := range s.opts.ExcludePatterns {
		if matched, _ := filepath.Match(pattern, path); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
			return true
		}
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}
