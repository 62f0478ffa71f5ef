package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Digest is the SHA-256 digest of a file's full content.
type Digest [sha256.Size]byte

// EmptyDigest is the digest shared by all zero-byte files. They are
// grouped without opening them, so the hasher never runs for this value.
var EmptyDigest = Digest(sha256.Sum256(nil))

// String returns the hex encoding of the digest
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first 8 hex characters, enough for display
func (d Digest) Short() string {
	return d.String()[:8]
}

// FileEntry represents a regular file discovered during enumeration.
// Entries are immutable once produced by the walker.
type FileEntry struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// HashedEntry pairs a discovered file with its content digest
type HashedEntry struct {
	FileEntry
	Digest Digest
}

// DuplicateGroup is a set of two or more files sharing identical size
// and digest. Files keeps discovery order; Keep marks the member the
// caller intends to retain and may be reassigned without re-scanning.
type DuplicateGroup struct {
	Digest      Digest
	Files       []FileEntry
	Keep        int
	Size        int64 // size of one member
	WastedBytes int64 // Size * (len(Files) - 1)
}

// SetKeep reassigns the kept member. Out-of-range indexes are ignored.
func (g *DuplicateGroup) SetKeep(i int) {
	if i >= 0 && i < len(g.Files) {
		g.Keep = i
	}
}

// Redundant returns the paths of all members except the kept one
func (g *DuplicateGroup) Redundant() []string {
	paths := make([]string, 0, len(g.Files)-1)
	for i, f := range g.Files {
		if i == g.Keep {
			continue
		}
		paths = append(paths, f.Path)
	}
	return paths
}

// ScanResult represents the outcome of one completed scan
type ScanResult struct {
	Groups     []DuplicateGroup
	TotalFiles int   // regular files enumerated under the roots
	TotalBytes int64 // combined size of enumerated files
	Duration   time.Duration
	Errors     []*ScanError
}

// DuplicateCount returns the number of redundant files across all groups
func (r *ScanResult) DuplicateCount() int {
	count := 0
	for _, g := range r.Groups {
		count += len(g.Files) - 1
	}
	return count
}

// WastedBytes returns the total reclaimable size across all groups
func (r *ScanResult) WastedBytes() int64 {
	var total int64
	for _, g := range r.Groups {
		total += g.WastedBytes
	}
	return total
}

// ScanError records a per-file failure that did not abort the scan
type ScanError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *ScanError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *ScanError) Unwrap() error {
	return e.Err
}
