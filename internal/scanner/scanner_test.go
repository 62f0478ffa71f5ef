package scanner

import (
	"context"
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/progress"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/testutil"
)

// =============================================================================
// Root Normalization Tests
// =============================================================================

func TestNormalizeRoots(t *testing.T) {
	f := testutil.NewFixture(t)

	t.Run("drops exact repeats preserving order", func(t *testing.T) {
		got := normalizeRoots([]string{f.RootA, f.RootB, f.RootA})
		if len(got) != 2 {
			t.Fatalf("got %d roots, want 2", len(got))
		}
		if got[0] != f.RootA || got[1] != f.RootB {
			t.Errorf("got %v, want [%s %s]", got, f.RootA, f.RootB)
		}
	})

	t.Run("resolves relative paths", func(t *testing.T) {
		got := normalizeRoots([]string{"."})
		want, err := filepath.Abs(".")
		if err != nil {
			t.Fatalf("Abs failed: %v", err)
		}
		if len(got) != 1 || got[0] != want {
			t.Errorf("got %v, want [%s]", got, want)
		}
	})

	t.Run("trailing separator is not a distinct root", func(t *testing.T) {
		got := normalizeRoots([]string{f.RootA, f.RootA + string(os.PathSeparator)})
		if len(got) != 1 {
			t.Errorf("got %d roots, want 1", len(got))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		got := normalizeRoots(nil)
		if len(got) != 0 {
			t.Errorf("got %d roots, want 0", len(got))
		}
	})
}

// =============================================================================
// Exclude Pattern Tests
// =============================================================================

func TestShouldExclude(t *testing.T) {
	s := &session{opts: Options{
		ExcludePatterns: []string{"*.log", "node_modules", "/var/secret"},
	}}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"base name glob", "/home/user/app.log", true},
		{"glob does not match other extensions", "/home/user/app.txt", false},
		{"directory name substring", "/home/user/node_modules/pkg/index.js", true},
		{"full path match", "/var/secret", true},
		{"unrelated path", "/home/user/photo.jpg", false},
		{"substring inside file name", "/home/user/my_node_modules_backup", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.shouldExclude(tt.path); got != tt.want {
				t.Errorf("shouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestShouldExcludeNoPatterns(t *testing.T) {
	s := &session{opts: Options{}}
	if s.shouldExclude("/any/path/at/all") {
		t.Error("no patterns configured, nothing should be excluded")
	}
}

// =============================================================================
// Size Index Tests
// =============================================================================

func TestSizeIndexNeedsHash(t *testing.T) {
	ix := newSizeIndex()
	ix.add(0, 100)
	ix.add(1, 100)
	ix.add(2, 200)
	ix.add(3, 0)
	ix.add(4, 0)

	tests := []struct {
		name string
		size int64
		want bool
	}{
		{"two members share size", 100, true},
		{"single member", 200, false},
		{"unseen size", 999, false},
		{"zero-byte files never hashed", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ix.needsHash(tt.size); got != tt.want {
				t.Errorf("needsHash(%d) = %v, want %v", tt.size, got, tt.want)
			}
		})
	}
}

func TestSizeIndexGrouped(t *testing.T) {
	ix := newSizeIndex()
	ix.add(0, 0)
	ix.add(1, 0)
	ix.add(2, 50)

	if !ix.grouped(0) {
		t.Error("two zero-byte members should be groupable")
	}
	if ix.grouped(50) {
		t.Error("single member cannot form a group")
	}
	if ix.grouped(999) {
		t.Error("unseen size cannot form a group")
	}
}

func TestSizeIndexStats(t *testing.T) {
	ix := newSizeIndex()
	// Two files of 100 bytes: candidates.
	ix.add(0, 100)
	ix.add(1, 100)
	// Singleton: not a candidate.
	ix.add(2, 200)
	// Zero-byte files: groupable but never hashed.
	ix.add(3, 0)
	ix.add(4, 0)
	// Three files of 50 bytes: candidates.
	ix.add(5, 50)
	ix.add(6, 50)
	ix.add(7, 50)

	files, bytes := ix.stats()
	if files != 5 {
		t.Errorf("candidate files = %d, want 5", files)
	}
	if bytes != 350 {
		t.Errorf("candidate bytes = %d, want 350", bytes)
	}
}

// =============================================================================
// Digest Tests
// =============================================================================

func TestDigestFormatting(t *testing.T) {
	d := Digest(sha256.Sum256([]byte("hello")))

	wantHex := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := d.String(); got != wantHex {
		t.Errorf("String() = %q, want %q", got, wantHex)
	}
	if got := d.Short(); got != "2cf24dba" {
		t.Errorf("Short() = %q, want %q", got, "2cf24dba")
	}
}

func TestEmptyDigest(t *testing.T) {
	// SHA-256 of zero bytes is a fixed, well-known value.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := EmptyDigest.String(); got != want {
		t.Errorf("EmptyDigest = %q, want %q", got, want)
	}
	if EmptyDigest != Digest(sha256.Sum256(nil)) {
		t.Error("EmptyDigest should equal the digest of empty input")
	}
}

// =============================================================================
// Content Hashing Tests
// =============================================================================

func TestHashFileMatchesReference(t *testing.T) {
	f := testutil.NewFixture(t)
	content := []byte("the quick brown fox jumps over the lazy dog")
	path := f.CreateFile("a/fox.txt", content)

	want := Digest(sha256.Sum256(content))

	t.Run("full-size buffer", func(t *testing.T) {
		got, err := hashFile(context.Background(), path, make([]byte, hashChunkSize))
		if err != nil {
			t.Fatalf("hashFile failed: %v", err)
		}
		if got != want {
			t.Errorf("digest = %s, want %s", got, want)
		}
	})

	t.Run("tiny buffer forces many chunks", func(t *testing.T) {
		got, err := hashFile(context.Background(), path, make([]byte, 4))
		if err != nil {
			t.Fatalf("hashFile failed: %v", err)
		}
		if got != want {
			t.Errorf("digest = %s, want %s", got, want)
		}
	})
}

func TestHashFileCancelled(t *testing.T) {
	f := testutil.NewFixture(t)
	path := f.CreateFile("a/data.bin", []byte("some content"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := hashFile(ctx, path, make([]byte, hashChunkSize))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestHashFileMissing(t *testing.T) {
	f := testutil.NewFixture(t)
	missing := filepath.Join(f.RootA, "does-not-exist.txt")

	_, err := hashFile(context.Background(), missing, make([]byte, hashChunkSize))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !os.IsNotExist(err) {
		t.Errorf("got %v, want a not-exist error", err)
	}
}

// =============================================================================
// Group Assembly Tests
// =============================================================================

func hashedEntry(digest Digest, path string, size int64) HashedEntry {
	return HashedEntry{
		FileEntry: FileEntry{Path: path, Size: size},
		Digest:    digest,
	}
}

func TestBuildGroupsSingletonsDiscarded(t *testing.T) {
	groups := buildGroups([]HashedEntry{
		hashedEntry(Digest(sha256.Sum256([]byte("a"))), "/x/a", 10),
		hashedEntry(Digest(sha256.Sum256([]byte("b"))), "/x/b", 10),
		hashedEntry(Digest(sha256.Sum256([]byte("c"))), "/x/c", 20),
	})

	if len(groups) != 0 {
		t.Errorf("got %d groups, want 0", len(groups))
	}
}

func TestBuildGroupsBasic(t *testing.T) {
	d := Digest(sha256.Sum256([]byte("shared")))
	groups := buildGroups([]HashedEntry{
		hashedEntry(d, "/x/first", 10),
		hashedEntry(d, "/y/second", 10),
		hashedEntry(d, "/z/third", 10),
	})

	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}

	g := groups[0]
	if g.Digest != d {
		t.Errorf("digest = %s, want %s", g.Digest, d)
	}
	if len(g.Files) != 3 {
		t.Errorf("got %d files, want 3", len(g.Files))
	}
	if g.Keep != 0 {
		t.Errorf("default keep = %d, want 0", g.Keep)
	}
	if g.Size != 10 {
		t.Errorf("size = %d, want 10", g.Size)
	}
	if g.WastedBytes != 20 {
		t.Errorf("wasted = %d, want 20", g.WastedBytes)
	}
	// Members keep discovery order.
	if g.Files[0].Path != "/x/first" || g.Files[2].Path != "/z/third" {
		t.Errorf("discovery order not preserved: %v", g.Files)
	}
}

func TestBuildGroupsOrdering(t *testing.T) {
	dA := Digest(sha256.Sum256([]byte("A"))) // wasted 100
	dB := Digest(sha256.Sum256([]byte("B"))) // wasted 20, 3 members
	dC := Digest(sha256.Sum256([]byte("C"))) // wasted 20, 2 members, min /b/1
	dD := Digest(sha256.Sum256([]byte("D"))) // wasted 20, 2 members, min /a/1

	groups := buildGroups([]HashedEntry{
		hashedEntry(dC, "/b/1", 20),
		hashedEntry(dC, "/b/2", 20),
		hashedEntry(dA, "/z/1", 100),
		hashedEntry(dA, "/z/2", 100),
		hashedEntry(dB, "/m/1", 10),
		hashedEntry(dB, "/m/2", 10),
		hashedEntry(dB, "/m/3", 10),
		hashedEntry(dD, "/a/1", 20),
		hashedEntry(dD, "/a/2", 20),
	})

	if len(groups) != 4 {
		t.Fatalf("got %d groups, want 4", len(groups))
	}

	wantOrder := []Digest{dA, dB, dD, dC}
	for i, want := range wantOrder {
		if groups[i].Digest != want {
			t.Errorf("groups[%d].Digest = %s, want %s", i, groups[i].Digest.Short(), want.Short())
		}
	}
}

func TestSetKeepAndRedundant(t *testing.T) {
	g := DuplicateGroup{
		Files: []FileEntry{
			{Path: "/x/one"},
			{Path: "/x/two"},
			{Path: "/x/three"},
		},
	}

	got := g.Redundant()
	if len(got) != 2 || got[0] != "/x/two" || got[1] != "/x/three" {
		t.Errorf("Redundant() with default keep = %v", got)
	}

	g.SetKeep(2)
	got = g.Redundant()
	if len(got) != 2 || got[0] != "/x/one" || got[1] != "/x/two" {
		t.Errorf("Redundant() after SetKeep(2) = %v", got)
	}

	// Out-of-range assignments are ignored.
	g.SetKeep(-1)
	if g.Keep != 2 {
		t.Errorf("SetKeep(-1) changed keep to %d", g.Keep)
	}
	g.SetKeep(3)
	if g.Keep != 2 {
		t.Errorf("SetKeep(3) changed keep to %d", g.Keep)
	}
}

func TestScanResultAggregates(t *testing.T) {
	r := &ScanResult{
		Groups: []DuplicateGroup{
			{Files: make([]FileEntry, 3), WastedBytes: 20},
			{Files: make([]FileEntry, 2), WastedBytes: 100},
		},
	}

	if got := r.DuplicateCount(); got != 3 {
		t.Errorf("DuplicateCount() = %d, want 3", got)
	}
	if got := r.WastedBytes(); got != 120 {
		t.Errorf("WastedBytes() = %d, want 120", got)
	}
}

// =============================================================================
// Scanner Construction Tests
// =============================================================================

func TestNewWorkerDefaults(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		check   func(got int) bool
	}{
		{"zero becomes CPU count", 0, func(got int) bool { return got >= 1 && got <= 16 }},
		{"negative becomes CPU count", -3, func(got int) bool { return got >= 1 && got <= 16 }},
		{"explicit value kept", 4, func(got int) bool { return got == 4 }},
		{"capped at sixteen", 64, func(got int) bool { return got == 16 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Options{Workers: tt.workers})
			if !tt.check(s.opts.Workers) {
				t.Errorf("workers = %d", s.opts.Workers)
			}
		})
	}
}

// =============================================================================
// Scan Tests
// =============================================================================

func TestScanNoRoots(t *testing.T) {
	s := New(Options{})
	result, err := s.Scan(context.Background(), nil, true)

	if !errors.Is(err, ErrNoRoots) {
		t.Errorf("got %v, want ErrNoRoots", err)
	}
	if result != nil {
		t.Error("expected nil result")
	}
}

func TestScanNoValidRoots(t *testing.T) {
	f := testutil.NewFixture(t)
	plainFile := f.CreateFile("plain.txt", []byte("not a directory"))
	missing := filepath.Join(f.RootDir, "missing")

	tests := []struct {
		name  string
		roots []string
	}{
		{"missing directory", []string{missing}},
		{"root is a regular file", []string{plainFile}},
		{"all roots unusable", []string{missing, plainFile}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Options{})
			result, err := s.Scan(context.Background(), tt.roots, true)

			if !errors.Is(err, ErrNoValidRoots) {
				t.Errorf("got %v, want ErrNoValidRoots", err)
			}
			if result != nil {
				t.Error("expected nil result")
			}
		})
	}
}

func TestScanFindsDuplicates(t *testing.T) {
	f := testutil.NewFixture(t)

	dupContent := []byte("identical payload shared by three copies")
	dups := f.CreateDuplicateSet(dupContent, "a/one.txt", "a/two.txt", "b/three.txt")
	unique := []byte("entirely different content here")
	f.CreateFile("a/unique.txt", unique)

	s := New(Options{})
	result, err := s.Scan(context.Background(), []string{f.RootA, f.RootB}, true)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if result.TotalFiles != 4 {
		t.Errorf("TotalFiles = %d, want 4", result.TotalFiles)
	}
	wantBytes := int64(3*len(dupContent) + len(unique))
	if result.TotalBytes != wantBytes {
		t.Errorf("TotalBytes = %d, want %d", result.TotalBytes, wantBytes)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(result.Groups))
	}

	g := result.Groups[0]
	if len(g.Files) != 3 {
		t.Fatalf("got %d members, want 3", len(g.Files))
	}
	for i, want := range dups {
		if g.Files[i].Path != want {
			t.Errorf("Files[%d] = %s, want %s (discovery order)", i, g.Files[i].Path, want)
		}
	}
	if g.Size != int64(len(dupContent)) {
		t.Errorf("group size = %d, want %d", g.Size, len(dupContent))
	}
	if g.WastedBytes != 2*int64(len(dupContent)) {
		t.Errorf("wasted = %d, want %d", g.WastedBytes, 2*len(dupContent))
	}
	if g.Keep != 0 {
		t.Errorf("keep = %d, want 0", g.Keep)
	}

	wantDigest := Digest(sha256.Sum256(dupContent))
	if g.Digest != wantDigest {
		t.Errorf("digest = %s, want %s", g.Digest.Short(), wantDigest.Short())
	}

	if result.DuplicateCount() != 2 {
		t.Errorf("DuplicateCount() = %d, want 2", result.DuplicateCount())
	}
	if result.WastedBytes() != g.WastedBytes {
		t.Errorf("WastedBytes() = %d, want %d", result.WastedBytes(), g.WastedBytes)
	}
}

func TestScanSameSizeDifferentContent(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("a/left.bin", []byte("aaaaaaaa"))
	f.CreateFile("a/right.bin", []byte("bbbbbbbb"))

	s := New(Options{})
	result, err := s.Scan(context.Background(), []string{f.RootA}, true)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if result.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", result.TotalFiles)
	}
	if len(result.Groups) != 0 {
		t.Errorf("same size but different content grouped: %v", result.Groups)
	}
}

func TestScanDistinctSizesNeverGrouped(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("a/small.txt", []byte("abc"))
	f.CreateFile("a/large.txt", []byte("abcdef"))

	s := New(Options{})
	result, err := s.Scan(context.Background(), []string{f.RootA}, true)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(result.Groups) != 0 {
		t.Errorf("got %d groups, want 0", len(result.Groups))
	}
}

func TestScanZeroByteFiles(t *testing.T) {
	t.Run("multiple empties form one group", func(t *testing.T) {
		f := testutil.NewFixture(t)
		empties := f.CreateDuplicateSet(nil, "a/e1", "a/e2", "b/e3")

		s := New(Options{})
		result, err := s.Scan(context.Background(), []string{f.RootA, f.RootB}, true)
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}

		if len(result.Groups) != 1 {
			t.Fatalf("got %d groups, want 1", len(result.Groups))
		}
		g := result.Groups[0]
		if g.Digest != EmptyDigest {
			t.Errorf("digest = %s, want the empty digest", g.Digest.Short())
		}
		if len(g.Files) != len(empties) {
			t.Errorf("got %d members, want %d", len(g.Files), len(empties))
		}
		if g.WastedBytes != 0 {
			t.Errorf("wasted = %d, want 0", g.WastedBytes)
		}
		if result.DuplicateCount() != 2 {
			t.Errorf("DuplicateCount() = %d, want 2", result.DuplicateCount())
		}
	})

	t.Run("lone empty file is not a group", func(t *testing.T) {
		f := testutil.NewFixture(t)
		f.CreateFile("a/solo", nil)
		f.CreateFile("a/other.txt", []byte("content"))

		s := New(Options{})
		result, err := s.Scan(context.Background(), []string{f.RootA}, true)
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}

		if len(result.Groups) != 0 {
			t.Errorf("got %d groups, want 0", len(result.Groups))
		}
	})
}

func TestScanShallowSkipsSubdirectories(t *testing.T) {
	f := testutil.NewFixture(t)
	content := []byte("same bytes top and bottom")
	f.CreateFile("a/top.txt", content)
	f.CreateFile("a/nested/deep.txt", content)

	s := New(Options{})

	shallow, err := s.Scan(context.Background(), []string{f.RootA}, false)
	if err != nil {
		t.Fatalf("shallow scan failed: %v", err)
	}
	if shallow.TotalFiles != 1 {
		t.Errorf("shallow TotalFiles = %d, want 1", shallow.TotalFiles)
	}
	if len(shallow.Groups) != 0 {
		t.Errorf("shallow scan found %d groups, want 0", len(shallow.Groups))
	}

	deep, err := s.Scan(context.Background(), []string{f.RootA}, true)
	if err != nil {
		t.Fatalf("recursive scan failed: %v", err)
	}
	if deep.TotalFiles != 2 {
		t.Errorf("recursive TotalFiles = %d, want 2", deep.TotalFiles)
	}
	if len(deep.Groups) != 1 {
		t.Errorf("recursive scan found %d groups, want 1", len(deep.Groups))
	}
}

func TestScanSizeFilters(t *testing.T) {
	small := []byte("tiny!")                          // 5 bytes
	large := make([]byte, 100)                        // 100 bytes
	copy(large, []byte("large file content padding")) // deterministic bytes

	tests := []struct {
		name       string
		opts       Options
		wantFiles  int
		wantGroups int
	}{
		{"no limits", Options{}, 4, 2},
		{"min excludes small pair", Options{MinFileSize: 10}, 2, 1},
		{"max excludes large pair", Options{MaxFileSize: 50}, 2, 1},
		{"window excludes both", Options{MinFileSize: 10, MaxFileSize: 50}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testutil.NewFixture(t)
			f.CreateDuplicateSet(small, "a/s1.txt", "a/s2.txt")
			f.CreateDuplicateSet(large, "a/l1.bin", "a/l2.bin")

			s := New(tt.opts)
			result, err := s.Scan(context.Background(), []string{f.RootA}, true)
			if err != nil {
				t.Fatalf("Scan failed: %v", err)
			}

			if result.TotalFiles != tt.wantFiles {
				t.Errorf("TotalFiles = %d, want %d", result.TotalFiles, tt.wantFiles)
			}
			if len(result.Groups) != tt.wantGroups {
				t.Errorf("got %d groups, want %d", len(result.Groups), tt.wantGroups)
			}
		})
	}
}

func TestScanExcludePatterns(t *testing.T) {
	t.Run("glob on base name", func(t *testing.T) {
		f := testutil.NewFixture(t)
		f.CreateDuplicateSet([]byte("log line repeated"), "a/app.log", "a/rotated.log")
		f.CreateDuplicateSet([]byte("document content"), "a/keep1.txt", "a/keep2.txt")

		s := New(Options{ExcludePatterns: []string{"*.log"}})
		result, err := s.Scan(context.Background(), []string{f.RootA}, true)
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}

		if result.TotalFiles != 2 {
			t.Errorf("TotalFiles = %d, want 2", result.TotalFiles)
		}
		if len(result.Groups) != 1 {
			t.Fatalf("got %d groups, want 1", len(result.Groups))
		}
		for _, file := range result.Groups[0].Files {
			if filepath.Ext(file.Path) == ".log" {
				t.Errorf("excluded file leaked into results: %s", file.Path)
			}
		}
	})

	t.Run("directory pruned by name", func(t *testing.T) {
		f := testutil.NewFixture(t)
		f.CreateDuplicateSet([]byte("vendored module"), "a/node_modules/x.js", "a/node_modules/y.js")
		f.CreateDuplicateSet([]byte("our own source"), "a/src/m1.go", "a/src/m2.go")

		s := New(Options{ExcludePatterns: []string{"node_modules"}})
		result, err := s.Scan(context.Background(), []string{f.RootA}, true)
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}

		if result.TotalFiles != 2 {
			t.Errorf("TotalFiles = %d, want 2", result.TotalFiles)
		}
		if len(result.Groups) != 1 {
			t.Errorf("got %d groups, want 1", len(result.Groups))
		}
	})
}

func TestScanSymlinkHandling(t *testing.T) {
	t.Run("file symlink is not a duplicate of its target", func(t *testing.T) {
		f := testutil.NewFixture(t)
		target := f.CreateFile("a/original.txt", []byte("pointed-to content"))
		f.CreateSymlink(target, "a/alias.txt")

		s := New(Options{})
		result, err := s.Scan(context.Background(), []string{f.RootA}, true)
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}

		if result.TotalFiles != 1 {
			t.Errorf("TotalFiles = %d, want 1", result.TotalFiles)
		}
		if len(result.Groups) != 0 {
			t.Errorf("symlink produced a phantom duplicate: %v", result.Groups)
		}
	})

	t.Run("broken symlink is skipped silently", func(t *testing.T) {
		f := testutil.NewFixture(t)
		f.CreateBrokenSymlink("a/dangling")
		f.CreateFile("a/real.txt", []byte("real content"))

		s := New(Options{})
		result, err := s.Scan(context.Background(), []string{f.RootA}, true)
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}

		if result.TotalFiles != 1 {
			t.Errorf("TotalFiles = %d, want 1", result.TotalFiles)
		}
		if len(result.Errors) != 0 {
			t.Errorf("broken symlink recorded as error: %v", result.Errors)
		}
	})

	t.Run("directory symlink is not descended", func(t *testing.T) {
		f := testutil.NewFixture(t)
		f.CreateFile("b/real/doc.txt", []byte("reachable two ways"))
		f.CreateSymlink(filepath.Join(f.RootB, "real"), "a/mirror")

		s := New(Options{})
		result, err := s.Scan(context.Background(), []string{f.RootA, f.RootB}, true)
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}

		if result.TotalFiles != 1 {
			t.Errorf("TotalFiles = %d, want 1", result.TotalFiles)
		}
		if len(result.Groups) != 0 {
			t.Errorf("dir symlink produced a phantom duplicate: %v", result.Groups)
		}
	})
}

func TestScanEntriesCarryModTime(t *testing.T) {
	f := testutil.NewFixture(t)
	content := []byte("same bytes, different ages")
	f.CreateFileWithAge("a/old.txt", content, 48*time.Hour)
	f.CreateFileWithAge("a/recent.txt", content, time.Hour)

	s := New(Options{})
	result, err := s.Scan(context.Background(), []string{f.RootA}, false)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(result.Groups))
	}

	files := result.Groups[0].Files
	if len(files) != 2 {
		t.Fatalf("group has %d members, want 2", len(files))
	}
	if files[0].ModTime.After(time.Now().Add(-47 * time.Hour)) {
		t.Errorf("old.txt ModTime = %v, want roughly 48h in the past", files[0].ModTime)
	}
	if files[1].ModTime.Before(time.Now().Add(-2 * time.Hour)) {
		t.Errorf("recent.txt ModTime = %v, want roughly 1h in the past", files[1].ModTime)
	}
}

func TestScanHardLinksAreDuplicates(t *testing.T) {
	// Hard links are separate directory entries with identical content,
	// so they group together like ordinary duplicates
	f := testutil.NewFixture(t)
	original := f.CreateFile("a/original.bin", []byte("linked payload"))
	f.CreateHardLink(original, "a/linked.bin")

	s := New(Options{})
	result, err := s.Scan(context.Background(), []string{f.RootA}, true)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if result.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", result.TotalFiles)
	}
	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(result.Groups))
	}
	if len(result.Groups[0].Files) != 2 {
		t.Errorf("group has %d members, want 2", len(result.Groups[0].Files))
	}
}

func TestScanOverlappingRoots(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("a/nested/shared.txt", []byte("seen from two roots"))

	s := New(Options{})
	result, err := s.Scan(context.Background(), []string{f.RootA, f.NestedDir}, true)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if result.TotalFiles != 1 {
		t.Errorf("TotalFiles = %d, want 1 (file counted once)", result.TotalFiles)
	}
	if len(result.Groups) != 0 {
		t.Errorf("overlapping roots produced a phantom duplicate: %v", result.Groups)
	}
}

func TestScanUnusableRootRecorded(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateDuplicateSet([]byte("still found"), "a/c1.txt", "a/c2.txt")
	missing := filepath.Join(f.RootDir, "gone")

	s := New(Options{})
	result, err := s.Scan(context.Background(), []string{missing, f.RootA}, true)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(result.Groups) != 1 {
		t.Errorf("got %d groups, want 1", len(result.Groups))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(result.Errors))
	}
	if result.Errors[0].Path != missing {
		t.Errorf("error path = %s, want %s", result.Errors[0].Path, missing)
	}
}

func TestScanUnreadableFileNonFatal(t *testing.T) {
	testutil.SkipIfRoot(t)

	f := testutil.NewFixture(t)
	content := []byte("three copies, one unreadable")
	f.CreateFile("a/ok1.txt", content)
	f.CreateFile("a/ok2.txt", content)
	bad := f.CreateNoPermissionFile("a/locked.txt", content)

	s := New(Options{})
	result, err := s.Scan(context.Background(), []string{f.RootA}, true)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if result.TotalFiles != 3 {
		t.Errorf("TotalFiles = %d, want 3", result.TotalFiles)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(result.Errors), result.Errors)
	}
	if result.Errors[0].Path != bad {
		t.Errorf("error path = %s, want %s", result.Errors[0].Path, bad)
	}
	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(result.Groups))
	}
	if len(result.Groups[0].Files) != 2 {
		t.Errorf("got %d members, want 2 (unreadable copy excluded)", len(result.Groups[0].Files))
	}
}

func TestScanCancelled(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateDuplicateSet([]byte("never reached"), "a/x1", "a/x2")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(Options{})
	result, err := s.Scan(ctx, []string{f.RootA}, true)

	if !errors.Is(err, ErrCancelled) {
		t.Errorf("got %v, want ErrCancelled", err)
	}
	if result != nil {
		t.Error("cancelled scan must not return a partial result")
	}
}

func TestScanIdempotent(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateDuplicateSet([]byte("stable content A"), "a/a1.txt", "a/a2.txt", "b/a3.txt")
	f.CreateDuplicateSet([]byte("stable content BB"), "a/b1.txt", "b/b2.txt")
	f.CreateFile("a/solo.txt", []byte("singleton"))

	s := New(Options{})
	roots := []string{f.RootA, f.RootB}

	first, err := s.Scan(context.Background(), roots, true)
	if err != nil {
		t.Fatalf("first scan failed: %v", err)
	}
	second, err := s.Scan(context.Background(), roots, true)
	if err != nil {
		t.Fatalf("second scan failed: %v", err)
	}

	if len(first.Groups) != len(second.Groups) {
		t.Fatalf("group counts differ: %d vs %d", len(first.Groups), len(second.Groups))
	}
	for i := range first.Groups {
		if first.Groups[i].Digest != second.Groups[i].Digest {
			t.Errorf("groups[%d] digest differs between scans", i)
		}
		if len(first.Groups[i].Files) != len(second.Groups[i].Files) {
			t.Errorf("groups[%d] member count differs between scans", i)
			continue
		}
		for j := range first.Groups[i].Files {
			if first.Groups[i].Files[j].Path != second.Groups[i].Files[j].Path {
				t.Errorf("groups[%d].Files[%d] differs: %s vs %s",
					i, j, first.Groups[i].Files[j].Path, second.Groups[i].Files[j].Path)
			}
		}
	}
}

// =============================================================================
// Progress Reporting Tests
// =============================================================================

func TestScanProgressPhases(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateDuplicateSet([]byte("progress fodder"), "a/p1.txt", "a/p2.txt")

	s := New(Options{})
	reporter := s.GetProgressReporter()
	updates := reporter.Subscribe()

	result, err := s.Scan(context.Background(), []string{f.RootA}, true)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	reporter.Unsubscribe(updates)

	var phases []progress.Phase
	for u := range updates {
		if sp, ok := u.(*progress.ScanProgress); ok {
			phases = append(phases, sp.Phase)
		}
	}

	if len(phases) == 0 {
		t.Fatal("no progress updates received")
	}
	if phases[0] != progress.PhaseEnumerating {
		t.Errorf("first phase = %s, want %s", phases[0], progress.PhaseEnumerating)
	}
	if phases[len(phases)-1] != progress.PhaseComplete {
		t.Errorf("last phase = %s, want %s", phases[len(phases)-1], progress.PhaseComplete)
	}

	seen := make(map[progress.Phase]bool)
	for _, p := range phases {
		seen[p] = true
	}
	for _, want := range []progress.Phase{progress.PhaseFiltering, progress.PhaseHashing, progress.PhaseGrouping} {
		if !seen[want] {
			t.Errorf("phase %s never reported", want)
		}
	}

	final := reporter.GetScanProgress()
	if final == nil {
		t.Fatal("no final progress snapshot")
	}
	if final.Phase != progress.PhaseComplete {
		t.Errorf("final phase = %s, want %s", final.Phase, progress.PhaseComplete)
	}
	if final.FilesSeen != result.TotalFiles {
		t.Errorf("final FilesSeen = %d, want %d", final.FilesSeen, result.TotalFiles)
	}
}
