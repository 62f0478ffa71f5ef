package reporter

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/scanner"
)

func sampleResult() *scanner.ScanResult {
	mod := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	return &scanner.ScanResult{
		Groups: []scanner.DuplicateGroup{
			{
				Digest: scanner.Digest(sha256.Sum256([]byte("dup-content"))),
				Files: []scanner.FileEntry{
					{Path: "/data/photos/img.jpg", Size: 4096, ModTime: mod},
					{Path: "/backup/photos/img.jpg", Size: 4096, ModTime: mod},
					{Path: "/old/img-copy.jpg", Size: 4096, ModTime: mod},
				},
				Keep:        1,
				Size:        4096,
				WastedBytes: 8192,
			},
		},
		TotalFiles: 10,
		TotalBytes: 123456,
		Duration:   1500 * time.Millisecond,
		Errors: []*scanner.ScanError{
			{Path: "/locked/dir", Err: errors.New("permission denied")},
		},
	}
}

// =============================================================================
// Summary Format Tests
// =============================================================================

func TestReportSummary(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, FormatSummary)

	if err := r.Report(sampleResult()); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	out := buf.String()
	for _, needle := range []string{
		"Duplicate Scan Summary",
		"Files Examined: 10",
		"Duplicate Groups: 1",
		"Redundant Copies: 2",
		"Wasted Space: 8.00 KB",
		"Scan Time: 1.5s",
		"Errors: 1",
	} {
		if !strings.Contains(out, needle) {
			t.Errorf("summary missing %q:\n%s", needle, out)
		}
	}
}

func TestReportSummaryNoErrors(t *testing.T) {
	result := sampleResult()
	result.Errors = nil

	var buf bytes.Buffer
	if err := New(&buf, FormatSummary).Report(result); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if strings.Contains(buf.String(), "Errors:") {
		t.Error("error section printed for a clean scan")
	}
}

// =============================================================================
// Table Format Tests
// =============================================================================

func TestReportTable(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, FormatTable)

	if err := r.Report(sampleResult()); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	out := buf.String()
	for _, needle := range []string{
		"Group 1: 3 files x 4.00 KB, 8.00 KB wasted",
		"* /backup/photos/img.jpg", // the kept member carries the marker
		"/data/photos/img.jpg",
		"2026-03-14",
		"Total: 1 groups, 2 redundant copies, 8.00 KB wasted",
		"Warnings (1 paths skipped):",
		"/locked/dir: permission denied",
	} {
		if !strings.Contains(out, needle) {
			t.Errorf("table missing %q:\n%s", needle, out)
		}
	}

	if got := strings.Count(out, "*"); got != 1 {
		t.Errorf("got %d keep markers, want exactly 1", got)
	}
}

func TestReportTableEmptyResult(t *testing.T) {
	var buf bytes.Buffer
	result := &scanner.ScanResult{TotalFiles: 5, TotalBytes: 100}

	if err := New(&buf, FormatTable).Report(result); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Total: 0 groups, 0 redundant copies") {
		t.Errorf("empty result total line missing:\n%s", out)
	}
}

// =============================================================================
// JSON Format Tests
// =============================================================================

func TestReportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, FormatJSON).Report(sampleResult()); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	var decoded struct {
		TotalFiles     int   `json:"total_files"`
		GroupCount     int   `json:"group_count"`
		DuplicateCount int   `json:"duplicate_count"`
		WastedBytes    int64 `json:"wasted_bytes"`
		Groups         []struct {
			Digest    string `json:"digest"`
			FileCount int    `json:"file_count"`
			Keep      string `json:"keep"`
			Files     []struct {
				Path string `json:"path"`
			} `json:"files"`
		} `json:"groups"`
		Errors []struct {
			Path  string `json:"path"`
			Error string `json:"error"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if decoded.TotalFiles != 10 || decoded.GroupCount != 1 || decoded.DuplicateCount != 2 {
		t.Errorf("counts = %d/%d/%d, want 10/1/2",
			decoded.TotalFiles, decoded.GroupCount, decoded.DuplicateCount)
	}
	if decoded.WastedBytes != 8192 {
		t.Errorf("wasted_bytes = %d, want 8192", decoded.WastedBytes)
	}
	if len(decoded.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(decoded.Groups))
	}

	g := decoded.Groups[0]
	if g.FileCount != 3 || len(g.Files) != 3 {
		t.Errorf("file counts = %d/%d, want 3/3", g.FileCount, len(g.Files))
	}
	if g.Keep != "/backup/photos/img.jpg" {
		t.Errorf("keep = %q, want the kept member's path", g.Keep)
	}
	if len(g.Digest) != 64 {
		t.Errorf("digest %q is not a full sha256 hex string", g.Digest)
	}
	if len(decoded.Errors) != 1 || decoded.Errors[0].Path != "/locked/dir" {
		t.Errorf("errors = %v, want one entry for /locked/dir", decoded.Errors)
	}
}

func TestReportJSONEmptyGroups(t *testing.T) {
	var buf bytes.Buffer
	result := &scanner.ScanResult{TotalFiles: 2}

	if err := New(&buf, FormatJSON).Report(result); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	// Empty slices serialize as [], not null.
	if !strings.Contains(buf.String(), `"groups": []`) {
		t.Errorf("groups should serialize as an empty array:\n%s", buf.String())
	}
}

// =============================================================================
// YAML Format Tests
// =============================================================================

func TestReportYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, FormatYAML).Report(sampleResult()); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	var decoded struct {
		GroupCount     int `yaml:"group_count"`
		DuplicateCount int `yaml:"duplicate_count"`
		Groups         []struct {
			Keep      string `yaml:"keep"`
			FileCount int    `yaml:"file_count"`
		} `yaml:"groups"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, buf.String())
	}

	if decoded.GroupCount != 1 || decoded.DuplicateCount != 2 {
		t.Errorf("counts = %d/%d, want 1/2", decoded.GroupCount, decoded.DuplicateCount)
	}
	if len(decoded.Groups) != 1 || decoded.Groups[0].Keep != "/backup/photos/img.jpg" {
		t.Errorf("groups = %+v", decoded.Groups)
	}
}

// =============================================================================
// Format Selection Tests
// =============================================================================

func TestReportUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := New(&buf, OutputFormat("csv")).Report(sampleResult())

	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("got %v, want an unsupported-format error", err)
	}
}

// =============================================================================
// File Output Tests
// =============================================================================

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	if err := SaveToFile(sampleResult(), path, FormatJSON); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !json.Valid(data) {
		t.Error("saved report is not valid JSON")
	}
}

func TestSaveToFileBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "report.json")

	if err := SaveToFile(sampleResult(), path, FormatJSON); err == nil {
		t.Error("expected error for unwritable path")
	}
}
