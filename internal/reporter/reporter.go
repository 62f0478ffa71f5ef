package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/scanner"
	"github.com/Ivan-Ryukendo/FileXSorter/pkg/utils"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatSummary OutputFormat = "summary"
)

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
	}
}

// Report generates a report from scan results
func (r *Reporter) Report(result *scanner.ScanResult) error {
	switch r.format {
	case FormatTable:
		return r.reportTable(result)
	case FormatJSON:
		return r.reportJSON(result)
	case FormatYAML:
		return r.reportYAML(result)
	case FormatSummary:
		return r.reportSummary(result)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// reportSummary generates a summary report
func (r *Reporter) reportSummary(result *scanner.ScanResult) error {
	fmt.Fprintf(r.writer, "=== Duplicate Scan Summary ===\n")
	fmt.Fprintf(r.writer, "Files Examined: %d\n", result.TotalFiles)
	fmt.Fprintf(r.writer, "Data Examined: %s\n", utils.FormatBytes(result.TotalBytes))
	fmt.Fprintf(r.writer, "Duplicate Groups: %d\n", len(result.Groups))
	fmt.Fprintf(r.writer, "Redundant Copies: %d\n", result.DuplicateCount())
	fmt.Fprintf(r.writer, "Wasted Space: %s\n", utils.FormatBytes(result.WastedBytes()))
	fmt.Fprintf(r.writer, "Scan Time: %s\n", result.Duration.Round(time.Millisecond))

	if len(result.Errors) > 0 {
		fmt.Fprintf(r.writer, "\nErrors: %d\n", len(result.Errors))
	}

	return nil
}

// reportTable generates a table report, one section per duplicate group
func (r *Reporter) reportTable(result *scanner.ScanResult) error {
	separator := strings.Repeat("-", 100)

	for i, group := range result.Groups {
		fmt.Fprintf(r.writer, "Group %d: %d files x %s, %s wasted [%s]\n",
			i+1,
			len(group.Files),
			utils.FormatBytes(group.Size),
			utils.FormatBytes(group.WastedBytes),
			group.Digest.Short())

		for j, file := range group.Files {
			marker := " "
			if j == group.Keep {
				marker = "*"
			}

			path := file.Path
			if len(path) > 70 {
				path = "..." + path[len(path)-67:]
			}

			fmt.Fprintf(r.writer, "  %s %-70s %s\n",
				marker,
				path,
				file.ModTime.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintln(r.writer)
	}

	fmt.Fprintf(r.writer, "%s\n", separator)
	fmt.Fprintf(r.writer, "Total: %d groups, %d redundant copies, %s wasted (scanned %d files, %s)\n",
		len(result.Groups),
		result.DuplicateCount(),
		utils.FormatBytes(result.WastedBytes()),
		result.TotalFiles,
		utils.FormatBytes(result.TotalBytes))

	if len(result.Errors) > 0 {
		fmt.Fprintf(r.writer, "\nWarnings (%d paths skipped):\n", len(result.Errors))
		for _, scanErr := range result.Errors {
			fmt.Fprintf(r.writer, "  %s: %v\n", scanErr.Path, scanErr.Err)
		}
	}

	return nil
}

// groupView is the serializable form of a duplicate group
type groupView struct {
	Digest          string     `json:"digest" yaml:"digest"`
	FileCount       int        `json:"file_count" yaml:"file_count"`
	Size            int64      `json:"size" yaml:"size"`
	SizeFormatted   string     `json:"size_formatted" yaml:"size_formatted"`
	WastedBytes     int64      `json:"wasted_bytes" yaml:"wasted_bytes"`
	WastedFormatted string     `json:"wasted_formatted" yaml:"wasted_formatted"`
	Keep            string     `json:"keep" yaml:"keep"`
	Files           []fileView `json:"files" yaml:"files"`
}

// fileView is the serializable form of a group member
type fileView struct {
	Path    string `json:"path" yaml:"path"`
	ModTime string `json:"mod_time" yaml:"mod_time"`
}

// errorView is the serializable form of a scan error
type errorView struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

func buildGroupViews(result *scanner.ScanResult) []groupView {
	views := make([]groupView, 0, len(result.Groups))
	for _, group := range result.Groups {
		view := groupView{
			Digest:          group.Digest.String(),
			FileCount:       len(group.Files),
			Size:            group.Size,
			SizeFormatted:   utils.FormatBytes(group.Size),
			WastedBytes:     group.WastedBytes,
			WastedFormatted: utils.FormatBytes(group.WastedBytes),
			Keep:            group.Files[group.Keep].Path,
			Files:           make([]fileView, 0, len(group.Files)),
		}
		for _, file := range group.Files {
			view.Files = append(view.Files, fileView{
				Path:    file.Path,
				ModTime: file.ModTime.Format(time.RFC3339),
			})
		}
		views = append(views, view)
	}
	return views
}

func buildErrorViews(result *scanner.ScanResult) []errorView {
	views := make([]errorView, 0, len(result.Errors))
	for _, scanErr := range result.Errors {
		views = append(views, errorView{
			Path:  scanErr.Path,
			Error: scanErr.Err.Error(),
		})
	}
	return views
}

// reportJSON generates a JSON report
func (r *Reporter) reportJSON(result *scanner.ScanResult) error {
	report := struct {
		Timestamp       string      `json:"timestamp"`
		TotalFiles      int         `json:"total_files"`
		TotalBytes      int64       `json:"total_bytes"`
		GroupCount      int         `json:"group_count"`
		DuplicateCount  int         `json:"duplicate_count"`
		WastedBytes     int64       `json:"wasted_bytes"`
		WastedFormatted string      `json:"wasted_formatted"`
		DurationSeconds float64     `json:"duration_seconds"`
		Groups          []groupView `json:"groups"`
		Errors          []errorView `json:"errors"`
	}{
		Timestamp:       time.Now().Format(time.RFC3339),
		TotalFiles:      result.TotalFiles,
		TotalBytes:      result.TotalBytes,
		GroupCount:      len(result.Groups),
		DuplicateCount:  result.DuplicateCount(),
		WastedBytes:     result.WastedBytes(),
		WastedFormatted: utils.FormatBytes(result.WastedBytes()),
		DurationSeconds: result.Duration.Seconds(),
		Groups:          buildGroupViews(result),
		Errors:          buildErrorViews(result),
	}

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// reportYAML generates a YAML report
func (r *Reporter) reportYAML(result *scanner.ScanResult) error {
	report := struct {
		Timestamp       string      `yaml:"timestamp"`
		TotalFiles      int         `yaml:"total_files"`
		TotalBytes      int64       `yaml:"total_bytes"`
		GroupCount      int         `yaml:"group_count"`
		DuplicateCount  int         `yaml:"duplicate_count"`
		WastedBytes     int64       `yaml:"wasted_bytes"`
		WastedFormatted string      `yaml:"wasted_formatted"`
		DurationSeconds float64     `yaml:"duration_seconds"`
		Groups          []groupView `yaml:"groups"`
		Errors          []errorView `yaml:"errors"`
	}{
		Timestamp:       time.Now().Format(time.RFC3339),
		TotalFiles:      result.TotalFiles,
		TotalBytes:      result.TotalBytes,
		GroupCount:      len(result.Groups),
		DuplicateCount:  result.DuplicateCount(),
		WastedBytes:     result.WastedBytes(),
		WastedFormatted: utils.FormatBytes(result.WastedBytes()),
		DurationSeconds: result.Duration.Seconds(),
		Groups:          buildGroupViews(result),
		Errors:          buildErrorViews(result),
	}

	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(report)
}

// SaveToFile saves the report to a file
func SaveToFile(result *scanner.ScanResult, path string, format OutputFormat) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reporter := New(file, format)
	return reporter.Report(result)
}
