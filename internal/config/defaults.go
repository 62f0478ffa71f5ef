package config

// GetDefault returns the default configuration
func GetDefault() *Config {
	return &Config{
		Scan: ScanConfig{
			Recursive:       false, // Top-level entries only unless opted in
			Workers:         0,     // Auto-size to CPU count
			MinFileSize:     "0B",  // Zero-byte files still group as duplicates
			MaxFileSize:     "10GB",
			ExcludePatterns: []string{},
			DefaultRoots:    []string{},
		},
		Output: OutputConfig{
			Format: "table",
			Color:  true,
		},
		UI: UIConfig{
			PageSize:      10,
			ConfirmDelete: true,
			ConfirmMove:   true,
		},
	}
}

// GetExampleConfig returns an example configuration with comments
func GetExampleConfig() string {
	return `# FileXSorter Configuration File
# This file controls how duplicate scans run and how results are shown
# Location: ~/.config/filexsorter/config.yaml

# Scan behavior
scan:
  # Descend into subdirectories. When false only the top-level entries
  # of each chosen root are examined.
  recursive: false

  # Number of parallel hashing workers. 0 means one per CPU core
  # (capped at 16).
  workers: 0

  # Ignore files smaller than this. "0B" keeps zero-byte files, which
  # are grouped as duplicates of each other without hashing.
  min_file_size: "0B"

  # Skip files larger than this (safety measure against huge media
  # files dominating a scan). Set to "0B" for no limit.
  max_file_size: "10GB"

  # Glob patterns to skip. Matched against the full path and the
  # base name of every file and directory.
  exclude_patterns: []
  #  - "*.tmp"
  #  - "*/node_modules/*"
  #  - ".git"

  # Roots scanned when none are given on the command line. Must be
  # absolute paths. Empty means the common user folders (Downloads,
  # Documents, Desktop, Pictures) that exist on this machine.
  default_roots: []
  #  - "/home/user/Downloads"

# Report output
output:
  # One of: table, json, yaml, summary
  format: "table"
  color: true

# Interactive mode
ui:
  # Duplicate groups shown per page in the browser
  page_size: 10

  # Ask before applying deletes / moves
  confirm_delete: true
  confirm_move: true
`
}
