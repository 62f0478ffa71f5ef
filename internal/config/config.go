package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/scanner"
	"github.com/Ivan-Ryukendo/FileXSorter/pkg/utils"
)

// Config represents the application configuration
type Config struct {
	Scan   ScanConfig   `yaml:"scan"`
	Output OutputConfig `yaml:"output"`
	UI     UIConfig     `yaml:"ui"`
}

// ScanConfig controls how the duplicate scan walks and filters files
type ScanConfig struct {
	Recursive       bool     `yaml:"recursive"`
	Workers         int      `yaml:"workers"` // 0 = one per CPU, capped
	MinFileSize     string   `yaml:"min_file_size"` // e.g., "1KB"
	MaxFileSize     string   `yaml:"max_file_size"` // e.g., "10GB"
	ExcludePatterns []string `yaml:"exclude_patterns"`
	DefaultRoots    []string `yaml:"default_roots"`
}

// OutputConfig controls how scan reports are rendered
type OutputConfig struct {
	Format string `yaml:"format"` // table, json, yaml, summary
	Color  bool   `yaml:"color"`
}

// UIConfig holds interactive-mode settings
type UIConfig struct {
	PageSize      int  `yaml:"page_size"`
	ConfirmDelete bool `yaml:"confirm_delete"`
	ConfirmMove   bool `yaml:"confirm_move"`
}

// Load loads configuration from a file
func Load(configPath string) (*Config, error) {
	// If config doesn't exist, return default config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefault(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Save saves configuration to a file
func Save(config *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Scan.Workers < 0 {
		return fmt.Errorf("scan workers must be >= 0")
	}

	minSize, err := utils.ParseSize(c.Scan.MinFileSize)
	if err != nil {
		return fmt.Errorf("invalid min_file_size '%s': %w", c.Scan.MinFileSize, err)
	}
	maxSize, err := utils.ParseSize(c.Scan.MaxFileSize)
	if err != nil {
		return fmt.Errorf("invalid max_file_size '%s': %w", c.Scan.MaxFileSize, err)
	}
	if maxSize > 0 && minSize > maxSize {
		return fmt.Errorf("min_file_size must not exceed max_file_size")
	}

	// Validate exclude patterns (glob syntax)
	for _, pattern := range c.Scan.ExcludePatterns {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	// Validate default roots are absolute
	for _, root := range c.Scan.DefaultRoots {
		if !filepath.IsAbs(root) {
			return fmt.Errorf("default root must be absolute: %s", root)
		}
	}

	switch c.Output.Format {
	case "table", "json", "yaml", "summary":
	default:
		return fmt.Errorf("invalid output format '%s' (must be table, json, yaml, or summary)", c.Output.Format)
	}

	if c.UI.PageSize < 1 {
		return fmt.Errorf("page size must be >= 1")
	}

	return nil
}

// ScannerOptions translates the configuration into scan options,
// parsing the human-readable size limits.
func (c *Config) ScannerOptions() (scanner.Options, error) {
	minSize, err := utils.ParseSize(c.Scan.MinFileSize)
	if err != nil {
		return scanner.Options{}, fmt.Errorf("invalid min_file_size '%s': %w", c.Scan.MinFileSize, err)
	}
	maxSize, err := utils.ParseSize(c.Scan.MaxFileSize)
	if err != nil {
		return scanner.Options{}, fmt.Errorf("invalid max_file_size '%s': %w", c.Scan.MaxFileSize, err)
	}

	return scanner.Options{
		Workers:         c.Scan.Workers,
		MinFileSize:     minSize,
		MaxFileSize:     maxSize,
		ExcludePatterns: c.Scan.ExcludePatterns,
	}, nil
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(homeDir, ".config", "filexsorter")
	return filepath.Join(configDir, "config.yaml"), nil
}

// EnsureConfigExists creates a default config file if it doesn't exist
func EnsureConfigExists() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	// Check if config exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Create default config
		defaultConfig := GetDefault()
		if err := Save(defaultConfig, configPath); err != nil {
			return "", err
		}
	}

	return configPath, nil
}
