package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/config"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/fileops"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/platform"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/reporter"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/scanner"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/ui"
	"github.com/Ivan-Ryukendo/FileXSorter/pkg/utils"
)

var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	configPath  string
	verbose     bool
	recursive   bool
	workers     int
	minSize     string
	maxSize     string
	excludes    []string
	outputFmt   string
	outputFile  string
	noProgress  bool
	force       bool
	destination string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "filexsorter [roots...]",
	Short: "Find and clean up duplicate files",
	Long: `FileXSorter locates exact duplicate files across one or more directory
trees and helps you delete or relocate the redundant copies. Run without a
subcommand to start the interactive browser; use 'scan' for scriptable output.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	Args:    cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyScanFlags(cmd, cfg)

		return ui.RunInteractive(cfg, resolveRoots(args, cfg))
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [roots...]",
	Short: "Scan directories and report duplicate files",
	Long: `Scans the given directories (or the configured defaults) and prints the
duplicate groups it finds, largest reclaimable space first. Makes no changes.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyScanFlags(cmd, cfg)

		roots := resolveRoots(args, cfg)
		if len(roots) == 0 {
			return fmt.Errorf("no directories to scan: pass roots as arguments or set default_roots in the config")
		}

		opts, err := cfg.ScannerOptions()
		if err != nil {
			return err
		}
		scnr := scanner.New(opts)

		// Ctrl+C turns into a context cancellation so the scan shuts
		// down through its normal cooperative path
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			sigC := make(chan os.Signal, 1)
			signal.Notify(sigC, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigC)
			select {
			case <-ctx.Done():
			case sig := <-sigC:
				slog.Warn("received signal, stopping scan", "signal", sig.String())
				cancel()
			}
		}()

		var live *ui.LiveProgress
		if !noProgress {
			live = ui.NewLiveProgress()
			live.Watch(scnr.GetProgressReporter())
		}

		slog.Debug("starting scan", "roots", roots, "recursive", cfg.Scan.Recursive, "workers", opts.Workers)
		result, err := scnr.Scan(ctx, roots, cfg.Scan.Recursive)
		if live != nil {
			live.Stop()
		}
		if err == scanner.ErrCancelled {
			fmt.Println("Scan cancelled; no results to report.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		format := reporter.OutputFormat(cfg.Output.Format)
		if outputFile != "" {
			if err := reporter.SaveToFile(result, outputFile, format); err != nil {
				return fmt.Errorf("failed to save report: %w", err)
			}
			fmt.Printf("Report saved to: %s\n", outputFile)
			return nil
		}

		rptr := reporter.New(os.Stdout, format)
		if err := rptr.Report(result); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <file>...",
	Short: "Delete the given files",
	Long: `Deletes each listed file, continuing past individual failures. Intended
for the redundant copies reported by 'scan'; asks for confirmation first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := args
		if !force {
			fmt.Printf("Delete %d file(s)? This cannot be undone. (y/N): ", len(targets))
			var response string
			fmt.Scanln(&response)
			if response != "y" && response != "Y" {
				fmt.Println("Delete cancelled")
				return nil
			}
		}

		op := fileops.New()
		outcomes := op.Delete(targets)
		printOutcomes("Deleted", outcomes, op)
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move --dest <dir> <file>...",
	Short: "Move the given files into a destination directory",
	Long: `Moves each listed file into the destination directory, renaming on
collision (name_1.ext, name_2.ext, ...). The destination must be an existing
writable directory; moving a file into its own directory is refused.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := args
		if !force {
			fmt.Printf("Move %d file(s) to %s? (y/N): ", len(targets), destination)
			var response string
			fmt.Scanln(&response)
			if response != "y" && response != "Y" {
				fmt.Println("Move cancelled")
				return nil
			}
		}

		op := fileops.New()
		outcomes := op.Move(targets, destination)
		printOutcomes("Moved", outcomes, op)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, err := activeConfigPath()
		if err != nil {
			return err
		}
		fmt.Printf("Config file: %s\n", cfgPath)
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			fmt.Println("(file does not exist; showing built-in defaults — run 'filexsorter config init' to create it)")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}
		fmt.Printf("\n%s", data)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, err := activeConfigPath()
		if err != nil {
			return err
		}

		if _, err := os.Stat(cfgPath); err == nil && !force {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", cfgPath)
		}

		if err := os.MkdirAll(filepath.Dir(cfgPath), 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := os.WriteFile(cfgPath, []byte(config.GetExampleConfig()), 0644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		fmt.Printf("Wrote default config to %s\n", cfgPath)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose diagnostics on stderr")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	// Scan settings are shared by the root (interactive) and scan commands
	for _, cmd := range []*cobra.Command{rootCmd, scanCmd} {
		cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into subdirectories")
		cmd.Flags().IntVar(&workers, "workers", 0, "parallel hash workers (0 = one per CPU)")
		cmd.Flags().StringVar(&minSize, "min-size", "", "ignore files smaller than this (e.g. 1KB)")
		cmd.Flags().StringVar(&maxSize, "max-size", "", "skip files larger than this (e.g. 10GB)")
		cmd.Flags().StringSliceVar(&excludes, "exclude", nil, "glob patterns to skip (repeatable)")
	}

	scanCmd.Flags().StringVar(&outputFmt, "output", "", "output format (summary, table, json, yaml)")
	scanCmd.Flags().StringVar(&outputFile, "file", "", "save report to file")
	scanCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the live progress display")

	deleteCmd.Flags().BoolVar(&force, "force", false, "skip the confirmation prompt")

	moveCmd.Flags().StringVar(&destination, "dest", "", "destination directory (required)")
	moveCmd.Flags().BoolVar(&force, "force", false, "skip the confirmation prompt")
	moveCmd.MarkFlagRequired("dest")

	configInitCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig() (*config.Config, error) {
	cfgPath, err := activeConfigPath()
	if err != nil {
		return nil, err
	}
	slog.Debug("loading config", "path", cfgPath)
	return config.Load(cfgPath)
}

func activeConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

// applyScanFlags overrides loaded config values with flags the user
// actually set on the command line.
func applyScanFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("recursive") {
		cfg.Scan.Recursive = recursive
	}
	if cmd.Flags().Changed("workers") {
		cfg.Scan.Workers = workers
	}
	if cmd.Flags().Changed("min-size") {
		cfg.Scan.MinFileSize = minSize
	}
	if cmd.Flags().Changed("max-size") {
		cfg.Scan.MaxFileSize = maxSize
	}
	if cmd.Flags().Changed("exclude") {
		cfg.Scan.ExcludePatterns = excludes
	}
	if cmd.Flags().Changed("output") && outputFmt != "" {
		cfg.Output.Format = outputFmt
	}
}

// resolveRoots picks the directories to scan: explicit arguments win,
// then configured defaults, then the common user folders that exist on
// this machine.
func resolveRoots(args []string, cfg *config.Config) []string {
	if len(args) > 0 {
		return args
	}
	if len(cfg.Scan.DefaultRoots) > 0 {
		return cfg.Scan.DefaultRoots
	}
	return platform.DefaultScanRoots()
}

// printOutcomes summarizes per-target results of a delete or move
func printOutcomes(verb string, outcomes []fileops.Outcome, op *fileops.Operator) {
	var succeeded int
	for _, o := range outcomes {
		if o.Succeeded() {
			succeeded++
			if o.NewPath != "" {
				slog.Debug("moved", "from", o.Path, "to", o.NewPath)
			}
		}
	}

	var bytes int64
	if p := op.GetProgressReporter().GetApplyProgress(); p != nil {
		bytes = p.BytesProcessed
	}

	fmt.Printf("%s %d of %d file(s) (%s)\n", verb, succeeded, len(outcomes), utils.FormatBytes(bytes))

	failed := fileops.FailedOutcomes(outcomes)
	if len(failed) > 0 {
		fmt.Print(fileops.FormatErrorSummary(failed))
		for _, opErr := range failed {
			fmt.Println("  " + opErr.UserMessage())
		}
	}
}
