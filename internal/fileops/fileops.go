package fileops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/platform"
	"github.com/Ivan-Ryukendo/FileXSorter/internal/progress"
)

const (
	actionDelete = "delete"
	actionMove   = "move"

	// maxNameAttempts bounds the collision-suffix search when moving
	// into a directory that already holds same-named files
	maxNameAttempts = 10000
)

var (
	errDestinationRequired    = errors.New("destination required")
	errDestinationNotDir      = errors.New("destination is not a directory")
	errDestinationNotWritable = errors.New("destination is not writable")
	errSameDirectory          = errors.New("file is already in the destination directory")
	errIsDirectory            = errors.New("target is a directory, not a file")
)

// Outcome is the per-target result of Delete or Move. A nil Err means
// the target was fully processed; otherwise it was left untouched
// (moves never lose the source on partial failure).
type Outcome struct {
	Path    string
	NewPath string // where the file landed, moves only
	Err     *OpError
}

// Succeeded reports whether the target was processed
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// FailedOutcomes filters outcomes down to the failures
func FailedOutcomes(outcomes []Outcome) []*OpError {
	failed := make([]*OpError, 0)
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o.Err)
		}
	}
	return failed
}

// Operator executes delete and move actions on caller-selected files.
// Targets are processed sequentially and independently; one failure
// never blocks the remaining targets. Confirmation is the caller's
// responsibility, the Operator acts unconditionally.
type Operator struct {
	progressReporter *progress.ProgressReporter
}

// New creates a new Operator
func New() *Operator {
	return &Operator{
		progressReporter: progress.NewProgressReporter(),
	}
}

// SetProgressReporter sets a custom progress reporter
func (op *Operator) SetProgressReporter(pr *progress.ProgressReporter) {
	op.progressReporter = pr
}

// GetProgressReporter returns the operator's progress reporter
func (op *Operator) GetProgressReporter() *progress.ProgressReporter {
	return op.progressReporter
}

// Delete removes each target file
func (op *Operator) Delete(targets []string) []Outcome {
	outcomes := make([]Outcome, 0, len(targets))
	startTime := time.Now()
	var done, failed int
	var bytes int64

	op.reportApply(progress.PhaseApplying, actionDelete, "", done, len(targets), bytes, failed, startTime)

	for _, path := range targets {
		outcome, size := deleteOne(path)
		outcomes = append(outcomes, outcome)
		if outcome.Succeeded() {
			done++
			bytes += size
		} else {
			failed++
		}
		op.reportApply(progress.PhaseApplying, actionDelete, path, done, len(targets), bytes, failed, startTime)
	}

	op.reportApply(progress.PhaseComplete, actionDelete, "", done, len(targets), bytes, failed, startTime)
	return outcomes
}

// Move relocates each target into the destination directory. The
// destination is validated once up front; when it is unusable, every
// target fails with InvalidDestination and no file is touched.
func (op *Operator) Move(targets []string, destination string) []Outcome {
	outcomes := make([]Outcome, 0, len(targets))
	startTime := time.Now()
	var done, failed int
	var bytes int64

	destDir, destErr := validateDestination(destination)
	if destErr != nil {
		for _, path := range targets {
			outcomes = append(outcomes, Outcome{
				Path: path,
				Err:  &OpError{Path: path, Reason: ReasonInvalidDestination, Original: destErr},
			})
		}
		return outcomes
	}

	op.reportApply(progress.PhaseApplying, actionMove, "", done, len(targets), bytes, failed, startTime)

	for _, path := range targets {
		outcome, size := moveOne(path, destDir)
		outcomes = append(outcomes, outcome)
		if outcome.Succeeded() {
			done++
			bytes += size
		} else {
			failed++
		}
		op.reportApply(progress.PhaseApplying, actionMove, path, done, len(targets), bytes, failed, startTime)
	}

	op.reportApply(progress.PhaseComplete, actionMove, "", done, len(targets), bytes, failed, startTime)
	return outcomes
}

// deleteOne removes a single file, returning its size for accounting
func deleteOne(path string) (Outcome, int64) {
	info, err := os.Lstat(path)
	if err != nil {
		return Outcome{Path: path, Err: Categorize(path, err)}, 0
	}
	if info.IsDir() {
		return Outcome{Path: path, Err: &OpError{Path: path, Reason: ReasonIO, Original: errIsDirectory}}, 0
	}

	if err := os.Remove(path); err != nil {
		return Outcome{Path: path, Err: Categorize(path, err)}, 0
	}

	return Outcome{Path: path}, info.Size()
}

// moveOne relocates a single file into destDir. Rename is tried first;
// across filesystem boundaries it falls back to copy-then-delete. The
// source survives any partial failure.
func moveOne(source, destDir string) (Outcome, int64) {
	info, err := os.Lstat(source)
	if err != nil {
		return Outcome{Path: source, Err: Categorize(source, err)}, 0
	}
	if info.IsDir() {
		return Outcome{Path: source, Err: &OpError{Path: source, Reason: ReasonIO, Original: errIsDirectory}}, 0
	}

	// Moving a file onto its own directory is reported, never silently
	// skipped
	if sameDirectory(filepath.Dir(source), destDir) {
		return Outcome{Path: source, Err: &OpError{Path: source, Reason: ReasonInvalidDestination, Original: errSameDirectory}}, 0
	}

	target, err := uniqueDestination(destDir, filepath.Base(source))
	if err != nil {
		return Outcome{Path: source, Err: &OpError{Path: source, Reason: ReasonInvalidDestination, Original: err}}, 0
	}

	if err := os.Rename(source, target); err != nil {
		if !errors.Is(err, syscall.EXDEV) {
			return Outcome{Path: source, Err: Categorize(source, err)}, 0
		}

		// Cross-device move: copy first, delete the source only once
		// the copy is complete
		if err := copyFileContents(source, target, info); err != nil {
			return Outcome{Path: source, Err: Categorize(source, err)}, 0
		}
		if err := os.Remove(source); err != nil {
			// The source would not go away; remove the fresh copy so
			// exactly one instance remains
			os.Remove(target)
			return Outcome{Path: source, Err: Categorize(source, err)}, 0
		}
	}

	return Outcome{Path: source, NewPath: target}, info.Size()
}

// validateDestination checks the move destination once for the whole
// batch: it must exist, be a directory and be writable.
func validateDestination(destination string) (string, error) {
	if destination == "" {
		return "", errDestinationRequired
	}

	abs, err := filepath.Abs(destination)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", errDestinationNotDir
	}
	if !platform.Writable(abs) {
		return "", errDestinationNotWritable
	}

	return abs, nil
}

// sameDirectory reports whether two directory paths refer to the same
// canonical directory, seeing through symlinked spellings.
func sameDirectory(a, b string) bool {
	ca, err := filepath.EvalSymlinks(a)
	if err != nil {
		ca = filepath.Clean(a)
	}
	cb, err := filepath.EvalSymlinks(b)
	if err != nil {
		cb = filepath.Clean(b)
	}
	return ca == cb
}

// uniqueDestination returns destDir/name, suffixing the stem with _1,
// _2, ... while the name is already taken.
func uniqueDestination(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	if !exists(target) {
		return target, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; i <= maxNameAttempts; i++ {
		candidate := filepath.Join(destDir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if !exists(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no free name for %s after %d attempts", name, maxNameAttempts)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// copyFileContents copies source to target, refusing to overwrite and
// cleaning up the partial target on failure. The source is never
// modified.
func copyFileContents(source, target string, info os.FileInfo) error {
	input, err := os.Open(source)
	if err != nil {
		return err
	}
	defer input.Close()

	output, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(output, input); err != nil {
		output.Close()
		os.Remove(target)
		return err
	}
	if err := output.Close(); err != nil {
		os.Remove(target)
		return err
	}

	os.Chtimes(target, time.Now(), info.ModTime())
	return nil
}

// reportApply publishes apply progress to listeners
func (op *Operator) reportApply(phase progress.Phase, action, currentPath string, done, total int, bytes int64, failed int, startTime time.Time) {
	if op.progressReporter == nil {
		return
	}

	op.progressReporter.UpdateApplyProgress(&progress.ApplyProgress{
		Phase:          phase,
		Action:         action,
		CurrentPath:    currentPath,
		Done:           done,
		Total:          total,
		BytesProcessed: bytes,
		Failed:         failed,
		StartTime:      startTime,
	})
}
