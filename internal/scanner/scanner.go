package scanner

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/Ivan-Ryukendo/FileXSorter/internal/progress"
)

// Sentinel errors returned by Scan. Per-file failures never surface
// here; they are collected into ScanResult.Errors.
var (
	ErrCancelled    = errors.New("scan cancelled")
	ErrNoRoots      = errors.New("no root paths provided")
	ErrNoValidRoots = errors.New("no usable root paths")
)

// Options configures a Scanner
type Options struct {
	Workers         int   // hash worker count, defaults to the CPU count
	MinFileSize     int64 // files below this are ignored (0 keeps zero-byte files)
	MaxFileSize     int64 // files above this are skipped, 0 means no limit
	ExcludePatterns []string
}

// Scanner finds exact duplicate files under a set of root directories.
// A Scanner is safe to reuse; each Scan call runs on its own session
// state.
type Scanner struct {
	opts             Options
	progressReporter *progress.ProgressReporter
}

// New creates a Scanner
func New(opts Options) *Scanner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Workers > 16 {
		opts.Workers = 16 // cap to avoid excessive context switching
	}

	return &Scanner{
		opts:             opts,
		progressReporter: progress.NewProgressReporter(),
	}
}

// SetProgressReporter sets a custom progress reporter
func (s *Scanner) SetProgressReporter(pr *progress.ProgressReporter) {
	s.progressReporter = pr
}

// GetProgressReporter returns the scanner's progress reporter
func (s *Scanner) GetProgressReporter() *progress.ProgressReporter {
	return s.progressReporter
}

// session carries the mutable state of one Scan invocation. Counters
// live here rather than on the Scanner so repeated or concurrent scans
// never share state.
type session struct {
	ctx       context.Context
	opts      Options
	reporter  *progress.ProgressReporter
	startTime time.Time

	entries    []FileEntry
	seen       map[string]struct{} // canonical path -> discovered
	errs       []*ScanError
	totalBytes int64
	validRoots int

	candidates     int
	candidateBytes int64
	hashedFiles    int
	hashedBytes    int64
}

// Scan enumerates the roots, filters by size, hashes candidates in
// parallel and groups the results. Cancel the context to stop early:
// the scan then returns ErrCancelled and no partial result. Per-file
// failures are collected in the result, not returned.
func (s *Scanner) Scan(ctx context.Context, roots []string, recursive bool) (*ScanResult, error) {
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}

	sess := &session{
		ctx:       ctx,
		opts:      s.opts,
		reporter:  s.progressReporter,
		startTime: time.Now(),
		seen:      make(map[string]struct{}),
	}

	sess.reportScan(progress.PhaseEnumerating, "")

	if err := sess.enumerate(normalizeRoots(roots), recursive); err != nil {
		sess.reportScan(progress.PhaseCancelled, "")
		return nil, ErrCancelled
	}
	if sess.validRoots == 0 {
		return nil, ErrNoValidRoots
	}

	// Bucket by size; only sizes with two or more files need hashing
	sess.reportScan(progress.PhaseFiltering, "")
	index := newSizeIndex()
	for i, e := range sess.entries {
		index.add(i, e.Size)
	}
	sess.candidates, sess.candidateBytes = index.stats()

	digests, err := sess.hashCandidates(index)
	if err != nil {
		sess.reportScan(progress.PhaseCancelled, "")
		return nil, ErrCancelled
	}

	sess.reportScan(progress.PhaseGrouping, "")

	// Assemble hashed entries in discovery order. Zero-byte files are
	// identical by definition and share the empty-input digest without
	// ever being opened.
	hashed := make([]HashedEntry, 0, len(digests))
	for i, e := range sess.entries {
		if e.Size == 0 {
			if index.grouped(0) {
				hashed = append(hashed, HashedEntry{FileEntry: e, Digest: EmptyDigest})
			}
			continue
		}
		if d, ok := digests[i]; ok {
			hashed = append(hashed, HashedEntry{FileEntry: e, Digest: d})
		}
	}

	result := &ScanResult{
		Groups:     buildGroups(hashed),
		TotalFiles: len(sess.entries),
		TotalBytes: sess.totalBytes,
		Duration:   time.Since(sess.startTime),
		Errors:     sess.errs,
	}

	sess.reportScan(progress.PhaseComplete, "")
	return result, nil
}

type hashResult struct {
	index  int
	digest Digest
	err    error
}

// hashCandidates digests every size-filter survivor through a bounded
// worker pool. The jobs channel is the bounded handoff between
// candidate selection and the workers; its capacity caps how far the
// producer can run ahead. Results are collected on the calling
// goroutine, which owns the progress counters.
func (s *session) hashCandidates(index *sizeIndex) (map[int]Digest, error) {
	candidateIdx := make([]int, 0, s.candidates)
	for i, e := range s.entries {
		if index.needsHash(e.Size) {
			candidateIdx = append(candidateIdx, i)
		}
	}

	digests := make(map[int]Digest, len(candidateIdx))
	if len(candidateIdx) == 0 {
		return digests, s.ctx.Err()
	}

	s.reportScan(progress.PhaseHashing, "")

	jobs := make(chan int, s.opts.Workers*2)
	results := make(chan hashResult, s.opts.Workers)

	var wg sync.WaitGroup
	for w := 0; w < s.opts.Workers; w++ {
		wg.Add(1)
		go s.hashWorker(jobs, results, &wg)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for _, idx := range candidateIdx {
			select {
			case jobs <- idx:
			case <-s.ctx.Done():
				return
			}
		}
	}()

	for res := range results {
		if res.err != nil {
			// A cancelled hash is not a per-file failure
			if !errors.Is(res.err, context.Canceled) && !errors.Is(res.err, context.DeadlineExceeded) {
				s.recordError(s.entries[res.index].Path, res.err)
			}
			continue
		}

		digests[res.index] = res.digest
		s.hashedFiles++
		s.hashedBytes += s.entries[res.index].Size
		s.reportScan(progress.PhaseHashing, s.entries[res.index].Path)
	}

	return digests, s.ctx.Err()
}

// hashWorker consumes entry indexes until the jobs channel closes.
// After cancellation it keeps draining so the producer never blocks,
// but performs no further I/O.
func (s *session) hashWorker(jobs <-chan int, results chan<- hashResult, wg *sync.WaitGroup) {
	defer wg.Done()

	buf := make([]byte, hashChunkSize)
	for idx := range jobs {
		if s.ctx.Err() != nil {
			continue
		}

		digest, err := hashFile(s.ctx, s.entries[idx].Path, buf)
		results <- hashResult{index: idx, digest: digest, err: err}
	}
}

// recordError collects a per-file failure without aborting the scan
func (s *session) recordError(path string, err error) {
	s.errs = append(s.errs, &ScanError{Path: path, Err: err})
}

// reportScan publishes the session's counters to the reporter, which
// rate-limits what listeners actually see.
func (s *session) reportScan(phase progress.Phase, currentPath string) {
	if s.reporter == nil {
		return
	}

	s.reporter.UpdateScanProgress(&progress.ScanProgress{
		Phase:          phase,
		CurrentPath:    currentPath,
		FilesSeen:      len(s.entries),
		TotalBytes:     s.totalBytes,
		Candidates:     s.candidates,
		CandidateBytes: s.candidateBytes,
		HashedFiles:    s.hashedFiles,
		HashedBytes:    s.hashedBytes,
		StartTime:      s.startTime,
	})
}
