// Package executor implements the job executor (C4): the component that
// drives a single job from pending to a terminal state, honoring
// pause/cancel, dispatching analyzer drivers within a concurrency bound,
// and aggregating their output onto the job under its guard.
package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/reviewforge/reviewforge/internal/analyzer"
	"github.com/reviewforge/reviewforge/internal/classify"
	"github.com/reviewforge/reviewforge/internal/issue"
	"github.com/reviewforge/reviewforge/internal/job"
	"github.com/reviewforge/reviewforge/internal/reverr"
)

// DefaultConcurrency is the default bound on simultaneously running
// analyzer subprocesses (§5 recommends 2-3).
const DefaultConcurrency = 3

// defaultBatchMultiplier bounds the default per-analyzer batch size to a
// small multiple of NumCPU, per §4.4's dispatch policy.
const defaultBatchMultiplier = 4

// Metrics is the subset of observability instrumentation the executor
// records against. Implementations must tolerate a nil receiver (the
// observability package's AnalysisMetrics does).
type Metrics interface {
	RecordRun(ctx context.Context, stats AnalysisStats)
}

// Cache is the subset of an analyzer-result cache the executor consults to
// skip re-invoking a driver over file content it has already analyzed (§6
// "Persisted state" extension point). Keyed by analyzer name plus raw file
// content, never by file path, so an unchanged file hits the cache under a
// rename. A nil Cache (the default) disables caching entirely.
type Cache interface {
	Get(analyzer string, content []byte) ([]issue.Issue, bool)
	Put(analyzer string, content []byte, issues []issue.Issue)
}

// AnalysisStats mirrors observability.AnalysisStats without the executor
// package depending on observability directly, keeping the dependency
// pointed the conventional way (ambient concern depends on core, not
// vice versa). Callers adapt with a small shim; see pkg/observability.
type AnalysisStats struct {
	State         string
	WorkUnits     int64
	UnitDurations []time.Duration
	CacheHits     int64
	CacheMisses   int64
}

// Options configures one Executor.
type Options struct {
	// Concurrency bounds simultaneously running analyzer subprocesses.
	// Zero uses DefaultConcurrency.
	Concurrency int

	// BatchSize bounds how many files are handed to one driver invocation.
	// Zero uses runtime.NumCPU() * defaultBatchMultiplier.
	BatchSize int

	// Metrics records per-run statistics; nil disables recording.
	Metrics Metrics

	// Cache, when set, lets the executor skip re-invoking a driver over
	// file content it has already analyzed.
	Cache Cache
}

// Executor drives jobs against a fixed set of analyzer drivers.
type Executor struct {
	descriptors map[string]analyzer.Descriptor
	drivers     map[string]analyzer.Driver
	opts        Options
}

// New constructs an Executor. descriptors and drivers must share the same
// key set (analyzer name).
func New(descriptors map[string]analyzer.Descriptor, drivers map[string]analyzer.Driver, opts Options) *Executor {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = runtime.NumCPU() * defaultBatchMultiplier
	}

	return &Executor{descriptors: descriptors, drivers: drivers, opts: opts}
}

// Descriptors returns the descriptor for each known analyzer name, for
// validation at job-creation time.
func (e *Executor) Descriptors() map[string]analyzer.Descriptor {
	return e.descriptors
}

// unit is one planned (file, analyzer) pair.
type unit struct {
	file     string
	analyzer string
}

// Run drives j from pending to a terminal state. It returns once the job
// is terminal; control operations against ctrl affect the run while it is
// in flight.
func (e *Executor) Run(ctx context.Context, j *job.Job, ctrl *Control) error {
	plan, warnings, err := e.plan(j.Input)
	if err != nil {
		j.Fail(err.Error(), time.Now())

		return fmt.Errorf("%w: %s", reverr.ErrJobFailed, err.Error())
	}

	for _, w := range warnings {
		j.AddWarning(w)
	}

	started := time.Now()
	j.SetPlan(classify.CountUnits(fileList(plan), e.enabledDescriptors(j.Input.Analyzers)), started)

	if !j.Transition(job.StateRunning, started) {
		return fmt.Errorf("%w: job not in pending state", reverr.ErrIllegalState)
	}

	chains := e.buildBatches(plan)

	stats := &runStats{}

	cancelled := e.dispatch(ctx, j, ctrl, chains, stats)

	// dispatch only inspects the control signal between batches, so a pause
	// latched against the last in-flight batch of every chain is never
	// observed there: every dispatch goroutine simply runs out of batches
	// and returns. Wait here, immediately before the terminal transition,
	// so that straddling pause is honored rather than silently dropped
	// (the job would otherwise sit in "paused" while the executor tries an
	// illegal paused->completed edge and gives up).
	ctrl.WaitIfPaused()
	cancelled = cancelled || ctrl.Cancelled()

	now := time.Now()

	finalState := job.StateCompleted
	if cancelled {
		finalState = job.StateCancelled
	}

	j.Transition(finalState, now)

	e.recordMetrics(ctx, j, finalState, stats)

	return nil
}

// runStats accumulates cross-batch statistics fed into the observability
// Metrics recorder at job completion. Batches run concurrently (bounded by
// Options.Concurrency), so durations are appended under a mutex; the cache
// counters are plain atomics.
type runStats struct {
	mu          sync.Mutex
	durations   []time.Duration
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

func (s *runStats) recordDuration(d time.Duration) {
	s.mu.Lock()
	s.durations = append(s.durations, d)
	s.mu.Unlock()
}

func (s *runStats) snapshotDurations() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]time.Duration(nil), s.durations...)
}

// plan validates the project root, filters out nonexistent files (with a
// warning each), and groups the remaining files by eligible analyzer in
// submission order.
func (e *Executor) plan(in job.Input) (map[string][]string, []analyzer.Warning, error) {
	info, err := os.Stat(in.ProjectRoot)
	if err != nil || !info.IsDir() {
		return nil, nil, fmt.Errorf("project root %q is not a readable directory", in.ProjectRoot)
	}

	enabled := e.enabledDescriptors(in.Analyzers)

	grouped := make(map[string][]string)

	var warnings []analyzer.Warning

	for _, f := range in.Files {
		if _, err := os.Stat(filepath.Join(in.ProjectRoot, f)); err != nil {
			warnings = append(warnings, analyzer.Warning{Analyzer: "executor", File: f, Message: "file not found, skipped"})
			continue
		}

		for _, d := range classify.Classify(f, enabled) {
			grouped[d.Name] = append(grouped[d.Name], f)
		}
	}

	return grouped, warnings, nil
}

func (e *Executor) enabledDescriptors(names []string) []analyzer.Descriptor {
	out := make([]analyzer.Descriptor, 0, len(names))

	for _, n := range names {
		if d, ok := e.descriptors[n]; ok {
			out = append(out, d)
		}
	}

	return out
}

func fileList(grouped map[string][]string) []string {
	seen := make(map[string]bool)

	var files []string

	for _, fs := range grouped {
		for _, f := range fs {
			if !seen[f] {
				seen[f] = true

				files = append(files, f)
			}
		}
	}

	return files
}

// analyzerBatch is one driver invocation's worth of work: a contiguous
// slice of one analyzer's file list, at most Options.BatchSize long.
type analyzerBatch struct {
	analyzer string
	files    []string
}

// analyzerChain is every batch belonging to one analyzer, in submission
// order. dispatch runs a chain's batches strictly one after another so that
// issues from an earlier-submitted file never appear after issues from a
// later one within the same analyzer (§5 ordering guarantee), while
// different chains still run concurrently against each other.
type analyzerChain struct {
	analyzer string
	batches  []analyzerBatch
}

// buildBatches splits each analyzer's file list into batches bounded by
// Options.BatchSize and groups them into one ordered chain per analyzer.
// Submission order is preserved both within a batch's file slice and across
// a chain's batches, and dispatch is what actually honors that order at run
// time by executing each chain's batches sequentially.
func (e *Executor) buildBatches(grouped map[string][]string) []analyzerChain {
	var chains []analyzerChain

	for name, files := range grouped {
		chain := analyzerChain{analyzer: name}

		for start := 0; start < len(files); start += e.opts.BatchSize {
			end := start + e.opts.BatchSize
			if end > len(files) {
				end = len(files)
			}

			chain.batches = append(chain.batches, analyzerBatch{analyzer: name, files: files[start:end]})
		}

		chains = append(chains, chain)
	}

	return chains
}

// dispatch runs every analyzer chain concurrently, but within one chain its
// batches run strictly in sequence so same-analyzer issue order matches
// submission order. Concurrent subprocesses across all chains are bounded
// at Options.Concurrency via a shared semaphore, independent of how many
// chains are running at once. Pause/cancel are honored between dispatching
// one batch and the next, per chain. Returns true if the run was cancelled
// before all batches completed.
func (e *Executor) dispatch(ctx context.Context, j *job.Job, ctrl *Control, chains []analyzerChain, stats *runStats) bool {
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(e.opts.Concurrency))

	var cancelled atomic.Bool

	for _, chain := range chains {
		chain := chain

		g.Go(func() error {
			for _, b := range chain.batches {
				ctrl.WaitIfPaused()

				if ctrl.Cancelled() {
					cancelled.Store(true)

					return nil
				}

				if err := sem.Acquire(gctx, 1); err != nil {
					cancelled.Store(true)

					return nil
				}

				e.runBatch(gctx, j, b, stats)
				sem.Release(1)
			}

			return nil
		})
	}

	_ = g.Wait()

	return ctrl.Cancelled() || cancelled.Load()
}

// runBatch invokes one analyzer over one batch and folds the result onto
// the job one work unit (file) at a time, so progress and issue ids stay
// unit-granular even though the driver itself is invoked once per batch.
// When a Cache is configured, files whose content already has a cached
// result for this analyzer skip the driver entirely; only the miss subset
// is sent to driver.Analyze.
func (e *Executor) runBatch(ctx context.Context, j *job.Job, b analyzerBatch, stats *runStats) {
	driver := e.drivers[b.analyzer]
	if driver == nil {
		for _, f := range b.files {
			j.RecordUnitStart(f)
			j.AppendIssues(nil)
			j.AddWarning(analyzer.Warning{Analyzer: b.analyzer, Message: "no driver registered"})
		}

		return
	}

	byFile := make(map[string][]issue.Issue, len(b.files))

	missFiles := b.files

	if e.opts.Cache != nil {
		missFiles = nil

		for _, f := range b.files {
			content, err := os.ReadFile(filepath.Join(j.Input.ProjectRoot, f))
			if err != nil {
				missFiles = append(missFiles, f)
				continue
			}

			cached, ok := e.opts.Cache.Get(b.analyzer, content)
			if !ok {
				missFiles = append(missFiles, f)
				stats.cacheMisses.Add(1)

				continue
			}

			stats.cacheHits.Add(1)

			for i := range cached {
				cached[i].File = f
			}

			byFile[f] = cached
		}
	}

	if len(missFiles) > 0 {
		start := time.Now()
		issues, warnings := driver.Analyze(ctx, missFiles, j.Input.ProjectRoot)
		stats.recordDuration(time.Since(start))

		fresh := make(map[string][]issue.Issue, len(missFiles))

		for _, iss := range issues {
			fresh[iss.File] = append(fresh[iss.File], iss)
		}

		if e.opts.Cache != nil {
			for _, f := range missFiles {
				content, err := os.ReadFile(filepath.Join(j.Input.ProjectRoot, f))
				if err == nil {
					e.opts.Cache.Put(b.analyzer, content, fresh[f])
				}
			}
		}

		for _, f := range missFiles {
			byFile[f] = fresh[f]
		}

		for _, w := range warnings {
			j.AddWarning(w)
		}
	}

	for _, f := range b.files {
		j.RecordUnitStart(f)
		j.AppendIssues(filterCategories(byFile[f], j.Input.Categories))
	}
}

// filterCategories returns the subset of issues whose category is in
// selected. Cache entries are stored unfiltered (category-selection-
// agnostic) so a later job with a different category set still hits them.
func filterCategories(issues []issue.Issue, selected []issue.Category) []issue.Issue {
	var out []issue.Issue

	for _, iss := range issues {
		if categorySelected(iss.Category, selected) {
			out = append(out, iss)
		}
	}

	return out
}

func categorySelected(c issue.Category, selected []issue.Category) bool {
	for _, s := range selected {
		if s == c {
			return true
		}
	}

	return false
}

func (e *Executor) recordMetrics(ctx context.Context, j *job.Job, state job.State, stats *runStats) {
	if e.opts.Metrics == nil {
		return
	}

	snap := j.Status()

	e.opts.Metrics.RecordRun(ctx, AnalysisStats{
		State:         string(state),
		WorkUnits:     int64(snap.Progress.CompletedUnits),
		UnitDurations: stats.snapshotDurations(),
		CacheHits:     stats.cacheHits.Load(),
		CacheMisses:   stats.cacheMisses.Load(),
	})
}
