// Package registry implements the job registry (C5): the process-wide map
// from job id to job record. It validates create() input, starts each
// job's executor on a background goroutine, and exposes status/control/
// result operations that a transport-agnostic caller (CLI, MCP tool, or an
// out-of-scope HTTP surface) can drive directly.
package registry

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reviewforge/reviewforge/internal/executor"
	"github.com/reviewforge/reviewforge/internal/job"
	"github.com/reviewforge/reviewforge/internal/reverr"
)

// record is everything the registry keeps per job beyond the job itself:
// the control signal the executor is honoring and the context driving its
// subprocess invocations.
type record struct {
	job    *job.Job
	ctrl   *executor.Control
	cancel context.CancelFunc
}

// Registry is the process-wide, concurrency-safe job map. Its own mutex
// guards only the map; it is never held while calling into executor code,
// per §5's "no lock is held across subprocess execution".
type Registry struct {
	mu      sync.RWMutex
	jobs    map[string]*record
	exec    *executor.Executor
	newID   func() string
	nowFunc func() time.Time
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithIDFunc overrides job id generation, for deterministic tests.
func WithIDFunc(f func() string) Option {
	return func(r *Registry) { r.newID = f }
}

// WithClock overrides the time source, for deterministic tests.
func WithClock(f func() time.Time) Option {
	return func(r *Registry) { r.nowFunc = f }
}

// New constructs a Registry driving jobs through exec.
func New(exec *executor.Executor, opts ...Option) *Registry {
	r := &Registry{
		jobs:    make(map[string]*record),
		exec:    exec,
		newID:   func() string { return uuid.NewString() },
		nowFunc: time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Create validates input (project root is an existing directory, at least
// one known analyzer is enabled, category list non-empty and within the
// closed set), constructs a pending job, stores it, and starts its
// executor in the background. Returns the new job id immediately; it does
// not wait for the job to reach any particular state.
func (r *Registry) Create(ctx context.Context, in job.Input) (string, error) {
	if err := r.validate(in); err != nil {
		return "", err
	}

	id := r.newID()
	j := job.New(id, in, r.nowFunc())

	ctrl, runCtx := executor.NewControl(ctx)

	r.mu.Lock()
	r.jobs[id] = &record{job: j, ctrl: ctrl}
	r.mu.Unlock()

	go func() {
		if err := r.exec.Run(runCtx, j, ctrl); err != nil {
			// Run already transitions the job to failed on a planning
			// fault; nothing further to do here but avoid an orphaned
			// goroutine panic on an unexpected error type.
			_ = err
		}
	}()

	return id, nil
}

func (r *Registry) validate(in job.Input) error {
	if in.ProjectRoot == "" {
		return fmt.Errorf("%w: project root must be set", reverr.ErrIllegalInput)
	}

	info, err := os.Stat(in.ProjectRoot)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: project root %q is not an existing directory", reverr.ErrIllegalInput, in.ProjectRoot)
	}

	if len(in.Analyzers) == 0 {
		return fmt.Errorf("%w: at least one analyzer must be enabled", reverr.ErrIllegalInput)
	}

	known := r.exec.Descriptors()

	for _, name := range in.Analyzers {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("%w: unknown analyzer %q", reverr.ErrIllegalInput, name)
		}
	}

	if len(in.Categories) == 0 {
		return fmt.Errorf("%w: at least one category must be selected", reverr.ErrIllegalInput)
	}

	for _, c := range in.Categories {
		if !c.Valid() {
			return fmt.Errorf("%w: unknown category %q", reverr.ErrIllegalInput, c)
		}
	}

	return nil
}

// lookup resolves id under the map's read lock.
func (r *Registry) lookup(id string) (*record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: job %q", reverr.ErrNotFound, id)
	}

	return rec, nil
}

// Status returns the job's current snapshot: state, progress, timestamps,
// and (for terminal jobs) the final issue list or error, all read under
// the job's own guard via job.Job.Status.
func (r *Registry) Status(_ context.Context, id string) (job.Snapshot, error) {
	rec, err := r.lookup(id)
	if err != nil {
		return job.Snapshot{}, err
	}

	return rec.job.Status(), nil
}

// Pause requests a running job pause between its next batch dispatches.
// Valid only from the running state; any other state returns
// illegal_state without touching the job.
func (r *Registry) Pause(_ context.Context, id string) error {
	rec, err := r.lookup(id)
	if err != nil {
		return err
	}

	if rec.job.State() != job.StateRunning {
		return fmt.Errorf("%w: job %q is not running", reverr.ErrIllegalState, id)
	}

	rec.ctrl.Pause()

	if !rec.job.Transition(job.StatePaused, r.nowFunc()) {
		return fmt.Errorf("%w: job %q is not running", reverr.ErrIllegalState, id)
	}

	return nil
}

// Resume clears a pause request on a paused job. Valid only from paused;
// any other state returns illegal_state.
func (r *Registry) Resume(_ context.Context, id string) error {
	rec, err := r.lookup(id)
	if err != nil {
		return err
	}

	if rec.job.State() != job.StatePaused {
		return fmt.Errorf("%w: job %q is not paused", reverr.ErrIllegalState, id)
	}

	if !rec.job.Transition(job.StateRunning, r.nowFunc()) {
		return fmt.Errorf("%w: job %q is not paused", reverr.ErrIllegalState, id)
	}

	rec.ctrl.Resume()

	return nil
}

// Cancel requests termination of a non-terminal job. A no-op (illegal_state)
// against an already-terminal job; legal from pending, running, or paused.
func (r *Registry) Cancel(_ context.Context, id string) error {
	rec, err := r.lookup(id)
	if err != nil {
		return err
	}

	if rec.job.State().Terminal() {
		return fmt.Errorf("%w: job %q already terminal", reverr.ErrIllegalState, id)
	}

	rec.ctrl.Cancel()

	return nil
}

// Result returns the full result shape once the job is terminal, or an
// error wrapping reverr.ErrIllegalState while it is still in flight.
func (r *Registry) Result(_ context.Context, id string) (job.Result, error) {
	rec, err := r.lookup(id)
	if err != nil {
		return job.Result{}, err
	}

	res, ok := rec.job.Result()
	if !ok {
		return job.Result{}, fmt.Errorf("%w: job %q has not reached a terminal state", reverr.ErrIllegalState, id)
	}

	return res, nil
}

// Analyzers exposes the names of every analyzer known to the underlying
// executor, for callers building a create() request (e.g. CLI flag
// validation, MCP tool input schemas) before submitting it.
func (r *Registry) Analyzers() []string {
	known := r.exec.Descriptors()
	names := make([]string, 0, len(known))

	for name := range known {
		names = append(names, name)
	}

	return names
}

// Evict removes a terminal job from the registry. It is a no-op (without
// error) if the job does not exist or has not reached a terminal state;
// the registry does not mandate any eviction policy, but callers that want
// one can build it on this primitive.
func (r *Registry) Evict(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.jobs[id]
	if !ok || !rec.job.State().Terminal() {
		return
	}

	delete(r.jobs, id)
}

// Len reports the number of jobs currently tracked, terminal or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.jobs)
}
