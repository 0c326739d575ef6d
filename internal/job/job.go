// Package job defines the Job record and its state machine. A Job is
// created by the registry, mutated only by the executor that owns it and
// by control operations, and carries the one mutex that guards its state,
// progress, issue list, and warnings as a single unit (Invariant 1).
package job

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/reviewforge/reviewforge/internal/analyzer"
	"github.com/reviewforge/reviewforge/internal/issue"
	"github.com/reviewforge/reviewforge/internal/progress"
)

// State is the closed set of job lifecycle states.
type State string

// States, in rough lifecycle order. Completed, Cancelled, and Failed are
// terminal: Invariant 4 forbids any further transition out of them.
const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCancelled State = "cancelled"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Terminal reports whether s is an absorbing state.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateFailed:
		return true
	default:
		return false
	}
}

// transitions enumerates the legal state machine edges (§4.4).
var transitions = map[State]map[State]bool{
	StatePending: {StateRunning: true, StateFailed: true},
	StateRunning: {StatePaused: true, StateCompleted: true, StateCancelled: true, StateFailed: true},
	StatePaused:  {StateRunning: true, StateCancelled: true},
}

// CanTransition reports whether moving from `from` to `to` is a legal edge.
func CanTransition(from, to State) bool {
	return transitions[from][to]
}

// Input is the caller-supplied request a job is created from.
type Input struct {
	ProjectRoot string
	Files       []string
	Analyzers   []string
	Categories  []issue.Category
}

// Job is the full record of one review run. All mutable fields below the
// identity/input section are guarded by mu; callers outside this package
// read and write them only through the exported methods.
type Job struct {
	ID    string
	Input Input

	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time

	mu           sync.Mutex
	state        State
	tracker      progress.Tracker
	issues       []issue.Issue
	warnings     []analyzer.Warning
	errorMessage string
	nextIssueID  int64
}

// New constructs a pending job with the given id and input.
func New(id string, input Input, createdAt time.Time) *Job {
	return &Job{
		ID:        id,
		Input:     input,
		CreatedAt: createdAt,
		state:     StatePending,
	}
}

// State returns the current state under lock.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.state
}

// Transition moves the job to `to` if the edge is legal, recording
// timestamps for the start/finish boundaries. Returns false if the edge is
// illegal (Invariant 4 included: no edge leaves a terminal state).
func (j *Job) Transition(to State, now time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !CanTransition(j.state, to) {
		return false
	}

	if to == StateRunning && j.StartedAt == nil {
		started := now
		j.StartedAt = &started
	}

	if to.Terminal() {
		finished := now
		j.FinishedAt = &finished
	}

	j.state = to

	return true
}

// SetPlan fixes total_units at plan time, before the first Transition to
// running. Must be called once, under the executor's exclusive ownership
// of the job prior to dispatch.
func (j *Job) SetPlan(totalUnits int, startedAt time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.tracker.SetTotal(totalUnits, startedAt)
}

// RecordUnitStart delegates to the progress tracker under the job's lock.
func (j *Job) RecordUnitStart(file string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.tracker.RecordUnitStart(file)
}

// AppendIssues assigns sequential ids (unique within the job, per Invariant
// 3) to newIssues and appends them in the given order, then folds them into
// the progress tally as one completed work unit.
func (j *Job) AppendIssues(newIssues []issue.Issue) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for i := range newIssues {
		j.nextIssueID++
		newIssues[i].ID = strconv.FormatInt(j.nextIssueID, 10)
	}

	j.issues = append(j.issues, newIssues...)
	j.tracker.RecordUnitFinish(newIssues)
}

// AddWarning appends one non-fatal driver warning. Never affects state.
func (j *Job) AddWarning(w analyzer.Warning) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.warnings = append(j.warnings, w)
}

// Fail transitions the job to failed with the given message, if legal.
func (j *Job) Fail(message string, now time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !CanTransition(j.state, StateFailed) {
		return false
	}

	j.state = StateFailed
	j.errorMessage = message
	finished := now
	j.FinishedAt = &finished

	return true
}

// Snapshot is the stable, torn-free read of a job's observable state for a
// status() call.
type Snapshot struct {
	ID         string
	State      State
	Progress   progress.Snapshot
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
	Issues     []issue.Issue
	Warnings   []analyzer.Warning
	Error      string
}

// Status returns a stable snapshot of the job's current observable state.
func (j *Job) Status() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	return Snapshot{
		ID:         j.ID,
		State:      j.state,
		Progress:   j.tracker.Snapshot(),
		CreatedAt:  j.CreatedAt,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
		Issues:     append([]issue.Issue(nil), j.issues...),
		Warnings:   append([]analyzer.Warning(nil), j.warnings...),
		Error:      j.errorMessage,
	}
}

// Result is the full-result shape returned once a job is terminal.
type Result struct {
	JobID         string
	State         State
	Summary       issue.Summary
	Issues        []issue.Issue
	ElapsedSeconds float64
	FinishedAt    time.Time
	ProjectRoot   string
	Error         string
}

// Result returns the full result and true if the job is terminal, or the
// zero Result and false otherwise.
func (j *Job) Result() (Result, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.state.Terminal() {
		return Result{}, false
	}

	var elapsed float64
	if j.StartedAt != nil && j.FinishedAt != nil {
		elapsed = j.FinishedAt.Sub(*j.StartedAt).Seconds()
	}

	var finished time.Time
	if j.FinishedAt != nil {
		finished = *j.FinishedAt
	}

	return Result{
		JobID:          j.ID,
		State:          j.state,
		Summary:        issue.Summarize(j.issues),
		Issues:         append([]issue.Issue(nil), j.issues...),
		ElapsedSeconds: elapsed,
		FinishedAt:     finished,
		ProjectRoot:    j.Input.ProjectRoot,
		Error:          j.errorMessage,
	}, true
}

// String implements fmt.Stringer for logging.
func (s State) String() string {
	return string(s)
}

var _ fmt.Stringer = StatePending
