// Package progress implements the per-job counters the executor folds work
// unit completions into: completed/total units, the live severity tally,
// and elapsed/estimated-remaining timing.
//
// Tracker is a plain value with no locking of its own — per the job
// invariant that all job-owned mutable state shares one guard, callers
// must hold the owning job's mutex across every Tracker method call.
package progress

import (
	"time"

	"github.com/reviewforge/reviewforge/internal/issue"
)

// Snapshot is a stable, torn-free copy of a Tracker's observable state.
type Snapshot struct {
	TotalUnits     int
	CompletedUnits int

	// CurrentFile is the file label of the most recently started unit, or
	// empty if none has started.
	CurrentFile string

	ElapsedSeconds float64

	// EstimatedRemainingSeconds is defined only once at least one unit has
	// completed; EstimatedRemainingKnown is false until then.
	EstimatedRemainingSeconds float64
	EstimatedRemainingKnown   bool

	Tally issue.Tally
}

// Fraction returns completed/total in [0,1]. An empty plan (TotalUnits==0)
// reports 1, matching the empty-plan property (a zero-unit job is
// immediately complete).
func (s Snapshot) Fraction() float64 {
	if s.TotalUnits == 0 {
		return 1
	}

	return float64(s.CompletedUnits) / float64(s.TotalUnits)
}

// Tracker accumulates progress for a single job. Zero value is usable once
// SetTotal has been called; SetTotal is expected to be called exactly once,
// at plan time.
type Tracker struct {
	startedAt time.Time

	totalUnits     int
	completedUnits int

	currentFile    string
	unitStartedAt  time.Time
	unitHasStarted bool

	// unitTimeTotal/unitCount back the rolling average per-unit time.
	unitTimeTotal time.Duration
	unitCount     int

	tally issue.Tally
}

// SetTotal fixes total_units at plan time and marks the job's overall start.
// Per Invariant 2, total_units is fixed once and thereafter immutable.
func (t *Tracker) SetTotal(total int, startedAt time.Time) {
	t.totalUnits = total
	t.startedAt = startedAt
}

// RecordUnitStart sets the current-file label and starts the unit's timer.
func (t *Tracker) RecordUnitStart(file string) {
	t.currentFile = file
	t.unitStartedAt = time.Now()
	t.unitHasStarted = true
}

// RecordUnitFinish increments completed_units by one, folds issues into the
// live tally, and updates the rolling per-unit-time average.
func (t *Tracker) RecordUnitFinish(issues []issue.Issue) {
	t.completedUnits++

	for _, iss := range issues {
		t.tally.Add(iss.Severity)
	}

	if t.unitHasStarted {
		t.unitTimeTotal += time.Since(t.unitStartedAt)
		t.unitCount++
	}
}

// Snapshot returns a stable copy of the current progress, safe to call
// concurrently with reads under the owning job's lock.
func (t *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		TotalUnits:     t.totalUnits,
		CompletedUnits: t.completedUnits,
		CurrentFile:    t.currentFile,
		ElapsedSeconds: t.elapsed(),
		Tally:          t.tally,
	}

	if t.unitCount > 0 {
		avg := t.unitTimeTotal / time.Duration(t.unitCount)
		remaining := t.totalUnits - t.completedUnits

		if remaining < 0 {
			remaining = 0
		}

		s.EstimatedRemainingSeconds = (avg * time.Duration(remaining)).Seconds()
		s.EstimatedRemainingKnown = true
	}

	return s
}

func (t *Tracker) elapsed() float64 {
	if t.startedAt.IsZero() {
		return 0
	}

	return time.Since(t.startedAt).Seconds()
}
