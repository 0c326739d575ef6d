package progress_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/reviewforge/reviewforge/internal/issue"
	"github.com/reviewforge/reviewforge/internal/progress"
)

func TestTracker_SnapshotBeforeAnyUnit(t *testing.T) {
	t.Parallel()

	var tr progress.Tracker
	tr.SetTotal(10, time.Now())

	snap := tr.Snapshot()
	assert.Equal(t, 10, snap.TotalUnits)
	assert.Equal(t, 0, snap.CompletedUnits)
	assert.False(t, snap.EstimatedRemainingKnown, "remaining time is unknown before any unit completes")
}

func TestTracker_RecordUnitFinish_IncrementsAndTallies(t *testing.T) {
	t.Parallel()

	var tr progress.Tracker
	tr.SetTotal(2, time.Now())

	tr.RecordUnitStart("a.js")
	tr.RecordUnitFinish([]issue.Issue{
		{Severity: issue.SeverityHigh},
		{Severity: issue.SeverityLow},
	})

	snap := tr.Snapshot()
	assert.Equal(t, 1, snap.CompletedUnits)
	assert.Equal(t, "a.js", snap.CurrentFile)
	assert.Equal(t, 2, snap.Tally.Total)
	assert.Equal(t, 1, snap.Tally.High)
	assert.True(t, snap.EstimatedRemainingKnown)
}

func TestTracker_CompletedNeverExceedsTotal(t *testing.T) {
	t.Parallel()

	var tr progress.Tracker
	tr.SetTotal(1, time.Now())

	tr.RecordUnitStart("a.js")
	tr.RecordUnitFinish(nil)

	snap := tr.Snapshot()
	assert.Equal(t, snap.TotalUnits, snap.CompletedUnits)
	assert.Equal(t, float64(0), snap.EstimatedRemainingSeconds)
}

func TestSnapshot_Fraction(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, progress.Snapshot{TotalUnits: 0, CompletedUnits: 0}.Fraction(), 0.0001)
	assert.InDelta(t, 0.5, progress.Snapshot{TotalUnits: 4, CompletedUnits: 2}.Fraction(), 0.0001)
}

func TestTracker_MonotonicCompletedUnits(t *testing.T) {
	t.Parallel()

	var tr progress.Tracker
	tr.SetTotal(3, time.Now())

	prev := 0
	for i := 0; i < 3; i++ {
		tr.RecordUnitStart("f")
		tr.RecordUnitFinish(nil)

		snap := tr.Snapshot()
		assert.GreaterOrEqual(t, snap.CompletedUnits, prev)
		prev = snap.CompletedUnits
	}

	assert.Equal(t, 3, prev)
}
