package analyzer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewforge/reviewforge/internal/analyzer"
)

func TestRunSubprocess_SuccessCollectsStdout(t *testing.T) {
	t.Parallel()

	out, code, err := analyzer.RunSubprocess(context.Background(), t.TempDir(), "echo", []string{"hello"}, time.Second, time.Second)

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, string(out), "hello")
}

func TestRunSubprocess_NonZeroExitIsNotAnError(t *testing.T) {
	t.Parallel()

	out, code, err := analyzer.RunSubprocess(context.Background(), t.TempDir(), "sh", []string{"-c", "echo partial; exit 3"}, time.Second, time.Second)

	require.NoError(t, err, "non-zero exit is reported via code, not error; tolerance is the descriptor's decision")
	assert.Equal(t, 3, code)
	assert.Contains(t, string(out), "partial")
}

func TestRunSubprocess_TimeoutTerminates(t *testing.T) {
	t.Parallel()

	start := time.Now()
	_, code, err := analyzer.RunSubprocess(context.Background(), t.TempDir(), "sleep", []string{"10"}, 50*time.Millisecond, 50*time.Millisecond)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, analyzer.ErrSubprocessTimeout)
	assert.Equal(t, -1, code)
	assert.Less(t, elapsed, 5*time.Second, "timeout + grace should bound wall time well under the sleep duration")
}

func TestRunSubprocess_SpawnFailure(t *testing.T) {
	t.Parallel()

	_, _, err := analyzer.RunSubprocess(context.Background(), t.TempDir(), "this-binary-does-not-exist-xyz", nil, time.Second, time.Second)
	require.Error(t, err)
}

func TestRunSubprocess_ParentCancelTerminates(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, _, err := analyzer.RunSubprocess(ctx, t.TempDir(), "sleep", []string{"10"}, 5*time.Second, 50*time.Millisecond)
	require.ErrorIs(t, err, analyzer.ErrSubprocessCancelled,
		"a parent-context cancel is distinct from this call's own deadline elapsing")
}
