package executor_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewforge/reviewforge/internal/executor"
)

func TestControl_PauseBlocksUntilResume(t *testing.T) {
	t.Parallel()

	ctrl, _ := executor.NewControl(context.Background())
	ctrl.Pause()

	var wg sync.WaitGroup

	woke := make(chan struct{})

	wg.Add(1)

	go func() {
		defer wg.Done()

		ctrl.WaitIfPaused()
		close(woke)
	}()

	select {
	case <-woke:
		t.Fatal("WaitIfPaused returned before Resume")
	case <-time.After(50 * time.Millisecond):
	}

	ctrl.Resume()

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("WaitIfPaused did not wake after Resume")
	}

	wg.Wait()
}

func TestControl_CancelWakesPausedWaiter(t *testing.T) {
	t.Parallel()

	ctrl, ctx := executor.NewControl(context.Background())
	ctrl.Pause()

	done := make(chan struct{})

	go func() {
		ctrl.WaitIfPaused()
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	ctrl.Cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cancel did not wake paused waiter")
	}

	assert.True(t, ctrl.Cancelled())
	require.Error(t, ctx.Err())
}

func TestControl_CancelCancelsDerivedContext(t *testing.T) {
	t.Parallel()

	ctrl, ctx := executor.NewControl(context.Background())

	select {
	case <-ctx.Done():
		t.Fatal("context should not be done before Cancel")
	default:
	}

	ctrl.Cancel()
	<-ctx.Done()
}

func TestControl_NotPausedDoesNotBlock(t *testing.T) {
	t.Parallel()

	ctrl, _ := executor.NewControl(context.Background())

	done := make(chan struct{})

	go func() {
		ctrl.WaitIfPaused()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitIfPaused blocked with no pause latched")
	}
}
