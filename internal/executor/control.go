package executor

import (
	"context"
	"sync"
)

// Control is the per-job control signal: the latched pause/resume/cancel
// requests the executor inspects between dispatching one batch and the
// next (§4.4). One Control is created per running job and shared between
// the registry (which calls Pause/Resume/Cancel on behalf of a caller) and
// the executor goroutine driving that job.
type Control struct {
	mu        sync.Mutex
	cond      *sync.Cond
	paused    bool
	cancelled bool
	cancelFn  context.CancelFunc
}

// NewControl derives a cancellable context from parent and returns the
// Control that can cancel it, plus the derived context for the executor to
// pass into subprocess invocations.
func NewControl(parent context.Context) (*Control, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	c := &Control{cancelFn: cancel}
	c.cond = sync.NewCond(&c.mu)

	return c, ctx
}

// Pause latches a pause request. Only meaningful while the job is running;
// the registry enforces the state precondition before calling this.
func (c *Control) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.paused = true
}

// Resume clears a pause request and wakes the dispatch loop if it is
// waiting.
func (c *Control) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()

	c.cond.Broadcast()
}

// Cancel latches a cancel request, wakes any paused dispatch loop, and
// cancels the derived context so in-flight subprocesses begin their
// termination escalation.
func (c *Control) Cancel() {
	c.mu.Lock()
	c.cancelled = true
	c.paused = false
	c.mu.Unlock()

	c.cancelFn()
	c.cond.Broadcast()
}

// Cancelled reports whether cancel has been latched.
func (c *Control) Cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cancelled
}

// WaitIfPaused blocks the calling goroutine while paused is latched,
// waking on Resume or Cancel. Pause is observable strictly between work
// units (Invariant 5): callers invoke this only at a batch boundary, never
// mid-subprocess.
func (c *Control) WaitIfPaused() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.paused && !c.cancelled {
		c.cond.Wait()
	}
}
