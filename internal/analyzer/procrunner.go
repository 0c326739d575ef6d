package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

// DefaultBatchTimeout is the per-batch subprocess deadline (§5 Timeouts).
const DefaultBatchTimeout = 60 * time.Second

// DefaultCancelGrace is the wait after SIGTERM before escalating to SIGKILL.
const DefaultCancelGrace = 5 * time.Second

// ErrSubprocessTimeout is returned by RunSubprocess when the command is
// terminated because it exceeded its per-batch deadline rather than exiting
// on its own.
var ErrSubprocessTimeout = errors.New("analyzer subprocess timed out")

// ErrSubprocessCancelled is returned by RunSubprocess when the command is
// terminated because the caller's ctx was cancelled (job-level cancel)
// rather than because its own deadline elapsed.
var ErrSubprocessCancelled = errors.New("analyzer subprocess cancelled")

// RunSubprocess runs name with args in dir, bounded by timeout. If ctx is
// cancelled (job-level cancel) or the timeout elapses first, the process is
// sent SIGTERM; if it has not exited within grace, it is sent SIGKILL. The
// command's complete standard output is returned regardless of exit code —
// callers decide tolerance via Descriptor.TolerateExit. A non-zero exit
// that the descriptor doesn't tolerate is still returned as stdout plus a
// nil error; RunSubprocess only returns an error for spawn failure or
// forced termination.
func RunSubprocess(ctx context.Context, dir, name string, args []string, timeout, grace time.Duration) ([]byte, int, error) {
	if timeout <= 0 {
		timeout = DefaultBatchTimeout
	}

	if grace <= 0 {
		grace = DefaultCancelGrace
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.Command(name, args...) //nolint:gosec // analyzer binary path is operator-configured, not user input
	cmd.Dir = dir

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Start(); err != nil {
		return nil, -1, fmt.Errorf("spawn %s: %w", name, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return stdout.Bytes(), exitCode(cmd, err), nil
	case <-deadlineCtx.Done():
		// ctx is the caller's job-scoped context; it is the one cancelled
		// on a job-level cancel. deadlineCtx also fires when only its own
		// timeout elapses, so checking ctx.Err() (not deadlineCtx.Err())
		// distinguishes "job was cancelled" from "this batch timed out".
		terminationErr := ErrSubprocessTimeout
		if ctx.Err() != nil {
			terminationErr = ErrSubprocessCancelled
		}

		return terminateAndWait(cmd, done, stdout.Bytes(), grace, terminationErr)
	}
}

// terminateAndWait sends SIGTERM, waits up to grace for the process to
// exit, and escalates to SIGKILL if it hasn't. terminationErr is
// ErrSubprocessTimeout or ErrSubprocessCancelled depending on why the
// caller decided to terminate.
func terminateAndWait(cmd *exec.Cmd, done chan error, partial []byte, grace time.Duration, terminationErr error) ([]byte, int, error) {
	_ = cmd.Process.Signal(syscall.SIGTERM)

	select {
	case <-done:
		return partial, -1, terminationErr
	case <-time.After(grace):
		_ = cmd.Process.Kill()
		<-done

		return partial, -1, terminationErr
	}
}

// exitCode extracts the process exit code, or -1 if it could not be
// determined.
func exitCode(cmd *exec.Cmd, waitErr error) int {
	if waitErr == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}

	_ = cmd

	return -1
}
