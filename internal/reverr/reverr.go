// Package reverr defines the error taxonomy shared across the review core:
// a closed set of kinds plus one sentinel per kind, so callers can
// errors.Is against a kind regardless of the wrapping message.
package reverr

import "errors"

// Kind classifies a review-core error for callers that need to branch on
// the failure category rather than parse a message.
type Kind string

const (
	// KindIllegalInput marks a rejected create() request: unknown analyzer,
	// empty category list, non-directory root.
	KindIllegalInput Kind = "illegal_input"

	// KindIllegalState marks a rejected control operation: pause on a
	// non-running job, resume on a non-paused job, and so on.
	KindIllegalState Kind = "illegal_state"

	// KindNotFound marks an operation against an unknown job id.
	KindNotFound Kind = "not_found"

	// KindDriverWarning marks a non-fatal driver failure recorded on the
	// job's warnings list: missing binary, timeout, parse failure,
	// unreadable file. Never changes job state on its own.
	KindDriverWarning Kind = "driver_warning"

	// KindJobFailed marks a fatal executor fault: the plan could not be
	// built, or an unhandled error escaped the control loop.
	KindJobFailed Kind = "job_failed"
)

// Sentinel errors, one per Kind, for use with fmt.Errorf("%w: ...", ...)
// and errors.Is.
var (
	ErrIllegalInput  = errors.New(string(KindIllegalInput))
	ErrIllegalState  = errors.New(string(KindIllegalState))
	ErrNotFound      = errors.New(string(KindNotFound))
	ErrDriverWarning = errors.New(string(KindDriverWarning))
	ErrJobFailed     = errors.New(string(KindJobFailed))
)

// sentinels maps each Kind to its sentinel error, for generic dispatch.
var sentinels = map[Kind]error{
	KindIllegalInput:  ErrIllegalInput,
	KindIllegalState:  ErrIllegalState,
	KindNotFound:      ErrNotFound,
	KindDriverWarning: ErrDriverWarning,
	KindJobFailed:     ErrJobFailed,
}

// Sentinel returns the sentinel error for k, or nil if k is not a known kind.
func Sentinel(k Kind) error {
	return sentinels[k]
}

// Is reports whether err carries the given Kind's sentinel.
func Is(err error, k Kind) bool {
	s := sentinels[k]
	if s == nil {
		return false
	}

	return errors.Is(err, s)
}
