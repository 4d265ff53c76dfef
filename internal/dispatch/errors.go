package dispatch

import "errors"

// Remote-path failures. Neither is ever surfaced to the caller of Compute:
// both trigger the one-shot local fallback, which cannot fail for valid
// input.
var (
	// ErrTransportFailure marks an unreachable or timed-out remote path.
	ErrTransportFailure = errors.New("remote compute transport failure")

	// ErrMalformedResponse marks a remote response that failed shape
	// validation against the canonical policy.
	ErrMalformedResponse = errors.New("malformed remote response")
)
