// Package cancel provides the cancellation sentinel shared across every
// pipeline stage.
//
// A stage cancellation is never reported as a failure. Handlers
// distinguish a real error from a cancellation by comparing against
// [Sentinel] with errors.Is, not by nil-checking, since a wrapped error
// chain may carry additional context.
package cancel

import "errors"

// Sentinel is the distinguished error value used to signal that a stage's
// work was aborted deliberately (disposal, restart, or pause-abort), as
// opposed to a genuine failure from the strategy under it.
var Sentinel = errors.New("cancelled")

// Is reports whether err represents a cancellation rather than a real
// failure.
func Is(err error) bool {
	return errors.Is(err, Sentinel)
}
