// Package eventgroup error types follow a plain cause-chain convention:
// sentinel errors matched with errors.Is, wrapped with fmt.Errorf("%w", ...)
// rather than bespoke Wrap types where a plain wrap suffices.
package eventgroup

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEventHandler is wrapped by a handler's Action to signal
	// its own permanent, quiet removal from the hosting worker (spec §7
	// InvalidHandler). It is also the error a LoopBlockMonitor probe
	// itself returns once its observed worker has terminated (spec §4.3),
	// which removes the probe from the monitor loop the same way.
	ErrInvalidEventHandler = errors.New("eventgroup: invalid event handler")

	// ErrUnknownPriority is wrapped into an InvalidArgumentError when
	// addHandler receives a Priority outside the closed enumeration.
	ErrUnknownPriority = errors.New("eventgroup: unknown priority")

	// ErrClosedResource is returned by AddHandler once the group's
	// Close has been called (spec §7 LateRegistration).
	ErrClosedResource = errors.New("eventgroup: group is closed")
)

// InvalidArgumentError wraps ErrUnknownPriority (or other argument
// validation failures) with the offending value for diagnostics.
type InvalidArgumentError struct {
	Message string
	Cause   error
}

// Error implements error.
func (e *InvalidArgumentError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Cause)
}

// Unwrap enables errors.Is/errors.As through the cause chain.
func (e *InvalidArgumentError) Unwrap() error { return e.Cause }

// CloseError aggregates the errors returned by stopping and closing each
// loop owned by an EventGroup (spec §7 CloseOrStopOfOne). Every
// constituent error is logged as it occurs; close() still returns the full
// aggregate so a caller can inspect every failure, not just the first.
type CloseError struct {
	// Errors is one entry per loop that failed to stop or close, in the
	// order those failures were observed.
	Errors []error
}

// Error implements error.
func (e *CloseError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("eventgroup: close: %s", e.Errors[0])
	}
	return fmt.Sprintf("eventgroup: close: %d loop(s) failed", len(e.Errors))
}

// Unwrap supports errors.Is/errors.As across every constituent error.
func (e *CloseError) Unwrap() []error { return e.Errors }

// appendCloseError appends err to errs if non-nil and returns the
// (possibly still nil) slice. It is a plain helper rather than a method so
// call sites stay explicit about mutation.
func appendCloseError(errs []error, err error) []error {
	if err == nil {
		return errs
	}
	return append(errs, err)
}

// newInvalidArgument wraps ErrUnknownPriority (or another validation
// sentinel) with a human-readable message.
func newInvalidArgument(message string, cause error) error {
	return &InvalidArgumentError{Message: message, Cause: cause}
}
