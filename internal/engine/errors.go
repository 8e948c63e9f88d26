package engine

import (
	"errors"
	"fmt"
)

// === Rejection Classification ===

// RejectionError wraps a transient backpressure error from the bulk
// executor — the only error class that triggers retry (spec glossary
// "Rejection"; §4.2, §7).
//
// Use for: backend-reported backpressure / too-many-requests signals.
// Don't use for: shard search failures, bulk item failures, validation
// errors — those are reported, never retried.
type RejectionError struct {
	Err error
}

func (e RejectionError) Error() string { return e.Err.Error() }
func (e RejectionError) Unwrap() error { return e.Err }

// Rejection wraps an error to signal the bulk executor should retry it.
func Rejection(err error) error {
	return RejectionError{Err: err}
}

// IsRejection reports whether err (or something it wraps) is a
// RejectionError.
func IsRejection(err error) bool {
	var r RejectionError
	return errors.As(err, &r)
}

// === Fatal Errors ===

// FatalError is any other exception raised in the control loop; it
// propagates to the listener unchanged and still triggers scroll release
// (spec §7 "Fatal").
type FatalError struct {
	Err error
}

func (e FatalError) Error() string { return fmt.Sprintf("bulk-by-scroll run failed: %s", e.Err) }
func (e FatalError) Unwrap() error { return e.Err }

// Fatal wraps err as a FatalError.
func Fatal(err error) error {
	return FatalError{Err: err}
}

// === Programmer errors ===

// UnknownOpTypeError indicates a bulk item reported an op_type outside
// {"index","create","delete"}, a programmer error per spec §4.5 §4: "Any
// other op-type is a programmer error and fails fatally."
type UnknownOpTypeError struct {
	OpType string
}

func (e UnknownOpTypeError) Error() string {
	return fmt.Sprintf("unknown bulk item op_type %q", e.OpType)
}

// SchedulingRejectedError indicates the generic worker pool rejected the
// batch handler. Spec §4.5 §2: "Rejection of that scheduling is fatal."
type SchedulingRejectedError struct {
	Err error
}

func (e SchedulingRejectedError) Error() string {
	return fmt.Sprintf("batch handler scheduling rejected: %s", e.Err)
}
func (e SchedulingRejectedError) Unwrap() error { return e.Err }
