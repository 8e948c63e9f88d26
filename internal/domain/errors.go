package domain

import "errors"

// Sentinel errors returned by request validation, wire decoding, and
// progress accounting. Messages are part of the stable, observable
// contract: callers match on substrings of these (or errors wrapping
// them) to classify failures.
var (
	// ErrNegativeRetries indicates max_retries was set below zero.
	ErrNegativeRetries = errors.New("retries cannot be negative")

	// ErrInvalidSize indicates size was set to something other than -1 or a
	// positive integer.
	ErrInvalidSize = errors.New("size should be greater than 0 or -1 (to indicate unlimited)")

	// ErrInvalidConflictBehavior indicates conflicts was set to a value other
	// than "proceed" or "abort".
	ErrInvalidConflictBehavior = errors.New(`conflicts must be "proceed" or "abort"`)

	// ErrClusterTooOld indicates start() was invoked against a cluster whose
	// smallest reported version does not meet the engine's minimum.
	ErrClusterTooOld = errors.New("cluster has not been upgraded to the required version")

	// ErrUnauthorized indicates an API key failed validation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidAPIKeyFormat indicates an API key string could not be parsed.
	ErrInvalidAPIKeyFormat = errors.New("invalid API key format")

	// ErrRunNotFound indicates no run exists for a given RequestID.
	ErrRunNotFound = errors.New("run not found")

	// ErrDurationEmpty indicates an ISO 8601 duration string was empty.
	ErrDurationEmpty = errors.New("duration cannot be empty")

	// ErrInvalidDurationFormat indicates an ISO 8601 duration string could
	// not be parsed.
	ErrInvalidDurationFormat = errors.New("invalid ISO 8601 duration format")

	// ErrUnknownOpType indicates a StartRun request named an op_type other
	// than "reindex", "update_by_query", or "delete_by_query".
	ErrUnknownOpType = errors.New(`op_type must be "reindex", "update_by_query", or "delete_by_query"`)
)

// ForbiddenFieldError reports that a document transform attempted to mutate
// an identity or routing field of a hit. The message names the offending
// field: "Modifying [<field>] not allowed".
type ForbiddenFieldError struct {
	Field string
}

func (e ForbiddenFieldError) Error() string {
	return "Modifying [" + e.Field + "] not allowed"
}

// NegativeCounterError reports that a ProgressRecord snapshot was
// constructed with a negative field: "<field> must be greater than 0 but
// was [<n>]".
type NegativeCounterError struct {
	Field string
	Value int64
}

func (e NegativeCounterError) Error() string {
	return e.Field + " must be greater than 0 but was [" + itoa(e.Value) + "]"
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// ValidationError aggregates every violation found by Request.Validate, so
// callers see every problem in one synchronous rejection instead of
// discovering them one at a time.
type ValidationError struct {
	Violations []error
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return e.Violations[0].Error()
	}
	msg := "invalid request:"
	for _, v := range e.Violations {
		msg += " " + v.Error() + ";"
	}
	return msg
}

func (e *ValidationError) Unwrap() []error {
	return e.Violations
}
