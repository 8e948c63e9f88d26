package domain

import "sync/atomic"

// CancellationHandle is cooperative cancellation with a human-readable
// reason (spec §4.6). It does not interrupt in-flight I/O; cancellation
// takes effect only when the next state-transition callback observes it.
type CancellationHandle struct {
	cancelled atomic.Bool
	reason    atomic.Value // string
}

// NewCancellationHandle returns a handle in the not-cancelled state.
func NewCancellationHandle() *CancellationHandle {
	return &CancellationHandle{}
}

// Cancel marks the handle cancelled. Idempotent: only the first reason is
// retained.
func (h *CancellationHandle) Cancel(reason string) {
	if h.cancelled.CompareAndSwap(false, true) {
		h.reason.Store(reason)
	}
}

// IsCancelled is a cheap read, safe to consult at every state transition.
func (h *CancellationHandle) IsCancelled() bool {
	return h.cancelled.Load()
}

// Reason returns the retained cancellation reason, or "" if not cancelled.
func (h *CancellationHandle) Reason() string {
	r, _ := h.reason.Load().(string)
	return r
}
