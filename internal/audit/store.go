// Package audit persists the lifecycle of every bulk-by-scroll run: when it
// was accepted, its envelope, and its terminal outcome. The engine itself is
// storage-agnostic (spec §4.5 never touches a database); audit is wired in
// by the control-plane server (internal/transport/grpc) around
// engine.ScrollDriver.Run.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/rezkam/bulkscroll/internal/domain"
)

// ErrRecordNotFound is returned by Store.Get when no run with that
// RequestID was ever recorded.
var ErrRecordNotFound = errors.New("audit: record not found")

// RunState is the lifecycle stage of a recorded run, independent of the
// in-process engine.State (spec §4.5) since a run may be recorded long
// after the driver that produced it has exited.
type RunState string

const (
	RunAccepted  RunState = "accepted"
	RunRunning   RunState = "running"
	RunSucceeded RunState = "succeeded"
	RunFailed    RunState = "failed"
	RunCanceled  RunState = "canceled"
)

// Record is one run's audit trail: its accepted envelope plus whatever
// terminal outcome it reached.
type Record struct {
	RequestID domain.RequestID
	State     RunState

	// OpType distinguishes reindex / update_by_query / delete_by_query for
	// reporting; the engine itself does not need this tag.
	OpType string

	AcceptedAt  time.Time
	CompletedAt time.Time

	// Progress is the last known snapshot; populated once the driver has
	// reported at least one terminal callback.
	Progress *domain.Snapshot

	// FailureReason is set when State is RunFailed.
	FailureReason string

	IndexingFailures []domain.IndexingFailure
	SearchFailures   []domain.SearchFailure
}

// Store is the persistence contract the control plane uses to track runs
// across StartRun/GetStatus/CancelRun calls (spec §6, "control plane RPCs").
type Store interface {
	// Accept records a newly admitted run before its driver starts.
	Accept(ctx context.Context, id domain.RequestID, opType string, acceptedAt time.Time) error

	// MarkRunning transitions an accepted run to running, once its driver
	// loop has started.
	MarkRunning(ctx context.Context, id domain.RequestID) error

	// Complete records a run's terminal domain.Response.
	Complete(ctx context.Context, id domain.RequestID, resp domain.Response, completedAt time.Time) error

	// Fail records a run's terminal error.
	Fail(ctx context.Context, id domain.RequestID, reason string, completedAt time.Time) error

	// Get returns the current record for id, or ErrRecordNotFound.
	Get(ctx context.Context, id domain.RequestID) (Record, error)
}
