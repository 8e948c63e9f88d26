// Package engine implements the bulk-by-scroll control loop: search,
// scroll, bulk, retry, cancel, terminate, refresh (spec §4.5). One
// ScrollDriver owns one cursor, one in-flight bulk at a time, and one
// progress record — a single-writer state machine per request.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rezkam/bulkscroll/internal/domain"
)

// MinimumClusterVersion is the lowest backend version the engine will run
// against (spec §4.5 §1).
const MinimumClusterVersion = "2.3.0"

// ScrollDriver is the control-loop state machine of spec §4.5.
type ScrollDriver struct {
	Request   *domain.Request
	Client    SearchClient
	Transform DocumentTransform
	Pool      WorkerPool
	Listener  Listener

	Progress *domain.ProgressRecord
	state    *domain.ScrollState

	driverState State
	retry       *RetryExecutor
}

// NewScrollDriver wires the collaborators of one run. pool may be nil, in
// which case GoPool{} is used.
func NewScrollDriver(req *domain.Request, client SearchClient, transform DocumentTransform, listener Listener, pool WorkerPool) *ScrollDriver {
	if pool == nil {
		pool = GoPool{}
	}
	progress := domain.NewProgressRecord()
	return &ScrollDriver{
		Request:     req,
		Client:      client,
		Transform:   transform,
		Pool:        pool,
		Listener:    listener,
		Progress:    progress,
		state:       domain.NewScrollState(),
		driverState: StateInitial,
		retry:       NewRetryExecutor(req.RetryBackoffInitial, req.MaxRetries, progress),
	}
}

// Cancel requests cooperative cancellation. It takes effect the next time a
// state transition observes it (spec §4.6).
func (d *ScrollDriver) Cancel(reason string) {
	d.state.Cancellation.Cancel(reason)
}

// State reports the driver's current state, for observability and tests.
func (d *ScrollDriver) State() State {
	return d.driverState
}

// Run drives the request to completion, calling exactly one of
// Listener.OnResponse / Listener.OnError before returning (spec §7).
// clusterVersion is the smallest reported version across the cluster.
func (d *ScrollDriver) Run(ctx context.Context, clusterVersion string) {
	if err := checkClusterVersion(d.Request, clusterVersion); err != nil {
		d.finish(ctx, err, nil, nil, false)
		return
	}

	d.state.StartedAt = time.Now()
	d.driverState = StateScrolling

	resp, err := d.Client.Search(ctx, d.buildSearchRequest())
	if err != nil {
		d.finish(ctx, err, nil, nil, false)
		return
	}

	d.loop(ctx, resp)
}

// checkClusterVersion enforces the versioned-refusal precondition of spec
// §4.5 §1. The exact substring is part of the observable contract.
func checkClusterVersion(req *domain.Request, clusterVersion string) error {
	if clusterVersion < MinimumClusterVersion {
		return fmt.Errorf("Refusing to execute [%s] because the entire cluster has not been upgraded to 2.3: %w",
			req.ID, domain.ErrClusterTooOld)
	}
	return nil
}

// loop drives scrolling→bulking→scrolling cycles starting from resp, until
// termination.
func (d *ScrollDriver) loop(ctx context.Context, resp SearchResponse) {
	for {
		if d.state.Cancellation.IsCancelled() {
			d.terminate(ctx, nil, nil, false)
			return
		}

		d.state.ScrollID = resp.ScrollID

		if len(resp.ShardFailures) > 0 || resp.TimedOut {
			d.terminate(ctx, nil, toSearchFailures(resp.ShardFailures), resp.TimedOut)
			return
		}

		d.Progress.SetTotal(clampTotal(resp.Total, d.Request.Size))

		outcome, err := d.dispatchBatch(ctx, resp.Hits)
		if err != nil {
			d.finish(ctx, err, nil, nil, false)
			return
		}

		switch outcome.action {
		case batchTerminate:
			d.terminate(ctx, nil, nil, false)
			return
		case batchSkip:
			// empty bulk: advance scroll without dispatching one (spec §4.5 §2).
		case batchSendBulk:
			d.driverState = StateBulking
			bulkResp, err := d.sendBulk(ctx, outcome.bulk)
			if err != nil {
				d.finish(ctx, err, nil, nil, false)
				return
			}
			indexingFailures, term, err := d.onBulkResponse(bulkResp)
			if err != nil {
				d.finish(ctx, err, nil, nil, false)
				return
			}
			if term {
				d.terminate(ctx, indexingFailures, nil, false)
				return
			}
		}

		if d.state.Cancellation.IsCancelled() {
			d.terminate(ctx, nil, nil, false)
			return
		}

		d.driverState = StateScrolling
		next, err := d.Client.Scroll(ctx, d.state.ScrollID, int64(d.Request.ScrollKeepalive), d.buildSearchRequest())
		if err != nil {
			d.finish(ctx, err, nil, nil, false)
			return
		}
		resp = next
	}
}

type batchAction int

const (
	batchTerminate batchAction = iota
	batchSkip
	batchSendBulk
)

type batchOutcome struct {
	action batchAction
	bulk   Bulk
}

// dispatchBatch schedules the batch handler on the worker pool (spec §4.5
// §2): truncates hits to the remaining size budget, runs the document
// transform, and decides whether to skip (empty bulk / empty batch) or send
// a bulk. Scheduling rejection is fatal.
func (d *ScrollDriver) dispatchBatch(ctx context.Context, hits []Hit) (batchOutcome, error) {
	if len(hits) == 0 {
		return batchOutcome{action: batchTerminate}, nil
	}

	type result struct {
		outcome batchOutcome
		err     error
	}
	resultCh := make(chan result, 1)

	submitErr := d.Pool.Submit(func() {
		d.Progress.CountBatch()

		remaining := hits
		if d.Request.Size != domain.SizeUnlimited {
			budget := d.Request.Size - int(d.Progress.SuccessfullyProcessed())
			if budget < 0 {
				budget = 0
			}
			if budget < len(remaining) {
				remaining = remaining[:budget]
			}
		}

		bulk, err := d.Transform.BuildBulk(remaining)
		if err != nil {
			resultCh <- result{err: err}
			return
		}
		if bulk.Empty() {
			resultCh <- result{outcome: batchOutcome{action: batchSkip}}
			return
		}
		resultCh <- result{outcome: batchOutcome{action: batchSendBulk, bulk: bulk}}
	})
	if submitErr != nil {
		return batchOutcome{}, SchedulingRejectedError{Err: submitErr}
	}

	select {
	case <-ctx.Done():
		return batchOutcome{}, ctx.Err()
	case r := <-resultCh:
		return r.outcome, r.err
	}
}

// sendBulk dispatches bulk via the retry executor wired to RetryPolicy
// (spec §4.5 §3).
func (d *ScrollDriver) sendBulk(ctx context.Context, bulk Bulk) (BulkResponse, error) {
	if d.state.Cancellation.IsCancelled() {
		return BulkResponse{}, nil
	}

	req := BulkRequest{
		Ops:         bulk.Ops,
		TimeoutNano: int64(d.Request.Timeout),
		Consistency: string(d.Request.Consistency),
		Context:     d.Request.Context,
		Headers:     d.Request.Headers,
	}

	var resp BulkResponse
	err := d.retry.Do(ctx, func(ctx context.Context) error {
		r, err := d.Client.Bulk(ctx, req)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	return resp, err
}

// onBulkResponse classifies every item, updates progress, and reports
// whether termination should begin (spec §4.5 §4). An unknown op_type is a
// programmer error (spec §9 "Dynamic dispatch on op_type strings") and
// fails fatally rather than being silently ignored.
func (d *ScrollDriver) onBulkResponse(resp BulkResponse) (failures []domain.IndexingFailure, terminate bool, err error) {
	if d.state.Cancellation.IsCancelled() {
		return nil, true, nil
	}

	for _, item := range resp.Items {
		if item.Failed {
			if item.Status == versionConflictStatus {
				d.Progress.CountVersionConflict()
				if d.Request.AbortOnVersionConflict() {
					failures = append(failures, domain.IndexingFailure{
						Index: item.Index, ID: item.ID, Status: item.Status, Reason: item.Reason,
					})
				}
				continue
			}
			failures = append(failures, domain.IndexingFailure{
				Index: item.Index, ID: item.ID, Status: item.Status, Reason: item.Reason,
			})
			continue
		}

		switch item.OpType {
		case "index", "create":
			if item.Created {
				d.Progress.CountCreated()
			} else {
				d.Progress.CountUpdated()
			}
		case "delete":
			d.Progress.CountDeleted()
		default:
			return nil, false, Fatal(UnknownOpTypeError{OpType: item.OpType})
		}
		d.state.AddDestinationIndex(item.Index)
	}

	if len(failures) > 0 {
		return failures, true, nil
	}
	if d.Request.Size != domain.SizeUnlimited && int(d.Progress.SuccessfullyProcessed()) >= d.Request.Size {
		return nil, true, nil
	}
	return nil, false, nil
}

// versionConflictStatus is the HTTP-like status code the backend reports
// for an optimistic-concurrency failure.
const versionConflictStatus = 409

// terminate implements normal termination (spec §4.5 §6): refresh
// destination indices unless cancelled, refresh=false, or nothing was
// touched.
func (d *ScrollDriver) terminate(ctx context.Context, indexingFailures []domain.IndexingFailure, searchFailures []domain.SearchFailure, timedOut bool) {
	d.driverState = StateTerminating

	if d.state.Cancellation.IsCancelled() || !d.Request.Refresh || len(d.state.DestinationIndices) == 0 {
		d.finish(ctx, nil, indexingFailures, searchFailures, timedOut)
		return
	}

	_, err := d.Client.Refresh(ctx, d.state.DestinationIndexList())
	if err != nil {
		d.finish(ctx, FatalError{Err: err}, indexingFailures, searchFailures, timedOut)
		return
	}
	d.finish(ctx, nil, indexingFailures, searchFailures, timedOut)
}

// finish releases the scroll (fire-and-forget, best-effort on every exit
// path) and emits exactly one terminal callback (spec §4.5 §7).
func (d *ScrollDriver) finish(ctx context.Context, err error, indexingFailures []domain.IndexingFailure, searchFailures []domain.SearchFailure, timedOut bool) {
	if d.state.Terminated {
		return
	}

	if d.state.ScrollID != "" {
		go func(scrollID string) {
			// Best-effort: the scroll context is released even on
			// cancellation or catastrophic failure. The caller never
			// awaits this.
			_, _ = d.Client.ClearScroll(context.Background(), []string{scrollID})
		}(d.state.ScrollID)
	}

	d.state.Terminated = true
	d.driverState = StateDone

	if err != nil {
		if d.state.Cancellation.IsCancelled() {
			// Cancellation is never an error (spec §7); fall through to a
			// Response carrying reason_cancelled instead.
		} else {
			d.Listener.OnError(err)
			return
		}
	}

	if reason := d.state.Cancellation.Reason(); reason != "" {
		d.Progress.SetReasonCancelled(reason)
	}

	snap, snapErr := d.Progress.Snapshot()
	if snapErr != nil {
		d.Listener.OnError(snapErr)
		return
	}

	d.Listener.OnResponse(domain.Response{
		RequestID:        d.Request.ID,
		Elapsed:          time.Since(d.state.StartedAt).Nanoseconds(),
		Progress:         snap,
		IndexingFailures: indexingFailures,
		SearchFailures:   searchFailures,
		TimedOut:         timedOut,
	})
}

func (d *ScrollDriver) buildSearchRequest() SearchRequest {
	return SearchRequest{
		SearchSource: d.Request.SearchSource,
		Context:      d.Request.Context,
		Headers:      d.Request.Headers,
	}
}

func clampTotal(total int64, size int) int64 {
	if size == domain.SizeUnlimited {
		return total
	}
	if int64(size) < total {
		return int64(size)
	}
	return total
}

func toSearchFailures(in []ShardFailure) []domain.SearchFailure {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.SearchFailure, len(in))
	for i, f := range in {
		out[i] = domain.SearchFailure{Index: f.Index, Shard: f.Shard, Reason: f.Reason}
	}
	return out
}
