package domain

import "sync/atomic"

// ProgressRecord accumulates outcome counts without blocking the driver
// (spec §4.1). Every counter is an atomic.Int64 so counting callbacks never
// contend with a concurrent Snapshot read; readers tolerate field-level
// tearing across a single snapshot (spec §9).
type ProgressRecord struct {
	total            atomic.Int64
	totalSet         atomic.Bool
	updated          atomic.Int64
	created          atomic.Int64
	deleted          atomic.Int64
	batches          atomic.Int64
	versionConflicts atomic.Int64
	noops            atomic.Int64
	retries          atomic.Int64

	reasonCancelled atomic.Value // string
}

// NewProgressRecord returns a zeroed record.
func NewProgressRecord() *ProgressRecord {
	return &ProgressRecord{}
}

// SetTotal records the learned total the first time it is called; further
// calls are a no-op. The source's set-once vs. overwrite-to-latest ambiguity
// (spec §9 Open Question) is resolved as set-once.
func (p *ProgressRecord) SetTotal(n int64) {
	if p.totalSet.CompareAndSwap(false, true) {
		p.total.Store(n)
	}
}

func (p *ProgressRecord) CountCreated()         { p.created.Add(1) }
func (p *ProgressRecord) CountUpdated()         { p.updated.Add(1) }
func (p *ProgressRecord) CountDeleted()         { p.deleted.Add(1) }
func (p *ProgressRecord) CountNoop()            { p.noops.Add(1) }
func (p *ProgressRecord) CountVersionConflict() { p.versionConflicts.Add(1) }
func (p *ProgressRecord) CountBatch()           { p.batches.Add(1) }
func (p *ProgressRecord) CountRetry()           { p.retries.Add(1) }

// SuccessfullyProcessed returns created + updated + deleted, read live.
func (p *ProgressRecord) SuccessfullyProcessed() int64 {
	return p.created.Load() + p.updated.Load() + p.deleted.Load()
}

// SetReasonCancelled records the human-readable cancellation reason. Only
// the first call has effect, mirroring CancellationHandle.Cancel's
// first-reason-wins rule.
func (p *ProgressRecord) SetReasonCancelled(reason string) {
	p.reasonCancelled.CompareAndSwap(nil, reason)
}

// Snapshot is an immutable point-in-time read of a ProgressRecord.
type Snapshot struct {
	Total            int64
	Updated          int64
	Created          int64
	Deleted          int64
	Batches          int64
	VersionConflicts int64
	Noops            int64
	Retries          int64
	ReasonCancelled  string
}

// SuccessfullyProcessed returns created + updated + deleted.
func (s Snapshot) SuccessfullyProcessed() int64 {
	return s.Created + s.Updated + s.Deleted
}

// Snapshot reads every counter into a value type, safely callable
// concurrently with counting (spec §4.1).
func (p *ProgressRecord) Snapshot() (Snapshot, error) {
	reason, _ := p.reasonCancelled.Load().(string)
	s := Snapshot{
		Total:            p.total.Load(),
		Updated:          p.updated.Load(),
		Created:          p.created.Load(),
		Deleted:          p.deleted.Load(),
		Batches:          p.batches.Load(),
		VersionConflicts: p.versionConflicts.Load(),
		Noops:            p.noops.Load(),
		Retries:          p.retries.Load(),
		ReasonCancelled:  reason,
	}
	return s, validateSnapshot(s)
}

// validateSnapshot is the on-wire validation path: constructing a snapshot
// with any negative field fails naming the offending field (spec §4.1, R2).
func validateSnapshot(s Snapshot) error {
	fields := []struct {
		name  string
		value int64
	}{
		{"total", s.Total},
		{"updated", s.Updated},
		{"created", s.Created},
		{"deleted", s.Deleted},
		{"batches", s.Batches},
		{"version_conflicts", s.VersionConflicts},
		{"noops", s.Noops},
		{"retries", s.Retries},
	}
	for _, f := range fields {
		if f.value < 0 {
			return NegativeCounterError{Field: f.name, Value: f.value}
		}
	}
	return nil
}
