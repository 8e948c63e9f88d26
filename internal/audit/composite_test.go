package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/bulkscroll/internal/domain"
)

// fakeStore is a minimal in-memory audit.Store, mirroring the teacher's
// map-backed mock repositories.
type fakeStore struct {
	records map[domain.RequestID]Record
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[domain.RequestID]Record)}
}

func (f *fakeStore) Accept(ctx context.Context, id domain.RequestID, opType string, acceptedAt time.Time) error {
	f.records[id] = Record{RequestID: id, OpType: opType, State: RunAccepted, AcceptedAt: acceptedAt}
	return nil
}

func (f *fakeStore) MarkRunning(ctx context.Context, id domain.RequestID) error {
	rec := f.records[id]
	rec.State = RunRunning
	f.records[id] = rec
	return nil
}

func (f *fakeStore) Complete(ctx context.Context, id domain.RequestID, resp domain.Response, completedAt time.Time) error {
	rec := f.records[id]
	rec.State = RunSucceeded
	rec.CompletedAt = completedAt
	rec.Progress = &resp.Progress
	f.records[id] = rec
	return nil
}

func (f *fakeStore) Fail(ctx context.Context, id domain.RequestID, reason string, completedAt time.Time) error {
	rec := f.records[id]
	rec.State = RunFailed
	rec.FailureReason = reason
	f.records[id] = rec
	return nil
}

func (f *fakeStore) Get(ctx context.Context, id domain.RequestID) (Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return rec, nil
}

type fakeArchiver struct {
	puts []domain.RequestID
	err  error
}

func (a *fakeArchiver) Put(ctx context.Context, id domain.RequestID, resp domain.Response) error {
	if a.err != nil {
		return a.err
	}
	a.puts = append(a.puts, id)
	return nil
}

func TestCompositeStore_CompleteArchivesWhenConfigured(t *testing.T) {
	base := newFakeStore()
	archiver := &fakeArchiver{}
	composite := NewCompositeStore(base, archiver)

	id := domain.NewRequestID()
	require.NoError(t, composite.Accept(context.Background(), id, "reindex", time.Now().UTC()))

	resp := domain.Response{RequestID: id, Progress: domain.Snapshot{Total: 10}}
	require.NoError(t, composite.Complete(context.Background(), id, resp, time.Now().UTC()))

	rec, err := composite.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, RunSucceeded, rec.State)
	assert.Equal(t, []domain.RequestID{id}, archiver.puts)
}

func TestCompositeStore_CompleteWithoutArchiverStillRecords(t *testing.T) {
	base := newFakeStore()
	composite := NewCompositeStore(base, nil)

	id := domain.NewRequestID()
	require.NoError(t, composite.Accept(context.Background(), id, "reindex", time.Now().UTC()))
	require.NoError(t, composite.Complete(context.Background(), id, domain.Response{RequestID: id}, time.Now().UTC()))

	rec, err := composite.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, RunSucceeded, rec.State)
}

func TestCompositeStore_ArchiverFailureDoesNotFailComplete(t *testing.T) {
	base := newFakeStore()
	archiver := &fakeArchiver{err: errors.New("bucket unreachable")}
	composite := NewCompositeStore(base, archiver)

	id := domain.NewRequestID()
	require.NoError(t, composite.Accept(context.Background(), id, "reindex", time.Now().UTC()))

	err := composite.Complete(context.Background(), id, domain.Response{RequestID: id}, time.Now().UTC())
	assert.NoError(t, err, "archival failures must not fail the run's completion record")

	rec, err := composite.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, RunSucceeded, rec.State)
}
