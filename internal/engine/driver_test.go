package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/bulkscroll/internal/domain"
)

// fakeSearchClient is a hand-rolled mock (mirroring the teacher's
// mockRepository pattern) rather than testify/mock, since the engine's
// collaborator interfaces are narrow and the test bodies read clearer as
// plain Go closures than as expectation DSLs.
type fakeSearchClient struct {
	mu sync.Mutex

	searchResp  SearchResponse
	searchErr   error
	scrollResps []SearchResponse
	scrollErrs  []error
	scrollCalls int

	bulkFunc func(req BulkRequest) (BulkResponse, error)

	refreshFunc func(indices []string) (RefreshResponse, error)
	refreshErr  error

	clearScrollCalls []string
}

func (f *fakeSearchClient) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	return f.searchResp, f.searchErr
}

func (f *fakeSearchClient) Scroll(ctx context.Context, scrollID string, keepalive int64, req SearchRequest) (SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.scrollCalls
	f.scrollCalls++
	if i < len(f.scrollResps) {
		var err error
		if i < len(f.scrollErrs) {
			err = f.scrollErrs[i]
		}
		return f.scrollResps[i], err
	}
	return SearchResponse{}, nil
}

func (f *fakeSearchClient) ClearScroll(ctx context.Context, scrollIDs []string) (ClearResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearScrollCalls = append(f.clearScrollCalls, scrollIDs...)
	return ClearResponse{Succeeded: true}, nil
}

func (f *fakeSearchClient) Refresh(ctx context.Context, indices []string) (RefreshResponse, error) {
	if f.refreshFunc != nil {
		return f.refreshFunc(indices)
	}
	return RefreshResponse{}, f.refreshErr
}

func (f *fakeSearchClient) Bulk(ctx context.Context, req BulkRequest) (BulkResponse, error) {
	return f.bulkFunc(req)
}

func (f *fakeSearchClient) clearScrollCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clearScrollCalls)
}

type identityTransform struct{}

func (identityTransform) BuildBulk(hits []Hit) (Bulk, error) {
	ops := make([]BulkOp, len(hits))
	for i, h := range hits {
		ops[i] = BulkOp{OpType: "index", Index: h.Index, ID: h.ID}
	}
	return Bulk{Ops: ops}, nil
}

type capturingListener struct {
	mu       sync.Mutex
	response *domain.Response
	err      error
	calls    int
}

func (l *capturingListener) OnResponse(resp domain.Response) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.response = &resp
	l.calls++
}

func (l *capturingListener) OnError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
	l.calls++
}

func waitForTerminal(t *testing.T, l *capturingListener) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		l.mu.Lock()
		calls := l.calls
		l.mu.Unlock()
		if calls > 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("driver never reached a terminal callback")
}

// TestScenario1_EmptyResultSet: search returns hits.total = 0. Expect a
// Response with all counters 0, batches = 0, no refresh even if
// refresh=true, scroll cleared.
func TestScenario1_EmptyResultSet(t *testing.T) {
	client := &fakeSearchClient{
		searchResp: SearchResponse{Total: 0, Hits: nil, ScrollID: "scroll-1"},
	}
	req := domain.NewRequest(domain.WithRefresh(true))
	listener := &capturingListener{}
	d := NewScrollDriver(req, client, identityTransform{}, listener, nil)

	d.Run(context.Background(), "8.0.0")
	waitForTerminal(t, listener)

	require.Nil(t, listener.err)
	require.NotNil(t, listener.response)
	assert.Equal(t, int64(0), listener.response.Progress.Total)
	assert.Equal(t, int64(0), listener.response.Progress.Batches)
	assert.Equal(t, 1, client.clearScrollCallCount())
}

// TestScenario2_SingleBatchThreeOutcomes: a batch of 3 items yielding one
// create, one update, one delete.
func TestScenario2_SingleBatchThreeOutcomes(t *testing.T) {
	client := &fakeSearchClient{
		searchResp: SearchResponse{
			Total:    3,
			ScrollID: "scroll-1",
			Hits: []Hit{
				{Index: "idx", ID: "1"},
				{Index: "idx", ID: "2"},
				{Index: "idx", ID: "3"},
			},
		},
		scrollResps: []SearchResponse{{Total: 3, Hits: nil, ScrollID: "scroll-1"}},
		bulkFunc: func(req BulkRequest) (BulkResponse, error) {
			return BulkResponse{Items: []BulkResponseItem{
				{OpType: "index", Index: "idx", ID: "1", Created: true},
				{OpType: "index", Index: "idx", ID: "2", Created: false},
				{OpType: "delete", Index: "idx", ID: "3"},
			}}, nil
		},
	}
	req := domain.NewRequest()
	listener := &capturingListener{}
	d := NewScrollDriver(req, client, identityTransform{}, listener, nil)

	d.Run(context.Background(), "8.0.0")
	waitForTerminal(t, listener)

	require.Nil(t, listener.err)
	require.NotNil(t, listener.response)
	snap := listener.response.Progress
	assert.Equal(t, int64(1), snap.Created)
	assert.Equal(t, int64(1), snap.Updated)
	assert.Equal(t, int64(1), snap.Deleted)
	assert.Equal(t, int64(1), snap.Batches)
}

// TestScenario5_VersionConflictsProceed: 10 items, 4 version-conflicts,
// abort_on_version_conflict = false.
func TestScenario5_VersionConflictsProceed(t *testing.T) {
	hits := make([]Hit, 10)
	for i := range hits {
		hits[i] = Hit{Index: "idx", ID: string(rune('a' + i))}
	}
	items := make([]BulkResponseItem, 10)
	for i := range items {
		if i < 4 {
			items[i] = BulkResponseItem{OpType: "index", Index: "idx", ID: hits[i].ID, Failed: true, Status: versionConflictStatus}
		} else {
			items[i] = BulkResponseItem{OpType: "index", Index: "idx", ID: hits[i].ID, Created: true}
		}
	}
	client := &fakeSearchClient{
		searchResp: SearchResponse{Total: 10, ScrollID: "scroll-1", Hits: hits},
		scrollResps: []SearchResponse{
			{Total: 10, Hits: nil, ScrollID: "scroll-1"},
		},
		bulkFunc: func(req BulkRequest) (BulkResponse, error) {
			return BulkResponse{Items: items}, nil
		},
	}
	req := domain.NewRequest(domain.WithConflicts(domain.ConflictProceed))
	listener := &capturingListener{}
	d := NewScrollDriver(req, client, identityTransform{}, listener, nil)

	d.Run(context.Background(), "8.0.0")
	waitForTerminal(t, listener)

	require.Nil(t, listener.err)
	require.NotNil(t, listener.response)
	snap := listener.response.Progress
	assert.Equal(t, int64(4), snap.VersionConflicts)
	assert.Empty(t, listener.response.IndexingFailures)
}

// TestScenario6_CancellationMidBulking: cancel after batch dispatched.
// Expect a terminal Response carrying reason_cancelled, no refresh, scroll
// cleared.
func TestScenario6_CancellationMidBulking(t *testing.T) {
	var d *ScrollDriver
	client := &fakeSearchClient{
		searchResp: SearchResponse{
			Total:    2,
			ScrollID: "scroll-1",
			Hits:     []Hit{{Index: "idx", ID: "1"}, {Index: "idx", ID: "2"}},
		},
		bulkFunc: func(req BulkRequest) (BulkResponse, error) {
			d.Cancel("operator stop")
			return BulkResponse{Items: []BulkResponseItem{
				{OpType: "index", Index: "idx", ID: "1", Created: true},
			}}, nil
		},
	}
	req := domain.NewRequest(domain.WithRefresh(true))
	listener := &capturingListener{}
	d = NewScrollDriver(req, client, identityTransform{}, listener, nil)

	d.Run(context.Background(), "8.0.0")
	waitForTerminal(t, listener)

	require.Nil(t, listener.err)
	require.NotNil(t, listener.response)
	assert.Equal(t, "operator stop", listener.response.Progress.ReasonCancelled)
	assert.Equal(t, 1, client.clearScrollCallCount())
}

// TestScenario7_ShardFailureOnScroll: second scroll response has a shard
// failure. Expect terminal Response carries that shard failure, no further
// scroll, scroll cleared.
func TestScenario7_ShardFailureOnScroll(t *testing.T) {
	client := &fakeSearchClient{
		searchResp: SearchResponse{Total: 1, ScrollID: "scroll-1", Hits: []Hit{{Index: "idx", ID: "1"}}},
		scrollResps: []SearchResponse{
			{ScrollID: "scroll-1", ShardFailures: []ShardFailure{{Index: "idx", Shard: 0, Reason: "node unavailable"}}},
		},
		bulkFunc: func(req BulkRequest) (BulkResponse, error) {
			return BulkResponse{Items: []BulkResponseItem{{OpType: "index", Index: "idx", ID: "1", Created: true}}}, nil
		},
	}
	req := domain.NewRequest()
	listener := &capturingListener{}
	d := NewScrollDriver(req, client, identityTransform{}, listener, nil)

	d.Run(context.Background(), "8.0.0")
	waitForTerminal(t, listener)

	require.Nil(t, listener.err)
	require.NotNil(t, listener.response)
	require.Len(t, listener.response.SearchFailures, 1)
	assert.Equal(t, "node unavailable", listener.response.SearchFailures[0].Reason)
	assert.Equal(t, 1, client.clearScrollCallCount())
	assert.Equal(t, 1, client.scrollCalls)
}

// TestScenario8_RefreshToggling covers the (refresh, destinations)
// combinations. A nil refresh and false are the same Go bool here, so the
// table has three cases.
func TestScenario8_RefreshToggling(t *testing.T) {
	tests := []struct {
		name         string
		refresh      bool
		hasHits      bool
		wantRefresh  bool
	}{
		{"refresh false, destinations yes", false, true, false},
		{"refresh true, destinations yes", true, true, true},
		{"refresh true, destinations no", true, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var hits []Hit
			var bulkFunc func(req BulkRequest) (BulkResponse, error)
			if tc.hasHits {
				hits = []Hit{{Index: "idx", ID: "1"}}
				bulkFunc = func(req BulkRequest) (BulkResponse, error) {
					return BulkResponse{Items: []BulkResponseItem{{OpType: "index", Index: "idx", ID: "1", Created: true}}}, nil
				}
			}

			refreshCalled := false
			client := &fakeSearchClient{
				searchResp: SearchResponse{Total: int64(len(hits)), ScrollID: "scroll-1", Hits: hits},
				scrollResps: []SearchResponse{
					{ScrollID: "scroll-1", Hits: nil},
				},
				bulkFunc: bulkFunc,
				refreshFunc: func(indices []string) (RefreshResponse, error) {
					refreshCalled = true
					return RefreshResponse{}, nil
				},
			}
			req := domain.NewRequest(domain.WithRefresh(tc.refresh))
			listener := &capturingListener{}
			d := NewScrollDriver(req, client, identityTransform{}, listener, nil)

			d.Run(context.Background(), "8.0.0")
			waitForTerminal(t, listener)

			require.Nil(t, listener.err)
			assert.Equal(t, tc.wantRefresh, refreshCalled)
		})
	}
}

func TestClusterVersionTooOld_FailsImmediately(t *testing.T) {
	client := &fakeSearchClient{}
	req := domain.NewRequest()
	listener := &capturingListener{}
	d := NewScrollDriver(req, client, identityTransform{}, listener, nil)

	d.Run(context.Background(), "1.7.0")
	waitForTerminal(t, listener)

	require.Error(t, listener.err)
	assert.Contains(t, listener.err.Error(), "has not been upgraded to 2.3")
	assert.Nil(t, listener.response)
}

func TestSchedulingRejection_IsFatal(t *testing.T) {
	client := &fakeSearchClient{
		searchResp: SearchResponse{Total: 1, ScrollID: "scroll-1", Hits: []Hit{{Index: "idx", ID: "1"}}},
	}
	req := domain.NewRequest()
	listener := &capturingListener{}
	rejectingPool := rejectPoolFunc(func(fn func()) error { return errors.New("pool exhausted") })
	d := NewScrollDriver(req, client, identityTransform{}, listener, rejectingPool)

	d.Run(context.Background(), "8.0.0")
	waitForTerminal(t, listener)

	require.Error(t, listener.err)
	var schedErr SchedulingRejectedError
	assert.ErrorAs(t, listener.err, &schedErr)
}

type rejectPoolFunc func(fn func()) error

func (f rejectPoolFunc) Submit(fn func()) error { return f(fn) }
