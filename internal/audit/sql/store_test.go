package sql

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/bulkscroll/internal/audit"
	"github.com/rezkam/bulkscroll/internal/auth"
	"github.com/rezkam/bulkscroll/internal/domain"
	"github.com/rezkam/bulkscroll/internal/schedule"
)

// newTestStore opens a fresh in-memory sqlite database per test, migrated
// the same way NewStore migrates a real deployment.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	store, err := NewStore(context.Background(), DBConfig{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_AcceptMarkRunningCompleteRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := domain.NewRequestID()
	acceptedAt := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, store.Accept(ctx, id, "reindex", acceptedAt))

	rec, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, audit.RunAccepted, rec.State)
	assert.Equal(t, "reindex", rec.OpType)

	require.NoError(t, store.MarkRunning(ctx, id))
	rec, err = store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, audit.RunRunning, rec.State)

	completedAt := acceptedAt.Add(time.Minute)
	resp := domain.Response{
		RequestID: id,
		Progress: domain.Snapshot{
			Total: 100, Updated: 40, Created: 60, Batches: 10,
		},
		IndexingFailures: []domain.IndexingFailure{{Index: "a", ID: "1", Status: 409, Reason: "conflict"}},
	}
	require.NoError(t, store.Complete(ctx, id, resp, completedAt))

	rec, err = store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, audit.RunSucceeded, rec.State)
	require.NotNil(t, rec.Progress)
	assert.Equal(t, int64(100), rec.Progress.Total)
	assert.Equal(t, int64(60), rec.Progress.Created)
	require.Len(t, rec.IndexingFailures, 1)
	assert.Equal(t, "conflict", rec.IndexingFailures[0].Reason)
}

func TestStore_CompleteWithCancellationReasonMarksCanceled(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := domain.NewRequestID()
	require.NoError(t, store.Accept(ctx, id, "delete_by_query", time.Now().UTC()))

	resp := domain.Response{
		RequestID: id,
		Progress:  domain.Snapshot{ReasonCancelled: "user requested"},
	}
	require.NoError(t, store.Complete(ctx, id, resp, time.Now().UTC()))

	rec, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, audit.RunCanceled, rec.State)
	assert.Equal(t, "user requested", rec.Progress.ReasonCancelled)
}

func TestStore_FailRecordsReason(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := domain.NewRequestID()
	require.NoError(t, store.Accept(ctx, id, "update_by_query", time.Now().UTC()))
	require.NoError(t, store.Fail(ctx, id, "backend unreachable", time.Now().UTC()))

	rec, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, audit.RunFailed, rec.State)
	assert.Equal(t, "backend unreachable", rec.FailureReason)
}

func TestStore_GetUnknownRequestReturnsErrRecordNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), domain.NewRequestID())
	assert.ErrorIs(t, err, audit.ErrRecordNotFound)
}

func TestTemplateStore_CreateDueTemplatesAdvance(t *testing.T) {
	store := newTestStore(t)
	templates := NewTemplateStore(store)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	tmpl := schedule.Template{
		TemplateID:       uuid.NewString(),
		OpType:           "reindex",
		Pattern:          schedule.PatternDaily,
		Interval:         1,
		SearchSource:     domain.SearchSource{"query": map[string]any{"match_all": map[string]any{}}},
		Size:             500,
		Conflicts:        domain.ConflictAbort,
		DestinationIndex: "dest-v2",
		NextRunAt:        now.Add(-time.Minute),
		Enabled:          true,
	}
	require.NoError(t, templates.Create(ctx, tmpl))

	due, err := templates.DueTemplates(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, tmpl.TemplateID, due[0].TemplateID)
	assert.Equal(t, "dest-v2", due[0].DestinationIndex)
	assert.Equal(t, domain.ConflictAbort, due[0].Conflicts)

	advanced := due[0].Advance(now)
	require.NoError(t, templates.Advance(ctx, advanced))

	due, err = templates.DueTemplates(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, due, "next_run_at should have moved past now after Advance")
}

func TestTemplateStore_DueTemplatesExcludesDisabled(t *testing.T) {
	store := newTestStore(t)
	templates := NewTemplateStore(store)
	ctx := context.Background()
	now := time.Now().UTC()

	tmpl := schedule.Template{
		TemplateID:   uuid.NewString(),
		OpType:       "update_by_query",
		Pattern:      schedule.PatternWeekly,
		Interval:     1,
		SearchSource: domain.SearchSource{},
		Conflicts:    domain.ConflictProceed,
		NextRunAt:    now.Add(-time.Hour),
		Enabled:      false,
	}
	require.NoError(t, templates.Create(ctx, tmpl))

	due, err := templates.DueTemplates(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestKeyStore_CreateGetUpdateLastUsed(t *testing.T) {
	store := newTestStore(t)
	keys := NewKeyStore(store)
	ctx := context.Background()

	id := uuid.New()
	rec := auth.KeyRecord{ID: id, ShortToken: "short123", LongSecretHash: "hashedvalue"}
	require.NoError(t, keys.Create(ctx, rec))

	got, err := keys.GetByShortToken(ctx, "short123")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "hashedvalue", got.LongSecretHash)
	assert.Nil(t, got.ExpiresAt)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, keys.UpdateLastUsed(ctx, id, at))
}

func TestKeyStore_CreateWithExpiry(t *testing.T) {
	store := newTestStore(t)
	keys := NewKeyStore(store)
	ctx := context.Background()

	expires := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	id := uuid.New()
	require.NoError(t, keys.Create(ctx, auth.KeyRecord{
		ID: id, ShortToken: "expiring", LongSecretHash: "h", ExpiresAt: &expires,
	}))

	got, err := keys.GetByShortToken(ctx, "expiring")
	require.NoError(t, err)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, got.ExpiresAt.Equal(expires))
}

func TestKeyStore_GetByShortToken_Unknown(t *testing.T) {
	store := newTestStore(t)
	keys := NewKeyStore(store)
	_, err := keys.GetByShortToken(context.Background(), "nope")
	assert.ErrorIs(t, err, auth.ErrKeyNotFound)
}
