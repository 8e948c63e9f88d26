package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/bulkscroll/internal/domain"
)

func TestReindexTransform_CopiesIdentityIntoDestinationIndex(t *testing.T) {
	tr := &ReindexTransform{DestinationIndex: "dest-v2"}
	hits := []Hit{{Index: "src-v1", Type: "_doc", ID: "1", Routing: "r1", Version: 3, Source: map[string]any{"a": 1}}}

	bulk, err := tr.BuildBulk(hits)
	require.NoError(t, err)
	require.Len(t, bulk.Ops, 1)
	op := bulk.Ops[0]
	assert.Equal(t, "index", op.OpType)
	assert.Equal(t, "dest-v2", op.Index)
	assert.Equal(t, "1", op.ID)
	assert.Equal(t, "r1", op.Routing)
	assert.Equal(t, int64(3), op.Version)
	assert.Equal(t, map[string]any{"a": 1}, op.Source)
}

func TestReindexTransform_ScriptMutatingDataIsAllowed(t *testing.T) {
	tr := &ReindexTransform{
		DestinationIndex: "dest",
		Script: func(hit *Hit) error {
			hit.Source["tagged"] = true
			return nil
		},
	}
	bulk, err := tr.BuildBulk([]Hit{{Index: "src", ID: "1", Source: map[string]any{}}})
	require.NoError(t, err)
	assert.Equal(t, true, bulk.Ops[0].Source["tagged"])
}

func TestReindexTransform_ScriptMutatingIdentityIsRejected(t *testing.T) {
	tr := &ReindexTransform{
		DestinationIndex: "dest",
		Script: func(hit *Hit) error {
			hit.ID = "tampered"
			return nil
		},
	}
	_, err := tr.BuildBulk([]Hit{{Index: "src", ID: "1", Source: map[string]any{}}})
	var fieldErr domain.ForbiddenFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "_id", fieldErr.Field)
}

func TestReindexTransform_ScriptErrorPropagates(t *testing.T) {
	wantErr := errors.New("script failed")
	tr := &ReindexTransform{
		DestinationIndex: "dest",
		Script:           func(hit *Hit) error { return wantErr },
	}
	_, err := tr.BuildBulk([]Hit{{Index: "src", ID: "1"}})
	assert.ErrorIs(t, err, wantErr)
}

func TestUpdateByQueryTransform_ReindexesIntoSameIndex(t *testing.T) {
	tr := &UpdateByQueryTransform{}
	bulk, err := tr.BuildBulk([]Hit{{Index: "src", ID: "1", Source: map[string]any{"a": 1}}})
	require.NoError(t, err)
	require.Len(t, bulk.Ops, 1)
	assert.Equal(t, "src", bulk.Ops[0].Index)
}

func TestUpdateByQueryTransform_NoopDetectorDropsHit(t *testing.T) {
	tr := &UpdateByQueryTransform{
		Script: func(hit *Hit) error { return nil },
		NoopDetector: func(before, after Hit) bool {
			return true
		},
	}
	bulk, err := tr.BuildBulk([]Hit{{Index: "src", ID: "1", Source: map[string]any{}}})
	require.NoError(t, err)
	assert.True(t, bulk.Empty())
}

func TestUpdateByQueryTransform_ScriptMutatingRoutingIsRejected(t *testing.T) {
	tr := &UpdateByQueryTransform{
		Script: func(hit *Hit) error {
			hit.Routing = "other"
			return nil
		},
	}
	_, err := tr.BuildBulk([]Hit{{Index: "src", ID: "1", Routing: "r1"}})
	var fieldErr domain.ForbiddenFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "_routing", fieldErr.Field)
}

func TestDeleteByQueryTransform_EmitsDeleteOpsWithNoSource(t *testing.T) {
	tr := &DeleteByQueryTransform{}
	hits := []Hit{
		{Index: "src", ID: "1", Routing: "r1", Version: 5},
		{Index: "src", ID: "2"},
	}

	bulk, err := tr.BuildBulk(hits)
	require.NoError(t, err)
	require.Len(t, bulk.Ops, 2)
	for i, op := range bulk.Ops {
		assert.Equal(t, "delete", op.OpType)
		assert.Equal(t, hits[i].ID, op.ID)
		assert.Nil(t, op.Source)
	}
	assert.Equal(t, "r1", bulk.Ops[0].Routing)
	assert.Equal(t, int64(5), bulk.Ops[0].Version)
}

func TestDeleteByQueryTransform_EmptyHitsYieldsEmptyBulk(t *testing.T) {
	tr := &DeleteByQueryTransform{}
	bulk, err := tr.BuildBulk(nil)
	require.NoError(t, err)
	assert.True(t, bulk.Empty())
}
