package grpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/bulkscroll/internal/wire"
)

func TestJSONCodec_RoundTrip(t *testing.T) {
	in := StartRunRequest{
		OpType:    "reindex",
		Size:      100,
		Conflicts: "proceed",
	}

	c := jsonCodec{}
	data, err := c.Marshal(in)
	require.NoError(t, err)

	var out StartRunRequest
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestVariantForOpType(t *testing.T) {
	assert.Equal(t, wire.VariantDeleteOnly, variantForOpType("delete_by_query"))
	assert.Equal(t, wire.VariantUpdateOnly, variantForOpType("update_by_query"))
	assert.Equal(t, wire.VariantGeneric, variantForOpType("reindex"))
}
