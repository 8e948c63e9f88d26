package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/bulkscroll/internal/domain"
)

func TestEncodeDecodeRequest_RoundTrip(t *testing.T) {
	req := domain.NewRequest(
		domain.WithSize(500),
		domain.WithConflicts(domain.ConflictProceed),
		domain.WithRefresh(true),
		domain.WithTimeout(30*time.Second),
		domain.WithConsistency(domain.ConsistencyQuorum),
		domain.WithRetryPolicy(250*time.Millisecond, 5),
	)
	searchPayload := []byte(`{"query":{"match_all":{}}}`)

	buf, err := EncodeRequest(req, searchPayload)
	require.NoError(t, err)

	decoded, err := DecodeRequest(buf)
	require.NoError(t, err)

	assert.Equal(t, searchPayload, decoded.SearchRequest)
	assert.Equal(t, domain.ConflictProceed, decoded.Conflicts)
	assert.Equal(t, 500, decoded.Size)
	assert.True(t, decoded.Refresh)
	assert.Equal(t, int64(30*time.Second), decoded.Timeout)
	assert.Equal(t, domain.ConsistencyQuorum, decoded.Consistency)
	assert.Equal(t, int64(250*time.Millisecond), decoded.RetryInitial)
	assert.Equal(t, 5, decoded.MaxRetries)
}

func TestEncodeDecodeRequest_DefaultsRoundTrip(t *testing.T) {
	req := domain.NewRequest()

	buf, err := EncodeRequest(req, nil)
	require.NoError(t, err)

	decoded, err := DecodeRequest(buf)
	require.NoError(t, err)

	assert.Equal(t, domain.ConflictAbort, decoded.Conflicts)
	assert.Equal(t, domain.SizeUnlimited, decoded.Size)
	assert.False(t, decoded.Refresh)
	assert.Equal(t, domain.ConsistencyDefault, decoded.Consistency)
	assert.Equal(t, domain.DefaultMaxRetries, decoded.MaxRetries)
}
