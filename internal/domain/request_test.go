package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest_Defaults(t *testing.T) {
	r := NewRequest()

	assert.Equal(t, SizeUnlimited, r.Size)
	assert.Equal(t, ConflictAbort, r.Conflicts)
	assert.True(t, r.AbortOnVersionConflict())
	assert.False(t, r.Refresh)
	assert.Equal(t, ConsistencyDefault, r.Consistency)
	assert.Equal(t, DefaultRetryBackoffInitial, r.RetryBackoffInitial)
	assert.Equal(t, DefaultMaxRetries, r.MaxRetries)
	assert.Equal(t, DefaultScrollKeepalive, r.ScrollKeepalive)
	assert.NotEqual(t, RequestID{}, r.ID)
}

func TestNewRequest_MergesUserSourceOverDefault(t *testing.T) {
	r := NewRequest(WithSearchSource(SearchSource{"size": 50, "query": map[string]any{"match_all": map[string]any{}}}))

	assert.Equal(t, 50, r.SearchSource["size"])
	assert.Equal(t, []any{"_doc"}, r.SearchSource["sort"])
	assert.Equal(t, true, r.SearchSource["version"])
	assert.Contains(t, r.SearchSource, "query")
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{"valid defaults", nil, nil},
		{"negative retries", []Option{WithRetryPolicy(time.Second, -1)}, ErrNegativeRetries},
		{"zero size", []Option{WithSize(0)}, ErrInvalidSize},
		{"negative size other than -1", []Option{WithSize(-5)}, ErrInvalidSize},
		{"unlimited size is valid", []Option{WithSize(SizeUnlimited)}, nil},
		{"positive size is valid", []Option{WithSize(100)}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRequest(tc.opts...)
			err := r.Validate()
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestRequest_ValidateAggregatesViolations(t *testing.T) {
	r := NewRequest(WithRetryPolicy(time.Second, -3), WithSize(0))

	err := r.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Violations, 2)
	assert.ErrorIs(t, err, ErrNegativeRetries)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestNewConflictBehavior(t *testing.T) {
	proceed, err := NewConflictBehavior("proceed")
	require.NoError(t, err)
	assert.False(t, proceed.AbortOnVersionConflict())

	abort, err := NewConflictBehavior("abort")
	require.NoError(t, err)
	assert.True(t, abort.AbortOnVersionConflict())

	_, err = NewConflictBehavior("ignore")
	assert.ErrorIs(t, err, ErrInvalidConflictBehavior)
}

func TestRequestID_RoundTrip(t *testing.T) {
	id := NewRequestID()

	parsed, err := ParseRequestID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}
