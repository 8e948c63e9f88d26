package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPairs(t *testing.T) {
	tests := []struct {
		name  string
		pairs []string
		want  map[string]string
	}{
		{"nil input", nil, nil},
		{"empty slice", []string{}, nil},
		{"single pair", []string{"trace_id=abc123"}, map[string]string{"trace_id": "abc123"}},
		{
			"multiple pairs",
			[]string{"trace_id=abc123", "user=alice"},
			map[string]string{"trace_id": "abc123", "user": "alice"},
		},
		{"value contains equals sign", []string{"filter=a=b"}, map[string]string{"filter": "a=b"}},
		{"malformed pair dropped", []string{"no-equals-sign"}, map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitPairs(tt.pairs)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestReadSearchSource_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "source.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"query":{"match_all":{}}}`), 0o644))

	got, err := readSearchSource(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"query": map[string]any{"match_all": map[string]any{}}}, got)
}

func TestReadSearchSource_EmptyFileReturnsEmptyMap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	got, err := readSearchSource(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, got)
}

func TestReadSearchSource_MissingFileErrors(t *testing.T) {
	_, err := readSearchSource(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
