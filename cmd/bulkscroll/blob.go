package main

import (
	"context"
	"fmt"

	"github.com/rezkam/bulkscroll/internal/audit"
	"github.com/rezkam/bulkscroll/internal/audit/blob"
)

// blobArchiver opens a blob.Store for bucket, returning it as the
// audit.BlobArchiver interface CompositeStore consumes.
func blobArchiver(ctx context.Context, bucket string) (audit.BlobArchiver, error) {
	store, err := blob.NewStore(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("open blob archive: %w", err)
	}
	return store, nil
}
