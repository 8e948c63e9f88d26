package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/rezkam/bulkscroll/internal/domain"
)

// BlobArchiver is the subset of blob.Store a CompositeStore uses to archive
// a run's full terminal response once it completes.
type BlobArchiver interface {
	Put(ctx context.Context, id domain.RequestID, resp domain.Response) error
}

// CompositeStore records every run in the relational Store and, when an
// archiver is configured, also archives completed runs' full responses to
// it — the Store.Get path served from GetStatus stays fast and small, while
// the complete indexing/search failure lists still live somewhere queryable
// for large runs.
type CompositeStore struct {
	Store
	Archiver BlobArchiver // nil disables archival
}

// NewCompositeStore wraps store, archiving to archiver if non-nil.
func NewCompositeStore(store Store, archiver BlobArchiver) *CompositeStore {
	return &CompositeStore{Store: store, Archiver: archiver}
}

func (c *CompositeStore) Complete(ctx context.Context, id domain.RequestID, resp domain.Response, completedAt time.Time) error {
	if err := c.Store.Complete(ctx, id, resp, completedAt); err != nil {
		return err
	}
	if c.Archiver == nil {
		return nil
	}
	if err := c.Archiver.Put(ctx, id, resp); err != nil {
		slog.ErrorContext(ctx, "audit: failed to archive response", "request_id", id.String(), "error", err)
	}
	return nil
}
