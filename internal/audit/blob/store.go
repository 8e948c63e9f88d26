// Package blob archives the full domain.Response of a completed run to
// object storage, the way internal/storage/gcs archived TodoList JSON
// blobs. The relational audit.Store keeps the queryable summary; this
// store keeps the complete indexing/search failure lists a very large run
// can produce, so the status RPC's default response stays small.
package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"

	"github.com/rezkam/bulkscroll/internal/domain"
)

// Store archives complete domain.Response values in a GCS bucket, one
// object per request ID.
type Store struct {
	client *storage.Client
	bucket string
}

// NewStore assumes the client is authenticated (e.g. via
// GOOGLE_APPLICATION_CREDENTIALS), matching internal/storage/gcs.NewStore.
func NewStore(ctx context.Context, bucketName string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &Store{client: client, bucket: bucketName}, nil
}

func (s *Store) objectName(id domain.RequestID) string {
	return fmt.Sprintf("runs/%s.json", id.String())
}

// Put archives resp, overwriting any prior archive for the same request.
func (s *Store) Put(ctx context.Context, id domain.RequestID, resp domain.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	w := s.client.Bucket(s.bucket).Object(s.objectName(id)).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	return w.Close()
}

// Get retrieves a previously archived response.
func (s *Store) Get(ctx context.Context, id domain.RequestID) (domain.Response, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.objectName(id)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return domain.Response{}, fmt.Errorf("run %s: %w", id, errObjectNotFound)
		}
		return domain.Response{}, fmt.Errorf("failed to read object: %w", err)
	}
	defer r.Close()

	var resp domain.Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return domain.Response{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp, nil
}

var errObjectNotFound = errors.New("archived response not found")
