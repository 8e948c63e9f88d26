package engine

import "context"

// SearchClient is the consumed contract (spec §6): an opaque async RPC
// surface over the underlying distributed search/index backend. The engine
// never constructs transport connections itself; internal/transport/grpc
// provides a concrete implementation.
type SearchClient interface {
	Search(ctx context.Context, req SearchRequest) (SearchResponse, error)
	Scroll(ctx context.Context, scrollID string, keepalive int64, req SearchRequest) (SearchResponse, error)
	ClearScroll(ctx context.Context, scrollIDs []string) (ClearResponse, error)
	Refresh(ctx context.Context, indices []string) (RefreshResponse, error)
	Bulk(ctx context.Context, req BulkRequest) (BulkResponse, error)
}

// SearchRequest carries the opaque search source payload plus the
// context/header maps that must be propagated verbatim to every sub-request
// (invariant I5).
type SearchRequest struct {
	SearchSource map[string]any
	Context      map[string]string
	Headers      map[string]string
}

// SearchResponse carries what the driver needs from a search or scroll
// reply (spec §6).
type SearchResponse struct {
	Total         int64
	Hits          []Hit
	ScrollID      string
	ShardFailures []ShardFailure
	TimedOut      bool
}

// ShardFailure is one shard-level search failure.
type ShardFailure struct {
	Index  string
	Shard  int
	Reason string
}

// ClearResponse acknowledges a clear_scroll call.
type ClearResponse struct {
	Succeeded bool
}

// RefreshResponse acknowledges a refresh call.
type RefreshResponse struct {
	ShardsSucceeded int
	ShardsFailed    int
}

// BulkRequest carries the operations to execute plus the dispatch-time
// timeout/consistency settings and the propagated context/header maps.
type BulkRequest struct {
	Ops         []BulkOp
	TimeoutNano int64
	Consistency string
	Context     map[string]string
	Headers     map[string]string
}

// BulkResponse is a sequence of per-item outcomes (spec §6).
type BulkResponse struct {
	Items []BulkResponseItem
}

// BulkResponseItem is one item of a BulkResponse: op_type, destination, and
// either a success classification or a failure status.
type BulkResponseItem struct {
	OpType  string // "index", "create", or "delete"
	Index   string
	ID      string
	Created bool // for index/create ops: true if this document did not previously exist
	Failed  bool
	Status  int    // HTTP-like status code, set only when Failed
	Reason  string // failure reason, set only when Failed
}
