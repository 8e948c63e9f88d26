package grpc

import (
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/rezkam/bulkscroll/internal/wire"
)

// StartRunRequest carries one bulk-by-scroll envelope (spec §3/§6) plus the
// operation tag (reindex / update_by_query / delete_by_query) and, for
// reindex, the destination index.
type StartRunRequest struct {
	OpType           string            `json:"op_type"`
	DestinationIndex string            `json:"destination_index,omitempty"`
	SearchSource     map[string]any    `json:"search_source"`
	Size             int64             `json:"size"`
	Conflicts        string            `json:"conflicts"`
	Refresh          bool              `json:"refresh"`
	Timeout          *durationpb.Duration `json:"timeout,omitempty"`
	Consistency      string            `json:"consistency"`
	RetryBackoffInitial *durationpb.Duration `json:"retry_backoff_initial,omitempty"`
	MaxRetries       int64             `json:"max_retries"`
	ScrollKeepalive  *durationpb.Duration `json:"scroll_keepalive,omitempty"`
	Context          map[string]string `json:"context,omitempty"`
	Headers          map[string]string `json:"headers,omitempty"`
}

// StartRunResponse acknowledges admission; the run itself proceeds
// asynchronously and is observed through GetStatus.
type StartRunResponse struct {
	RequestID  string               `json:"request_id"`
	AcceptedAt *timestamppb.Timestamp `json:"accepted_at"`
}

// GetStatusRequest identifies the run to report on.
type GetStatusRequest struct {
	RequestID string `json:"request_id"`
}

// GetStatusResponse wraps the §6 status JSON object; State communicates
// the audit.RunState alongside the in-flight/terminal progress snapshot.
type GetStatusResponse struct {
	State  string      `json:"state"`
	Status wire.Status `json:"status"`
}

// CancelRunRequest requests cooperative cancellation (spec §4.6).
type CancelRunRequest struct {
	RequestID string `json:"request_id"`
	Reason    string `json:"reason"`
}

// CancelRunResponse reports whether the run was found and cancellation was
// requested. Accepted does not mean the run has stopped yet: cancellation
// is cooperative and takes effect on the next observed state transition.
type CancelRunResponse struct {
	Accepted bool `json:"accepted"`
}
