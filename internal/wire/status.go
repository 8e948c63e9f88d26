package wire

import "github.com/rezkam/bulkscroll/internal/domain"

// Variant tells NewStatus which counters are meaningful for this request
// shape, so it can omit the ones that never apply (spec §6).
type Variant int

const (
	// VariantGeneric carries every counter (reindex both creates and
	// updates).
	VariantGeneric Variant = iota
	// VariantDeleteOnly omits "created" — a delete-by-query run never creates.
	VariantDeleteOnly
	// VariantUpdateOnly omits "deleted" — an update-by-query run never deletes.
	VariantUpdateOnly
)

// Status is the JSON status object of spec §6. Field order in the struct
// declaration is the field order on the wire, since encoding/json emits
// object keys in declaration order. Pointer fields are omitted from the
// encoding via `omitempty` when nil, producing the variant-specific
// omissions (a delete-only variant omits "created"; an update-only variant
// omits "deleted").
type Status struct {
	Total            int64   `json:"total"`
	Updated          int64   `json:"updated"`
	Created          *int64  `json:"created,omitempty"`
	Deleted          *int64  `json:"deleted,omitempty"`
	Batches          int64   `json:"batches"`
	VersionConflicts int64   `json:"version_conflicts"`
	Noops            int64   `json:"noops"`
	Retries          int64   `json:"retries"`
	Canceled         *string `json:"canceled,omitempty"`
}

// NewStatus projects a domain.Snapshot into the wire Status shape for the
// given variant.
func NewStatus(snap domain.Snapshot, variant Variant) Status {
	s := Status{
		Total:            snap.Total,
		Updated:          snap.Updated,
		Batches:          snap.Batches,
		VersionConflicts: snap.VersionConflicts,
		Noops:            snap.Noops,
		Retries:          snap.Retries,
	}
	if variant != VariantDeleteOnly {
		created := snap.Created
		s.Created = &created
	}
	if variant != VariantUpdateOnly {
		deleted := snap.Deleted
		s.Deleted = &deleted
	}
	if snap.ReasonCancelled != "" {
		reason := snap.ReasonCancelled
		s.Canceled = &reason
	}
	return s
}
