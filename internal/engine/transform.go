package engine

import "github.com/rezkam/bulkscroll/internal/domain"

// Hit is one document returned by a search/scroll response, the input to
// DocumentTransform (spec §4.4).
type Hit struct {
	Index   string
	Type    string
	ID      string
	Routing string
	Version int64
	Source  map[string]any
}

// BulkOp is one operation to include in a bulk request, produced from a Hit.
type BulkOp struct {
	OpType  string // "index", "create", or "delete"
	Index   string
	Type    string
	ID      string
	Routing string
	Version int64
	Source  map[string]any
}

// Bulk is the (possibly empty) result of building a batch's bulk request.
type Bulk struct {
	Ops []BulkOp
}

func (b Bulk) Empty() bool { return len(b.Ops) == 0 }

// ScriptHook mutates a hit's data fields in place. Implementations must not
// mutate identity or routing fields; DocumentTransform detects and reports
// any such mutation as a domain.ForbiddenFieldError.
type ScriptHook func(hit *Hit) error

// DocumentTransform maps one search hit to one bulk operation (spec §4.4).
// build_bulk is called once per batch, on the generic worker pool, never on
// the network reply path.
type DocumentTransform interface {
	BuildBulk(hits []Hit) (Bulk, error)
}

// ReindexTransform copies index/type/id/routing verbatim from each hit into
// the destination index, preserving the internal version, optionally
// running a user script over the hit's data first.
type ReindexTransform struct {
	DestinationIndex string
	Script           ScriptHook
}

func (t *ReindexTransform) BuildBulk(hits []Hit) (Bulk, error) {
	ops := make([]BulkOp, 0, len(hits))
	for _, hit := range hits {
		before := hit
		if t.Script != nil {
			if err := t.Script(&hit); err != nil {
				return Bulk{}, err
			}
			if err := checkIdentityFieldsUnchanged(before, hit); err != nil {
				return Bulk{}, err
			}
		}
		ops = append(ops, BulkOp{
			OpType:  "index",
			Index:   t.DestinationIndex,
			Type:    hit.Type,
			ID:      hit.ID,
			Routing: hit.Routing,
			Version: hit.Version,
			Source:  hit.Source,
		})
	}
	return Bulk{Ops: ops}, nil
}

// UpdateByQueryTransform re-indexes a hit into the same index it came from,
// optionally invoking a user script. A hit for which the script (or the
// absence of one) yields no change is a noop and is dropped from the bulk.
type UpdateByQueryTransform struct {
	Script ScriptHook
	// NoopDetector reports whether applying the script produced no
	// effective change, so the hit should be skipped as a noop rather than
	// indexed (spec §4.4, §4.5 §3: an all-noop batch yields an empty bulk).
	NoopDetector func(before, after Hit) bool
}

func (t *UpdateByQueryTransform) BuildBulk(hits []Hit) (Bulk, error) {
	ops := make([]BulkOp, 0, len(hits))
	for _, hit := range hits {
		before := hit
		if t.Script != nil {
			if err := t.Script(&hit); err != nil {
				return Bulk{}, err
			}
			if err := checkIdentityFieldsUnchanged(before, hit); err != nil {
				return Bulk{}, err
			}
		}
		if t.NoopDetector != nil && t.NoopDetector(before, hit) {
			continue
		}
		ops = append(ops, BulkOp{
			OpType:  "index",
			Index:   hit.Index,
			Type:    hit.Type,
			ID:      hit.ID,
			Routing: hit.Routing,
			Version: hit.Version,
			Source:  hit.Source,
		})
	}
	return Bulk{Ops: ops}, nil
}

// DeleteByQueryTransform turns each hit into a delete op against its own
// index; no script runs since there is no document body left to mutate.
type DeleteByQueryTransform struct{}

func (t *DeleteByQueryTransform) BuildBulk(hits []Hit) (Bulk, error) {
	ops := make([]BulkOp, 0, len(hits))
	for _, hit := range hits {
		ops = append(ops, BulkOp{
			OpType:  "delete",
			Index:   hit.Index,
			Type:    hit.Type,
			ID:      hit.ID,
			Routing: hit.Routing,
			Version: hit.Version,
		})
	}
	return Bulk{Ops: ops}, nil
}

// checkIdentityFieldsUnchanged reports a domain.ForbiddenFieldError naming
// the first identity/routing field a script mutated.
func checkIdentityFieldsUnchanged(before, after Hit) error {
	if before.Index != after.Index {
		return domain.ForbiddenFieldError{Field: "_index"}
	}
	if before.Type != after.Type {
		return domain.ForbiddenFieldError{Field: "_type"}
	}
	if before.ID != after.ID {
		return domain.ForbiddenFieldError{Field: "_id"}
	}
	if before.Version != after.Version {
		return domain.ForbiddenFieldError{Field: "_version"}
	}
	if before.Routing != after.Routing {
		return domain.ForbiddenFieldError{Field: "_routing"}
	}
	return nil
}
