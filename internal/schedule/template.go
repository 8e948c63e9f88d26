package schedule

import (
	"time"

	"github.com/rezkam/bulkscroll/internal/domain"
)

// Template is a saved bulk-by-scroll request (spec §3's supplemented
// scope: SPEC_FULL §"Recurring schedules"), the recurring-operation
// analogue of a domain.Request minus the per-run fields (ID, Context) a
// launch assigns fresh each time.
type Template struct {
	TemplateID string
	OpType     string // "reindex", "update_by_query", "delete_by_query"

	Pattern  Pattern
	Interval int

	SearchSource domain.SearchSource
	Size         int
	Conflicts    domain.ConflictBehavior
	Refresh      bool

	// DestinationIndex is consulted only for OpType == "reindex".
	DestinationIndex string

	LastRunAt time.Time
	NextRunAt time.Time
	Enabled   bool
}

// NewRequest builds the domain.Request for one scheduled firing of t.
func (t Template) NewRequest(opts ...domain.Option) *domain.Request {
	base := []domain.Option{
		domain.WithSearchSource(t.SearchSource),
		domain.WithSize(t.Size),
		domain.WithConflicts(t.Conflicts),
		domain.WithRefresh(t.Refresh),
	}
	return domain.NewRequest(append(base, opts...)...)
}

// Due reports whether t should fire at instant now.
func (t Template) Due(now time.Time) bool {
	return t.Enabled && !t.NextRunAt.After(now)
}

// Advance returns t with LastRunAt/NextRunAt updated for a firing at now.
func (t Template) Advance(now time.Time) Template {
	calc := GetCalculator(t.Pattern)
	if calc == nil {
		t.LastRunAt = now
		return t
	}
	t.LastRunAt = now
	t.NextRunAt = calc.NextOccurrence(now, t.Interval)
	return t
}
