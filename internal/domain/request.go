package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConflictBehavior controls whether a version conflict aborts the run or
// is merely counted and suppressed from the reported failure list.
type ConflictBehavior string

const (
	ConflictProceed ConflictBehavior = "proceed"
	ConflictAbort   ConflictBehavior = "abort"
)

// AbortOnVersionConflict reports the boolean the driver actually consults.
func (c ConflictBehavior) AbortOnVersionConflict() bool {
	return c == ConflictAbort
}

// NewConflictBehavior validates a conflict-behavior string. Any value other
// than "proceed" or "abort" is rejected.
func NewConflictBehavior(s string) (ConflictBehavior, error) {
	switch ConflictBehavior(s) {
	case ConflictProceed:
		return ConflictProceed, nil
	case ConflictAbort:
		return ConflictAbort, nil
	default:
		return "", ErrInvalidConflictBehavior
	}
}

// RequestID identifies one run. It is assigned at construction and used by
// the audit store, the control-plane RPCs, and the status endpoint to
// address a specific run; it never appears on the wire form of §6, which
// serializes only the envelope.
type RequestID uuid.UUID

// NewRequestID mints a time-ordered identifier so runs naturally sort by
// creation order in storage.
func NewRequestID() RequestID {
	id, err := uuid.NewV7()
	if err != nil {
		// crypto/rand failure; fall back to a random v4 rather than panic.
		id = uuid.New()
	}
	return RequestID(id)
}

// ParseRequestID parses the canonical string form.
func ParseRequestID(s string) (RequestID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return RequestID{}, err
	}
	return RequestID(id), nil
}

func (r RequestID) String() string {
	return uuid.UUID(r).String()
}

// SizeUnlimited is the sentinel value of Request.Size meaning "all matches".
const SizeUnlimited = -1

// DefaultScrollKeepalive is the duration a scroll cursor survives between
// batches when the request does not override it.
const DefaultScrollKeepalive = 5 * time.Minute

// DefaultRetryBackoffInitial is the first retry delay under the default
// policy.
const DefaultRetryBackoffInitial = 500 * time.Millisecond

// DefaultMaxRetries is the retry budget under the default policy. With
// DefaultRetryBackoffInitial and the engine's exponential schedule this sums
// to exactly 59,460ms of total backoff (invariant I7).
const DefaultMaxRetries = 11

// Request is the bulk-by-scroll request envelope (spec §3).
type Request struct {
	ID RequestID

	// SearchSource is merged with DefaultSearchSource at construction: user
	// values win on conflict (spec §4.3).
	SearchSource SearchSource

	// Size caps the number of documents successfully processed; -1 means
	// unlimited.
	Size int

	// Conflicts controls abort-on-version-conflict behavior.
	Conflicts ConflictBehavior

	// Refresh requests a refresh of destination indices on normal
	// termination, when any were touched.
	Refresh bool

	// Timeout bounds how long a single bulk waits for shard availability.
	// Zero means "use the backend's replication default".
	Timeout time.Duration

	// Consistency is the write-consistency level required per shard.
	Consistency ConsistencyLevel

	// RetryBackoffInitial is the first delay of the retry policy.
	RetryBackoffInitial time.Duration

	// MaxRetries bounds the retry policy's sequence length.
	MaxRetries int

	// ScrollKeepalive is applied to the search request at construction time
	// and to every subsequent scroll continuation.
	ScrollKeepalive time.Duration

	// Context and Headers are propagated verbatim on the search, scroll and
	// bulk requests the driver issues (invariant I5). Refresh and
	// clear_scroll calls carry neither map.
	Context map[string]string
	Headers map[string]string
}

// Option mutates a Request during construction.
type Option func(*Request)

// WithSearchSource overrides the user-supplied search source; it is merged
// onto the default template by NewRequest, not replaced outright.
func WithSearchSource(s SearchSource) Option {
	return func(r *Request) { r.SearchSource = s }
}

// WithSize sets the maximum number of documents to process.
func WithSize(n int) Option {
	return func(r *Request) { r.Size = n }
}

// WithConflicts sets the abort-on-version-conflict behavior.
func WithConflicts(c ConflictBehavior) Option {
	return func(r *Request) { r.Conflicts = c }
}

// WithRefresh enables a post-completion refresh of destination indices.
func WithRefresh(refresh bool) Option {
	return func(r *Request) { r.Refresh = refresh }
}

// WithTimeout sets the per-bulk shard-availability wait.
func WithTimeout(d time.Duration) Option {
	return func(r *Request) { r.Timeout = d }
}

// WithConsistency sets the required write-consistency level.
func WithConsistency(c ConsistencyLevel) Option {
	return func(r *Request) { r.Consistency = c }
}

// WithRetryPolicy overrides the default retry policy's initial delay and
// retry budget.
func WithRetryPolicy(initial time.Duration, maxRetries int) Option {
	return func(r *Request) {
		r.RetryBackoffInitial = initial
		r.MaxRetries = maxRetries
	}
}

// WithScrollKeepalive overrides the scroll cursor's keepalive.
func WithScrollKeepalive(d time.Duration) Option {
	return func(r *Request) { r.ScrollKeepalive = d }
}

// WithContext attaches the context map propagated to every sub-request.
func WithContext(ctx map[string]string) Option {
	return func(r *Request) { r.Context = ctx }
}

// WithHeaders attaches the header map propagated to every sub-request.
func WithHeaders(headers map[string]string) Option {
	return func(r *Request) { r.Headers = headers }
}

// NewRequest builds a Request with the spec's defaults, applies opts, and
// merges the default search source beneath whatever opts supplied.
func NewRequest(opts ...Option) *Request {
	r := &Request{
		ID:                  NewRequestID(),
		Size:                SizeUnlimited,
		Conflicts:           ConflictAbort,
		Refresh:             false,
		Consistency:         ConsistencyDefault,
		RetryBackoffInitial: DefaultRetryBackoffInitial,
		MaxRetries:          DefaultMaxRetries,
		ScrollKeepalive:     DefaultScrollKeepalive,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.SearchSource = MergeSearchSource(DefaultSearchSource(), r.SearchSource)
	return r
}

// Validate aggregates every violation of the envelope's invariants, so a
// caller sees the complete set of problems in one synchronous rejection
// (spec §4.3).
func (r *Request) Validate() error {
	var violations []error
	if r.MaxRetries < 0 {
		violations = append(violations, ErrNegativeRetries)
	}
	if r.Size != SizeUnlimited && r.Size <= 0 {
		violations = append(violations, ErrInvalidSize)
	}
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

// AbortOnVersionConflict is the boolean the driver consults on each bulk
// item classification.
func (r *Request) AbortOnVersionConflict() bool {
	return r.Conflicts.AbortOnVersionConflict()
}
