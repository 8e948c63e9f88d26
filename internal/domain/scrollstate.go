package domain

import "time"

// ScrollState is the mutable state a ScrollDriver owns for the duration of
// one run (spec §3). It is released on Done.
type ScrollState struct {
	StartedAt time.Time

	// ScrollID is the opaque server-side cursor handle, set once the first
	// search response arrives. Empty until then.
	ScrollID string

	// DestinationIndices collects the distinct indices touched by
	// successful bulk items; refresh targets exactly this set. Written only
	// by the batch callback (spec §5).
	DestinationIndices map[string]struct{}

	TimedOut bool

	Cancellation *CancellationHandle

	Terminated bool
}

// NewScrollState returns a state with a fresh cancellation handle, ready for
// ScrollDriver.start.
func NewScrollState() *ScrollState {
	return &ScrollState{
		DestinationIndices: make(map[string]struct{}),
		Cancellation:       NewCancellationHandle(),
	}
}

// AddDestinationIndex records an index as touched by a successful bulk item.
func (s *ScrollState) AddDestinationIndex(index string) {
	s.DestinationIndices[index] = struct{}{}
}

// DestinationIndexList returns the touched indices as a slice, for refresh
// and reporting.
func (s *ScrollState) DestinationIndexList() []string {
	out := make([]string, 0, len(s.DestinationIndices))
	for idx := range s.DestinationIndices {
		out = append(out, idx)
	}
	return out
}
