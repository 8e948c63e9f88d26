// Package wire implements the binary-compatible envelope described in
// SPEC_FULL §6: a fixed avro record mirroring the request envelope's field
// list, used for inter-process handoff (e.g. queuing a start-request
// through a message bus) without tying the wire format to Go's gob or JSON
// representations.
package wire

import (
	"fmt"

	"github.com/hamba/avro/v2"

	"github.com/rezkam/bulkscroll/internal/domain"
)

const (
	envelopeNamespace = "com.rezkam.bulkscroll"
	envelopeName      = "bulk_by_scroll_envelope"
)

// envelopeSchema is a literal avro schema rather than one built by
// reflection: unlike a generic encoder, this package serializes exactly one
// fixed record shape, so the reflection-based schema builder authzed-zed
// uses for its open-ended relationship schema would be unexercised
// generality here.
const envelopeSchema = `{
  "type": "record",
  "name": "` + envelopeName + `",
  "namespace": "` + envelopeNamespace + `",
  "fields": [
    {"name": "search_request", "type": "bytes"},
    {"name": "abort_on_version_conflict", "type": "boolean"},
    {"name": "size", "type": "long"},
    {"name": "refresh", "type": "boolean"},
    {"name": "timeout_nanos", "type": "long"},
    {"name": "consistency", "type": "int"},
    {"name": "retry_backoff_initial_nanos", "type": "long"},
    {"name": "max_retries", "type": "long"}
  ]
}`

var envelopeAvroSchema = avro.MustParse(envelopeSchema)

// envelope is the avro-tagged wire record, field order matching SPEC_FULL §6
// exactly: search_request, abort_on_version_conflict, size, refresh,
// timeout, consistency, retry_backoff_initial, max_retries.
type envelope struct {
	SearchRequest           []byte `avro:"search_request"`
	AbortOnVersionConflict  bool   `avro:"abort_on_version_conflict"`
	Size                    int64  `avro:"size"`
	Refresh                 bool   `avro:"refresh"`
	TimeoutNanos            int64  `avro:"timeout_nanos"`
	Consistency             int32  `avro:"consistency"`
	RetryBackoffInitialNano int64  `avro:"retry_backoff_initial_nanos"`
	MaxRetries              int64  `avro:"max_retries"`
}

// EncodeRequest serializes a Request's envelope fields into the binary wire
// form. searchRequest is the already-serialized opaque search source
// payload (the query DSL itself is out of scope, per spec §1).
func EncodeRequest(r *domain.Request, searchRequest []byte) ([]byte, error) {
	e := envelope{
		SearchRequest:           searchRequest,
		AbortOnVersionConflict:  r.AbortOnVersionConflict(),
		Size:                    int64(r.Size),
		Refresh:                 r.Refresh,
		TimeoutNanos:            int64(r.Timeout),
		Consistency:             int32(r.Consistency.ByteID()),
		RetryBackoffInitialNano: int64(r.RetryBackoffInitial),
		MaxRetries:              int64(r.MaxRetries),
	}
	buf, err := avro.Marshal(envelopeAvroSchema, e)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return buf, nil
}

// DecodedEnvelope is the result of decoding a wire-form request: the
// envelope fields, ready to feed into domain.NewRequest via Options, plus
// the raw opaque search-request payload.
type DecodedEnvelope struct {
	SearchRequest []byte
	Conflicts     domain.ConflictBehavior
	Size          int
	Refresh       bool
	Timeout       int64 // nanoseconds
	Consistency   domain.ConsistencyLevel
	RetryInitial  int64 // nanoseconds
	MaxRetries    int
}

// DecodeRequest reverses EncodeRequest.
func DecodeRequest(buf []byte) (*DecodedEnvelope, error) {
	var e envelope
	if err := avro.Unmarshal(envelopeAvroSchema, buf, &e); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	consistency, err := domain.ConsistencyFromByteID(byte(e.Consistency))
	if err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	conflicts := domain.ConflictProceed
	if e.AbortOnVersionConflict {
		conflicts = domain.ConflictAbort
	}
	return &DecodedEnvelope{
		SearchRequest: e.SearchRequest,
		Conflicts:     conflicts,
		Size:          int(e.Size),
		Refresh:       e.Refresh,
		Timeout:       e.TimeoutNanos,
		Consistency:   consistency,
		RetryInitial:  e.RetryBackoffInitialNano,
		MaxRetries:    int(e.MaxRetries),
	}, nil
}
