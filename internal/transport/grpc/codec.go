// Package grpc is the concrete gRPC transport of SPEC_FULL.md §4.5's
// SearchClient expansion and §6's control-plane surface: a control service
// (StartRun/GetStatus/CancelRun) and a SearchClient adapter over the
// backend's search/scroll/clear_scroll/refresh/bulk RPCs.
//
// Neither service is protoc-generated: no working .proto toolchain ships
// in this environment (see DESIGN.md). Both register a hand-written
// grpc.ServiceDesc and exchange plain JSON bodies via a custom
// encoding.Codec, the same "raw grpc" pattern libraries like
// google.golang.org/grpc/examples/features/encoding use to avoid a
// protobuf dependency for the wire messages themselves.
package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// jsonCodecName is the codec registered as gRPC's Content-Subtype, making
// every call on this package's clients and servers negotiate
// "application/grpc+json".
const jsonCodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec implements encoding.Codec by delegating to encoding/json, so
// wire messages stay human-readable and require no .proto compilation
// step.
type jsonCodec struct{}

func (jsonCodec) Name() string { return jsonCodecName }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("grpc json codec: marshal: %w", err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("grpc json codec: unmarshal: %w", err)
	}
	return nil
}
