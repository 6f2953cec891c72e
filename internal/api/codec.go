// Package api describes the postplanner.v1.Scheduler gRPC service: its
// messages, the service descriptor used to register a server, a typed
// client, and the JSON codec both ends speak.
package api

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// CodecName is the gRPC content-subtype of the Scheduler service.
// Clients select it with grpc.CallContentSubtype(CodecName).
const CodecName = "json"

// Codec marshals plain Go messages with encoding/json and protobuf
// messages (health checks) with protojson.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return protojson.Unmarshal(data, m)
	}
	return json.Unmarshal(data, v)
}

func (Codec) Name() string { return CodecName }

func init() {
	encoding.RegisterCodec(Codec{})
}
