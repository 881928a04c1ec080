// Package codec implements the pluggable serialization boundary for commands,
// events, and responses. Every codec writes a self-describing envelope
// (a map keyed by field name with a "type" tag naming the variant) so that
// decode can reconstruct a field-wise-equal value, id and timestamp included.
// The wire format is interchangeable: MsgPack is the compact binary default,
// JSON serves human-readable dumps and DataResponse payloads.
package codec

import (
	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/chadury2021/nautilus-trader-s/internal/message"
)

// CommandCodec serializes commands for the outbound request channel.
type CommandCodec interface {
	EncodeCommand(cmd message.Command) ([]byte, error)
	DecodeCommand(frame []byte) (message.Command, error)
}

// EventCodec serializes events for the inbound subscription channel.
type EventCodec interface {
	EncodeEvent(evt message.Event) ([]byte, error)
	DecodeEvent(frame []byte) (message.Event, error)
}

// ResponseCodec serializes responses for the request channel's reply path.
type ResponseCodec interface {
	EncodeResponse(rsp message.Response) ([]byte, error)
	DecodeResponse(frame []byte) (message.Response, error)
}

// Codec implements all three codec contracts over a single marshaling
// backend.
type Codec struct {
	name      string
	marshal   func(v any) ([]byte, error)
	unmarshal func(data []byte, v any) error
}

// NewMsgPack constructs the MsgPack-backed codec.
func NewMsgPack() *Codec {
	return &Codec{
		name:      "application/msgpack",
		marshal:   msgpack.Marshal,
		unmarshal: msgpack.Unmarshal,
	}
}

// NewJSON constructs the JSON-backed codec.
func NewJSON() *Codec {
	return &Codec{
		name:      "application/json",
		marshal:   json.Marshal,
		unmarshal: json.Unmarshal,
	}
}

// Name returns the codec's encoding name, suitable for DataResponse.Encoding.
func (c *Codec) Name() string { return c.name }
