package codec

import (
	"fmt"

	"github.com/chadury2021/nautilus-trader-s/internal/message"
)

// EncodeResponse serializes a response into a self-describing frame.
func (c *Codec) EncodeResponse(rsp message.Response) ([]byte, error) {
	var env envelope
	switch m := rsp.(type) {
	case message.MessageReceived:
		env = newEnvelope(typeMessageReceived, m.Base)
		env.CorrelationID = m.CorrelationID.String()
		env.ReceivedType = m.ReceivedType
	case message.MessageRejected:
		env = newEnvelope(typeMessageRejected, m.Base)
		env.CorrelationID = m.CorrelationID.String()
		env.Reason = m.Reason
	case message.DataResponse:
		env = newEnvelope(typeDataResponse, m.Base)
		env.CorrelationID = m.CorrelationID.String()
		env.Data = m.Data
		env.Encoding = m.Encoding
	default:
		panic(fmt.Sprintf("codec: unhandled response variant %T", rsp))
	}

	frame, err := c.marshal(env)
	if err != nil {
		return nil, codecErr("encode response", err)
	}
	return frame, nil
}

// DecodeResponse reconstructs a response from a frame.
func (c *Codec) DecodeResponse(frame []byte) (message.Response, error) {
	var env envelope
	if err := c.unmarshal(frame, &env); err != nil {
		return nil, codecErr("decode response frame", err)
	}
	base, err := env.base()
	if err != nil {
		return nil, err
	}
	correlation, err := env.correlation()
	if err != nil {
		return nil, err
	}

	switch env.Type {
	case typeMessageReceived:
		return message.MessageReceived{Base: base, CorrelationID: correlation, ReceivedType: env.ReceivedType}, nil
	case typeMessageRejected:
		return message.MessageRejected{Base: base, CorrelationID: correlation, Reason: env.Reason}, nil
	case typeDataResponse:
		return message.DataResponse{Base: base, CorrelationID: correlation, Data: env.Data, Encoding: env.Encoding}, nil
	default:
		return nil, codecErr("unknown response type tag: "+env.Type, nil)
	}
}
