package message

import "github.com/google/uuid"

// Request asks the execution service for something and expects a correlated
// Response in return.
type Request interface {
	Message
	isRequest()
}

// Response answers a previously issued Request or Command; CorrelationID
// echoes the originating message id.
type Response interface {
	Message
	Correlation() uuid.UUID
	isResponse()
}

// DataRequest asks for an arbitrary data payload selected by the query.
type DataRequest struct {
	Base
	Query map[string]string
}

func (DataRequest) isRequest() {}

// MessageReceived acknowledges receipt of a message of the named type.
type MessageReceived struct {
	Base
	CorrelationID uuid.UUID
	ReceivedType  string
}

// MessageRejected reports that a message could not be processed.
type MessageRejected struct {
	Base
	CorrelationID uuid.UUID
	Reason        string
}

// DataResponse carries an opaque data payload and the name of its encoding.
type DataResponse struct {
	Base
	CorrelationID uuid.UUID
	Data          []byte
	Encoding      string
}

// Correlation returns the id of the originating request or command.
func (r MessageReceived) Correlation() uuid.UUID { return r.CorrelationID }

// Correlation returns the id of the originating request or command.
func (r MessageRejected) Correlation() uuid.UUID { return r.CorrelationID }

// Correlation returns the id of the originating request or command.
func (r DataResponse) Correlation() uuid.UUID { return r.CorrelationID }

func (MessageReceived) isResponse() {}
func (MessageRejected) isResponse() {}
func (DataResponse) isResponse()    {}
