// Package message defines the command, event, request, and response taxonomy
// exchanged between the strategy layer and the execution service.
//
// Every message carries a v4 UUID assigned once at construction and a UTC
// creation timestamp. Messages are immutable after construction; equality is
// identity-based (by id).
package message

import (
	"time"

	"github.com/google/uuid"
)

// Message is the common surface of every command, event, request, and response.
type Message interface {
	MessageID() uuid.UUID
	MessageTime() time.Time
}

// Base carries the identity and creation timestamp shared by all messages.
type Base struct {
	ID        uuid.UUID
	Timestamp time.Time
}

// NewBase mints a fresh identity stamped at the given time.
func NewBase(at time.Time) Base {
	return Base{ID: uuid.New(), Timestamp: at.UTC()}
}

// RestoreBase rebuilds an identity from the wire; used by codecs only.
func RestoreBase(id uuid.UUID, at time.Time) Base {
	return Base{ID: id, Timestamp: at.UTC()}
}

// MessageID returns the message identity.
func (b Base) MessageID() uuid.UUID { return b.ID }

// MessageTime returns the UTC creation timestamp.
func (b Base) MessageTime() time.Time { return b.Timestamp }

// Same reports whether two messages share an identity.
func Same(a, b Message) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.MessageID() == b.MessageID()
}
