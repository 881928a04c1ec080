// Package transport defines the opaque send/receive boundary between the
// execution client and the external execution service. The core consumes
// these contracts; concrete wire transports live outside this module. The
// in-tree implementations are the in-process simulated venue and test fakes.
package transport

import (
	"context"
	"strconv"
	"strings"

	"github.com/chadury2021/nautilus-trader-s/errs"
)

// Endpoint names the logical address of an execution service: one host, a
// command port for the request channel, an event port for the subscription
// channel, and the event topic to subscribe.
type Endpoint struct {
	Host        string
	CommandPort int
	EventPort   int
	Topic       string
}

// Validate checks the endpoint for configuration errors.
func (e Endpoint) Validate() error {
	if strings.TrimSpace(e.Host) == "" {
		return errs.New("transport", errs.CodeInvalidConfig, errs.WithMessage("service host required"))
	}
	if e.CommandPort < 1 || e.CommandPort > 65535 {
		return errs.New("transport", errs.CodeInvalidConfig,
			errs.WithMessage("command port outside 1-65535"),
			errs.WithField("port", strconv.Itoa(e.CommandPort)))
	}
	if e.EventPort < 1 || e.EventPort > 65535 {
		return errs.New("transport", errs.CodeInvalidConfig,
			errs.WithMessage("event port outside 1-65535"),
			errs.WithField("port", strconv.Itoa(e.EventPort)))
	}
	if e.CommandPort == e.EventPort {
		return errs.New("transport", errs.CodeInvalidConfig, errs.WithMessage("command and event ports must differ"))
	}
	if strings.TrimSpace(e.Topic) == "" {
		return errs.New("transport", errs.CodeInvalidConfig, errs.WithMessage("event topic required"))
	}
	return nil
}

// RequestChannel carries serialized commands to the execution service.
// Replies arrive asynchronously on the callback given to Open.
type RequestChannel interface {
	// Open readies the channel and registers the reply callback.
	Open(ctx context.Context, onReply func(frame []byte)) error
	// Send transmits one serialized command frame.
	Send(ctx context.Context, frame []byte) error
	// Close releases the channel; further sends fail.
	Close(ctx context.Context) error
}

// SubscriptionChannel delivers serialized event frames from the execution
// service continuously until unsubscribed.
type SubscriptionChannel interface {
	// Subscribe registers the frame callback for a topic.
	Subscribe(ctx context.Context, topic string, onFrame func(topic string, frame []byte)) error
	// Unsubscribe stops delivery for a topic.
	Unsubscribe(ctx context.Context, topic string) error
	// Close releases the channel; further subscriptions fail.
	Close(ctx context.Context) error
}
