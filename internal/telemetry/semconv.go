// Package telemetry semantic conventions for trading-core observability.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic convention attribute keys, following OpenTelemetry naming
// conventions: namespace.attribute_name.
const (
	// Message attributes
	AttrCommandType = attribute.Key("command.type")
	AttrEventType   = attribute.Key("event.type")
	AttrTopic       = attribute.Key("topic")

	// Environment attribute
	AttrEnvironment = attribute.Key("environment")

	// Error attributes
	AttrErrorType = attribute.Key("error.type")
	AttrReason    = attribute.Key("reason")

	// Clock attributes
	AttrTimerLabel = attribute.Key("timer.label")

	// Operation attributes
	AttrOperation = attribute.Key("operation")
	AttrResult    = attribute.Key("result")
)

// CommandAttributes returns common attributes for command metrics.
func CommandAttributes(environment, commandType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrEnvironment.String(environment),
		AttrCommandType.String(commandType),
	}
}

// EventAttributes returns common attributes for event metrics.
func EventAttributes(environment, eventType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrEnvironment.String(environment),
		AttrEventType.String(eventType),
	}
}

// ErrorAttributes returns attributes for error metrics.
func ErrorAttributes(environment, errorType, reason string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrEnvironment.String(environment),
		AttrErrorType.String(errorType),
		AttrReason.String(reason),
	}
}
