package execution

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/chadury2021/nautilus-trader-s/internal/telemetry"
)

type clientMetrics struct {
	commandsEnqueued   metric.Int64Counter
	commandsSent       metric.Int64Counter
	eventsDispatched   metric.Int64Counter
	decodeFailures     metric.Int64Counter
	unmatchedResponses metric.Int64Counter
	droppedItems       metric.Int64Counter
}

func newClientMetrics() *clientMetrics {
	meter := otel.Meter("execution")
	m := new(clientMetrics)
	m.commandsEnqueued, _ = meter.Int64Counter("execution.commands.enqueued",
		metric.WithDescription("Number of commands accepted into the execution queue"),
		metric.WithUnit("{command}"))
	m.commandsSent, _ = meter.Int64Counter("execution.commands.sent",
		metric.WithDescription("Number of serialized commands sent on the request channel"),
		metric.WithUnit("{command}"))
	m.eventsDispatched, _ = meter.Int64Counter("execution.events.dispatched",
		metric.WithDescription("Number of event deliveries to registered strategies"),
		metric.WithUnit("{event}"))
	m.decodeFailures, _ = meter.Int64Counter("execution.codec.failures",
		metric.WithDescription("Number of frames dropped due to codec failures"),
		metric.WithUnit("{frame}"))
	m.unmatchedResponses, _ = meter.Int64Counter("execution.responses.unmatched",
		metric.WithDescription("Number of responses whose correlation id matched no pending request"),
		metric.WithUnit("{response}"))
	m.droppedItems, _ = meter.Int64Counter("execution.items.dropped",
		metric.WithDescription("Number of commands or events dropped before processing"),
		metric.WithUnit("{item}"))
	return m
}

func (m *clientMetrics) recordCommandSent(ctx context.Context, commandType string) {
	attrs := telemetry.CommandAttributes(telemetry.Environment(), commandType)
	m.commandsSent.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *clientMetrics) recordEventDispatched(ctx context.Context, eventType string, deliveries int) {
	attrs := telemetry.EventAttributes(telemetry.Environment(), eventType)
	m.eventsDispatched.Add(ctx, int64(deliveries), metric.WithAttributes(attrs...))
}

func (m *clientMetrics) recordDecodeFailure(ctx context.Context, operation string) {
	m.decodeFailures.Add(ctx, 1, metric.WithAttributes(
		telemetry.AttrEnvironment.String(telemetry.Environment()),
		telemetry.AttrOperation.String(operation),
	))
}
