package venue

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/chadury2021/nautilus-trader-s/internal/telemetry"
)

type venueMetrics struct {
	commandsProcessed metric.Int64Counter
	commandsRejected  metric.Int64Counter
	eventsPublished   metric.Int64Counter
}

func newVenueMetrics() *venueMetrics {
	meter := otel.Meter("venue")
	m := new(venueMetrics)
	m.commandsProcessed, _ = meter.Int64Counter("venue.commands.processed",
		metric.WithDescription("Number of command frames decoded and acknowledged"),
		metric.WithUnit("{command}"))
	m.commandsRejected, _ = meter.Int64Counter("venue.commands.rejected",
		metric.WithDescription("Number of undecodable command frames rejected"),
		metric.WithUnit("{command}"))
	m.eventsPublished, _ = meter.Int64Counter("venue.events.published",
		metric.WithDescription("Number of events fanned out to subscribers"),
		metric.WithUnit("{event}"))
	return m
}

func (m *venueMetrics) recordCommandProcessed(ctx context.Context, commandType string) {
	attrs := telemetry.CommandAttributes(telemetry.Environment(), commandType)
	m.commandsProcessed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *venueMetrics) recordCommandRejected(ctx context.Context, reason string) {
	m.commandsRejected.Add(ctx, 1, metric.WithAttributes(
		telemetry.AttrEnvironment.String(telemetry.Environment()),
		telemetry.AttrReason.String(reason),
	))
}

func (m *venueMetrics) recordEventPublished(ctx context.Context, eventType string, deliveries int) {
	attrs := telemetry.EventAttributes(telemetry.Environment(), eventType)
	m.eventsPublished.Add(ctx, int64(deliveries), metric.WithAttributes(attrs...))
}
