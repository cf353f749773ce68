package websocket

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type hubMetrics struct {
	clients  metric.Int64UpDownCounter
	messages metric.Int64Counter
}

func newHubMetrics(meter metric.Meter) (*hubMetrics, error) {
	clients, err := meter.Int64UpDownCounter(
		"websocket_connections_active",
		metric.WithDescription("Number of active WebSocket connections"),
	)
	if err != nil {
		return nil, err
	}

	messages, err := meter.Int64Counter(
		"websocket_messages_total",
		metric.WithDescription("Total number of WebSocket messages by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &hubMetrics{clients: clients, messages: messages}, nil
}

func (m *hubMetrics) clientDelta(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.clients.Add(ctx, delta)
}

func (m *hubMetrics) recordMessages(ctx context.Context, sent, dropped int) {
	if m == nil {
		return
	}
	if sent > 0 {
		m.messages.Add(ctx, int64(sent), metric.WithAttributes(attribute.String("outcome", "sent")))
	}
	if dropped > 0 {
		m.messages.Add(ctx, int64(dropped), metric.WithAttributes(attribute.String("outcome", "dropped")))
	}
}
