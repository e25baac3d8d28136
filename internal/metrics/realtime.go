package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RealtimeMetrics tracks the realtime gateway: open connections, handshakes and fact delivery.
type RealtimeMetrics interface {
	// ConnectionOpened is called after a successful handshake.
	ConnectionOpened(ctx context.Context)
	// ConnectionClosed is called once per connection that was opened.
	ConnectionClosed(ctx context.Context)
	// RecordHandshake counts handshake outcomes ("accepted", "timeout", "rejected").
	RecordHandshake(ctx context.Context, outcome string)
	// RecordFact counts facts per event and outcome ("delivered", "evicted", "broadcast_error").
	RecordFact(ctx context.Context, event, outcome string)
}

type realtimeMetrics struct {
	connections metric.Int64UpDownCounter
	handshakes  metric.Int64Counter
	facts       metric.Int64Counter
}

// NewRealtimeMetrics creates RealtimeMetrics backed by the given meter provider.
func NewRealtimeMetrics(meterProvider metric.MeterProvider, namespace string) (RealtimeMetrics, error) {
	meter := meterProvider.Meter(namespace)

	connections, err := meter.Int64UpDownCounter(
		fmt.Sprintf("%s_realtime_connections", namespace),
		metric.WithDescription("Number of authenticated realtime connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create realtime connections counter: %w", err)
	}

	handshakes, err := meter.Int64Counter(
		fmt.Sprintf("%s_realtime_handshakes_total", namespace),
		metric.WithDescription("Total number of realtime handshakes by outcome"),
		metric.WithUnit("{handshake}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create realtime handshake counter: %w", err)
	}

	facts, err := meter.Int64Counter(
		fmt.Sprintf("%s_realtime_facts_total", namespace),
		metric.WithDescription("Total number of mutation facts by event and outcome"),
		metric.WithUnit("{fact}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create realtime fact counter: %w", err)
	}

	return &realtimeMetrics{connections: connections, handshakes: handshakes, facts: facts}, nil
}

func (r *realtimeMetrics) ConnectionOpened(ctx context.Context) {
	r.connections.Add(ctx, 1)
}

func (r *realtimeMetrics) ConnectionClosed(ctx context.Context) {
	r.connections.Add(ctx, -1)
}

func (r *realtimeMetrics) RecordHandshake(ctx context.Context, outcome string) {
	r.handshakes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (r *realtimeMetrics) RecordFact(ctx context.Context, event, outcome string) {
	r.facts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("outcome", outcome),
	))
}

// NoOpRealtimeMetrics discards every measurement.
type NoOpRealtimeMetrics struct{}

// NewNoOpRealtimeMetrics creates a RealtimeMetrics that records nothing.
func NewNoOpRealtimeMetrics() RealtimeMetrics {
	return &NoOpRealtimeMetrics{}
}

func (n *NoOpRealtimeMetrics) ConnectionOpened(ctx context.Context)                  {}
func (n *NoOpRealtimeMetrics) ConnectionClosed(ctx context.Context)                  {}
func (n *NoOpRealtimeMetrics) RecordHandshake(ctx context.Context, outcome string)   {}
func (n *NoOpRealtimeMetrics) RecordFact(ctx context.Context, event, outcome string) {}
