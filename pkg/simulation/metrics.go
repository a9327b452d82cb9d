package simulation

import (
	"context"

	"github.com/alex-ilgayev/socsim/pkg/event"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/alex-ilgayev/socsim/pkg/simulation"

// Metrics holds the simulation counters. A nil *Metrics records nothing.
type Metrics struct {
	alerts     metric.Int64Counter
	telemetry  metric.Int64Counter
	narratives metric.Int64Counter
}

// NewMetrics creates the counters on meter, or on the global provider
// when meter is nil.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}

	alerts, err := meter.Int64Counter("socsim_alerts_total",
		metric.WithDescription("Synthetic threat alerts emitted, by severity"))
	if err != nil {
		return nil, err
	}
	telemetry, err := meter.Int64Counter("socsim_telemetry_points_total",
		metric.WithDescription("Telemetry points appended to the rolling window"))
	if err != nil {
		return nil, err
	}
	narratives, err := meter.Int64Counter("socsim_narrative_fetch_total",
		metric.WithDescription("Narratives resolved, by source and failure kind"))
	if err != nil {
		return nil, err
	}

	return &Metrics{alerts: alerts, telemetry: telemetry, narratives: narratives}, nil
}

func (m *Metrics) alertEmitted(ctx context.Context, s event.Severity) {
	if m == nil {
		return
	}
	m.alerts.Add(ctx, 1, metric.WithAttributes(attribute.String("severity", s.String())))
}

func (m *Metrics) telemetryAppended(ctx context.Context) {
	if m == nil {
		return
	}
	m.telemetry.Add(ctx, 1)
}

func (m *Metrics) narrativeResolved(ctx context.Context, source event.NarrativeSource, kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "none"
	}
	m.narratives.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", string(source)),
		attribute.String("kind", kind),
	))
}
