package vehicle

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the engine's OpenTelemetry counters. All methods are safe on
// the no-op instance, so callers never nil-check.
type Metrics struct {
	turns       metric.Int64Counter
	collisions  metric.Int64Counter
	partsBroken metric.Int64Counter
	shotsFired  metric.Int64Counter
}

// NewMetrics builds counters from the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error
	if m.turns, err = meter.Int64Counter("vehicle.turns",
		metric.WithDescription("simulation turns processed")); err != nil {
		return nil, err
	}
	if m.collisions, err = meter.Int64Counter("vehicle.collisions",
		metric.WithDescription("collisions resolved")); err != nil {
		return nil, err
	}
	if m.partsBroken, err = meter.Int64Counter("vehicle.parts_broken",
		metric.WithDescription("parts broken or destroyed")); err != nil {
		return nil, err
	}
	if m.shotsFired, err = meter.Int64Counter("vehicle.shots_fired",
		metric.WithDescription("turret shots discharged")); err != nil {
		return nil, err
	}
	return m, nil
}

// NopMetrics returns metrics that record nothing.
func NopMetrics() *Metrics {
	m, _ := NewMetrics(noop.Meter{})
	return m
}

func (m *Metrics) countTurn()       { m.turns.Add(context.Background(), 1) }
func (m *Metrics) countCollision()  { m.collisions.Add(context.Background(), 1) }
func (m *Metrics) countPartBroken() { m.partsBroken.Add(context.Background(), 1) }
func (m *Metrics) countShots(n int) { m.shotsFired.Add(context.Background(), int64(n)) }
