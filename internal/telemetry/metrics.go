// Package telemetry holds the gameplay counters and the OpenTelemetry
// provider that exports them.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/tomz197/glider"

// Metrics counts gameplay events.
type Metrics struct {
	sessions   metric.Int64Counter
	scores     metric.Int64Counter
	collisions metric.Int64Counter
	gameOvers  metric.Int64Counter
	finalScore metric.Int64Histogram
}

// NewMetricsFrom builds the counters from mp.
func NewMetricsFrom(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)
	m := &Metrics{}
	var err error

	if m.sessions, err = meter.Int64Counter("glider.sessions",
		metric.WithDescription("Games started")); err != nil {
		return nil, fmt.Errorf("sessions counter: %w", err)
	}
	if m.scores, err = meter.Int64Counter("glider.score_events",
		metric.WithDescription("Stars collected")); err != nil {
		return nil, fmt.Errorf("score counter: %w", err)
	}
	if m.collisions, err = meter.Int64Counter("glider.collisions",
		metric.WithDescription("Bombs hit")); err != nil {
		return nil, fmt.Errorf("collision counter: %w", err)
	}
	if m.gameOvers, err = meter.Int64Counter("glider.game_overs",
		metric.WithDescription("Games ended")); err != nil {
		return nil, fmt.Errorf("game over counter: %w", err)
	}
	if m.finalScore, err = meter.Int64Histogram("glider.final_score",
		metric.WithDescription("Displayed score when a game ends")); err != nil {
		return nil, fmt.Errorf("final score histogram: %w", err)
	}
	return m, nil
}

func (m *Metrics) SessionStarted(ctx context.Context) {
	m.sessions.Add(ctx, 1)
}

// Scored records a star pickup; bonus marks pickups that also paid a bonus.
func (m *Metrics) Scored(ctx context.Context, bonus bool) {
	m.scores.Add(ctx, 1, metric.WithAttributes(attribute.Bool("bonus", bonus)))
}

func (m *Metrics) Collided(ctx context.Context) {
	m.collisions.Add(ctx, 1)
}

func (m *Metrics) GameOver(ctx context.Context, displayScore int) {
	m.gameOvers.Add(ctx, 1)
	m.finalScore.Record(ctx, int64(displayScore))
}
