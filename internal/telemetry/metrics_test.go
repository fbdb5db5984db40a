package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, r *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, r.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sum(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	s, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	var total int64
	for _, dp := range s.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RecordsGameplay(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := NewMetricsFrom(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)

	ctx := context.Background()
	m.SessionStarted(ctx)
	m.Scored(ctx, false)
	m.Scored(ctx, false)
	m.Scored(ctx, true)
	m.Collided(ctx)
	m.Collided(ctx)
	m.GameOver(ctx, 6)

	got := collect(t, reader)
	assert.Equal(t, int64(1), sum(t, got["glider.sessions"]))
	assert.Equal(t, int64(3), sum(t, got["glider.score_events"]))
	assert.Equal(t, int64(2), sum(t, got["glider.collisions"]))
	assert.Equal(t, int64(1), sum(t, got["glider.game_overs"]))

	hist, ok := got["glider.final_score"].(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.Equal(t, int64(6), hist.DataPoints[0].Sum)
}

func TestMetrics_ScoreBonusAttribute(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := NewMetricsFrom(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)

	ctx := context.Background()
	m.Scored(ctx, false)
	m.Scored(ctx, false)
	m.Scored(ctx, true)

	s, ok := collect(t, reader)["glider.score_events"].(metricdata.Sum[int64])
	require.True(t, ok)
	byBonus := map[bool]int64{}
	for _, dp := range s.DataPoints {
		v, found := dp.Attributes.Value(attribute.Key("bonus"))
		require.True(t, found)
		byBonus[v.AsBool()] += dp.Value
	}
	assert.Equal(t, map[bool]int64{false: 2, true: 1}, byBonus)
}

func TestNewMetricsFrom_Noop(t *testing.T) {
	m, err := NewMetricsFrom(noop.NewMeterProvider())
	require.NoError(t, err)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.SessionStarted(ctx)
		m.Scored(ctx, true)
		m.Collided(ctx)
		m.GameOver(ctx, 6)
	})
}
