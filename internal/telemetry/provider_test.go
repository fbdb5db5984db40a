package telemetry

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomz197/glider/internal/config"
)

func TestNew_ExportsOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(Config{Enabled: true, ServiceName: "glider-test", Writer: &buf, Interval: time.Hour})
	require.NoError(t, err)
	assert.True(t, p.Enabled())

	m, err := NewMetricsFrom(p.MeterProvider())
	require.NoError(t, err)
	m.SessionStarted(context.Background())
	m.GameOver(context.Background(), 9)

	require.NoError(t, p.Shutdown(context.Background()))
	out := buf.String()
	assert.Contains(t, out, "glider.sessions")
	assert.Contains(t, out, "glider.final_score")
	assert.Contains(t, out, "glider-test")
}

func TestNew_Disabled(t *testing.T) {
	p, err := New(Config{})
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NotNil(t, p.MeterProvider())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_EnabledWithoutWriter(t *testing.T) {
	_, err := New(Config{Enabled: true})
	assert.Error(t, err)
}

func TestOpen_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	p, err := Open(config.TelemetrySettings{Enabled: true, File: path, Interval: time.Hour}, "glider-test")
	require.NoError(t, err)

	m, err := NewMetricsFrom(p.MeterProvider())
	require.NoError(t, err)
	m.Collided(context.Background())
	require.NoError(t, p.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "glider.collisions")
}

func TestOpen_Disabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unused")
	p, err := Open(config.TelemetrySettings{File: path}, "glider-test")
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NoFileExists(t, path)
}
