package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	s, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, "glider.log", s.Log.File)
	assert.True(t, s.Audio.Enabled)
	assert.Equal(t, 600*time.Millisecond, s.Input.KeyHold)
	assert.Greater(t, s.Input.KeyHold, 500*time.Millisecond, "hold window outlasts the usual autorepeat delay")
	assert.True(t, s.Telemetry.Enabled)
	assert.Equal(t, "glider-metrics.json", s.Telemetry.File)
	assert.Equal(t, time.Minute, s.Telemetry.Interval)
	assert.Equal(t, 0.0, s.Flight.MaxForwardSpeed)
	assert.Equal(t, uint64(0), s.Obstacles.Seed)
	assert.Equal(t, "::", s.SSH.Host)
	assert.Equal(t, "2222", s.SSH.Port)
	assert.Equal(t, "/app/keys/host_key", s.SSH.HostKeyPath)
	assert.Equal(t, "0.0.0.0", s.Web.Host)
	assert.Equal(t, "8080", s.Web.Port)
}

func TestLoad_WithConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := `
[log]
level = "debug"

[audio]
enabled = false

[telemetry]
enabled = false
interval = "10s"

[input]
keyHold = "400ms"

[flight]
maxForwardSpeed = 0.5

[obstacles]
seed = 42
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "glider.toml"), []byte(cfg), 0644))

	s, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", s.Log.Level)
	assert.False(t, s.Audio.Enabled)
	assert.False(t, s.Telemetry.Enabled)
	assert.Equal(t, 10*time.Second, s.Telemetry.Interval)
	assert.Equal(t, 400*time.Millisecond, s.Input.KeyHold)
	assert.Equal(t, 0.5, s.Flight.MaxForwardSpeed)
	assert.Equal(t, uint64(42), s.Obstacles.Seed)
	assert.Equal(t, "2222", s.SSH.Port, "unset keys keep defaults")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GLIDER_SSH_PORT", "2300")
	t.Setenv("GLIDER_LOG_LEVEL", "warn")

	s, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "2300", s.SSH.Port)
	assert.Equal(t, "warn", s.Log.Level)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "glider.toml"), []byte("[log\nlevel="), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoopSettings_FrameTime(t *testing.T) {
	s, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, TargetFPS, s.Loop.FPS)
	assert.Equal(t, TargetFrameTime, s.Loop.FrameTime())

	assert.Equal(t, 20*time.Millisecond, LoopSettings{FPS: 50}.FrameTime())
	assert.Equal(t, TargetFrameTime, LoopSettings{}.FrameTime())
}
