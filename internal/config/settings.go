// Package config centralizes tunable game parameters and runtime settings.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ConfigName is the settings file looked up in the config directory (glider.toml).
const ConfigName = "glider"

// EnvPrefix prefixes environment overrides, e.g. GLIDER_SSH_PORT.
const EnvPrefix = "GLIDER"

// Settings holds runtime settings that may differ per deployment.
type Settings struct {
	Log       LogSettings       `mapstructure:"log"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
	Audio     AudioSettings     `mapstructure:"audio"`
	Input     InputSettings     `mapstructure:"input"`
	Loop      LoopSettings      `mapstructure:"loop"`
	Flight    FlightSettings    `mapstructure:"flight"`
	Obstacles ObstacleSettings  `mapstructure:"obstacles"`
	SSH       SSHSettings       `mapstructure:"ssh"`
	Web       WebSettings       `mapstructure:"web"`
}

// LogSettings configures the diagnostic log. File is used by terminal
// binaries, where stdout belongs to the game screen.
type LogSettings struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// TelemetrySettings configures the metrics export. Metrics are written as
// JSON to File every Interval and once more on exit.
type TelemetrySettings struct {
	Enabled  bool          `mapstructure:"enabled"`
	File     string        `mapstructure:"file"`
	Interval time.Duration `mapstructure:"interval"`
}

type AudioSettings struct {
	Enabled bool `mapstructure:"enabled"`
}

// InputSettings configures the terminal input parser.
//
// Terminals send no key release, so a key counts as held until KeyHold
// passes without a repeat. KeyHold must outlast the terminal's autorepeat
// delay (commonly 500ms) or holding a key drops thrust briefly before the
// repeats start; longer values make releases feel later.
type InputSettings struct {
	KeyHold time.Duration `mapstructure:"keyHold"`
}

type LoopSettings struct {
	FPS int `mapstructure:"fps"`
}

// FrameTime returns the frame budget for FPS, TargetFrameTime when unset.
func (l LoopSettings) FrameTime() time.Duration {
	if l.FPS <= 0 {
		return TargetFrameTime
	}
	return time.Second / time.Duration(l.FPS)
}

// FlightSettings configures the plane.
type FlightSettings struct {
	MaxForwardSpeed float64 `mapstructure:"maxForwardSpeed"` // 0 leaves forward speed unbounded
}

type ObstacleSettings struct {
	Seed uint64 `mapstructure:"seed"` // 0 picks a seed from the clock
}

// SSHSettings configures cmd/ssh.
type SSHSettings struct {
	Host        string `mapstructure:"host"`
	Port        string `mapstructure:"port"`
	HostKeyPath string `mapstructure:"hostKey"`
}

// WebSettings configures cmd/web.
type WebSettings struct {
	Host        string `mapstructure:"host"`
	Port        string `mapstructure:"port"`
	DisplayHost string `mapstructure:"displayHost"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "glider.log")

	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.file", "glider-metrics.json")
	v.SetDefault("telemetry.interval", "1m")

	v.SetDefault("audio.enabled", true)

	v.SetDefault("input.keyHold", "600ms")

	v.SetDefault("loop.fps", TargetFPS)

	v.SetDefault("flight.maxForwardSpeed", 0.0)

	v.SetDefault("obstacles.seed", 0)

	v.SetDefault("ssh.host", "::")
	v.SetDefault("ssh.port", "2222")
	v.SetDefault("ssh.hostKey", "/app/keys/host_key")

	v.SetDefault("web.host", "0.0.0.0")
	v.SetDefault("web.port", "8080")
	v.SetDefault("web.displayHost", "your-server.com")
}

// Load reads glider.toml from configDir (if present), applies defaults and
// GLIDER_* environment overrides. A missing file is not an error.
func Load(configDir string) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(ConfigName)
	v.SetConfigType("toml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %w", err)
	}
	return s, nil
}
