package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/tomz197/glider/internal/app"
	"github.com/tomz197/glider/internal/audio"
	"github.com/tomz197/glider/internal/audio/speaker"
	"github.com/tomz197/glider/internal/config"
	"github.com/tomz197/glider/internal/logging"
	"github.com/tomz197/glider/internal/telemetry"
	"golang.org/x/term"
)

func main() {
	configDir := flag.String("config", ".", "directory containing glider.toml")
	flag.Parse()

	settings, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The screen belongs to the game, so logs go to a file.
	log, closer, err := logging.NewFile(settings.Log.File, settings.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(settings, log); err != nil {
		log.Error().Err(err).Msg("game error")
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		closer.Close()
		os.Exit(1)
	}
}

func run(settings config.Settings, log zerolog.Logger) error {
	provider, err := telemetry.Open(settings.Telemetry, "glider")
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to flush metrics")
		}
	}()
	metrics, err := telemetry.NewMetricsFrom(provider.MeterProvider())
	if err != nil {
		return err
	}

	var cues audio.Cues = audio.NewBell(os.Stdout)
	if settings.Audio.Enabled {
		spk := speaker.New(logging.Component(log, "audio"))
		if err := spk.Initialize(); err != nil {
			log.Warn().Err(err).Msg("no sound device, falling back to terminal bell")
		} else {
			spk.LoadAll(audio.DefaultCues)
			defer spk.Close()
			cues = spk
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx, app.Options{
		Settings: settings,
		In:       os.Stdin,
		Out:      os.Stdout,
		Cues:     cues,
		Metrics:  metrics,
		Logger:   log,
	})
}
