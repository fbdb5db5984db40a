// Package app assembles one playable game (plane, obstacles, state machine,
// renderer and input) on a terminal stream and runs it to completion.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/tomz197/glider/internal/assets"
	"github.com/tomz197/glider/internal/audio"
	"github.com/tomz197/glider/internal/clock"
	"github.com/tomz197/glider/internal/config"
	"github.com/tomz197/glider/internal/draw"
	"github.com/tomz197/glider/internal/game"
	"github.com/tomz197/glider/internal/input"
	"github.com/tomz197/glider/internal/logging"
	"github.com/tomz197/glider/internal/loop"
	"github.com/tomz197/glider/internal/obstacle"
	"github.com/tomz197/glider/internal/plane"
	"github.com/tomz197/glider/internal/render"
	"github.com/tomz197/glider/internal/telemetry"
)

// Options configures a game. Cues defaults to a terminal bell on Out and
// Loader to the embedded models.
type Options struct {
	Settings config.Settings
	In       io.Reader
	Out      io.Writer
	SizeFunc draw.TermSizeFunc
	Cues     audio.Cues
	Loader   *assets.Loader
	Metrics  *telemetry.Metrics
	Logger   zerolog.Logger
}

// Run plays one game on In/Out until the player quits, ctx is cancelled
// or the output fails.
func Run(ctx context.Context, opts Options) error {
	log := opts.Logger
	s := opts.Settings

	cues := opts.Cues
	if cues == nil {
		cues = audio.NewBell(opts.Out)
	}
	loader := opts.Loader
	if loader == nil {
		loader = assets.NewLoader(nil, logging.Component(log, "assets"))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := plane.New(plane.Options{MaxForwardSpeed: s.Flight.MaxForwardSpeed})
	field := obstacle.New(s.Obstacles.Seed)
	p.Load(ctx, loader)
	field.Load(ctx, loader)

	term := render.NewTerminal(opts.Out, render.Options{
		SizeFunc: opts.SizeFunc,
		Logger:   logging.Component(log, "render"),
	})

	machine := game.New(game.Options{
		Plane:     p,
		Obstacles: field,
		Cues:      cues,
		HUD:       term,
		Metrics:   opts.Metrics,
		Logger:    logging.Component(log, "game"),
	})
	field.SetEvents(machine)

	in := input.StartStream(ctx, opts.In, input.StreamOptions{
		KeyHold: s.Input.KeyHold,
		Logger:  logging.Component(log, "input"),
	})

	l := loop.New(loop.Options{
		Plane:     p,
		Obstacles: field,
		Game:      machine,
		Renderer:  term,
		Input:     in,
		Clock:     clock.NewMonotonic(),
		FrameTime: s.Loop.FrameTime(),
		Logger:    logging.Component(log, "loop"),
	})

	term.Setup()
	defer term.Teardown()
	defer cues.StopAll()

	if err := l.Run(ctx); err != nil {
		return fmt.Errorf("game loop: %w", err)
	}
	log.Info().Int("score", machine.DisplayScore()).Stringer("state", machine.State()).Msg("game finished")
	return nil
}
