// Package loop provides the fixed-rate simulation loop that drives input,
// the game machine, the plane, the obstacle field and the renderer.
package loop

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/tomz197/glider/internal/assets"
	"github.com/tomz197/glider/internal/camera"
	"github.com/tomz197/glider/internal/clock"
	"github.com/tomz197/glider/internal/config"
	"github.com/tomz197/glider/internal/game"
	"github.com/tomz197/glider/internal/input"
	"github.com/tomz197/glider/internal/obstacle"
	"github.com/tomz197/glider/internal/render"
)

// PlaneLike is the flyable entity as seen by the loop.
type PlaneLike interface {
	Ready() bool
	Update(elapsed float64, in input.State, active bool)
	Position() mgl64.Vec3
	Orientation() mgl64.Quat
	Visible() bool
	Model() *assets.Model
}

// ObstacleFieldLike is the obstacle corridor as seen by the loop.
type ObstacleFieldLike interface {
	Ready() bool
	Update(planePos mgl64.Vec3)
	Gates() []obstacle.Gate
	Models() (bomb, star *assets.Model)
}

// Game is the state machine as seen by the loop.
type Game interface {
	MarkReady()
	StartGame() error
	Active() bool
	State() game.State
}

// Renderer presents frames.
type Renderer interface {
	DrawLoading(elapsed float64) error
	DrawScene(s render.Scene) error
}

// InputSource yields the input events that arrived since the last poll.
type InputSource interface {
	Poll(now time.Time) []input.Event
}

// Phase is the asset readiness latch.
type Phase int

const (
	PhaseAwaitingAssets Phase = iota
	PhaseRunning              // Never reverts
)

func (p Phase) String() string {
	if p == PhaseRunning {
		return "running"
	}
	return "awaiting-assets"
}

// Options wires the loop. Clock defaults to a monotonic clock, FrameTime
// to config.TargetFrameTime.
type Options struct {
	Plane     PlaneLike
	Obstacles ObstacleFieldLike
	Game      Game
	Renderer  Renderer
	Input     InputSource
	Clock     clock.Clock
	FrameTime time.Duration
	Logger    zerolog.Logger
}

// Loop runs the Input → Update → Draw cycle on a single goroutine.
type Loop struct {
	plane     PlaneLike
	obstacles ObstacleFieldLike
	game      Game
	renderer  Renderer
	in        InputSource
	clock     clock.Clock
	frameTime time.Duration
	log       zerolog.Logger

	phase  Phase
	input  input.State
	rig    camera.Rig
	quit   bool
	frames uint64
}

// New creates a loop awaiting assets.
func New(opts Options) *Loop {
	clk := opts.Clock
	if clk == nil {
		clk = clock.NewMonotonic()
	}
	frameTime := opts.FrameTime
	if frameTime <= 0 {
		frameTime = config.TargetFrameTime
	}
	return &Loop{
		plane:     opts.Plane,
		obstacles: opts.Obstacles,
		game:      opts.Game,
		renderer:  opts.Renderer,
		in:        opts.Input,
		clock:     clk,
		frameTime: frameTime,
		log:       opts.Logger,
	}
}

func (l *Loop) Phase() Phase             { return l.phase }
func (l *Loop) Input() input.State       { return l.input }
func (l *Loop) Rig() camera.Rig          { return l.rig }
func (l *Loop) QuitRequested() bool      { return l.quit }
func (l *Loop) Frames() uint64           { return l.frames }
func (l *Loop) FrameTime() time.Duration { return l.frameTime }

// Run ticks at a fixed rate until quit is requested, ctx is cancelled or
// a frame fails to render.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		frameStart := time.Now()
		if err := l.Tick(frameStart); err != nil {
			return err
		}
		if l.quit {
			l.log.Info().Uint64("frames", l.frames).Msg("quit requested")
			return nil
		}

		elapsed := time.Since(frameStart)
		if elapsed < l.frameTime {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(l.frameTime - elapsed):
			}
		}
	}
}

// Tick runs one frame: drain input, check the readiness latch, advance the
// simulation when running and draw.
func (l *Loop) Tick(now time.Time) error {
	l.frames++

	// ===== INPUT PHASE =====
	if l.in != nil {
		for _, ev := range l.in.Poll(now) {
			l.handle(ev)
		}
	}
	if l.quit {
		return nil
	}

	elapsed := l.clock.Elapsed()

	if l.phase == PhaseAwaitingAssets {
		if !l.plane.Ready() || !l.obstacles.Ready() {
			if err := l.renderer.DrawLoading(elapsed); err != nil {
				return fmt.Errorf("draw loading: %w", err)
			}
			return nil
		}
		l.phase = PhaseRunning
		l.game.MarkReady()
		l.log.Info().Uint64("frame", l.frames).Msg("assets ready")
	}

	// ===== UPDATE PHASE =====
	if l.game.Active() {
		l.obstacles.Update(l.plane.Position())
	}
	// A collision above may have ended the game; the plane sees the result.
	l.plane.Update(elapsed, l.input, l.game.Active())
	l.rig = camera.Follow(l.plane.Position())

	// ===== DRAW PHASE =====
	bomb, star := l.obstacles.Models()
	scene := render.Scene{
		Rig:           l.rig,
		State:         l.game.State(),
		Elapsed:       elapsed,
		PlaneModel:    l.plane.Model(),
		PlanePosition: l.plane.Position(),
		PlaneRotation: l.plane.Orientation(),
		PlaneVisible:  l.plane.Visible(),
		Gates:         l.obstacles.Gates(),
		BombModel:     bomb,
		StarModel:     star,
	}
	if err := l.renderer.DrawScene(scene); err != nil {
		return fmt.Errorf("draw scene: %w", err)
	}
	return nil
}

func (l *Loop) handle(ev input.Event) {
	switch ev.Kind {
	case input.ThrustDown, input.ThrustUp:
		l.input.Apply(ev)
	case input.Start:
		l.requestStart()
	case input.Quit:
		l.quit = true
	}
}

// requestStart starts a game from the title or game-over screen. Requests
// while loading or already flying are dropped.
func (l *Loop) requestStart() {
	if l.phase != PhaseRunning || l.game.Active() {
		l.log.Debug().Stringer("phase", l.phase).Msg("start ignored")
		return
	}
	if err := l.game.StartGame(); err != nil {
		l.log.Warn().Err(err).Msg("start game")
	}
}
