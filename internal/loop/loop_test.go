package loop

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomz197/glider/internal/assets"
	"github.com/tomz197/glider/internal/audio"
	"github.com/tomz197/glider/internal/clock"
	"github.com/tomz197/glider/internal/config"
	"github.com/tomz197/glider/internal/game"
	"github.com/tomz197/glider/internal/input"
	"github.com/tomz197/glider/internal/obstacle"
	"github.com/tomz197/glider/internal/plane"
	"github.com/tomz197/glider/internal/render"
)

// fakeField fires queued events on its next Update.
type fakeField struct {
	ready   bool
	events  obstacle.Events
	queue   []string
	updates int
	resets  int
}

func (f *fakeField) Ready() bool                        { return f.ready }
func (f *fakeField) Gates() []obstacle.Gate             { return nil }
func (f *fakeField) Models() (bomb, star *assets.Model) { return nil, nil }
func (f *fakeField) Reset()                             { f.resets++ }

func (f *fakeField) Update(mgl64.Vec3) {
	f.updates++
	queue := f.queue
	f.queue = nil
	for _, e := range queue {
		switch e {
		case "score":
			f.events.OnScoreEvent()
		case "hit":
			f.events.OnCollisionEvent()
		}
	}
}

type fakeRenderer struct {
	loading int
	scenes  []render.Scene
	err     error
}

func (r *fakeRenderer) DrawLoading(float64) error {
	r.loading++
	return r.err
}

func (r *fakeRenderer) DrawScene(s render.Scene) error {
	r.scenes = append(r.scenes, s)
	return r.err
}

func (r *fakeRenderer) last() render.Scene { return r.scenes[len(r.scenes)-1] }

type fakeInput struct{ pending []input.Event }

func (f *fakeInput) push(evs ...input.Event) { f.pending = append(f.pending, evs...) }

func (f *fakeInput) Poll(time.Time) []input.Event {
	evs := f.pending
	f.pending = nil
	return evs
}

type fakeCues struct{ calls []string }

func (c *fakeCues) Play(name string) { c.calls = append(c.calls, name) }
func (c *fakeCues) StopAll()         { c.calls = append(c.calls, "stop") }

type harness struct {
	loop     *Loop
	plane    *plane.Plane
	field    *fakeField
	machine  *game.Machine
	renderer *fakeRenderer
	input    *fakeInput
	cues     *fakeCues
	clock    *clock.Manual
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		plane:    plane.New(plane.Options{}),
		field:    &fakeField{},
		renderer: &fakeRenderer{},
		input:    &fakeInput{},
		cues:     &fakeCues{},
		clock:    clock.NewManual(0),
	}
	h.machine = game.New(game.Options{
		Plane:     h.plane,
		Obstacles: h.field,
		Cues:      h.cues,
		Logger:    zerolog.Nop(),
	})
	h.field.events = h.machine
	h.loop = New(Options{
		Plane:     h.plane,
		Obstacles: h.field,
		Game:      h.machine,
		Renderer:  h.renderer,
		Input:     h.input,
		Clock:     h.clock,
		Logger:    zerolog.Nop(),
	})
	return h
}

func (h *harness) makeReady() {
	h.plane.SetModel(&assets.Model{Name: "plane"})
	h.field.ready = true
}

func (h *harness) tick(t *testing.T) {
	t.Helper()
	h.clock.Advance(config.TargetFrameTime)
	require.NoError(t, h.loop.Tick(time.Now()))
}

func press(kind input.Kind) input.Event {
	return input.Event{Kind: kind, Source: input.SourceKey}
}

func TestTick_AwaitingAssetsDrawsLoadingOnly(t *testing.T) {
	h := newHarness(t)
	h.plane.SetModel(&assets.Model{Name: "plane"})

	for i := 0; i < 3; i++ {
		h.tick(t)
	}
	assert.Equal(t, PhaseAwaitingAssets, h.loop.Phase())
	assert.Equal(t, 3, h.renderer.loading)
	assert.Empty(t, h.renderer.scenes)
	assert.Zero(t, h.field.updates)
	assert.Equal(t, mgl64.Vec3{}, h.plane.Position(), "no gameplay update while loading")
	assert.Equal(t, game.StateLoading, h.machine.State())
}

func TestTick_LatchFlipsOnceAndNeverReverts(t *testing.T) {
	h := newHarness(t)
	h.tick(t)
	h.makeReady()
	h.tick(t)

	assert.Equal(t, PhaseRunning, h.loop.Phase())
	assert.Equal(t, game.StateIdle, h.machine.State())
	assert.Len(t, h.renderer.scenes, 1, "the latching tick already renders")

	h.field.ready = false
	h.tick(t)
	assert.Equal(t, PhaseRunning, h.loop.Phase())
	assert.Equal(t, 1, h.renderer.loading)
}

func TestTick_StartIgnoredBeforeRunning(t *testing.T) {
	h := newHarness(t)
	h.input.push(press(input.Start))
	h.tick(t)
	assert.Equal(t, game.StateLoading, h.machine.State())
	assert.Empty(t, h.cues.calls)
}

func TestTick_IdleBobsWithoutObstacleUpdates(t *testing.T) {
	h := newHarness(t)
	h.makeReady()

	for i := 0; i < 30; i++ {
		h.tick(t)
		elapsed := h.clock.Elapsed()
		assert.InDelta(t, math.Cos(elapsed)*config.IdleBobAmplitude, h.plane.Position().Y(), 1e-9)
	}
	assert.Zero(t, h.field.updates)
	assert.False(t, h.machine.Active())
}

func TestTick_ThrustInputReachesPlane(t *testing.T) {
	h := newHarness(t)
	h.makeReady()
	h.tick(t)
	h.input.push(press(input.Start))
	h.tick(t)
	require.True(t, h.machine.Active())

	vy := h.plane.Velocity().Y()
	h.input.push(input.Event{Kind: input.ThrustDown, Source: input.SourceMouse})
	h.tick(t)
	assert.True(t, h.loop.Input().ThrustHeld)
	assert.InDelta(t, vy+config.ClimbAccel, h.plane.Velocity().Y(), 1e-12)

	h.input.push(input.Event{Kind: input.ThrustUp, Source: input.SourceMouse})
	h.tick(t)
	assert.False(t, h.loop.Input().ThrustHeld)
}

func TestTick_CameraFollowsPlane(t *testing.T) {
	h := newHarness(t)
	h.makeReady()
	h.tick(t)

	pos := h.plane.Position()
	rig := h.loop.Rig()
	assert.Equal(t, 0.0, rig.Controller.Y())
	assert.Equal(t, pos.Z(), rig.Controller.Z())
	assert.Equal(t, rig, h.renderer.last().Rig)
}

func TestTick_QuitStopsBeforeUpdate(t *testing.T) {
	h := newHarness(t)
	h.makeReady()
	h.input.push(press(input.Quit))
	h.tick(t)

	assert.True(t, h.loop.QuitRequested())
	assert.Empty(t, h.renderer.scenes)
}

func TestTick_RendererError(t *testing.T) {
	h := newHarness(t)
	boom := errors.New("broken pipe")
	h.renderer.err = boom
	err := h.loop.Tick(time.Now())
	assert.ErrorIs(t, err, boom)
}

func TestScenario_FullSession(t *testing.T) {
	h := newHarness(t)

	// Loading, then assets arrive.
	h.tick(t)
	h.makeReady()
	h.tick(t)
	require.Equal(t, PhaseRunning, h.loop.Phase())
	assert.False(t, h.machine.Active())

	// Idle bobbing.
	for i := 0; i < 10; i++ {
		h.tick(t)
	}
	assert.NotEqual(t, 0.0, h.plane.Position().Y())

	// Start.
	h.input.push(press(input.Start))
	h.tick(t)
	require.True(t, h.machine.Active())
	s := h.machine.Session()
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, 3, s.Lives)
	assert.Equal(t, []string{audio.CueEngine}, h.cues.calls)

	// The plane was reset to the origin then flew a single active frame.
	pos := h.plane.Position()
	assert.InDelta(t, 0, pos.Y(), 0.01)
	assert.InDelta(t, config.InitialForward+config.ForwardAccel, pos.Z(), 0.01)

	// A second start while flying is ignored.
	h.input.push(press(input.Start))
	h.tick(t)
	assert.Equal(t, 1, h.field.resets)

	// Three stars.
	h.field.queue = []string{"score", "score", "score"}
	h.tick(t)
	s = h.machine.Session()
	assert.Equal(t, 3, s.Score)
	assert.Equal(t, 3, s.Bonus)
	assert.Equal(t, 6, h.machine.DisplayScore())

	// Three bombs end the game exactly once.
	h.cues.calls = nil
	h.field.queue = []string{"hit", "hit", "hit", "hit"}
	h.tick(t)
	s = h.machine.Session()
	assert.Equal(t, 0, s.Lives)
	assert.False(t, s.Active)
	assert.Equal(t, game.StateGameOver, h.last().State)
	assert.False(t, h.last().PlaneVisible)

	stop, over, gameOvers := -1, -1, 0
	for i, c := range h.cues.calls {
		switch c {
		case "stop":
			stop = i
		case audio.CueGameOver:
			over = i
			gameOvers++
		}
	}
	assert.Equal(t, 1, gameOvers)
	assert.Less(t, stop, over)

	// No more obstacle updates once the game is over.
	updates := h.field.updates
	h.tick(t)
	assert.Equal(t, updates, h.field.updates)

	// Restart clears everything.
	h.input.push(press(input.Start))
	h.tick(t)
	assert.Equal(t, game.Session{Lives: 3, Active: true}, h.machine.Session())
	assert.True(t, h.plane.Visible())
}

func (h *harness) last() render.Scene { return h.renderer.last() }

func TestRun_StopsOnQuit(t *testing.T) {
	h := newHarness(t)
	h.makeReady()
	h.loop.frameTime = time.Millisecond
	h.input.push(press(input.Quit))

	require.NoError(t, h.loop.Run(context.Background()))
	assert.Equal(t, uint64(1), h.loop.Frames())
}

func TestRun_StopsOnCancel(t *testing.T) {
	h := newHarness(t)
	h.makeReady()
	h.loop.frameTime = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	require.NoError(t, h.loop.Run(ctx))
	assert.Greater(t, h.loop.Frames(), uint64(1))
}

func TestRun_ReturnsRenderError(t *testing.T) {
	h := newHarness(t)
	boom := errors.New("closed")
	h.renderer.err = boom
	assert.ErrorIs(t, h.loop.Run(context.Background()), boom)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "awaiting-assets", PhaseAwaitingAssets.String())
	assert.Equal(t, "running", PhaseRunning.String())
}
