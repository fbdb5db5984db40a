package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/tomz197/glider/internal/assets"
	"github.com/tomz197/glider/internal/config"
	"github.com/tomz197/glider/internal/draw"
	"github.com/tomz197/glider/internal/game"
	"github.com/tomz197/glider/internal/obstacle"
)

// Floor grid drawn under the corridor so forward motion is visible.
const (
	floorY       = -config.GateHeight - 1.5
	floorHalfW   = 8.0
	floorSpacing = 5.0
	floorAhead   = 60.0
	floorBehind  = 5.0
)

var (
	starSpinAxis = mgl64.Vec3{0, 1, 0}
	bombSpinAxis = mgl64.Vec3{1, 1, 0}.Normalize()
)

type screen int

const (
	screenNone screen = iota
	screenLoading
	screenTitle
	screenPlaying
	screenGameOver
)

// Options configures a Terminal.
type Options struct {
	SizeFunc  draw.TermSizeFunc
	MaxWidth  int // Render area cap in columns, 0 for config.MaxTermWidth
	MaxHeight int
	Logger    zerolog.Logger
}

// Terminal draws frames to an ANSI terminal. It also receives HUD updates
// from the game machine.
type Terminal struct {
	w         io.Writer
	sizeFunc  draw.TermSizeFunc
	maxWidth  int
	maxHeight int
	canvas    *draw.Canvas
	text      *draw.ChunkWriter
	projected []projected
	debris    *debris
	shown     screen
	log       zerolog.Logger

	score      int
	lives      int
	gameOver   bool
	finalScore int
}

type projected struct {
	p  draw.Point
	ok bool
}

// NewTerminal creates a renderer writing to w.
func NewTerminal(w io.Writer, opts Options) *Terminal {
	sizeFunc := opts.SizeFunc
	if sizeFunc == nil {
		sizeFunc = draw.DefaultTermSizeFunc
	}
	maxW, maxH := opts.MaxWidth, opts.MaxHeight
	if maxW <= 0 {
		maxW = config.MaxTermWidth
	}
	if maxH <= 0 {
		maxH = config.MaxTermHeight
	}

	t := &Terminal{
		w:         w,
		sizeFunc:  sizeFunc,
		maxWidth:  maxW,
		maxHeight: maxH,
		lives:     config.InitialLives,
		debris:    newDebris(),
		log:       opts.Logger,
	}
	termW, termH, err := sizeFunc()
	if err != nil {
		termW, termH = 80, 24
	}
	renderW, renderH, offCol, offRow := draw.ClampTermSize(termW, termH, maxW, maxH)
	t.canvas = draw.NewCanvas(renderW, renderH)
	t.canvas.SetOffset(offCol, offRow)
	t.text = draw.NewChunkWriter(w, offCol, offRow)
	return t
}

// Setup prepares the terminal for drawing.
func (t *Terminal) Setup() {
	draw.HideCursor(t.w)
	draw.EnableMouse(t.w)
	draw.ClearScreen(t.w)
}

// Teardown restores the terminal.
func (t *Terminal) Teardown() {
	draw.DisableMouse(t.w)
	draw.ClearScreen(t.w)
	draw.ShowCursor(t.w)
}

func (t *Terminal) ShowScore(display int) { t.score = display }
func (t *Terminal) ShowLives(lives int)   { t.lives = lives }

func (t *Terminal) ShowGameOver(display int) {
	t.gameOver = true
	t.finalScore = display
}

func (t *Terminal) HideOverlay() { t.gameOver = false }

var _ game.HUD = (*Terminal)(nil)

// DrawLoading presents the loading indicator.
func (t *Terminal) DrawLoading(elapsed float64) error {
	t.updateScreen()
	t.enter(screenLoading)

	cx, cy := t.center()
	spinner := `|/-\`
	frame := int(elapsed*8) % len(spinner)
	t.text.WriteCentered(cx, cy, fmt.Sprintf("loading %c", spinner[frame]))
	return t.text.Flush()
}

// DrawScene draws the world and the overlay for the current state.
func (t *Terminal) DrawScene(s Scene) error {
	t.updateScreen()
	switch {
	case s.State == game.StateGameOver || t.gameOver:
		t.enter(screenGameOver)
	case s.State == game.StateActive:
		t.enter(screenPlaying)
	default:
		t.enter(screenTitle)
	}

	t.canvas.Clear()
	t.debris.update(s.Gates, s.Elapsed)

	pw, ph := t.canvas.PixelWidth(), t.canvas.PixelHeight()
	if pw > 0 && ph > 0 {
		vp := s.Rig.ViewProjection(float64(pw) / float64(ph))
		t.drawFloor(vp, s)
		t.drawGates(vp, s)
		t.debris.draw(t, vp)
		if s.PlaneVisible && s.PlaneModel != nil {
			t.drawModel(vp, s.Rig.Eye, s.PlaneModel, s.PlanePosition, s.PlaneRotation)
		}
	}

	t.canvas.Render(t.text)
	t.canvas.RenderBorder(t.text)

	switch t.shown {
	case screenPlaying:
		t.drawHUD()
	case screenGameOver:
		t.drawHUD()
		t.drawGameOver()
	case screenTitle:
		t.drawTitle()
	}
	return t.text.Flush()
}

// enter clears the terminal when the screen changes so text from the
// previous screen does not linger.
func (t *Terminal) enter(s screen) {
	if s == t.shown {
		return
	}
	t.log.Debug().Int("screen", int(s)).Msg("screen changed")
	t.text.WriteString("\033[H\033[2J")
	t.canvas.ForceRedraw()
	t.shown = s
}

// updateScreen handles terminal resize, clamping to max render resolution.
func (t *Terminal) updateScreen() {
	termW, termH, err := t.sizeFunc()
	if err != nil {
		return
	}
	renderW, renderH, offCol, offRow := draw.ClampTermSize(termW, termH, t.maxWidth, t.maxHeight)
	if t.canvas.Resize(renderW, renderH) || offCol != t.canvas.OffsetCol() || offRow != t.canvas.OffsetRow() {
		t.text.WriteString("\033[H\033[2J")
		t.canvas.ForceRedraw()
	}
	t.canvas.SetOffset(offCol, offRow)
	t.text.SetOffset(offCol, offRow)
}

func (t *Terminal) center() (int, int) {
	return t.canvas.TerminalWidth()/2 + 1, t.canvas.TerminalHeight()/2 + 1
}

// project maps a world point to canvas pixels. ok is false for points
// behind the near plane or far outside the view.
func (t *Terminal) project(vp mgl64.Mat4, world mgl64.Vec3) (draw.Point, bool) {
	clip := vp.Mul4x1(world.Vec4(1))
	if clip.W() < config.CameraNear {
		return draw.Point{}, false
	}
	x, y := clip.X()/clip.W(), clip.Y()/clip.W()
	if math.Abs(x) > 4 || math.Abs(y) > 4 {
		return draw.Point{}, false
	}
	pw, ph := float64(t.canvas.PixelWidth()), float64(t.canvas.PixelHeight())
	return draw.Point{
		X: (x + 1) / 2 * (pw - 1),
		Y: (1 - y) / 2 * (ph - 1),
	}, true
}

func (t *Terminal) line(vp mgl64.Mat4, a, b mgl64.Vec3, level draw.Level) {
	pa, okA := t.project(vp, a)
	pb, okB := t.project(vp, b)
	if okA && okB {
		t.canvas.DrawLine(pa, pb, level)
	}
}

// drawModel projects a model's edges. Nearer models are brighter.
func (t *Terminal) drawModel(vp mgl64.Mat4, eye mgl64.Vec3, m *assets.Model, pos mgl64.Vec3, rot mgl64.Quat) {
	if cap(t.projected) < len(m.Vertices) {
		t.projected = make([]projected, len(m.Vertices))
	}
	pts := t.projected[:len(m.Vertices)]
	for i, v := range m.Vertices {
		pts[i].p, pts[i].ok = t.project(vp, pos.Add(rot.Rotate(v)))
	}

	level := depthLevel(pos.Sub(eye).Len())
	for _, e := range m.Edges {
		a, b := pts[e[0]], pts[e[1]]
		if a.ok && b.ok {
			t.canvas.DrawLine(a.p, b.p, level)
		}
	}
}

func depthLevel(dist float64) draw.Level {
	switch {
	case dist < 15:
		return draw.LevelBright
	case dist < 35:
		return draw.LevelMid
	default:
		return draw.LevelDim
	}
}

func (t *Terminal) drawGates(vp mgl64.Mat4, s Scene) {
	starRot := mgl64.QuatRotate(s.Elapsed*2, starSpinAxis)
	bombRot := mgl64.QuatRotate(s.Elapsed*0.7, bombSpinAxis)
	for _, g := range s.Gates {
		for _, o := range g.Obstacles {
			if o.Hit {
				continue
			}
			switch o.Kind {
			case obstacle.KindStar:
				if s.StarModel != nil {
					t.drawModel(vp, s.Rig.Eye, s.StarModel, o.Position, starRot)
				}
			case obstacle.KindBomb:
				if s.BombModel != nil {
					t.drawModel(vp, s.Rig.Eye, s.BombModel, o.Position, bombRot)
				}
			}
		}
	}
}

func (t *Terminal) drawFloor(vp mgl64.Mat4, s Scene) {
	z0 := s.PlanePosition.Z() - floorBehind
	z1 := s.PlanePosition.Z() + floorAhead
	for z := math.Ceil(z0/floorSpacing) * floorSpacing; z <= z1; z += floorSpacing {
		t.line(vp, mgl64.Vec3{-floorHalfW, floorY, z}, mgl64.Vec3{floorHalfW, floorY, z}, draw.LevelDim)
	}
	for _, x := range []float64{-floorHalfW, floorHalfW} {
		t.line(vp, mgl64.Vec3{x, floorY, z0}, mgl64.Vec3{x, floorY, z1}, draw.LevelDim)
	}
}

// drawHUD draws score and lives. Fixed-width fields overwrite shrinking
// values since the screen is not cleared every frame.
func (t *Terminal) drawHUD() {
	width := t.canvas.TerminalWidth()
	t.text.WriteAt(2, 1, fmt.Sprintf("Score: %-8d", t.score))

	hearts := strings.Repeat("♥ ", max(t.lives, 0))
	livesText := fmt.Sprintf("Lives: %-*s", 2*config.InitialLives, hearts)
	t.text.WriteAt(width-len([]rune(livesText))-1, 1, livesText)
}

func (t *Terminal) drawTitle() {
	titleArt := []string{
		`  ___ _    ___ ___  ___ ___  `,
		` / __| |  |_ _|   \| __| _ \ `,
		`| (_ | |__ | || |) | _||   / `,
		` \___|____|___|___/|___|_|_\ `,
	}
	cx, cy := t.center()
	top := cy - 8
	for i, line := range titleArt {
		t.text.WriteCentered(cx, top+i, line)
	}
	t.text.WriteCentered(cx, top+len(titleArt)+1, "~ fly through the stars, dodge the bombs ~")

	controls := []string{
		"SPACE / click  . . Climb",
		"ENTER / P  . . . . Start",
		"Q  . . . . . . . .  Quit",
	}
	row := cy + 4
	for i, line := range controls {
		t.text.WriteCentered(cx, row+i, line)
	}
}

func (t *Terminal) drawGameOver() {
	cx, cy := t.center()
	t.text.WriteCenteredBold(cx, cy-2, "G A M E   O V E R")
	t.text.WriteCentered(cx, cy, fmt.Sprintf("Final score: %d", t.finalScore))
	t.text.WriteCentered(cx, cy+2, "Press ENTER to fly again")
}
