// Package obstacle implements the corridor of stars and bombs the glider
// flies through. Gates are recycled ahead of the plane as it passes them.
package obstacle

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/glider/internal/assets"
	"github.com/tomz197/glider/internal/config"
	"github.com/tomz197/glider/internal/physics"
)

// Events receives gameplay events raised while the field updates.
type Events interface {
	OnScoreEvent()
	OnCollisionEvent()
}

// Kind distinguishes obstacle types.
type Kind int

const (
	KindStar Kind = iota // Collect for a point
	KindBomb             // Costs a life
)

// Obstacle is a single star or bomb.
type Obstacle struct {
	Kind     Kind
	Position mgl64.Vec3
	Hit      bool // Already collected or exploded this pass
}

// Radius returns the collision radius for the obstacle.
func (o Obstacle) Radius() float64 {
	if o.Kind == KindBomb {
		return config.BombRadius
	}
	return config.StarRadius
}

// Gate is one column of obstacles across the corridor.
type Gate struct {
	Z         float64
	Obstacles []Obstacle
}

// Field is the obstacle corridor.
type Field struct {
	gates  []Gate
	events Events
	seed   uint64
	rng    *rand.Rand

	last    mgl64.Vec3 // Plane position at the previous update
	hasLast bool

	bomb   atomic.Pointer[assets.Model]
	star   atomic.Pointer[assets.Model]
	loaded atomic.Int32
	ready  atomic.Bool
}

// New creates an empty field. A zero seed picks one from the clock.
func New(seed uint64) *Field {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	f := &Field{seed: seed}
	f.layout()
	return f
}

// SetEvents sets the receiver for score and collision events.
func (f *Field) SetEvents(e Events) {
	f.events = e
}

// Load fetches the bomb and star models in the background. The field is
// ready once both have arrived.
func (f *Field) Load(ctx context.Context, loader *assets.Loader) {
	loader.LoadAsync(ctx, "bomb", func(m *assets.Model, err error) {
		if err == nil {
			f.SetModels(m, nil)
		}
	})
	loader.LoadAsync(ctx, "star", func(m *assets.Model, err error) {
		if err == nil {
			f.SetModels(nil, m)
		}
	})
}

// SetModels installs whichever models are non-nil.
func (f *Field) SetModels(bomb, star *assets.Model) {
	if bomb != nil && f.bomb.Swap(bomb) == nil {
		f.loaded.Add(1)
	}
	if star != nil && f.star.Swap(star) == nil {
		f.loaded.Add(1)
	}
	if f.loaded.Load() == 2 {
		f.ready.Store(true)
	}
}

func (f *Field) Ready() bool { return f.ready.Load() }

// Models returns the bomb and star models (nil until loaded).
func (f *Field) Models() (bomb, star *assets.Model) {
	return f.bomb.Load(), f.star.Load()
}

// Gates returns the current gates. The slice is owned by the field.
func (f *Field) Gates() []Gate {
	return f.gates
}

// Reset lays the corridor out again from the start, with the same seed so
// every session flies the same course.
func (f *Field) Reset() {
	f.layout()
	f.hasLast = false
}

func (f *Field) layout() {
	f.rng = rand.New(rand.NewPCG(f.seed, f.seed^0x9E3779B97F4A7C15))
	if cap(f.gates) < config.GateCount {
		f.gates = make([]Gate, config.GateCount)
	}
	f.gates = f.gates[:config.GateCount]
	for i := range f.gates {
		f.place(&f.gates[i], config.GateFirstZ+float64(i)*config.GateSpacing)
	}
}

// place fills a gate at z: the corridor height is split into slots, one
// slot holds the star, BombsPerGate others hold bombs, the rest are open.
func (f *Field) place(g *Gate, z float64) {
	const slots = 5
	step := 2 * config.GateHeight / (slots - 1)

	g.Z = z
	g.Obstacles = g.Obstacles[:0]
	for i, slot := range f.rng.Perm(slots) {
		if i > config.BombsPerGate {
			break
		}
		kind := KindBomb
		if i == 0 {
			kind = KindStar
		}
		y := -config.GateHeight + float64(slot)*step
		g.Obstacles = append(g.Obstacles, Obstacle{
			Kind:     kind,
			Position: mgl64.Vec3{0, y, z},
		})
	}
}

// Update recycles gates the plane has passed and reports hits against the
// path the plane swept since the previous update, so a fast plane cannot
// skip over an obstacle between frames.
func (f *Field) Update(planePos mgl64.Vec3) {
	from := planePos
	if f.hasLast {
		from = f.last
	}
	f.last, f.hasLast = planePos, true

	front := f.frontZ()
	for i := range f.gates {
		g := &f.gates[i]
		if g.Z < planePos.Z()-config.GateRecycleGap {
			front += config.GateSpacing
			f.place(g, front)
			continue
		}

		for j := range g.Obstacles {
			o := &g.Obstacles[j]
			if o.Hit || !physics.SweptSpheresOverlap(from, planePos, config.PlaneRadius, o.Position, o.Radius()) {
				continue
			}
			o.Hit = true
			if f.events == nil {
				continue
			}
			switch o.Kind {
			case KindStar:
				f.events.OnScoreEvent()
			case KindBomb:
				f.events.OnCollisionEvent()
			}
		}
	}
}

func (f *Field) frontZ() float64 {
	front := 0.0
	for _, g := range f.gates {
		front = max(front, g.Z)
	}
	return front
}
