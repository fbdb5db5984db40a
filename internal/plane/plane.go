// Package plane owns the flyable glider: its position, velocity and bank,
// advanced once per frame from the thrust input and the elapsed time.
package plane

import (
	"context"
	"errors"
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/glider/internal/assets"
	"github.com/tomz197/glider/internal/config"
	"github.com/tomz197/glider/internal/input"
)

// ErrNotReady is returned when the plane is reset before its model loaded.
var ErrNotReady = errors.New("plane model not loaded")

var (
	axisForward = mgl64.Vec3{0, 0, 1}
	axisUp      = mgl64.Vec3{0, 1, 0}
)

// Options tunes the plane beyond the fixed constants.
type Options struct {
	MaxForwardSpeed float64 // 0 leaves forward speed unbounded
}

// Plane is the player-controlled glider.
type Plane struct {
	position mgl64.Vec3
	velocity mgl64.Vec3 // Y is climb, Z is forward
	roll     float64    // Bank about the forward axis, radians
	visible  bool

	maxForward float64

	model atomic.Pointer[assets.Model]
	ready atomic.Bool // Flips once, never reverts
}

// New creates a plane at the origin with the default forward velocity.
// It is not ready until its model is loaded.
func New(opts Options) *Plane {
	return &Plane{
		velocity:   mgl64.Vec3{0, 0, config.InitialForward},
		visible:    true,
		maxForward: opts.MaxForwardSpeed,
	}
}

// Load fetches the plane model in the background. Ready reports true once
// it arrives; a failed load leaves the plane not ready.
func (p *Plane) Load(ctx context.Context, loader *assets.Loader) {
	loader.LoadAsync(ctx, "plane", func(m *assets.Model, err error) {
		if err != nil {
			return
		}
		p.SetModel(m)
	})
}

// SetModel installs the model and marks the plane ready.
func (p *Plane) SetModel(m *assets.Model) {
	p.model.Store(m)
	p.ready.Store(true)
}

func (p *Plane) Ready() bool          { return p.ready.Load() }
func (p *Plane) Model() *assets.Model { return p.model.Load() }
func (p *Plane) Position() mgl64.Vec3 { return p.position }
func (p *Plane) Velocity() mgl64.Vec3 { return p.velocity }
func (p *Plane) Roll() float64        { return p.roll }
func (p *Plane) Visible() bool        { return p.visible }

// SetVisible shows or hides the plane. Hidden planes still update.
func (p *Plane) SetVisible(v bool) {
	p.visible = v
}

// Orientation returns the plane's rotation as a quaternion.
func (p *Plane) Orientation() mgl64.Quat {
	return mgl64.QuatRotate(p.roll, axisForward)
}

// Reset puts the plane back at the origin with zero climb and the
// default forward speed.
func (p *Plane) Reset() error {
	if !p.Ready() {
		return ErrNotReady
	}
	p.position = mgl64.Vec3{}
	p.velocity = mgl64.Vec3{0, 0, config.InitialForward}
	return nil
}

// Update advances the plane by one frame.
//
// Active flight integrates climb and forward speed and translates the plane
// along its own (banked) axes. Idle mode drives the height directly from a
// cosine and leaves velocity untouched. The bank animation runs in both.
func (p *Plane) Update(elapsed float64, in input.State, active bool) {
	p.roll = math.Sin(elapsed*config.BankFrequency) * config.BankAmplitude

	if !active {
		p.position[1] = math.Cos(elapsed) * config.IdleBobAmplitude
		return
	}

	if in.ThrustHeld {
		p.velocity[1] += config.ClimbAccel
	} else {
		p.velocity[1] -= config.ClimbAccel
	}

	// The cap only stops acceleration; it never slows the plane down.
	if p.maxForward <= 0 {
		p.velocity[2] += config.ForwardAccel
	} else if p.velocity[2] < p.maxForward {
		p.velocity[2] = min(p.velocity[2]+config.ForwardAccel, p.maxForward)
	}

	q := p.Orientation()
	p.position = p.position.
		Add(q.Rotate(axisForward).Mul(p.velocity[2])).
		Add(q.Rotate(axisUp).Mul(p.velocity[1]))
}
