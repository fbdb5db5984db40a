package render

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/glider/internal/draw"
	"github.com/tomz197/glider/internal/obstacle"
)

// Burst tuning per obstacle kind.
const (
	bombDebrisCount    = 40
	bombDebrisSpeed    = 4.0
	bombDebrisLifetime = 0.9
	starDebrisCount    = 16
	starDebrisSpeed    = 2.0
	starDebrisLifetime = 0.5
	debrisDrag         = 0.93
	maxDebrisStep      = 0.1 // Seconds; longer gaps are clamped
)

// particlePool is a sync.Pool for reusing particles between bursts.
var particlePool = sync.Pool{
	New: func() any {
		return &particle{}
	},
}

// particle is a short-lived point of debris.
type particle struct {
	pos         mgl64.Vec3
	vel         mgl64.Vec3
	lifetime    float64 // Seconds remaining
	maxLifetime float64
}

// debris animates bursts where obstacles were hit. An obstacle bursts on
// the first frame it shows as hit, keyed by its position.
type debris struct {
	particles []*particle
	burst     map[mgl64.Vec3]bool
	seen      map[mgl64.Vec3]bool
	last      float64
	started   bool
}

func newDebris() *debris {
	return &debris{
		burst: make(map[mgl64.Vec3]bool),
		seen:  make(map[mgl64.Vec3]bool),
	}
}

// update spawns bursts for newly hit obstacles and advances live particles
// to elapsed.
func (d *debris) update(gates []obstacle.Gate, elapsed float64) {
	dt := 0.0
	if d.started {
		dt = min(max(elapsed-d.last, 0), maxDebrisStep)
	}
	d.last, d.started = elapsed, true

	// seen collects this frame's hit obstacles; anything hit last frame is
	// already bursting.
	clear(d.seen)
	for _, g := range gates {
		for _, o := range g.Obstacles {
			if !o.Hit {
				continue
			}
			d.seen[o.Position] = true
			if d.burst[o.Position] {
				continue
			}
			if o.Kind == obstacle.KindBomb {
				d.spawn(o.Position, bombDebrisCount, bombDebrisSpeed, bombDebrisLifetime)
			} else {
				d.spawn(o.Position, starDebrisCount, starDebrisSpeed, starDebrisLifetime)
			}
		}
	}
	d.burst, d.seen = d.seen, d.burst

	kept := d.particles[:0]
	for _, p := range d.particles {
		p.lifetime -= dt
		if p.lifetime <= 0 {
			particlePool.Put(p)
			continue
		}
		p.vel = p.vel.Mul(math.Pow(debrisDrag, dt*60))
		p.pos = p.pos.Add(p.vel.Mul(dt))
		kept = append(kept, p)
	}
	clear(d.particles[len(kept):])
	d.particles = kept
}

// spawn creates particles in a spherical burst.
func (d *debris) spawn(at mgl64.Vec3, count int, speed, lifetime float64) {
	for i := 0; i < count; i++ {
		// Random direction on the unit sphere
		z := rand.Float64()*2 - 1
		theta := rand.Float64() * 2 * math.Pi
		r := math.Sqrt(1 - z*z)
		dir := mgl64.Vec3{r * math.Cos(theta), r * math.Sin(theta), z}

		p := particlePool.Get().(*particle)
		p.pos = at
		p.vel = dir.Mul(speed * (0.5 + rand.Float64()))
		p.lifetime = lifetime * (0.5 + rand.Float64()*0.5)
		p.maxLifetime = p.lifetime
		d.particles = append(d.particles, p)
	}
}

// draw plots each particle, fading as it ages.
func (d *debris) draw(t *Terminal, vp mgl64.Mat4) {
	for _, p := range d.particles {
		pt, ok := t.project(vp, p.pos)
		if !ok {
			continue
		}
		level := draw.LevelBright
		switch life := p.lifetime / p.maxLifetime; {
		case life < 0.3:
			level = draw.LevelDim
		case life < 0.6:
			level = draw.LevelMid
		}
		t.canvas.Set(int(math.Round(pt.X)), int(math.Round(pt.Y)), level)
	}
}

func (d *debris) live() int { return len(d.particles) }
