package speaker

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/tomz197/glider/internal/audio"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// sweep is an oscillator gliding from one frequency to another with an
// exponential amplitude decay. A zero duration runs forever.
type sweep struct {
	from, to float64
	wave     WaveType
	decay    float64 // amplitude falls by e every 1/decay seconds
	rate     beep.SampleRate
	total    int
	position int
	phase    float64
	rng      *rand.Rand
}

func newSweep(from, to float64, duration time.Duration, wave WaveType, decay float64, rate beep.SampleRate) *sweep {
	total := 0
	if duration > 0 {
		total = rate.N(duration)
	}
	return &sweep{
		from:  from,
		to:    to,
		wave:  wave,
		decay: decay,
		rate:  rate,
		total: total,
		rng:   rand.New(rand.NewPCG(uint64(from), uint64(to))),
	}
}

func (s *sweep) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if s.total > 0 && s.position >= s.total {
			return i, i > 0
		}

		freq := s.from
		if s.total > 0 {
			progress := float64(s.position) / float64(s.total)
			freq = s.from + (s.to-s.from)*progress
		}

		var val float64
		switch s.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * s.phase)
		case WaveSquare:
			if s.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (s.phase - 0.5)
		case WaveNoise:
			val = s.rng.Float64()*2 - 1
		}

		if s.decay > 0 {
			t := float64(s.position) / float64(s.rate)
			val *= math.Exp(-s.decay * t)
		}

		samples[i][0] = val
		samples[i][1] = val

		s.phase += freq / float64(s.rate)
		s.phase -= math.Floor(s.phase)
		s.position++
	}
	return len(samples), true
}

func (s *sweep) Err() error { return nil }

// engineDrone is the looping engine hum: a low saw with a slow wobble.
type engineDrone struct {
	saw    *sweep
	rate   beep.SampleRate
	sample int
}

func (e *engineDrone) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.saw.Stream(samples)
	for i := 0; i < n; i++ {
		t := float64(e.sample) / float64(e.rate)
		wobble := 0.75 + 0.25*math.Sin(2*math.Pi*4*t)
		samples[i][0] *= 0.3 * wobble
		samples[i][1] *= 0.3 * wobble
		e.sample++
	}
	return n, ok
}

func (e *engineDrone) Err() error { return nil }

// Synthesize builds the streamer for a named cue. Only the engine cue is
// endless; every other cue finishes on its own.
func Synthesize(name string, rate beep.SampleRate) (beep.Streamer, bool) {
	switch name {
	case audio.CueEngine:
		return &engineDrone{saw: newSweep(82, 82, 0, WaveSaw, 0, rate), rate: rate}, true
	case audio.CueExplosion:
		return newSweep(0, 0, 600*time.Millisecond, WaveNoise, 6, rate), true
	case audio.CueProgress:
		return newSweep(400, 1200, 250*time.Millisecond, WaveSine, 4, rate), true
	case audio.CueBonus:
		return beep.Seq(
			newSweep(880, 880, 120*time.Millisecond, WaveSquare, 8, rate),
			newSweep(1320, 1320, 180*time.Millisecond, WaveSquare, 8, rate),
		), true
	case audio.CueGameOver:
		return newSweep(440, 110, 1200*time.Millisecond, WaveSquare, 1.5, rate), true
	default:
		return nil, false
	}
}

// withVolume scales a streamer linearly; zero or less is silent.
// math.Log2(0) is -Inf, hence the explicit Silent flag.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
