// Package speaker plays cues on the local sound device through beep.
// It needs cgo and the platform audio headers; only the local binary
// imports it.
package speaker

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	beepspeaker "github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"
	"github.com/tomz197/glider/internal/audio"
)

const (
	sampleRate = beep.SampleRate(48000)
)

// Speaker plays cues on the local sound device.
type Speaker struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	specs       map[string]audio.CueSpec
	loops       map[string]*beep.Ctrl // Looped cues currently playing
	initialized bool
	log         zerolog.Logger
}

// New creates a speaker backend. Call Initialize before playing.
func New(log zerolog.Logger) *Speaker {
	return &Speaker{
		mixer: &beep.Mixer{},
		specs: make(map[string]audio.CueSpec),
		loops: make(map[string]*beep.Ctrl),
		log:   log,
	}
}

// Initialize opens the sound device and starts the mixer.
func (s *Speaker) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	if err := beepspeaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}

	beepspeaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// Load registers a cue with its loop flag and volume.
func (s *Speaker) Load(name string, loop bool, volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs[name] = audio.CueSpec{Loop: loop, Volume: volume}
}

// LoadAll registers every cue in the set.
func (s *Speaker) LoadAll(specs map[string]audio.CueSpec) {
	for name, spec := range specs {
		s.Load(name, spec.Loop, spec.Volume)
	}
}

// Play starts a cue. A looped cue that is already playing is left alone.
func (s *Speaker) Play(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}

	spec, ok := s.specs[name]
	if !ok {
		s.log.Warn().Str("cue", name).Msg("play of unloaded cue")
		return
	}
	if ctrl, playing := s.loops[name]; playing && !ctrl.Paused {
		return
	}

	streamer, ok := Synthesize(name, sampleRate)
	if !ok {
		s.log.Warn().Str("cue", name).Msg("no synthesizer for cue")
		return
	}
	ctrl := &beep.Ctrl{Streamer: withVolume(streamer, spec.Volume)}
	if spec.Loop {
		s.loops[name] = ctrl
	}

	beepspeaker.Lock()
	s.mixer.Add(ctrl)
	beepspeaker.Unlock()
}

// StopAll silences every playing cue.
func (s *Speaker) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}

	beepspeaker.Lock()
	for _, ctrl := range s.loops {
		ctrl.Paused = true
	}
	s.mixer.Clear()
	beepspeaker.Unlock()

	clear(s.loops)
}

// Close stops playback and releases the sound device.
func (s *Speaker) Close() {
	s.StopAll()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		beepspeaker.Close()
		s.initialized = false
	}
}

var _ audio.Cues = (*Speaker)(nil)
