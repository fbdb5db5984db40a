// Package audio names the sound cues triggered by gameplay and holds the
// terminal bell backend. Device playback lives in audio/speaker.
package audio

import (
	"io"
)

// Cue names used by the game.
const (
	CueEngine    = "engine"
	CueExplosion = "explosion"
	CueProgress  = "gliss"
	CueGameOver  = "gameover"
	CueBonus     = "bonus"
)

// Cues is the playback contract the game depends on.
type Cues interface {
	Play(name string)
	StopAll()
}

// CueSpec holds per-cue playback options, fixed when the cue is loaded.
type CueSpec struct {
	Loop   bool
	Volume float64
}

// DefaultCues is the cue set loaded at startup.
var DefaultCues = map[string]CueSpec{
	CueExplosion: {Volume: 1},
	CueEngine:    {Loop: true, Volume: 1},
	CueProgress:  {Volume: 1},
	CueGameOver:  {Volume: 1},
	CueBonus:     {Volume: 1},
}

// Bell is the backend for remote terminals: it rings the terminal bell
// for impact and game over and stays silent for everything else.
type Bell struct {
	w    io.Writer
	ring map[string]bool
}

// NewBell creates a bell backend writing to w.
func NewBell(w io.Writer) *Bell {
	return &Bell{
		w: w,
		ring: map[string]bool{
			CueExplosion: true,
			CueGameOver:  true,
		},
	}
}

func (b *Bell) Play(name string) {
	if b.ring[name] {
		_, _ = io.WriteString(b.w, "\a")
	}
}

// StopAll is a no-op; a bell cannot be cut short.
func (b *Bell) StopAll() {}

var _ Cues = (*Bell)(nil)
