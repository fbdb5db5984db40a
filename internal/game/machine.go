// Package game owns the play session: score, bonus, lives and the
// transitions between loading, idle, active flight and game over.
package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tomz197/glider/internal/audio"
	"github.com/tomz197/glider/internal/config"
	"github.com/tomz197/glider/internal/telemetry"
)

// ErrAssetsNotReady is returned by StartGame before the assets have loaded.
var ErrAssetsNotReady = errors.New("assets not ready")

// State is the current game phase.
type State int

const (
	StateLoading  State = iota // Waiting for models
	StateIdle                  // Title screen, plane bobbing
	StateActive                // Flying
	StateGameOver              // Out of lives, restart prompt
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateGameOver:
		return "game-over"
	default:
		return "unknown"
	}
}

// Session is the score and lives of one play-through.
type Session struct {
	Score  int
	Bonus  int // Always a multiple of BonusPoints
	Lives  int
	Active bool
}

// Display is the score shown to the player.
func (s Session) Display() int {
	return s.Score + s.Bonus
}

// Plane is the part of the flyable entity the machine drives.
type Plane interface {
	Reset() error
	SetVisible(bool)
}

// Obstacles is the part of the obstacle field the machine drives.
type Obstacles interface {
	Reset()
}

// HUD receives score and lives after every change.
type HUD interface {
	ShowScore(display int)
	ShowLives(lives int)
	ShowGameOver(display int)
	HideOverlay()
}

// Options wires the machine to its collaborators. HUD and Metrics may be nil.
type Options struct {
	Plane     Plane
	Obstacles Obstacles
	Cues      audio.Cues
	HUD       HUD
	Metrics   *telemetry.Metrics
	Logger    zerolog.Logger
}

// Machine is the game state machine. It is driven from the simulation
// loop and is not safe for concurrent use.
type Machine struct {
	state   State
	session Session

	plane     Plane
	obstacles Obstacles
	cues      audio.Cues
	hud       HUD
	metrics   *telemetry.Metrics
	log       zerolog.Logger
}

// New creates a machine in the loading state.
func New(opts Options) *Machine {
	hud := opts.HUD
	if hud == nil {
		hud = nopHUD{}
	}
	return &Machine{
		state:     StateLoading,
		session:   Session{Lives: config.InitialLives},
		plane:     opts.Plane,
		obstacles: opts.Obstacles,
		cues:      opts.Cues,
		hud:       hud,
		metrics:   opts.Metrics,
		log:       opts.Logger,
	}
}

func (m *Machine) State() State      { return m.state }
func (m *Machine) Session() Session  { return m.session }
func (m *Machine) Active() bool      { return m.session.Active }
func (m *Machine) DisplayScore() int { return m.session.Display() }

// MarkReady moves the machine from loading to idle. It has no effect in
// any other state.
func (m *Machine) MarkReady() {
	if m.state != StateLoading {
		return
	}
	m.state = StateIdle
	m.log.Debug().Msg("assets ready")
}

// StartGame begins a fresh session. Any previous score and lives are
// discarded, whatever state the machine was in.
func (m *Machine) StartGame() error {
	if m.state == StateLoading {
		return ErrAssetsNotReady
	}
	if err := m.plane.Reset(); err != nil {
		return fmt.Errorf("reset plane: %w", err)
	}
	m.obstacles.Reset()

	m.session = Session{Lives: config.InitialLives, Active: true}
	m.state = StateActive
	m.plane.SetVisible(true)

	m.hud.ShowScore(m.session.Display())
	m.hud.ShowLives(m.session.Lives)
	m.hud.HideOverlay()

	m.cues.Play(audio.CueEngine)
	if m.metrics != nil {
		m.metrics.SessionStarted(context.Background())
	}
	m.log.Info().Msg("game started")
	return nil
}

// OnScoreEvent adds a point. Every BonusEvery points also pays a bonus.
// Ignored unless a session is active.
func (m *Machine) OnScoreEvent() {
	if !m.session.Active {
		return
	}
	m.session.Score++
	bonus := m.session.Score%config.BonusEvery == 0
	if bonus {
		m.session.Bonus += config.BonusPoints
		m.cues.Play(audio.CueBonus)
	}
	m.cues.Play(audio.CueProgress)
	m.hud.ShowScore(m.session.Display())

	if m.metrics != nil {
		m.metrics.Scored(context.Background(), bonus)
	}
	m.log.Debug().Int("score", m.session.Score).Int("bonus", m.session.Bonus).Msg("scored")
}

// OnCollisionEvent costs a life and ends the game on the last one.
// Ignored unless a session is active.
func (m *Machine) OnCollisionEvent() {
	if !m.session.Active {
		return
	}
	m.session.Lives--
	m.hud.ShowLives(m.session.Lives)
	if m.metrics != nil {
		m.metrics.Collided(context.Background())
	}
	m.log.Debug().Int("lives", m.session.Lives).Msg("collision")

	if m.session.Lives == 0 {
		m.enterGameOver()
	}
	m.cues.Play(audio.CueExplosion)
}

func (m *Machine) enterGameOver() {
	m.session.Active = false
	m.state = StateGameOver
	m.plane.SetVisible(false)

	m.cues.StopAll()
	m.cues.Play(audio.CueGameOver)
	m.hud.ShowGameOver(m.session.Display())

	if m.metrics != nil {
		m.metrics.GameOver(context.Background(), m.session.Display())
	}
	m.log.Info().Int("score", m.session.Display()).Msg("game over")
}

type nopHUD struct{}

func (nopHUD) ShowScore(int)    {}
func (nopHUD) ShowLives(int)    {}
func (nopHUD) ShowGameOver(int) {}
func (nopHUD) HideOverlay()     {}
