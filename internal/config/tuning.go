package config

import "time"

// Game configuration constants.
// All tunable flight parameters are centralized here for easy adjustment.

// Session
const (
	InitialLives = 3
	BonusEvery   = 3 // Every third point awards a bonus
	BonusPoints  = 3
)

// Plane kinematics, in world units per frame.
const (
	ClimbAccel       = 0.001  // Vertical acceleration, up with thrust, down without
	ForwardAccel     = 0.0001 // Constant forward acceleration while active
	InitialForward   = 0.1    // Forward velocity after reset
	BankFrequency    = 3.0    // Roll oscillation, radians per second of elapsed time
	BankAmplitude    = 0.2    // Roll amplitude in radians
	IdleBobAmplitude = 1.5    // Vertical amplitude of the attract-mode bob
	PlaneScale       = 0.4
)

// Trailing camera, in world units.
const (
	CameraBoomX  = -4.37 // Eye offset from the camera controller
	CameraBoomY  = 0.0
	CameraBoomZ  = -4.75
	CameraLead   = 6.0 // Look-target distance ahead of the plane
	CameraHeight = 0.0 // Controller height is pinned here
	CameraFOV    = 70.0
	CameraNear   = 0.1
	CameraFar    = 100.0
)

// Obstacle field
const (
	GateCount      = 5
	GateSpacing    = 15.0 // Distance between gates along +z
	GateFirstZ     = 20.0 // z of the first gate after reset
	GateRecycleGap = 3.0  // A gate this far behind the plane moves to the front
	GateHeight     = 3.0  // Obstacle heights are drawn from [-GateHeight, GateHeight]
	BombsPerGate   = 3
	BombRadius     = 0.6
	StarRadius     = 0.7
	PlaneRadius    = 0.5
)

// Client rendering
const (
	TargetFPS       = 60
	TargetFrameTime = time.Second / TargetFPS
	MaxTermWidth    = 160
	MaxTermHeight   = 50
)
