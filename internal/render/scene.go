// Package render draws the game to a terminal: wireframe models projected
// through the chase camera, plus the HUD and menu screens.
package render

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/glider/internal/assets"
	"github.com/tomz197/glider/internal/camera"
	"github.com/tomz197/glider/internal/game"
	"github.com/tomz197/glider/internal/obstacle"
)

// Scene is everything needed to draw one frame.
type Scene struct {
	Rig     camera.Rig
	State   game.State
	Elapsed float64

	PlaneModel    *assets.Model
	PlanePosition mgl64.Vec3
	PlaneRotation mgl64.Quat
	PlaneVisible  bool

	Gates     []obstacle.Gate
	BombModel *assets.Model
	StarModel *assets.Model
}
