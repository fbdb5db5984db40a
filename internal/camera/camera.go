// Package camera derives the trailing chase camera from the plane position.
package camera

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/glider/internal/config"
)

var (
	boom = mgl64.Vec3{config.CameraBoomX, config.CameraBoomY, config.CameraBoomZ}
	lead = mgl64.Vec3{0, 0, config.CameraLead}
	up   = mgl64.Vec3{0, 1, 0}
)

// Rig is the camera pose for one frame.
type Rig struct {
	Controller mgl64.Vec3 // Follows the plane along x and z at a fixed height
	Eye        mgl64.Vec3
	Target     mgl64.Vec3
}

// Follow places the camera behind the plane. The controller ignores the
// plane's height so climbing and diving show on screen; the eye looks at a
// point ahead of the plane.
func Follow(planePos mgl64.Vec3) Rig {
	controller := mgl64.Vec3{planePos.X(), config.CameraHeight, planePos.Z()}
	return Rig{
		Controller: controller,
		Eye:        controller.Add(boom),
		Target:     planePos.Add(lead),
	}
}

// View returns the world-to-camera matrix.
func (r Rig) View() mgl64.Mat4 {
	return mgl64.LookAtV(r.Eye, r.Target, up)
}

// Projection returns the perspective matrix for the given aspect ratio.
func Projection(aspect float64) mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(config.CameraFOV), aspect, config.CameraNear, config.CameraFar)
}

// ViewProjection combines the projection for aspect with the rig's view.
func (r Rig) ViewProjection(aspect float64) mgl64.Mat4 {
	return Projection(aspect).Mul4(r.View())
}
