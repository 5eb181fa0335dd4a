package scene

import (
	"fmt"

	"github.com/achilleasa/spheretracer/types"
)

// The camera basis is fixed; only the eye position can be changed.
var (
	Forwards = types.XYZ(1, 0, 0)
	Right    = types.XYZ(0, -1, 0)
	Up       = types.XYZ(0, 0, 1)
)

// The camera type controls the scene eye position.
type Camera struct {
	Position types.Vec3 `json:"position"`
}

func NewCamera(position types.Vec3) *Camera {
	return &Camera{Position: position}
}

func (c *Camera) String() string {
	return fmt.Sprintf("Camera at (%3.3f, %3.3f, %3.3f)", c.Position[0], c.Position[1], c.Position[2])
}

// Generate the (unnormalized) direction of a ray passing through the
// sub-pixel location (x+jitterX, y+jitterY) of a frameW x frameH frame.
//
// Both the horizontal and the vertical field-of-view coefficients are
// divided by the frame width so non-square frames are stretched vertically.
func (c *Camera) RayDirection(x, y, frameW, frameH uint32, jitterX, jitterY float32) types.Vec3 {
	w := float32(frameW)
	h := float32(frameH)
	fovH := (float32(x) + jitterX - w/2) / w
	fovV := (float32(y) + jitterY - h/2) / w

	return Forwards.Add(Right.Mul(fovH)).Add(Up.Mul(fovV))
}

// Generate a primary ray for the given sub-pixel location.
func (c *Camera) Ray(x, y, frameW, frameH uint32, jitterX, jitterY float32) types.Ray {
	return types.NewRay(c.Position, c.RayDirection(x, y, frameW, frameH, jitterX, jitterY))
}
