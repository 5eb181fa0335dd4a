package scene

import "github.com/achilleasa/spheretracer/types"

// A sphere primitive. Spheres are referenced by their index in the scene.
type Sphere struct {
	Center   types.Vec3 `json:"center"`
	Radius   float32    `json:"radius"`
	Material Material   `json:"material"`
}
