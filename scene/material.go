package scene

import "github.com/achilleasa/spheretracer/types"

// Defines a sphere material.
type Material struct {
	// Fractional reflectance per color channel in [0, 1].
	Albedo types.Vec3 `json:"albedo"`

	// Mirror materials reflect incoming rays about the surface normal;
	// all other materials scatter diffusely.
	IsMirror bool `json:"mirror,omitempty"`
}

// Create a diffuse material.
func Diffuse(albedo types.Vec3) Material {
	return Material{Albedo: albedo}
}

// Create a mirror material.
func Mirror(albedo types.Vec3) Material {
	return Material{Albedo: albedo, IsMirror: true}
}
