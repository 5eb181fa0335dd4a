package integrator

import (
	"math"

	"github.com/achilleasa/spheretracer/scene"
	"github.com/achilleasa/spheretracer/types"
)

// Sentinel ray distance reported when nothing is hit.
const NoHit float32 = -1

// The result of a nearest-hit query.
type HitResult struct {
	// Ray distance to the hit point; negative if nothing was hit.
	T float32

	Point  types.Vec3
	Normal types.Vec3

	// Index of the hit sphere or -1 if nothing was hit.
	SphereIndex int
}

// Returns true if the result refers to a sphere.
func (h HitResult) IsHit() bool {
	return h.T >= 0 && h.SphereIndex >= 0
}

// Intersect a ray with a sphere by solving |O + tD - C|^2 = r^2 and return
// the smaller root. NoHit is returned if the discriminant is negative. The
// smaller root may itself be negative when the sphere is behind the ray
// origin or contains it.
func Hit(ray types.Ray, sphere scene.Sphere) float32 {
	oc := ray.Origin.Sub(sphere.Center)
	a := ray.Dir.Dot(ray.Dir)
	halfB := oc.Dot(ray.Dir)
	c := oc.Dot(oc) - sphere.Radius*sphere.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return NoHit
	}

	return (-halfB - float32(math.Sqrt(float64(discriminant)))) / a
}

// Find the nearest non-negative intersection across all spheres. Ties are
// resolved in favor of the sphere that appears first.
func HitAny(ray types.Ray, spheres []scene.Sphere) HitResult {
	res := HitResult{T: NoHit, SphereIndex: -1}
	for index := range spheres {
		t := Hit(ray, spheres[index])
		if t < 0 {
			continue
		}
		if res.SphereIndex < 0 || t < res.T {
			res.T = t
			res.SphereIndex = index
		}
	}

	if res.SphereIndex < 0 {
		return res
	}

	sphere := &spheres[res.SphereIndex]
	res.Point = ray.At(res.T)
	res.Normal = res.Point.Sub(sphere.Center).Normalize()
	return res
}
