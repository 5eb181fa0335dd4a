package integrator

import (
	"math"

	"github.com/achilleasa/spheretracer/types"
)

const (
	// Amount added to the x component of the sampler state before each draw.
	seedStep float32 = 0.1

	// Hash constants for fract(sin(dot(seed, hashDot)) * hashScale).
	hashScale = 43758.5453

	// Max number of rejection sampling attempts before InUnitSphere
	// switches to a closed-form sample.
	MaxRejectionAttempts = 32
)

var (
	hashDot = types.XY(12.9898, 78.233)

	// Returned when even the closed-form sample degenerates.
	fallbackInUnitSphere = types.XYZ(0, 0, 0.5)

	// Largest float32 strictly below 1.
	belowOne = math.Nextafter32(1, 0)
)

// A cheap deterministic generator of uniform values in [0, 1). Each pixel
// owns its sampler; samplers must never be shared between goroutines.
type Sampler struct {
	seed types.Vec2
}

// Create a sampler for pixel (x, y) of a frameW x frameH frame. The state is
// initialized to (x/frameW, y/frameH) + randomSeed.
func NewSampler(x, y, frameW, frameH uint32, randomSeed float32) *Sampler {
	return &Sampler{
		seed: types.XY(
			float32(x)/float32(frameW)+randomSeed,
			float32(y)/float32(frameH)+randomSeed,
		),
	}
}

// Get the current sampler state.
func (s *Sampler) Seed() types.Vec2 {
	return s.seed
}

// Advance the state and return the next value in [0, 1).
func (s *Sampler) Next() float32 {
	s.seed[0] += seedStep
	return hash(s.seed)
}

// Return a point inside the unit ball.
func (s *Sampler) InUnitSphere() types.Vec3 {
	return inUnitSphere(s.Next)
}

// Return a point on the unit sphere.
func (s *Sampler) OnUnitSphere() types.Vec3 {
	return s.InUnitSphere().Normalize()
}

// Return a cosine-weighted direction in the hemisphere around normal.
func (s *Sampler) CosineHemisphere(normal types.Vec3) types.Vec3 {
	a := 2.0 * math.Pi * float64(s.Next())
	z := float64(s.Next())
	r := math.Sqrt(z)

	x := float32(r * math.Cos(a))
	y := float32(r * math.Sin(a))
	zCoord := float32(math.Sqrt(1.0 - z))

	// Build an orthonormal basis around the normal
	var nt types.Vec3
	if math.Abs(float64(normal[0])) > 0.1 {
		nt = types.XYZ(0, 1, 0)
	} else {
		nt = types.XYZ(1, 0, 0)
	}
	tangent := nt.Cross(normal).Normalize()
	bitangent := normal.Cross(tangent)

	return tangent.Mul(x).Add(bitangent.Mul(y)).Add(normal.Mul(zCoord))
}

func hash(seed types.Vec2) float32 {
	v := math.Sin(float64(seed.Dot(hashDot))) * hashScale
	f := float32(v - math.Floor(v))
	if f >= 1 {
		// float64 -> float32 rounding may land exactly on 1
		f = belowOne
	}
	return f
}

// Rejection-sample the [-1, 1]^3 cube. After MaxRejectionAttempts misses
// fall back to a gaussian direction scaled by cbrt(u) which is uniform in
// the ball as well.
func inUnitSphere(next func() float32) types.Vec3 {
	for attempt := 0; attempt < MaxRejectionAttempts; attempt++ {
		p := types.XYZ(2*next()-1, 2*next()-1, 2*next()-1)
		if p.LenSquared() <= 1 {
			return p
		}
	}

	g0, g1 := boxMuller(next(), next())
	g2, _ := boxMuller(next(), next())
	dir := types.XYZ(g0, g1, g2)
	if dir.NearZero() || !isFinite(dir) {
		return fallbackInUnitSphere
	}

	scale := float32(math.Cbrt(float64(next())))
	return dir.Normalize().Mul(scale)
}

// Map two uniform values to two independent standard normal values.
func boxMuller(u1, u2 float32) (float32, float32) {
	if u1 <= 0 {
		u1 = math.SmallestNonzeroFloat32
	}
	r := math.Sqrt(-2 * math.Log(float64(u1)))
	theta := 2 * math.Pi * float64(u2)
	return float32(r * math.Cos(theta)), float32(r * math.Sin(theta))
}

func isFinite(v types.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}
