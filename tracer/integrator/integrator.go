package integrator

import (
	"fmt"
	"strings"

	"github.com/achilleasa/spheretracer/scene"
	"github.com/achilleasa/spheretracer/types"
)

// Hits closer than this distance are treated as misses so that bounced rays
// do not re-hit the surface they left.
const HitEpsilon float32 = 0.0001

const (
	DefaultSamplesPerPixel uint32 = 100
	DefaultMaxBounces      uint32 = 150
)

var (
	SkyBlue = types.XYZ(0.5, 0.7, 1.0)
	White   = types.Splat3(1)

	// World +z points down so this light sits above the default scene.
	DefaultLightPosition = types.XYZ(8, 0, -10)
)

// The scatter policy decides how a path continues after hitting a surface.
type Policy uint8

const (
	// Mirrors reflect, diffuse surfaces scatter around the normal and all
	// light comes from the sky.
	Ambient Policy = iota

	// Diffuse surfaces test visibility against a point light before
	// continuing along a cosine-weighted direction.
	DirectLight
)

func (p Policy) String() string {
	switch p {
	case Ambient:
		return "ambient"
	case DirectLight:
		return "direct"
	}
	return fmt.Sprintf("policy(%d)", uint8(p))
}

// Parse a policy name.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(name) {
	case "ambient", "":
		return Ambient, nil
	case "direct", "directlight", "direct-light":
		return DirectLight, nil
	}
	return Ambient, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

type Options struct {
	SamplesPerPixel uint32
	MaxBounces      uint32
	Policy          Policy

	// Only used by the DirectLight policy.
	LightPosition types.Vec3
}

func DefaultOptions() Options {
	return Options{
		SamplesPerPixel: DefaultSamplesPerPixel,
		MaxBounces:      DefaultMaxBounces,
		Policy:          Ambient,
		LightPosition:   DefaultLightPosition,
	}
}

// PathTracer estimates pixel radiance by averaging independent light paths.
// It holds no mutable state and may be shared between goroutines.
type PathTracer struct {
	opts Options
}

// Create a path tracer using the supplied options.
func New(opts Options) (*PathTracer, error) {
	if opts.SamplesPerPixel == 0 {
		return nil, ErrInvalidSampleCount
	}
	if opts.MaxBounces == 0 {
		return nil, ErrInvalidBounceCount
	}
	if opts.Policy != Ambient && opts.Policy != DirectLight {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, opts.Policy)
	}
	return &PathTracer{opts: opts}, nil
}

func (pt *PathTracer) Options() Options {
	return pt.opts
}

// Compute the radiance estimate for pixel (x, y) by averaging
// SamplesPerPixel paths. The result is deterministic for a given pixel,
// frame size, random seed and scene.
func (pt *PathTracer) TracePixel(x, y, frameW, frameH uint32, info *scene.Info, spheres []scene.Sphere) types.Vec3 {
	sampler := NewSampler(x, y, frameW, frameH, info.RandomSeed)

	var sum types.Vec3
	for s := uint32(0); s < pt.opts.SamplesPerPixel; s++ {
		jitterX := sampler.Next()
		jitterY := sampler.Next()
		ray := info.Camera.Ray(x, y, frameW, frameH, jitterX, jitterY)
		sum = sum.Add(pt.TraceRay(ray, sampler, spheres))
	}

	return sum.Mul(1.0 / float32(pt.opts.SamplesPerPixel))
}

// Follow a single path starting at ray. Paths that exhaust their bounce
// budget without escaping to the sky contribute black.
func (pt *PathTracer) TraceRay(ray types.Ray, sampler *Sampler, spheres []scene.Sphere) types.Vec3 {
	throughput := White
	for bounce := uint32(0); bounce < pt.opts.MaxBounces; bounce++ {
		hit := HitAny(ray, spheres)
		if hit.T <= HitEpsilon {
			return throughput.MulVec(SkyColor(ray.Dir))
		}

		var alive bool
		ray, throughput, alive = pt.scatter(ray, hit, throughput, sampler, spheres)
		if !alive {
			return types.Vec3{}
		}
	}

	return types.Vec3{}
}

func (pt *PathTracer) scatter(ray types.Ray, hit HitResult, throughput types.Vec3, sampler *Sampler, spheres []scene.Sphere) (types.Ray, types.Vec3, bool) {
	mat := spheres[hit.SphereIndex].Material

	if mat.IsMirror {
		next := types.NewRay(hit.Point, ray.Dir.Reflect(hit.Normal))
		return next, throughput.MulVec(mat.Albedo), true
	}

	if pt.opts.Policy == DirectLight {
		return pt.scatterDirect(hit, mat, throughput, sampler, spheres)
	}

	next := types.NewRay(hit.Point, diffuseDirection(hit.Normal, sampler.OnUnitSphere()))
	return next, throughput.MulVec(mat.Albedo), true
}

// Offset the normal by a unit sphere sample. A sample that cancels the
// normal falls back to the normal itself.
func diffuseDirection(normal, unitSample types.Vec3) types.Vec3 {
	target := normal.Add(unitSample)
	if target.NearZero() {
		return normal
	}
	return target
}

func (pt *PathTracer) scatterDirect(hit HitResult, mat scene.Material, throughput types.Vec3, sampler *Sampler, spheres []scene.Sphere) (types.Ray, types.Vec3, bool) {
	toLight := pt.opts.LightPosition.Sub(hit.Point)
	dist := toLight.Len()
	if dist <= HitEpsilon {
		return types.Ray{}, types.Vec3{}, false
	}
	lightDir := toLight.Mul(1 / dist)

	cosTheta := hit.Normal.Dot(lightDir)
	if cosTheta <= 0 {
		return types.Ray{}, types.Vec3{}, false
	}

	shadow := HitAny(types.Ray{Origin: hit.Point, Dir: lightDir}, spheres)
	if shadow.T > HitEpsilon && shadow.T < dist {
		return types.Ray{}, types.Vec3{}, false
	}

	next := types.NewRay(hit.Point, sampler.CosineHemisphere(hit.Normal))
	return next, throughput.MulVec(mat.Albedo).Mul(cosTheta), true
}

// Return the sky color for a ray direction; rays pointing towards -z get
// the blue end of the gradient.
func SkyColor(dir types.Vec3) types.Vec3 {
	t := 0.5 * (dir[2] + 1)
	return SkyBlue.Lerp(White, t)
}
