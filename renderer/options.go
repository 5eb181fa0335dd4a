package renderer

import (
	"runtime"

	"github.com/achilleasa/spheretracer/tracer"
	"github.com/achilleasa/spheretracer/tracer/integrator"
	"github.com/achilleasa/spheretracer/types"
)

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of samples.
	SamplesPerPixel uint32

	// Max number of bounces per path.
	NumBounces uint32

	// Scatter policy and the light used by the direct lighting policy.
	Policy        integrator.Policy
	LightPosition types.Vec3

	// Number of cpu tracers to attach.
	NumTracers int

	// Exposure and gamma for tonemapping.
	Exposure float32
	Gamma    float32

	// Seed for the generator of per-frame random seeds.
	Seed int64
}

func DefaultOptions() Options {
	return Options{
		FrameW:          512,
		FrameH:          512,
		SamplesPerPixel: integrator.DefaultSamplesPerPixel,
		NumBounces:      integrator.DefaultMaxBounces,
		Policy:          integrator.Ambient,
		LightPosition:   integrator.DefaultLightPosition,
		NumTracers:      runtime.NumCPU(),
		Exposure:        1.0,
		Gamma:           2.2,
	}
}

// Check the options for values the renderer cannot work with.
func (opts Options) Validate() error {
	if _, err := tracer.AccumulationLen(opts.FrameW, opts.FrameH); err != nil {
		return err
	}
	_, err := integrator.New(opts.IntegratorOptions())
	return err
}

// Get the options passed to each tracer's path tracer.
func (opts Options) IntegratorOptions() integrator.Options {
	return integrator.Options{
		SamplesPerPixel: opts.SamplesPerPixel,
		MaxBounces:      opts.NumBounces,
		Policy:          opts.Policy,
		LightPosition:   opts.LightPosition,
	}
}
