package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/achilleasa/spheretracer/asset/scene/reader"
	"github.com/achilleasa/spheretracer/renderer"
	"github.com/achilleasa/spheretracer/scene"
	"github.com/achilleasa/spheretracer/tracer/integrator"
	"github.com/achilleasa/spheretracer/types"
	"github.com/urfave/cli"
)

// Build renderer options from the render command flags.
func renderOptions(ctx *cli.Context) (renderer.Options, error) {
	opts := renderer.DefaultOptions()

	policy, err := integrator.ParsePolicy(ctx.String("policy"))
	if err != nil {
		return opts, err
	}
	light, err := parseVec3(ctx.String("light"))
	if err != nil {
		return opts, fmt.Errorf("invalid light position: %w", err)
	}

	for _, name := range []string{"width", "height", "spp", "num-bounces"} {
		if v := ctx.Int(name); v <= 0 || uint64(v) > math.MaxUint32 {
			return opts, fmt.Errorf("invalid value %d for flag --%s; expected a positive integer", ctx.Int(name), name)
		}
	}

	opts.FrameW = uint32(ctx.Int("width"))
	opts.FrameH = uint32(ctx.Int("height"))
	opts.SamplesPerPixel = uint32(ctx.Int("spp"))
	opts.NumBounces = uint32(ctx.Int("num-bounces"))
	opts.Policy = policy
	opts.LightPosition = light
	opts.Exposure = float32(ctx.Float64("exposure"))
	opts.Gamma = float32(ctx.Float64("gamma"))
	opts.Seed = ctx.Int64("seed")
	if n := ctx.Int("tracers"); n > 0 {
		opts.NumTracers = n
	}

	return opts, opts.Validate()
}

// Load the scene passed as the first command argument or fall back to the
// built-in scene.
func loadScene(ctx *cli.Context) (*scene.Scene, error) {
	if ctx.NArg() == 0 {
		logger.Notice("no scene file specified; using the default scene")
		return scene.Default(), nil
	}

	return reader.ReadScene(ctx.Args().First())
}

// Parse a vector in "x,y,z" format.
func parseVec3(value string) (types.Vec3, error) {
	var v types.Vec3
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("expected 3 comma-separated components; got %q", value)
	}

	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(f)
	}
	return v, nil
}
