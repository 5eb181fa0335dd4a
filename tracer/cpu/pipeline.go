package cpu

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/achilleasa/spheretracer/tracer"
	"github.com/achilleasa/spheretracer/tracer/integrator"
	"github.com/achilleasa/spheretracer/types"
	"golang.org/x/image/draw"
)

// Debug flags.
type DebugFlag uint16

const (
	Off                           DebugFlag = 0
	PrimaryRayIntersectionDepth   DebugFlag = 1 << 0
	PrimaryRayIntersectionNormals DebugFlag = 1 << 1
	Accumulator                   DebugFlag = 1 << 2
	FrameBuffer                   DebugFlag = 1 << 3
)

// An alias for functions that can be used as part of the rendering pipeline.
type PipelineStage func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error)

// The list of pluggable of stages that are used to render the scene.
type Pipeline struct {
	// Enabled debug outputs and the folder they are written to.
	DebugFlags DebugFlag
	DebugDir   string

	// Assemble and validate the per-frame parameters. This stage runs
	// before any pixel of the block is traced.
	Prepare PipelineStage

	// This stage implements an integrator function to trace the block
	// pixels and blend their estimate into the accumulation buffer.
	Integrator PipelineStage

	// A set of post-processing stages that are executed after the
	// block has been integrated.
	PostProcess []PipelineStage
}

func DefaultPipeline(debugFlags DebugFlag, debugDir string, exposure, gamma float32) *Pipeline {
	pipeline := &Pipeline{
		DebugFlags: debugFlags,
		DebugDir:   debugDir,
		Prepare:    PrepareFrameInfo(),
		Integrator: MonteCarloIntegrator(),
		PostProcess: []PipelineStage{
			TonemapGamma(exposure, gamma),
		},
	}

	if debugFlags&PrimaryRayIntersectionDepth == PrimaryRayIntersectionDepth {
		pipeline.PostProcess = append(pipeline.PostProcess, DebugPrimaryRayIntersectionDepth(debugDir))
	}
	if debugFlags&PrimaryRayIntersectionNormals == PrimaryRayIntersectionNormals {
		pipeline.PostProcess = append(pipeline.PostProcess, DebugPrimaryRayIntersectionNormals(debugDir))
	}
	if debugFlags&Accumulator == Accumulator {
		pipeline.PostProcess = append(pipeline.PostProcess, DebugAccumulator(debugDir))
	}
	if debugFlags&FrameBuffer == FrameBuffer {
		pipeline.PostProcess = append(pipeline.PostProcess, DebugFrameBuffer(debugDir))
	}

	return pipeline
}

// Build the per-frame parameters from the tracer camera and the block
// request and check them against the tracer's sphere list.
func PrepareFrameInfo() PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		if blockReq.FrameCount == 0 {
			return time.Since(start), integrator.ErrInvalidFrameCount
		}

		tr.info.Camera = *tr.camera
		tr.info.Time = blockReq.Time
		tr.info.SphereCount = blockReq.SphereCount
		tr.info.RandomSeed = blockReq.Seed
		tr.info.FrameCount = blockReq.FrameCount

		if err := tr.info.Validate(tr.spheres); err != nil {
			return time.Since(start), fmt.Errorf("cpu tracer: invalid frame info: %w", err)
		}
		return time.Since(start), nil
	}
}

// Use a montecarlo pathtracer implementation.
func MonteCarloIntegrator() PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		frameW := blockReq.FrameW
		frameH := blockReq.FrameH
		rowLen := 4 * int(frameW)

		samples := make([]types.Vec3, frameW)
		for y := blockReq.BlockY; y < blockReq.BlockY+blockReq.BlockH; y++ {
			for x := uint32(0); x < frameW; x++ {
				samples[x] = tr.integrator.TracePixel(x, y, frameW, frameH, &tr.info, tr.spheres)
			}

			rowStart := int(y) * rowLen
			err := integrator.AccumulateRGBA(
				blockReq.Next[rowStart:rowStart+rowLen],
				blockReq.Prev[rowStart:rowStart+rowLen],
				samples,
				tr.info.FrameCount,
			)
			if err != nil {
				return time.Since(start), err
			}
		}

		return time.Since(start), nil
	}
}

// Scale the accumulated radiance by exposure, apply gamma correction and
// write the block into the request frame buffer.
func TonemapGamma(exposure, gamma float32) PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		if blockReq.FrameBuffer == nil {
			return time.Since(start), nil
		}

		frameW := blockReq.FrameW
		for y := blockReq.BlockY; y < blockReq.BlockY+blockReq.BlockH; y++ {
			for x := uint32(0); x < frameW; x++ {
				offset := 4 * (y*frameW + x)
				c := types.XYZ(blockReq.Next[offset], blockReq.Next[offset+1], blockReq.Next[offset+2])
				blockReq.FrameBuffer.SetRGBA(int(x), int(y), Tonemap(c, exposure, gamma))
			}
		}

		return time.Since(start), nil
	}
}

// Map a linear radiance value to an 8-bit sRGB-like color.
func Tonemap(c types.Vec3, exposure, gamma float32) color.RGBA {
	invGamma := 1.0
	if gamma > 0 {
		invGamma = 1.0 / float64(gamma)
	}

	var out [3]uint8
	for i := 0; i < 3; i++ {
		v := float64(c[i] * exposure)
		if v <= 0 || math.IsNaN(v) {
			continue
		}
		v = math.Pow(math.Min(v, 1), invGamma)
		out[i] = uint8(v*255 + 0.5)
	}

	return color.RGBA{R: out[0], G: out[1], B: out[2], A: 255}
}

// Render the distance to the nearest primary ray intersection as a
// grayscale image; misses are black.
func DebugPrimaryRayIntersectionDepth(dir string) PipelineStage {
	return debugPrimaryRayStage(dir, "debug-primary-intersection-depth", func(hit integrator.HitResult) color.RGBA {
		shade := uint8(255.0 / (1.0 + 0.1*hit.T))
		return color.RGBA{R: shade, G: shade, B: shade, A: 255}
	})
}

// Render the primary ray intersection normals mapped from [-1, 1] to [0, 255].
func DebugPrimaryRayIntersectionNormals(dir string) PipelineStage {
	return debugPrimaryRayStage(dir, "debug-primary-intersection-normals", func(hit integrator.HitResult) color.RGBA {
		n := hit.Normal.Mul(0.5).Add(types.Splat3(0.5)).Clamp(0, 1)
		return color.RGBA{R: uint8(n[0] * 255), G: uint8(n[1] * 255), B: uint8(n[2] * 255), A: 255}
	})
}

// Dump the accumulation buffer without any tonemapping.
func DebugAccumulator(dir string) PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		frameW := blockReq.FrameW
		for y := blockReq.BlockY; y < blockReq.BlockY+blockReq.BlockH; y++ {
			for x := uint32(0); x < frameW; x++ {
				offset := 4 * (y*frameW + x)
				c := types.XYZ(blockReq.Next[offset], blockReq.Next[offset+1], blockReq.Next[offset+2]).Clamp(0, 1)
				tr.debugBuffer.SetRGBA(int(x), int(y), color.RGBA{R: uint8(c[0] * 255), G: uint8(c[1] * 255), B: uint8(c[2] * 255), A: 255})
			}
		}

		err := dumpDebugBuffer(tr.debugBuffer, debugPath(dir, "debug-accumulator", tr.id))
		return time.Since(start), err
	}
}

// Dump the tonemapped rows of this tracer's block. Other tracers may still
// be writing their own rows to the shared frame buffer so only the block
// rows are copied out.
func DebugFrameBuffer(dir string) PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		if blockReq.FrameBuffer == nil {
			return time.Since(start), nil
		}

		block := image.Rect(0, int(blockReq.BlockY), int(blockReq.FrameW), int(blockReq.BlockY+blockReq.BlockH))
		draw.Draw(tr.debugBuffer, block, blockReq.FrameBuffer, block.Min, draw.Src)

		err := dumpDebugBuffer(tr.debugBuffer.SubImage(block), debugPath(dir, "debug-fb", tr.id))
		return time.Since(start), err
	}
}

func debugPrimaryRayStage(dir, prefix string, shadeFn func(integrator.HitResult) color.RGBA) PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		frameW := blockReq.FrameW
		frameH := blockReq.FrameH
		miss := color.RGBA{A: 255}

		for y := blockReq.BlockY; y < blockReq.BlockY+blockReq.BlockH; y++ {
			for x := uint32(0); x < frameW; x++ {
				ray := tr.info.Camera.Ray(x, y, frameW, frameH, 0.5, 0.5)
				hit := integrator.HitAny(ray, tr.spheres)
				if hit.T <= integrator.HitEpsilon {
					tr.debugBuffer.SetRGBA(int(x), int(y), miss)
					continue
				}
				tr.debugBuffer.SetRGBA(int(x), int(y), shadeFn(hit))
			}
		}

		err := dumpDebugBuffer(tr.debugBuffer, debugPath(dir, prefix, tr.id))
		return time.Since(start), err
	}
}

func debugPath(dir, prefix, tracerId string) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s.png", prefix, tracerId))
}

// Write an image to a png file.
func dumpDebugBuffer(img image.Image, imgFile string) error {
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}
