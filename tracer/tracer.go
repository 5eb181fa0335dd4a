package tracer

import (
	"image"
	"time"
)

type UpdateType uint8

// The list of update types that can be queued on a tracer. Each type
// carries a specific payload:
//   - UpdateSpheres: []scene.Sphere
//   - UpdateCamera: *scene.Camera
//   - UpdateIntegrator: integrator.Options
const (
	UpdateSpheres UpdateType = iota
	UpdateCamera
	UpdateIntegrator
)

func (u UpdateType) String() string {
	switch u {
	case UpdateSpheres:
		return "spheres"
	case UpdateCamera:
		return "camera"
	case UpdateIntegrator:
		return "integrator"
	}
	return "unknown"
}

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// Number of spheres the renderer expects the tracer to hold.
	SphereCount uint32

	// A frame-level seed mixed into each pixel's sampler state.
	Seed float32

	// Seconds elapsed since the scene was loaded.
	Time float32

	// Number of sequential rendered frames from current camera position.
	FrameCount uint32

	// Accumulation buffers (4 floats per pixel). Prev is read-only; the
	// tracer writes each pixel of its block into Next exactly once.
	Prev []float32
	Next []float32

	// Optional tonemapped output.
	FrameBuffer *image.RGBA

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block height
	BlockH uint32

	// The time for rendering this block.
	RenderTime time.Duration

	// The time spent applying queued updates.
	UpdateTime time.Duration
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Get the tracer computation speed estimate relative to other tracers.
	Speed() uint32

	// Initialize the tracer for the given frame dimensions and start its
	// worker. Calling Init on a running tracer updates its frame dims.
	Init(frameW, frameH uint32) error

	// Shutdown and cleanup tracer.
	Close()

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Append a change to the tracer's update buffer. Queued changes are
	// applied before the next block is processed; latest updates always
	// overwrite previous ones of the same type.
	Update(UpdateType, interface{})

	// Retrieve last frame statistics.
	Stats() *Stats
}
