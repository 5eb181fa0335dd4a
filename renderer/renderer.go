package renderer

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/achilleasa/spheretracer/log"
	"github.com/achilleasa/spheretracer/scene"
	"github.com/achilleasa/spheretracer/tracer"
	"github.com/achilleasa/spheretracer/tracer/cpu"
)

type Renderer interface {
	// Render the next frame and blend it into the accumulated image.
	Render(ctx context.Context) (*image.RGBA, error)

	// Replace the scene. This resets the accumulated image.
	UpdateScene(sc *scene.Scene) error

	// Move the camera. This resets the accumulated image.
	UpdateCamera(camera *scene.Camera) error

	// Change the frame dimensions. This resets the accumulated image.
	Resize(frameW, frameH uint32) error

	// Get the number of frames accumulated since the last reset.
	FrameCount() uint32

	// Get a copy of the accumulated RGBA image (4 floats per pixel).
	Accumulation() []float32

	// Write the last tonemapped frame to a png file.
	SaveFrameBuffer(imgFile string) error

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}

// The default renderer splits each frame into row blocks, distributes them
// to its tracers and swaps its accumulation buffers once all blocks are done.
type defaultRenderer struct {
	sync.Mutex

	logger log.Logger

	opts      Options
	scene     *scene.Scene
	tracers   []tracer.Tracer
	scheduler tracer.BlockScheduler

	// Accumulation double buffer. prevAccum holds the image after the
	// last completed frame.
	prevAccum []float32
	nextAccum []float32

	frameBuffer *image.RGBA

	// Frames accumulated since the last scene, camera or resolution change.
	frameCount uint32

	// Generator for the per-frame random seed.
	rng *rand.Rand

	// Time of the last scene update.
	sceneStart time.Time

	stats FrameStats

	doneChan chan uint32
	errChan  chan error
}

// Create a renderer backed by opts.NumTracers cpu tracers that share the
// supplied pipeline.
func NewDefault(sc *scene.Scene, scheduler tracer.BlockScheduler, pipeline *cpu.Pipeline, opts Options) (Renderer, error) {
	if opts.NumTracers <= 0 {
		return nil, ErrNoTracers
	}

	tracers := make([]tracer.Tracer, 0, opts.NumTracers)
	for i := 0; i < opts.NumTracers; i++ {
		tr, err := cpu.NewTracer(fmt.Sprintf("tr-%d", i), pipeline)
		if err != nil {
			closeTracers(tracers)
			return nil, err
		}
		tracers = append(tracers, tr)
	}

	r, err := New(sc, tracers, scheduler, opts)
	if err != nil {
		closeTracers(tracers)
		return nil, err
	}
	return r, nil
}

// Create a renderer using the supplied tracers. The renderer takes
// ownership of the tracers and closes them when it is closed.
func New(sc *scene.Scene, tracers []tracer.Tracer, scheduler tracer.BlockScheduler, opts Options) (Renderer, error) {
	if len(tracers) == 0 {
		return nil, ErrNoTracers
	}
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if scheduler == nil {
		scheduler = tracer.PerfectScheduler()
	}

	r := &defaultRenderer{
		logger:    log.New("renderer"),
		opts:      opts,
		tracers:   tracers,
		scheduler: scheduler,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		doneChan:  make(chan uint32, len(tracers)),
		errChan:   make(chan error, len(tracers)),
	}

	if err := r.Resize(opts.FrameW, opts.FrameH); err != nil {
		return nil, err
	}
	for _, tr := range tracers {
		tr.Update(tracer.UpdateIntegrator, opts.IntegratorOptions())
	}
	if err := r.UpdateScene(sc); err != nil {
		return nil, err
	}

	r.logger.Infof("attached %d tracers; frame %dx%d; %d spp; %d bounces; %s policy",
		len(tracers), opts.FrameW, opts.FrameH, opts.SamplesPerPixel, opts.NumBounces, opts.Policy)
	return r, nil
}

func (r *defaultRenderer) Render(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInterrupted, err)
	}

	r.Lock()
	defer r.Unlock()

	if len(r.tracers) == 0 {
		return nil, ErrNoTracers
	}

	frameCount := r.frameCount + 1
	seed := r.rng.Float32()
	elapsed := float32(time.Since(r.sceneStart).Seconds())

	start := time.Now()
	blockAssignment := r.scheduler.Schedule(r.tracers, r.opts.FrameH)

	var blockY uint32
	pending := 0
	for idx, tr := range r.tracers {
		blockH := blockAssignment[idx]
		if blockH == 0 {
			continue
		}

		tr.Enqueue(tracer.BlockRequest{
			FrameW:      r.opts.FrameW,
			FrameH:      r.opts.FrameH,
			BlockY:      blockY,
			BlockH:      blockH,
			SphereCount: uint32(len(r.scene.Spheres)),
			Seed:        seed,
			Time:        elapsed,
			FrameCount:  frameCount,
			Prev:        r.prevAccum,
			Next:        r.nextAccum,
			FrameBuffer: r.frameBuffer,
			DoneChan:    r.doneChan,
			ErrChan:     r.errChan,
		})
		blockY += blockH
		pending++
	}

	// Wait for every block even if one fails so no tracer is still
	// writing to the buffers when we return
	var err error
	for ; pending > 0; pending-- {
		select {
		case <-r.doneChan:
		case blockErr := <-r.errChan:
			if err == nil {
				err = blockErr
			}
		}
	}
	if err != nil {
		r.logger.Errorf("frame %d failed: %v", frameCount, err)
		return nil, err
	}

	r.prevAccum, r.nextAccum = r.nextAccum, r.prevAccum
	r.frameCount = frameCount
	r.updateStats(blockAssignment, time.Since(start))

	r.logger.Debugf("rendered frame %d in %s", frameCount, r.stats.RenderTime)
	return r.frameBuffer, nil
}

func (r *defaultRenderer) UpdateScene(sc *scene.Scene) error {
	if sc == nil {
		return ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return ErrCameraNotDefined
	}
	if err := sc.Validate(); err != nil {
		return err
	}

	r.Lock()
	defer r.Unlock()

	r.scene = sc.Clone()
	for _, tr := range r.tracers {
		tr.Update(tracer.UpdateSpheres, r.scene.Spheres)
		tr.Update(tracer.UpdateCamera, r.scene.Camera)
	}
	r.sceneStart = time.Now()
	r.frameCount = 0
	return nil
}

func (r *defaultRenderer) UpdateCamera(camera *scene.Camera) error {
	if camera == nil {
		return ErrCameraNotDefined
	}

	r.Lock()
	defer r.Unlock()

	if r.scene == nil {
		return ErrSceneNotDefined
	}

	cam := *camera
	r.scene.Camera = &cam
	for _, tr := range r.tracers {
		tr.Update(tracer.UpdateCamera, &cam)
	}
	r.frameCount = 0
	return nil
}

func (r *defaultRenderer) Resize(frameW, frameH uint32) error {
	bufLen, err := tracer.AccumulationLen(frameW, frameH)
	if err != nil {
		return err
	}

	r.Lock()
	defer r.Unlock()

	for _, tr := range r.tracers {
		if err := tr.Init(frameW, frameH); err != nil {
			return fmt.Errorf("renderer: could not init tracer %s: %w", tr.Id(), err)
		}
	}

	r.opts.FrameW = frameW
	r.opts.FrameH = frameH
	r.prevAccum = make([]float32, bufLen)
	r.nextAccum = make([]float32, bufLen)
	r.frameBuffer = image.NewRGBA(image.Rect(0, 0, int(frameW), int(frameH)))
	r.frameCount = 0
	return nil
}

func (r *defaultRenderer) FrameCount() uint32 {
	r.Lock()
	defer r.Unlock()
	return r.frameCount
}

func (r *defaultRenderer) Accumulation() []float32 {
	r.Lock()
	defer r.Unlock()
	return append([]float32(nil), r.prevAccum...)
}

func (r *defaultRenderer) SaveFrameBuffer(imgFile string) error {
	r.Lock()
	defer r.Unlock()

	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	if err = png.Encode(f, r.frameBuffer); err != nil {
		return err
	}
	r.logger.Noticef("wrote frame to %s in %s", imgFile, time.Since(start))
	return nil
}

func (r *defaultRenderer) Close() {
	r.Lock()
	defer r.Unlock()

	closeTracers(r.tracers)
	r.tracers = nil
}

func (r *defaultRenderer) Stats() FrameStats {
	r.Lock()
	defer r.Unlock()
	return r.stats
}

func (r *defaultRenderer) updateStats(blockAssignment []uint32, renderTime time.Duration) {
	r.stats = FrameStats{
		Tracers:    make([]TracerStat, len(r.tracers)),
		FrameCount: r.frameCount,
		RenderTime: renderTime,
	}

	for idx, tr := range r.tracers {
		stat := TracerStat{
			Id:           tr.Id(),
			IsPrimary:    idx == 0,
			BlockH:       blockAssignment[idx],
			FramePercent: 100.0 * float32(blockAssignment[idx]) / float32(r.opts.FrameH),
		}
		if stat.BlockH > 0 {
			stat.RenderTime = tr.Stats().RenderTime
		}
		r.stats.Tracers[idx] = stat
	}
}

func closeTracers(tracers []tracer.Tracer) {
	for _, tr := range tracers {
		tr.Close()
	}
}
