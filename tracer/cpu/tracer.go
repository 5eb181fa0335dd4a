package cpu

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/achilleasa/spheretracer/log"
	"github.com/achilleasa/spheretracer/scene"
	"github.com/achilleasa/spheretracer/tracer"
	"github.com/achilleasa/spheretracer/tracer/integrator"
)

// A tracer that evaluates the path tracing kernel on a dedicated goroutine.
type Tracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The tracer id.
	id string

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateMu     sync.Mutex
	updateBuffer map[tracer.UpdateType]interface{}

	// A channel for receiving block requests from the renderer.
	blockReqChan chan tracer.BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered frame.
	stats *tracer.Stats

	// The tracer rendering pipeline.
	pipeline *Pipeline

	// Frame dims set by Init.
	frameW uint32
	frameH uint32

	// Scratch image used by the debug stages.
	debugBuffer *image.RGBA

	// Scene data applied from the update buffer.
	spheres    []scene.Sphere
	camera     *scene.Camera
	integrator *integrator.PathTracer

	// Per-frame parameters assembled by the prepare stage.
	info scene.Info
}

// Create a new cpu tracer that renders blocks using the supplied pipeline.
func NewTracer(id string, pipeline *Pipeline) (*Tracer, error) {
	if pipeline == nil {
		pipeline = DefaultPipeline(Off, "", 1.0, 2.2)
	}

	pt, err := integrator.New(integrator.DefaultOptions())
	if err != nil {
		return nil, err
	}

	tr := &Tracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", id)),
		id:           id,
		blockReqChan: make(chan tracer.BlockRequest, 1),
		updateBuffer: make(map[tracer.UpdateType]interface{}, 0),
		stats:        &tracer.Stats{},
		pipeline:     pipeline,
		integrator:   pt,
	}

	return tr, nil
}

// Get tracer id.
func (tr *Tracer) Id() string {
	return tr.id
}

// All cpu tracers share the same speed estimate.
func (tr *Tracer) Speed() uint32 {
	return 1
}

// Initialize tracer
func (tr *Tracer) Init(frameW, frameH uint32) error {
	if _, err := tracer.AccumulationLen(frameW, frameH); err != nil {
		return err
	}

	tr.Lock()
	defer tr.Unlock()

	tr.frameW = frameW
	tr.frameH = frameH
	if tr.pipeline.DebugFlags != Off {
		tr.debugBuffer = image.NewRGBA(image.Rect(0, 0, int(frameW), int(frameH)))
	}

	// Start worker
	if tr.closeChan == nil {
		tr.startWorker()
	}

	return nil
}

// Shutdown and cleanup tracer.
func (tr *Tracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	tr.cleanup()
}

// Cleanup tracer. This method is meant to be called while holding tr.Lock()
func (tr *Tracer) cleanup() {
	// If the worker is running shut it down
	if tr.closeChan != nil {
		tr.closeChan <- struct{}{}

		// wait for worker to ack close and shutdown channel
		<-tr.closeChan
		close(tr.closeChan)
		tr.wg.Wait()
		tr.closeChan = nil
	}

	tr.spheres = nil
	tr.camera = nil
	tr.debugBuffer = nil
}

// Enqueue block request.
func (tr *Tracer) Enqueue(blockReq tracer.BlockRequest) {
	tr.Lock()
	running := tr.closeChan != nil
	tr.Unlock()
	if !running {
		blockReq.ErrChan <- ErrNotInitialized
		return
	}

	select {
	case tr.blockReqChan <- blockReq:
	default:
		// drop the request if worker is not listening
		tr.logger.Error("request processor did not receive block request")
		blockReq.ErrChan <- ErrBusy
	}
}

// Append a change to the tracer's update buffer.
func (tr *Tracer) Update(updateType tracer.UpdateType, data interface{}) {
	tr.updateMu.Lock()
	tr.updateBuffer[updateType] = data
	tr.updateMu.Unlock()
}

// Retrieve last frame statistics.
func (tr *Tracer) Stats() *tracer.Stats {
	return tr.stats
}

// Commit queued changes. The queued updates are either all applied or, if
// any of them is invalid, all discarded.
func (tr *Tracer) commitUpdates() error {
	tr.updateMu.Lock()
	defer tr.updateMu.Unlock()

	if len(tr.updateBuffer) == 0 {
		return nil
	}

	pending := tr.updateBuffer
	tr.updateBuffer = make(map[tracer.UpdateType]interface{}, 0)

	var (
		spheres []scene.Sphere
		camera  *scene.Camera
		pt      *integrator.PathTracer
	)
	for updateType, data := range pending {
		var ok bool
		switch updateType {
		case tracer.UpdateSpheres:
			spheres, ok = data.([]scene.Sphere)
		case tracer.UpdateCamera:
			camera, ok = data.(*scene.Camera)
			ok = ok && camera != nil
		case tracer.UpdateIntegrator:
			var opts integrator.Options
			if opts, ok = data.(integrator.Options); ok {
				var err error
				if pt, err = integrator.New(opts); err != nil {
					tr.logger.Errorf("discarding %d queued update(s): %v", len(pending), err)
					return err
				}
			}
		default:
			tr.logger.Errorf("discarding %d queued update(s): unsupported update type %d", len(pending), updateType)
			return fmt.Errorf("%w: %d", ErrUnsupportedUpdate, updateType)
		}

		if !ok {
			tr.logger.Errorf("discarding %d queued update(s): unexpected %s payload %T", len(pending), updateType, data)
			return fmt.Errorf("%w: %s payload %T", ErrInvalidUpdate, updateType, data)
		}
	}

	if _, found := pending[tracer.UpdateSpheres]; found {
		tr.spheres = append(make([]scene.Sphere, 0, len(spheres)), spheres...)
	}
	if camera != nil {
		cam := *camera
		tr.camera = &cam
	}
	if pt != nil {
		tr.integrator = pt
	}
	tr.logger.Debugf("applied %d update(s)", len(pending))

	return nil
}

// Spawn a go-routine to process block render requests.
func (tr *Tracer) startWorker() {
	tr.closeChan = make(chan struct{}, 0)

	readyChan := make(chan struct{}, 0)
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		var blockReq tracer.BlockRequest
		var startTime time.Time
		var err error
		close(readyChan)
		for {
			select {
			case blockReq = <-tr.blockReqChan:
				startTime = time.Now()

				// Apply any pending changes
				err = tr.commitUpdates()
				if err != nil {
					blockReq.ErrChan <- err
					continue
				}
				tr.stats.UpdateTime = time.Since(startTime)

				// Render block and reply with our completion status
				err = tr.renderBlock(&blockReq)
				if err != nil {
					blockReq.ErrChan <- err
					continue
				}

				// Update stats
				tr.stats.BlockH = blockReq.BlockH
				tr.stats.RenderTime = time.Since(startTime)

				blockReq.DoneChan <- blockReq.BlockH
			case <-tr.closeChan:
				// Ack close
				tr.closeChan <- struct{}{}
				return
			}
		}
	}()

	// Wait for go-routine to start
	<-readyChan
}

// Render block.
func (tr *Tracer) renderBlock(blockReq *tracer.BlockRequest) error {
	if tr.spheres == nil {
		return ErrNoSceneData
	}
	if tr.camera == nil {
		return ErrNoCamera
	}

	bufLen, err := tracer.AccumulationLen(blockReq.FrameW, blockReq.FrameH)
	if err != nil {
		return err
	}
	if uint64(blockReq.BlockY)+uint64(blockReq.BlockH) > uint64(blockReq.FrameH) {
		return fmt.Errorf("%w: rows [%d, %d) of %d", ErrBlockOutOfBounds, blockReq.BlockY, uint64(blockReq.BlockY)+uint64(blockReq.BlockH), blockReq.FrameH)
	}
	if len(blockReq.Prev) != bufLen || len(blockReq.Next) != bufLen {
		return ErrBufferSizeMismatch
	}

	stages := make([]PipelineStage, 0, 2+len(tr.pipeline.PostProcess))
	stages = append(stages, tr.pipeline.Prepare, tr.pipeline.Integrator)
	stages = append(stages, tr.pipeline.PostProcess...)

	for _, stage := range stages {
		if stage == nil {
			continue
		}
		if _, err := stage(tr, blockReq); err != nil {
			return err
		}
	}

	return nil
}
