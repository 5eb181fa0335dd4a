package cpu

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/achilleasa/spheretracer/scene"
	"github.com/achilleasa/spheretracer/tracer"
	"github.com/achilleasa/spheretracer/tracer/integrator"
	"github.com/achilleasa/spheretracer/types"
)

const (
	testFrameW = 8
	testFrameH = 6
)

func TestTracerRendersBlock(t *testing.T) {
	tr := createTestTracer(t, nil)
	defer tr.Close()

	sc := scene.Default()
	opts := testIntegratorOptions()
	tr.Update(tracer.UpdateSpheres, sc.Spheres)
	tr.Update(tracer.UpdateCamera, sc.Camera)
	tr.Update(tracer.UpdateIntegrator, opts)

	prev := make([]float32, 4*testFrameW*testFrameH)
	next := make([]float32, 4*testFrameW*testFrameH)
	fb := image.NewRGBA(image.Rect(0, 0, testFrameW, testFrameH))
	req := makeRequest(2, 3, uint32(len(sc.Spheres)), 1, prev, next)
	req.FrameBuffer = fb

	if err := runBlock(tr, req); err != nil {
		t.Fatal(err)
	}

	// Compare against a direct evaluation of the kernel
	pt, _ := integrator.New(opts)
	info := &scene.Info{Camera: *sc.Camera, SphereCount: uint32(len(sc.Spheres)), RandomSeed: req.Seed, FrameCount: 1}
	for y := uint32(0); y < testFrameH; y++ {
		for x := uint32(0); x < testFrameW; x++ {
			offset := 4 * (y*testFrameW + x)
			inBlock := y >= req.BlockY && y < req.BlockY+req.BlockH

			if !inBlock {
				if next[offset+3] != 0 {
					t.Fatalf("expected pixel (%d, %d) outside the block to be untouched", x, y)
				}
				continue
			}

			exp := pt.TracePixel(x, y, testFrameW, testFrameH, info, sc.Spheres)
			got := types.XYZ(next[offset], next[offset+1], next[offset+2])
			if got != exp {
				t.Fatalf("expected pixel (%d, %d) to be %v; got %v", x, y, exp, got)
			}
			if next[offset+3] != 1 {
				t.Fatalf("expected pixel (%d, %d) alpha to be 1; got %f", x, y, next[offset+3])
			}
			if fb.RGBAAt(int(x), int(y)).A != 255 {
				t.Fatalf("expected pixel (%d, %d) to be tonemapped", x, y)
			}
		}
	}

	stats := tr.Stats()
	if stats.BlockH != req.BlockH {
		t.Fatalf("expected stats block height to be %d; got %d", req.BlockH, stats.BlockH)
	}
}

func TestTracerAccumulatesAcrossFrames(t *testing.T) {
	tr := createTestTracer(t, nil)
	defer tr.Close()

	// With no spheres every sample is the sky so frame 2 must blend 50/50
	tr.Update(tracer.UpdateSpheres, []scene.Sphere{})
	tr.Update(tracer.UpdateCamera, scene.NewCamera(types.XYZ(0, 0, 0)))
	tr.Update(tracer.UpdateIntegrator, testIntegratorOptions())

	prev := make([]float32, 4*testFrameW*testFrameH)
	for i := range prev {
		prev[i] = 3
	}
	next := make([]float32, len(prev))

	req := makeRequest(0, testFrameH, 0, 2, prev, next)
	if err := runBlock(tr, req); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < len(next); i += 4 {
		for c := 0; c < 3; c++ {
			// sky colors are in [0.5, 1] so the blend lies in [1.75, 2]
			if next[i+c] < 1.75 || next[i+c] > 2.0 {
				t.Fatalf("expected blended value in [1.75, 2]; got %f at %d", next[i+c], i+c)
			}
		}
	}
}

func TestTracerErrors(t *testing.T) {
	type spec struct {
		setup  func(tr *Tracer)
		mutate func(req *tracer.BlockRequest)
		expErr error
	}

	withScene := func(tr *Tracer) {
		tr.Update(tracer.UpdateSpheres, []scene.Sphere{{Center: types.XYZ(5, 0, 0), Radius: 1}})
		tr.Update(tracer.UpdateCamera, scene.NewCamera(types.XYZ(0, 0, 0)))
		tr.Update(tracer.UpdateIntegrator, testIntegratorOptions())
	}

	specs := []spec{
		{func(tr *Tracer) {}, func(req *tracer.BlockRequest) {}, ErrNoSceneData},
		{func(tr *Tracer) { tr.Update(tracer.UpdateSpheres, []scene.Sphere{}) }, func(req *tracer.BlockRequest) {}, ErrNoCamera},
		{withScene, func(req *tracer.BlockRequest) { req.FrameCount = 0 }, integrator.ErrInvalidFrameCount},
		{withScene, func(req *tracer.BlockRequest) { req.SphereCount = 3 }, scene.ErrSphereCountMismatch},
		{withScene, func(req *tracer.BlockRequest) { req.BlockH = testFrameH + 1 }, ErrBlockOutOfBounds},
		{withScene, func(req *tracer.BlockRequest) { req.Next = req.Next[:4] }, ErrBufferSizeMismatch},
		// 4*W*H wraps to 0 in uint32 so empty buffers must not slip through
		{withScene, func(req *tracer.BlockRequest) {
			req.FrameW, req.FrameH, req.BlockH = 1<<30, 1, 1
			req.Prev, req.Next = nil, nil
		}, ErrFrameTooLarge},
		{withScene, func(req *tracer.BlockRequest) { req.BlockY = ^uint32(0) }, ErrBlockOutOfBounds},
		{withScene, func(req *tracer.BlockRequest) { req.FrameW = 0 }, ErrInvalidFrameDims},
		{func(tr *Tracer) { tr.Update(tracer.UpdateType(42), nil) }, func(req *tracer.BlockRequest) {}, ErrUnsupportedUpdate},
	}

	for specIndex, s := range specs {
		tr := createTestTracer(t, nil)
		s.setup(tr)

		prev := make([]float32, 4*testFrameW*testFrameH)
		next := make([]float32, len(prev))
		req := makeRequest(0, 2, 1, 1, prev, next)
		s.mutate(&req)

		err := runBlock(tr, req)
		if !errors.Is(err, s.expErr) {
			t.Errorf("[spec %d] expected error %v; got %v", specIndex, s.expErr, err)
		}
		tr.Close()
	}
}

func TestInvalidUpdatesAreDiscardedTogether(t *testing.T) {
	tr := createTestTracer(t, nil)
	defer tr.Close()

	origin := types.XYZ(0, 0, 0)
	tr.Update(tracer.UpdateSpheres, []scene.Sphere{})
	tr.Update(tracer.UpdateCamera, scene.NewCamera(origin))
	tr.Update(tracer.UpdateIntegrator, testIntegratorOptions())

	prev := make([]float32, 4*testFrameW*testFrameH)
	next := make([]float32, len(prev))
	req := makeRequest(0, testFrameH, 0, 1, prev, next)
	if err := runBlock(tr, req); err != nil {
		t.Fatal(err)
	}

	type spec struct {
		update tracer.UpdateType
		data   interface{}
		expErr error
	}
	specs := []spec{
		{tracer.UpdateIntegrator, integrator.Options{SamplesPerPixel: 0, MaxBounces: 1}, integrator.ErrInvalidSampleCount},
		{tracer.UpdateIntegrator, "bogus", ErrInvalidUpdate},
		{tracer.UpdateSpheres, 42, ErrInvalidUpdate},
		{tracer.UpdateType(42), nil, ErrUnsupportedUpdate},
	}

	for specIndex, spec := range specs {
		// queue a valid camera move along with the bad update
		tr.Update(tracer.UpdateCamera, scene.NewCamera(types.XYZ(1, 2, 3)))
		tr.Update(spec.update, spec.data)

		if err := runBlock(tr, req); !errors.Is(err, spec.expErr) {
			t.Errorf("[spec %d] expected error %v; got %v", specIndex, spec.expErr, err)
		}
		if tr.camera.Position != origin {
			t.Errorf("[spec %d] expected camera update to be discarded; camera at %v", specIndex, tr.camera.Position)
		}

		// the bad batch must not stick around for the next block
		if err := runBlock(tr, req); err != nil {
			t.Errorf("[spec %d] expected next block to succeed; got %v", specIndex, err)
		}
	}
}

func TestTracerDebugOutputs(t *testing.T) {
	dir := t.TempDir()
	pipeline := DefaultPipeline(PrimaryRayIntersectionDepth|PrimaryRayIntersectionNormals|Accumulator|FrameBuffer, dir, 1.0, 2.2)
	tr := createTestTracer(t, pipeline)
	defer tr.Close()

	sc := scene.Default()
	tr.Update(tracer.UpdateSpheres, sc.Spheres)
	tr.Update(tracer.UpdateCamera, sc.Camera)
	tr.Update(tracer.UpdateIntegrator, testIntegratorOptions())

	prev := make([]float32, 4*testFrameW*testFrameH)
	next := make([]float32, len(prev))
	req := makeRequest(0, testFrameH, uint32(len(sc.Spheres)), 1, prev, next)
	req.FrameBuffer = image.NewRGBA(image.Rect(0, 0, testFrameW, testFrameH))

	if err := runBlock(tr, req); err != nil {
		t.Fatal(err)
	}

	expFiles := []string{
		"debug-primary-intersection-depth-test.png",
		"debug-primary-intersection-normals-test.png",
		"debug-accumulator-test.png",
		"debug-fb-test.png",
	}
	for _, name := range expFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected debug output %s to be written: %v", name, err)
		}
	}
}

func TestTonemap(t *testing.T) {
	type spec struct {
		in       types.Vec3
		exposure float32
		gamma    float32
		exp      [3]uint8
	}

	specs := []spec{
		{types.XYZ(0, 0.5, 1), 1, 1, [3]uint8{0, 128, 255}},
		{types.XYZ(2, -1, 0.25), 1, 2, [3]uint8{255, 0, 128}},
		{types.XYZ(0.25, 0.25, 0.25), 2, 1, [3]uint8{128, 128, 128}},
	}

	for specIndex, s := range specs {
		c := Tonemap(s.in, s.exposure, s.gamma)
		got := [3]uint8{c.R, c.G, c.B}
		if got != s.exp || c.A != 255 {
			t.Errorf("[spec %d] expected %v; got %v (alpha %d)", specIndex, s.exp, got, c.A)
		}
	}
}

func TestInitValidation(t *testing.T) {
	tr, err := NewTracer("test", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	if err := tr.Init(0, 10); !errors.Is(err, ErrInvalidFrameDims) {
		t.Fatalf("expected ErrInvalidFrameDims; got %v", err)
	}
	if err := tr.Init(1<<16, 1<<16); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge; got %v", err)
	}
}

func TestEnqueueWithoutWorker(t *testing.T) {
	tr, err := NewTracer("test", nil)
	if err != nil {
		t.Fatal(err)
	}

	prev := make([]float32, 4*testFrameW*testFrameH)
	next := make([]float32, len(prev))
	req := makeRequest(0, testFrameH, 0, 1, prev, next)
	if err = runBlock(tr, req); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized before Init; got %v", err)
	}

	if err = tr.Init(testFrameW, testFrameH); err != nil {
		t.Fatal(err)
	}
	tr.Close()
	if err = runBlock(tr, req); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized after Close; got %v", err)
	}
}

func createTestTracer(t *testing.T, pipeline *Pipeline) *Tracer {
	tr, err := NewTracer("test", pipeline)
	if err != nil {
		t.Fatal(err)
	}

	if err = tr.Init(testFrameW, testFrameH); err != nil {
		t.Fatal(err)
	}

	return tr
}

func testIntegratorOptions() integrator.Options {
	opts := integrator.DefaultOptions()
	opts.SamplesPerPixel = 2
	opts.MaxBounces = 8
	return opts
}

func makeRequest(blockY, blockH, sphereCount, frameCount uint32, prev, next []float32) tracer.BlockRequest {
	return tracer.BlockRequest{
		FrameW:      testFrameW,
		FrameH:      testFrameH,
		BlockY:      blockY,
		BlockH:      blockH,
		SphereCount: sphereCount,
		Seed:        0.37,
		FrameCount:  frameCount,
		Prev:        prev,
		Next:        next,
	}
}

// Enqueue a request and wait for the worker to reply.
func runBlock(tr *Tracer, req tracer.BlockRequest) error {
	doneChan := make(chan uint32, 1)
	errChan := make(chan error, 1)
	req.DoneChan = doneChan
	req.ErrChan = errChan

	tr.Enqueue(req)
	select {
	case <-doneChan:
		return nil
	case err := <-errChan:
		return err
	case <-time.After(30 * time.Second):
		return errors.New("timeout waiting for tracer")
	}
}
