package integrator

import "github.com/achilleasa/spheretracer/types"

// Blend a new frame sample into the running per-pixel mean. frameCount is
// the 1-based index of the frame that produced sample; a value of 1 discards
// any history. The blend is computed as prev + (sample - prev)/N which equals
// prev*(N-1)/N + sample/N and leaves a converged pixel unchanged.
func Accumulate(prev, sample types.Vec3, frameCount uint32) (types.Vec3, error) {
	if frameCount == 0 {
		return types.Vec3{}, ErrInvalidFrameCount
	}
	if frameCount == 1 {
		return sample, nil
	}

	return prev.Add(sample.Sub(prev).Mul(1 / float32(frameCount))), nil
}

// Blend a buffer of RGBA samples into next using prev as the running mean.
// All buffers hold 4 floats per pixel; alpha is always set to 1.
func AccumulateRGBA(next, prev []float32, samples []types.Vec3, frameCount uint32) error {
	if frameCount == 0 {
		return ErrInvalidFrameCount
	}

	for i, sample := range samples {
		offset := i * 4
		prevColor := types.XYZ(prev[offset], prev[offset+1], prev[offset+2])
		out, _ := Accumulate(prevColor, sample, frameCount)
		next[offset] = out[0]
		next[offset+1] = out[1]
		next[offset+2] = out[2]
		next[offset+3] = 1
	}
	return nil
}
