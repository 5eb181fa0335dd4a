package tracer

import (
	"errors"
	"fmt"
)

// Largest frame area, in pixels, that tracers accept (8192x8192).
const MaxFramePixels = 8192 * 8192

var (
	ErrInvalidFrameDims = errors.New("tracer: frame dimensions must be non-zero")
	ErrFrameTooLarge    = errors.New("tracer: frame exceeds the max supported pixel count")
)

// Get the number of floats in an RGBA accumulation buffer for a frame with
// the given dims.
func AccumulationLen(frameW, frameH uint32) (int, error) {
	if frameW == 0 || frameH == 0 {
		return 0, fmt.Errorf("%w: %dx%d", ErrInvalidFrameDims, frameW, frameH)
	}

	pixels := uint64(frameW) * uint64(frameH)
	if pixels > MaxFramePixels {
		return 0, fmt.Errorf("%w: %dx%d", ErrFrameTooLarge, frameW, frameH)
	}
	return int(4 * pixels), nil
}
