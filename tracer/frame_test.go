package tracer

import (
	"errors"
	"testing"
)

func TestAccumulationLen(t *testing.T) {
	type spec struct {
		frameW, frameH uint32
		expLen         int
		expErr         error
	}

	specs := []spec{
		{1, 1, 4, nil},
		{512, 256, 4 * 512 * 256, nil},
		{8192, 8192, 4 * MaxFramePixels, nil},
		{0, 10, 0, ErrInvalidFrameDims},
		{10, 0, 0, ErrInvalidFrameDims},
		{8193, 8192, 0, ErrFrameTooLarge},
		// 4*W*H wraps to 0 in uint32 arithmetic
		{1 << 30, 1, 0, ErrFrameTooLarge},
		{1 << 16, 1 << 16, 0, ErrFrameTooLarge},
		{^uint32(0), ^uint32(0), 0, ErrFrameTooLarge},
	}

	for specIndex, spec := range specs {
		got, err := AccumulationLen(spec.frameW, spec.frameH)
		if spec.expErr != nil {
			if !errors.Is(err, spec.expErr) {
				t.Errorf("[spec %d] expected error %v; got %v", specIndex, spec.expErr, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("[spec %d] unexpected error: %v", specIndex, err)
			continue
		}
		if got != spec.expLen {
			t.Errorf("[spec %d] expected len %d; got %d", specIndex, spec.expLen, got)
		}
	}
}
