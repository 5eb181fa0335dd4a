package integrator

import "errors"

var (
	ErrInvalidFrameCount  = errors.New("integrator: frame count must be at least 1")
	ErrInvalidSampleCount = errors.New("integrator: samples per pixel must be at least 1")
	ErrInvalidBounceCount = errors.New("integrator: max bounces must be at least 1")
	ErrUnknownPolicy      = errors.New("integrator: unknown scatter policy")
)
