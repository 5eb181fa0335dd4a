package cpu

import (
	"errors"

	"github.com/achilleasa/spheretracer/tracer"
)

var (
	ErrNoSceneData        = errors.New("cpu tracer: no scene data")
	ErrNoCamera           = errors.New("cpu tracer: no camera defined")
	ErrNotInitialized     = errors.New("cpu tracer: tracer not initialized")
	ErrInvalidFrameDims   = tracer.ErrInvalidFrameDims
	ErrFrameTooLarge      = tracer.ErrFrameTooLarge
	ErrBlockOutOfBounds   = errors.New("cpu tracer: block exceeds frame bounds")
	ErrBufferSizeMismatch = errors.New("cpu tracer: accumulation buffer size does not match frame dimensions")
	ErrUnsupportedUpdate  = errors.New("cpu tracer: unsupported update type")
	ErrInvalidUpdate      = errors.New("cpu tracer: invalid update payload")
	ErrBusy               = errors.New("cpu tracer: worker did not accept block request")
)
