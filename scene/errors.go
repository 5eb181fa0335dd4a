package scene

import "errors"

var (
	ErrNoCamera            = errors.New("scene: no camera defined")
	ErrInvalidRadius       = errors.New("scene: sphere radius must be positive")
	ErrInvalidAlbedo       = errors.New("scene: albedo components must be in [0, 1]")
	ErrSphereCountMismatch = errors.New("scene: sphere count does not match the sphere list")
	ErrInvalidFrameCount   = errors.New("scene: frame count must be at least 1")
)
