package scene

// Per-frame parameters. A fresh Info is built by the renderer for every frame.
type Info struct {
	Camera Camera

	// Seconds elapsed since the scene was loaded.
	Time float32

	// Must equal the number of spheres supplied alongside this Info.
	SphereCount uint32

	// A frame-level seed mixed into every pixel's sampler state.
	RandomSeed float32

	// 1-based number of frames accumulated since the last scene, camera
	// or resolution change.
	FrameCount uint32
}

// Check the Info invariants against the sphere list it is paired with.
func (info *Info) Validate(spheres []Sphere) error {
	if info.FrameCount == 0 {
		return ErrInvalidFrameCount
	}
	if int(info.SphereCount) != len(spheres) {
		return ErrSphereCountMismatch
	}
	return nil
}
