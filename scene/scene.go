package scene

import (
	"fmt"

	"github.com/achilleasa/spheretracer/types"
)

// A scene is an ordered list of spheres viewed through a camera. The order
// of the spheres is significant; intersection results refer to spheres by
// index and ties are resolved in favor of the lower index.
type Scene struct {
	Camera  *Camera  `json:"camera"`
	Spheres []Sphere `json:"spheres"`
}

func NewScene() *Scene {
	return &Scene{
		Camera:  NewCamera(types.Vec3{}),
		Spheres: make([]Sphere, 0),
	}
}

// Attach a camera to the scene.
func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

// Add a sphere to the scene and return its index.
func (s *Scene) AddSphere(sphere Sphere) (int, error) {
	if err := validateSphere(sphere); err != nil {
		return -1, fmt.Errorf("%w (sphere %d)", err, len(s.Spheres))
	}
	s.Spheres = append(s.Spheres, sphere)
	return len(s.Spheres) - 1, nil
}

// Remove the sphere at the given index. Spheres after it shift down by one.
func (s *Scene) RemoveSphere(index int) error {
	if index < 0 || index >= len(s.Spheres) {
		return fmt.Errorf("scene: sphere index %d out of range [0, %d)", index, len(s.Spheres))
	}
	s.Spheres = append(s.Spheres[:index], s.Spheres[index+1:]...)
	return nil
}

// Check that the scene has a camera and that all spheres are well formed.
func (s *Scene) Validate() error {
	if s.Camera == nil {
		return ErrNoCamera
	}
	for index, sphere := range s.Spheres {
		if err := validateSphere(sphere); err != nil {
			return fmt.Errorf("%w (sphere %d)", err, index)
		}
	}
	return nil
}

// Create a deep copy of the scene. Tracers receive copies so that the host
// can keep editing its own scene between frames.
func (s *Scene) Clone() *Scene {
	out := &Scene{
		Spheres: make([]Sphere, len(s.Spheres)),
	}
	copy(out.Spheres, s.Spheres)
	if s.Camera != nil {
		cam := *s.Camera
		out.Camera = &cam
	}
	return out
}

func validateSphere(sphere Sphere) error {
	if !(sphere.Radius > 0) {
		return ErrInvalidRadius
	}
	for _, c := range sphere.Material.Albedo {
		if !(c >= 0 && c <= 1) {
			return ErrInvalidAlbedo
		}
	}
	return nil
}

// Create the default scene: three unit spheres (two mirrors and a diffuse
// one) resting on a large diffuse sphere, viewed from x = 2.
func Default() *Scene {
	sc := NewScene()
	sc.Camera.Position = types.XYZ(2, 0, 0)
	sc.Spheres = append(sc.Spheres,
		Sphere{Center: types.XYZ(10, 0, 1), Radius: 1, Material: Mirror(types.Splat3(0.87))},
		Sphere{Center: types.XYZ(7.3, -1.2, 1.02), Radius: 1, Material: Mirror(types.Splat3(0.87))},
		Sphere{Center: types.XYZ(9, 2.2, 1.03), Radius: 1, Material: Diffuse(types.Splat3(0.97))},
		Sphere{Center: types.XYZ(10, 0, 102), Radius: 100, Material: Diffuse(types.XYZ(1, 0.5, 0.5))},
	)
	return sc
}
