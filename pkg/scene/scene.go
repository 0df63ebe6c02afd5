package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/lights"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera geometry.CameraTransform `json:"camera"`
	Shapes []geometry.Shape         `json:"shapes"` // Order only matters for equal-distance hits
	Light  lights.PointLight        `json:"light"`
	Config RenderConfig             `json:"config"`
}

// RenderConfig contains rendering configuration
type RenderConfig struct {
	Width      int `json:"width"`      // Image width
	Height     int `json:"height"`     // Image height
	MaxBounces int `json:"maxBounces"` // Recursion depth of bounce accumulation
}

// DefaultRenderConfig returns the window size and depth the viewer starts with
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Width:      800,
		Height:     600,
		MaxBounces: 2,
	}
}

// NewDefaultSphere returns the sphere added by the editor: white, unit radius, at the origin
func NewDefaultSphere() geometry.Sphere {
	return geometry.NewSphere(core.NewVec3(0, 0, 0), 1, core.NewVec3(1, 1, 1))
}

// AddSphere appends a sphere and returns its index
func (s *Scene) AddSphere(sphere geometry.Sphere) int {
	s.Shapes = append(s.Shapes, geometry.NewSphereShape(sphere))
	return len(s.Shapes) - 1
}

// RemoveSphere deletes the shape at index i, preserving the order of the rest
func (s *Scene) RemoveSphere(i int) error {
	if i < 0 || i >= len(s.Shapes) {
		return fmt.Errorf("remove sphere %d: index out of range [0,%d)", i, len(s.Shapes))
	}
	s.Shapes = append(s.Shapes[:i], s.Shapes[i+1:]...)
	return nil
}

// GetPrimitiveCount returns the number of shapes in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Shapes)
}

// Clone returns a deep copy that can be edited without affecting s
func (s *Scene) Clone() *Scene {
	c := *s
	c.Shapes = append([]geometry.Shape(nil), s.Shapes...)
	return &c
}

// Validate reports every problem that would make the scene render incorrectly
func (s *Scene) Validate() error {
	var problems []error

	if s.Config.Width <= 0 || s.Config.Height <= 0 {
		problems = append(problems, fmt.Errorf("image size %dx%d must be positive", s.Config.Width, s.Config.Height))
	}
	if s.Config.MaxBounces < 0 {
		problems = append(problems, fmt.Errorf("max bounces %d must not be negative", s.Config.MaxBounces))
	}
	if s.Light.Ambient < 0 {
		problems = append(problems, fmt.Errorf("ambient %g must not be negative", s.Light.Ambient))
	}

	for i, shape := range s.Shapes {
		switch shape.Kind {
		case geometry.KindSphere:
			if !(shape.Sphere.Radius > 0) {
				problems = append(problems, fmt.Errorf("sphere %d: radius %g must be positive", i, shape.Sphere.Radius))
			}
			if !shape.Sphere.Center.IsFinite() {
				problems = append(problems, fmt.Errorf("sphere %d: center %v is not finite", i, shape.Sphere.Center))
			}
			albedo := shape.Albedo()
			if albedo.Clamp(0, 1) != albedo {
				problems = append(problems, fmt.Errorf("sphere %d: albedo %v outside [0,1]", i, albedo))
			}
		default:
			problems = append(problems, fmt.Errorf("shape %d: unknown kind %v", i, shape.Kind))
		}
	}

	return errors.Join(problems...)
}
