package scene

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/lights"
)

// NewDefaultScene creates the startup scene: one sphere in front of the
// camera resting on a large ground sphere, lit from the camera position
func NewDefaultScene() *Scene {
	s := &Scene{
		Camera: geometry.CameraTransform{},
		Shapes: make([]geometry.Shape, 0, 2),
		Light:  lights.NewPointLight(core.NewVec3(0, 0, 0), 0.15),
		Config: DefaultRenderConfig(),
	}

	s.AddSphere(geometry.NewSphere(core.NewVec3(0, 0, 3), 1, core.NewVec3(0.75, 0.66, 0.45)))

	// Ground: large enough to look flat from the camera
	s.AddSphere(geometry.NewSphere(core.NewVec3(0, -86.5, 3), 85, core.NewVec3(0, 0.45, 0.99)))

	return s
}

// NewPrimariesScene creates three overlapping spheres in red, green and blue
// above the default ground, with the light off to the upper left
func NewPrimariesScene() *Scene {
	s := &Scene{
		Camera: geometry.CameraTransform{TransY: 0.3},
		Shapes: make([]geometry.Shape, 0, 4),
		Light:  lights.NewPointLight(core.NewVec3(-4, 5, 0), 0.1),
		Config: RenderConfig{Width: 800, Height: 600, MaxBounces: 3},
	}

	s.AddSphere(geometry.NewSphere(core.NewVec3(-1.3, -0.6, 6), 0.9, core.NewVec3(0.9, 0.15, 0.1)))
	s.AddSphere(geometry.NewSphere(core.NewVec3(0, -0.4, 7), 1.1, core.NewVec3(0.15, 0.8, 0.2)))
	s.AddSphere(geometry.NewSphere(core.NewVec3(1.4, -0.7, 5.5), 0.8, core.NewVec3(0.1, 0.25, 0.9)))
	s.AddSphere(geometry.NewSphere(core.NewVec3(0, -86.5, 6), 85, core.NewVec3(0.8, 0.8, 0.8)))

	return s
}
