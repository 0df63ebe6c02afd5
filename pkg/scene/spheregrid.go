package scene

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/lights"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float32) core.Vec3 {
	hRad := h * math32.Pi / 180.0

	// OKLCH -> OKLAB
	a := c * math32.Cos(hRad)
	b := c * math32.Sin(hRad)

	// OKLAB -> LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS -> linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.NewVec3(r, g, blue).Clamp(0, 1)
}

// NewSphereGridScene creates a grid of rainbow-colored spheres on a ground sphere,
// viewed from slightly above
func NewSphereGridScene() *Scene {
	s := &Scene{
		Camera: geometry.CameraTransform{RotX: 0.25, TransY: 2.5},
		Shapes: make([]geometry.Shape, 0),
		Light:  lights.NewPointLight(core.NewVec3(6, 10, 2), 0.1),
		Config: RenderConfig{Width: 800, Height: 600, MaxBounces: 3},
	}

	groundRadius := float32(1000)
	s.AddSphere(geometry.NewSphere(core.NewVec3(0, -groundRadius, 12), groundRadius, core.NewVec3(0.5, 0.5, 0.5)))

	gridSize := 8

	// Fit the grid into a fixed footprint in front of the camera
	targetArea := float32(8.0)
	spacing := targetArea / float32(gridSize-1)
	sphereRadius := math32.Min(spacing*0.35, 0.35)

	// OKLCH parameters for color variation
	baseLightness := float32(0.65)
	minChroma := float32(0.05)
	maxChroma := float32(0.25)

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float32(i)*spacing - targetArea/2.0
			z := float32(j)*spacing + 8.0

			// Hue across X, chroma across Z
			hue := (float32(i) / float32(gridSize-1)) * 360.0
			chroma := minChroma + (float32(j)/float32(gridSize-1))*(maxChroma-minChroma)
			lightness := baseLightness + 0.1*math32.Sin(float32(i+j)*0.5)

			position := core.NewVec3(x, sphereRadius, z)
			s.AddSphere(geometry.NewSphere(position, sphereRadius, oklchToRGB(lightness, chroma, hue)))
		}
	}

	return s
}
