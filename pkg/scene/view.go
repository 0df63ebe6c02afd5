package scene

import (
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/lights"
)

// ViewState is the per-frame input a host can change between renders:
// where the camera is, where the light is and how deep bounces go
type ViewState struct {
	Camera     geometry.CameraTransform `json:"camera"`
	Light      lights.PointLight        `json:"light"`
	MaxBounces int                      `json:"maxBounces"`
	Width      int                      `json:"width"`
	Height     int                      `json:"height"`
}

// View returns the scene's current view state
func (s *Scene) View() ViewState {
	return ViewState{
		Camera:     s.Camera,
		Light:      s.Light,
		MaxBounces: s.Config.MaxBounces,
		Width:      s.Config.Width,
		Height:     s.Config.Height,
	}
}

// ApplyView replaces the scene's camera, light and render settings.
// A zero width or height keeps the current size.
func (s *Scene) ApplyView(v ViewState) {
	s.Camera = v.Camera
	s.Light = v.Light
	s.Config.MaxBounces = v.MaxBounces
	if v.Width > 0 {
		s.Config.Width = v.Width
	}
	if v.Height > 0 {
		s.Config.Height = v.Height
	}
}
