package lights

import "github.com/df07/go-sphere-raytracer/pkg/core"

// PointLight is the scene's single light: a position plus a flat ambient term.
// There is no falloff with distance and no shadowing.
type PointLight struct {
	Position core.Vec3 `json:"position"`
	Ambient  float32   `json:"ambient"`
}

// NewPointLight creates a point light at position with the given ambient term
func NewPointLight(position core.Vec3, ambient float32) PointLight {
	return PointLight{Position: position, Ambient: ambient}
}

// DirectionTo returns the unit direction FROM the light TO point
func (l PointLight) DirectionTo(point core.Vec3) core.Vec3 {
	return point.Subtract(l.Position).Normalize()
}
