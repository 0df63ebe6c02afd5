package material

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/lights"
)

// Lambertian is a diffuse surface lit by a single point light plus ambient fill
type Lambertian struct {
	Albedo core.Vec3 `json:"albedo"` // Base color in [0,1]^3
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Vec3) Lambertian {
	return Lambertian{Albedo: albedo}
}

// Shade returns the direct color at point for a surface with the given (unnormalized) normal.
// The result is albedo * (diffuse + ambient) and is not clamped.
func (l Lambertian) Shade(point, normal core.Vec3, light lights.PointLight) core.Vec3 {
	return l.Albedo.Multiply(Diffuse(point, normal, light) + light.Ambient)
}

// Diffuse returns the Lambert cosine term max(n · -lightDir, 0)
func Diffuse(point, normal core.Vec3, light lights.PointLight) float32 {
	n := normal.Normalize()
	lightDir := light.DirectionTo(point)
	return math32.Max(n.Dot(lightDir.Negate()), 0)
}
