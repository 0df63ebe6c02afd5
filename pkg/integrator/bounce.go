package integrator

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/lights"
)

// BounceOffset pushes secondary ray origins off the surface along the normal
const BounceOffset = 0.01

// BounceIntegrator sums direct shading over a fixed number of normal-direction bounces
type BounceIntegrator struct {
	MaxBounces int
}

// NewBounceIntegrator creates a bounce integrator
func NewBounceIntegrator(maxBounces int) *BounceIntegrator {
	return &BounceIntegrator{MaxBounces: maxBounces}
}

// RayColor implements Integrator
func (bi *BounceIntegrator) RayColor(ray core.Ray, world World) (core.Vec3, bool) {
	return CastWithBounces(ray, world.Shapes, world.Light, bi.MaxBounces)
}

// CastWithBounces shades the nearest hit and recurses along the surface normal.
//
// Each level adds its direct term at full strength, so results can exceed 1.
// The secondary ray starts BounceOffset above the surface and travels along the
// unnormalized normal; it is not a mirror reflection of the incoming ray.
func CastWithBounces(ray core.Ray, shapes []geometry.Shape, light lights.PointLight, bounces int) (core.Vec3, bool) {
	if bounces <= 0 {
		return core.Vec3{}, false
	}

	hit, isHit := Cast(shapes, ray)
	if !isHit {
		return core.Vec3{}, false
	}

	direct := hit.Shape.Shade(hit, light)

	secondary := SecondaryRay(hit)
	indirect, _ := CastWithBounces(secondary, shapes, light, bounces-1)

	return direct.Add(indirect), true
}

// SecondaryRay builds the bounce ray spawned at a hit
func SecondaryRay(hit geometry.HitRecord) core.Ray {
	origin := hit.Point.Add(hit.Normal.Normalize().Multiply(BounceOffset))
	return core.NewRay(origin, hit.Normal)
}
