package integrator

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/lights"
)

// World is the read-only part of a scene an integrator needs for one pass
type World struct {
	Shapes []geometry.Shape
	Light  lights.PointLight
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor computes the color carried back along ray.
	// The bool is false when the ray contributed nothing (background).
	RayColor(ray core.Ray, world World) (core.Vec3, bool)
}

// Cast returns the hit nearest to the ray origin across all shapes.
// Every shape is tested; on equal distance the earlier shape wins.
func Cast(shapes []geometry.Shape, ray core.Ray) (geometry.HitRecord, bool) {
	var closest geometry.HitRecord
	hitAnything := false

	for i := range shapes {
		hit, isHit := shapes[i].Intersect(ray)
		if !isHit {
			continue
		}
		if !hitAnything || hit.DistanceSquared < closest.DistanceSquared {
			hit.Index = i
			closest = hit
			hitAnything = true
		}
	}

	return closest, hitAnything
}
