package geometry

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/lights"
)

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point           core.Vec3 // Point of intersection
	DistanceSquared float32   // |Point - ray origin|^2, comparable only between hits of one ray
	Normal          core.Vec3 // Outward normal, not normalized
	Shape           *Shape    // The shape that was hit
	Index           int       // Position of Shape in the scene, set by the caster
}

// ShapeKind tags the variant held by a Shape
type ShapeKind uint8

const (
	KindSphere ShapeKind = iota
)

func (k ShapeKind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	default:
		return "unknown"
	}
}

// Shape is the closed set of primitives a scene can hold.
// Only spheres exist today; new kinds extend the switch statements below.
type Shape struct {
	Kind   ShapeKind `json:"kind"`
	Sphere Sphere    `json:"sphere"`
}

// NewSphereShape wraps a sphere as a scene shape
func NewSphereShape(s Sphere) Shape {
	return Shape{Kind: KindSphere, Sphere: s}
}

// Intersect tests the ray against the underlying primitive
func (s *Shape) Intersect(ray core.Ray) (HitRecord, bool) {
	var hit HitRecord
	var ok bool
	switch s.Kind {
	case KindSphere:
		hit, ok = s.Sphere.Intersect(ray)
	}
	if ok {
		hit.Shape = s
	}
	return hit, ok
}

// Shade computes the direct lighting at a hit on this shape
func (s *Shape) Shade(hit HitRecord, light lights.PointLight) core.Vec3 {
	switch s.Kind {
	case KindSphere:
		return s.Sphere.Material.Shade(hit.Point, hit.Normal, light)
	default:
		return core.Vec3{}
	}
}

// Albedo returns the base color of the shape's surface
func (s *Shape) Albedo() core.Vec3 {
	switch s.Kind {
	case KindSphere:
		return s.Sphere.Material.Albedo
	default:
		return core.Vec3{}
	}
}
