package geometry

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3           `json:"center"`
	Radius   float32             `json:"radius"`
	Material material.Lambertian `json:"material"`
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float32, albedo core.Vec3) Sphere {
	return Sphere{
		Center:   center,
		Radius:   radius,
		Material: material.NewLambertian(albedo),
	}
}

// Intersect solves |O + tD - C|^2 = r^2 for the ray.
//
// The candidate point is chosen by facing rather than by smallest t: if the
// far root's outward normal points along the ray, the near root is used.
// A zero direction has no solution and reports a miss.
func (s *Sphere) Intersect(ray core.Ray) (HitRecord, bool) {
	o, d, c := ray.Origin, ray.Direction, s.Center

	// Center behind the origin relative to the direction
	if d.Dot(c.Subtract(o)) < 0 {
		return HitRecord{}, false
	}

	a := d.Dot(d)
	if a == 0 {
		return HitRecord{}, false
	}
	b := 2*o.Dot(d) - 2*d.Dot(c)
	cc := c.Dot(c) - 2*c.Dot(o) + o.Dot(o) - s.Radius*s.Radius

	delta := b*b - 4*a*cc
	if delta < 0 {
		return HitRecord{}, false
	}

	sqrtDelta := math32.Sqrt(delta)
	t1 := (-b + sqrtDelta) / (2 * a)
	t2 := (-b - sqrtDelta) / (2 * a)

	point := ray.At(t1)
	if point.Subtract(c).Dot(d) > 0 {
		point = ray.At(t2)
	}

	return HitRecord{
		Point:           point,
		DistanceSquared: point.Subtract(o).LengthSquared(),
		Normal:          point.Subtract(c),
	}, true
}
