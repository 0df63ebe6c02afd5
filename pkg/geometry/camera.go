package geometry

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// ViewportDepth is the camera-space z of the virtual viewport plane
const ViewportDepth = 5.0

// CameraTransform holds the raw camera controls: three rotation angles in
// radians and a translation. It is owned by the host and read once per pass.
type CameraTransform struct {
	RotX   float32 `json:"rotX"`
	RotY   float32 `json:"rotY"`
	RotZ   float32 `json:"rotZ"`
	TransX float32 `json:"transX"`
	TransY float32 `json:"transY"`
	TransZ float32 `json:"transZ"`
}

// Pose is the camera position and orientation derived from a CameraTransform
type Pose struct {
	Position    core.Vec3
	Orientation mgl32.Mat3
}

// ComputePose composes the orientation as Rx * Ry * Rz (right-handed).
// The position is the translation itself; nothing carries over between frames.
func ComputePose(t CameraTransform) Pose {
	orientation := mgl32.Rotate3DX(t.RotX).
		Mul3(mgl32.Rotate3DY(t.RotY)).
		Mul3(mgl32.Rotate3DZ(t.RotZ))

	return Pose{
		Position:    core.NewVec3(t.TransX, t.TransY, t.TransZ),
		Orientation: orientation,
	}
}

// Transform maps a camera-space point to world space
func (p Pose) Transform(v core.Vec3) core.Vec3 {
	r := p.Orientation.Mul3x1(mgl32.Vec3{v.X, v.Y, v.Z})
	return core.NewVec3(r[0], r[1], r[2]).Add(p.Position)
}

// ViewportPoint maps a linear pixel index to its camera-space point on the viewport.
// x and y are normalized to [-1, 1), x is stretched by the aspect ratio and y is
// flipped so row 0 is the top of the image.
func ViewportPoint(i, width, height int) core.Vec3 {
	x := float32(i % width)
	y := float32(i / width)

	nx := x/(float32(width)/2) - 1
	ny := y/(float32(height)/2) - 1

	nx *= float32(width) / float32(height)
	ny = -ny

	return core.NewVec3(nx, ny, ViewportDepth)
}

// PrimaryRay builds the camera ray through the pixel with linear index i
func (p Pose) PrimaryRay(i, width, height int) core.Ray {
	worldPoint := p.Transform(ViewportPoint(i, width, height))
	return core.NewRay(p.Position, worldPoint.Subtract(p.Position))
}

// Forward returns the world-space direction of the image center
func (p Pose) Forward() core.Vec3 {
	return p.Transform(core.NewVec3(0, 0, ViewportDepth)).Subtract(p.Position).Normalize()
}
