package renderer

import (
	"bytes"
	"testing"

	"github.com/chewxy/math32"
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/lights"
)

// createTestShapes returns the startup scene: a small sphere in front of the
// camera resting above a large ground sphere
func createTestShapes() []geometry.Shape {
	return []geometry.Shape{
		geometry.NewSphereShape(geometry.NewSphere(core.NewVec3(0, 0, 3), 1, core.NewVec3(0.75, 0.66, 0.45))),
		geometry.NewSphereShape(geometry.NewSphere(core.NewVec3(0, -86.5, 3), 85, core.NewVec3(0, 0.45, 0.99))),
	}
}

func createTestLight() lights.PointLight {
	return lights.NewPointLight(core.NewVec3(0, 0, 0), 0.15)
}

func TestRender_CenterPixel(t *testing.T) {
	width, height := 8, 6
	frame := Render(geometry.CameraTransform{}, createTestShapes(), createTestLight(), 2, width, height)

	if frame.Image.Bounds().Dx() != width || frame.Image.Bounds().Dy() != height {
		t.Fatalf("Expected %dx%d image, got %v", width, height, frame.Image.Bounds())
	}

	// The center ray hits the small sphere head-on at (0,0,2) with the light
	// behind the camera, so diffuse is 1. The bounce ray points back at the
	// camera and escapes.
	got := frame.Image.RGBAAt(width/2, height/2)
	expected := [4]uint8{219, 193, 131, 255}
	if [4]uint8{got.R, got.G, got.B, got.A} != expected {
		t.Errorf("Expected center pixel %v, got %v", expected, got)
	}
}

func TestRaytracer_PixelColor(t *testing.T) {
	snapshot := NewSnapshot(geometry.CameraTransform{}, createTestShapes(), createTestLight(), 2)
	rt := NewRaytracer(snapshot, 8, 6, DefaultConfig(), nil)

	color, hit := rt.PixelColor(4, 3)
	if !hit {
		t.Fatal("Expected center pixel to hit")
	}
	expected := core.NewVec3(0.75, 0.66, 0.45).Multiply(1.15)
	if math32.Abs(color.X-expected.X) > 1e-5 || math32.Abs(color.Y-expected.Y) > 1e-5 || math32.Abs(color.Z-expected.Z) > 1e-5 {
		t.Errorf("Expected %v, got %v", expected, color)
	}

	// A sphere behind the camera is never visible
	behind := []geometry.Shape{
		geometry.NewSphereShape(geometry.NewSphere(core.NewVec3(0, 0, -3), 1, core.NewVec3(1, 1, 1))),
	}
	rt = NewRaytracer(NewSnapshot(geometry.CameraTransform{}, behind, createTestLight(), 2), 8, 6, DefaultConfig(), nil)
	if color, hit := rt.PixelColor(4, 3); hit || color != (core.Vec3{}) {
		t.Errorf("Expected a black miss, got %v (hit=%v)", color, hit)
	}
}

func TestRaytracer_ParallelMatchesSequential(t *testing.T) {
	shapes := append(createTestShapes(),
		geometry.NewSphereShape(geometry.NewSphere(core.NewVec3(-1.5, 0.5, 4), 0.6, core.NewVec3(0.9, 0.1, 0.1))),
		geometry.NewSphereShape(geometry.NewSphere(core.NewVec3(1.8, -0.3, 5), 0.9, core.NewVec3(0.2, 0.8, 0.3))),
	)
	camera := geometry.CameraTransform{RotX: 0.1, RotY: -0.2, TransY: 0.3}
	light := lights.NewPointLight(core.NewVec3(2, 3, 0), 0.2)
	snapshot := NewSnapshot(camera, shapes, light, 3)

	tests := []struct {
		name   string
		config Config
	}{
		{"default", DefaultConfig()},
		{"single worker", Config{TileSize: 16, NumWorkers: 1}},
		{"uneven tiles", Config{TileSize: 7, NumWorkers: 4}},
	}

	rt := NewRaytracer(snapshot, 61, 47, DefaultConfig(), nil)
	sequential := rt.RenderSequential()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parallel := NewRaytracer(snapshot, 61, 47, tt.config, nil).RenderPass()

			if !bytes.Equal(parallel.Image.Pix, sequential.Image.Pix) {
				t.Error("Parallel render differs from sequential render")
			}
			if parallel.Stats.TotalPixels != sequential.Stats.TotalPixels ||
				parallel.Stats.HitPixels != sequential.Stats.HitPixels ||
				parallel.Stats.ClampedPixels != sequential.Stats.ClampedPixels {
				t.Errorf("Stats differ: parallel %+v, sequential %+v", parallel.Stats, sequential.Stats)
			}
		})
	}
}

func TestRender_Deterministic(t *testing.T) {
	shapes := createTestShapes()
	first := Render(geometry.CameraTransform{RotY: 0.4}, shapes, createTestLight(), 2, 40, 30)
	second := Render(geometry.CameraTransform{RotY: 0.4}, shapes, createTestLight(), 2, 40, 30)

	if !bytes.Equal(first.Image.Pix, second.Image.Pix) {
		t.Error("Expected identical output for identical input")
	}
}

func TestRender_DoesNotMutateShapes(t *testing.T) {
	shapes := createTestShapes()
	before := append([]geometry.Shape(nil), shapes...)

	Render(geometry.CameraTransform{}, shapes, createTestLight(), 2, 16, 12)

	for i := range shapes {
		if shapes[i] != before[i] {
			t.Errorf("Shape %d was modified: %+v -> %+v", i, before[i], shapes[i])
		}
	}
}

func TestNewSnapshot_CopiesShapes(t *testing.T) {
	shapes := createTestShapes()
	snapshot := NewSnapshot(geometry.CameraTransform{}, shapes, createTestLight(), 2)

	shapes[0].Sphere.Radius = 10
	if snapshot.World.Shapes[0].Sphere.Radius != 1 {
		t.Error("Snapshot should not observe edits made to the scene after capture")
	}
}

func TestRender_ZeroBouncesIsBlack(t *testing.T) {
	frame := Render(geometry.CameraTransform{}, createTestShapes(), createTestLight(), 0, 10, 10)

	for i := 0; i < len(frame.Image.Pix); i += 4 {
		p := frame.Image.Pix[i : i+4]
		if p[0] != 0 || p[1] != 0 || p[2] != 0 || p[3] != 255 {
			t.Fatalf("Expected opaque black at byte %d, got %v", i, p)
		}
	}
	if frame.Stats.HitPixels != 0 {
		t.Errorf("Expected no hit pixels, got %d", frame.Stats.HitPixels)
	}
}

func TestVec3ToColor(t *testing.T) {
	tests := []struct {
		name        string
		input       core.Vec3
		expected    [3]uint8
		wantClamped bool
	}{
		{"black", core.NewVec3(0, 0, 0), [3]uint8{0, 0, 0}, false},
		{"white", core.NewVec3(1, 1, 1), [3]uint8{255, 255, 255}, false},
		{"truncates", core.NewVec3(0.5, 0.999, 0.002), [3]uint8{127, 254, 0}, false},
		{"overflow", core.NewVec3(1.95, 0.5, 0), [3]uint8{255, 127, 0}, true},
		{"negative", core.NewVec3(-0.2, 0, 0), [3]uint8{0, 0, 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pixel, clamped := vec3ToColor(tt.input)
			if [3]uint8{pixel.R, pixel.G, pixel.B} != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, pixel)
			}
			if pixel.A != 255 {
				t.Errorf("Expected opaque alpha, got %d", pixel.A)
			}
			if clamped != tt.wantClamped {
				t.Errorf("Expected clamped=%v, got %v", tt.wantClamped, clamped)
			}
		})
	}
}

func TestFrame_Timing(t *testing.T) {
	frame := Frame{Elapsed: 250_000_000}
	if frame.ElapsedSeconds() != 0.25 {
		t.Errorf("Expected 0.25s, got %f", frame.ElapsedSeconds())
	}
	if frame.FPS() != 4 {
		t.Errorf("Expected 4 fps, got %f", frame.FPS())
	}
	if (Frame{}).FPS() != 0 {
		t.Error("Expected zero fps for zero elapsed time")
	}
}
