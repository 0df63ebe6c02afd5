package lights

import (
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

func TestPointLight_DirectionTo(t *testing.T) {
	tests := []struct {
		name     string
		light    PointLight
		point    core.Vec3
		expected core.Vec3
	}{
		{"along +z", NewPointLight(core.NewVec3(0, 0, 0), 0.3), core.NewVec3(0, 0, 3), core.NewVec3(0, 0, 1)},
		{"along -y", NewPointLight(core.NewVec3(0, 10, 0), 0), core.NewVec3(0, 2, 0), core.NewVec3(0, -1, 0)},
		{"coincident", NewPointLight(core.NewVec3(1, 1, 1), 0), core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.light.DirectionTo(tt.point)
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
