package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/chewxy/math32"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	Index        int                    `json:"index"` // Position of the hit shape in the scene
	GeometryType string                 `json:"geometryType"`
	MaterialType string                 `json:"materialType"`
	Point        [3]float32             `json:"point"`
	Normal       [3]float32             `json:"normal"` // Unit length
	Distance     float32                `json:"distance"`
	Direct       [3]float32             `json:"direct"`     // Shading of this hit alone
	PixelColor   [3]float32             `json:"pixelColor"` // Unclamped sum over all bounces
	Properties   map[string]interface{} `json:"properties"`
}

// InspectResult contains the primary hit for one pixel
type InspectResult struct {
	Hit        bool
	HitRecord  geometry.HitRecord
	Direct     core.Vec3
	PixelColor core.Vec3
}

// inspectPixel casts the primary ray through a pixel and returns the nearest hit
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) InspectResult {
	snapshot := renderer.SnapshotOf(sceneObj)
	ray := snapshot.Pose.PrimaryRay(pixelY*width+pixelX, width, height)

	hit, isHit := integrator.Cast(snapshot.World.Shapes, ray)
	if !isHit {
		return InspectResult{Hit: false}
	}

	pixelColor, _ := integrator.CastWithBounces(ray, snapshot.World.Shapes, snapshot.World.Light, snapshot.MaxBounces)

	return InspectResult{
		Hit:        true,
		HitRecord:  hit,
		Direct:     hit.Shape.Shade(hit, snapshot.World.Light),
		PixelColor: pixelColor,
	}
}

// extractShapeInfo describes the geometry and material of a shape
func extractShapeInfo(shape *geometry.Shape) (string, string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch shape.Kind {
	case geometry.KindSphere:
		sphere := shape.Sphere
		albedo := sphere.Material.Albedo
		properties["center"] = vecArray(sphere.Center)
		properties["radius"] = sphere.Radius
		properties["albedo"] = vecArray(albedo)
		properties["color"] = hexColor(albedo)
		return shape.Kind.String(), "lambertian", properties
	default:
		return "unknown", "unknown", properties
	}
}

func vecArray(v core.Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	inspectReq := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, inspectReq); err != nil {
		writeJSON(w, requestStatus(err), map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}

	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}

	if pixelX < 0 || pixelX >= inspectReq.Width || pixelY < 0 || pixelY >= inspectReq.Height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	result := inspectPixel(inspectReq.sceneObj, inspectReq.Width, inspectReq.Height, pixelX, pixelY)
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false, Index: -1})
		return
	}

	hit := result.HitRecord
	geometryType, materialType, properties := extractShapeInfo(hit.Shape)

	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		Index:        hit.Index,
		GeometryType: geometryType,
		MaterialType: materialType,
		Point:        vecArray(hit.Point),
		Normal:       vecArray(hit.Normal.Normalize()),
		Distance:     math32.Sqrt(hit.DistanceSquared),
		Direct:       vecArray(result.Direct),
		PixelColor:   vecArray(result.PixelColor),
		Properties:   properties,
	})
}
