package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/klauspost/compress/gzhttp"

	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// Parameter limits shared by the render, inspect and scene-config endpoints
const (
	minImageSize = 16
	maxImageSize = 2000
	maxBounces   = 16
	maxAmbient   = 1.0
	maxRotation  = 6.2832
	maxPosition  = 1000.0
)

// Server handles web requests for the sphere raytracer
type Server struct {
	config Config
	mux    *http.ServeMux
}

// NewServer creates a new web server and registers its routes
func NewServer(config Config) *Server {
	defaults := DefaultConfig()
	if config.TileSize <= 0 {
		config.TileSize = defaults.TileSize
	}
	if config.MaxPasses <= 0 {
		config.MaxPasses = defaults.MaxPasses
	}
	if config.MaxPixels <= 0 {
		config.MaxPixels = defaults.MaxPixels
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaults.PingInterval
	}
	if config.MaxMessageBytes <= 0 {
		config.MaxMessageBytes = defaults.MaxMessageBytes
	}

	s := &Server{config: config, mux: http.NewServeMux()}
	s.routes()
	return s
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene     string          `json:"scene"`     // Scene ID (e.g., "default")
	Width     int             `json:"width"`     // Image width
	Height    int             `json:"height"`    // Image height
	MaxPasses int             `json:"maxPasses"` // Maximum number of progressive passes
	View      scene.ViewState `json:"view"`      // Camera, light and bounce overrides
	sceneObj  *scene.Scene    // Scene built while parsing, with the view applied
}

func (s *Server) routes() {
	// Serve static files
	s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))

	// API endpoints
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/live", s.handleLive)
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// JSON responses are compressed; SSE and websocket streams are not
	s.mux.Handle("/api/scenes", gzhttp.GzipHandler(http.HandlerFunc(s.handleScenes)))
	s.mux.Handle("/api/scene-config", gzhttp.GzipHandler(http.HandlerFunc(s.handleSceneConfig)))
	s.mux.Handle("/api/inspect", gzhttp.GzipHandler(http.HandlerFunc(s.handleInspect)))
}

// Handler returns the server's request router
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes grouped by category
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	writeJSON(w, http.StatusOK, scene.ListAllScenes())
}

// handleSceneConfig returns the default view of a scene together with parameter limits
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	sceneName := r.URL.Query().Get("scene")
	sceneObj, err := scene.NewScene(sceneName)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	response := map[string]interface{}{
		"scene":    sceneName,
		"defaults": sceneObj.View(),
		"shapes":   sceneObj.Shapes,
		"limits": map[string]interface{}{
			"width":     map[string]int{"min": minImageSize, "max": maxImageSize},
			"height":    map[string]int{"min": minImageSize, "max": maxImageSize},
			"bounces":   map[string]int{"min": 0, "max": maxBounces},
			"maxPasses": map[string]int{"min": 1, "max": s.config.MaxPasses},
			"ambient":   map[string]float64{"min": 0, "max": maxAmbient},
			"rotation":  map[string]float64{"min": -maxRotation, "max": maxRotation},
			"position":  map[string]float64{"min": -maxPosition, "max": maxPosition},
		},
	}

	writeJSON(w, http.StatusOK, response)
}

// parseCommonSceneParams builds the requested scene and applies the camera,
// light and size overrides from the query string on top of its defaults
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	values := r.URL.Query()

	req.Scene = values.Get("scene")
	if req.Scene == "" {
		req.Scene = "default"
	}
	sceneObj, err := scene.NewScene(req.Scene)
	if err != nil {
		return err
	}

	view := sceneObj.View()
	if view.Width, err = parseIntParam(values, "width", view.Width, minImageSize, maxImageSize); err != nil {
		return err
	}
	if view.Height, err = parseIntParam(values, "height", view.Height, minImageSize, maxImageSize); err != nil {
		return err
	}
	if view.MaxBounces, err = parseIntParam(values, "bounces", view.MaxBounces, 0, maxBounces); err != nil {
		return err
	}

	floats := []struct {
		key    string
		target *float32
		limit  float64
	}{
		{"rotX", &view.Camera.RotX, maxRotation},
		{"rotY", &view.Camera.RotY, maxRotation},
		{"rotZ", &view.Camera.RotZ, maxRotation},
		{"transX", &view.Camera.TransX, maxPosition},
		{"transY", &view.Camera.TransY, maxPosition},
		{"transZ", &view.Camera.TransZ, maxPosition},
		{"lightX", &view.Light.Position.X, maxPosition},
		{"lightY", &view.Light.Position.Y, maxPosition},
		{"lightZ", &view.Light.Position.Z, maxPosition},
	}
	for _, f := range floats {
		parsed, err := parseFloatParam(values, f.key, float64(*f.target), -f.limit, f.limit)
		if err != nil {
			return err
		}
		*f.target = float32(parsed)
	}

	ambient, err := parseFloatParam(values, "ambient", float64(view.Light.Ambient), 0, maxAmbient)
	if err != nil {
		return err
	}
	view.Light.Ambient = float32(ambient)

	if err := s.checkViewLimits(view); err != nil {
		return err
	}
	sceneObj.ApplyView(view)
	req.Width, req.Height = view.Width, view.Height
	req.View = view
	req.sceneObj = sceneObj
	return nil
}

// checkViewLimits applies the request limits to a complete view. The query
// and websocket paths both go through it before a view reaches the renderer.
func (s *Server) checkViewLimits(v scene.ViewState) error {
	var problems []error

	if v.Width < minImageSize || v.Width > maxImageSize || v.Height < minImageSize || v.Height > maxImageSize {
		problems = append(problems, fmt.Errorf("image size %dx%d must be between %d and %d", v.Width, v.Height, minImageSize, maxImageSize))
	} else if v.Width*v.Height > s.config.MaxPixels {
		problems = append(problems, fmt.Errorf("image %dx%d exceeds %d pixels", v.Width, v.Height, s.config.MaxPixels))
	}
	if v.MaxBounces < 0 || v.MaxBounces > maxBounces {
		problems = append(problems, fmt.Errorf("bounces must be between 0 and %d, got: %d", maxBounces, v.MaxBounces))
	}
	if !inRange(v.Light.Ambient, 0, maxAmbient) {
		problems = append(problems, fmt.Errorf("ambient must be between 0 and %g, got: %g", maxAmbient, v.Light.Ambient))
	}

	bounded := []struct {
		name  string
		value float32
		limit float32
	}{
		{"rotX", v.Camera.RotX, maxRotation},
		{"rotY", v.Camera.RotY, maxRotation},
		{"rotZ", v.Camera.RotZ, maxRotation},
		{"transX", v.Camera.TransX, maxPosition},
		{"transY", v.Camera.TransY, maxPosition},
		{"transZ", v.Camera.TransZ, maxPosition},
		{"lightX", v.Light.Position.X, maxPosition},
		{"lightY", v.Light.Position.Y, maxPosition},
		{"lightZ", v.Light.Position.Z, maxPosition},
	}
	for _, b := range bounded {
		if !inRange(b.value, -b.limit, b.limit) {
			problems = append(problems, fmt.Errorf("%s must be between %g and %g, got: %g", b.name, -b.limit, b.limit, b.value))
		}
	}

	return errors.Join(problems...)
}

// checkSphereLimits bounds a client-supplied sphere to the same space as the camera
func checkSphereLimits(sp geometry.Sphere) error {
	c := sp.Center
	if !inRange(c.X, -maxPosition, maxPosition) || !inRange(c.Y, -maxPosition, maxPosition) || !inRange(c.Z, -maxPosition, maxPosition) {
		return fmt.Errorf("sphere center %v must be within %g of the origin on each axis", c, maxPosition)
	}
	if !inRange(sp.Radius, 0, maxPosition) {
		return fmt.Errorf("sphere radius must be at most %g, got: %g", maxPosition, sp.Radius)
	}
	return nil
}

// inRange is false for NaN
func inRange(v, min, max float32) bool {
	return v >= min && v <= max
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// requestStatus maps a parameter error to an HTTP status
func requestStatus(err error) int {
	if errors.Is(err, scene.ErrUnknownScene) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// imageToPNG encodes an image as PNG
func imageToPNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	data, err := imageToPNG(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}
