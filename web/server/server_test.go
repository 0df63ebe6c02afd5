package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/klauspost/compress/gzip"

	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

func newTestServer() *Server {
	config := DefaultConfig()
	config.NumWorkers = 2
	config.TileSize = 8
	return NewServer(config)
}

func serve(s *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := serve(newTestServer(), "/api/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body)
	}
}

func TestHandleScenes(t *testing.T) {
	rec := serve(newTestServer(), "/api/scenes")

	var response scene.ScenesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(response.Groups) == 0 {
		t.Fatal("Expected at least one scene group")
	}

	ids := map[string]bool{}
	for _, g := range response.Groups {
		for _, info := range g.Scenes {
			ids[info.ID] = true
		}
	}
	for _, id := range []string{"default", "sphere-grid"} {
		if !ids[id] {
			t.Errorf("Expected scene %q in listing", id)
		}
	}
}

func TestHandleSceneConfig(t *testing.T) {
	s := newTestServer()

	rec := serve(s, "/api/scene-config?scene=default")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var body struct {
		Defaults scene.ViewState        `json:"defaults"`
		Limits   map[string]interface{} `json:"limits"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Defaults.Width != 800 || body.Defaults.MaxBounces != 2 || body.Defaults.Light.Ambient != 0.15 {
		t.Errorf("Unexpected defaults %+v", body.Defaults)
	}
	if _, ok := body.Limits["bounces"]; !ok {
		t.Error("Expected bounces limit")
	}

	rec = serve(s, "/api/scene-config?scene=nope")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown scene, got %d", rec.Code)
	}
}

func TestJSONEndpointsAreCompressed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/scene-config?scene=sphere-grid", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Expected gzip response, got headers %v", rec.Header())
	}

	reader, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read gzip body: %v", err)
	}
	if !json.Valid(data) {
		t.Errorf("Expected JSON body, got %q", data)
	}
}

func TestParseCommonSceneParams(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name    string
		query   string
		wantErr bool
		check   func(t *testing.T, req *RenderRequest)
	}{
		{
			name:  "defaults",
			query: "",
			check: func(t *testing.T, req *RenderRequest) {
				if req.Scene != "default" || req.Width != 800 || req.Height != 600 || req.View.MaxBounces != 2 {
					t.Errorf("Unexpected defaults %+v", req)
				}
			},
		},
		{
			name:  "overrides",
			query: "scene=primaries&width=64&height=48&bounces=5&rotY=0.5&transZ=-2&lightX=3&ambient=0.4",
			check: func(t *testing.T, req *RenderRequest) {
				v := req.sceneObj.View()
				if v.Width != 64 || v.Height != 48 || v.MaxBounces != 5 {
					t.Errorf("Size/bounces not applied: %+v", v)
				}
				if v.Camera.RotY != 0.5 || v.Camera.TransZ != -2 || v.Light.Position.X != 3 {
					t.Errorf("Camera/light not applied: %+v", v)
				}
				if math32.Abs(v.Light.Ambient-0.4) > 1e-6 {
					t.Errorf("Ambient not applied: %v", v.Light.Ambient)
				}
			},
		},
		{name: "unknown scene", query: "scene=cornell-box", wantErr: true},
		{name: "width too small", query: "width=4", wantErr: true},
		{name: "bad float", query: "rotX=abc", wantErr: true},
		{name: "negative bounces", query: "bounces=-1", wantErr: true},
		{name: "ambient out of range", query: "ambient=2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/render?"+tt.query, nil)
			req := &RenderRequest{}
			err := s.parseCommonSceneParams(r, req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCommonSceneParams() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, req)
			}
		})
	}
}

func TestParseIntParam(t *testing.T) {
	values := url.Values{"n": {"12"}, "bad": {"x"}}

	if got, err := parseIntParam(values, "n", 1, 0, 20); err != nil || got != 12 {
		t.Errorf("Expected 12, got %d (%v)", got, err)
	}
	if got, err := parseIntParam(values, "missing", 7, 0, 20); err != nil || got != 7 {
		t.Errorf("Expected default 7, got %d (%v)", got, err)
	}
	if _, err := parseIntParam(values, "n", 1, 0, 10); err == nil {
		t.Error("Expected range error")
	}
	if _, err := parseIntParam(values, "bad", 1, 0, 10); err == nil {
		t.Error("Expected parse error")
	}
}

func TestHandleInspect(t *testing.T) {
	s := newTestServer()

	rec := serve(s, "/api/inspect?scene=default&width=80&height=60&x=40&y=30")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var response InspectResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !response.Hit || response.Index != 0 || response.GeometryType != "sphere" {
		t.Fatalf("Expected hit on sphere 0, got %+v", response)
	}

	near := func(a, b float32) bool { return math32.Abs(a-b) < 1e-4 }
	if !near(response.Point[2], 2) || !near(response.Normal[2], -1) || !near(response.Distance, 2) {
		t.Errorf("Unexpected hit geometry %+v", response)
	}
	if !near(response.Direct[0], 0.8625) || !near(response.PixelColor[0], 0.8625) {
		t.Errorf("Unexpected shading direct=%v pixel=%v", response.Direct, response.PixelColor)
	}
}

func TestHandleInspect_Errors(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing x", "/api/inspect?width=80&height=60&y=3", http.StatusBadRequest},
		{"out of bounds", "/api/inspect?width=80&height=60&x=80&y=3", http.StatusBadRequest},
		{"unknown scene", "/api/inspect?scene=nope&x=1&y=1", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(s, tt.target); rec.Code != tt.status {
				t.Errorf("Expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestHandleRender_StreamsPasses(t *testing.T) {
	rec := serve(newTestServer(), "/api/render?width=32&height=24&bounces=2&maxPasses=4")

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected SSE content type, got %q", ct)
	}

	body := rec.Body.String()
	if n := strings.Count(body, "event: passComplete\n"); n != 2 {
		t.Errorf("Expected 2 passComplete events for 2 bounces, got %d", n)
	}
	if !strings.Contains(body, "event: tile\n") {
		t.Error("Expected tile events")
	}
	if !strings.Contains(body, "event: complete\ndata: Rendering completed\n\n") {
		t.Error("Expected a completion event")
	}

	// The last pass carries the full bounce count
	var last PassUpdate
	for _, block := range strings.Split(body, "\n\n") {
		if strings.HasPrefix(block, "event: passComplete\n") {
			data := strings.TrimPrefix(block, "event: passComplete\ndata: ")
			if err := json.Unmarshal([]byte(data), &last); err != nil {
				t.Fatalf("decode pass update: %v", err)
			}
		}
	}
	if !last.IsLast || last.Bounces != 2 || last.TotalPixels != 32*24 || last.ImageData == "" {
		t.Errorf("Unexpected final pass %+v", last)
	}
}

func TestHandleRender_SendsCompleteAndCloses(t *testing.T) {
	srv := httptest.NewServer(newTestServer().Handler())
	defer srv.Close()

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(srv.URL + "/api/render?width=16&height=16&bounces=2&maxPasses=2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	// ReadAll only returns once the handler has finished the stream
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Stream did not finish: %v", err)
	}
	body := string(data)
	if n := strings.Count(body, "event: passComplete\n"); n != 2 {
		t.Errorf("Expected 2 passComplete events, got %d", n)
	}
	if !strings.Contains(body, "event: complete\n") {
		t.Errorf("Expected a completion event, got %q", body)
	}
}

func TestCheckViewLimits(t *testing.T) {
	s := newTestServer()
	valid := scene.NewDefaultScene().View()

	tests := []struct {
		name    string
		edit    func(v *scene.ViewState)
		wantErr bool
	}{
		{"default view", func(v *scene.ViewState) {}, false},
		{"max bounces", func(v *scene.ViewState) { v.MaxBounces = maxBounces }, false},
		{"too many bounces", func(v *scene.ViewState) { v.MaxBounces = maxBounces + 1 }, true},
		{"huge bounces", func(v *scene.ViewState) { v.MaxBounces = 1 << 30 }, true},
		{"negative bounces", func(v *scene.ViewState) { v.MaxBounces = -1 }, true},
		{"ambient above max", func(v *scene.ViewState) { v.Light.Ambient = 1e6 }, true},
		{"ambient NaN", func(v *scene.ViewState) { v.Light.Ambient = math32.NaN() }, true},
		{"rotation out of range", func(v *scene.ViewState) { v.Camera.RotY = 100 }, true},
		{"camera too far", func(v *scene.ViewState) { v.Camera.TransZ = -5000 }, true},
		{"light too far", func(v *scene.ViewState) { v.Light.Position.X = 1e9 }, true},
		{"image too small", func(v *scene.ViewState) { v.Height = minImageSize - 1 }, true},
		{"image too large", func(v *scene.ViewState) { v.Width = maxImageSize + 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := valid
			tt.edit(&v)
			if err := s.checkViewLimits(v); (err != nil) != tt.wantErr {
				t.Errorf("checkViewLimits() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHandleRender_InvalidRequest(t *testing.T) {
	rec := serve(newTestServer(), "/api/render?width=5")

	body := rec.Body.String()
	if !strings.Contains(body, "event: error\n") {
		t.Errorf("Expected error event, got %q", body)
	}
	if strings.Contains(body, "event: passComplete") {
		t.Error("Expected no render for an invalid request")
	}
}
