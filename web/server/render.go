package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// TileUpdate represents a single tile update sent via SSE
type TileUpdate struct {
	TileX       int    `json:"tileX"`
	TileY       int    `json:"tileY"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG of just this tile
	PassNumber  int    `json:"passNumber"`
	Bounces     int    `json:"bounces"`
	TileNumber  int    `json:"tileNumber"`  // Current tile number in this pass (1-based)
	TotalTiles  int    `json:"totalTiles"`  // Total number of tiles in the image
	TotalPasses int    `json:"totalPasses"` // Total number of passes planned
}

// PassUpdate is sent once per completed pass
type PassUpdate struct {
	Event          string  `json:"event"`
	PassNumber     int     `json:"passNumber"`
	TotalPasses    int     `json:"totalPasses"`
	Bounces        int     `json:"bounces"`
	ImageData      string  `json:"imageData"` // Base64 encoded PNG of the full pass
	ElapsedMs      int64   `json:"elapsedMs"` // Since the request started
	PassMs         int64   `json:"passMs"`    // Wall-clock time of this pass alone
	FPS            float64 `json:"fps"`
	TotalPixels    int     `json:"totalPixels"`
	HitPixels      int     `json:"hitPixels"`
	ClampedPixels  int     `json:"clampedPixels"`
	PrimitiveCount int     `json:"primitiveCount"`
	IsLast         bool    `json:"isLast"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "tile", "passComplete", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// RenderingPipeline contains the configured scene and raytracer
type RenderingPipeline struct {
	Scene     *scene.Scene
	Raytracer *renderer.ProgressiveRaytracer
}

// handleRender handles progressive rendering with real-time tile streaming via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Create unified SSE event channel for thread-safe writing
	sseEventChan := make(chan SSEEvent, 100)

	// Start single SSE writer goroutine; it exits once the channel is closed
	writerDone := make(chan struct{})
	go func() {
		s.writeSSEEvents(w, ctx, sseEventChan)
		close(writerDone)
	}()

	// Console forwarding stops before the event channel closes
	consoleCtx, stopConsole := context.WithCancel(ctx)
	consoleDone := make(chan struct{})
	defer func() {
		stopConsole()
		<-consoleDone
		close(sseEventChan)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		close(consoleDone)
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan, webLogger := s.setupConsoleLogging()
	go func() {
		s.streamConsoleMessages(consoleCtx, consoleChan, sseEventChan)
		close(consoleDone)
	}()

	pipeline := s.setupRenderingPipeline(req, webLogger)

	startTime := time.Now()
	renderOptions := renderer.RenderOptions{TileUpdates: true}
	passChan, tileChan, errChan := pipeline.Raytracer.RenderProgressive(ctx, renderOptions)

	s.handleRenderingEvents(ctx, sseEventChan, passChan, tileChan, errChan, pipeline, startTime)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	webLogger := NewWebLogger(NewRenderID(), consoleChan)
	return consoleChan, webLogger
}

// writeSSEEvents handles writing all SSE events in a single goroutine (thread-safe).
// It drains the channel until it is closed so queued events are not lost.
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan chan SSEEvent) {
	for event := range sseEventChan {
		if ctx.Err() != nil && event.Type != "complete" && event.Type != "error" {
			continue
		}

		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			// Client disconnected during write; keep draining
			continue
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

// streamConsoleMessages forwards logger output to the SSE channel
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	for {
		select {
		case consoleMsg := <-consoleChan:
			data, err := json.Marshal(consoleMsg)
			if err != nil {
				log.Printf("Error marshaling console message: %v", err)
				continue
			}

			select {
			case <-ctx.Done():
				return
			default:
			}

			// Non-blocking: console output is best effort
			select {
			case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
			case <-ctx.Done():
				return
			default:
			}

		case <-ctx.Done():
			return
		}
	}
}

// setupRenderingPipeline creates the progressive raytracer for the parsed scene
func (s *Server) setupRenderingPipeline(req *RenderRequest, logger core.Logger) *RenderingPipeline {
	config := renderer.ProgressiveConfig{
		TileSize:   s.config.TileSize,
		MaxPasses:  req.MaxPasses,
		NumWorkers: s.config.NumWorkers,
	}

	snapshot := renderer.SnapshotOf(req.sceneObj)
	logger.Printf("Rendering %q at %dx%d, %d spheres, %d bounces\n",
		req.Scene, req.Width, req.Height, req.sceneObj.GetPrimitiveCount(), snapshot.MaxBounces)

	return &RenderingPipeline{
		Scene:     req.sceneObj,
		Raytracer: renderer.NewProgressiveRaytracer(snapshot, req.Width, req.Height, config, logger),
	}
}

// handleRenderingEvents processes the main rendering event loop
func (s *Server) handleRenderingEvents(ctx context.Context, sseEventChan chan SSEEvent,
	passChan <-chan renderer.PassResult, tileChan <-chan renderer.TileCompletionResult, errChan <-chan error,
	pipeline *RenderingPipeline, startTime time.Time) {

renderLoop:
	for {
		select {
		case passResult, ok := <-passChan:
			if ok {
				s.handlePassComplete(ctx, sseEventChan, passResult, pipeline, startTime)
			} else {
				passChan = nil
			}

		case tileResult, ok := <-tileChan:
			if ok {
				s.handleTileUpdate(ctx, sseEventChan, tileResult)
			} else {
				tileChan = nil
			}

		case err, ok := <-errChan:
			if ok && err != nil {
				s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
				return
			}
			if !ok {
				errChan = nil
			}

		case <-ctx.Done():
			return
		}

		// Closed channels are nil; once all are, the render is over
		if passChan == nil && tileChan == nil && errChan == nil {
			break renderLoop
		}
	}

	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "Rendering completed"}:
	case <-ctx.Done():
	}
}

// handlePassComplete processes and sends pass completion events
func (s *Server) handlePassComplete(ctx context.Context, sseEventChan chan SSEEvent, passResult renderer.PassResult, pipeline *RenderingPipeline, startTime time.Time) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	imageData, err := imageToBase64PNG(passResult.Image)
	if err != nil {
		log.Printf("Error encoding pass %d: %v", passResult.PassNumber, err)
		return
	}

	frame := renderer.Frame{Elapsed: passResult.Stats.Elapsed}
	passUpdate := PassUpdate{
		Event:          "passComplete",
		PassNumber:     passResult.PassNumber,
		TotalPasses:    pipeline.Raytracer.TotalPasses(),
		Bounces:        passResult.Bounces,
		ImageData:      imageData,
		ElapsedMs:      time.Since(startTime).Milliseconds(),
		PassMs:         passResult.Stats.Elapsed.Milliseconds(),
		FPS:            frame.FPS(),
		TotalPixels:    passResult.Stats.TotalPixels,
		HitPixels:      passResult.Stats.HitPixels,
		ClampedPixels:  passResult.Stats.ClampedPixels,
		PrimitiveCount: pipeline.Scene.GetPrimitiveCount(),
		IsLast:         passResult.IsLast,
	}

	data, err := json.Marshal(passUpdate)
	if err != nil {
		log.Printf("Error marshaling pass update: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "passComplete", Data: string(data)}:
	case <-ctx.Done():
	}
}

// handleTileUpdate processes and sends tile update events
func (s *Server) handleTileUpdate(ctx context.Context, sseEventChan chan SSEEvent, tileResult renderer.TileCompletionResult) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	tileData, err := imageToBase64PNG(tileResult.TileImage)
	if err != nil {
		log.Printf("Error encoding tile image (%d, %d): %v", tileResult.TileX, tileResult.TileY, err)
		return
	}

	update := TileUpdate{
		TileX:       tileResult.TileX,
		TileY:       tileResult.TileY,
		ImageData:   tileData,
		PassNumber:  tileResult.PassNumber,
		Bounces:     tileResult.Bounces,
		TileNumber:  tileResult.TileNumber,
		TotalTiles:  tileResult.TotalTiles,
		TotalPasses: tileResult.TotalPasses,
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling tile update: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "tile", Data: string(data)}:
	case <-ctx.Done():
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}

	if err := s.parseCommonSceneParams(r, req); err != nil {
		return nil, err
	}

	var err error
	if req.MaxPasses, err = parseIntParam(r.URL.Query(), "maxPasses", s.config.MaxPasses, 1, s.config.MaxPasses); err != nil {
		return nil, err
	}

	return req, nil
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}
