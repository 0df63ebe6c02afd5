package renderer

import (
	"image"
	"image/color"
	"runtime"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/lights"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// Config contains parallel rendering configuration
type Config struct {
	TileSize   int // Size of each square tile in pixels
	NumWorkers int // Number of parallel workers (0 = use CPU count)
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		TileSize:   32,
		NumWorkers: 0,
	}
}

// Snapshot is everything one render pass reads. It is captured once at the
// start of the pass and never mutated, so tiles can share it without locking.
type Snapshot struct {
	Pose       geometry.Pose
	World      integrator.World
	MaxBounces int
}

// NewSnapshot captures the camera pose and a private copy of the shapes
func NewSnapshot(camera geometry.CameraTransform, shapes []geometry.Shape, light lights.PointLight, maxBounces int) Snapshot {
	return Snapshot{
		Pose: geometry.ComputePose(camera),
		World: integrator.World{
			Shapes: append([]geometry.Shape(nil), shapes...),
			Light:  light,
		},
		MaxBounces: maxBounces,
	}
}

// SnapshotOf captures the current state of a scene
func SnapshotOf(s *scene.Scene) Snapshot {
	return NewSnapshot(s.Camera, s.Shapes, s.Light, s.Config.MaxBounces)
}

// Frame is the output of one render pass
type Frame struct {
	Image   *image.RGBA
	Elapsed time.Duration
	Stats   RenderStats
}

// ElapsedSeconds returns the wall-clock render time in seconds
func (f Frame) ElapsedSeconds() float64 {
	return f.Elapsed.Seconds()
}

// FPS returns the frame rate the render time would sustain
func (f Frame) FPS() float64 {
	if f.Elapsed <= 0 {
		return 0
	}
	return 1 / f.Elapsed.Seconds()
}

// Render is the one-call entry point: it captures a snapshot from the given
// inputs and renders it in parallel. The inputs are not modified.
func Render(camera geometry.CameraTransform, shapes []geometry.Shape, light lights.PointLight, bounces, width, height int) Frame {
	snapshot := NewSnapshot(camera, shapes, light, bounces)
	return NewRaytracer(snapshot, width, height, DefaultConfig(), core.NopLogger{}).RenderPass()
}

// Raytracer renders a single snapshot
type Raytracer struct {
	snapshot   Snapshot
	width      int
	height     int
	config     Config
	integrator integrator.Integrator
	logger     core.Logger
}

// NewRaytracer creates a new raytracer
func NewRaytracer(snapshot Snapshot, width, height int, config Config, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Raytracer{
		snapshot:   snapshot,
		width:      width,
		height:     height,
		config:     config,
		integrator: integrator.NewBounceIntegrator(snapshot.MaxBounces),
		logger:     logger,
	}
}

// SetIntegrator replaces the light transport algorithm
func (rt *Raytracer) SetIntegrator(integratorInst integrator.Integrator) {
	rt.integrator = integratorInst
}

// NumWorkers returns the number of goroutines a parallel pass uses
func (rt *Raytracer) NumWorkers() int {
	if rt.config.NumWorkers <= 0 {
		return runtime.NumCPU()
	}
	return rt.config.NumWorkers
}

// PixelColor returns the unclamped color of pixel (x, y), row 0 at the top
func (rt *Raytracer) PixelColor(x, y int) (core.Vec3, bool) {
	return NewTileRenderer(rt.snapshot, rt.width, rt.height, rt.integrator).PixelColor(x, y)
}

// RenderPass renders every pixel using the worker pool and reports the wall-clock time
func (rt *Raytracer) RenderPass() Frame {
	startTime := time.Now()
	img := image.NewRGBA(image.Rect(0, 0, rt.width, rt.height))
	tiles := NewTileGrid(rt.width, rt.height, rt.tileSize())
	tileRenderer := NewTileRenderer(rt.snapshot, rt.width, rt.height, rt.integrator)

	pool := NewWorkerPool(rt.NumWorkers(), len(tiles))
	pool.Start()

	for taskID, tile := range tiles {
		pool.SubmitTask(TileTask{
			Tile:     tile,
			TaskID:   taskID,
			Renderer: tileRenderer,
			Image:    img,
		})
	}

	var stats RenderStats
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		stats.Merge(result.Stats)
	}
	pool.Stop()

	elapsed := time.Since(startTime)
	stats.Elapsed = elapsed
	rt.logger.Printf("Rendered %dx%d with %d workers in %v\n", rt.width, rt.height, pool.GetNumWorkers(), elapsed)

	return Frame{Image: img, Elapsed: elapsed, Stats: stats}
}

// RenderSequential renders every pixel on the calling goroutine
func (rt *Raytracer) RenderSequential() Frame {
	startTime := time.Now()
	img := image.NewRGBA(image.Rect(0, 0, rt.width, rt.height))
	tileRenderer := NewTileRenderer(rt.snapshot, rt.width, rt.height, rt.integrator)

	stats := tileRenderer.RenderTileBounds(img.Bounds(), img)

	elapsed := time.Since(startTime)
	stats.Elapsed = elapsed
	return Frame{Image: img, Elapsed: elapsed, Stats: stats}
}

func (rt *Raytracer) tileSize() int {
	if rt.config.TileSize <= 0 {
		return DefaultConfig().TileSize
	}
	return rt.config.TileSize
}

// vec3ToColor clamps each channel to [0,1] and truncates to 8 bits.
// clamped reports whether any channel was out of range.
func vec3ToColor(colorVec core.Vec3) (pixel color.RGBA, clamped bool) {
	clampedVec := colorVec.Clamp(0.0, 1.0)
	clamped = clampedVec != colorVec

	return color.RGBA{
		R: uint8(255 * clampedVec.X),
		G: uint8(255 * clampedVec.Y),
		B: uint8(255 * clampedVec.Z),
		A: 255,
	}, clamped
}
