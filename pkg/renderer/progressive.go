package renderer

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	TileSize   int // Size of each tile
	MaxPasses  int // Maximum number of passes; each pass deepens the bounce count
	NumWorkers int // Number of parallel workers (0 = use CPU count)
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:   32,
		MaxPasses:  4,
		NumWorkers: 0,
	}
}

// ProgressiveRaytracer renders a snapshot several times with an increasing
// bounce limit, so a cheap preview arrives first and the final pass matches
// a single full render.
type ProgressiveRaytracer struct {
	snapshot      Snapshot
	width, height int
	config        ProgressiveConfig
	tiles         []*Tile
	workerPool    *WorkerPool
	logger        core.Logger
}

// NewProgressiveRaytracer creates a new progressive raytracer
func NewProgressiveRaytracer(snapshot Snapshot, width, height int, config ProgressiveConfig, logger core.Logger) *ProgressiveRaytracer {
	if config.TileSize <= 0 {
		config.TileSize = DefaultProgressiveConfig().TileSize
	}
	if config.MaxPasses <= 0 {
		config.MaxPasses = 1
	}
	if logger == nil {
		logger = core.NopLogger{}
	}

	tiles := NewTileGrid(width, height, config.TileSize)

	return &ProgressiveRaytracer{
		snapshot:   snapshot,
		width:      width,
		height:     height,
		config:     config,
		tiles:      tiles,
		workerPool: NewWorkerPool(config.NumWorkers, len(tiles)),
		logger:     logger,
	}
}

// TotalPasses returns how many passes RenderProgressive will run
func (pr *ProgressiveRaytracer) TotalPasses() int {
	return max(1, min(pr.config.MaxPasses, pr.snapshot.MaxBounces))
}

// getBouncesForPass returns the bounce limit for a 1-based pass number.
// The first pass uses one bounce, the last uses the snapshot's full limit.
func (pr *ProgressiveRaytracer) getBouncesForPass(passNumber int) int {
	maxBounces := pr.snapshot.MaxBounces
	totalPasses := pr.TotalPasses()

	if maxBounces <= 0 {
		return 0
	}
	if totalPasses == 1 || passNumber >= totalPasses {
		return maxBounces
	}
	if passNumber <= 1 {
		return 1
	}

	bouncesPerPass := (maxBounces - 1) / (totalPasses - 1)
	return 1 + (passNumber-1)*bouncesPerPass
}

// renderPass renders one progressive pass on the shared worker pool.
// The pool is stopped by RenderProgressive once the last pass is done.
func (pr *ProgressiveRaytracer) renderPass(passNumber int, tileCallback func(TileCompletionResult)) (*image.RGBA, RenderStats, error) {
	bounces := pr.getBouncesForPass(passNumber)

	pr.logger.Printf("Pass %d: %d bounces (using %d workers)...\n",
		passNumber, bounces, pr.workerPool.GetNumWorkers())

	img := image.NewRGBA(image.Rect(0, 0, pr.width, pr.height))
	tileRenderer := NewTileRenderer(pr.snapshot, pr.width, pr.height, integrator.NewBounceIntegrator(bounces))

	pr.workerPool.Start()

	for taskID, tile := range pr.tiles {
		pr.workerPool.SubmitTask(TileTask{
			Tile:       tile,
			PassNumber: passNumber,
			TaskID:     taskID,
			Renderer:   tileRenderer,
			Image:      img,
		})
	}

	var stats RenderStats
	for i := 0; i < len(pr.tiles); i++ {
		result, ok := pr.workerPool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		stats.Merge(result.Stats)

		// Dispatch tile callbacks from this goroutine only
		if tileCallback != nil {
			tile := pr.tiles[result.TaskID]
			tileCallback(TileCompletionResult{
				TileX:       tile.Bounds.Min.X / pr.config.TileSize,
				TileY:       tile.Bounds.Min.Y / pr.config.TileSize,
				TileImage:   extractTileImage(img, tile.Bounds),
				PassNumber:  passNumber,
				Bounces:     bounces,
				TileNumber:  i + 1,
				TotalTiles:  len(pr.tiles),
				TotalPasses: pr.TotalPasses(),
			})
		}
	}

	return img, stats, nil
}

// extractTileImage copies the tile's region out of the pass image
func extractTileImage(img *image.RGBA, bounds image.Rectangle) *image.RGBA {
	tileImage := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(tileImage, tileImage.Bounds(), img, bounds.Min, draw.Src)
	return tileImage
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Bounces    int
	Image      *image.RGBA
	Stats      RenderStats
	IsLast     bool
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX      int // Tile coordinates (not pixel coordinates)
	TileY      int
	TileImage  *image.RGBA // Image data for just this tile
	PassNumber int         // Which pass this tile was rendered in
	Bounces    int         // Bounce limit of that pass

	// Progress information
	TileNumber  int // Current tile number in this pass (1-based)
	TotalTiles  int // Total number of tiles in the image
	TotalPasses int // Total number of passes planned
}

// RenderOptions configures progressive rendering behavior
type RenderOptions struct {
	TileUpdates bool // Whether to generate tile completion events
}

// RenderProgressive renders with channel-based communication.
// Returns channels for events. The caller should read from these channels in separate goroutines.
// If options.TileUpdates is false, the tile channel will be closed immediately and no tile events will be generated.
// Cancellation is checked between passes; a pass that has started always completes.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context, options RenderOptions) (<-chan PassResult, <-chan TileCompletionResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	tileChan := make(chan TileCompletionResult, 100)
	errChan := make(chan error, 1)

	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(passChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)
		defer pr.workerPool.Stop()

		totalPasses := pr.TotalPasses()
		pr.logger.Printf("Starting progressive rendering with %d passes...\n", totalPasses)

		for pass := 1; pass <= totalPasses; pass++ {
			select {
			case <-ctx.Done():
				pr.logger.Printf("Rendering cancelled before pass %d\n", pass)
				errChan <- ctx.Err()
				return
			default:
			}

			startTime := time.Now()

			var tileCallback func(TileCompletionResult)
			if options.TileUpdates {
				tileCallback = func(result TileCompletionResult) {
					select {
					case tileChan <- result:
					case <-ctx.Done():
					default:
						// Channel full, drop the tile preview
					}
				}
			}

			img, stats, err := pr.renderPass(pass, tileCallback)
			if err != nil {
				errChan <- err
				return
			}
			stats.Elapsed = time.Since(startTime)

			pr.logger.Printf("Pass %d completed in %v (%d/%d pixels hit)\n",
				pass, stats.Elapsed, stats.HitPixels, stats.TotalPixels)

			result := PassResult{
				PassNumber: pass,
				Bounces:    pr.getBouncesForPass(pass),
				Image:      img,
				Stats:      stats,
				IsLast:     pass == totalPasses,
			}

			select {
			case passChan <- result:
			case <-ctx.Done():
				return
			}
		}
	}()

	return passChan, tileChan, errChan
}
