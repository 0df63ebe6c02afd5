package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/chewxy/math32"

	"github.com/df07/go-sphere-raytracer/pkg/hud"
	"github.com/df07/go-sphere-raytracer/pkg/record"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// cliOptions holds every command line setting
type cliOptions struct {
	Scene   string
	Width   int
	Height  int
	Bounces int

	RotX, RotY, RotZ       float64
	TransX, TransY, TransZ float64

	LightX, LightY, LightZ float64
	Ambient                float64

	Workers int
	HUD     bool
	Frames  int
	Record  string
	Codec   string
	List    bool
}

func parseFlags(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)

	fs.StringVar(&opts.Scene, "scene", "default", "Scene to render (see -list)")
	fs.IntVar(&opts.Width, "width", 0, "Image width in pixels (0 = scene default)")
	fs.IntVar(&opts.Height, "height", 0, "Image height in pixels (0 = scene default)")
	fs.IntVar(&opts.Bounces, "bounces", -1, "Maximum bounce count (-1 = scene default)")

	fs.Float64Var(&opts.RotX, "rotx", 0, "Camera rotation around x in radians")
	fs.Float64Var(&opts.RotY, "roty", 0, "Camera rotation around y in radians")
	fs.Float64Var(&opts.RotZ, "rotz", 0, "Camera rotation around z in radians")
	fs.Float64Var(&opts.TransX, "tx", 0, "Camera offset along x")
	fs.Float64Var(&opts.TransY, "ty", 0, "Camera offset along y")
	fs.Float64Var(&opts.TransZ, "tz", 0, "Camera offset along z")

	fs.Float64Var(&opts.LightX, "lightx", math.NaN(), "Light position x (default: scene light)")
	fs.Float64Var(&opts.LightY, "lighty", math.NaN(), "Light position y (default: scene light)")
	fs.Float64Var(&opts.LightZ, "lightz", math.NaN(), "Light position z (default: scene light)")
	fs.Float64Var(&opts.Ambient, "ambient", math.NaN(), "Ambient term in [0, 1] (default: scene ambient)")

	fs.IntVar(&opts.Workers, "workers", 0, "Number of parallel workers (0 = auto)")
	fs.BoolVar(&opts.HUD, "hud", false, "Draw render time and fps onto the image")
	fs.IntVar(&opts.Frames, "frames", 1, "Number of frames; more than one renders a turntable")
	fs.StringVar(&opts.Record, "record", "", "Write all frames to a compressed recording under this directory")
	fs.StringVar(&opts.Codec, "codec", "zstd", "Recording codec: 'zstd' or 'snappy'")
	fs.BoolVar(&opts.List, "list", false, "List available scenes and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.Frames < 1 {
		return opts, fmt.Errorf("-frames must be at least 1, got %d", opts.Frames)
	}
	return opts, nil
}

// buildScene creates the named scene and applies the command line overrides
func buildScene(opts cliOptions) (*scene.Scene, error) {
	sc, err := scene.NewScene(opts.Scene)
	if err != nil {
		return nil, err
	}

	view := sc.View()
	view.Width, view.Height = opts.Width, opts.Height
	if opts.Bounces >= 0 {
		view.MaxBounces = opts.Bounces
	}
	view.Camera.RotX += float32(opts.RotX)
	view.Camera.RotY += float32(opts.RotY)
	view.Camera.RotZ += float32(opts.RotZ)
	view.Camera.TransX += float32(opts.TransX)
	view.Camera.TransY += float32(opts.TransY)
	view.Camera.TransZ += float32(opts.TransZ)

	if !math.IsNaN(opts.LightX) {
		view.Light.Position.X = float32(opts.LightX)
	}
	if !math.IsNaN(opts.LightY) {
		view.Light.Position.Y = float32(opts.LightY)
	}
	if !math.IsNaN(opts.LightZ) {
		view.Light.Position.Z = float32(opts.LightZ)
	}
	if !math.IsNaN(opts.Ambient) {
		view.Light.Ambient = float32(opts.Ambient)
	}
	sc.ApplyView(view)

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene settings: %w", err)
	}
	return sc, nil
}

// createOutputDir names the output directory after the scene
func createOutputDir(sceneName string) string {
	if sceneName == "" {
		sceneName = "default"
	}
	return filepath.Join("output", sceneName)
}

// turntableAngle is the extra y rotation for frame i of n; the sweep covers 2π
func turntableAngle(i, n int) float32 {
	if n <= 1 {
		return 0
	}
	return 2 * math32.Pi * float32(i) / float32(n)
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	if opts.List {
		for _, info := range scene.ListScenes() {
			fmt.Printf("  %-12s %s (%d spheres)\n", info.ID, info.Description, info.Spheres)
		}
		return
	}

	if err := run(opts); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts cliOptions) error {
	sc, err := buildScene(opts)
	if err != nil {
		return err
	}

	fmt.Printf("Rendering scene %q at %dx%d with %d bounces...\n",
		opts.Scene, sc.Config.Width, sc.Config.Height, sc.Config.MaxBounces)

	outputDir := createOutputDir(opts.Scene)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var recorder *record.Writer
	if opts.Record != "" {
		codec, err := record.ParseCodec(opts.Codec)
		if err != nil {
			return err
		}
		recorder, err = record.NewWriter(opts.Record, filepath.Base(outputDir), codec)
		if err != nil {
			return err
		}
		defer recorder.Close()
	}

	config := renderer.DefaultConfig()
	config.NumWorkers = opts.Workers
	logger := renderer.NewDefaultLogger()

	baseRotY := sc.Camera.RotY
	var total time.Duration
	var last renderer.Frame

	for i := 0; i < opts.Frames; i++ {
		sc.Camera.RotY = baseRotY + turntableAngle(i, opts.Frames)

		rt := renderer.NewRaytracer(renderer.SnapshotOf(sc), sc.Config.Width, sc.Config.Height, config, logger)
		last = rt.RenderPass()
		total += last.Elapsed

		fmt.Printf("Frame %d/%d: %.1f ms (%.1f fps), %d/%d pixels hit\n",
			i+1, opts.Frames, last.ElapsedSeconds()*1000, last.FPS(), last.Stats.HitPixels, last.Stats.TotalPixels)

		if recorder != nil {
			if err := recorder.WriteFrame(last.Image, last.Elapsed); err != nil {
				return err
			}
		}
	}

	if opts.Frames > 1 {
		avg := total / time.Duration(opts.Frames)
		fmt.Printf("Average: %.1f ms (%.1f fps)\n", avg.Seconds()*1000, 1/avg.Seconds())
	}
	if recorder != nil {
		if err := recorder.Close(); err != nil {
			return err
		}
		fmt.Printf("Recording saved to %s\n", recorder.Directory())
	}

	img := last.Image
	if opts.HUD {
		img = hud.Annotate(img, hud.TimingLines(last.ElapsedSeconds(), sc.GetPrimitiveCount()))
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("render_%s.png", timestamp))
	if err := savePNG(filename, img); err != nil {
		return err
	}

	fmt.Printf("Render saved as %s\n", filename)
	return nil
}

func savePNG(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("save PNG: %w", err)
	}
	return nil
}
