package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
	"github.com/df07/go-sphere-raytracer/viewer/controls"
)

func main() {
	sceneName := flag.String("scene", "default", "Scene to show ('default', 'primaries', 'sphere-grid')")
	width := flag.Int("width", 0, "Window width in pixels (0 = scene default)")
	height := flag.Int("height", 0, "Window height in pixels (0 = scene default)")
	workers := flag.Int("workers", 0, "Number of parallel workers (0 = auto)")
	screenshot := flag.String("screenshot", "", "Write the last frame to this PNG file on exit")
	flag.Parse()

	sc, err := scene.NewScene(*sceneName)
	if err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
	view := sc.View()
	view.Width, view.Height = *width, *height
	sc.ApplyView(view)

	config := renderer.DefaultConfig()
	config.NumWorkers = *workers

	logger := renderer.NewDefaultLogger()
	game := newViewerGame(controls.NewState(sc), config, logger)

	ebiten.SetWindowTitle("Sphere Raytracer")
	ebiten.SetWindowSize(sc.Config.Width, sc.Config.Height)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(game); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}

	if *screenshot != "" && game.lastImage() != nil {
		if err := saveScreenshot(*screenshot, game); err != nil {
			log.Printf("Error: %v", err)
			os.Exit(1)
		}
		fmt.Printf("Saved %s\n", *screenshot)
	}
}

func saveScreenshot(path string, game *viewerGame) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create screenshot: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, game.lastImage()); err != nil {
		return fmt.Errorf("encode screenshot: %w", err)
	}
	return nil
}
