package main

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/hud"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/viewer/controls"
)

// keyBindings maps keyboard keys to viewer actions
var keyBindings = map[ebiten.Key]controls.Action{
	ebiten.KeyW: controls.RotateXNeg,
	ebiten.KeyS: controls.RotateXPos,
	ebiten.KeyA: controls.RotateYNeg,
	ebiten.KeyD: controls.RotateYPos,
	ebiten.KeyQ: controls.RotateZPos,
	ebiten.KeyE: controls.RotateZNeg,

	ebiten.KeyArrowLeft:  controls.MoveXNeg,
	ebiten.KeyArrowRight: controls.MoveXPos,
	ebiten.KeyPageUp:     controls.MoveYPos,
	ebiten.KeyPageDown:   controls.MoveYNeg,
	ebiten.KeyArrowUp:    controls.MoveZPos,
	ebiten.KeyArrowDown:  controls.MoveZNeg,

	ebiten.KeyJ: controls.LightXNeg,
	ebiten.KeyL: controls.LightXPos,
	ebiten.KeyI: controls.LightYPos,
	ebiten.KeyK: controls.LightYNeg,
	ebiten.KeyU: controls.LightZPos,
	ebiten.KeyO: controls.LightZNeg,

	ebiten.KeyEqual: controls.AmbientUp,
	ebiten.KeyMinus: controls.AmbientDown,

	ebiten.KeyB:         controls.BouncesUp,
	ebiten.KeyV:         controls.BouncesDown,
	ebiten.KeyN:         controls.AddSphere,
	ebiten.KeyBackspace: controls.RemoveSphere,
	ebiten.KeyH:         controls.ToggleHUD,
	ebiten.KeyR:         controls.Reset,
}

// viewerGame re-renders the scene every frame and shows it in the window
type viewerGame struct {
	state  *controls.State
	config renderer.Config
	logger core.Logger

	width, height int
	texture       *ebiten.Image
	last          renderer.Frame
	frames        int
}

func newViewerGame(state *controls.State, config renderer.Config, logger core.Logger) *viewerGame {
	return &viewerGame{
		state:  state,
		config: config,
		logger: logger,
		width:  state.Scene.Config.Width,
		height: state.Scene.Config.Height,
	}
}

func (g *viewerGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	dt := float32(1.0 / float64(ebiten.TPS()))
	for key, action := range keyBindings {
		if action.Discrete() {
			if inpututil.IsKeyJustPressed(key) {
				g.state.Apply(action, dt)
			}
		} else if ebiten.IsKeyPressed(key) {
			g.state.Apply(action, dt)
		}
	}
	return nil
}

func (g *viewerGame) Draw(screen *ebiten.Image) {
	sc := g.state.Scene
	g.last = renderer.NewRaytracer(renderer.SnapshotOf(sc), g.width, g.height, g.config, nil).RenderPass()
	g.frames++

	img := g.last.Image
	if g.state.ShowHUD {
		lines := hud.TimingLines(g.last.ElapsedSeconds(), sc.GetPrimitiveCount())
		lines = append(lines, fmt.Sprintf("Bounces: %d  Ambient: %.2f", sc.Config.MaxBounces, sc.Light.Ambient))
		img = hud.Annotate(img, lines)
	}

	if g.texture == nil {
		g.texture = ebiten.NewImage(g.width, g.height)
	}
	g.texture.WritePixels(img.Pix)
	screen.DrawImage(g.texture, nil)

	if g.frames%60 == 0 {
		g.logger.Printf("Frame %d: %.1f ms (%.1f fps)\n", g.frames, g.last.ElapsedSeconds()*1000, g.last.FPS())
		ebiten.SetWindowTitle(fmt.Sprintf("Sphere Raytracer - %.1f fps", g.last.FPS()))
	}
}

func (g *viewerGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// lastImage returns the most recent frame without the overlay
func (g *viewerGame) lastImage() *image.RGBA {
	return g.last.Image
}
