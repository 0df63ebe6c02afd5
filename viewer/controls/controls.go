// Package controls maps viewer input actions onto scene edits. It has no
// window or input dependencies so the mapping can be tested directly.
package controls

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// MaxBounces is the deepest recursion the viewer lets the user select
const MaxBounces = 16

// Action is one thing the user can ask the viewer to do
type Action int

const (
	RotateXPos Action = iota
	RotateXNeg
	RotateYPos
	RotateYNeg
	RotateZPos
	RotateZNeg
	MoveXPos
	MoveXNeg
	MoveYPos
	MoveYNeg
	MoveZPos
	MoveZNeg
	LightXPos
	LightXNeg
	LightYPos
	LightYNeg
	LightZPos
	LightZNeg
	AmbientUp
	AmbientDown

	// Discrete actions fire once per key press
	BouncesUp
	BouncesDown
	AddSphere
	RemoveSphere
	ToggleHUD
	Reset
)

var actionNames = map[Action]string{
	RotateXPos: "rotate x+", RotateXNeg: "rotate x-",
	RotateYPos: "rotate y+", RotateYNeg: "rotate y-",
	RotateZPos: "rotate z+", RotateZNeg: "rotate z-",
	MoveXPos: "move x+", MoveXNeg: "move x-",
	MoveYPos: "move y+", MoveYNeg: "move y-",
	MoveZPos: "move z+", MoveZNeg: "move z-",
	LightXPos: "light x+", LightXNeg: "light x-",
	LightYPos: "light y+", LightYNeg: "light y-",
	LightZPos: "light z+", LightZNeg: "light z-",
	AmbientUp: "ambient+", AmbientDown: "ambient-",
	BouncesUp: "bounces+", BouncesDown: "bounces-",
	AddSphere: "add sphere", RemoveSphere: "remove sphere",
	ToggleHUD: "toggle hud", Reset: "reset view",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// Discrete reports whether the action fires once per press rather than while held
func (a Action) Discrete() bool {
	return a >= BouncesUp
}

// Speeds are per-second rates for held actions
type Speeds struct {
	Rotate  float32 // radians per second
	Move    float32 // units per second
	Ambient float32 // ambient units per second
}

// DefaultSpeeds returns the rates the viewer starts with
func DefaultSpeeds() Speeds {
	return Speeds{Rotate: 1.0, Move: 2.0, Ambient: 0.25}
}

// State is everything the viewer edits between frames
type State struct {
	Scene   *scene.Scene
	Initial scene.ViewState // restored by Reset
	ShowHUD bool
	Speeds  Speeds
}

// NewState wraps a scene and remembers its view for Reset
func NewState(s *scene.Scene) *State {
	return &State{
		Scene:   s,
		Initial: s.View(),
		ShowHUD: true,
		Speeds:  DefaultSpeeds(),
	}
}

// Apply performs one action. dt is the frame time in seconds and only scales held actions.
// It reports whether the scene changed.
func (st *State) Apply(a Action, dt float32) bool {
	v := st.Scene.View()
	rot := st.Speeds.Rotate * dt
	move := st.Speeds.Move * dt

	switch a {
	case RotateXPos:
		v.Camera.RotX += rot
	case RotateXNeg:
		v.Camera.RotX -= rot
	case RotateYPos:
		v.Camera.RotY += rot
	case RotateYNeg:
		v.Camera.RotY -= rot
	case RotateZPos:
		v.Camera.RotZ += rot
	case RotateZNeg:
		v.Camera.RotZ -= rot
	case MoveXPos:
		v.Camera.TransX += move
	case MoveXNeg:
		v.Camera.TransX -= move
	case MoveYPos:
		v.Camera.TransY += move
	case MoveYNeg:
		v.Camera.TransY -= move
	case MoveZPos:
		v.Camera.TransZ += move
	case MoveZNeg:
		v.Camera.TransZ -= move
	case LightXPos:
		v.Light.Position.X += move
	case LightXNeg:
		v.Light.Position.X -= move
	case LightYPos:
		v.Light.Position.Y += move
	case LightYNeg:
		v.Light.Position.Y -= move
	case LightZPos:
		v.Light.Position.Z += move
	case LightZNeg:
		v.Light.Position.Z -= move
	case AmbientUp:
		v.Light.Ambient = math32.Min(v.Light.Ambient+st.Speeds.Ambient*dt, 1)
	case AmbientDown:
		v.Light.Ambient = math32.Max(v.Light.Ambient-st.Speeds.Ambient*dt, 0)
	case BouncesUp:
		v.MaxBounces = min(v.MaxBounces+1, MaxBounces)
	case BouncesDown:
		v.MaxBounces = max(v.MaxBounces-1, 0)
	case AddSphere:
		st.Scene.AddSphere(scene.NewDefaultSphere())
		return true
	case RemoveSphere:
		if n := len(st.Scene.Shapes); n > 0 {
			return st.Scene.RemoveSphere(n-1) == nil
		}
		return false
	case ToggleHUD:
		st.ShowHUD = !st.ShowHUD
		return false
	case Reset:
		v = st.Initial
	default:
		return false
	}

	changed := v != st.Scene.View()
	st.Scene.ApplyView(v)
	return changed
}
