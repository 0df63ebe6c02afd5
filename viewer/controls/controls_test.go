package controls

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

func TestApply_HeldActionsScaleWithTime(t *testing.T) {
	tests := []struct {
		action Action
		get    func(v scene.ViewState) float32
		want   float32
	}{
		{RotateXPos, func(v scene.ViewState) float32 { return v.Camera.RotX }, 0.5},
		{RotateYNeg, func(v scene.ViewState) float32 { return v.Camera.RotY }, -0.5},
		{RotateZPos, func(v scene.ViewState) float32 { return v.Camera.RotZ }, 0.5},
		{MoveXNeg, func(v scene.ViewState) float32 { return v.Camera.TransX }, -1},
		{MoveYPos, func(v scene.ViewState) float32 { return v.Camera.TransY }, 1},
		{MoveZPos, func(v scene.ViewState) float32 { return v.Camera.TransZ }, 1},
		{LightXPos, func(v scene.ViewState) float32 { return v.Light.Position.X }, 1},
		{LightYNeg, func(v scene.ViewState) float32 { return v.Light.Position.Y }, -1},
		{LightZNeg, func(v scene.ViewState) float32 { return v.Light.Position.Z }, -1},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			st := NewState(scene.NewDefaultScene())
			if !st.Apply(tt.action, 0.5) {
				t.Error("Expected the scene to change")
			}
			if got := tt.get(st.Scene.View()); math32.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestApply_AmbientIsClamped(t *testing.T) {
	st := NewState(scene.NewDefaultScene())

	st.Apply(AmbientUp, 100)
	if st.Scene.Light.Ambient != 1 {
		t.Errorf("Expected ambient clamped to 1, got %v", st.Scene.Light.Ambient)
	}
	st.Apply(AmbientDown, 100)
	if st.Scene.Light.Ambient != 0 {
		t.Errorf("Expected ambient clamped to 0, got %v", st.Scene.Light.Ambient)
	}
	if st.Apply(AmbientDown, 1) {
		t.Error("Expected no change at the lower bound")
	}
}

func TestApply_Bounces(t *testing.T) {
	st := NewState(scene.NewDefaultScene())

	st.Apply(BouncesUp, 0)
	if st.Scene.Config.MaxBounces != 3 {
		t.Errorf("Expected 3 bounces, got %d", st.Scene.Config.MaxBounces)
	}
	for i := 0; i < 10; i++ {
		st.Apply(BouncesDown, 0)
	}
	if st.Scene.Config.MaxBounces != 0 {
		t.Errorf("Expected bounces clamped at 0, got %d", st.Scene.Config.MaxBounces)
	}
	for i := 0; i < 40; i++ {
		st.Apply(BouncesUp, 0)
	}
	if st.Scene.Config.MaxBounces != MaxBounces {
		t.Errorf("Expected bounces clamped at %d, got %d", MaxBounces, st.Scene.Config.MaxBounces)
	}
}

func TestApply_EditSpheres(t *testing.T) {
	st := NewState(scene.NewDefaultScene())

	if !st.Apply(AddSphere, 0) || len(st.Scene.Shapes) != 3 {
		t.Fatalf("Expected 3 shapes after add, got %d", len(st.Scene.Shapes))
	}
	for i := 0; i < 3; i++ {
		if !st.Apply(RemoveSphere, 0) {
			t.Fatalf("Remove %d reported no change", i)
		}
	}
	if st.Apply(RemoveSphere, 0) {
		t.Error("Expected no change removing from an empty scene")
	}
}

func TestApply_ResetAndHUD(t *testing.T) {
	st := NewState(scene.NewDefaultScene())
	initial := st.Scene.View()

	st.Apply(RotateYPos, 1)
	st.Apply(MoveZPos, 1)
	if !st.Apply(Reset, 0) {
		t.Error("Expected reset to change the scene")
	}
	if st.Scene.View() != initial {
		t.Errorf("Expected initial view %+v, got %+v", initial, st.Scene.View())
	}

	st.Apply(ToggleHUD, 0)
	if st.ShowHUD {
		t.Error("Expected HUD hidden after toggle")
	}
}

func TestAction_Discrete(t *testing.T) {
	for _, a := range []Action{RotateXPos, MoveZNeg, AmbientDown} {
		if a.Discrete() {
			t.Errorf("%v should be a held action", a)
		}
	}
	for _, a := range []Action{BouncesUp, AddSphere, ToggleHUD, Reset} {
		if !a.Discrete() {
			t.Errorf("%v should be a discrete action", a)
		}
	}
	if Action(99).String() != "unknown" {
		t.Error("Expected unknown name for out-of-range action")
	}
}
