package hud

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func grayImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 100, 100, 100, 255
	}
	return img
}

func TestAnnotate_DrawsText(t *testing.T) {
	img := grayImage(200, 80)
	original := append([]byte(nil), img.Pix...)

	out := Annotate(img, []string{"Render time: 12.3 ms", "FPS: 81.3"})

	if !bytes.Equal(img.Pix, original) {
		t.Error("Annotate modified its input")
	}
	if out.Bounds() != img.Bounds() {
		t.Fatalf("Expected bounds %v, got %v", img.Bounds(), out.Bounds())
	}

	var white, dark int
	for y := 0; y < 40; y++ {
		for x := 0; x < 200; x++ {
			c := out.RGBAAt(x, y)
			if c.R > 200 {
				white++
			}
			if c.R < 50 {
				dark++
			}
		}
	}
	if white == 0 || dark == 0 {
		t.Errorf("Expected text and shadow pixels, got %d white / %d dark", white, dark)
	}

	// Far corner stays untouched
	if c := out.RGBAAt(199, 79); c != (color.RGBA{100, 100, 100, 255}) {
		t.Errorf("Expected untouched pixel, got %v", c)
	}
}

func TestAnnotate_NoLinesCopies(t *testing.T) {
	img := grayImage(10, 10)
	out := Annotate(img, nil)

	if out == img {
		t.Error("Expected a copy, got the input image")
	}
	if !bytes.Equal(out.Pix, img.Pix) {
		t.Error("Expected identical pixels when no lines are drawn")
	}
}

func TestTimingLines(t *testing.T) {
	lines := TimingLines(0.02, 3)
	expected := []string{"Render time: 20.0 ms", "FPS: 50.0", "Spheres: 3"}

	if len(lines) != len(expected) {
		t.Fatalf("Expected %d lines, got %d", len(expected), len(lines))
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("Line %d: expected %q, got %q", i, expected[i], lines[i])
		}
	}

	if got := TimingLines(0, 0)[1]; got != "FPS: 0.0" {
		t.Errorf("Expected zero fps for zero time, got %q", got)
	}
}
