// Package hud draws text overlays such as render time and frame rate onto rendered images.
package hud

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/fogleman/gg"
)

const (
	margin = 8.0
	// shadowOffset keeps text readable over bright pixels
	shadowOffset = 1.0
)

// Annotate returns a copy of img with lines drawn top-left, white over a black shadow.
// img itself is not modified.
func Annotate(img *image.RGBA, lines []string) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)

	if len(lines) == 0 {
		return out
	}

	dc := gg.NewContextForRGBA(out)
	lineHeight := dc.FontHeight() * 1.4

	for i, line := range lines {
		y := margin + dc.FontHeight() + float64(i)*lineHeight

		dc.SetRGB(0, 0, 0)
		dc.DrawString(line, margin+shadowOffset, y+shadowOffset)

		dc.SetRGB(1, 1, 1)
		dc.DrawString(line, margin, y)
	}

	return out
}

// TimingLines formats the render time and frame rate shown in the overlay
func TimingLines(elapsedSeconds float64, spheres int) []string {
	fps := 0.0
	if elapsedSeconds > 0 {
		fps = 1 / elapsedSeconds
	}
	return []string{
		fmt.Sprintf("Render time: %.1f ms", elapsedSeconds*1000),
		fmt.Sprintf("FPS: %.1f", fps),
		fmt.Sprintf("Spheres: %d", spheres),
	}
}
