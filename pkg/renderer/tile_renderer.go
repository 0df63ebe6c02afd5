package renderer

import (
	"image"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
)

// TileRenderer renders pixels of one snapshot within given bounds.
// It holds no mutable state and is shared by all workers of a pass.
type TileRenderer struct {
	snapshot   Snapshot
	width      int
	height     int
	integrator integrator.Integrator
}

// NewTileRenderer creates a new tile renderer with the given snapshot and integrator
func NewTileRenderer(snapshot Snapshot, width, height int, integratorInst integrator.Integrator) *TileRenderer {
	return &TileRenderer{
		snapshot:   snapshot,
		width:      width,
		height:     height,
		integrator: integratorInst,
	}
}

// PixelColor casts the primary ray for pixel (x, y). Misses are black.
func (tr *TileRenderer) PixelColor(x, y int) (core.Vec3, bool) {
	ray := tr.snapshot.Pose.PrimaryRay(y*tr.width+x, tr.width, tr.height)
	return tr.integrator.RayColor(ray, tr.snapshot.World)
}

// RenderTileBounds writes the pixels inside bounds into img.
// Tiles of one pass never overlap, so concurrent calls touch disjoint bytes.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, img *image.RGBA) RenderStats {
	stats := RenderStats{TotalPixels: bounds.Dx() * bounds.Dy()}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			colorVec, hit := tr.PixelColor(x, y)
			pixel, clamped := vec3ToColor(colorVec)
			img.SetRGBA(x, y, pixel)

			if hit {
				stats.HitPixels++
			}
			if clamped {
				stats.ClampedPixels++
			}
		}
	}

	return stats
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Unique tile identifier
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// NewTile creates a new tile with the specified bounds
func NewTile(id int, bounds image.Rectangle) *Tile {
	return &Tile{ID: id, Bounds: bounds}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1)))
			tileID++
		}
	}

	return tiles
}
