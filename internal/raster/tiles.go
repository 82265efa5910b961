package raster

import (
	"golang.org/x/image/math/fixed"

	"vraster/internal/geom2"
)

// tileRect is one tile's pixel rectangle, half-open on the max sides.
type tileRect struct {
	x0, y0, x1, y1 int
}

func (t tileRect) bounds(origin geom2.Point2) geom2.Bounds2 {
	return geom2.NewBounds(
		origin.X+float64(t.x0), origin.Y+float64(t.y0),
		origin.X+float64(t.x1), origin.Y+float64(t.y1),
	)
}

// pixelExtent snaps a float bounds to the integer pixel grid through
// 26.6 fixed point, so repeated tilings of the same bounds can never
// disagree by a ULP about which pixel column an edge lands in.
func pixelExtent(b geom2.Bounds2) (w, h int) {
	minX := fixed.Int26_6(b.MinX * 64).Floor()
	minY := fixed.Int26_6(b.MinY * 64).Floor()
	maxX := fixed.Int26_6(b.MaxX * 64).Ceil()
	maxY := fixed.Int26_6(b.MaxY * 64).Ceil()
	return maxX - minX, maxY - minY
}

// tileGrid partitions a w x h pixel area into tileSize-sided tiles
// (partial tiles at the max edges).
func tileGrid(w, h, tileSize int) []tileRect {
	var tiles []tileRect
	for y := 0; y < h; y += tileSize {
		for x := 0; x < w; x += tileSize {
			tiles = append(tiles, tileRect{
				x0: x, y0: y,
				x1: min(x+tileSize, w), y1: min(y+tileSize, h),
			})
		}
	}
	return tiles
}

// binSize is the finest distribution unit inside a tile: small enough
// that a bin's faces and per-pixel scratch stay cache-resident.
const binSize = 16

// binGrid subdivides one tile into bins.
func binGrid(t tileRect) []tileRect {
	var bins []tileRect
	for y := t.y0; y < t.y1; y += binSize {
		for x := t.x0; x < t.x1; x += binSize {
			bins = append(bins, tileRect{
				x0: x, y0: y,
				x1: min(x+binSize, t.x1), y1: min(y+binSize, t.y1),
			})
		}
	}
	return bins
}
