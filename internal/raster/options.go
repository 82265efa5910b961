// Package raster implements the two-pass rasterization scheduler: tiling
// the output, distributing clipped faces to tiles and bins, integrating
// the render program per pixel-sized sub-face against an analytic polygon
// filter kernel, and accumulating into a combined raster that finalizes
// to the requested output color space.
package raster

import (
	"sync/atomic"

	"vraster/internal/colorspace"
	"vraster/internal/face"
)

// FaceType selects the area-geometry combining strategy upstream of the
// scheduler and, for Edged, forces edge-set output faces.
type FaceType int

const (
	FaceSimple FaceType = iota
	FaceFullyCombined
	FaceSimplifyingCombined
	FaceTraced
	FaceEdged
)

// Options configures one rasterization. The zero value is not usable
// directly; apply WithDefaults first.
type Options struct {
	// TileSize is the tile side in pixels.
	TileSize int
	// Filter is the polygon reconstruction kernel.
	Filter face.FilterKernel
	// FilterScale dilates the filter support; must be >= 1.
	FilterScale float64
	// PolygonFiltering carries the same kernel tag for the vector-canvas
	// facade's export path.
	PolygonFiltering face.FilterKernel
	// ColorSpace is the output space (sRGB or Display-P3).
	ColorSpace colorspace.Space
	// FaceType selects the upstream combining strategy.
	FaceType FaceType
	// ShowOutOfGamut writes a sentinel color instead of clamping
	// components that land outside [0,1] after output conversion.
	ShowOutOfGamut bool
	// Log receives scheduler diagnostics; nil disables them.
	Log *Log
	// Cancel, when set, is checked between tiles; a true value stops the
	// rasterization cooperatively.
	Cancel *atomic.Bool
}

// WithDefaults fills unset options with their documented defaults.
func (o Options) WithDefaults() Options {
	if o.TileSize <= 0 {
		o.TileSize = 256
	}
	if o.FilterScale < 1 {
		o.FilterScale = 1
	}
	return o
}

// filterWidth is the kernel's full support width in pixels before
// FilterScale dilation.
func filterWidth(k face.FilterKernel) float64 {
	return float64(k.ExtraPixels() + 1)
}
