package raster

import (
	"vraster/internal/colorspace"
)

// CombinedRaster accumulates per-pixel premultiplied linear-sRGB
// contributions. Workers write disjoint tile regions, so accumulation
// needs no locking; finalization converts to the output color space.
type CombinedRaster struct {
	width, height int
	pix           []float64 // RGBA quadruplets, premultiplied linear sRGB
}

func NewCombinedRaster(w, h int) *CombinedRaster {
	return &CombinedRaster{width: w, height: h, pix: make([]float64, 4*w*h)}
}

func (r *CombinedRaster) Width() int  { return r.width }
func (r *CombinedRaster) Height() int { return r.height }

// Add accumulates a premultiplied linear color scaled by weight into
// pixel (x, y).
func (r *CombinedRaster) Add(x, y int, c colorspace.Color, weight float64) {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return
	}
	i := 4 * (y*r.width + x)
	r.pix[i] += c.R * weight
	r.pix[i+1] += c.G * weight
	r.pix[i+2] += c.B * weight
	r.pix[i+3] += c.A * weight
}

// At returns the accumulated premultiplied linear color at (x, y).
func (r *CombinedRaster) At(x, y int) colorspace.Color {
	i := 4 * (y*r.width + x)
	return colorspace.Color{
		R: r.pix[i], G: r.pix[i+1], B: r.pix[i+2], A: r.pix[i+3],
		Space: colorspace.LinearSRGB, Premultiplied: true,
	}
}

// Storage selects the finalized raster's pixel representation.
type Storage int

const (
	StorageRGBA8 Storage = iota
	StorageRGBAFloat
)

// Raster is a finalized image: premultiplied pixels in the output color
// space, either 8-bit (Pix, 4 bytes per pixel) or float (FloatPix, 4
// float64 per pixel), with an explicit row stride in components.
type Raster struct {
	Width, Height int
	Space         colorspace.Space
	Storage       Storage
	Stride        int
	Pix           []uint8
	FloatPix      []float64
}

// outOfGamutSentinel is written (in output-space components) for pixels
// with any component outside [0,1] when ShowOutOfGamut is set.
var outOfGamutSentinel = [4]float64{1, 0, 1, 1}

// Finalize converts the accumulated linear-sRGB raster to the output
// color space and storage. Out-of-gamut components clamp to [0,1] unless
// showOutOfGamut is set, in which case the sentinel color is written.
func (r *CombinedRaster) Finalize(space colorspace.Space, storage Storage, showOutOfGamut bool) *Raster {
	out := &Raster{
		Width: r.width, Height: r.height,
		Space: space, Storage: storage, Stride: 4 * r.width,
	}
	if storage == StorageRGBA8 {
		out.Pix = make([]uint8, 4*r.width*r.height)
	} else {
		out.FloatPix = make([]float64, 4*r.width*r.height)
	}

	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			c := colorspace.Convert(r.At(x, y), space)
			v := [4]float64{c.R, c.G, c.B, c.A}
			if gamut := inGamut(v); !gamut {
				if showOutOfGamut {
					v = outOfGamutSentinel
				} else {
					for i := range v {
						v[i] = clamp01(v[i])
					}
				}
			}
			i := 4 * (y*r.width + x)
			if storage == StorageRGBA8 {
				for j := 0; j < 4; j++ {
					out.Pix[i+j] = uint8(v[j]*255 + 0.5)
				}
			} else {
				copy(out.FloatPix[i:i+4], v[:])
			}
		}
	}
	return out
}

func inGamut(v [4]float64) bool {
	for _, c := range v {
		if c < 0 || c > 1 {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
