package program

import (
	"vraster/internal/colorspace"
)

// wrapCoord applies an extend mode to an integer coordinate against size.
// Plain modulo arithmetic suffices here: the Image node samples once per
// pixel rather than streaming a scanline, so there is no incremental fast
// path to maintain.
func wrapCoord(v, size int, mode ExtendMode) int {
	if size <= 0 {
		return 0
	}
	switch mode {
	case ExtendRepeat:
		v %= size
		if v < 0 {
			v += size
		}
		return v
	case ExtendReflect:
		period := size * 2
		v %= period
		if v < 0 {
			v += period
		}
		if v >= size {
			return period - v - 1
		}
		return v
	default: // ExtendPad
		if v < 0 {
			return 0
		}
		if v >= size {
			return size - 1
		}
		return v
	}
}

func (n *Node) at(x, y int) colorspace.Color {
	x = wrapCoord(x, n.ImageW, n.Extend)
	y = wrapCoord(y, n.ImageH, n.Extend)
	return n.ImagePixels[y*n.ImageW+x]
}

func sampleImage(n *Node, ctx Context) colorspace.Color {
	inv, ok := n.ImageTransform.Invert()
	if !ok {
		return colorspace.Color{Premultiplied: true}
	}
	local := inv.Transform(ctx.Centroid)
	fx := local.X*float64(n.ImageW) - 0.5
	fy := local.Y*float64(n.ImageH) - 0.5

	switch n.Resample {
	case ResampleNearest:
		return n.at(round(fx), round(fy))
	case ResampleBilinear:
		return n.bilinear(fx, fy)
	default: // ResampleAnalyticMitchellNetravali
		return n.mitchellNetravali(fx, fy)
	}
}

func round(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return int(v - 0.5)
}

func (n *Node) bilinear(fx, fy float64) colorspace.Color {
	x0, y0 := int(floor(fx)), int(floor(fy))
	tx, ty := fx-floor(fx), fy-floor(fy)
	c00 := colorspace.Premultiply(n.at(x0, y0))
	c10 := colorspace.Premultiply(n.at(x0+1, y0))
	c01 := colorspace.Premultiply(n.at(x0, y0+1))
	c11 := colorspace.Premultiply(n.at(x0+1, y0+1))
	top := lerpColor(c00, c10, tx)
	bot := lerpColor(c01, c11, tx)
	return lerpColor(top, bot, ty)
}

func floor(v float64) float64 {
	i := float64(int(v))
	if v < 0 && i != v {
		return i - 1
	}
	return i
}

// mitchellNetravali samples a 4x4 neighborhood with the canonical B=C=1/3
// Mitchell-Netravali kernel, the same cubic the face-coverage filter
// integrates analytically, so image reconstruction and coverage
// filtering share one kernel shape.
func (n *Node) mitchellNetravali(fx, fy float64) colorspace.Color {
	x0, y0 := int(floor(fx))-1, int(floor(fy))-1
	tx, ty := fx-floor(fx), fy-floor(fy)

	var wx, wy [4]float64
	for i := 0; i < 4; i++ {
		wx[i] = mitchellNetravaliKernel1D(float64(i-1) - tx)
		wy[i] = mitchellNetravaliKernel1D(float64(i-1) - ty)
	}

	out := colorspace.Color{Premultiplied: true}
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			c := colorspace.Premultiply(n.at(x0+i, y0+j))
			w := wx[i] * wy[j]
			out.R += c.R * w
			out.G += c.G * w
			out.B += c.B * w
			out.A += c.A * w
		}
	}
	return out
}

func mitchellNetravaliKernel1D(x float64) float64 {
	const b = 1.0 / 3.0
	const c = 1.0 / 3.0
	ax := x
	if ax < 0 {
		ax = -ax
	}
	if ax < 1 {
		return ((12-9*b-6*c)*ax*ax*ax + (-18+12*b+6*c)*ax*ax + (6 - 2*b)) / 6
	}
	if ax < 2 {
		return ((-b-6*c)*ax*ax*ax + (6*b+30*c)*ax*ax + (-12*b-48*c)*ax + (8*b + 24*c)) / 6
	}
	return 0
}
