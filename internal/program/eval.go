package program

import (
	"math"

	"vraster/internal/colorspace"
	"vraster/internal/face"
	"vraster/internal/geom2"
)

// Context carries the per-pixel (or per-sub-face) evaluation inputs a node
// may declare as needed: Face (nil for full coverage), Area, and Centroid.
// A node's NeedsFace/NeedsArea/NeedsCentroid flags tell the caller which
// fields it must populate; reading an unpopulated field is undefined.
type Context struct {
	Face     *face.ClippableFace
	Area     float64
	Centroid geom2.Point2
	Winding  map[int]int // path id -> winding, populated only where KPathBoolean still appears pre-resolution
}

// Evaluate walks the DAG directly (the reference path; Compile produces an
// equivalent flat instruction stream for the VM / GPU backend).
func Evaluate(n *Node, ctx Context) colorspace.Color {
	if n == nil || n.fullyTransparent {
		return colorspace.Color{Premultiplied: true}
	}
	switch n.Kind {
	case KColor:
		return n.Color
	case KStack:
		return evalStack(n, ctx)
	case KAlpha:
		c := colorspace.Premultiply(Evaluate(n.Children[0], ctx))
		c.R *= n.AlphaFactor
		c.G *= n.AlphaFactor
		c.B *= n.AlphaFactor
		c.A *= n.AlphaFactor
		return c
	case KBlendCompose:
		dst := colorspace.Premultiply(Evaluate(n.Children[0], ctx))
		src := colorspace.Premultiply(Evaluate(n.Children[1], ctx))
		return composite(dst, src, n.PorterDuff, n.Blend)
	case KPathBoolean:
		// Should have been resolved during CAG; evaluating it live falls
		// back to the winding map carried in the context, if any.
		included := n.Fill.Includes(ctx.Winding[int(n.Path)])
		if included {
			return Evaluate(n.Inside, ctx)
		}
		return Evaluate(n.Outside, ctx)
	case KFilter:
		return evalFilter(n, ctx)
	case KImage:
		return sampleImage(n, ctx)
	case KLinearBlend:
		t := linearRatio(n.AxisStart, n.AxisEnd, ctx.Centroid)
		return lerpColor(Evaluate(n.BlendA, ctx), Evaluate(n.BlendB, ctx), t)
	case KRadialBlend:
		t := radialRatio(n.AxisStart, n.AxisEnd, n.RadialInner, ctx.Centroid)
		return lerpColor(Evaluate(n.BlendA, ctx), Evaluate(n.BlendB, ctx), t)
	case KLinearGradient:
		t := linearRatio(n.AxisStart, n.AxisEnd, ctx.Centroid)
		return sampleStops(n.Stops, t)
	case KRadialGradient:
		t := radialRatio(n.AxisStart, n.AxisEnd, 0, ctx.Centroid)
		return sampleStops(n.Stops, t)
	case KBarycentricBlend:
		w := barycentricWeights(n.TriangleXY, ctx.Centroid)
		return blendCorners(n, w, ctx)
	case KBarycentricPerspectiveBlend:
		w := barycentricWeights(n.TriangleXY, ctx.Centroid)
		w = perspectiveCorrect(w, n.TriangleW)
		return blendCorners(n, w, ctx)
	case KPhong:
		return evalPhong(n, ctx)
	case KNormalize:
		c := colorspace.Premultiply(Evaluate(n.Children[0], ctx))
		if l := c.R*c.R + c.G*c.G + c.B*c.B; l > 0 {
			inv := 1 / math.Sqrt(l)
			c.R *= inv
			c.G *= inv
			c.B *= inv
		}
		return c
	case KNormalDebug:
		return Evaluate(n.Children[0], ctx)
	case KDepthSort:
		return evalDepthSort(n, ctx)
	case KPremultiply:
		return colorspace.Premultiply(Evaluate(n.Children[0], ctx))
	case KUnpremultiply:
		return colorspace.Unpremultiply(Evaluate(n.Children[0], ctx))
	case KColorSpaceConvert:
		c := Evaluate(n.Children[0], ctx)
		c.Space = n.From
		return colorspace.Convert(c, n.To)
	default:
		return colorspace.Color{Premultiplied: true}
	}
}

// evalStack accumulates front-to-back: acc starts at the front-most child
// and each deeper layer only shows through acc's remaining transparency.
// Once acc is fully opaque the deeper children are invisible and the loop
// exits early (the tree-walk analogue of the compiled OpaqueJump).
func evalStack(n *Node, ctx Context) colorspace.Color {
	acc := colorspace.Color{Premultiplied: true}
	for i := len(n.Children) - 1; i >= 0; i-- {
		deeper := colorspace.Premultiply(Evaluate(n.Children[i], ctx))
		acc = composite(deeper, acc, PorterDuffOver, BlendNormal)
		if acc.A >= 1 {
			break
		}
	}
	return acc
}

func composite(dst, src colorspace.Color, pd PorterDuff, blend BlendMode) colorspace.Color {
	sr, sg, sb := applyBlend(blend, dst, src)
	var fa, fb float64
	switch pd {
	case PorterDuffIn:
		fa, fb = dst.A, 0
	case PorterDuffOut:
		fa, fb = 1-dst.A, 0
	case PorterDuffAtop:
		fa, fb = dst.A, 1-src.A
	case PorterDuffXor:
		fa, fb = 1-dst.A, 1-src.A
	default: // PorterDuffOver
		fa, fb = 1, 1-src.A
	}
	out := colorspace.Color{Premultiplied: true, Space: dst.Space}
	out.R = sr*fa + dst.R*fb
	out.G = sg*fa + dst.G*fb
	out.B = sb*fa + dst.B*fb
	out.A = src.A*fa + dst.A*fb
	return out
}

func applyBlend(mode BlendMode, dst, src colorspace.Color) (r, g, b float64) {
	if mode == BlendNormal {
		return src.R, src.G, src.B
	}
	// Unpremultiplied channel blend functions, then re-premultiplied by
	// the caller's fa/fb compositing math (src.A already carries coverage).
	ur, ug, ub := unpre(src.R, src.A), unpre(src.G, src.A), unpre(src.B, src.A)
	dr, dg, db := unpre(dst.R, dst.A), unpre(dst.G, dst.A), unpre(dst.B, dst.A)
	blendFn := func(cb, cs float64) float64 {
		switch mode {
		case BlendMultiply:
			return cb * cs
		case BlendScreen:
			return cb + cs - cb*cs
		case BlendOverlay:
			if cb <= 0.5 {
				return 2 * cb * cs
			}
			return 1 - 2*(1-cb)*(1-cs)
		case BlendDarken:
			return math.Min(cb, cs)
		case BlendLighten:
			return math.Max(cb, cs)
		default:
			return cs
		}
	}
	r = blendFn(dr, ur) * src.A
	g = blendFn(dg, ug) * src.A
	b = blendFn(db, ub) * src.A
	return r, g, b
}

func unpre(c, a float64) float64 {
	if a == 0 {
		return 0
	}
	return c / a
}

func lerpColor(a, b colorspace.Color, t float64) colorspace.Color {
	a = colorspace.Premultiply(a)
	b = colorspace.Premultiply(b)
	return colorspace.Color{
		R: a.R + (b.R-a.R)*t, G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t, A: a.A + (b.A-a.A)*t,
		Premultiplied: true, Space: a.Space,
	}
}

func linearRatio(start, end, p geom2.Point2) float64 {
	axis := end.Sub(start)
	l2 := axis.Dot(axis)
	if l2 == 0 {
		return 0
	}
	t := p.Sub(start).Dot(axis) / l2
	return clamp01(t)
}

func radialRatio(center, edge geom2.Point2, inner float64, p geom2.Point2) float64 {
	r := edge.Sub(center).Length()
	if r <= inner {
		return 0
	}
	return clamp01((p.Sub(center).Length() - inner) / (r - inner))
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func sampleStops(stops []GradientStop, t float64) colorspace.Color {
	if len(stops) == 0 {
		return colorspace.Color{Premultiplied: true}
	}
	if t <= stops[0].Position {
		return colorspace.Premultiply(stops[0].Color)
	}
	last := stops[len(stops)-1]
	if t >= last.Position {
		return colorspace.Premultiply(last.Color)
	}
	for i := 0; i+1 < len(stops); i++ {
		a, b := stops[i], stops[i+1]
		if t >= a.Position && t <= b.Position {
			span := b.Position - a.Position
			if span == 0 {
				return colorspace.Premultiply(a.Color)
			}
			return lerpColor(a.Color, b.Color, (t-a.Position)/span)
		}
	}
	return colorspace.Premultiply(last.Color)
}

// barycentricWeights returns the affine (w0,w1,w2) weights of p within tri.
func barycentricWeights(tri [3]geom2.Point2, p geom2.Point2) [3]float64 {
	v0 := tri[1].Sub(tri[0])
	v1 := tri[2].Sub(tri[0])
	v2 := p.Sub(tri[0])
	d00, d01, d11 := v0.Dot(v0), v0.Dot(v1), v1.Dot(v1)
	d20, d21 := v2.Dot(v0), v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if denom == 0 {
		return [3]float64{1, 0, 0}
	}
	w1 := (d11*d20 - d01*d21) / denom
	w2 := (d00*d21 - d01*d20) / denom
	w0 := 1 - w1 - w2
	return [3]float64{w0, w1, w2}
}

func perspectiveCorrect(w [3]float64, invZ [3]float64) [3]float64 {
	s := w[0]*invZ[0] + w[1]*invZ[1] + w[2]*invZ[2]
	if s == 0 {
		return w
	}
	return [3]float64{w[0] * invZ[0] / s, w[1] * invZ[1] / s, w[2] * invZ[2] / s}
}

func blendCorners(n *Node, w [3]float64, ctx Context) colorspace.Color {
	c0 := colorspace.Premultiply(Evaluate(n.Corners[0], ctx))
	c1 := colorspace.Premultiply(Evaluate(n.Corners[1], ctx))
	c2 := colorspace.Premultiply(Evaluate(n.Corners[2], ctx))
	return colorspace.Color{
		R:             c0.R*w[0] + c1.R*w[1] + c2.R*w[2],
		G:             c0.G*w[0] + c1.G*w[1] + c2.G*w[2],
		B:             c0.B*w[0] + c1.B*w[1] + c2.B*w[2],
		A:             c0.A*w[0] + c1.A*w[1] + c2.A*w[2],
		Premultiplied: true,
	}
}

func evalFilter(n *Node, ctx Context) colorspace.Color {
	c := colorspace.Premultiply(Evaluate(n.Children[0], ctx))
	in := [4]float64{c.R, c.G, c.B, c.A}
	var out [4]float64
	for i := 0; i < 4; i++ {
		v := n.FilterOffset[i]
		for j := 0; j < 4; j++ {
			v += n.FilterMatrix[i][j] * in[j]
		}
		out[i] = v
	}
	return colorspace.Color{R: out[0], G: out[1], B: out[2], A: out[3], Premultiplied: true}
}
