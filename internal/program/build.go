package program

import (
	"vraster/internal/colorspace"
	"vraster/internal/geom2"
	"vraster/internal/scene"
)

// NewColor constructs a constant-color leaf. A color with A==0 is fully
// transparent; A==1 (premultiplied) is fully opaque.
func NewColor(c colorspace.Color) *Node {
	n := &Node{Kind: KColor, Color: c}
	n.fullyTransparent = c.A == 0
	n.fullyOpaque = c.A >= 1
	return n
}

// NewStack composes children back-to-front with source-over. Fully
// transparent children are dropped at construction (simplified() redoes
// this after transform/substitution, but doing it here too keeps the
// common case cheap).
func NewStack(children ...*Node) *Node {
	kept := make([]*Node, 0, len(children))
	for _, c := range children {
		if c != nil && !c.fullyTransparent {
			kept = append(kept, c)
		}
	}
	n := &Node{Kind: KStack, Children: kept}
	n.recomputeFlags()
	return n
}

// NewAlpha multiplies child's alpha by factor.
func NewAlpha(child *Node, factor float64) *Node {
	n := &Node{Kind: KAlpha, Children: []*Node{child}, AlphaFactor: factor}
	n.fullyTransparent = child.fullyTransparent || factor == 0
	n.fullyOpaque = child.fullyOpaque && factor >= 1
	n.needsFace, n.needsArea, n.needsCentroid = child.needsFace, child.needsArea, child.needsCentroid
	return n
}

// NewBlendCompose composites src over dst with the given Porter-Duff
// operator and separable blend mode.
func NewBlendCompose(dst, src *Node, pd PorterDuff, blend BlendMode) *Node {
	n := &Node{Kind: KBlendCompose, Children: []*Node{dst, src}, PorterDuff: pd, Blend: blend}
	n.recomputeFlags()
	return n
}

// NewPathBoolean wraps a path reference; it is resolved away (replaced by
// Inside or Outside) during CAG winding resolution and never survives to
// compilation.
func NewPathBoolean(path scene.PathID, fill scene.FillRule, inside, outside *Node) *Node {
	n := &Node{Kind: KPathBoolean, Path: path, Fill: fill, Inside: inside, Outside: outside}
	n.needsFace = true
	return n
}

// NewFilter applies a 4x4 color matrix + translation to child's
// premultiplied [r,g,b,a].
func NewFilter(child *Node, matrix [4][4]float64, offset [4]float64) *Node {
	n := &Node{Kind: KFilter, Children: []*Node{child}, FilterMatrix: matrix, FilterOffset: offset}
	n.needsFace, n.needsArea, n.needsCentroid = child.needsFace, child.needsArea, child.needsCentroid
	return n
}

// NewImage samples a pixel buffer through transform (image space -> face
// space) with the given extend and resample modes.
func NewImage(w, h int, pixels []colorspace.Color, transform geom2.Matrix2x3, extend ExtendMode, resample ResampleMode) *Node {
	n := &Node{
		Kind: KImage, ImageW: w, ImageH: h, ImagePixels: pixels,
		ImageTransform: transform, Extend: extend, Resample: resample,
	}
	n.needsCentroid = true
	return n
}

// NewLinearBlend ramps between a and b along the segment (start,end),
// computing the interpolation ratio from the pixel centroid at eval time.
func NewLinearBlend(start, end geom2.Point2, a, b *Node) *Node {
	n := &Node{Kind: KLinearBlend, AxisStart: start, AxisEnd: end, BlendA: a, BlendB: b}
	n.needsCentroid = true
	n.fullyOpaque = a.fullyOpaque && b.fullyOpaque
	return n
}

// NewRadialBlend ramps between a (at center) and b (at the edge radius).
func NewRadialBlend(center, edge geom2.Point2, a, b *Node) *Node {
	return NewRadialBlendRing(center, edge, 0, a, b)
}

// NewRadialBlendRing is the annulus form: the ramp runs from distance
// inner (color a) out to the edge radius (color b). Gradient
// decomposition uses this so each stop interval gets its own ring.
func NewRadialBlendRing(center, edge geom2.Point2, inner float64, a, b *Node) *Node {
	n := &Node{Kind: KRadialBlend, AxisStart: center, AxisEnd: edge, RadialInner: inner, BlendA: a, BlendB: b}
	n.needsCentroid = true
	n.fullyOpaque = a.fullyOpaque && b.fullyOpaque
	return n
}

// NewLinearGradient/NewRadialGradient hold raw color stops; simplified()
// decomposes them into an exact LinearBlend/RadialBlend chain, one blend
// per stop interval, whatever the accuracy value; see gradient.go.
func NewLinearGradient(start, end geom2.Point2, stops []GradientStop, acc GradientAccuracy) *Node {
	n := &Node{Kind: KLinearGradient, AxisStart: start, AxisEnd: end, Stops: stops, Accuracy: acc}
	n.needsCentroid = true
	return n
}

func NewRadialGradient(center, edge geom2.Point2, stops []GradientStop, acc GradientAccuracy) *Node {
	n := &Node{Kind: KRadialGradient, AxisStart: center, AxisEnd: edge, Stops: stops, Accuracy: acc}
	n.needsCentroid = true
	return n
}

// NewBarycentricBlend interpolates three corner programs affinely across
// the given 2-D triangle using the pixel centroid.
func NewBarycentricBlend(tri [3]geom2.Point2, corners [3]*Node) *Node {
	n := &Node{Kind: KBarycentricBlend, TriangleXY: tri, TriangleW: [3]float64{1, 1, 1}, Corners: corners}
	n.needsCentroid = true
	return n
}

// NewBarycentricPerspectiveBlend is the perspective-correct variant: w
// carries each corner's 1/z (or homogeneous weight).
func NewBarycentricPerspectiveBlend(tri [3]geom2.Point2, w [3]float64, corners [3]*Node) *Node {
	n := &Node{Kind: KBarycentricPerspectiveBlend, TriangleXY: tri, TriangleW: w, Corners: corners}
	n.needsCentroid = true
	return n
}

// NewPhong builds an ambient/diffuse/specular shading node over N lights.
func NewPhong(ambient, diffuse, specular colorspace.Color, shininess float64, lights []Light) *Node {
	n := &Node{Kind: KPhong, Ambient: ambient, Diffuse: diffuse, Specular: specular, Shininess: shininess, Lights: lights}
	n.needsCentroid = true
	n.fullyOpaque = true
	return n
}

// NewNormalize wraps child and scales its premultiplied RGB to unit length
// as a 3-vector, leaving alpha unchanged (tree walk and VM alike).
func NewNormalize(child *Node) *Node {
	n := &Node{Kind: KNormalize, Children: []*Node{child}}
	n.needsCentroid = child.needsCentroid
	return n
}

// NewNormalDebug wraps child; evaluation and compilation pass the child's
// color through unchanged, with no normal-to-color mapping applied.
func NewNormalDebug(child *Node) *Node {
	n := &Node{Kind: KNormalDebug, Children: []*Node{child}}
	n.needsCentroid = child.needsCentroid
	n.fullyOpaque = true
	return n
}

// NewDepthSort holds a list of programs each paired with an oriented 3-D
// triangle; evaluation partitions the sub-face by the items' pairwise
// equal-depth lines and area-weights a depth-ordered Stack per cell (see
// depthsort.go).
func NewDepthSort(items []RenderPlanar) *Node {
	n := &Node{Kind: KDepthSort, Planar: items}
	n.needsFace = true
	n.needsArea = true
	n.needsCentroid = true
	return n
}

func NewPremultiply(child *Node) *Node {
	n := &Node{Kind: KPremultiply, Children: []*Node{child}}
	n.fullyTransparent, n.fullyOpaque = child.fullyTransparent, child.fullyOpaque
	return n
}

func NewUnpremultiply(child *Node) *Node {
	n := &Node{Kind: KUnpremultiply, Children: []*Node{child}}
	n.fullyTransparent, n.fullyOpaque = child.fullyTransparent, child.fullyOpaque
	return n
}

// NewColorSpaceConvert wraps child, converting its evaluated color from
// 'from' to 'to' (premultiply-aware; see colorspace.Convert). Returns
// child unchanged if from == to.
func NewColorSpaceConvert(child *Node, from, to colorspace.Space) *Node {
	if from == to {
		return child
	}
	n := &Node{Kind: KColorSpaceConvert, Children: []*Node{child}, From: from, To: to}
	n.fullyTransparent, n.fullyOpaque = child.fullyTransparent, child.fullyOpaque
	n.needsFace, n.needsArea, n.needsCentroid = child.needsFace, child.needsArea, child.needsCentroid
	return n
}

func (n *Node) recomputeFlags() {
	switch n.Kind {
	case KStack:
		n.fullyTransparent = len(n.Children) == 0
		opaque := false
		for _, c := range n.Children {
			if c.fullyOpaque {
				opaque = true
			}
			n.needsFace = n.needsFace || c.needsFace
			n.needsArea = n.needsArea || c.needsArea
			n.needsCentroid = n.needsCentroid || c.needsCentroid
		}
		n.fullyOpaque = opaque
	case KBlendCompose:
		dst, src := n.Children[0], n.Children[1]
		n.fullyTransparent = dst.fullyTransparent && src.fullyTransparent
		n.fullyOpaque = src.fullyOpaque && n.PorterDuff == PorterDuffOver
		n.needsFace = dst.needsFace || src.needsFace
		n.needsArea = dst.needsArea || src.needsArea
		n.needsCentroid = dst.needsCentroid || src.needsCentroid
	}
}
