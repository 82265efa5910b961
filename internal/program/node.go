// Package program implements the render-program expression DAG: a closed
// set of node kinds, structural simplification and equality, transform
// push-down, compilation to a flat instruction stream, and a stack-machine
// evaluator over premultiplied linear color. Nodes are a single tagged
// struct rather than an interface hierarchy, so Equals can be a flat
// structural comparison over a fixed small variant set.
package program

import (
	"vraster/internal/colorspace"
	"vraster/internal/geom2"
	"vraster/internal/scene"
)

// Kind enumerates the closed set of render-program node variants.
type Kind int

const (
	KColor Kind = iota
	KStack
	KAlpha
	KBlendCompose
	KPathBoolean
	KFilter
	KImage
	KLinearBlend
	KRadialBlend
	KLinearGradient
	KRadialGradient
	KBarycentricBlend
	KBarycentricPerspectiveBlend
	KPhong
	KNormalize
	KNormalDebug
	KDepthSort
	KPremultiply
	KUnpremultiply
	KColorSpaceConvert
)

// BlendMode names a separable per-channel blend function applied before
// Porter-Duff compositing.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
)

// PorterDuff names a compositing operator (source-over, source-in, etc).
type PorterDuff int

const (
	PorterDuffOver PorterDuff = iota
	PorterDuffIn
	PorterDuffOut
	PorterDuffAtop
	PorterDuffXor
)

// ExtendMode controls Image sampling outside [0,1].
type ExtendMode int

const (
	ExtendPad ExtendMode = iota
	ExtendRepeat
	ExtendReflect
)

// ResampleMode selects the Image node's reconstruction kernel.
type ResampleMode int

const (
	ResampleNearest ResampleMode = iota
	ResampleBilinear
	ResampleAnalyticMitchellNetravali
)

// GradientAccuracy is carried by LinearGradient/RadialGradient and kept
// through equality and serialization. Both values decompose into the same
// exact chain of LinearBlend/RadialBlend nodes at `simplified` time, so
// evaluation does not depend on it.
type GradientAccuracy int

const (
	AccuracyLUT256 GradientAccuracy = iota
	AccuracyExact
)

// GradientStop is one color at a normalized position along a gradient axis.
type GradientStop struct {
	Position float64
	Color    colorspace.Color
}

// Light is one point light term for the Phong node.
type Light struct {
	Position  geom2.Point2
	Intensity colorspace.Color
}

// RenderPlanar is one item of a DepthSort node: a program evaluated inside
// an oriented 3-D triangle (for front/back ordering against the other
// items), expressed in the output's 2-D coordinate space with per-vertex
// depth so front/back half-plane tests don't need a full 3-D pipeline.
type RenderPlanar struct {
	Program    *Node
	TriangleXY [3]geom2.Point2
	TriangleZ  [3]float64
}

// Node is an immutable expression-DAG node. Children are shared by
// identity; equality is structural (Equals). Exactly the fields relevant
// to Kind are populated; unused fields are the zero value, matching the
// compactness of a tagged-union node without resorting to an interface
// per variant.
type Node struct {
	Kind Kind

	// KColor
	Color colorspace.Color

	// KStack and most composite kinds
	Children []*Node

	// KAlpha
	AlphaFactor float64

	// KBlendCompose
	PorterDuff PorterDuff
	Blend      BlendMode

	// KPathBoolean
	Path    scene.PathID
	Fill    scene.FillRule
	Inside  *Node
	Outside *Node

	// KFilter: 4x4 color matrix (row-major, operating on premultiplied
	// [r,g,b,a]) plus translation.
	FilterMatrix [4][4]float64
	FilterOffset [4]float64

	// KImage
	ImageW, ImageH int
	ImagePixels    []colorspace.Color // premultiplied, row-major
	ImageTransform geom2.Matrix2x3    // image space -> face space
	Extend         ExtendMode
	Resample       ResampleMode

	// KLinearBlend / KRadialBlend
	AxisStart, AxisEnd geom2.Point2 // linear: endpoints; radial: center+edge
	RadialInner        float64      // radial only: inner radius where the ramp starts
	BlendA, BlendB     *Node

	// KLinearGradient / KRadialGradient
	Stops    []GradientStop
	Accuracy GradientAccuracy

	// KBarycentricBlend / KBarycentricPerspectiveBlend
	TriangleXY [3]geom2.Point2
	TriangleW  [3]float64 // perspective weights; all 1 for the affine variant
	Corners    [3]*Node

	// KPhong
	Ambient, Diffuse, Specular colorspace.Color
	Shininess                  float64
	Lights                     []Light

	// KDepthSort
	Planar []RenderPlanar

	// KColorSpaceConvert
	From, To colorspace.Space

	fullyTransparent bool
	fullyOpaque      bool
	needsFace        bool
	needsArea        bool
	needsCentroid    bool
}

// NeedsFace, NeedsArea, NeedsCentroid report the evaluation-context fields
// this node (or its children) requires populated.
func (n *Node) NeedsFace() bool     { return n.needsFace }
func (n *Node) NeedsArea() bool     { return n.needsArea }
func (n *Node) NeedsCentroid() bool { return n.needsCentroid }

// IsFullyTransparent/IsFullyOpaque report the cached flags computed at
// construction from this node's children.
func (n *Node) IsFullyTransparent() bool { return n.fullyTransparent }
func (n *Node) IsFullyOpaque() bool      { return n.fullyOpaque }
