package program

import (
	"math"
	"testing"

	"vraster/internal/colorspace"
	"vraster/internal/face"
	"vraster/internal/geom2"
)

func rgba(r, g, b, a float64) colorspace.Color {
	return colorspace.Color{R: r, G: g, B: b, A: a, Space: colorspace.LinearSRGB}
}

func colorsClose(a, b colorspace.Color, eps float64) bool {
	a = colorspace.Premultiply(a)
	b = colorspace.Premultiply(b)
	return math.Abs(a.R-b.R) <= eps && math.Abs(a.G-b.G) <= eps &&
		math.Abs(a.B-b.B) <= eps && math.Abs(a.A-b.A) <= eps
}

func TestSimplifyIsIdempotent(t *testing.T) {
	progs := []*Node{
		NewStack(NewColor(rgba(1, 0, 0, 1)), NewAlpha(NewColor(rgba(0, 0, 1, 1)), 0.5)),
		NewAlpha(NewAlpha(NewColor(rgba(0, 1, 0, 1)), 0.5), 0.5),
		NewColorSpaceConvert(NewColorSpaceConvert(NewColor(rgba(1, 1, 1, 1)), colorspace.SRGB, colorspace.LinearSRGB), colorspace.LinearSRGB, colorspace.SRGB),
		NewLinearGradient(geom2.Point2{}, geom2.Point2{X: 1}, []GradientStop{
			{Position: 0, Color: rgba(1, 0, 0, 1)}, {Position: 1, Color: rgba(0, 0, 1, 1)},
		}, AccuracyExact),
	}
	for i, p := range progs {
		once := Simplify(p)
		twice := Simplify(once)
		if !once.Equals(twice) {
			t.Fatalf("program %d: simplify not idempotent", i)
		}
	}
}

func TestSimplifyPreservesEvaluation(t *testing.T) {
	ctx := Context{Centroid: geom2.Point2{X: 0.3, Y: 0.7}}
	progs := []*Node{
		NewStack(NewColor(rgba(0.2, 0.4, 0.6, 1)), NewAlpha(NewColor(rgba(0.9, 0.1, 0.3, 1)), 0.5)),
		NewAlpha(NewAlpha(NewColor(rgba(0, 1, 0, 0.8)), 0.5), 0.5),
		NewLinearGradient(geom2.Point2{}, geom2.Point2{X: 1}, []GradientStop{
			{Position: 0, Color: rgba(1, 0, 0, 1)},
			{Position: 0.5, Color: rgba(0, 1, 0, 1)},
			{Position: 1, Color: rgba(0, 0, 1, 1)},
		}, AccuracyExact),
		NewRadialGradient(geom2.Point2{}, geom2.Point2{X: 1}, []GradientStop{
			{Position: 0, Color: rgba(1, 0, 0, 1)},
			{Position: 0.4, Color: rgba(0, 1, 0, 1)},
			{Position: 1, Color: rgba(0, 0, 1, 1)},
		}, AccuracyExact),
	}
	for i, p := range progs {
		want := Evaluate(p, ctx)
		got := Evaluate(Simplify(p), ctx)
		if !colorsClose(want, got, 1e-6) {
			t.Fatalf("program %d: simplify changed evaluation: %+v vs %+v", i, want, got)
		}
	}
}

func TestNestedAlphaCollapses(t *testing.T) {
	p := Simplify(NewAlpha(NewAlpha(NewColor(rgba(1, 0, 0, 1)), 0.5), 0.4))
	if p.Kind != KColor {
		t.Fatalf("expected nested alpha over a constant to fold to a color, got kind %d", p.Kind)
	}
	if math.Abs(p.Color.A-0.2) > 1e-9 {
		t.Fatalf("expected folded alpha 0.2, got %v", p.Color.A)
	}
}

func TestStackDropsTransparentAndMergesConstants(t *testing.T) {
	p := Simplify(NewStack(
		NewColor(rgba(1, 0, 0, 1)),
		NewColor(rgba(0, 0, 0, 0)),
		NewColor(rgba(0, 1, 0, 0.5)),
	))
	if p.Kind != KColor {
		t.Fatalf("expected constant stack to fold to one color, got kind %d", p.Kind)
	}
}

func TestOpaqueLayerHidesDeeperOnes(t *testing.T) {
	ctx := Context{}
	p := NewStack(
		NewColor(rgba(0, 1, 0, 1)), // hidden behind the opaque red
		NewColor(rgba(1, 0, 0, 1)),
	)
	got := Evaluate(p, ctx)
	if !colorsClose(got, rgba(1, 0, 0, 1), 1e-9) {
		t.Fatalf("front opaque layer should win, got %+v", got)
	}
}

func TestStackCompositesFrontOverBack(t *testing.T) {
	ctx := Context{}
	p := NewStack(
		NewColor(rgba(1, 0, 0, 1)),                // back: opaque red
		NewAlpha(NewColor(rgba(0, 0, 1, 1)), 0.5), // front: half blue
	)
	got := colorspace.Premultiply(Evaluate(p, ctx))
	if math.Abs(got.R-0.5) > 1e-9 || math.Abs(got.B-0.5) > 1e-9 || math.Abs(got.A-1) > 1e-9 {
		t.Fatalf("expected half blue over red, got %+v", got)
	}
}

func TestTransformedPushesIntoGradientAxis(t *testing.T) {
	g := NewLinearGradient(geom2.Point2{}, geom2.Point2{X: 1}, []GradientStop{
		{Position: 0, Color: rgba(0, 0, 0, 1)}, {Position: 1, Color: rgba(1, 1, 1, 1)},
	}, AccuracyExact)
	moved := Transformed(g, geom2.Translation(5, 0))
	if moved.AxisStart.X != 5 || moved.AxisEnd.X != 6 {
		t.Fatalf("axis not translated: %+v %+v", moved.AxisStart, moved.AxisEnd)
	}
}

func TestDepthSortSplitOrdersByDepth(t *testing.T) {
	red := NewColor(rgba(1, 0, 0, 1))
	blue := NewColor(rgba(0, 0, 1, 1))
	// Two triangles covering the unit square whose depths cross at x=0.5:
	// red is in front (smaller z) on the left, blue in front on the right.
	tri := [3]geom2.Point2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0.5, Y: 1}}
	ds := NewDepthSort([]RenderPlanar{
		{Program: red, TriangleXY: tri, TriangleZ: [3]float64{0, 1, 0.5}},
		{Program: blue, TriangleXY: tri, TriangleZ: [3]float64{1, 0, 0.5}},
	})

	left := Evaluate(ds, Context{Centroid: geom2.Point2{X: 0.2, Y: 0.1}})
	right := Evaluate(ds, Context{Centroid: geom2.Point2{X: 0.8, Y: 0.1}})
	if !colorsClose(left, rgba(1, 0, 0, 1), 1e-9) {
		t.Fatalf("left of crossing should show red, got %+v", left)
	}
	if !colorsClose(right, rgba(0, 0, 1, 1), 1e-9) {
		t.Fatalf("right of crossing should show blue, got %+v", right)
	}
}

func TestDepthSortStraddlingFaceBlends(t *testing.T) {
	// The same crossing triangles evaluated over a whole unit-square
	// sub-face that straddles the crossing at x=0.5: the result must be
	// the area-weighted blend of the two half-plane cells, half red and
	// half blue, not a winner-take-all pick from the centroid's side.
	red := NewColor(rgba(1, 0, 0, 1))
	blue := NewColor(rgba(0, 0, 1, 1))
	tri := [3]geom2.Point2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0.5, Y: 1}}
	ds := NewDepthSort([]RenderPlanar{
		{Program: red, TriangleXY: tri, TriangleZ: [3]float64{0, 1, 0.5}},
		{Program: blue, TriangleXY: tri, TriangleZ: [3]float64{1, 0, 0.5}},
	})

	f := face.NewPolygonal([]face.Polygon{{Vertices: []geom2.Point2{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	}}})
	ctx := Context{Face: &f, Area: 1, Centroid: geom2.Point2{X: 0.5, Y: 0.5}}
	got := colorspace.Premultiply(Evaluate(ds, ctx))
	if math.Abs(got.R-0.5) > 1e-6 || math.Abs(got.B-0.5) > 1e-6 || math.Abs(got.A-1) > 1e-6 {
		t.Fatalf("straddling face should blend half red, half blue; got %+v", got)
	}
}

func TestBarycentricBlendAtCorners(t *testing.T) {
	tri := [3]geom2.Point2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	p := NewBarycentricBlend(tri, [3]*Node{
		NewColor(rgba(1, 0, 0, 1)), NewColor(rgba(0, 1, 0, 1)), NewColor(rgba(0, 0, 1, 1)),
	})
	for i, corner := range tri {
		got := Evaluate(p, Context{Centroid: corner})
		want := [3]colorspace.Color{rgba(1, 0, 0, 1), rgba(0, 1, 0, 1), rgba(0, 0, 1, 1)}[i]
		if !colorsClose(got, want, 1e-9) {
			t.Fatalf("corner %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestCompileRoundTripMatchesEvaluate(t *testing.T) {
	ctx := Context{Centroid: geom2.Point2{X: 0.25, Y: 0.5}}
	progs := []*Node{
		NewStack(NewColor(rgba(1, 0, 0, 1)), NewAlpha(NewColor(rgba(0, 0, 1, 1)), 0.5)),
		NewLinearBlend(geom2.Point2{}, geom2.Point2{X: 1}, NewColor(rgba(1, 0, 0, 1)), NewColor(rgba(0, 0, 1, 1))),
		NewBlendCompose(NewColor(rgba(0.5, 0.5, 0, 1)), NewColor(rgba(0, 0, 1, 0.5)), PorterDuffOver, BlendMultiply),
		NewColorSpaceConvert(NewColor(colorspace.Color{R: 0.5, G: 0.25, B: 0.75, A: 1, Space: colorspace.SRGB}), colorspace.SRGB, colorspace.LinearSRGB),
	}
	for i, p := range progs {
		ins, err := Compile(p)
		if err != nil {
			t.Fatalf("program %d: compile: %v", i, err)
		}
		data, err := EncodeBinary(ins)
		if err != nil {
			t.Fatalf("program %d: encode: %v", i, err)
		}
		decoded, err := DecodeBinary(data)
		if err != nil {
			t.Fatalf("program %d: decode: %v", i, err)
		}
		got, err := Execute(decoded, ctx)
		if err != nil {
			t.Fatalf("program %d: execute: %v", i, err)
		}
		want := Evaluate(p, ctx)
		if !colorsClose(got, want, 1e-6) {
			t.Fatalf("program %d: vm %+v vs tree %+v", i, got, want)
		}
	}
}

func TestOpaqueJumpSkipsDeeperLayers(t *testing.T) {
	p := NewStack(
		NewColor(rgba(0, 1, 0, 1)),
		NewColor(rgba(1, 0, 0, 1)),
	)
	ins, err := Compile(p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	sawJump := false
	for _, in := range ins {
		if in.Op == OpOpaqueJump {
			sawJump = true
		}
	}
	if !sawJump {
		t.Fatal("expected an opaque jump in a multi-layer stack")
	}
	got, err := Execute(ins, Context{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !colorsClose(got, rgba(1, 0, 0, 1), 1e-9) {
		t.Fatalf("expected opaque front layer, got %+v", got)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	progs := []*Node{
		NewColor(rgba(0.25, 0.5, 0.75, 1)),
		NewStack(NewColor(rgba(1, 0, 0, 1)), NewAlpha(NewColor(rgba(0, 0, 1, 1)), 0.5)),
		NewLinearGradient(geom2.Point2{}, geom2.Point2{X: 10}, []GradientStop{
			{Position: 0, Color: rgba(1, 0, 0, 1)}, {Position: 1, Color: rgba(0, 0, 1, 1)},
		}, AccuracyExact),
		NewPhong(rgba(0.1, 0.1, 0.1, 1), rgba(0.7, 0.2, 0.2, 1), rgba(1, 1, 1, 1), 32, []Light{
			{Position: geom2.Point2{X: 3, Y: 4}, Intensity: rgba(1, 1, 1, 1)},
		}),
		NewColorSpaceConvert(NewColor(rgba(1, 1, 1, 1)), colorspace.LinearSRGB, colorspace.Oklab),
	}
	for i, p := range progs {
		back, err := Deserialize(Serialize(p))
		if err != nil {
			t.Fatalf("program %d: deserialize: %v", i, err)
		}
		if !p.Equals(back) {
			t.Fatalf("program %d: round trip not structurally equal", i)
		}
	}
}

func TestDeserializeRejectsUnknownTag(t *testing.T) {
	if _, err := Deserialize([]byte{0xFE}); err == nil {
		t.Fatal("expected unknown-tag error")
	}
}

func TestGradientDecompositionMatchesSampling(t *testing.T) {
	stops := []GradientStop{
		{Position: 0, Color: rgba(1, 0, 0, 1)},
		{Position: 0.3, Color: rgba(0, 1, 0, 1)},
		{Position: 1, Color: rgba(0, 0, 1, 1)},
	}
	g := NewLinearGradient(geom2.Point2{}, geom2.Point2{X: 1}, stops, AccuracyExact)
	chain := DecomposeGradient(g)
	for _, x := range []float64{-0.5, 0, 0.1, 0.3, 0.6, 1, 1.5} {
		ctx := Context{Centroid: geom2.Point2{X: x}}
		want := Evaluate(g, ctx)
		got := Evaluate(chain, ctx)
		if !colorsClose(want, got, 1e-9) {
			t.Fatalf("x=%v: chain %+v vs stops %+v", x, got, want)
		}
	}

	r := NewRadialGradient(geom2.Point2{}, geom2.Point2{X: 1}, stops, AccuracyExact)
	rchain := DecomposeGradient(r)
	for _, x := range []float64{0, 0.15, 0.3, 0.65, 1, 2} {
		ctx := Context{Centroid: geom2.Point2{X: x}}
		want := Evaluate(r, ctx)
		got := Evaluate(rchain, ctx)
		if !colorsClose(want, got, 1e-9) {
			t.Fatalf("r=%v: chain %+v vs stops %+v", x, got, want)
		}
	}
}

func TestPremultiplyRoundTripNodes(t *testing.T) {
	c := rgba(0.4, 0.6, 0.8, 0.5)
	p := Simplify(NewPremultiply(NewUnpremultiply(NewColor(c))))
	if p.Kind != KColor {
		t.Fatalf("inverse pair should cancel, got kind %d", p.Kind)
	}
}
