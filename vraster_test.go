package vraster

import (
	"math"
	"testing"

	"vraster/internal/colorspace"
	"vraster/internal/program"
)

func square(id PathID, x0, y0, x1, y1 float64) RenderPath {
	return RenderPath{
		ID:   id,
		Fill: FillNonzero,
		Subpaths: []Subpath{{Vertices: []Point2{
			{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
		}}},
	}
}

func TestPolygonalBooleanAreas(t *testing.T) {
	a := square(0, 0, 0, 1, 1)
	b := square(1, 0.5, 0.5, 1.5, 1.5)
	var pb PolygonalBoolean

	union, err := pb.Union(a, b)
	if err != nil {
		t.Fatalf("union: %v", err)
	}
	if got := PolygonsArea(union); math.Abs(got-1.75) > 1e-6 {
		t.Fatalf("union area %v, want 1.75", got)
	}

	inter, err := pb.Intersection(a, b)
	if err != nil {
		t.Fatalf("intersection: %v", err)
	}
	if got := PolygonsArea(inter); math.Abs(got-0.25) > 1e-6 {
		t.Fatalf("intersection area %v, want 0.25", got)
	}

	diff, err := pb.Difference(a, b)
	if err != nil {
		t.Fatalf("difference: %v", err)
	}
	if got := PolygonsArea(diff); math.Abs(got-0.75) > 1e-6 {
		t.Fatalf("difference area %v, want 0.75", got)
	}

	overlaps, err := pb.GetOverlaps(a, b)
	if err != nil {
		t.Fatalf("overlaps: %v", err)
	}
	total := PolygonsArea(overlaps.AOnly) + PolygonsArea(overlaps.BOnly) + PolygonsArea(overlaps.Intersection)
	if math.Abs(total-1.75) > 1e-6 {
		t.Fatalf("overlap partition area %v, want 1.75", total)
	}
}

func TestLinearGradientMidpointPixel(t *testing.T) {
	// Red at (0,0) to blue at (10,0) across a 10x10 box, box filter,
	// sRGB output: pixel (5,5)'s center sits at gradient parameter 0.55.
	path := square(0, 0, 0, 10, 10)
	stops := []GradientStop{
		{Position: 0, Color: Color{R: 1, A: 1, Space: colorspace.LinearSRGB}},
		{Position: 1, Color: Color{B: 1, A: 1, Space: colorspace.LinearSRGB}},
	}
	gradient := NewLinearGradient(Point2{}, Point2{X: 10}, stops, program.AccuracyExact)
	prog := NewPathBoolean(path.ID, path.Fill, gradient, NewColor(Color{Premultiplied: true}))

	out, err := Rasterize(prog, []RenderPath{path}, Bounds2{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}, RasterizationOptions{})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}

	i := out.Stride*5 + 4*5
	wantLin := colorspace.Color{R: 0.45, B: 0.55, A: 1, Space: colorspace.LinearSRGB, Premultiplied: true}
	want := colorspace.Convert(wantLin, colorspace.SRGB)
	for j, comp := range []float64{want.R, want.G, want.B, want.A} {
		got := float64(out.Pix[i+j]) / 255
		if math.Abs(got-comp) > 1.5/255 {
			t.Fatalf("component %d: got %v, want %v", j, got, comp)
		}
	}
}

func TestRasterizeRejectsInvalidPath(t *testing.T) {
	bad := RenderPath{ID: 0, Fill: FillNonzero}
	_, err := Rasterize(NewColor(Color{R: 1, A: 1}), []RenderPath{bad}, Bounds2{MaxX: 1, MaxY: 1}, RasterizationOptions{})
	var e *Error
	if err == nil {
		t.Fatal("expected invalid-path error")
	}
	if e, _ = err.(*Error); e == nil || e.Kind != ErrInvalidPath {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
}

func TestVectorCanvasExport(t *testing.T) {
	c := NewVectorCanvas()
	c.FillColor(square(0, 0, 0, 2, 2), Color{R: 1, A: 1, Space: colorspace.LinearSRGB})
	c.FillColor(square(0, 1, 1, 3, 3), Color{R: 1, A: 1, Space: colorspace.LinearSRGB})

	out, err := c.ToRaster(Bounds2{MaxX: 4, MaxY: 4}, RasterizationOptions{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	// Interior of both squares is the same red.
	i := out.Stride*0 + 4*0
	j := out.Stride*2 + 4*2
	if out.Pix[i+0] != out.Pix[j+0] || out.Pix[i+3] != 255 {
		t.Fatalf("expected uniform red fill, got %v vs %v", out.Pix[i:i+4], out.Pix[j:j+4])
	}
	// Outside both squares stays transparent.
	k := out.Stride*3 + 4*0
	if out.Pix[k+3] != 0 {
		t.Fatalf("expected empty pixel, got %v", out.Pix[k:k+4])
	}
}

func TestDepthSortRasterization(t *testing.T) {
	// Two triangles covering a 2x2 square whose depths cross at x=1: red
	// is in front left of the crossing, blue right of it.
	path := square(0, 0, 0, 2, 2)
	tri := [3]Point2{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 2}}
	ds := NewDepthSort([]RenderPlanar{
		{Program: NewColor(Color{R: 1, A: 1, Space: colorspace.LinearSRGB, Premultiplied: true}), TriangleXY: tri, TriangleZ: [3]float64{0, 1, 0.5}},
		{Program: NewColor(Color{B: 1, A: 1, Space: colorspace.LinearSRGB, Premultiplied: true}), TriangleXY: tri, TriangleZ: [3]float64{1, 0, 0.5}},
	})
	prog := NewPathBoolean(path.ID, path.Fill, ds, NewColor(Color{Premultiplied: true}))

	out, err := Rasterize(prog, []RenderPath{path}, Bounds2{MaxX: 2, MaxY: 2}, RasterizationOptions{})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	left := out.Pix[0:4]  // pixel (0,0), centroid left of the crossing
	right := out.Pix[4:8] // pixel (1,0), centroid right of it
	if left[0] == 0 || left[2] != 0 {
		t.Fatalf("left pixel should be red, got %v", left)
	}
	if right[2] == 0 || right[0] != 0 {
		t.Fatalf("right pixel should be blue, got %v", right)
	}
}

func TestSerializationPublicRoundTrip(t *testing.T) {
	p := NewStack(
		NewColor(Color{R: 1, A: 1}),
		NewAlpha(NewColor(Color{B: 1, A: 1}), 0.5),
	)
	back, err := DeserializeProgram(SerializeProgram(p))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if !p.Equals(back) {
		t.Fatal("round trip lost structure")
	}
}

func TestInstructionStreamPublicRoundTrip(t *testing.T) {
	p := NewStack(
		NewColor(Color{R: 1, A: 1, Premultiplied: true}),
		NewAlpha(NewColor(Color{B: 1, A: 1, Premultiplied: true}), 0.5),
	)
	ins, err := CompileProgram(p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	data, err := EncodeProgram(ins)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeProgram(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, err := ExecuteProgram(decoded, program.Context{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := program.Evaluate(p, program.Context{})
	if math.Abs(got.R-want.R) > 1e-6 || math.Abs(got.B-want.B) > 1e-6 || math.Abs(got.A-want.A) > 1e-6 {
		t.Fatalf("vm %+v vs tree %+v", got, want)
	}
}
