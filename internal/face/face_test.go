package face

import (
	"math"
	"testing"

	"vraster/internal/geom2"
)

func unitSquare() ClippableFace {
	return NewPolygonal([]Polygon{{Vertices: []geom2.Point2{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	}}})
}

func TestAreaAgreesAcrossRepresentations(t *testing.T) {
	p := unitSquare()
	e := ToEdged(p)
	areaP := GetArea(p)
	areaE := GetArea(e)
	if math.Abs(areaP-areaE) > 1e-9 {
		t.Fatalf("area mismatch: polygonal=%v edged=%v", areaP, areaE)
	}
	if math.Abs(areaP-1.0) > 1e-9 {
		t.Fatalf("expected unit area, got %v", areaP)
	}
}

func TestClippedAreaNeverExceedsOriginal(t *testing.T) {
	p := unitSquare()
	b := geom2.NewBounds(0.25, 0.25, 0.75, 0.75)
	clipped := GetClipped(p, b)
	area := GetArea(clipped)
	if area > GetArea(p)+1e-9 {
		t.Fatalf("clipped area %v exceeds original %v", area, GetArea(p))
	}
	if math.Abs(area-0.25) > 1e-6 {
		t.Fatalf("expected 0.25 clipped area, got %v", area)
	}
}

func TestClippedAreaEqualsOriginalWhenContained(t *testing.T) {
	p := unitSquare()
	b := geom2.NewBounds(-1, -1, 2, 2)
	clipped := GetClipped(p, b)
	if math.Abs(GetArea(clipped)-GetArea(p)) > 1e-9 {
		t.Fatalf("expected unchanged area, got %v vs %v", GetArea(clipped), GetArea(p))
	}
}

func TestBinaryClipAreasSumToOriginal(t *testing.T) {
	p := unitSquare()
	lo, hi := GetBinaryXClip(p, 0.5)
	sum := GetArea(lo) + GetArea(hi)
	if math.Abs(sum-GetArea(p)) > 1e-8 {
		t.Fatalf("binary clip areas %v + %v != %v", GetArea(lo), GetArea(hi), GetArea(p))
	}
}

func TestStripeClipAreasSumToOriginal(t *testing.T) {
	p := unitSquare()
	slabs := GetStripeLineClip(p, geom2.Point2{X: 1, Y: 0}, []float64{0.25, 0.5, 0.75})
	var sum float64
	for _, s := range slabs {
		sum += GetArea(s)
	}
	if math.Abs(sum-GetArea(p)) > 1e-8 {
		t.Fatalf("stripe clip areas sum to %v, want %v", sum, GetArea(p))
	}
}

func TestCentroidOfUnitSquare(t *testing.T) {
	p := unitSquare()
	area := GetArea(p)
	cx, cy := GetCentroid(p, area)
	if math.Abs(cx-0.5) > 1e-9 || math.Abs(cy-0.5) > 1e-9 {
		t.Fatalf("expected centroid (0.5,0.5), got (%v,%v)", cx, cy)
	}
}

func TestCircularClipAreasSumToOriginal(t *testing.T) {
	p := unitSquare()
	inside, outside := GetBinaryCircularClip(p, geom2.Point2{X: 0.5, Y: 0.5}, 0.3, 1e-6)
	sum := GetArea(inside) + GetArea(outside)
	if math.Abs(sum-GetArea(p)) > 1e-3 {
		t.Fatalf("circular clip areas sum to %v, want %v", sum, GetArea(p))
	}
}

func rect(x0, y0, x1, y1 float64) ClippableFace {
	return NewPolygonal([]Polygon{{Vertices: []geom2.Point2{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	}}})
}

func TestBilinearFilterClosedForm(t *testing.T) {
	// Kernel centered at (0.5, 0.5) of pixel (0,0).
	cases := []struct {
		name string
		face ClippableFace
		want float64
	}{
		// Full support coverage integrates the normalized kernel to 1.
		{"fullCoverage", rect(-2, -2, 3, 3), 1},
		// A half-plane through the center of an even kernel is exactly half.
		{"halfPlane", rect(-2, -2, 0.5, 3), 0.5},
		// Unit square centered on the kernel: the separable closed form
		// (integral of the triangle kernel over [-1/2,1/2]) squared.
		{"centeredUnitSquare", rect(0, 0, 1, 1), 0.75 * 0.75},
	}
	for _, tc := range cases {
		got := GetBilinearFiltered(tc.face, 0, 0, 0.5, 0.5)
		if math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMitchellNetravaliFilterClosedForm(t *testing.T) {
	// Integral of the B=C=1/3 kernel over [-1/2,1/2] is 437/576; the
	// centered unit square's weight is its square.
	centered := 437.0 / 576
	cases := []struct {
		name string
		face ClippableFace
		want float64
	}{
		{"fullCoverage", rect(-3, -3, 4, 4), 1},
		{"halfPlane", rect(-3, -3, 0.5, 4), 0.5},
		{"centeredUnitSquare", rect(0, 0, 1, 1), centered * centered},
	}
	for _, tc := range cases {
		got := GetMitchellNetravaliFiltered(tc.face, 0, 0, 0.5, 0.5)
		if math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFilteredAgreesAcrossRepresentations(t *testing.T) {
	p := rect(0.25, -1, 0.8, 2)
	e := ToEdged(p)
	wp := GetBilinearFiltered(p, 0, 0, 0.5, 0.5)
	we := GetBilinearFiltered(e, 0, 0, 0.5, 0.5)
	if math.Abs(wp-we) > 1e-12 {
		t.Fatalf("filter weight differs across representations: %v vs %v", wp, we)
	}
}

func TestGetTransformedDistributesOverClipping(t *testing.T) {
	p := unitSquare()
	m := geom2.Translation(2, 3)
	b := geom2.NewBounds(0.25, 0.25, 0.75, 0.75)

	clipThenTransform := GetTransformed(GetClipped(p, b), m)
	transformThenClip := GetClipped(GetTransformed(p, m), m.TransformBounds(b))

	if math.Abs(GetArea(clipThenTransform)-GetArea(transformThenClip)) > 1e-8 {
		t.Fatalf("transform not distributive over clipping: %v vs %v",
			GetArea(clipThenTransform), GetArea(transformThenClip))
	}
}
