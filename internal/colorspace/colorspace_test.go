package colorspace

import "testing"

func within(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func TestSRGBRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.01, 0.2, 0.5, 0.8, 1.0} {
		got := LinearToSRGB(SRGBToLinear(v))
		if !within(got, v, 1e-9) {
			t.Fatalf("round trip failed for %v: got %v", v, got)
		}
	}
}

func TestOklabRoundTrip(t *testing.T) {
	r, g, b := 0.3, 0.6, 0.9
	l, a, bb := LinearSRGBToOklab(r, g, b)
	r2, g2, b2 := OklabToLinearSRGB(l, a, bb)
	if !within(r, r2, 1e-6) || !within(g, g2, 1e-6) || !within(b, b2, 1e-6) {
		t.Fatalf("oklab round trip mismatch: (%v,%v,%v) vs (%v,%v,%v)", r, g, b, r2, g2, b2)
	}
}

func TestPremultiplyUnpremultiplyRoundTrip(t *testing.T) {
	c := Color{R: 0.4, G: 0.2, B: 0.8, A: 0.5, Space: LinearSRGB}
	pre := Premultiply(c)
	back := Unpremultiply(pre)
	if !within(back.R, c.R, 1e-9) || !within(back.G, c.G, 1e-9) || !within(back.B, c.B, 1e-9) {
		t.Fatalf("premultiply round trip mismatch: %+v vs %+v", back, c)
	}
}

func TestConvertPathIsMinimal(t *testing.T) {
	path := Path(SRGB, Oklab)
	if len(path) != 3 {
		t.Fatalf("expected SRGB->LinearSRGB->Oklab (3 nodes), got %v", path)
	}
	if path[0] != SRGB || path[1] != LinearSRGB || path[2] != Oklab {
		t.Fatalf("unexpected path: %v", path)
	}
}

func TestConvertIdentity(t *testing.T) {
	c := Color{R: 0.1, G: 0.2, B: 0.3, A: 1, Space: DisplayP3}
	got := Convert(c, DisplayP3)
	if got != c {
		t.Fatalf("identity convert changed color: %+v", got)
	}
}

func TestConvertRoundTripSRGBToLinearP3(t *testing.T) {
	c := Color{R: 0.5, G: 0.4, B: 0.3, A: 1, Space: SRGB}
	viaP3 := Convert(c, LinearDisplayP3)
	back := Convert(viaP3, SRGB)
	if !within(back.R, c.R, 1e-4) || !within(back.G, c.G, 1e-4) || !within(back.B, c.B, 1e-4) {
		t.Fatalf("round trip through Display-P3 mismatch: %+v vs %+v", back, c)
	}
}
