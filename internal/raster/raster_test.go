package raster

import (
	"math"
	"testing"

	"vraster/internal/colorspace"
	"vraster/internal/face"
	"vraster/internal/geom2"
	"vraster/internal/program"
)

func solidSquare(x0, y0, x1, y1 float64, prog *program.Node) program.RenderableFace {
	f := face.NewPolygonal([]face.Polygon{{Vertices: []geom2.Point2{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	}}})
	return program.RenderableFace{Face: f, Program: prog, Bounds: face.GetBounds(f)}
}

func red() *program.Node {
	return program.NewColor(colorspace.Color{R: 1, A: 1, Space: colorspace.LinearSRGB, Premultiplied: true})
}

func TestBoxFilterCoverageEqualsArea(t *testing.T) {
	faces := []program.RenderableFace{solidSquare(0, 0, 4, 4, red())}
	out, err := Rasterize(faces, geom2.NewBounds(0, 0, 8, 8), Options{})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}

	var alphaSum float64
	for y := 0; y < out.Height(); y++ {
		for x := 0; x < out.Width(); x++ {
			alphaSum += out.At(x, y).A
		}
	}
	if math.Abs(alphaSum-16) > 1e-6 {
		t.Fatalf("total coverage %v, want 16", alphaSum)
	}

	if c := out.At(1, 1); math.Abs(c.A-1) > 1e-9 || math.Abs(c.R-1) > 1e-9 {
		t.Fatalf("interior pixel not fully covered: %+v", c)
	}
	if c := out.At(6, 6); c.A != 0 {
		t.Fatalf("exterior pixel has coverage: %+v", c)
	}
}

func TestHalfCoveredPixel(t *testing.T) {
	faces := []program.RenderableFace{solidSquare(0, 0, 0.5, 1, red())}
	out, err := Rasterize(faces, geom2.NewBounds(0, 0, 1, 1), Options{})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if c := out.At(0, 0); math.Abs(c.A-0.5) > 1e-8 {
		t.Fatalf("expected half coverage, got %v", c.A)
	}
}

func TestTilingIsSeamless(t *testing.T) {
	// A face spanning many small tiles must accumulate exactly once per
	// pixel regardless of tile boundaries.
	faces := []program.RenderableFace{solidSquare(0, 0, 20, 20, red())}
	out, err := Rasterize(faces, geom2.NewBounds(0, 0, 20, 20), Options{TileSize: 7})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	for y := 0; y < out.Height(); y++ {
		for x := 0; x < out.Width(); x++ {
			if c := out.At(x, y); math.Abs(c.A-1) > 1e-6 {
				t.Fatalf("pixel (%d,%d) coverage %v, want 1", x, y, c.A)
			}
		}
	}
}

func TestMitchellNetravaliInteriorWeightIsUnit(t *testing.T) {
	// Deep inside a large face the kernel integrates over full coverage,
	// and Mitchell-Netravali integrates to exactly one; the analytic
	// contour integral leaves only float rounding.
	faces := []program.RenderableFace{solidSquare(0, 0, 16, 16, red())}
	out, err := Rasterize(faces, geom2.NewBounds(0, 0, 16, 16), Options{Filter: face.FilterMitchellNetravali})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if c := out.At(8, 8); math.Abs(c.A-1) > 1e-9 {
		t.Fatalf("interior Mitchell-Netravali weight %v, want 1", c.A)
	}
}

func TestBilinearSoftensEdges(t *testing.T) {
	faces := []program.RenderableFace{solidSquare(0, 0, 4, 8, red())}
	out, err := Rasterize(faces, geom2.NewBounds(0, 0, 8, 8), Options{Filter: face.FilterBilinear})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	edge := out.At(4, 4).A    // just outside the face
	outside := out.At(6, 4).A // well outside
	if edge <= 0.01 {
		t.Fatalf("bilinear edge pixel should receive bleed, got %v", edge)
	}
	if outside > 0.01 {
		t.Fatalf("far pixel should stay empty, got %v", outside)
	}
}

func TestFinalizeClampsOutOfGamut(t *testing.T) {
	hot := program.NewColor(colorspace.Color{R: 2, A: 1, Space: colorspace.LinearSRGB, Premultiplied: true})
	faces := []program.RenderableFace{solidSquare(0, 0, 1, 1, hot)}
	combined, err := Rasterize(faces, geom2.NewBounds(0, 0, 1, 1), Options{})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}

	clamped := combined.Finalize(colorspace.SRGB, StorageRGBA8, false)
	if clamped.Pix[0] != 255 {
		t.Fatalf("expected clamped red 255, got %d", clamped.Pix[0])
	}

	sentinel := combined.Finalize(colorspace.SRGB, StorageRGBA8, true)
	if sentinel.Pix[0] != 255 || sentinel.Pix[1] != 0 || sentinel.Pix[2] != 255 {
		t.Fatalf("expected sentinel magenta, got %v", sentinel.Pix[:4])
	}
}

func TestFinalizeFloatStorage(t *testing.T) {
	faces := []program.RenderableFace{solidSquare(0, 0, 1, 1, red())}
	combined, err := Rasterize(faces, geom2.NewBounds(0, 0, 1, 1), Options{})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	out := combined.Finalize(colorspace.SRGB, StorageRGBAFloat, false)
	if out.FloatPix == nil || math.Abs(out.FloatPix[3]-1) > 1e-9 {
		t.Fatalf("expected float alpha 1, got %+v", out.FloatPix)
	}
}

func TestDisplayP3Finalize(t *testing.T) {
	faces := []program.RenderableFace{solidSquare(0, 0, 1, 1, red())}
	combined, err := Rasterize(faces, geom2.NewBounds(0, 0, 1, 1), Options{})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	out := combined.Finalize(colorspace.DisplayP3, StorageRGBA8, false)
	// Pure sRGB red lands inside P3 with a lower red component and some
	// green, per the primary conversion.
	if out.Pix[0] >= 255 || out.Pix[1] == 0 {
		t.Fatalf("P3 conversion looks wrong: %v", out.Pix[:4])
	}
}
