package cag

import (
	"math"
	"testing"

	"vraster/internal/colorspace"
	"vraster/internal/face"
	"vraster/internal/geom2"
	"vraster/internal/program"
	"vraster/internal/scene"
)

func squarePath(id scene.PathID, x0, y0, x1, y1 float64) scene.RenderPath {
	return scene.RenderPath{
		ID:   id,
		Fill: scene.FillNonzero,
		Subpaths: []scene.Subpath{{Vertices: []geom2.Point2{
			{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
		}}},
	}
}

func white() *program.Node {
	return program.NewColor(colorspace.Color{R: 1, G: 1, B: 1, A: 1, Premultiplied: true})
}

func clear() *program.Node {
	return program.NewColor(colorspace.Color{Premultiplied: true})
}

// membership programs used to measure boolean regions by area.
func insidePath(p scene.RenderPath, inside, outside *program.Node) *program.Node {
	return program.NewPathBoolean(p.ID, p.Fill, inside, outside)
}

func totalArea(faces []program.RenderableFace) float64 {
	var sum float64
	for _, rf := range faces {
		sum += face.GetArea(rf.Face)
	}
	return sum
}

func TestOverlappingSquaresBooleanAreas(t *testing.T) {
	a := squarePath(0, 0, 0, 1, 1)
	b := squarePath(1, 0.5, 0.5, 1.5, 1.5)
	paths := []scene.RenderPath{a, b}

	cases := []struct {
		name string
		prog *program.Node
		want float64
	}{
		{"union", insidePath(a, white(), insidePath(b, white(), clear())), 1.75},
		{"intersection", insidePath(a, insidePath(b, white(), clear()), clear()), 0.25},
		{"differenceAB", insidePath(a, insidePath(b, clear(), white()), clear()), 0.75},
	}
	for _, tc := range cases {
		faces, err := Resolve(paths, tc.prog, StrategySimple)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got := totalArea(faces); math.Abs(got-tc.want) > 1e-6 {
			t.Fatalf("%s: area %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestUnionIntersectionAreaIdentity(t *testing.T) {
	a := squarePath(0, 0, 0, 2, 2)
	b := squarePath(1, 1, 1, 3, 3)
	paths := []scene.RenderPath{a, b}

	union := insidePath(a, white(), insidePath(b, white(), clear()))
	inter := insidePath(a, insidePath(b, white(), clear()), clear())
	onlyA := insidePath(a, white(), clear())
	onlyB := insidePath(b, white(), clear())

	area := func(p *program.Node) float64 {
		faces, err := Resolve(paths, p, StrategySimple)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		return totalArea(faces)
	}

	if got := area(union) + area(inter) - area(onlyA) - area(onlyB); math.Abs(got) > 1e-6 {
		t.Fatalf("area(union)+area(inter) drifted from area(a)+area(b) by %v", got)
	}
}

func TestOverlappingSquaresFaceCount(t *testing.T) {
	// Two squares overlapping at a corner partition the plane into three
	// bounded faces: a-only, b-only, and the shared quarter.
	a := squarePath(0, 0, 0, 1, 1)
	b := squarePath(1, 0.5, 0.5, 1.5, 1.5)
	union := insidePath(a, white(), insidePath(b, white(), clear()))

	faces, err := Resolve([]scene.RenderPath{a, b}, union, StrategySimple)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(faces) != 3 {
		t.Fatalf("expected 3 faces, got %d", len(faces))
	}
}

func TestBowtieSelfIntersection(t *testing.T) {
	// A self-crossing quad splits at the crossing into two wings; under
	// nonzero fill both wings are inside.
	bowtie := scene.RenderPath{
		ID:   0,
		Fill: scene.FillNonzero,
		Subpaths: []scene.Subpath{{Vertices: []geom2.Point2{
			{X: 0, Y: 0}, {X: 2, Y: 2}, {X: 2, Y: 0}, {X: 0, Y: 2},
		}}},
	}
	prog := insidePath(bowtie, white(), clear())
	faces, err := Resolve([]scene.RenderPath{bowtie}, prog, StrategySimple)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(faces) != 2 {
		t.Fatalf("expected 2 wing faces, got %d", len(faces))
	}
	if got := totalArea(faces); math.Abs(got-1.0) > 1e-6 {
		t.Fatalf("bowtie area %v, want 1.0", got)
	}
}

func TestCombinedStrategiesPreserveArea(t *testing.T) {
	a := squarePath(0, 0, 0, 1, 1)
	b := squarePath(1, 0.5, 0.5, 1.5, 1.5)
	union := insidePath(a, white(), insidePath(b, white(), clear()))
	paths := []scene.RenderPath{a, b}

	for _, strategy := range []Strategy{StrategySimple, StrategyFullyCombined, StrategySimplifyingCombined, StrategyTraced} {
		faces, err := Resolve(paths, union, strategy)
		if err != nil {
			t.Fatalf("strategy %d: %v", strategy, err)
		}
		if got := totalArea(faces); math.Abs(got-1.75) > 1e-6 {
			t.Fatalf("strategy %d: area %v, want 1.75", strategy, got)
		}
	}
}

func TestCombinedStrategyMergesEqualPrograms(t *testing.T) {
	a := squarePath(0, 0, 0, 1, 1)
	b := squarePath(1, 0.5, 0.5, 1.5, 1.5)
	union := insidePath(a, white(), insidePath(b, white(), clear()))

	faces, err := Resolve([]scene.RenderPath{a, b}, union, StrategySimplifyingCombined)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(faces) != 1 {
		t.Fatalf("expected one merged face for a uniform union, got %d", len(faces))
	}
	if faces[0].Face.Kind() != face.KindEdged {
		t.Fatalf("merged output should be edged, got kind %d", faces[0].Face.Kind())
	}
}

func TestWindingMapsMatchBruteForce(t *testing.T) {
	a := squarePath(0, 0, 0, 1, 1)
	b := squarePath(1, 0.5, 0.5, 1.5, 1.5)
	union := insidePath(a, white(), insidePath(b, white(), clear()))

	faces, err := Resolve([]scene.RenderPath{a, b}, union, StrategySimple)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, rf := range faces {
		area := face.GetArea(rf.Face)
		cx, cy := face.GetCentroid(rf.Face, area)
		wantA := bruteWinding(a, cx, cy)
		wantB := bruteWinding(b, cx, cy)
		if !(wantA != 0 || wantB != 0) {
			t.Fatalf("face at (%v,%v) resolved inside but brute force says outside both", cx, cy)
		}
	}
}

// bruteWinding computes a path's winding number at a point by summing
// signed crossings of a +X ray, independent of the graph pipeline.
func bruteWinding(p scene.RenderPath, x, y float64) int {
	w := 0
	for _, sub := range p.Subpaths {
		n := len(sub.Vertices)
		for i := 0; i < n; i++ {
			a := sub.Vertices[i]
			b := sub.Vertices[(i+1)%n]
			if (a.Y <= y) == (b.Y <= y) {
				continue
			}
			t := (y - a.Y) / (b.Y - a.Y)
			if a.X+t*(b.X-a.X) > x {
				if b.Y > a.Y {
					w++
				} else {
					w--
				}
			}
		}
	}
	return w
}
