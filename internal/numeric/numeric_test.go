package numeric

import (
	"math/big"
	"testing"
)

func ratPoint(x, y int64) Rat2 { return NewRat2FromInt(x, y) }

func TestIntersectSegmentsCrossing(t *testing.T) {
	s0 := Segment{A: ratPoint(0, 0), B: ratPoint(4, 4)}
	s1 := Segment{A: ratPoint(0, 4), B: ratPoint(4, 0)}
	ints, kind := IntersectSegments(s0, s1)
	if kind != PointIntersection || len(ints) != 1 {
		t.Fatalf("expected one point intersection, got kind=%v n=%d", kind, len(ints))
	}
	want := big.NewRat(2, 1)
	if ints[0].Point.X.Cmp(want) != 0 || ints[0].Point.Y.Cmp(want) != 0 {
		t.Fatalf("expected (2,2), got (%v,%v)", ints[0].Point.X, ints[0].Point.Y)
	}
	half := big.NewRat(1, 2)
	if ints[0].T0.Cmp(half) != 0 || ints[0].T1.Cmp(half) != 0 {
		t.Fatalf("expected t=1/2 on both, got (%v,%v)", ints[0].T0, ints[0].T1)
	}
}

func TestIntersectSegmentsMiss(t *testing.T) {
	s0 := Segment{A: ratPoint(0, 0), B: ratPoint(1, 0)}
	s1 := Segment{A: ratPoint(0, 1), B: ratPoint(1, 1)}
	if _, kind := IntersectSegments(s0, s1); kind != NoIntersection {
		t.Fatalf("parallel segments must not intersect, got %v", kind)
	}
}

func TestIntersectSegmentsCollinearOverlap(t *testing.T) {
	s0 := Segment{A: ratPoint(0, 0), B: ratPoint(4, 0)}
	s1 := Segment{A: ratPoint(2, 0), B: ratPoint(6, 0)}
	ints, kind := IntersectSegments(s0, s1)
	if kind != CollinearOverlap || len(ints) != 2 {
		t.Fatalf("expected collinear overlap with 2 endpoints, got kind=%v n=%d", kind, len(ints))
	}
}

func TestIntersectSegmentsSharedEndpoint(t *testing.T) {
	s0 := Segment{A: ratPoint(0, 0), B: ratPoint(2, 2)}
	s1 := Segment{A: ratPoint(2, 2), B: ratPoint(4, 0)}
	ints, kind := IntersectSegments(s0, s1)
	if kind != PointIntersection || len(ints) != 1 {
		t.Fatalf("expected shared-endpoint intersection, got kind=%v n=%d", kind, len(ints))
	}
}

func TestAngleLessOrdersAroundCircle(t *testing.T) {
	// CCW starting from +X: east, north, west, south.
	dirs := []Rat2{
		ratPoint(1, 0), ratPoint(0, 1), ratPoint(-1, 0), ratPoint(0, -1),
	}
	for i := 0; i+1 < len(dirs); i++ {
		if !AngleLess(dirs[i], dirs[i+1]) {
			t.Fatalf("direction %d should order before %d", i, i+1)
		}
		if AngleLess(dirs[i+1], dirs[i]) {
			t.Fatalf("ordering of %d and %d is not antisymmetric", i, i+1)
		}
	}
}

func TestIntegerizeRoundTrip(t *testing.T) {
	paths := [][]struct{ X, Y float64 }{
		{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	}
	segs, inv, err := Integerize(paths, 20)
	if err != nil {
		t.Fatalf("integerize: %v", err)
	}
	if len(segs) != 4 {
		t.Fatalf("expected 4 segments, got %d", len(segs))
	}
	x, y := inv.Apply(segs[0].A)
	if absf(x-0) > 1e-5 || absf(y-0) > 1e-5 {
		t.Fatalf("inverse transform drifted: (%v,%v)", x, y)
	}
}

func TestIntegerizeRejectsEmpty(t *testing.T) {
	if _, _, err := Integerize(nil, 20); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
