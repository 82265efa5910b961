// Package numeric provides the exact rational arithmetic the area
// geometry resolver is built on: integerized points, exact
// segment-segment intersection, and cross-product vertex ordering over
// math/big.Rat.
package numeric

import "math/big"

// Rat2 is a 2-D point with exact rational coordinates.
type Rat2 struct {
	X, Y *big.Rat
}

// NewRat2FromInt builds a Rat2 at integer coordinates (x, y).
func NewRat2FromInt(x, y int64) Rat2 {
	return Rat2{X: big.NewRat(x, 1), Y: big.NewRat(y, 1)}
}

func NewRat2(x, y *big.Rat) Rat2 {
	return Rat2{X: x, Y: y}
}

// Equal reports exact rational equality.
func (p Rat2) Equal(q Rat2) bool {
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}

// Sub returns p - q.
func (p Rat2) Sub(q Rat2) Rat2 {
	return Rat2{
		X: new(big.Rat).Sub(p.X, q.X),
		Y: new(big.Rat).Sub(p.Y, q.Y),
	}
}

// Cross returns the 2-D cross product of p and q treated as vectors.
func Cross(p, q Rat2) *big.Rat {
	a := new(big.Rat).Mul(p.X, q.Y)
	b := new(big.Rat).Mul(p.Y, q.X)
	return a.Sub(a, b)
}

// Dot returns the dot product of p and q treated as vectors.
func Dot(p, q Rat2) *big.Rat {
	a := new(big.Rat).Mul(p.X, q.X)
	b := new(big.Rat).Mul(p.Y, q.Y)
	return a.Add(a, b)
}

// AngleLess orders vectors a and b (both relative to a common pivot) by
// their angle around the pivot using only cross-product sign comparisons.
// No trigonometry, so no precision loss sorting edges around a vertex.
func AngleLess(a, b Rat2) bool {
	ha := half(a)
	hb := half(b)
	if ha != hb {
		return ha < hb
	}
	c := Cross(a, b)
	return c.Sign() > 0
}

// half returns 0 for vectors in the upper half-plane (including +X axis)
// and 1 for the lower half-plane, used to break the cross-product sort
// into a total order around the full circle.
func half(v Rat2) int {
	zero := big.NewRat(0, 1)
	ySign := v.Y.Cmp(zero)
	if ySign > 0 {
		return 0
	}
	if ySign < 0 {
		return 1
	}
	if v.X.Sign() >= 0 {
		return 0
	}
	return 1
}

// Segment is a directed rational line segment.
type Segment struct {
	A, B Rat2
}

// IntersectionKind classifies the result of IntersectSegments.
type IntersectionKind int

const (
	NoIntersection IntersectionKind = iota
	PointIntersection
	CollinearOverlap
)

// Intersection is a single exact intersection point plus the parametric
// position t0/t1 of that point along each input segment (0 at A, 1 at B).
type Intersection struct {
	T0, T1 *big.Rat
	Point  Rat2
}

// IntersectSegments computes the exact rational intersection(s) of two
// segments, returning 0, 1, or 2 points (2 only for collinear overlap),
// with explicit degenerate handling instead of epsilon tests.
func IntersectSegments(s0, s1 Segment) ([]Intersection, IntersectionKind) {
	d0 := s0.B.Sub(s0.A)
	d1 := s1.B.Sub(s1.A)
	denom := Cross(d0, d1)

	if denom.Sign() == 0 {
		return intersectCollinear(s0, s1, d0, d1)
	}

	diff := s1.A.Sub(s0.A)
	t0 := new(big.Rat).Quo(Cross(diff, d1), denom)
	t1 := new(big.Rat).Quo(Cross(diff, d0), denom)

	zero := big.NewRat(0, 1)
	one := big.NewRat(1, 1)
	if t0.Cmp(zero) < 0 || t0.Cmp(one) > 0 || t1.Cmp(zero) < 0 || t1.Cmp(one) > 0 {
		return nil, NoIntersection
	}

	px := new(big.Rat).Mul(t0, d0.X)
	px.Add(px, s0.A.X)
	py := new(big.Rat).Mul(t0, d0.Y)
	py.Add(py, s0.A.Y)

	return []Intersection{{T0: t0, T1: t1, Point: Rat2{X: px, Y: py}}}, PointIntersection
}

func intersectCollinear(s0, s1 Segment, d0, d1 Rat2) ([]Intersection, IntersectionKind) {
	diff := s1.A.Sub(s0.A)
	if Cross(diff, d0).Sign() != 0 {
		return nil, NoIntersection // parallel, not collinear
	}

	// Project s1's endpoints onto s0's parameter line.
	len0 := Dot(d0, d0)
	if len0.Sign() == 0 {
		return nil, NoIntersection
	}
	proj := func(p Rat2) *big.Rat {
		v := p.Sub(s0.A)
		return new(big.Rat).Quo(Dot(v, d0), len0)
	}
	ta := proj(s1.A)
	tb := proj(s1.B)
	lo, hi := ta, tb
	if lo.Cmp(hi) > 0 {
		lo, hi = hi, lo
	}
	zero := big.NewRat(0, 1)
	one := big.NewRat(1, 1)
	if lo.Cmp(one) > 0 || hi.Cmp(zero) < 0 {
		return nil, NoIntersection
	}
	clampedLo := maxRat(lo, zero)
	clampedHi := minRat(hi, one)
	pointAt := func(t *big.Rat) Rat2 {
		x := new(big.Rat).Mul(t, d0.X)
		x.Add(x, s0.A.X)
		y := new(big.Rat).Mul(t, d0.Y)
		y.Add(y, s0.A.Y)
		return Rat2{X: x, Y: y}
	}
	if clampedLo.Cmp(clampedHi) == 0 {
		return []Intersection{{T0: clampedLo, T1: clampedLo, Point: pointAt(clampedLo)}}, PointIntersection
	}
	return []Intersection{
		{T0: clampedLo, T1: clampedLo, Point: pointAt(clampedLo)},
		{T0: clampedHi, T1: clampedHi, Point: pointAt(clampedHi)},
	}, CollinearOverlap
}

func maxRat(a, b *big.Rat) *big.Rat {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

func minRat(a, b *big.Rat) *big.Rat {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
