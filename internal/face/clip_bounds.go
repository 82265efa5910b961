package face

import "vraster/internal/geom2"

// matthesDrakopoulos clips a segment against an axis-aligned box by
// Liang-Barsky parametric half-plane elimination, returning the clipped
// endpoints and whether any of the segment survived.
func matthesDrakopoulos(p0, p1 geom2.Point2, b geom2.Bounds2) (q0, q1 geom2.Point2, kept bool) {
	x0, y0, x1, y1 := p0.X, p0.Y, p1.X, p1.Y
	t0, t1 := 0.0, 1.0
	dx, dy := x1-x0, y1-y0

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}

	if clip(-dx, x0-b.MinX) && clip(dx, b.MaxX-x0) &&
		clip(-dy, y0-b.MinY) && clip(dy, b.MaxY-y0) {
		q0 = geom2.Point2{X: x0 + t0*dx, Y: y0 + t0*dy}
		q1 = geom2.Point2{X: x0 + t1*dx, Y: y0 + t1*dy}
		return q0, q1, true
	}
	return geom2.Point2{}, geom2.Point2{}, false
}

// corner returns the bounds corner nearest p.
func corner(p geom2.Point2, b geom2.Bounds2) geom2.Point2 {
	x := b.MinX
	if p.X-b.MinX > b.MaxX-p.X {
		x = b.MaxX
	}
	y := b.MinY
	if p.Y-b.MinY > b.MaxY-p.Y {
		y = b.MaxY
	}
	return geom2.Point2{X: x, Y: y}
}

// oppositeQuadrants reports whether A and C sit in diagonally opposite
// quadrants relative to the box center. A miss between opposite quadrants
// has two possible corner routes and needs a third corner to pick one.
func oppositeQuadrants(a, c, center geom2.Point2) bool {
	return (a.X < center.X) != (c.X < center.X) && (a.Y < center.Y) != (c.Y < center.Y)
}

// thirdCorner evaluates the segment A-C at x = centerX and compares
// against centerY to pick which of the two routes around the box the
// clipped chord should take when A and C are in opposite quadrants and
// the segment itself misses the box. Without it, traced faces would
// split into two topologically open halves.
func thirdCorner(a, c geom2.Point2, b geom2.Bounds2) geom2.Point2 {
	center := b.Center()
	if a.X == c.X {
		return geom2.Point2{X: center.X, Y: center.Y}
	}
	t := (center.X - a.X) / (c.X - a.X)
	y := a.Y + t*(c.Y-a.Y)
	lower, upper := a, c
	if a.Y > c.Y {
		lower, upper = c, a
	}
	// The route follows the side the segment passes: along MaxY, turning at
	// the lower endpoint's x, or along MinY, turning at the upper one's.
	if y >= center.Y {
		return geom2.Point2{X: corner(lower, b).X, Y: b.MaxY}
	}
	return geom2.Point2{X: corner(upper, b).X, Y: b.MinY}
}

// clipEdgeToBounds clips a single edge (A,C) against b, emitting the
// chain A -> corner(A) -> A' -> C' -> corner(C) -> C (dropping any leg
// whose endpoints coincide). Every branch, the full-miss one included,
// keeps the A -> corner(A) and corner(C) -> C legs: over a closed input
// loop, consecutive edges then traverse corner(X) -> X -> corner(X) at
// each shared outside vertex, a zero-width spike that cancels exactly in
// every contour integral — dropping a leg on one side would leave half a
// spike behind and corrupt areas wherever kept and missed edges meet.
// Corner-to-corner chords that lie along a rectangle side are emitted
// count-only.
func clipEdgeToBounds(a, c geom2.Point2, b geom2.Bounds2) []LinearEdge {
	var out []LinearEdge
	add := func(p, q geom2.Point2) {
		if p != q {
			out = append(out, countOnlyIfSide(p, q, b))
		}
	}

	ap, cp, kept := matthesDrakopoulos(a, c, b)
	cornerA := corner(a, b)
	cornerC := corner(c, b)

	if !kept {
		add(a, cornerA)
		if oppositeQuadrants(a, c, b.Center()) {
			mid := thirdCorner(a, c, b)
			add(cornerA, mid)
			add(mid, cornerC)
		} else {
			add(cornerA, cornerC)
		}
		add(cornerC, c)
		return out
	}

	if !b.ContainsPoint(a) {
		add(a, cornerA)
		add(cornerA, ap)
	}
	out = append(out, NewEdge(ap, cp))
	if !b.ContainsPoint(c) {
		add(cp, cornerC)
		add(cornerC, c)
	}
	return out
}

// countOnlyIfSide marks p-q count-only when it runs exactly along one of
// the box's four sides; corner-to-corner chords carry winding but no
// geometry of their own.
func countOnlyIfSide(p, q geom2.Point2, b geom2.Bounds2) LinearEdge {
	onVerticalSide := (p.X == q.X) && (p.X == b.MinX || p.X == b.MaxX)
	onHorizontalSide := (p.Y == q.Y) && (p.Y == b.MinY || p.Y == b.MaxY)
	if onVerticalSide || onHorizontalSide {
		return NewCountOnlyEdge(p, q)
	}
	return NewEdge(p, q)
}

// GetClipped clips a face to an axis-aligned rectangle, returning a
// (variant-preserving where possible) ClippableFace. An EdgedClipped
// input first materializes the side edges its clip counts imply, so the
// winding they carry survives the nested clip.
func GetClipped(f ClippableFace, b geom2.Bounds2) ClippableFace {
	edges := f.allEdges()
	if f.kind == KindEdgedClipped {
		edges = append(append([]LinearEdge{}, edges...), f.impliedSideEdges()...)
	}
	var out []LinearEdge
	for _, e := range edges {
		// Count-only edges are axis-aligned chords of the *input's*
		// bounds; re-clip them like any other edge so nested clips
		// compose correctly.
		out = append(out, clipEdgeToBounds(e.Start, e.End, b)...)
	}
	switch f.kind {
	case KindPolygonal:
		return simplifyToEdged(out)
	default:
		return NewEdged(out)
	}
}

// simplifyToEdged wraps a raw edge list as an Edged face; Polygonal
// inputs become Edged after clipping since the clipped boundary is no
// longer guaranteed to be a single simple loop per source polygon.
func simplifyToEdged(edges []LinearEdge) ClippableFace {
	return NewEdged(edges)
}

// GetBinaryXClip splits f at the vertical line x=v into (minFace, maxFace)
// — the parts with x<v and x>=v respectively.
func GetBinaryXClip(f ClippableFace, v float64) (minFace, maxFace ClippableFace) {
	bounds := GetBounds(f)
	left := geom2.NewBounds(bounds.MinX-1, bounds.MinY-1, v, bounds.MaxY+1)
	right := geom2.NewBounds(v, bounds.MinY-1, bounds.MaxX+1, bounds.MaxY+1)
	return GetClipped(f, left), GetClipped(f, right)
}

// GetBinaryYClip splits f at the horizontal line y=v.
func GetBinaryYClip(f ClippableFace, v float64) (minFace, maxFace ClippableFace) {
	bounds := GetBounds(f)
	top := geom2.NewBounds(bounds.MinX-1, bounds.MinY-1, bounds.MaxX+1, v)
	bottom := geom2.NewBounds(bounds.MinX-1, v, bounds.MaxX+1, bounds.MaxY+1)
	return GetClipped(f, top), GetClipped(f, bottom)
}

// GetStripeLineClip slices f into len(values)+1 slabs along normal·p=d_i
// for each boundary value in values (which must be sorted ascending),
// returning the ordered sequence of slabs whose areas sum to area(f).
func GetStripeLineClip(f ClippableFace, normal geom2.Point2, values []float64) []ClippableFace {
	remaining := f
	out := make([]ClippableFace, 0, len(values)+1)
	for _, d := range values {
		lo, hi := GetBinaryLineClip(remaining, normal, d)
		out = append(out, lo)
		remaining = hi
	}
	out = append(out, remaining)
	return out
}

// GetBinaryLineClip splits f at the line normal·p=d into (le, gt): the
// half with normal·p<=d and the half with normal·p>d.
func GetBinaryLineClip(f ClippableFace, normal geom2.Point2, d float64) (le, gt ClippableFace) {
	// Work in a rotated frame where normal maps to +X, clip on X, and
	// rotate back, reusing GetBinaryXClip instead of a bespoke
	// half-plane clipper.
	len := normal.Length()
	if len == 0 {
		return f, NewEdged(nil)
	}
	nx, ny := normal.X/len, normal.Y/len
	fwd := geom2.Matrix2x3{SX: nx, SHX: -ny, SHY: ny, SY: nx}
	inv, ok := fwd.Invert()
	if !ok {
		return f, NewEdged(nil)
	}
	rotated := GetTransformed(f, fwd)
	a, b := GetBinaryXClip(rotated, d/len)
	return GetTransformed(a, inv), GetTransformed(b, inv)
}
