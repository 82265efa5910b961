package face

import (
	"math"

	"vraster/internal/geom2"
)

// GetBinaryCircularClip splits f into the part inside and outside a
// circle of radius r centered at center, approximating the circle as a
// many-sided polygon accurate to eps (matching the polygonal-approximation
// contract GetRounded uses).
func GetBinaryCircularClip(f ClippableFace, center geom2.Point2, r, eps float64) (inside, outside ClippableFace) {
	circle := approximateCircle(center, r, eps)
	return intersectWithPolygon(f, circle), subtractPolygon(f, circle)
}

// approximateCircle returns a CCW polygon approximating a circle of
// radius r, doubling the side count from 8 until the chord height
// (largest radial gap between polygon and circle) is within eps, with at
// most 4096 sides.
func approximateCircle(center geom2.Point2, r, eps float64) Polygon {
	if r <= 0 {
		return Polygon{}
	}
	// Chord-height error for n sides of a unit circle is
	// 1 - cos(pi/n); pick n so r*(1-cos(pi/n)) <= eps.
	n := 8
	for n < 4096 {
		if r*(1-math.Cos(math.Pi/float64(n))) <= eps {
			break
		}
		n *= 2
	}
	verts := make([]geom2.Point2, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		verts[i] = geom2.Point2{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)}
	}
	return Polygon{Vertices: verts}
}

// GetRounded returns a polygonal approximation of f with its corners
// rounded by radius r. Each corner of a Polygonal face is replaced by a
// single chamfer between the points min(r, half the shorter adjacent
// edge) along its two edges; the arc is not subdivided further, so the
// area differs from the exact rounded area by O(r^2) per corner. Edged
// and EdgedClipped faces are returned unchanged.
func GetRounded(f ClippableFace, r float64) ClippableFace {
	if r <= 0 {
		return f
	}
	switch f.kind {
	case KindPolygonal:
		out := make([]Polygon, len(f.polygons))
		for i, p := range f.polygons {
			out[i] = roundPolygon(p, r)
		}
		return NewPolygonal(out)
	default:
		return f
	}
}

func roundPolygon(p Polygon, r float64) Polygon {
	n := len(p.Vertices)
	if n < 3 {
		return p
	}
	var out []geom2.Point2
	for i := 0; i < n; i++ {
		prev := p.Vertices[(i-1+n)%n]
		cur := p.Vertices[i]
		next := p.Vertices[(i+1)%n]

		toPrev := prev.Sub(cur)
		toNext := next.Sub(cur)
		lp, ln := toPrev.Length(), toNext.Length()
		if lp == 0 || ln == 0 {
			out = append(out, cur)
			continue
		}
		clip := math.Min(r, math.Min(lp, ln)/2)
		a := cur.Add(toPrev.Scale(clip / lp))
		b := cur.Add(toNext.Scale(clip / ln))
		out = append(out, a, b)
	}
	return Polygon{Vertices: out}
}
