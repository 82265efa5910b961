package face

import (
	"math"

	"vraster/internal/geom2"
)

// GetAverageDistance returns the area-weighted average distance from p to
// points of the face, approximated by edge-midpoint sampling: exact for
// the centroid-adjacent low moments the evaluator needs, a documented
// approximation for the general case.
func GetAverageDistance(f ClippableFace, p geom2.Point2, area float64) float64 {
	if area == 0 {
		return 0
	}
	var sum float64
	var weight float64
	for _, e := range f.allEdges() {
		if e.CountOnly {
			continue
		}
		mid := e.Start.Lerp(e.End, 0.5)
		w := math.Abs(e.signedArea2())
		sum += mid.Sub(p).Length() * w
		weight += w
	}
	if weight == 0 {
		c := GetBounds(f).Center()
		return c.Sub(p).Length()
	}
	return sum / weight
}

// GetAverageDistanceTransformedToOrigin transforms the face by m and
// returns its average distance to the origin, the composition the
// evaluator uses for radial-gradient-like distance shading without
// materializing an intermediate face twice.
func GetAverageDistanceTransformedToOrigin(f ClippableFace, m geom2.Matrix2x3, _ float64) float64 {
	transformed := GetTransformed(f, m)
	transformedArea := GetArea(transformed)
	return GetAverageDistance(transformed, geom2.Point2{}, transformedArea)
}

// GetDistanceRangeToEdges returns the [min,max] distance from p to the
// face's edges (not its interior), used for anti-aliased stroke-style
// shading of filter kernel support regions.
func GetDistanceRangeToEdges(f ClippableFace, p geom2.Point2) geom2.Range {
	r := geom2.EmptyRange()
	for _, e := range f.allEdges() {
		if e.CountOnly {
			continue
		}
		r = r.WithPoint(distancePointToSegment(p, e.Start, e.End))
	}
	return r
}

// GetDistanceRangeToInside returns the [min,max] signed distance from p
// considering the face's interior: 0 is included whenever p lies inside
// the face's bounds (a conservative approximation of "inside the face"
// using its bounding box, sufficient for filter-support culling).
func GetDistanceRangeToInside(f ClippableFace, p geom2.Point2) geom2.Range {
	r := GetDistanceRangeToEdges(f, p)
	if GetBounds(f).ContainsPoint(p) {
		r = r.WithPoint(0)
	}
	return r
}

func distancePointToSegment(p, a, b geom2.Point2) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Sub(a).Length()
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	proj := a.Add(ab.Scale(t))
	return p.Sub(proj).Length()
}
