// Package face implements the clippable-face algebra: polygonal and
// edge-based face representations supporting exact-area clipping to
// half-planes, axis-aligned bounds, and per-pixel bins, plus the
// centroid/area/moment integrals the program evaluator needs.
//
// The three representations (Polygonal, Edged, EdgedClipped) form a
// closed set of concrete variants behind small, exhaustively-matched
// operations rather than an open class hierarchy.
package face

import "vraster/internal/geom2"

// LinearEdge is a directed line segment contributing to a face's winding
// sum. CountOnly marks an edge whose geometric extent was collapsed to a
// box-corner chord during bounds clipping: it still contributes to the
// winding integral but callers must not rasterize its geometry, since the
// rectangle side it lies on already accounts for the pixels it would
// cover.
type LinearEdge struct {
	Start, End geom2.Point2
	CountOnly  bool
}

func NewEdge(start, end geom2.Point2) LinearEdge {
	return LinearEdge{Start: start, End: end}
}

func NewCountOnlyEdge(start, end geom2.Point2) LinearEdge {
	return LinearEdge{Start: start, End: end, CountOnly: true}
}

// signedArea2 returns twice the signed area contribution of this edge
// about the origin (the shoelace term x1*y2 - x2*y1).
func (e LinearEdge) signedArea2() float64 {
	return e.Start.X*e.End.Y - e.End.X*e.Start.Y
}

// centroidPartial returns the (unnormalized, un-halved) moment
// contribution of this edge to the centroid integral, matching the
// standard shoelace centroid formula term-by-term.
func (e LinearEdge) centroidPartial() (mx, my, area2 float64) {
	cross := e.signedArea2()
	return (e.Start.X + e.End.X) * cross, (e.Start.Y + e.End.Y) * cross, cross
}

// zeroCrossing returns the signed crossing contribution of this edge for
// a horizontal ray cast from the origin to +X, used by GetZero to verify
// a face's boundary is closed (the sum over all edges of a closed face
// must be zero after accounting for winding, since the ray exits through
// as many edges as it entered through net of winding number 0 contours).
func (e LinearEdge) zeroCrossing() int {
	y0, y1 := e.Start.Y, e.End.Y
	if (y0 <= 0) == (y1 <= 0) {
		return 0
	}
	t := -y0 / (y1 - y0)
	x := e.Start.X + t*(e.End.X-e.Start.X)
	if x <= 0 {
		return 0
	}
	if y1 > y0 {
		return 1
	}
	return -1
}
