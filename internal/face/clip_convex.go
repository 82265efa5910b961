package face

import "vraster/internal/geom2"

// intersectWithPolygon clips f against a convex polygon (here, the
// many-sided circle approximation from GetBinaryCircularClip) using
// Sutherland-Hodgman, valid because the clip window is convex regardless
// of the subject's shape.
func intersectWithPolygon(f ClippableFace, clipWindow Polygon) ClippableFace {
	n := len(clipWindow.Vertices)
	if n < 3 {
		return NewEdged(nil)
	}
	var resultPolys []Polygon
	for _, p := range f.polygonLoops() {
		verts := p.Vertices
		for i := 0; i < n; i++ {
			a := clipWindow.Vertices[i]
			b := clipWindow.Vertices[(i+1)%n]
			verts = sutherlandHodgmanClip(verts, a, b)
			if len(verts) == 0 {
				break
			}
		}
		if len(verts) >= 3 {
			resultPolys = append(resultPolys, Polygon{Vertices: verts})
		}
	}
	return NewPolygonal(resultPolys)
}

// subtractPolygon returns f minus the region enclosed by clipWindow, as
// an Edged face: concatenating f's own edges with the reversed boundary
// of (f ∩ clipWindow) so that area(outside) = area(f) - area(inside)
// holds exactly, without needing a full non-convex boolean algorithm for
// this single-shape case.
func subtractPolygon(f ClippableFace, clipWindow Polygon) ClippableFace {
	inside := intersectWithPolygon(f, clipWindow)
	out := append([]LinearEdge{}, f.allEdges()...)
	for _, e := range inside.allEdges() {
		out = append(out, NewEdge(e.End, e.Start))
	}
	return NewEdged(out)
}

// polygonLoops returns the face's boundary as polygon loops, converting
// an Edged/EdgedClipped face to closed loops by chaining matching edges.
func (f ClippableFace) polygonLoops() []Polygon {
	if f.kind == KindPolygonal {
		return f.polygons
	}
	return ChainEdgesToLoops(f.allEdges())
}

// ChainEdgesToLoops reassembles an unordered, directed edge set into
// closed polygon loops by repeatedly following each edge's endpoint to
// the next edge starting there. Degenerate (unmatched) edges are
// dropped — callers that need strict closure should check GetZero first.
func ChainEdgesToLoops(edges []LinearEdge) []Polygon {
	type key struct{ x, y float64 }
	byStart := map[key][]LinearEdge{}
	used := make([]bool, len(edges))
	idx := map[key][]int{}
	for i, e := range edges {
		k := key{e.Start.X, e.Start.Y}
		byStart[k] = append(byStart[k], e)
		idx[k] = append(idx[k], i)
	}

	var loops []Polygon
	for i, e := range edges {
		if used[i] || e.CountOnly {
			continue
		}
		used[i] = true
		loop := []geom2.Point2{e.Start}
		cur := e.End
		start := e.Start
		for len(loop) < len(edges)+1 {
			if cur == start {
				break
			}
			k := key{cur.X, cur.Y}
			found := -1
			for _, j := range idx[k] {
				if !used[j] {
					found = j
					break
				}
			}
			if found == -1 {
				break
			}
			used[found] = true
			loop = append(loop, cur)
			cur = edges[found].End
		}
		if len(loop) >= 3 {
			loops = append(loops, Polygon{Vertices: loop})
		}
	}
	return loops
}

// sutherlandHodgmanClip clips a polygon (CCW) against the half-plane to
// the left of directed edge a->b.
func sutherlandHodgmanClip(poly []geom2.Point2, a, b geom2.Point2) []geom2.Point2 {
	if len(poly) == 0 {
		return nil
	}
	edge := b.Sub(a)
	inside := func(p geom2.Point2) bool {
		return edge.Cross(p.Sub(a)) >= 0
	}
	intersect := func(p, q geom2.Point2) geom2.Point2 {
		d := q.Sub(p)
		denom := edge.Cross(d)
		if denom == 0 {
			return p
		}
		t := edge.Cross(a.Sub(p)) / denom
		return p.Add(d.Scale(t))
	}

	var out []geom2.Point2
	n := len(poly)
	for i := 0; i < n; i++ {
		cur := poly[i]
		prev := poly[(i-1+n)%n]
		curIn := inside(cur)
		prevIn := inside(prev)
		if curIn {
			if !prevIn {
				out = append(out, intersect(prev, cur))
			}
			out = append(out, cur)
		} else if prevIn {
			out = append(out, intersect(prev, cur))
		}
	}
	return out
}
