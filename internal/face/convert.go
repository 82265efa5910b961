package face

import "vraster/internal/geom2"

// ToPolygonal converts any variant to Polygonal by chaining its directed
// edges into closed loops.
func ToPolygonal(f ClippableFace) ClippableFace {
	if f.kind == KindPolygonal {
		return f
	}
	return NewPolygonal(ChainEdgesToLoops(f.allEdges()))
}

// ToEdged converts any variant to Edged by flattening it to a bare
// directed edge set (dropping clip-rectangle bookkeeping).
func ToEdged(f ClippableFace) ClippableFace {
	if f.kind == KindEdged {
		return f
	}
	return NewEdged(f.allEdges())
}

// ToEdgedClipped converts any variant to EdgedClipped against bounds,
// first clipping to bounds (a no-op if the face is already contained)
// and then folding any edges coincident with the rectangle sides into
// clip counts instead of literal geometry.
func ToEdgedClipped(f ClippableFace, bounds geom2.Bounds2) ClippableFace {
	clipped := GetClipped(f, bounds)
	var kept []LinearEdge
	var minX, minY, maxX, maxY int
	for _, e := range clipped.allEdges() {
		if e.CountOnly && onSide(e, bounds) {
			delta := sideDelta(e, bounds)
			switch {
			case e.Start.X == bounds.MinX && e.End.X == bounds.MinX:
				minX += delta
			case e.Start.X == bounds.MaxX && e.End.X == bounds.MaxX:
				maxX += delta
			case e.Start.Y == bounds.MinY && e.End.Y == bounds.MinY:
				minY += delta
			case e.Start.Y == bounds.MaxY && e.End.Y == bounds.MaxY:
				maxY += delta
			}
			continue
		}
		kept = append(kept, e)
	}
	return NewEdgedClipped(kept, bounds, minX, minY, maxX, maxY)
}

func onSide(e LinearEdge, b geom2.Bounds2) bool {
	return (e.Start.X == e.End.X && (e.Start.X == b.MinX || e.Start.X == b.MaxX)) ||
		(e.Start.Y == e.End.Y && (e.Start.Y == b.MinY || e.Start.Y == b.MaxY))
}

// sideDelta returns the winding contribution of a count-only side chord,
// signed by whether it runs in the rectangle's CCW boundary direction.
func sideDelta(e LinearEdge, b geom2.Bounds2) int {
	switch {
	case e.Start.X == e.End.X && e.Start.X == b.MinX:
		if e.Start.Y > e.End.Y {
			return 1
		}
		return -1
	case e.Start.X == e.End.X && e.Start.X == b.MaxX:
		if e.Start.Y < e.End.Y {
			return 1
		}
		return -1
	case e.Start.Y == e.End.Y && e.Start.Y == b.MinY:
		if e.Start.X < e.End.X {
			return 1
		}
		return -1
	default: // maxY
		if e.Start.X > e.End.X {
			return 1
		}
		return -1
	}
}
