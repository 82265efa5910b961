package face

import "vraster/internal/geom2"

// ClipSimplifier removes degenerate output from the clipping operations
// above: zero-length edges and collinear count-only chords that split a
// single rectangle-side run into several, which otherwise accumulate
// across repeated per-pixel clips in the scheduler's hot path.
type ClipSimplifier struct {
	eps float64
}

func NewClipSimplifier(eps float64) ClipSimplifier {
	return ClipSimplifier{eps: eps}
}

// Simplify returns f with zero-length and redundant collinear edges
// removed.
func (s ClipSimplifier) Simplify(f ClippableFace) ClippableFace {
	edges := f.allEdges()
	out := make([]LinearEdge, 0, len(edges))
	for _, e := range edges {
		if e.Start.Sub(e.End).Length() <= s.eps {
			continue
		}
		out = append(out, e)
	}
	out = s.mergeCollinearRuns(out)
	switch f.kind {
	case KindEdgedClipped:
		return NewEdgedClipped(out, f.clipBounds, f.clipCounts[0], f.clipCounts[1], f.clipCounts[2], f.clipCounts[3])
	case KindEdged:
		return NewEdged(out)
	default:
		return NewPolygonal(ChainEdgesToLoops(out))
	}
}

// mergeCollinearRuns merges count-only edges where one ends at the
// other's start and all three points are collinear within eps into a
// single chord, keeping the edge list small
// without changing the winding sum it represents.
func (s ClipSimplifier) mergeCollinearRuns(edges []LinearEdge) []LinearEdge {
	merged := true
	for merged {
		merged = false
		for i := 0; i < len(edges); i++ {
			for j := 0; j < len(edges); j++ {
				if i == j || !edges[i].CountOnly || !edges[j].CountOnly {
					continue
				}
				if edges[i].End == edges[j].Start && collinear(edges[i].Start, edges[i].End, edges[j].End, s.eps) {
					edges[i].End = edges[j].End
					edges = append(edges[:j], edges[j+1:]...)
					merged = true
					break
				}
			}
			if merged {
				break
			}
		}
	}
	return edges
}

func collinear(a, b, c geom2.Point2, eps float64) bool {
	cross := b.Sub(a).Cross(c.Sub(a))
	if cross < 0 {
		cross = -cross
	}
	return cross <= eps
}
