package cag

import (
	"math/big"

	"vraster/internal/geom2"
	"vraster/internal/numeric"
)

// loop is one traced boundary component: an ordered ring of vertex
// indices plus the half-edge indices used to reach each vertex.
type loop struct {
	verts    []int
	edges    []int
	areaSign int     // sign of the exact rational shoelace sum
	area2    float64 // float shoelace*2, for minimal-enclosing-loop ordering only
}

// traceLoops follows next() pointers from every unvisited half-edge,
// producing one closed left-turn loop per boundary component.
func traceLoops(g *graph) []loop {
	visited := make([]bool, len(g.edges))
	var loops []loop
	for start := range g.edges {
		if visited[start] {
			continue
		}
		var lp loop
		cur := start
		for {
			visited[cur] = true
			he := g.edges[cur]
			lp.verts = append(lp.verts, he.from)
			lp.edges = append(lp.edges, cur)
			cur = he.next
			if cur == start {
				break
			}
		}
		lp.areaSign, lp.area2 = shoelaceArea2(g, lp.verts)
		loops = append(loops, lp)
	}
	return loops
}

// shoelaceArea2 accumulates the loop's shoelace sum in exact rational
// arithmetic and returns its sign plus a float rendering. Orientation
// classification (CCW outer vs CW hole) uses only the exact sign, so a
// near-zero-area degenerate loop can never flip class under float
// rounding; the float value serves only to order enclosing candidates by
// magnitude.
func shoelaceArea2(g *graph, verts []int) (sign int, area2 float64) {
	sum := new(big.Rat)
	term := new(big.Rat)
	n := len(verts)
	for i := 0; i < n; i++ {
		a := g.verts[verts[i]].p
		b := g.verts[verts[(i+1)%n]].p
		term.Mul(a.X, b.Y)
		sum.Add(sum, term)
		term.Mul(b.X, a.Y)
		sum.Sub(sum, term)
	}
	f, _ := sum.Float64()
	return sum.Sign(), f
}

// RationalFace is a face of the half-edge graph: an outer boundary loop
// plus zero or more hole loops, each as a sequence of rational points,
// resolved to a WindingMap once winding propagation (winding.go) runs.
type RationalFace struct {
	Outer   []numeric.Rat2
	Holes   [][]numeric.Rat2
	Winding map[int]int

	outerLoopIdx int // index into the traced loops slice, for winding propagation
	holeLoopIdx  []int
}

// groupLoops groups the graph's traced loops into faces: positive-area
// (CCW) loops are candidate outer boundaries; negative-area (CW) loops
// are either a connected component's unbounded orbit or, when their
// component lies wholly inside some other component's CCW loop, a hole
// of that enclosing face. A CW loop from the same connected component as
// a candidate CCW loop is never its hole — within one component, the
// only negative orbit is the unbounded one — so candidates are filtered
// by component before the containment test, which then runs on a vertex
// strictly interior or exterior to the candidate.
//
// loopToFace[i] gives the face index owning loops[i] (-1 for the
// unbounded outer region), used by resolveWinding to BFS at face
// granularity: a multiply-connected face's outer loop and its hole loops
// all share one winding number, since they bound the same 2-D region.
func groupLoops(g *graph, loops []loop) (faces []RationalFace, loopToFace []int) {
	loopToFace = make([]int, len(loops))
	for i := range loopToFace {
		loopToFace[i] = -1
	}

	comp := vertexComponents(g)
	loopComp := func(li int) int {
		if len(loops[li].verts) == 0 {
			return -1
		}
		return comp[loops[li].verts[0]]
	}

	var ccwIdx, cwIdx []int
	for i, lp := range loops {
		if lp.areaSign > 0 {
			ccwIdx = append(ccwIdx, i)
		} else if lp.areaSign < 0 {
			cwIdx = append(cwIdx, i)
		}
	}

	faces = make([]RationalFace, len(ccwIdx))
	for fi, li := range ccwIdx {
		faces[fi] = RationalFace{
			Outer:        toPoints(g, loops[li].verts),
			outerLoopIdx: li,
		}
		loopToFace[li] = fi
	}

	for _, hi := range cwIdx {
		owner := -1
		ownerArea := 0.0
		verts := loops[hi].verts
		if len(verts) == 0 {
			continue
		}
		p := g.verts[verts[0]].p
		for fi, li := range ccwIdx {
			if loopComp(li) == loopComp(hi) {
				continue
			}
			if pointInLoopRat(g, loops[li].verts, p) {
				a := loops[li].area2
				if owner == -1 || a < ownerArea {
					owner, ownerArea = fi, a
				}
			}
		}
		if owner == -1 {
			continue // part of the unbounded outer face
		}
		faces[owner].Holes = append(faces[owner].Holes, toPoints(g, loops[hi].verts))
		faces[owner].holeLoopIdx = append(faces[owner].holeLoopIdx, hi)
		loopToFace[hi] = owner
	}
	return faces, loopToFace
}

// vertexComponents labels each vertex with its connected component.
func vertexComponents(g *graph) []int {
	parent := make([]int, len(g.verts))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	for _, e := range g.edges {
		a, b := find(e.from), find(e.to)
		if a != b {
			parent[a] = b
		}
	}
	out := make([]int, len(g.verts))
	for i := range out {
		out[i] = find(i)
	}
	return out
}

func toPoints(g *graph, verts []int) []numeric.Rat2 {
	pts := make([]numeric.Rat2, len(verts))
	for i, vi := range verts {
		pts[i] = g.verts[vi].p
	}
	return pts
}

// pointInLoopRat tests point-in-polygon via the standard ray-crossing
// rule, evaluated with exact rational comparisons (no epsilon) since all
// coordinates here are exact.
func pointInLoopRat(g *graph, verts []int, p numeric.Rat2) bool {
	inside := false
	n := len(verts)
	for i := 0; i < n; i++ {
		a := g.verts[verts[i]].p
		b := g.verts[verts[(i+1)%n]].p
		if (a.Y.Cmp(p.Y) > 0) != (b.Y.Cmp(p.Y) > 0) && rayCrossesRight(a, b, p) {
			inside = !inside
		}
	}
	return inside
}

// rayCrossesRight reports whether the horizontal ray from p toward +X
// crosses segment a-b, given the caller has already confirmed a and b
// straddle p.Y. Computed by cross-multiplying the intersection-x
// comparison by (b.Y - a.Y) so no division (and no precision loss) is
// needed: x_at_py > p.X  <=>  (py-ay)*(bx-ax) > (px-ax)*(by-ay), sign
// flipped if (by-ay) is negative.
func rayCrossesRight(a, b, p numeric.Rat2) bool {
	byMinusAy := new(big.Rat).Sub(b.Y, a.Y)
	lhs := new(big.Rat).Sub(p.Y, a.Y)
	lhs.Mul(lhs, new(big.Rat).Sub(b.X, a.X))
	rhs := new(big.Rat).Sub(p.X, a.X)
	rhs.Mul(rhs, byMinusAy)
	cmp := lhs.Cmp(rhs)
	if byMinusAy.Sign() < 0 {
		cmp = -cmp
	}
	return cmp > 0
}

// ToBounds2 returns the float64 bounding box of the face's outer loop
// under the given inverse transform, used by the caller to build
// geom2.Bounds2 for a RenderableFace.
func (f RationalFace) ToBounds2(inv numeric.InverseTransform) geom2.Bounds2 {
	b := geom2.EmptyBounds()
	for _, p := range f.Outer {
		x, y := inv.ApplyRat(p)
		b = b.WithPoint(geom2.Point2{X: x, Y: y})
	}
	return b
}
