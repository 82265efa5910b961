package cag

import (
	"fmt"

	"vraster/internal/face"
	"vraster/internal/geom2"
	"vraster/internal/numeric"
	"vraster/internal/program"
	"vraster/internal/scene"
)

// Strategy selects how resolved rational faces are traced and combined
// into renderable faces.
type Strategy int

const (
	// StrategySimple emits one renderable face per rational face.
	StrategySimple Strategy = iota
	// StrategyFullyCombined groups faces into equivalence classes by
	// program equality regardless of adjacency.
	StrategyFullyCombined
	// StrategySimplifyingCombined merges adjacent faces with equal
	// programs; interior shared edges cancel and the output is Edged.
	StrategySimplifyingCombined
	// StrategyTraced merges like SimplifyingCombined but retraces the
	// combined boundary so the output stays polygonal.
	StrategyTraced
)

// integerizePrecisionBits is the sub-unit precision used when snapping
// input vertices to the integer grid the intersection sweep runs on.
const integerizePrecisionBits = 20

// Resolve runs the full area-geometry pipeline: integerize the paths,
// intersect all segments exactly, build the planar half-edge graph, trace
// and group faces, propagate winding maps, resolve each face's program,
// and emit renderable faces per the chosen strategy.
func Resolve(paths []scene.RenderPath, prog *program.Node, strategy Strategy) ([]program.RenderableFace, error) {
	var flat [][]struct{ X, Y float64 }
	var flatPath []scene.PathID
	for _, p := range paths {
		for _, sub := range p.Subpaths {
			if len(sub.Vertices) < 2 {
				continue
			}
			verts := make([]struct{ X, Y float64 }, len(sub.Vertices))
			for i, v := range sub.Vertices {
				verts[i] = struct{ X, Y float64 }{v.X, v.Y}
			}
			flat = append(flat, verts)
			flatPath = append(flatPath, p.ID)
		}
	}
	if len(flat) == 0 {
		return nil, nil
	}

	segs, inv, err := numeric.Integerize(flat, integerizePrecisionBits)
	if err != nil {
		return nil, fmt.Errorf("cag: %w", err)
	}
	for i := range segs {
		segs[i].PathID = int(flatPath[segs[i].PathID])
	}

	splits := intersectAll(segs)
	g := newGraph()
	for i, seg := range segs {
		pts := splits[i]
		for j := 0; j+1 < len(pts); j++ {
			g.addSegment(pts[j], pts[j+1], seg.PathID)
		}
	}
	if len(g.edges) == 0 {
		return nil, nil
	}

	g.linkFaces()
	loops := traceLoops(g)
	faces, loopToFace := groupLoops(g, loops)
	edgeLoop := buildEdgeLoop(g, loops)
	winding := resolveWinding(g, loops, loopToFace)

	resolved := make([]resolvedFace, 0, len(faces))
	for fi := range faces {
		wm := scene.WindingMap{}
		for id, w := range winding[fi] {
			wm[scene.PathID(id)] = w
		}
		faces[fi].Winding = winding[fi]
		p := program.Simplify(program.ResolvePathBooleans(prog, wm))
		if p.IsFullyTransparent() {
			continue
		}
		resolved = append(resolved, resolvedFace{idx: fi, face: faces[fi], program: p})
	}
	if len(resolved) == 0 {
		return nil, nil
	}

	switch strategy {
	case StrategyFullyCombined:
		return combineFully(resolved, inv), nil
	case StrategySimplifyingCombined:
		return combineAdjacent(g, loops, loopToFace, edgeLoop, resolved, inv, false), nil
	case StrategyTraced:
		return combineAdjacent(g, loops, loopToFace, edgeLoop, resolved, inv, true), nil
	default:
		return emitSimple(resolved, inv), nil
	}
}

type resolvedFace struct {
	idx     int
	face    RationalFace
	program *program.Node
}

func buildEdgeLoop(g *graph, loops []loop) []int {
	edgeLoop := make([]int, len(g.edges))
	for li, lp := range loops {
		for _, ei := range lp.edges {
			edgeLoop[ei] = li
		}
	}
	return edgeLoop
}

// toFacePolygons maps a rational face's loops back to float space as
// polygon loops (outer CCW, holes CW, orientations preserved from
// tracing).
func toFacePolygons(f RationalFace, inv numeric.InverseTransform) []face.Polygon {
	out := make([]face.Polygon, 0, 1+len(f.Holes))
	out = append(out, loopToPolygon(f.Outer, inv))
	for _, h := range f.Holes {
		out = append(out, loopToPolygon(h, inv))
	}
	return out
}

func loopToPolygon(pts []numeric.Rat2, inv numeric.InverseTransform) face.Polygon {
	verts := make([]geom2.Point2, len(pts))
	for i, p := range pts {
		x, y := inv.ApplyRat(p)
		verts[i] = geom2.Point2{X: x, Y: y}
	}
	return face.Polygon{Vertices: verts}
}

func renderable(f face.ClippableFace, p *program.Node) program.RenderableFace {
	return program.RenderableFace{Face: f, Program: p, Bounds: face.GetBounds(f)}
}

func emitSimple(resolved []resolvedFace, inv numeric.InverseTransform) []program.RenderableFace {
	out := make([]program.RenderableFace, 0, len(resolved))
	for _, rf := range resolved {
		out = append(out, renderable(face.NewPolygonal(toFacePolygons(rf.face, inv)), rf.program))
	}
	return out
}

func combineFully(resolved []resolvedFace, inv numeric.InverseTransform) []program.RenderableFace {
	var out []program.RenderableFace
	var classes []*program.Node
	var polys [][]face.Polygon
	for _, rf := range resolved {
		found := -1
		for ci, p := range classes {
			if p.Equals(rf.program) {
				found = ci
				break
			}
		}
		if found == -1 {
			classes = append(classes, rf.program)
			polys = append(polys, nil)
			found = len(classes) - 1
		}
		polys[found] = append(polys[found], toFacePolygons(rf.face, inv)...)
	}
	for ci, p := range classes {
		out = append(out, renderable(face.NewPolygonal(polys[ci]), p))
	}
	return out
}

// combineAdjacent merges faces that share an edge and resolve to equal
// programs (union-find over the shared-edge adjacency), then emits each
// merged group's boundary: the half-edges whose twin lies outside the
// group. Interior shared edges cancel by construction. With retrace set
// the boundary is chained back into polygon loops; otherwise the group
// stays an edge set.
func combineAdjacent(g *graph, loops []loop, loopToFace, edgeLoop []int, resolved []resolvedFace, inv numeric.InverseTransform, retrace bool) []program.RenderableFace {
	byFace := map[int]int{} // rational face index -> resolved index
	for ri, rf := range resolved {
		byFace[rf.idx] = ri
	}

	parent := make([]int, len(resolved))
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
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for ei := range g.edges {
		left, okL := byFace[loopToFace[edgeLoop[ei]]]
		right, okR := byFace[loopToFace[edgeLoop[g.edges[ei].twin]]]
		if okL && okR && resolved[left].program.Equals(resolved[right].program) {
			union(left, right)
		}
	}

	groups := map[int][]int{}
	for ri := range resolved {
		root := find(ri)
		groups[root] = append(groups[root], ri)
	}

	var out []program.RenderableFace
	for root, members := range groups {
		inGroup := map[int]bool{}
		for _, ri := range members {
			inGroup[resolved[ri].idx] = true
		}

		var edges []face.LinearEdge
		for _, ri := range members {
			rf := resolved[ri].face
			faceLoops := append([]int{rf.outerLoopIdx}, rf.holeLoopIdx...)
			for _, li := range faceLoops {
				for _, ei := range loops[li].edges {
					twinFace := loopToFace[edgeLoop[g.edges[ei].twin]]
					if inGroup[twinFace] {
						continue // interior shared edge, cancels with its twin
					}
					he := g.edges[ei]
					ax, ay := inv.ApplyRat(g.verts[he.from].p)
					bx, by := inv.ApplyRat(g.verts[he.to].p)
					edges = append(edges, face.NewEdge(geom2.Point2{X: ax, Y: ay}, geom2.Point2{X: bx, Y: by}))
				}
			}
		}

		var f face.ClippableFace
		if retrace {
			f = face.NewPolygonal(face.ChainEdgesToLoops(edges))
		} else {
			f = face.NewEdged(edges)
		}
		out = append(out, renderable(f, resolved[root].program))
	}
	return out
}
