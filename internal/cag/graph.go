// Package cag implements constructive area geometry: resolving a set of
// overlapping RenderPaths into a planar partition of rational-coordinate
// faces, each tagged with a WindingMap, and combining adjacent faces
// whose resolved render programs coincide. All intersection and ordering
// decisions run on exact rational arithmetic (internal/numeric), so
// degenerate inputs resolve deterministically instead of depending on
// float epsilons.
package cag

import (
	"sort"

	"vraster/internal/numeric"
)

// vertex is one distinct rational point in the planar graph.
type vertex struct {
	p   numeric.Rat2
	out []int // indices into graph.edges of half-edges leaving this vertex
}

// halfEdge is one directed arc between two vertices. Every geometric
// segment after splitting contributes exactly two half-edges (one per
// direction); twin links them.
type halfEdge struct {
	from, to int
	twin     int
	next     int // set by linkFaces; index of the next half-edge tracing the same face
	// delta maps source path id -> signed winding contribution of
	// traveling this directed half-edge once (crossing from the face on
	// its right to the face on its left increases that path's winding by
	// this amount).
	delta map[int]int
}

// graph is the planar straight-line half-edge graph built from a set of
// integerized, pairwise-intersected segments.
type graph struct {
	verts []vertex
	edges []halfEdge
}

func newGraph() *graph {
	return &graph{}
}

// vertexFor returns the index of the vertex at p, creating one if no
// existing vertex matches exactly. Linear scan is acceptable here: vertex
// counts are bounded by the number of post-intersection segment
// endpoints, already small relative to the O(n^2) intersection pass.
func (g *graph) vertexFor(p numeric.Rat2) int {
	for i, v := range g.verts {
		if v.p.Equal(p) {
			return i
		}
	}
	idx := len(g.verts)
	g.verts = append(g.verts, vertex{p: p})
	return idx
}

// addDirected appends one directed half-edge u->v with the given path
// delta, returning its index. Zero-length edges (u==v) are rejected by
// the caller before this is reached.
func (g *graph) addDirected(u, v int, pathID, delta int) int {
	idx := len(g.edges)
	g.edges = append(g.edges, halfEdge{from: u, to: v, twin: -1, delta: map[int]int{pathID: delta}})
	g.verts[u].out = append(g.verts[u].out, idx)
	return idx
}

// addSegment inserts both directions of one split segment, merging into
// an existing coincident half-edge (same endpoints, same direction) if
// one is already present rather than creating a parallel duplicate arc —
// this is how overlapping collinear path edges accumulate winding deltas
// on a single shared arc instead of producing degenerate zero-width
// faces between duplicate edges.
func (g *graph) addSegment(a, b numeric.Rat2, pathID int) {
	if a.Equal(b) {
		return
	}
	u, v := g.vertexFor(a), g.vertexFor(b)
	if fwd, ok := g.findDirected(u, v); ok {
		g.edges[fwd].delta[pathID]++
		return
	}
	fwd := g.addDirected(u, v, pathID, 1)
	var back int
	if bk, ok := g.findDirected(v, u); ok {
		back = bk
		g.edges[bk].delta[pathID]--
	} else {
		back = g.addDirected(v, u, pathID, -1)
	}
	g.edges[fwd].twin = back
	g.edges[back].twin = fwd
}

func (g *graph) findDirected(u, v int) (int, bool) {
	for _, idx := range g.verts[u].out {
		if g.edges[idx].to == v {
			return idx, true
		}
	}
	return -1, false
}

// linkFaces orders each vertex's outgoing half-edges by angle
// (CCW, via numeric.AngleLess's rational cross-product ordering) and
// wires next() pointers so following next() traces a face boundary with
// that face's interior on the left of every half-edge, per the standard
// DCEL face-extraction rule: next(he) is the half-edge immediately
// preceding twin(he) in the CCW order around he's destination vertex
// (equivalently, immediately following it in CW order).
func (g *graph) linkFaces() {
	for vi := range g.verts {
		out := g.verts[vi].out
		sort.Slice(out, func(i, j int) bool {
			di := g.direction(out[i])
			dj := g.direction(out[j])
			return numeric.AngleLess(di, dj)
		})
	}
	for ei := range g.edges {
		he := &g.edges[ei]
		v := he.to
		out := g.verts[v].out
		twinIdx := indexOf(out, he.twin)
		prev := out[(twinIdx-1+len(out))%len(out)]
		he.next = prev
	}
}

func (g *graph) direction(edgeIdx int) numeric.Rat2 {
	e := g.edges[edgeIdx]
	return g.verts[e.to].p.Sub(g.verts[e.from].p)
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
