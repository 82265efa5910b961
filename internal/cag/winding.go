package cag

// resolveWinding propagates winding maps across the half-edge graph by
// breadth-first search over regions. Region -1 is the unbounded outer
// face and carries the empty winding map; crossing a half-edge from the
// region on its right to the region on its left adds the edge's per-path
// delta. Every region reachable through the graph gets a map; isolated
// regions cannot occur because every loop borders the outer face through
// some chain of twins.
func resolveWinding(g *graph, loops []loop, loopToFace []int) []map[int]int {
	edgeLoop := make([]int, len(g.edges))
	for li, lp := range loops {
		for _, ei := range lp.edges {
			edgeLoop[ei] = li
		}
	}

	// region index: faces 0..n-1, plus n for the unbounded outer region.
	nFaces := 0
	for _, f := range loopToFace {
		if f >= nFaces {
			nFaces = f + 1
		}
	}
	outer := nFaces
	region := func(loopIdx int) int {
		f := loopToFace[loopIdx]
		if f < 0 {
			return outer
		}
		return f
	}

	winding := make([]map[int]int, nFaces+1)
	winding[outer] = map[int]int{}

	queue := []int{outer}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for ei := range g.edges {
			he := g.edges[ei]
			left := region(edgeLoop[ei])
			right := region(edgeLoop[he.twin])
			if right != cur || winding[left] != nil {
				continue
			}
			w := make(map[int]int, len(winding[cur])+len(he.delta))
			for k, v := range winding[cur] {
				w[k] = v
			}
			for k, v := range he.delta {
				w[k] += v
			}
			winding[left] = w
			queue = append(queue, left)
		}
	}

	// Unreachable regions (possible only for degenerate zero-area loops
	// the tracer kept) default to empty rather than nil so callers can
	// index without a guard.
	for i := range winding {
		if winding[i] == nil {
			winding[i] = map[int]int{}
		}
	}
	return winding[:nFaces]
}
