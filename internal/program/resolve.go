package program

import "vraster/internal/scene"

// ResolvePathBooleans substitutes every PathBoolean node by its inside or
// outside child according to the face's winding map and the path's fill
// rule, returning a tree with no PathBoolean nodes left. The result is
// not yet simplified; callers run Simplify afterwards so the substituted
// branches collapse (dropped transparent layers, merged constants).
func ResolvePathBooleans(n *Node, winding scene.WindingMap) *Node {
	if n == nil {
		return nil
	}
	if n.Kind == KPathBoolean {
		if n.Fill.Includes(winding.Winding(n.Path)) {
			return ResolvePathBooleans(n.Inside, winding)
		}
		return ResolvePathBooleans(n.Outside, winding)
	}

	changed := false
	var children []*Node
	if len(n.Children) > 0 {
		children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			children[i] = ResolvePathBooleans(c, winding)
			if children[i] != c {
				changed = true
			}
		}
	}
	blendA := ResolvePathBooleans(n.BlendA, winding)
	blendB := ResolvePathBooleans(n.BlendB, winding)
	var corners [3]*Node
	for i, c := range n.Corners {
		corners[i] = ResolvePathBooleans(c, winding)
		if corners[i] != c {
			changed = true
		}
	}
	var planar []RenderPlanar
	if len(n.Planar) > 0 {
		planar = make([]RenderPlanar, len(n.Planar))
		for i, item := range n.Planar {
			planar[i] = item
			planar[i].Program = ResolvePathBooleans(item.Program, winding)
			if planar[i].Program != item.Program {
				changed = true
			}
		}
	}
	if blendA != n.BlendA || blendB != n.BlendB {
		changed = true
	}
	if !changed {
		return n
	}
	clone := *n
	clone.Children = children
	clone.BlendA = blendA
	clone.BlendB = blendB
	clone.Corners = corners
	clone.Planar = planar
	clone.recomputeFlags()
	return &clone
}
