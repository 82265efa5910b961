package program

import "vraster/internal/colorspace"

// DecomposeGradient rewrites a LinearGradient/RadialGradient node into a
// nested chain of LinearBlend/RadialBlend nodes, one per stop interval.
// Evaluating the chain at parameter t reproduces sampleStops exactly:
// every blend outside t's interval clamps to ratio 0 or 1 and selects
// through, leaving only the interval's own local ratio live. Returns n
// unchanged for other kinds.
func DecomposeGradient(n *Node) *Node {
	if n.Kind != KLinearGradient && n.Kind != KRadialGradient {
		return n
	}
	stops := n.Stops
	if len(stops) == 0 {
		return NewColor(colorspace.Color{Premultiplied: true})
	}
	if len(stops) == 1 {
		return NewColor(stops[0].Color)
	}

	axis := n.AxisEnd.Sub(n.AxisStart)
	radius := axis.Length()

	chain := NewColor(stops[0].Color)
	for i := 1; i < len(stops); i++ {
		next := NewColor(stops[i].Color)
		if n.Kind == KLinearGradient {
			segStart := n.AxisStart.Add(axis.Scale(stops[i-1].Position))
			segEnd := n.AxisStart.Add(axis.Scale(stops[i].Position))
			chain = NewLinearBlend(segStart, segEnd, chain, next)
		} else {
			outerEdge := n.AxisStart.Add(axis.Scale(stops[i].Position))
			chain = NewRadialBlendRing(n.AxisStart, outerEdge, radius*stops[i-1].Position, chain, next)
		}
	}
	return chain
}
