package program

import "vraster/internal/colorspace"

// Simplify applies the algebraic rewrite rules from the render-program
// contract until a fixed point: fully-transparent Stack children are
// dropped, adjacent constant-color Stack children are pre-composited,
// nested Alpha nodes collapse, Filter-of-constant collapses to a constant,
// and color-space conversions cancel their inverse. Simplification never
// changes observable output.
func Simplify(n *Node) *Node {
	for {
		next := simplifyOnce(n)
		if next == n {
			return n
		}
		n = next
	}
}

func simplifyOnce(n *Node) *Node {
	if n == nil {
		return n
	}
	switch n.Kind {
	case KStack:
		return simplifyStack(n)
	case KAlpha:
		child := simplifyOnce(n.Children[0])
		if child.Kind == KAlpha {
			return NewAlpha(child.Children[0], child.AlphaFactor*n.AlphaFactor)
		}
		if child.Kind == KColor {
			c := colorspace.Premultiply(child.Color)
			c.R *= n.AlphaFactor
			c.G *= n.AlphaFactor
			c.B *= n.AlphaFactor
			c.A *= n.AlphaFactor
			return NewColor(c)
		}
		if child != n.Children[0] {
			return NewAlpha(child, n.AlphaFactor)
		}
		return n
	case KFilter:
		child := simplifyOnce(n.Children[0])
		if child.Kind == KColor {
			return NewColor(applyFilterToColor(n, child.Color))
		}
		if child != n.Children[0] {
			return NewFilter(child, n.FilterMatrix, n.FilterOffset)
		}
		return n
	case KColorSpaceConvert:
		child := simplifyOnce(n.Children[0])
		if child.Kind == KColorSpaceConvert && child.To == n.From {
			if child.From == n.To {
				return child.Children[0] // inverse cancels
			}
			return NewColorSpaceConvert(child.Children[0], child.From, n.To)
		}
		if child != n.Children[0] {
			return NewColorSpaceConvert(child, n.From, n.To)
		}
		return n
	case KPremultiply:
		child := simplifyOnce(n.Children[0])
		if child.Kind == KUnpremultiply {
			return child.Children[0]
		}
		if child != n.Children[0] {
			return NewPremultiply(child)
		}
		return n
	case KUnpremultiply:
		child := simplifyOnce(n.Children[0])
		if child.Kind == KPremultiply {
			return child.Children[0]
		}
		if child != n.Children[0] {
			return NewUnpremultiply(child)
		}
		return n
	case KBlendCompose:
		dst := simplifyOnce(n.Children[0])
		src := simplifyOnce(n.Children[1])
		if src.fullyTransparent && n.PorterDuff != PorterDuffIn && n.PorterDuff != PorterDuffOut {
			return dst
		}
		if dst != n.Children[0] || src != n.Children[1] {
			return NewBlendCompose(dst, src, n.PorterDuff, n.Blend)
		}
		return n
	case KLinearGradient, KRadialGradient:
		return DecomposeGradient(n)
	case KLinearBlend, KRadialBlend:
		a := simplifyOnce(n.BlendA)
		b := simplifyOnce(n.BlendB)
		if a.Equals(b) {
			return a
		}
		if a != n.BlendA || b != n.BlendB {
			clone := *n
			clone.BlendA, clone.BlendB = a, b
			return &clone
		}
		return n
	case KPathBoolean:
		// Resolved during CAG winding resolution; simplify recurses into
		// both branches so they stay simplified once substituted.
		inside := simplifyOnce(n.Inside)
		outside := simplifyOnce(n.Outside)
		if inside != n.Inside || outside != n.Outside {
			return NewPathBoolean(n.Path, n.Fill, inside, outside)
		}
		return n
	default:
		return simplifyChildrenGeneric(n)
	}
}

func simplifyStack(n *Node) *Node {
	changed := false
	kept := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		sc := simplifyOnce(c)
		if sc != c {
			changed = true
		}
		if sc.fullyTransparent {
			changed = true
			continue
		}
		kept = append(kept, sc)
	}
	// Pre-composite adjacent constant colors and drop anything painted
	// under a later fully-opaque layer (an OpaqueJump at simplify time).
	merged := make([]*Node, 0, len(kept))
	for _, c := range kept {
		if len(merged) > 0 && merged[len(merged)-1].Kind == KColor && c.Kind == KColor {
			under := merged[len(merged)-1].Color
			merged[len(merged)-1] = NewColor(composite(colorspace.Premultiply(under), colorspace.Premultiply(c.Color), PorterDuffOver, BlendNormal))
			changed = true
			continue
		}
		merged = append(merged, c)
	}
	trimmed := merged
	for i := len(trimmed) - 1; i > 0; i-- {
		if trimmed[i].fullyOpaque {
			if i < len(trimmed)-0 && len(trimmed) > i+1 {
				changed = true
			}
			trimmed = trimmed[i:]
			changed = true
			break
		}
	}
	if len(trimmed) == 1 {
		return trimmed[0]
	}
	if !changed {
		return n
	}
	return NewStack(trimmed...)
}

func simplifyChildrenGeneric(n *Node) *Node {
	if len(n.Children) == 0 {
		return n
	}
	changed := false
	newChildren := make([]*Node, len(n.Children))
	for i, c := range n.Children {
		sc := simplifyOnce(c)
		newChildren[i] = sc
		if sc != c {
			changed = true
		}
	}
	if !changed {
		return n
	}
	clone := *n
	clone.Children = newChildren
	clone.recomputeFlags()
	return &clone
}

func applyFilterToColor(n *Node, c colorspace.Color) colorspace.Color {
	c = colorspace.Premultiply(c)
	in := [4]float64{c.R, c.G, c.B, c.A}
	var out [4]float64
	for i := 0; i < 4; i++ {
		v := n.FilterOffset[i]
		for j := 0; j < 4; j++ {
			v += n.FilterMatrix[i][j] * in[j]
		}
		out[i] = v
	}
	return colorspace.Color{R: out[0], G: out[1], B: out[2], A: out[3], Premultiplied: true}
}
