package program

import "vraster/internal/geom2"

// Transformed pushes an affine transform into the tree's positional data
// (gradient axes, image placement, triangles, light positions) and
// recurses into children. Pure color operations (Alpha, Filter,
// color-space conversions) are position-free and only recurse.
func Transformed(n *Node, m geom2.Matrix2x3) *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KColor:
		return n
	case KImage:
		return NewImage(n.ImageW, n.ImageH, n.ImagePixels, m.Multiply(n.ImageTransform), n.Extend, n.Resample)
	case KLinearBlend, KRadialBlend:
		clone := *n
		clone.AxisStart = m.Transform(n.AxisStart)
		clone.AxisEnd = m.Transform(n.AxisEnd)
		if oldLen := n.AxisEnd.Sub(n.AxisStart).Length(); oldLen > 0 {
			clone.RadialInner = n.RadialInner * clone.AxisEnd.Sub(clone.AxisStart).Length() / oldLen
		}
		clone.BlendA = Transformed(n.BlendA, m)
		clone.BlendB = Transformed(n.BlendB, m)
		return &clone
	case KLinearGradient, KRadialGradient:
		clone := *n
		clone.AxisStart = m.Transform(n.AxisStart)
		clone.AxisEnd = m.Transform(n.AxisEnd)
		return &clone
	case KBarycentricBlend, KBarycentricPerspectiveBlend:
		clone := *n
		for i, p := range n.TriangleXY {
			clone.TriangleXY[i] = m.Transform(p)
		}
		for i, c := range n.Corners {
			clone.Corners[i] = Transformed(c, m)
		}
		return &clone
	case KPhong:
		clone := *n
		clone.Lights = make([]Light, len(n.Lights))
		for i, l := range n.Lights {
			clone.Lights[i] = Light{Position: m.Transform(l.Position), Intensity: l.Intensity}
		}
		return &clone
	case KDepthSort:
		clone := *n
		clone.Planar = make([]RenderPlanar, len(n.Planar))
		for i, item := range n.Planar {
			clone.Planar[i] = RenderPlanar{
				Program:   Transformed(item.Program, m),
				TriangleZ: item.TriangleZ,
			}
			for j, p := range item.TriangleXY {
				clone.Planar[i].TriangleXY[j] = m.Transform(p)
			}
		}
		return &clone
	case KPathBoolean:
		inside := Transformed(n.Inside, m)
		outside := Transformed(n.Outside, m)
		if inside == n.Inside && outside == n.Outside {
			return n
		}
		return NewPathBoolean(n.Path, n.Fill, inside, outside)
	default:
		if len(n.Children) == 0 {
			return n
		}
		changed := false
		children := make([]*Node, len(n.Children))
		for i, c := range n.Children {
			children[i] = Transformed(c, m)
			if children[i] != c {
				changed = true
			}
		}
		if !changed {
			return n
		}
		clone := *n
		clone.Children = children
		return &clone
	}
}
