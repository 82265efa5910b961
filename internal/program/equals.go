package program

import "vraster/internal/colorspace"

// Equals performs structural equality between n and o, short-circuiting
// on pointer identity: two nodes built as the same *Node (common after
// simplification hoists shared subtrees) compare equal in O(1) without
// descending, and the recursion stops at any identity-shared child pair.
// No memo table is kept, so distinct but structurally equal subtrees are
// compared in full each time they are reached.
func (n *Node) Equals(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case KColor:
		return n.Color == o.Color
	case KStack:
		return equalChildren(n.Children, o.Children)
	case KAlpha:
		return n.AlphaFactor == o.AlphaFactor && equalChildren(n.Children, o.Children)
	case KBlendCompose:
		return n.PorterDuff == o.PorterDuff && n.Blend == o.Blend && equalChildren(n.Children, o.Children)
	case KPathBoolean:
		return n.Path == o.Path && n.Fill == o.Fill && n.Inside.Equals(o.Inside) && n.Outside.Equals(o.Outside)
	case KFilter:
		return n.FilterMatrix == o.FilterMatrix && n.FilterOffset == o.FilterOffset && equalChildren(n.Children, o.Children)
	case KImage:
		return n.ImageW == o.ImageW && n.ImageH == o.ImageH && n.ImageTransform == o.ImageTransform &&
			n.Extend == o.Extend && n.Resample == o.Resample && samePixels(n.ImagePixels, o.ImagePixels)
	case KLinearBlend, KRadialBlend:
		return n.AxisStart == o.AxisStart && n.AxisEnd == o.AxisEnd && n.RadialInner == o.RadialInner &&
			n.BlendA.Equals(o.BlendA) && n.BlendB.Equals(o.BlendB)
	case KLinearGradient, KRadialGradient:
		return n.AxisStart == o.AxisStart && n.AxisEnd == o.AxisEnd && n.Accuracy == o.Accuracy && sameStops(n.Stops, o.Stops)
	case KBarycentricBlend, KBarycentricPerspectiveBlend:
		return n.TriangleXY == o.TriangleXY && n.TriangleW == o.TriangleW &&
			n.Corners[0].Equals(o.Corners[0]) && n.Corners[1].Equals(o.Corners[1]) && n.Corners[2].Equals(o.Corners[2])
	case KPhong:
		return n.Ambient == o.Ambient && n.Diffuse == o.Diffuse && n.Specular == o.Specular &&
			n.Shininess == o.Shininess && sameLights(n.Lights, o.Lights)
	case KNormalize, KNormalDebug, KPremultiply, KUnpremultiply:
		return equalChildren(n.Children, o.Children)
	case KDepthSort:
		return samePlanar(n.Planar, o.Planar)
	case KColorSpaceConvert:
		return n.From == o.From && n.To == o.To && equalChildren(n.Children, o.Children)
	default:
		return false
	}
}

func equalChildren(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

func samePixels(a, b []colorspace.Color) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameStops(a, b []GradientStop) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Position != b[i].Position || a[i].Color != b[i].Color {
			return false
		}
	}
	return true
}

func sameLights(a, b []Light) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Position != b[i].Position || a[i].Intensity != b[i].Intensity {
			return false
		}
	}
	return true
}

func samePlanar(a, b []RenderPlanar) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].TriangleXY != b[i].TriangleXY || a[i].TriangleZ != b[i].TriangleZ || !a[i].Program.Equals(b[i].Program) {
			return false
		}
	}
	return true
}
