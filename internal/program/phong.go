package program

import (
	"math"

	"vraster/internal/colorspace"
)

// evalPhong shades a flat fragment using the node's stored ambient/diffuse/
// specular terms and light list, treating the fragment as facing the
// viewer along +Z. The depth-sort split step establishes which triangle's
// Phong node is visible at a given face, so no normal needs to be carried
// through Context for the flat-shaded case. No other normal is used:
// Normalize and NormalDebug nodes do not pass one into this shading.
func evalPhong(n *Node, ctx Context) colorspace.Color {
	normal := vec3{0, 0, 1}
	viewDir := vec3{0, 0, 1}

	out := colorspace.Premultiply(n.Ambient)
	for _, light := range n.Lights {
		lightPos := vec3{light.Position.X, light.Position.Y, 1}
		lightDir := lightPos.normalize()

		diff := math.Max(normal.dot(lightDir), 0)
		diffuse := colorspace.Premultiply(n.Diffuse)
		intensity := colorspace.Premultiply(light.Intensity)

		out.R += diffuse.R * intensity.R * diff
		out.G += diffuse.G * intensity.G * diff
		out.B += diffuse.B * intensity.B * diff

		if diff > 0 && n.Shininess > 0 {
			halfway := lightDir.add(viewDir).normalize()
			spec := math.Pow(math.Max(normal.dot(halfway), 0), n.Shininess)
			specular := colorspace.Premultiply(n.Specular)
			out.R += specular.R * intensity.R * spec
			out.G += specular.G * intensity.G * spec
			out.B += specular.B * intensity.B * spec
		}
	}
	out.A = 1
	out.Premultiplied = true
	return out
}

// vec3 is a minimal 3-component vector carrying just the operations Phong
// shading needs.
type vec3 struct{ X, Y, Z float64 }

func (a vec3) add(b vec3) vec3 { return vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a vec3) dot(b vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}
func (a vec3) length() float64 { return math.Sqrt(a.dot(a)) }
func (a vec3) normalize() vec3 {
	l := a.length()
	if l == 0 {
		return a
	}
	return vec3{a.X / l, a.Y / l, a.Z / l}
}
