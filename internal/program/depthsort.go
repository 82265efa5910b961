package program

import (
	"math"
	"sort"

	"vraster/internal/colorspace"
	"vraster/internal/face"
	"vraster/internal/geom2"
)

const depthSplitAreaEpsilon = 1e-8

// depthPlane returns the affine depth z(x,y) = a*x + b*y + c interpolating
// the item's per-vertex depths across its 2-D triangle; ok is false for a
// degenerate (near-zero-area) triangle.
func depthPlane(item RenderPlanar) (a, b, c float64, ok bool) {
	p0, p1, p2 := item.TriangleXY[0], item.TriangleXY[1], item.TriangleXY[2]
	z0, z1, z2 := item.TriangleZ[0], item.TriangleZ[1], item.TriangleZ[2]
	nz := p1.Sub(p0).Cross(p2.Sub(p0)) // twice the signed 2-D area
	if math.Abs(nz) < depthSplitAreaEpsilon {
		return 0, 0, 0, false
	}
	nx := (p1.Y-p0.Y)*(z2-z0) - (z1-z0)*(p2.Y-p0.Y)
	ny := (z1-z0)*(p2.X-p0.X) - (p1.X-p0.X)*(z2-z0)
	a = -nx / nz
	b = -ny / nz
	c = z0 - a*p0.X - b*p0.Y
	return a, b, c, true
}

// Split resolves a DepthSort node at a single query point: items are
// ordered back-to-front by their interpolated depth at p and replaced by
// a Stack in that order. This is the partition's answer for a point; a
// face spanning a depth crossing goes through evalDepthSort instead,
// which partitions the face geometrically.
func Split(n *Node, p geom2.Point2) *Node {
	type entry struct {
		depth   float64
		program *Node
	}
	entries := make([]entry, 0, len(n.Planar))
	for _, item := range n.Planar {
		a, b, c, ok := depthPlane(item)
		if !ok {
			continue
		}
		entries = append(entries, entry{depth: a*p.X + b*p.Y + c, program: item.Program})
	}
	if len(entries) == 0 {
		return NewColor(colorspace.Color{Premultiplied: true})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].depth > entries[j].depth })
	programs := make([]*Node, len(entries))
	for i, e := range entries {
		programs[i] = e.program
	}
	return NewStack(programs...)
}

// evalDepthSort evaluates a DepthSort node over the context's sub-face by
// enumerating the face partition induced by the items' pairwise
// equal-depth lines: the face is sliced by every such half-plane
// boundary, each surviving cell gets a Stack in that cell's back-to-front
// depth order, and the result is the area-weighted sum of the per-cell
// colors. Cells below the area epsilon are discarded. Without a face in
// the context the partition degenerates to the centroid point query.
func evalDepthSort(n *Node, ctx Context) colorspace.Color {
	if ctx.Face == nil {
		return Evaluate(Split(n, ctx.Centroid), ctx)
	}

	type plane struct {
		a, b, c float64
	}
	planes := make([]plane, 0, len(n.Planar))
	for _, item := range n.Planar {
		if a, b, c, ok := depthPlane(item); ok {
			planes = append(planes, plane{a, b, c})
		}
	}

	cells := []face.ClippableFace{*ctx.Face}
	for i := range planes {
		for j := i + 1; j < len(planes); j++ {
			na := planes[i].a - planes[j].a
			nb := planes[i].b - planes[j].b
			if math.Abs(na)+math.Abs(nb) < depthSplitAreaEpsilon {
				continue // parallel depth planes never cross
			}
			d := planes[j].c - planes[i].c
			normal := geom2.Point2{X: na, Y: nb}
			next := cells[:0:0]
			for _, cell := range cells {
				lo, hi := face.GetBinaryLineClip(cell, normal, d)
				for _, part := range []face.ClippableFace{lo, hi} {
					if math.Abs(face.GetArea(part)) >= depthSplitAreaEpsilon {
						next = append(next, part)
					}
				}
			}
			cells = next
		}
	}

	var acc colorspace.Color
	acc.Premultiplied = true
	total := 0.0
	for i := range cells {
		area := face.GetArea(cells[i])
		if math.Abs(area) < depthSplitAreaEpsilon {
			continue
		}
		cx, cy := face.GetCentroid(cells[i], area)
		centroid := geom2.Point2{X: cx, Y: cy}
		cellCtx := Context{Face: &cells[i], Area: area, Centroid: centroid, Winding: ctx.Winding}
		c := colorspace.Premultiply(Evaluate(Split(n, centroid), cellCtx))
		acc.R += c.R * area
		acc.G += c.G * area
		acc.B += c.B * area
		acc.A += c.A * area
		acc.Space = c.Space
		total += area
	}
	if total == 0 {
		return Evaluate(Split(n, ctx.Centroid), ctx)
	}
	acc.R /= total
	acc.G /= total
	acc.B /= total
	acc.A /= total
	return acc
}
