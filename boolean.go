package vraster

import (
	"vraster/internal/cag"
	"vraster/internal/face"
	"vraster/internal/scene"
)

// PolygonalBoolean computes boolean combinations of two filled paths,
// returning polygonal outputs (outer loops counter-clockwise, holes
// clockwise). It drives the same winding-based resolver as Rasterize
// with a membership program per operation instead of a paint program.
type PolygonalBoolean struct{}

// Overlaps is GetOverlaps' result: the three disjoint regions two paths
// partition their union into.
type Overlaps struct {
	AOnly        [][]Point2
	BOnly        [][]Point2
	Intersection [][]Point2
}

// Union returns the region inside a or b.
func (PolygonalBoolean) Union(a, b RenderPath) ([][]Point2, error) {
	return resolveRegion(a, b, func(inA, inB *RenderProgram) *RenderProgram {
		return membership(a, inA, membership(b, inB, transparent()))
	})
}

// Intersection returns the region inside both a and b.
func (PolygonalBoolean) Intersection(a, b RenderPath) ([][]Point2, error) {
	return resolveRegion(a, b, func(inA, inB *RenderProgram) *RenderProgram {
		return membershipBoth(a, b, inA)
	})
}

// Difference returns the region inside a but not b.
func (PolygonalBoolean) Difference(a, b RenderPath) ([][]Point2, error) {
	return resolveRegion(a, b, func(inA, inB *RenderProgram) *RenderProgram {
		return membership(a, membershipNot(b, inA), transparent())
	})
}

// GetOverlaps partitions a and b into a-only, b-only, and intersection
// regions in one call.
func (pb PolygonalBoolean) GetOverlaps(a, b RenderPath) (Overlaps, error) {
	aOnly, err := pb.Difference(a, b)
	if err != nil {
		return Overlaps{}, err
	}
	bOnly, err := pb.Difference(b, a)
	if err != nil {
		return Overlaps{}, err
	}
	both, err := pb.Intersection(a, b)
	if err != nil {
		return Overlaps{}, err
	}
	return Overlaps{AOnly: aOnly, BOnly: bOnly, Intersection: both}, nil
}

func transparent() *RenderProgram {
	return NewColor(Color{Premultiplied: true})
}

func opaque() *RenderProgram {
	return NewColor(Color{R: 1, G: 1, B: 1, A: 1, Premultiplied: true})
}

// membership selects inside when the face is included by p's fill rule.
func membership(p RenderPath, inside, outside *RenderProgram) *RenderProgram {
	return NewPathBoolean(p.ID, p.Fill, inside, outside)
}

// membershipNot selects inside only when the face is NOT included by p.
func membershipNot(p RenderPath, inside *RenderProgram) *RenderProgram {
	return NewPathBoolean(p.ID, p.Fill, transparent(), inside)
}

func membershipBoth(a, b RenderPath, inside *RenderProgram) *RenderProgram {
	return membership(a, membership(b, inside, transparent()), transparent())
}

func resolveRegion(a, b RenderPath, build func(inA, inB *RenderProgram) *RenderProgram) ([][]Point2, error) {
	a.ID, b.ID = 0, 1
	prog := build(opaque(), opaque())
	faces, err := cag.Resolve([]scene.RenderPath{a, b}, prog, cag.StrategyTraced)
	if err != nil {
		return nil, newError(ErrNumericOverflow, err)
	}
	var out [][]Point2
	for _, rf := range faces {
		for _, poly := range rf.Face.Polygons() {
			out = append(out, poly.Vertices)
		}
	}
	return out, nil
}

// PolygonsArea returns the signed area of a polygonal output (holes,
// traced clockwise, subtract naturally).
func PolygonsArea(polys [][]Point2) float64 {
	var fp []face.Polygon
	for _, p := range polys {
		fp = append(fp, face.Polygon{Vertices: p})
	}
	return face.GetArea(face.NewPolygonal(fp))
}
