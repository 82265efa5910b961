// Package scene holds the value types shared by the CAG and render-program
// layers: render paths, fill rules, and winding maps. Kept separate so
// internal/program (the expression DAG) and internal/cag (the geometry
// solver) can both depend on it without depending on each other.
package scene

import "vraster/internal/geom2"

// FillRule selects which winding numbers a path is considered to "contain".
type FillRule int

const (
	FillNonzero FillRule = iota
	FillEvenOdd
	FillPositive
	FillNegative
)

// Includes reports whether winding w is inside the path under this rule.
func (r FillRule) Includes(w int) bool {
	switch r {
	case FillEvenOdd:
		return w%2 != 0
	case FillPositive:
		return w > 0
	case FillNegative:
		return w < 0
	default: // FillNonzero
		return w != 0
	}
}

// Subpath is an ordered sequence of vertices with an implied closing edge
// back to the first vertex. Zero-length subpaths are ignored by consumers.
type Subpath struct {
	Vertices []geom2.Point2
}

// PathID identifies a RenderPath within a rasterization request. IDs are
// assigned by the caller (0, 1, 2, ...) and index the WindingMap and the
// PathBoolean node's path reference.
type PathID int

// RenderPath is a fill rule plus an ordered list of subpaths. Paths are
// value objects; equality is structural.
type RenderPath struct {
	ID       PathID
	Fill     FillRule
	Subpaths []Subpath
}

// Equal compares two paths structurally.
func (p RenderPath) Equal(o RenderPath) bool {
	if p.ID != o.ID || p.Fill != o.Fill || len(p.Subpaths) != len(o.Subpaths) {
		return false
	}
	for i, sp := range p.Subpaths {
		osp := o.Subpaths[i]
		if len(sp.Vertices) != len(osp.Vertices) {
			return false
		}
		for j, v := range sp.Vertices {
			if v != osp.Vertices[j] {
				return false
			}
		}
	}
	return true
}

// WindingMap is a finite mapping from path identity to signed winding
// number, forming an additive monoid with identity Empty.
type WindingMap map[PathID]int

// Empty is the identity element: no path has nonzero winding.
func Empty() WindingMap { return WindingMap{} }

// Winding returns the stored winding number for id, or 0 if absent.
func (m WindingMap) Winding(id PathID) int { return m[id] }

// Add returns the pointwise sum of m and o (identity: Add(m, Empty()) == m).
func (m WindingMap) Add(o WindingMap) WindingMap {
	out := make(WindingMap, len(m)+len(o))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range o {
		out[k] += v
	}
	return out
}

// WithDelta returns a copy of m with id's winding incremented by delta.
func (m WindingMap) WithDelta(id PathID, delta int) WindingMap {
	out := make(WindingMap, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[id] += delta
	return out
}

// Equal compares two winding maps, treating absent and zero as equivalent.
func (m WindingMap) Equal(o WindingMap) bool {
	for k, v := range m {
		if v != 0 && o[k] != v {
			return false
		}
	}
	for k, v := range o {
		if v != 0 && m[k] != v {
			return false
		}
	}
	return true
}
