// Package geom2 provides the shared 2-D primitives used across the face,
// program, and raster packages: points, axis-aligned bounds, 1-D ranges,
// and 2x3 affine matrices, all over plain float64.
package geom2

import "math"

// Point2 is a 2-D floating point coordinate.
type Point2 struct {
	X, Y float64
}

func (p Point2) Add(q Point2) Point2    { return Point2{p.X + q.X, p.Y + q.Y} }
func (p Point2) Sub(q Point2) Point2    { return Point2{p.X - q.X, p.Y - q.Y} }
func (p Point2) Scale(s float64) Point2 { return Point2{p.X * s, p.Y * s} }
func (p Point2) Dot(q Point2) float64   { return p.X*q.X + p.Y*q.Y }
func (p Point2) Cross(q Point2) float64 { return p.X*q.Y - p.Y*q.X }
func (p Point2) Length() float64        { return math.Hypot(p.X, p.Y) }

// Lerp linearly interpolates between p and q at parameter t in [0,1].
func (p Point2) Lerp(q Point2, t float64) Point2 {
	return Point2{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Range is a closed 1-D interval; Empty ranges have Lo > Hi.
type Range struct {
	Lo, Hi float64
}

func EmptyRange() Range { return Range{Lo: math.Inf(1), Hi: math.Inf(-1)} }

func (r Range) IsEmpty() bool { return r.Lo > r.Hi }

func (r Range) Union(other Range) Range {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	return Range{Lo: math.Min(r.Lo, other.Lo), Hi: math.Max(r.Hi, other.Hi)}
}

func (r Range) WithPoint(v float64) Range {
	return r.Union(Range{Lo: v, Hi: v})
}

func (r Range) Length() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.Hi - r.Lo
}

// Bounds2 is an axis-aligned bounding rectangle. Empty bounds have
// MinX > MaxX ("no vertices seen yet").
type Bounds2 struct {
	MinX, MinY, MaxX, MaxY float64
}

func EmptyBounds() Bounds2 {
	return Bounds2{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
}

func NewBounds(minX, minY, maxX, maxY float64) Bounds2 {
	return Bounds2{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

func (b Bounds2) IsEmpty() bool { return b.MinX > b.MaxX || b.MinY > b.MaxY }

func (b Bounds2) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds2) Height() float64 { return b.MaxY - b.MinY }

func (b Bounds2) WithPoint(p Point2) Bounds2 {
	if b.IsEmpty() {
		return Bounds2{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
	}
	return Bounds2{
		MinX: math.Min(b.MinX, p.X), MinY: math.Min(b.MinY, p.Y),
		MaxX: math.Max(b.MaxX, p.X), MaxY: math.Max(b.MaxY, p.Y),
	}
}

func (b Bounds2) Union(o Bounds2) Bounds2 {
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}
	return Bounds2{
		MinX: math.Min(b.MinX, o.MinX), MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX), MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// Intersect returns the intersection of b and o, and whether it's non-empty.
func (b Bounds2) Intersect(o Bounds2) (Bounds2, bool) {
	r := Bounds2{
		MinX: math.Max(b.MinX, o.MinX), MinY: math.Max(b.MinY, o.MinY),
		MaxX: math.Min(b.MaxX, o.MaxX), MaxY: math.Min(b.MaxY, o.MaxY),
	}
	return r, !r.IsEmpty()
}

func (b Bounds2) Contains(o Bounds2) bool {
	return !o.IsEmpty() && o.MinX >= b.MinX && o.MinY >= b.MinY && o.MaxX <= b.MaxX && o.MaxY <= b.MaxY
}

func (b Bounds2) ContainsPoint(p Point2) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

func (b Bounds2) Center() Point2 {
	return Point2{(b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2}
}

// Dilate expands bounds by d on every side (d may be negative to erode).
func (b Bounds2) Dilate(d float64) Bounds2 {
	if b.IsEmpty() {
		return b
	}
	return Bounds2{MinX: b.MinX - d, MinY: b.MinY - d, MaxX: b.MaxX + d, MaxY: b.MaxY + d}
}
