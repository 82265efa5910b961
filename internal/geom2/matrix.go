package geom2

import "math"

// Matrix2x3 is a 2-D affine transform:
//
//	sx  shy tx
//	shx sy  ty
//	0   0   1
//
// so Transform maps (x, y) to (sx*x + shy*y + tx, shx*x + sy*y + ty).
//
// Trimmed to the operations render programs and faces actually need:
// construction, composition, point transforms, and inversion.
type Matrix2x3 struct {
	SX, SHX, SHY, SY, TX, TY float64
}

func Identity() Matrix2x3 {
	return Matrix2x3{SX: 1, SY: 1}
}

func Translation(x, y float64) Matrix2x3 {
	return Matrix2x3{SX: 1, SY: 1, TX: x, TY: y}
}

func Scaling(sx, sy float64) Matrix2x3 {
	return Matrix2x3{SX: sx, SY: sy}
}

func Rotation(angle float64) Matrix2x3 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Matrix2x3{SX: c, SHX: -s, SHY: s, SY: c}
}

// Multiply returns m composed with other, applying other first (m*other).
func (m Matrix2x3) Multiply(o Matrix2x3) Matrix2x3 {
	return Matrix2x3{
		SX:  m.SX*o.SX + m.SHY*o.SHX,
		SHX: m.SHX*o.SX + m.SY*o.SHX,
		SHY: m.SX*o.SHY + m.SHY*o.SY,
		SY:  m.SHX*o.SHY + m.SY*o.SY,
		TX:  m.SX*o.TX + m.SHY*o.TY + m.TX,
		TY:  m.SHX*o.TX + m.SY*o.TY + m.TY,
	}
}

func (m Matrix2x3) Transform(p Point2) Point2 {
	return Point2{
		X: m.SX*p.X + m.SHY*p.Y + m.TX,
		Y: m.SHX*p.X + m.SY*p.Y + m.TY,
	}
}

// TransformVector transforms p ignoring translation (for direction vectors).
func (m Matrix2x3) TransformVector(p Point2) Point2 {
	return Point2{X: m.SX*p.X + m.SHY*p.Y, Y: m.SHX*p.X + m.SY*p.Y}
}

func (m Matrix2x3) Determinant() float64 {
	return m.SX*m.SY - m.SHY*m.SHX
}

// Invert returns the inverse transform; ok is false for a singular matrix.
func (m Matrix2x3) Invert() (Matrix2x3, bool) {
	det := m.Determinant()
	if det == 0 {
		return Matrix2x3{}, false
	}
	rd := 1.0 / det
	a := m.SY * rd
	b := -m.SHY * rd
	c := -m.SHX * rd
	d := m.SX * rd
	tx := -(m.TX*a + m.TY*b)
	ty := -(m.TX*c + m.TY*d)
	return Matrix2x3{SX: a, SHX: c, SHY: b, SY: d, TX: tx, TY: ty}, true
}

func (m Matrix2x3) IsIdentity(eps float64) bool {
	return approxEq(m.SX, 1, eps) && approxEq(m.SHX, 0, eps) &&
		approxEq(m.SHY, 0, eps) && approxEq(m.SY, 1, eps) &&
		approxEq(m.TX, 0, eps) && approxEq(m.TY, 0, eps)
}

func approxEq(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

// TransformBounds transforms an axis-aligned bounds by transforming its
// four corners and re-fitting an axis-aligned box around them.
func (m Matrix2x3) TransformBounds(b Bounds2) Bounds2 {
	if b.IsEmpty() {
		return b
	}
	corners := [4]Point2{
		{b.MinX, b.MinY}, {b.MaxX, b.MinY}, {b.MaxX, b.MaxY}, {b.MinX, b.MaxY},
	}
	out := EmptyBounds()
	for _, c := range corners {
		out = out.WithPoint(m.Transform(c))
	}
	return out
}
