package numeric

import (
	"fmt"
	"math"
)

// IntPoint is a vertex after integerization: an exact integer coordinate
// safely within int64 range for the pairwise-intersection sweep.
type IntPoint struct {
	X, Y int64
}

// IntSegment is an edge between two integerized vertices, tagged with the
// index of the source path it came from (for winding-map bookkeeping).
type IntSegment struct {
	A, B   IntPoint
	PathID int
}

// InverseTransform maps an IntPoint back to the original floating-point
// coordinate space.
type InverseTransform struct {
	OffsetX, OffsetY float64
	Scale            float64
}

// Apply maps an integerized point back to float64 space.
func (t InverseTransform) Apply(p IntPoint) (x, y float64) {
	return float64(p.X)/t.Scale + t.OffsetX, float64(p.Y)/t.Scale + t.OffsetY
}

// ApplyRat maps an exact rational point (as produced by IntersectSegments
// on integerized coordinates) back to float64 space; used for CAG
// intersection points, which generally don't land on integer coordinates.
func (t InverseTransform) ApplyRat(p Rat2) (x, y float64) {
	fx, _ := p.X.Float64()
	fy, _ := p.Y.Float64()
	return fx/t.Scale + t.OffsetX, fy/t.Scale + t.OffsetY
}

// ToRat2 lifts an IntPoint to an exact rational point.
func (p IntPoint) ToRat2() Rat2 {
	return NewRat2FromInt(p.X, p.Y)
}

// maxSafeCoordinate bounds integerized coordinates well under int64's
// range so that cross products (degree-2 in coordinate magnitude) and
// further rational arithmetic never approach overflow headroom assumptions
// baked into the sweep's bounding-box filter.
const maxSafeCoordinate = 1 << 40

// Integerize picks a uniform scale and offset mapping a set of subpath
// vertex lists into safe-range integer coordinates, and returns both the
// integerized segments (tagged with the index of their vertex list in
// paths) and the inverse transform needed to map results back to float
// space.
//
// precisionBits sets the grid resolution: the larger of the two input
// extents maps onto 2^precisionBits integer units, capped at
// maxSafeCoordinate. Higher values reduce snapping error; because the
// scale is relative to the input's extent, the coordinate range itself
// does not limit it.
func Integerize(paths [][]struct{ X, Y float64 }, precisionBits int) ([]IntSegment, InverseTransform, error) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	any := false
	for _, sub := range paths {
		for _, v := range sub {
			any = true
			minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
			minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
		}
	}
	if !any {
		return nil, InverseTransform{}, fmt.Errorf("numeric: integerize: no vertices")
	}

	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	scale := float64(int64(1)<<precisionBits) / span
	if scale*span > maxSafeCoordinate {
		scale = maxSafeCoordinate / span
	}

	inv := InverseTransform{OffsetX: minX, OffsetY: minY, Scale: scale}

	var segs []IntSegment
	for pathID, sub := range paths {
		n := len(sub)
		if n < 2 {
			continue
		}
		pts := make([]IntPoint, n)
		for i, v := range sub {
			ix := (v.X - minX) * scale
			iy := (v.Y - minY) * scale
			if math.Abs(ix) > maxSafeCoordinate || math.Abs(iy) > maxSafeCoordinate {
				return nil, InverseTransform{}, fmt.Errorf("numeric: integerize: scale %.6g overflows safe range", scale)
			}
			pts[i] = IntPoint{X: int64(math.Round(ix)), Y: int64(math.Round(iy))}
		}
		for i := 0; i < n; i++ {
			a := pts[i]
			b := pts[(i+1)%n]
			if a == b {
				continue
			}
			segs = append(segs, IntSegment{A: a, B: b, PathID: pathID})
		}
	}
	return segs, inv, nil
}
