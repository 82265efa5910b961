package face

import "vraster/internal/geom2"

// FilterKernel identifies one of the three analytic reconstruction
// kernels the scheduler convolves a pixel's sub-area polygon with.
type FilterKernel int

const (
	FilterBox FilterKernel = iota
	FilterBilinear
	FilterMitchellNetravali
)

// ExtraPixels and GridOffset return the per-kernel support dilation and
// sampling-grid offset.
func (k FilterKernel) ExtraPixels() int {
	switch k {
	case FilterBilinear:
		return 1
	case FilterMitchellNetravali:
		return 3
	default:
		return 0
	}
}

func (k FilterKernel) GridOffset() (x, y float64) {
	switch k {
	case FilterBilinear:
		return -0.5, -0.5
	case FilterMitchellNetravali:
		return -1.5, -1.5
	default:
		return 0, 0
	}
}

// GetBilinearFiltered computes the analytic convolution of the face's
// sub-area polygon at pixel (px,py) with the separable bilinear
// (triangle) kernel. (px,py) is the pixel's integer top-left corner and
// (subX,subY) is the fractional offset of the kernel's sampling center
// within that pixel.
func GetBilinearFiltered(f ClippableFace, px, py int, subX, subY float64) float64 {
	center := geom2.Point2{X: float64(px) + subX, Y: float64(py) + subY}
	return convolveSeparable(f, center, bilinearSpec)
}

// GetMitchellNetravaliFiltered is the Mitchell-Netravali (cubic) analogue
// of GetBilinearFiltered, with a 4-pixel-wide support.
func GetMitchellNetravaliFiltered(f ClippableFace, px, py int, subX, subY float64) float64 {
	center := geom2.Point2{X: float64(px) + subX, Y: float64(py) + subY}
	return convolveSeparable(f, center, mitchellNetravaliSpec)
}

// kernelPiece is one polynomial piece of a 1-D reconstruction kernel:
// k(u) = sum coef[i]*u^i for u in [lo, hi].
type kernelPiece struct {
	lo, hi float64
	coef   []float64
}

// kernelSpec is a piecewise-polynomial 1-D kernel with unit total
// integral, plus the Gauss-Legendre order that integrates the edge
// integrand (degree deg(K)+deg(k)) exactly.
type kernelSpec struct {
	pieces []kernelPiece
	gauss  []gaussNode
}

type gaussNode struct {
	x, w float64 // node and weight on [-1, 1]
}

// Two-point Gauss-Legendre is exact through degree 3 (bilinear:
// quadratic antiderivative times linear kernel); four-point through
// degree 7 (Mitchell-Netravali: quartic times cubic).
var (
	gauss2 = []gaussNode{
		{x: -0.5773502691896257, w: 1},
		{x: 0.5773502691896257, w: 1},
	}
	gauss4 = []gaussNode{
		{x: -0.8611363115940526, w: 0.3478548451374538},
		{x: -0.3399810435848563, w: 0.6521451548625461},
		{x: 0.3399810435848563, w: 0.6521451548625461},
		{x: 0.8611363115940526, w: 0.3478548451374538},
	}
)

var bilinearSpec = kernelSpec{
	pieces: []kernelPiece{
		{lo: -1, hi: 0, coef: []float64{1, 1}},
		{lo: 0, hi: 1, coef: []float64{1, -1}},
	},
	gauss: gauss2,
}

// Mitchell-Netravali with the canonical B=C=1/3 parameterization,
// expanded to explicit polynomial coefficients (already divided by 6).
var mitchellNetravaliSpec = kernelSpec{
	pieces: []kernelPiece{
		{lo: -2, hi: -1, coef: []float64{16.0 / 9, 10.0 / 3, 2, 7.0 / 18}},
		{lo: -1, hi: 0, coef: []float64{8.0 / 9, 0, -2, -7.0 / 6}},
		{lo: 0, hi: 1, coef: []float64{8.0 / 9, 0, -2, 7.0 / 6}},
		{lo: 1, hi: 2, coef: []float64{16.0 / 9, -10.0 / 3, 2, -7.0 / 18}},
	},
	gauss: gauss4,
}

func (s kernelSpec) support() float64 { return s.pieces[len(s.pieces)-1].hi }

// at evaluates k(u); zero outside the support.
func (s kernelSpec) at(u float64) float64 {
	for _, p := range s.pieces {
		if u >= p.lo && u <= p.hi {
			return polyEval(p.coef, u)
		}
	}
	return 0
}

// cumulative evaluates K(t) = integral of k from -support to t. K is 0
// below the support and 1 above it (the kernels are normalized).
func (s kernelSpec) cumulative(t float64) float64 {
	sum := 0.0
	for _, p := range s.pieces {
		if t >= p.hi {
			sum += polyAntideriv(p.coef, p.hi) - polyAntideriv(p.coef, p.lo)
			continue
		}
		if t > p.lo {
			sum += polyAntideriv(p.coef, t) - polyAntideriv(p.coef, p.lo)
		}
		break
	}
	return sum
}

func polyEval(coef []float64, u float64) float64 {
	v := 0.0
	for i := len(coef) - 1; i >= 0; i-- {
		v = v*u + coef[i]
	}
	return v
}

// polyAntideriv evaluates the antiderivative of the piece polynomial.
func polyAntideriv(coef []float64, u float64) float64 {
	v := 0.0
	for i := len(coef) - 1; i >= 0; i-- {
		v = v*u + coef[i]/float64(i+1)
	}
	return v * u
}

// convolveSeparable computes the exact convolution integral
// integral over face of k(x-cx)*k(y-cy) dA as a boundary line integral:
// with the potential P(x,y) = K(x-cx)*k(y-cy) and dP/dx the integrand,
// Green's theorem gives the area integral as the CCW contour integral of
// P dy, the same edge-summation shape GetArea and GetCentroidPartial use
// for their own moments. The face is clipped to the kernel support
// first; the integrand vanishes outside it, so any outside excursion the
// clip chain keeps contributes zero.
func convolveSeparable(f ClippableFace, center geom2.Point2, spec kernelSpec) float64 {
	half := spec.support()
	bounds := geom2.NewBounds(center.X-half, center.Y-half, center.X+half, center.Y+half)
	clipped := GetClipped(f, bounds)

	sum := 0.0
	for _, e := range clipped.allEdges() {
		sum += edgeKernelIntegral(e, center, spec)
	}
	return sum
}

// edgeKernelIntegral evaluates the contour term
// integral over the edge of K(x-cx)*k(y-cy) dy exactly: the integrand is
// polynomial in the edge parameter between kernel breakpoints, so the
// edge is split at every t where x or y crosses a breakpoint and each
// sub-interval is integrated with Gauss-Legendre of sufficient order.
func edgeKernelIntegral(e LinearEdge, center geom2.Point2, spec kernelSpec) float64 {
	x0 := e.Start.X - center.X
	y0 := e.Start.Y - center.Y
	dx := e.End.X - e.Start.X
	dy := e.End.Y - e.Start.Y
	if dy == 0 {
		return 0
	}

	cuts := []float64{0, 1}
	addCut := func(t float64) {
		if t > 0 && t < 1 {
			cuts = append(cuts, t)
		}
	}
	for _, p := range spec.pieces {
		for _, b := range []float64{p.lo, p.hi} {
			if dx != 0 {
				addCut((b - x0) / dx)
			}
			addCut((b - y0) / dy)
		}
	}
	sortFloats(cuts)

	sum := 0.0
	for i := 0; i+1 < len(cuts); i++ {
		ta, tb := cuts[i], cuts[i+1]
		if tb <= ta {
			continue
		}
		mid := (ta + tb) / 2
		halfLen := (tb - ta) / 2
		for _, gn := range spec.gauss {
			t := mid + halfLen*gn.x
			sum += gn.w * spec.cumulative(x0+t*dx) * spec.at(y0+t*dy) * halfLen
		}
	}
	return sum * dy
}

// sortFloats is a small insertion sort; cut lists stay tiny (at most a
// dozen entries) so pulling in package sort buys nothing here.
func sortFloats(v []float64) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j] < v[j-1]; j-- {
			v[j], v[j-1] = v[j-1], v[j]
		}
	}
}
