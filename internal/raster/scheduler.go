package raster

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"vraster/internal/colorspace"
	"vraster/internal/face"
	"vraster/internal/geom2"
	"vraster/internal/program"
)

// areaEpsilon discards per-pixel sub-faces too small to contribute a
// visible weight.
const areaEpsilon = 1e-12

// Rasterize runs the scheduler over a bag of renderable faces: tiles the
// output bounds, distributes faces to tiles and bins, integrates each
// covered pixel's sub-face against the filter kernel, and accumulates
// premultiplied linear color. Tiles are processed by a worker pool and
// write disjoint raster regions.
func Rasterize(faces []program.RenderableFace, outBounds geom2.Bounds2, opts Options) (*CombinedRaster, error) {
	opts = opts.WithDefaults()
	if outBounds.IsEmpty() {
		return nil, fmt.Errorf("raster: empty output bounds")
	}
	w, h := pixelExtent(outBounds)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: degenerate output extent %dx%d", w, h)
	}

	origin := geom2.Point2{X: outBounds.MinX, Y: outBounds.MinY}
	support := 0.5 * (filterWidth(opts.Filter) - 1) * opts.FilterScale
	out := NewCombinedRaster(w, h)
	tiles := tileGrid(w, h, opts.TileSize)
	opts.Log.Printf("raster: %dx%d px, %d tiles, %d faces", w, h, len(tiles), len(faces))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(tiles) {
		workers = len(tiles)
	}
	if workers < 1 {
		workers = 1
	}

	tileCh := make(chan tileRect)
	cancelled := false
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tileCh {
				renderTile(out, faces, t, origin, support, opts)
			}
		}()
	}
	for _, t := range tiles {
		if opts.Cancel != nil && opts.Cancel.Load() {
			cancelled = true
			break
		}
		tileCh <- t
	}
	close(tileCh)
	wg.Wait()

	if cancelled {
		return nil, fmt.Errorf("raster: cancelled")
	}
	return out, nil
}

// renderTile clips the face bag to one tile, distributes to bins, and
// integrates every covered pixel.
func renderTile(out *CombinedRaster, faces []program.RenderableFace, t tileRect, origin geom2.Point2, support float64, opts Options) {
	tileBounds := t.bounds(origin).Dilate(support)
	var tileFaces []program.RenderableFace
	for _, rf := range faces {
		if _, ok := rf.Bounds.Intersect(tileBounds); !ok {
			continue
		}
		clipped := face.GetClipped(rf.Face, tileBounds)
		b := face.GetBounds(clipped)
		if b.IsEmpty() {
			continue
		}
		tileFaces = append(tileFaces, program.RenderableFace{Face: clipped, Program: rf.Program, Bounds: b})
	}
	if len(tileFaces) == 0 {
		return
	}

	for _, bin := range binGrid(t) {
		binBounds := bin.bounds(origin).Dilate(support)
		for _, rf := range tileFaces {
			if _, ok := rf.Bounds.Intersect(binBounds); !ok {
				continue
			}
			binFace := face.GetClipped(rf.Face, binBounds)
			binFaceBounds := face.GetBounds(binFace)
			if binFaceBounds.IsEmpty() {
				continue
			}
			renderBin(out, binFace, binFaceBounds, rf.Program, bin, origin, support, opts)
		}
	}
}

func renderBin(out *CombinedRaster, f face.ClippableFace, fb geom2.Bounds2, prog *program.Node, bin tileRect, origin geom2.Point2, support float64, opts Options) {
	for iy := bin.y0; iy < bin.y1; iy++ {
		for ix := bin.x0; ix < bin.x1; ix++ {
			px0 := origin.X + float64(ix)
			py0 := origin.Y + float64(iy)
			supportBounds := geom2.NewBounds(px0, py0, px0+1, py0+1).Dilate(support)
			if _, ok := fb.Intersect(supportBounds); !ok {
				continue
			}

			sub := face.GetClipped(f, supportBounds)
			area := face.GetArea(sub)
			if math.Abs(area) < areaEpsilon {
				continue
			}

			weight := filterWeight(sub, geom2.Point2{X: px0 + 0.5, Y: py0 + 0.5}, supportBounds, opts)
			if weight == 0 {
				continue
			}

			ctx := program.Context{}
			if prog.NeedsArea() {
				ctx.Area = area
			}
			if prog.NeedsCentroid() {
				cx, cy := face.GetCentroid(sub, area)
				ctx.Centroid = geom2.Point2{X: cx, Y: cy}
			}
			if prog.NeedsFace() {
				pixelFace := sub
				if opts.FaceType == FaceEdged {
					pixelFace = face.ToEdgedClipped(sub, supportBounds)
				}
				ctx.Face = &pixelFace
			}

			c := colorspace.Premultiply(program.Evaluate(prog, ctx))
			out.Add(ix, iy, c, weight)
		}
	}
}

// filterWeight computes the analytic filter integral of the sub-face
// against the kernel centered on the pixel. FilterScale s is folded in
// by shrinking the face about the kernel center by 1/s, which turns the
// dilated-kernel integral back into the unit-kernel one. The box kernel
// ignores FilterScale: its weight is plain pixel coverage.
func filterWeight(sub face.ClippableFace, center geom2.Point2, supportBounds geom2.Bounds2, opts Options) float64 {
	s := opts.FilterScale
	switch opts.Filter {
	case face.FilterBilinear:
		return kernelIntegral(sub, center, s, face.GetBilinearFiltered)
	case face.FilterMitchellNetravali:
		return kernelIntegral(sub, center, s, face.GetMitchellNetravaliFiltered)
	default: // FilterBox
		// The box kernel's support never dilates (width 1 makes the
		// expansion term zero), so the weight is plain pixel coverage.
		clipped := face.GetClipped(sub, supportBounds)
		return face.GetArea(clipped)
	}
}

func kernelIntegral(sub face.ClippableFace, center geom2.Point2, scale float64, filter func(face.ClippableFace, int, int, float64, float64) float64) float64 {
	f := sub
	if scale != 1 {
		shrink := geom2.Translation(center.X, center.Y).
			Multiply(geom2.Scaling(1/scale, 1/scale)).
			Multiply(geom2.Translation(-center.X, -center.Y))
		f = face.GetTransformed(sub, shrink)
	}
	px := int(math.Floor(center.X))
	py := int(math.Floor(center.Y))
	return filter(f, px, py, center.X-float64(px), center.Y-float64(py))
}
