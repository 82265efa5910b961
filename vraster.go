// Package vraster is a vector rasterization engine: it consumes a scene
// described as a render-program tree over filled paths and produces a
// pixel image whose per-pixel color is the analytically weighted integral
// of the program over each pixel's filter kernel. Overlapping paths are
// resolved exactly by winding-based constructive area geometry before any
// pixel work happens, so edges between regions are partition boundaries
// rather than blended coverage guesses.
package vraster

import (
	"fmt"
	"sync/atomic"

	"vraster/internal/cag"
	"vraster/internal/colorspace"
	"vraster/internal/face"
	"vraster/internal/geom2"
	"vraster/internal/program"
	"vraster/internal/raster"
	"vraster/internal/scene"
)

// Re-exported value and geometry types. These are aliases, not wrappers:
// a RenderPath built here is exactly what the pipeline consumes.
type (
	Point2     = geom2.Point2
	Bounds2    = geom2.Bounds2
	Matrix2x3  = geom2.Matrix2x3
	Color      = colorspace.Color
	ColorSpace = colorspace.Space
	FillRule   = scene.FillRule
	PathID     = scene.PathID
	Subpath    = scene.Subpath
	RenderPath = scene.RenderPath
	WindingMap = scene.WindingMap

	RenderProgram = program.Node
	GradientStop  = program.GradientStop
	RenderPlanar  = program.RenderPlanar
	Instruction   = program.Instruction

	ClippableFace = face.ClippableFace
	FilterKernel  = face.FilterKernel

	Raster    = raster.Raster
	RasterLog = raster.Log
	Storage   = raster.Storage
)

const (
	FillNonzero  = scene.FillNonzero
	FillEvenOdd  = scene.FillEvenOdd
	FillPositive = scene.FillPositive
	FillNegative = scene.FillNegative

	FilterBox               = face.FilterBox
	FilterBilinear          = face.FilterBilinear
	FilterMitchellNetravali = face.FilterMitchellNetravali

	SRGB      = colorspace.SRGB
	DisplayP3 = colorspace.DisplayP3

	StorageRGBA8     = raster.StorageRGBA8
	StorageRGBAFloat = raster.StorageRGBAFloat
)

// Program constructors, re-exported so callers build trees without
// touching internal packages.
var (
	NewColor                       = program.NewColor
	NewStack                       = program.NewStack
	NewAlpha                       = program.NewAlpha
	NewBlendCompose                = program.NewBlendCompose
	NewPathBoolean                 = program.NewPathBoolean
	NewFilter                      = program.NewFilter
	NewImage                       = program.NewImage
	NewLinearBlend                 = program.NewLinearBlend
	NewRadialBlend                 = program.NewRadialBlend
	NewLinearGradient              = program.NewLinearGradient
	NewRadialGradient              = program.NewRadialGradient
	NewBarycentricBlend            = program.NewBarycentricBlend
	NewBarycentricPerspectiveBlend = program.NewBarycentricPerspectiveBlend
	NewPhong                       = program.NewPhong
	NewNormalize                   = program.NewNormalize
	NewNormalDebug                 = program.NewNormalDebug
	NewDepthSort                   = program.NewDepthSort
	NewPremultiply                 = program.NewPremultiply
	NewUnpremultiply               = program.NewUnpremultiply
	NewColorSpaceConvert           = program.NewColorSpaceConvert

	SimplifyProgram  = program.Simplify
	CompileProgram   = program.Compile
	ExecuteProgram   = program.Execute
	SerializeProgram = program.Serialize
	EncodeProgram    = program.EncodeBinary
)

// DeserializeProgram parses a canonical structural encoding, classifying
// unknown tags as unsupported-program failures.
func DeserializeProgram(data []byte) (*RenderProgram, error) {
	n, err := program.Deserialize(data)
	if err != nil {
		return nil, newError(ErrUnsupportedProgram, err)
	}
	return n, nil
}

// DecodeProgram parses an instruction-stream binary back to instructions.
func DecodeProgram(data []byte) ([]Instruction, error) {
	ins, err := program.DecodeBinary(data)
	if err != nil {
		return nil, newError(ErrUnsupportedProgram, err)
	}
	return ins, nil
}

// RenderableFaceType selects the area-geometry combining strategy.
type RenderableFaceType int

const (
	FaceSimple RenderableFaceType = iota
	FaceFullyCombined
	FaceSimplifyingCombined
	FaceTraced
	// FaceEdged combines like FaceSimplifyingCombined and forces
	// edge-set faces through the per-pixel pipeline too.
	FaceEdged
)

// RasterizationOptions is the recognized option set for Rasterize.
type RasterizationOptions struct {
	TileSize           int          // tile side in pixels; default 256
	Filter             FilterKernel // polygon filter kernel; default box
	FilterScale        float64      // >= 1; dilates the filter support
	PolygonFiltering   FilterKernel // same tag, consumed by VectorCanvas
	ColorSpace         ColorSpace   // output space: SRGB (default) or DisplayP3
	RenderableFaceType RenderableFaceType
	Storage            Storage // 8-bit (default) or float output
	ShowOutOfGamut     bool
	Log                *RasterLog
	Cancel             *atomic.Bool
}

func (o RasterizationOptions) strategy() cag.Strategy {
	switch o.RenderableFaceType {
	case FaceFullyCombined:
		return cag.StrategyFullyCombined
	case FaceSimplifyingCombined, FaceEdged:
		return cag.StrategySimplifyingCombined
	case FaceTraced:
		return cag.StrategyTraced
	default:
		return cag.StrategySimple
	}
}

func (o RasterizationOptions) internal() raster.Options {
	ft := raster.FaceType(o.RenderableFaceType)
	return raster.Options{
		TileSize:         o.TileSize,
		Filter:           o.Filter,
		FilterScale:      o.FilterScale,
		PolygonFiltering: o.PolygonFiltering,
		ColorSpace:       o.ColorSpace,
		FaceType:         ft,
		ShowOutOfGamut:   o.ShowOutOfGamut,
		Log:              o.Log,
		Cancel:           o.Cancel,
	}
}

// Rasterize is the primary entry point: resolve the paths into
// renderable faces, schedule them over the output bounds, and finalize
// into the requested color space and storage.
func Rasterize(prog *RenderProgram, paths []RenderPath, outputBounds Bounds2, opts RasterizationOptions) (*Raster, error) {
	if err := validatePaths(paths); err != nil {
		return nil, err
	}
	faces, err := cag.Resolve(paths, prog, opts.strategy())
	if err != nil {
		return nil, newError(ErrNumericOverflow, err)
	}
	combined, err := raster.Rasterize(faces, outputBounds, opts.internal())
	if err != nil {
		return nil, err
	}
	space := opts.ColorSpace
	if space != DisplayP3 {
		space = SRGB
	}
	return combined.Finalize(space, opts.Storage, opts.ShowOutOfGamut), nil
}

func validatePaths(paths []RenderPath) error {
	for _, p := range paths {
		if len(p.Subpaths) < 1 {
			return newError(ErrInvalidPath, fmt.Errorf("path %d has no subpaths", p.ID))
		}
		for si, sub := range p.Subpaths {
			if len(sub.Vertices) < 1 {
				return newError(ErrInvalidPath, fmt.Errorf("path %d subpath %d has no vertices", p.ID, si))
			}
		}
	}
	return nil
}
