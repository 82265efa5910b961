package vraster

import (
	"vraster/internal/program"
	"vraster/internal/scene"
)

// VectorCanvas accumulates fill calls and exports them to a raster in one
// pass. Each fill becomes a path-boolean layer in a back-to-front stack;
// at export time the area-geometry resolver combines adjacent regions
// whose resolved programs are equal, so a canvas filled with many
// same-colored shapes rasterizes as few faces as the geometry allows.
type VectorCanvas struct {
	paths  []RenderPath
	layers []*RenderProgram
	nextID PathID
}

func NewVectorCanvas() *VectorCanvas {
	return &VectorCanvas{}
}

// FillRenderProgram fills path with an arbitrary program. The path's ID
// is assigned by the canvas; the caller's ID field is ignored.
func (c *VectorCanvas) FillRenderProgram(path RenderPath, prog *RenderProgram) {
	path.ID = c.nextID
	c.nextID++
	c.paths = append(c.paths, path)
	transparent := NewColor(Color{Premultiplied: true})
	c.layers = append(c.layers, NewPathBoolean(path.ID, path.Fill, prog, transparent))
}

// FillColor fills path with a constant color.
func (c *VectorCanvas) FillColor(path RenderPath, col Color) {
	c.FillRenderProgram(path, NewColor(col))
}

// FillLinearGradient fills path with a linear gradient from start to end.
func (c *VectorCanvas) FillLinearGradient(path RenderPath, start, end Point2, stops []GradientStop) {
	c.FillRenderProgram(path, NewLinearGradient(start, end, stops, program.AccuracyExact))
}

// FillRadialGradient fills path with a radial gradient from center out to
// the edge point.
func (c *VectorCanvas) FillRadialGradient(path RenderPath, center, edge Point2, stops []GradientStop) {
	c.FillRenderProgram(path, NewRadialGradient(center, edge, stops, program.AccuracyExact))
}

// program builds the canvas's combined render program: a source-over
// stack of its fill layers, back-to-front in call order.
func (c *VectorCanvas) program() *RenderProgram {
	return NewStack(c.layers...)
}

// ToRaster exports the accumulated fills. A RenderableFaceType of
// FaceSimple (the zero value) is replaced by FaceSimplifyingCombined,
// which merges adjacent equal-program regions; other face types are kept.
// A PolygonFiltering tag other than FilterBox overrides Filter.
func (c *VectorCanvas) ToRaster(bounds Bounds2, opts RasterizationOptions) (*Raster, error) {
	if len(c.paths) == 0 {
		return nil, newError(ErrInvalidPath, nil)
	}
	if opts.RenderableFaceType == FaceSimple {
		opts.RenderableFaceType = FaceSimplifyingCombined
	}
	if opts.PolygonFiltering != FilterBox {
		opts.Filter = opts.PolygonFiltering
	}
	return Rasterize(c.program(), c.paths, bounds, opts)
}

// Paths returns the canvas's accumulated paths with their assigned IDs.
func (c *VectorCanvas) Paths() []scene.RenderPath {
	out := make([]scene.RenderPath, len(c.paths))
	copy(out, c.paths)
	return out
}
