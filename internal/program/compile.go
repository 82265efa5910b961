package program

import (
	"fmt"
	"math"

	"vraster/internal/colorspace"
	"vraster/internal/geom2"
)

// Opcode enumerates the closed instruction set a program compiles to. The
// assignment is part of the binary contract: renumbering breaks every
// serialized stream.
type Opcode uint8

const (
	OpExit Opcode = iota
	OpReturn
	OpColorPush
	OpStackBlend
	OpOpaqueJump
	OpBlendCompose
	OpLinearBlend
	OpComputeBlendRatio
	OpBarycentricBlend
	OpPremultiply
	OpUnpremultiply
	OpNormalize
	OpPhong
	OpSRGBToLinearSRGB
	OpLinearSRGBToSRGB
	OpLinearSRGBToOklab
	OpOklabToLinearSRGB
	OpLinearSRGBToLinearDisplayP3
	OpLinearDisplayP3ToLinearSRGB
)

// ratio kinds for OpComputeBlendRatio's small argument.
const (
	ratioLinear = 0
	ratioRadial = 1
)

// Instruction is one decoded VM operation: an opcode, two small integer
// arguments (packed into the first word's upper bits when encoded), and
// variable float lanes.
type Instruction struct {
	Op   Opcode
	A, B int
	F    []float64
}

// stackCapacity bounds the VM's value stack; Compile rejects programs
// whose evaluation would exceed it.
const stackCapacity = 16

type compiler struct {
	out   []Instruction
	depth int
	max   int
}

func (c *compiler) emit(in Instruction, pushed int) int {
	c.out = append(c.out, in)
	c.depth += pushed
	if c.depth > c.max {
		c.max = c.depth
	}
	return len(c.out) - 1
}

// Compile lowers a resolved, simplified program to a flat instruction
// sequence for the stack VM. Nodes with no instruction-set counterpart
// (Image sampling, DepthSort before splitting, Filter over a non-constant
// child, unresolved PathBoolean) are reported as errors rather than
// silently approximated; callers evaluate such programs by tree walk.
func Compile(n *Node) ([]Instruction, error) {
	c := &compiler{}
	if err := c.compile(n); err != nil {
		return nil, err
	}
	if c.max > stackCapacity {
		return nil, fmt.Errorf("program: compiled stack depth %d exceeds capacity %d", c.max, stackCapacity)
	}
	c.emit(Instruction{Op: OpExit}, 0)
	return c.out, nil
}

func (c *compiler) compile(n *Node) error {
	if n == nil || n.fullyTransparent {
		c.emit(Instruction{Op: OpColorPush, F: []float64{0, 0, 0, 0}}, 1)
		return nil
	}
	switch n.Kind {
	case KColor:
		col := colorspace.Premultiply(n.Color)
		c.emit(Instruction{Op: OpColorPush, F: []float64{col.R, col.G, col.B, col.A}}, 1)
		return nil
	case KStack:
		return c.compileStack(n)
	case KAlpha:
		// lerp(transparent, child, f) scales all four premultiplied
		// channels by f, which is exactly alpha multiplication.
		c.emit(Instruction{Op: OpColorPush, F: []float64{0, 0, 0, 0}}, 1)
		if err := c.compile(n.Children[0]); err != nil {
			return err
		}
		f := n.AlphaFactor
		c.emit(Instruction{Op: OpColorPush, F: []float64{f, f, f, f}}, 1)
		c.emit(Instruction{Op: OpLinearBlend}, -2)
		return nil
	case KBlendCompose:
		if err := c.compile(n.Children[0]); err != nil {
			return err
		}
		if err := c.compile(n.Children[1]); err != nil {
			return err
		}
		c.emit(Instruction{Op: OpBlendCompose, A: int(n.PorterDuff), B: int(n.Blend)}, -1)
		return nil
	case KLinearBlend, KRadialBlend:
		if err := c.compile(n.BlendA); err != nil {
			return err
		}
		if err := c.compile(n.BlendB); err != nil {
			return err
		}
		kind := ratioLinear
		lanes := []float64{n.AxisStart.X, n.AxisStart.Y, n.AxisEnd.X, n.AxisEnd.Y}
		if n.Kind == KRadialBlend {
			kind = ratioRadial
			lanes = append(lanes, n.RadialInner)
		}
		c.emit(Instruction{Op: OpComputeBlendRatio, A: kind, F: lanes}, 1)
		c.emit(Instruction{Op: OpLinearBlend}, -2)
		return nil
	case KLinearGradient, KRadialGradient:
		return c.compile(DecomposeGradient(n))
	case KBarycentricBlend, KBarycentricPerspectiveBlend:
		for _, corner := range n.Corners {
			if err := c.compile(corner); err != nil {
				return err
			}
		}
		persp := 0
		if n.Kind == KBarycentricPerspectiveBlend {
			persp = 1
		}
		lanes := []float64{
			n.TriangleXY[0].X, n.TriangleXY[0].Y,
			n.TriangleXY[1].X, n.TriangleXY[1].Y,
			n.TriangleXY[2].X, n.TriangleXY[2].Y,
			n.TriangleW[0], n.TriangleW[1], n.TriangleW[2],
		}
		c.emit(Instruction{Op: OpBarycentricBlend, A: persp, F: lanes}, -2)
		return nil
	case KPhong:
		lanes := make([]float64, 0, 13+6*len(n.Lights))
		for _, col := range []colorspace.Color{n.Ambient, n.Diffuse, n.Specular} {
			p := colorspace.Premultiply(col)
			lanes = append(lanes, p.R, p.G, p.B, p.A)
		}
		lanes = append(lanes, n.Shininess)
		for _, l := range n.Lights {
			i := colorspace.Premultiply(l.Intensity)
			lanes = append(lanes, l.Position.X, l.Position.Y, i.R, i.G, i.B, i.A)
		}
		c.emit(Instruction{Op: OpPhong, A: len(n.Lights), F: lanes}, 1)
		return nil
	case KNormalize:
		if err := c.compile(n.Children[0]); err != nil {
			return err
		}
		c.emit(Instruction{Op: OpNormalize}, 0)
		return nil
	case KNormalDebug:
		return c.compile(n.Children[0])
	case KPremultiply:
		if err := c.compile(n.Children[0]); err != nil {
			return err
		}
		c.emit(Instruction{Op: OpPremultiply}, 0)
		return nil
	case KUnpremultiply:
		if err := c.compile(n.Children[0]); err != nil {
			return err
		}
		c.emit(Instruction{Op: OpUnpremultiply}, 0)
		return nil
	case KColorSpaceConvert:
		return c.compileConvert(n)
	case KFilter:
		simplified := Simplify(n)
		if simplified.Kind == KFilter {
			return fmt.Errorf("program: filter over a non-constant child has no instruction form")
		}
		return c.compile(simplified)
	case KDepthSort:
		return fmt.Errorf("program: depth sort must be split before compilation")
	case KImage:
		return fmt.Errorf("program: image sampling has no instruction form")
	case KPathBoolean:
		return fmt.Errorf("program: unresolved path boolean cannot be compiled")
	default:
		return fmt.Errorf("program: unknown node kind %d", n.Kind)
	}
}

// compileStack emits children front-to-back so each OpStackBlend folds a
// deeper layer under the running accumulation and OpOpaqueJump can skip
// everything below the first fully-opaque result.
func (c *compiler) compileStack(n *Node) error {
	if len(n.Children) == 0 {
		c.emit(Instruction{Op: OpColorPush, F: []float64{0, 0, 0, 0}}, 1)
		return nil
	}
	var jumps []int
	for i := len(n.Children) - 1; i >= 0; i-- {
		if i < len(n.Children)-1 {
			jumps = append(jumps, c.emit(Instruction{Op: OpOpaqueJump}, 0))
		}
		if err := c.compile(n.Children[i]); err != nil {
			return err
		}
		if i < len(n.Children)-1 {
			c.emit(Instruction{Op: OpStackBlend}, -1)
		}
	}
	end := len(c.out)
	for _, j := range jumps {
		c.out[j].A = end
	}
	return nil
}

func (c *compiler) compileConvert(n *Node) error {
	if err := c.compile(n.Children[0]); err != nil {
		return err
	}
	path := colorspace.Path(n.From, n.To)
	if path == nil {
		return fmt.Errorf("program: no conversion path %v -> %v", n.From, n.To)
	}
	c.emit(Instruction{Op: OpUnpremultiply}, 0)
	for i := 0; i+1 < len(path); i++ {
		op, err := convertOpcode(path[i], path[i+1])
		if err != nil {
			return err
		}
		c.emit(Instruction{Op: op}, 0)
	}
	c.emit(Instruction{Op: OpPremultiply}, 0)
	return nil
}

// convertOpcode maps one hop of the color-space graph to its instruction.
// Display-P3's transfer function is the same curve as sRGB's, so both
// gamma hops share the transfer opcodes; only the primary-basis hops get
// their own.
func convertOpcode(from, to colorspace.Space) (Opcode, error) {
	switch {
	case from == colorspace.SRGB && to == colorspace.LinearSRGB,
		from == colorspace.DisplayP3 && to == colorspace.LinearDisplayP3:
		return OpSRGBToLinearSRGB, nil
	case from == colorspace.LinearSRGB && to == colorspace.SRGB,
		from == colorspace.LinearDisplayP3 && to == colorspace.DisplayP3:
		return OpLinearSRGBToSRGB, nil
	case from == colorspace.LinearSRGB && to == colorspace.Oklab:
		return OpLinearSRGBToOklab, nil
	case from == colorspace.Oklab && to == colorspace.LinearSRGB:
		return OpOklabToLinearSRGB, nil
	case from == colorspace.LinearSRGB && to == colorspace.LinearDisplayP3:
		return OpLinearSRGBToLinearDisplayP3, nil
	case from == colorspace.LinearDisplayP3 && to == colorspace.LinearSRGB:
		return OpLinearDisplayP3ToLinearSRGB, nil
	default:
		return OpExit, fmt.Errorf("program: no opcode for conversion %v -> %v", from, to)
	}
}

// Execute runs a compiled instruction sequence on the stack VM, returning
// the premultiplied linear color at the context's centroid.
func Execute(ins []Instruction, ctx Context) (colorspace.Color, error) {
	var stack [stackCapacity][4]float64
	sp := 0
	push := func(v [4]float64) error {
		if sp >= stackCapacity {
			return fmt.Errorf("program: vm stack overflow")
		}
		stack[sp] = v
		sp++
		return nil
	}
	pop := func() ([4]float64, error) {
		if sp == 0 {
			return [4]float64{}, fmt.Errorf("program: vm stack underflow")
		}
		sp--
		return stack[sp], nil
	}

	pc := 0
	for pc < len(ins) {
		in := ins[pc]
		pc++
		switch in.Op {
		case OpExit, OpReturn:
			v, err := pop()
			if err != nil {
				return colorspace.Color{}, err
			}
			return colorspace.Color{R: v[0], G: v[1], B: v[2], A: v[3], Premultiplied: true}, nil
		case OpColorPush:
			if err := push([4]float64{in.F[0], in.F[1], in.F[2], in.F[3]}); err != nil {
				return colorspace.Color{}, err
			}
		case OpStackBlend:
			deeper, err := pop()
			if err != nil {
				return colorspace.Color{}, err
			}
			front, err := pop()
			if err != nil {
				return colorspace.Color{}, err
			}
			inv := 1 - front[3]
			if err := push([4]float64{
				front[0] + deeper[0]*inv, front[1] + deeper[1]*inv,
				front[2] + deeper[2]*inv, front[3] + deeper[3]*inv,
			}); err != nil {
				return colorspace.Color{}, err
			}
		case OpOpaqueJump:
			if sp > 0 && stack[sp-1][3] >= 1 {
				pc = in.A
			}
		case OpBlendCompose:
			src, err := pop()
			if err != nil {
				return colorspace.Color{}, err
			}
			dst, err := pop()
			if err != nil {
				return colorspace.Color{}, err
			}
			out := composite(vecColor(dst), vecColor(src), PorterDuff(in.A), BlendMode(in.B))
			if err := push([4]float64{out.R, out.G, out.B, out.A}); err != nil {
				return colorspace.Color{}, err
			}
		case OpLinearBlend:
			t, err := pop()
			if err != nil {
				return colorspace.Color{}, err
			}
			b, err := pop()
			if err != nil {
				return colorspace.Color{}, err
			}
			a, err := pop()
			if err != nil {
				return colorspace.Color{}, err
			}
			if err := push([4]float64{
				a[0] + (b[0]-a[0])*t[0], a[1] + (b[1]-a[1])*t[1],
				a[2] + (b[2]-a[2])*t[2], a[3] + (b[3]-a[3])*t[3],
			}); err != nil {
				return colorspace.Color{}, err
			}
		case OpComputeBlendRatio:
			var t float64
			if in.A == ratioRadial {
				center := geom2.Point2{X: in.F[0], Y: in.F[1]}
				edge := geom2.Point2{X: in.F[2], Y: in.F[3]}
				t = radialRatio(center, edge, in.F[4], ctx.Centroid)
			} else {
				start := geom2.Point2{X: in.F[0], Y: in.F[1]}
				end := geom2.Point2{X: in.F[2], Y: in.F[3]}
				t = linearRatio(start, end, ctx.Centroid)
			}
			if err := push([4]float64{t, t, t, t}); err != nil {
				return colorspace.Color{}, err
			}
		case OpBarycentricBlend:
			c2, err := pop()
			if err != nil {
				return colorspace.Color{}, err
			}
			c1, err := pop()
			if err != nil {
				return colorspace.Color{}, err
			}
			c0, err := pop()
			if err != nil {
				return colorspace.Color{}, err
			}
			tri := [3]geom2.Point2{
				{X: in.F[0], Y: in.F[1]}, {X: in.F[2], Y: in.F[3]}, {X: in.F[4], Y: in.F[5]},
			}
			w := barycentricWeights(tri, ctx.Centroid)
			if in.A == 1 {
				w = perspectiveCorrect(w, [3]float64{in.F[6], in.F[7], in.F[8]})
			}
			if err := push([4]float64{
				c0[0]*w[0] + c1[0]*w[1] + c2[0]*w[2],
				c0[1]*w[0] + c1[1]*w[1] + c2[1]*w[2],
				c0[2]*w[0] + c1[2]*w[1] + c2[2]*w[2],
				c0[3]*w[0] + c1[3]*w[1] + c2[3]*w[2],
			}); err != nil {
				return colorspace.Color{}, err
			}
		case OpPremultiply:
			v, err := pop()
			if err != nil {
				return colorspace.Color{}, err
			}
			if err := push([4]float64{v[0] * v[3], v[1] * v[3], v[2] * v[3], v[3]}); err != nil {
				return colorspace.Color{}, err
			}
		case OpUnpremultiply:
			v, err := pop()
			if err != nil {
				return colorspace.Color{}, err
			}
			if v[3] > 0 {
				v[0] /= v[3]
				v[1] /= v[3]
				v[2] /= v[3]
			}
			if err := push(v); err != nil {
				return colorspace.Color{}, err
			}
		case OpNormalize:
			v, err := pop()
			if err != nil {
				return colorspace.Color{}, err
			}
			l := v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
			if l > 0 {
				inv := 1 / math.Sqrt(l)
				v[0] *= inv
				v[1] *= inv
				v[2] *= inv
			}
			if err := push(v); err != nil {
				return colorspace.Color{}, err
			}
		case OpPhong:
			col := execPhong(in, ctx)
			if err := push([4]float64{col.R, col.G, col.B, col.A}); err != nil {
				return colorspace.Color{}, err
			}
		case OpSRGBToLinearSRGB:
			if err := mapTop(&stack, sp, colorspace.SRGBToLinear); err != nil {
				return colorspace.Color{}, err
			}
		case OpLinearSRGBToSRGB:
			if err := mapTop(&stack, sp, colorspace.LinearToSRGB); err != nil {
				return colorspace.Color{}, err
			}
		case OpLinearSRGBToOklab:
			if err := mapTop3(&stack, sp, colorspace.LinearSRGBToOklab); err != nil {
				return colorspace.Color{}, err
			}
		case OpOklabToLinearSRGB:
			if err := mapTop3(&stack, sp, colorspace.OklabToLinearSRGB); err != nil {
				return colorspace.Color{}, err
			}
		case OpLinearSRGBToLinearDisplayP3:
			if err := mapTop3(&stack, sp, colorspace.LinearSRGBToLinearDisplayP3); err != nil {
				return colorspace.Color{}, err
			}
		case OpLinearDisplayP3ToLinearSRGB:
			if err := mapTop3(&stack, sp, colorspace.LinearDisplayP3ToLinearSRGB); err != nil {
				return colorspace.Color{}, err
			}
		default:
			return colorspace.Color{}, fmt.Errorf("program: unknown opcode %d", in.Op)
		}
	}
	return colorspace.Color{}, fmt.Errorf("program: instruction stream ended without Exit")
}

func vecColor(v [4]float64) colorspace.Color {
	return colorspace.Color{R: v[0], G: v[1], B: v[2], A: v[3], Premultiplied: true}
}

func mapTop(stack *[stackCapacity][4]float64, sp int, f func(float64) float64) error {
	if sp == 0 {
		return fmt.Errorf("program: vm stack underflow")
	}
	v := &stack[sp-1]
	v[0], v[1], v[2] = f(v[0]), f(v[1]), f(v[2])
	return nil
}

func mapTop3(stack *[stackCapacity][4]float64, sp int, f func(r, g, b float64) (float64, float64, float64)) error {
	if sp == 0 {
		return fmt.Errorf("program: vm stack underflow")
	}
	v := &stack[sp-1]
	v[0], v[1], v[2] = f(v[0], v[1], v[2])
	return nil
}

// execPhong rebuilds a Phong node from the instruction's lanes and reuses
// the tree evaluator's shading math, so the VM and the tree walk cannot
// drift apart.
func execPhong(in Instruction, ctx Context) colorspace.Color {
	n := &Node{
		Kind:      KPhong,
		Ambient:   laneColor(in.F, 0),
		Diffuse:   laneColor(in.F, 4),
		Specular:  laneColor(in.F, 8),
		Shininess: in.F[12],
	}
	base := 13
	for i := 0; i < in.A; i++ {
		o := base + i*6
		n.Lights = append(n.Lights, Light{
			Position:  geom2.Point2{X: in.F[o], Y: in.F[o+1]},
			Intensity: colorspace.Color{R: in.F[o+2], G: in.F[o+3], B: in.F[o+4], A: in.F[o+5], Premultiplied: true},
		})
	}
	return evalPhong(n, ctx)
}

func laneColor(f []float64, o int) colorspace.Color {
	return colorspace.Color{R: f[o], G: f[o+1], B: f[o+2], A: f[o+3], Premultiplied: true}
}
