package program

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"vraster/internal/colorspace"
	"vraster/internal/geom2"
	"vraster/internal/scene"
)

// Canonical structural encoding: each node is its kind tag (one byte),
// its literal payload, then its children recursively. Colors serialize as
// 4 float64s followed by a color-space byte and a premultiplied-flag byte;
// matrices as six float64s in the order SX, SHX, TX, SHY, SY, TY. Used for diagnostics and cross-process
// transport; Deserialize treats an unknown tag as fatal.

// Serialize renders n's structural encoding.
func Serialize(n *Node) []byte {
	var buf bytes.Buffer
	writeNode(&buf, n)
	return buf.Bytes()
}

// Deserialize parses a structural encoding back into a node tree.
func Deserialize(data []byte) (*Node, error) {
	r := bytes.NewReader(data)
	n, err := readNode(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("program: %d trailing bytes after node encoding", r.Len())
	}
	return n, nil
}

func writeNode(buf *bytes.Buffer, n *Node) {
	buf.WriteByte(byte(n.Kind))
	switch n.Kind {
	case KColor:
		writeColor(buf, n.Color)
	case KStack:
		writeCount(buf, len(n.Children))
		for _, c := range n.Children {
			writeNode(buf, c)
		}
	case KAlpha:
		writeFloats(buf, n.AlphaFactor)
		writeNode(buf, n.Children[0])
	case KBlendCompose:
		buf.WriteByte(byte(n.PorterDuff))
		buf.WriteByte(byte(n.Blend))
		writeNode(buf, n.Children[0])
		writeNode(buf, n.Children[1])
	case KPathBoolean:
		writeCount(buf, int(n.Path))
		buf.WriteByte(byte(n.Fill))
		writeNode(buf, n.Inside)
		writeNode(buf, n.Outside)
	case KFilter:
		for i := 0; i < 4; i++ {
			writeFloats(buf, n.FilterMatrix[i][0], n.FilterMatrix[i][1], n.FilterMatrix[i][2], n.FilterMatrix[i][3])
		}
		writeFloats(buf, n.FilterOffset[0], n.FilterOffset[1], n.FilterOffset[2], n.FilterOffset[3])
		writeNode(buf, n.Children[0])
	case KImage:
		writeCount(buf, n.ImageW)
		writeCount(buf, n.ImageH)
		writeMatrix(buf, n.ImageTransform)
		buf.WriteByte(byte(n.Extend))
		buf.WriteByte(byte(n.Resample))
		for _, p := range n.ImagePixels {
			writeColor(buf, p)
		}
	case KLinearBlend, KRadialBlend:
		writeFloats(buf, n.AxisStart.X, n.AxisStart.Y, n.AxisEnd.X, n.AxisEnd.Y, n.RadialInner)
		writeNode(buf, n.BlendA)
		writeNode(buf, n.BlendB)
	case KLinearGradient, KRadialGradient:
		writeFloats(buf, n.AxisStart.X, n.AxisStart.Y, n.AxisEnd.X, n.AxisEnd.Y)
		buf.WriteByte(byte(n.Accuracy))
		writeCount(buf, len(n.Stops))
		for _, s := range n.Stops {
			writeFloats(buf, s.Position)
			writeColor(buf, s.Color)
		}
	case KBarycentricBlend, KBarycentricPerspectiveBlend:
		for _, p := range n.TriangleXY {
			writeFloats(buf, p.X, p.Y)
		}
		writeFloats(buf, n.TriangleW[0], n.TriangleW[1], n.TriangleW[2])
		for _, c := range n.Corners {
			writeNode(buf, c)
		}
	case KPhong:
		writeColor(buf, n.Ambient)
		writeColor(buf, n.Diffuse)
		writeColor(buf, n.Specular)
		writeFloats(buf, n.Shininess)
		writeCount(buf, len(n.Lights))
		for _, l := range n.Lights {
			writeFloats(buf, l.Position.X, l.Position.Y)
			writeColor(buf, l.Intensity)
		}
	case KNormalize, KNormalDebug, KPremultiply, KUnpremultiply:
		writeNode(buf, n.Children[0])
	case KDepthSort:
		writeCount(buf, len(n.Planar))
		for _, item := range n.Planar {
			for _, p := range item.TriangleXY {
				writeFloats(buf, p.X, p.Y)
			}
			writeFloats(buf, item.TriangleZ[0], item.TriangleZ[1], item.TriangleZ[2])
			writeNode(buf, item.Program)
		}
	case KColorSpaceConvert:
		buf.WriteByte(byte(n.From))
		buf.WriteByte(byte(n.To))
		writeNode(buf, n.Children[0])
	}
}

func readNode(r *bytes.Reader) (*Node, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("program: truncated node encoding: %w", err)
	}
	kind := Kind(tag)
	switch kind {
	case KColor:
		c, err := readColor(r)
		if err != nil {
			return nil, err
		}
		return NewColor(c), nil
	case KStack:
		count, err := readCount(r)
		if err != nil {
			return nil, err
		}
		children := make([]*Node, count)
		for i := range children {
			if children[i], err = readNode(r); err != nil {
				return nil, err
			}
		}
		return NewStack(children...), nil
	case KAlpha:
		f, err := readFloats(r, 1)
		if err != nil {
			return nil, err
		}
		child, err := readNode(r)
		if err != nil {
			return nil, err
		}
		return NewAlpha(child, f[0]), nil
	case KBlendCompose:
		pd, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		bm, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		dst, err := readNode(r)
		if err != nil {
			return nil, err
		}
		src, err := readNode(r)
		if err != nil {
			return nil, err
		}
		return NewBlendCompose(dst, src, PorterDuff(pd), BlendMode(bm)), nil
	case KPathBoolean:
		path, err := readCount(r)
		if err != nil {
			return nil, err
		}
		fill, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		inside, err := readNode(r)
		if err != nil {
			return nil, err
		}
		outside, err := readNode(r)
		if err != nil {
			return nil, err
		}
		return NewPathBoolean(scene.PathID(path), scene.FillRule(fill), inside, outside), nil
	case KFilter:
		f, err := readFloats(r, 20)
		if err != nil {
			return nil, err
		}
		var m [4][4]float64
		for i := 0; i < 4; i++ {
			copy(m[i][:], f[4*i:4*i+4])
		}
		var off [4]float64
		copy(off[:], f[16:20])
		child, err := readNode(r)
		if err != nil {
			return nil, err
		}
		return NewFilter(child, m, off), nil
	case KImage:
		w, err := readCount(r)
		if err != nil {
			return nil, err
		}
		h, err := readCount(r)
		if err != nil {
			return nil, err
		}
		m, err := readMatrix(r)
		if err != nil {
			return nil, err
		}
		extend, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		resample, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		pixels := make([]colorspace.Color, w*h)
		for i := range pixels {
			if pixels[i], err = readColor(r); err != nil {
				return nil, err
			}
		}
		return NewImage(w, h, pixels, m, ExtendMode(extend), ResampleMode(resample)), nil
	case KLinearBlend, KRadialBlend:
		f, err := readFloats(r, 5)
		if err != nil {
			return nil, err
		}
		a, err := readNode(r)
		if err != nil {
			return nil, err
		}
		b, err := readNode(r)
		if err != nil {
			return nil, err
		}
		start := geom2.Point2{X: f[0], Y: f[1]}
		end := geom2.Point2{X: f[2], Y: f[3]}
		if kind == KLinearBlend {
			return NewLinearBlend(start, end, a, b), nil
		}
		return NewRadialBlendRing(start, end, f[4], a, b), nil
	case KLinearGradient, KRadialGradient:
		f, err := readFloats(r, 4)
		if err != nil {
			return nil, err
		}
		acc, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		count, err := readCount(r)
		if err != nil {
			return nil, err
		}
		stops := make([]GradientStop, count)
		for i := range stops {
			pos, err := readFloats(r, 1)
			if err != nil {
				return nil, err
			}
			col, err := readColor(r)
			if err != nil {
				return nil, err
			}
			stops[i] = GradientStop{Position: pos[0], Color: col}
		}
		start := geom2.Point2{X: f[0], Y: f[1]}
		end := geom2.Point2{X: f[2], Y: f[3]}
		if kind == KLinearGradient {
			return NewLinearGradient(start, end, stops, GradientAccuracy(acc)), nil
		}
		return NewRadialGradient(start, end, stops, GradientAccuracy(acc)), nil
	case KBarycentricBlend, KBarycentricPerspectiveBlend:
		f, err := readFloats(r, 9)
		if err != nil {
			return nil, err
		}
		var corners [3]*Node
		for i := range corners {
			if corners[i], err = readNode(r); err != nil {
				return nil, err
			}
		}
		tri := [3]geom2.Point2{{X: f[0], Y: f[1]}, {X: f[2], Y: f[3]}, {X: f[4], Y: f[5]}}
		w := [3]float64{f[6], f[7], f[8]}
		if kind == KBarycentricBlend {
			return NewBarycentricBlend(tri, corners), nil
		}
		return NewBarycentricPerspectiveBlend(tri, w, corners), nil
	case KPhong:
		ambient, err := readColor(r)
		if err != nil {
			return nil, err
		}
		diffuse, err := readColor(r)
		if err != nil {
			return nil, err
		}
		specular, err := readColor(r)
		if err != nil {
			return nil, err
		}
		shininess, err := readFloats(r, 1)
		if err != nil {
			return nil, err
		}
		count, err := readCount(r)
		if err != nil {
			return nil, err
		}
		lights := make([]Light, count)
		for i := range lights {
			pos, err := readFloats(r, 2)
			if err != nil {
				return nil, err
			}
			intensity, err := readColor(r)
			if err != nil {
				return nil, err
			}
			lights[i] = Light{Position: geom2.Point2{X: pos[0], Y: pos[1]}, Intensity: intensity}
		}
		return NewPhong(ambient, diffuse, specular, shininess[0], lights), nil
	case KNormalize, KNormalDebug, KPremultiply, KUnpremultiply:
		child, err := readNode(r)
		if err != nil {
			return nil, err
		}
		switch kind {
		case KNormalize:
			return NewNormalize(child), nil
		case KNormalDebug:
			return NewNormalDebug(child), nil
		case KPremultiply:
			return NewPremultiply(child), nil
		default:
			return NewUnpremultiply(child), nil
		}
	case KDepthSort:
		count, err := readCount(r)
		if err != nil {
			return nil, err
		}
		items := make([]RenderPlanar, count)
		for i := range items {
			f, err := readFloats(r, 9)
			if err != nil {
				return nil, err
			}
			prog, err := readNode(r)
			if err != nil {
				return nil, err
			}
			items[i] = RenderPlanar{
				Program:    prog,
				TriangleXY: [3]geom2.Point2{{X: f[0], Y: f[1]}, {X: f[2], Y: f[3]}, {X: f[4], Y: f[5]}},
				TriangleZ:  [3]float64{f[6], f[7], f[8]},
			}
		}
		return NewDepthSort(items), nil
	case KColorSpaceConvert:
		from, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		to, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		child, err := readNode(r)
		if err != nil {
			return nil, err
		}
		return NewColorSpaceConvert(child, colorspace.Space(from), colorspace.Space(to)), nil
	default:
		return nil, fmt.Errorf("program: unsupported node tag %d", tag)
	}
}

func writeColor(buf *bytes.Buffer, c colorspace.Color) {
	writeFloats(buf, c.R, c.G, c.B, c.A)
	buf.WriteByte(byte(c.Space))
	if c.Premultiplied {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func readColor(r *bytes.Reader) (colorspace.Color, error) {
	f, err := readFloats(r, 4)
	if err != nil {
		return colorspace.Color{}, err
	}
	space, err := r.ReadByte()
	if err != nil {
		return colorspace.Color{}, err
	}
	pre, err := r.ReadByte()
	if err != nil {
		return colorspace.Color{}, err
	}
	return colorspace.Color{
		R: f[0], G: f[1], B: f[2], A: f[3],
		Space: colorspace.Space(space), Premultiplied: pre == 1,
	}, nil
}

func writeMatrix(buf *bytes.Buffer, m geom2.Matrix2x3) {
	writeFloats(buf, m.SX, m.SHX, m.TX, m.SHY, m.SY, m.TY)
}

func readMatrix(r *bytes.Reader) (geom2.Matrix2x3, error) {
	f, err := readFloats(r, 6)
	if err != nil {
		return geom2.Matrix2x3{}, err
	}
	return geom2.Matrix2x3{SX: f[0], SHX: f[1], TX: f[2], SHY: f[3], SY: f[4], TY: f[5]}, nil
}

func writeFloats(buf *bytes.Buffer, vals ...float64) {
	var b [8]byte
	for _, v := range vals {
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		buf.Write(b[:])
	}
}

func readFloats(r *bytes.Reader, n int) ([]float64, error) {
	out := make([]float64, n)
	var b [8]byte
	for i := range out {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, fmt.Errorf("program: truncated node encoding: %w", err)
		}
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[:]))
	}
	return out, nil
}

func writeCount(buf *bytes.Buffer, n int) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(n))
	buf.Write(b[:])
}

func readCount(r *bytes.Reader) (int, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("program: truncated node encoding: %w", err)
	}
	return int(binary.LittleEndian.Uint32(b[:])), nil
}
