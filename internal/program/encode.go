package program

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Binary instruction layout: each instruction starts with one 32-bit word
// holding the opcode in the low 8 bits and the two small arguments in 12
// bits each above it; float lanes follow as IEEE-754 float32 words. The
// lane count of every opcode is a fixed function of its first word, so a
// reader can always advance without decoding lane contents.

const (
	smallArgBits = 12
	smallArgMax  = 1<<smallArgBits - 1
)

// laneCount returns the number of 32-bit lanes following op's first word.
func laneCount(op Opcode, a int) (int, error) {
	switch op {
	case OpColorPush:
		return 4, nil
	case OpComputeBlendRatio:
		if a == ratioRadial {
			return 5, nil
		}
		return 4, nil
	case OpBarycentricBlend:
		return 9, nil
	case OpPhong:
		return 13 + 6*a, nil
	case OpExit, OpReturn, OpStackBlend, OpOpaqueJump, OpBlendCompose,
		OpLinearBlend, OpPremultiply, OpUnpremultiply, OpNormalize,
		OpSRGBToLinearSRGB, OpLinearSRGBToSRGB, OpLinearSRGBToOklab,
		OpOklabToLinearSRGB, OpLinearSRGBToLinearDisplayP3, OpLinearDisplayP3ToLinearSRGB:
		return 0, nil
	default:
		return 0, fmt.Errorf("program: unknown opcode %d", op)
	}
}

// EncodeInstructions packs a compiled sequence into 32-bit words.
// OpOpaqueJump targets are converted from instruction indices to word
// offsets so a flat consumer (the GPU backend) can jump without an index
// table.
func EncodeInstructions(ins []Instruction) ([]uint32, error) {
	offsets := make([]int, len(ins)+1)
	w := 0
	for i, in := range ins {
		offsets[i] = w
		lanes, err := laneCount(in.Op, in.A)
		if err != nil {
			return nil, err
		}
		w += 1 + lanes
	}
	offsets[len(ins)] = w

	out := make([]uint32, 0, w)
	for _, in := range ins {
		a, b := in.A, in.B
		if in.Op == OpOpaqueJump {
			if in.A < 0 || in.A > len(ins) {
				return nil, fmt.Errorf("program: jump target %d out of range", in.A)
			}
			a = offsets[in.A]
		}
		if a < 0 || a > smallArgMax || b < 0 || b > smallArgMax {
			return nil, fmt.Errorf("program: small argument (%d,%d) exceeds %d bits", a, b, smallArgBits)
		}
		out = append(out, uint32(in.Op)|uint32(a)<<8|uint32(b)<<(8+smallArgBits))
		for _, f := range in.F {
			out = append(out, math.Float32bits(float32(f)))
		}
	}
	return out, nil
}

// DecodeInstructions is the inverse of EncodeInstructions. Unknown
// opcodes are fatal (the unsupported-program failure mode), never
// skipped.
func DecodeInstructions(words []uint32) ([]Instruction, error) {
	byOffset := map[int]int{}
	var ins []Instruction
	pos := 0
	for pos < len(words) {
		first := words[pos]
		op := Opcode(first & 0xFF)
		a := int(first >> 8 & smallArgMax)
		b := int(first >> (8 + smallArgBits) & smallArgMax)
		lanes, err := laneCount(op, a)
		if err != nil {
			return nil, err
		}
		if pos+1+lanes > len(words) {
			return nil, fmt.Errorf("program: truncated instruction stream at word %d", pos)
		}
		in := Instruction{Op: op, A: a, B: b}
		if lanes > 0 {
			in.F = make([]float64, lanes)
			for i := 0; i < lanes; i++ {
				in.F[i] = float64(math.Float32frombits(words[pos+1+i]))
			}
		}
		byOffset[pos] = len(ins)
		ins = append(ins, in)
		pos += 1 + lanes
	}
	byOffset[pos] = len(ins)

	for i := range ins {
		if ins[i].Op == OpOpaqueJump {
			target, ok := byOffset[ins[i].A]
			if !ok {
				return nil, fmt.Errorf("program: jump to mid-instruction offset %d", ins[i].A)
			}
			ins[i].A = target
		}
	}
	return ins, nil
}

// EncodeBinary renders the word stream little-endian for cross-process
// transport.
func EncodeBinary(ins []Instruction) ([]byte, error) {
	words, err := EncodeInstructions(ins)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[4*i:], w)
	}
	return out, nil
}

// DecodeBinary parses a little-endian word stream back to instructions.
func DecodeBinary(data []byte) ([]Instruction, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("program: binary stream length %d is not word-aligned", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[4*i:])
	}
	return DecodeInstructions(words)
}
