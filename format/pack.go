package format

import (
	"encoding/binary"
	"math"
)

// Quantized components are stored unsigned normalized. Inputs outside [0, 1]
// clamp at the edges, values inside round to the nearest representable step.
func QuantizeUnsignedNormalized(v float32, numBits uint) uint32 {
	maxValue := uint32(1)<<numBits - 1
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return maxValue
	}
	return uint32(v*float32(maxValue) + 0.5)
}

func DequantizeUnsignedNormalized(q uint32, numBits uint) float32 {
	maxValue := uint32(1)<<numBits - 1
	return float32(q) / float32(maxValue)
}

// PackRotation writes one rotation sample in its storage shape.
// For RotationQuat128/RotationQuat96 the components are raw f32 values.
// For the quantized formats the x, y, z components must already be mapped
// into [0, 1]; sample[3] carries the hemisphere sign (negative when the
// quaternion was flipped to drop w).
func PackRotation(f RotationFormat, sample [4]float32, out []byte) {
	switch f {
	case RotationQuat128:
		binary.LittleEndian.PutUint32(out[0:4], math.Float32bits(sample[0]))
		binary.LittleEndian.PutUint32(out[4:8], math.Float32bits(sample[1]))
		binary.LittleEndian.PutUint32(out[8:12], math.Float32bits(sample[2]))
		binary.LittleEndian.PutUint32(out[12:16], math.Float32bits(sample[3]))
	case RotationQuat96:
		binary.LittleEndian.PutUint32(out[0:4], math.Float32bits(sample[0]))
		binary.LittleEndian.PutUint32(out[4:8], math.Float32bits(sample[1]))
		binary.LittleEndian.PutUint32(out[8:12], math.Float32bits(sample[2]))
	case RotationQuat48:
		packed := uint64(QuantizeUnsignedNormalized(sample[0], 15)) |
			uint64(QuantizeUnsignedNormalized(sample[1], 15))<<15 |
			uint64(QuantizeUnsignedNormalized(sample[2], 15))<<30
		if sample[3] < 0 {
			packed |= uint64(1) << 45
		}
		binary.LittleEndian.PutUint32(out[0:4], uint32(packed))
		binary.LittleEndian.PutUint16(out[4:6], uint16(packed>>32))
	case RotationQuat32:
		// 11 + 11 + 10 bits, no room left for a sign bit
		packed := QuantizeUnsignedNormalized(sample[0], 11) |
			QuantizeUnsignedNormalized(sample[1], 11)<<11 |
			QuantizeUnsignedNormalized(sample[2], 10)<<22
		binary.LittleEndian.PutUint32(out[0:4], packed)
	}
}

// UnpackRotation is the mirror of PackRotation. For drop-w formats the
// returned sample[3] holds the hemisphere sign (+1 or -1), not w itself;
// w is reconstructed by the decoder once range expansion is done.
func UnpackRotation(f RotationFormat, in []byte) [4]float32 {
	var sample [4]float32
	switch f {
	case RotationQuat128:
		sample[0] = math.Float32frombits(binary.LittleEndian.Uint32(in[0:4]))
		sample[1] = math.Float32frombits(binary.LittleEndian.Uint32(in[4:8]))
		sample[2] = math.Float32frombits(binary.LittleEndian.Uint32(in[8:12]))
		sample[3] = math.Float32frombits(binary.LittleEndian.Uint32(in[12:16]))
	case RotationQuat96:
		sample[0] = math.Float32frombits(binary.LittleEndian.Uint32(in[0:4]))
		sample[1] = math.Float32frombits(binary.LittleEndian.Uint32(in[4:8]))
		sample[2] = math.Float32frombits(binary.LittleEndian.Uint32(in[8:12]))
		sample[3] = 1
	case RotationQuat48:
		packed := uint64(binary.LittleEndian.Uint32(in[0:4])) |
			uint64(binary.LittleEndian.Uint16(in[4:6]))<<32
		sample[0] = DequantizeUnsignedNormalized(uint32(packed)&0x7fff, 15)
		sample[1] = DequantizeUnsignedNormalized(uint32(packed>>15)&0x7fff, 15)
		sample[2] = DequantizeUnsignedNormalized(uint32(packed>>30)&0x7fff, 15)
		if packed&(uint64(1)<<45) != 0 {
			sample[3] = -1
		} else {
			sample[3] = 1
		}
	case RotationQuat32:
		packed := binary.LittleEndian.Uint32(in[0:4])
		sample[0] = DequantizeUnsignedNormalized(packed&0x7ff, 11)
		sample[1] = DequantizeUnsignedNormalized((packed>>11)&0x7ff, 11)
		sample[2] = DequantizeUnsignedNormalized((packed>>22)&0x3ff, 10)
		sample[3] = 1
	}
	return sample
}

// PackVector writes one translation sample. Vector396 stores raw f32
// components, the quantized formats expect components mapped into [0, 1].
func PackVector(f VectorFormat, sample [3]float32, out []byte) {
	switch f {
	case Vector396:
		binary.LittleEndian.PutUint32(out[0:4], math.Float32bits(sample[0]))
		binary.LittleEndian.PutUint32(out[4:8], math.Float32bits(sample[1]))
		binary.LittleEndian.PutUint32(out[8:12], math.Float32bits(sample[2]))
	case Vector348:
		binary.LittleEndian.PutUint16(out[0:2], uint16(QuantizeUnsignedNormalized(sample[0], 16)))
		binary.LittleEndian.PutUint16(out[2:4], uint16(QuantizeUnsignedNormalized(sample[1], 16)))
		binary.LittleEndian.PutUint16(out[4:6], uint16(QuantizeUnsignedNormalized(sample[2], 16)))
	case Vector332:
		packed := QuantizeUnsignedNormalized(sample[0], 11) |
			QuantizeUnsignedNormalized(sample[1], 11)<<11 |
			QuantizeUnsignedNormalized(sample[2], 10)<<22
		binary.LittleEndian.PutUint32(out[0:4], packed)
	}
}

func UnpackVector(f VectorFormat, in []byte) [3]float32 {
	var sample [3]float32
	switch f {
	case Vector396:
		sample[0] = math.Float32frombits(binary.LittleEndian.Uint32(in[0:4]))
		sample[1] = math.Float32frombits(binary.LittleEndian.Uint32(in[4:8]))
		sample[2] = math.Float32frombits(binary.LittleEndian.Uint32(in[8:12]))
	case Vector348:
		sample[0] = DequantizeUnsignedNormalized(uint32(binary.LittleEndian.Uint16(in[0:2])), 16)
		sample[1] = DequantizeUnsignedNormalized(uint32(binary.LittleEndian.Uint16(in[2:4])), 16)
		sample[2] = DequantizeUnsignedNormalized(uint32(binary.LittleEndian.Uint16(in[4:6])), 16)
	case Vector332:
		packed := binary.LittleEndian.Uint32(in[0:4])
		sample[0] = DequantizeUnsignedNormalized(packed&0x7ff, 11)
		sample[1] = DequantizeUnsignedNormalized((packed>>11)&0x7ff, 11)
		sample[2] = DequantizeUnsignedNormalized((packed>>22)&0x3ff, 10)
	}
	return sample
}
