package compressed

import (
	"encoding/binary"

	"github.com/mogren/animpack/bitset"
	"github.com/mogren/animpack/format"
)

// Offset32 is a blob-relative byte offset. All-ones marks an empty region.
type Offset32 uint32

const InvalidOffset Offset32 = 0xffffffff

func (o Offset32) IsValid() bool {
	return o != InvalidOffset
}

// Header is the fixed-layout prefix right after the preamble. It is the
// only navigational structure in the artifact; regions are found through
// its offsets, never through sizes.
//
// Layout (little-endian, starting at byte 16):
//
//	+0x00 num_bones                       u16
//	+0x02 rotation_format                 u8
//	+0x03 translation_format              u8
//	+0x04 range_reduction                 u8
//	+0x05 padding                         u8[3]
//	+0x08 num_samples                     u32
//	+0x0c sample_rate                     u32
//	+0x10 num_animated_rotation_tracks    u32
//	+0x14 num_animated_translation_tracks u32
//	+0x18 default_bitset_offset           u32
//	+0x1c constant_data_offset            u32
//	+0x20 range_data_offset               u32
//	+0x24 animated_data_offset            u32
//
// The constant-track bitset has no offset of its own: both bitsets are
// always present and equal-sized, it sits right after the default bitset.
type Header struct {
	NumBones          uint16
	RotationFormat    format.RotationFormat
	TranslationFormat format.VectorFormat
	RangeReduction    format.RangeReductionFlags

	NumSamples uint32
	SampleRate uint32

	NumAnimatedRotationTracks    uint32
	NumAnimatedTranslationTracks uint32

	DefaultBitsetOffset Offset32
	ConstantDataOffset  Offset32
	RangeDataOffset     Offset32
	AnimatedDataOffset  Offset32
}

// BitsetSize is words per bitset: one bit per bone per track kind.
func (h *Header) BitsetSize() int {
	return bitset.Size(int(h.NumBones) * 2)
}

func (h *Header) ConstantBitsetOffset() Offset32 {
	return h.DefaultBitsetOffset + Offset32(h.BitsetSize()*4)
}

func (h *Header) Duration() float64 {
	return float64(h.NumSamples-1) / float64(h.SampleRate)
}

func (h *Header) Write(data []byte) {
	buf := data[PreambleSize:]
	binary.LittleEndian.PutUint16(buf[0x00:], h.NumBones)
	buf[0x02] = uint8(h.RotationFormat)
	buf[0x03] = uint8(h.TranslationFormat)
	buf[0x04] = uint8(h.RangeReduction)
	buf[0x05], buf[0x06], buf[0x07] = 0, 0, 0
	binary.LittleEndian.PutUint32(buf[0x08:], h.NumSamples)
	binary.LittleEndian.PutUint32(buf[0x0c:], h.SampleRate)
	binary.LittleEndian.PutUint32(buf[0x10:], h.NumAnimatedRotationTracks)
	binary.LittleEndian.PutUint32(buf[0x14:], h.NumAnimatedTranslationTracks)
	binary.LittleEndian.PutUint32(buf[0x18:], uint32(h.DefaultBitsetOffset))
	binary.LittleEndian.PutUint32(buf[0x1c:], uint32(h.ConstantDataOffset))
	binary.LittleEndian.PutUint32(buf[0x20:], uint32(h.RangeDataOffset))
	binary.LittleEndian.PutUint32(buf[0x24:], uint32(h.AnimatedDataOffset))
}

func ReadHeader(data []byte) Header {
	buf := data[PreambleSize:]
	return Header{
		NumBones:          binary.LittleEndian.Uint16(buf[0x00:]),
		RotationFormat:    format.RotationFormat(buf[0x02]),
		TranslationFormat: format.VectorFormat(buf[0x03]),
		RangeReduction:    format.RangeReductionFlags(buf[0x04]),

		NumSamples: binary.LittleEndian.Uint32(buf[0x08:]),
		SampleRate: binary.LittleEndian.Uint32(buf[0x0c:]),

		NumAnimatedRotationTracks:    binary.LittleEndian.Uint32(buf[0x10:]),
		NumAnimatedTranslationTracks: binary.LittleEndian.Uint32(buf[0x14:]),

		DefaultBitsetOffset: Offset32(binary.LittleEndian.Uint32(buf[0x18:])),
		ConstantDataOffset:  Offset32(binary.LittleEndian.Uint32(buf[0x1c:])),
		RangeDataOffset:     Offset32(binary.LittleEndian.Uint32(buf[0x20:])),
		AnimatedDataOffset:  Offset32(binary.LittleEndian.Uint32(buf[0x24:])),
	}
}
