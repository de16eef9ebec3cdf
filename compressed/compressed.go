// Package compressed defines the self-describing artifact a compressor
// emits: preamble, header, bitsets and data regions, plus validation of
// everything the decoder is about to trust.
package compressed

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/mogren/animpack/format"
)

const COMPRESSED_CLIP_MAGIC = uint32(0x10ac10ac)

const (
	Version      = uint16(1)
	PreambleSize = 16
	HeaderSize   = 40
	FixedSize    = PreambleSize + HeaderSize
)

// IntegrityError marks a malformed blob. The decoder rejects the whole
// artifact and makes no partial writes.
type IntegrityError struct {
	Field  string
	Detail string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("malformed compressed clip: %s (%s)", e.Field, e.Detail)
}

// Clip is an immutable view over the artifact bytes. The decoder borrows
// it read-only.
type Clip struct {
	data []byte
}

// Make stamps a fresh preamble over buf and returns the clip being built.
// The CRC is left zero until Finalize.
func Make(buf []byte, algorithm format.AlgorithmType) *Clip {
	binary.LittleEndian.PutUint32(buf[0:4], COMPRESSED_CLIP_MAGIC)
	binary.LittleEndian.PutUint16(buf[4:6], Version)
	buf[6] = uint8(algorithm)
	buf[7] = 0
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(buf)))
	binary.LittleEndian.PutUint32(buf[12:16], 0)
	return &Clip{data: buf}
}

// Finalize computes the payload CRC. Call once every region is written.
func (c *Clip) Finalize() {
	crc := crc32.ChecksumIEEE(c.data[PreambleSize:])
	binary.LittleEndian.PutUint32(c.data[12:16], crc)
}

// FromBuffer validates the artifact and wraps it. This is the only path
// from raw bytes to a Clip a decoder accepts.
func FromBuffer(data []byte) (*Clip, error) {
	if err := Validate(data, true); err != nil {
		return nil, err
	}
	return &Clip{data: data}, nil
}

func (c *Clip) Data() []byte { return c.data }
func (c *Clip) Size() uint32 { return uint32(len(c.data)) }

func (c *Clip) AlgorithmType() format.AlgorithmType {
	return format.AlgorithmType(c.data[6])
}

func (c *Clip) Header() Header {
	return ReadHeader(c.data)
}

// Bitset returns the word view of a bitset region at the given offset.
func (c *Clip) Bitset(offset Offset32, words int) []uint32 {
	out := make([]uint32, words)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(c.data[int(offset)+i*4:])
	}
	return out
}

// Validate checks everything §4.7 promises before any region is touched:
// magic, version, sizes, CRC, offset alignment and bounds.
func Validate(data []byte, checkCRC bool) error {
	if len(data) < FixedSize {
		return &IntegrityError{"size", fmt.Sprintf("%d bytes, need at least %d", len(data), FixedSize)}
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != COMPRESSED_CLIP_MAGIC {
		return &IntegrityError{"magic", fmt.Sprintf("0x%08x", magic)}
	}
	if version := binary.LittleEndian.Uint16(data[4:6]); version != Version {
		return &IntegrityError{"version", fmt.Sprintf("%d", version)}
	}
	if format.AlgorithmType(data[6]) == format.AlgorithmUnknown {
		return &IntegrityError{"algorithm", "unknown tag 0"}
	}
	totalSize := binary.LittleEndian.Uint32(data[8:12])
	if totalSize != uint32(len(data)) {
		return &IntegrityError{"total_size", fmt.Sprintf("header says %d, buffer is %d", totalSize, len(data))}
	}
	if checkCRC {
		want := binary.LittleEndian.Uint32(data[12:16])
		if got := crc32.ChecksumIEEE(data[PreambleSize:]); got != want {
			return &IntegrityError{"crc", fmt.Sprintf("computed 0x%08x, stored 0x%08x", got, want)}
		}
	}

	h := ReadHeader(data)
	if h.NumBones == 0 {
		return &IntegrityError{"num_bones", "zero"}
	}
	if h.NumSamples == 0 {
		return &IntegrityError{"num_samples", "zero"}
	}
	if h.SampleRate == 0 {
		return &IntegrityError{"sample_rate", "zero"}
	}

	if !h.DefaultBitsetOffset.IsValid() {
		return &IntegrityError{"default_bitset_offset", "sentinel, bitsets are mandatory"}
	}
	bitsetBytes := uint32(h.BitsetSize() * 4)
	if err := checkRegionOffset("default_bitset_offset", h.DefaultBitsetOffset, bitsetBytes*2, totalSize); err != nil {
		return err
	}
	if err := checkRegionOffset("constant_data_offset", h.ConstantDataOffset, 0, totalSize); err != nil {
		return err
	}
	if err := checkRegionOffset("range_data_offset", h.RangeDataOffset, 0, totalSize); err != nil {
		return err
	}
	if err := checkRegionOffset("animated_data_offset", h.AnimatedDataOffset, 0, totalSize); err != nil {
		return err
	}
	return nil
}

func checkRegionOffset(field string, offset Offset32, minSize, totalSize uint32) error {
	if !offset.IsValid() {
		return nil
	}
	if uint32(offset)%4 != 0 {
		return &IntegrityError{field, fmt.Sprintf("0x%x is not 4-byte aligned", uint32(offset))}
	}
	if uint32(offset) < FixedSize || uint32(offset)+minSize > totalSize {
		return &IntegrityError{field, fmt.Sprintf("0x%x out of bounds (total 0x%x)", uint32(offset), totalSize)}
	}
	return nil
}
