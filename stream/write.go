package stream

import (
	"encoding/binary"
	"math"

	"github.com/mogren/animpack/bitset"
	"github.com/mogren/animpack/format"
)

// Artifact region writers. Bit index convention: bone_index*2 for the
// rotation track, bone_index*2+1 for the translation track.

func WriteDefaultTrackBitset(streams []BoneStreams, words []uint32) {
	for i := range streams {
		bitset.Set(words, i*2, streams[i].IsRotationDefault)
		bitset.Set(words, i*2+1, streams[i].IsTranslationDefault)
	}
}

func WriteConstantTrackBitset(streams []BoneStreams, words []uint32) {
	for i := range streams {
		bitset.Set(words, i*2, streams[i].IsRotationConstant)
		bitset.Set(words, i*2+1, streams[i].IsTranslationConstant)
	}
}

// WriteConstantTrackData emits the single representative sample of every
// constant track, bone-major, rotation before translation. Returns bytes
// written.
func WriteConstantTrackData(streams []BoneStreams, out []byte) int {
	offset := 0
	for i := range streams {
		bs := &streams[i]
		if bs.IsRotationConstant {
			offset += copy(out[offset:], bs.PackedRotations)
		}
		if bs.IsTranslationConstant {
			offset += copy(out[offset:], bs.PackedTranslations)
		}
	}
	return offset
}

func writeRangeEntry(out []byte, min, extent []float32, numComponents int) int {
	offset := 0
	for c := 0; c < numComponents; c++ {
		binary.LittleEndian.PutUint32(out[offset:], math.Float32bits(min[c]))
		offset += 4
	}
	for c := 0; c < numComponents; c++ {
		binary.LittleEndian.PutUint32(out[offset:], math.Float32bits(extent[c]))
		offset += 4
	}
	return offset
}

// WriteRangeData emits (min, extent) pairs for every range-reduced animated
// track, bone-major, rotation before translation, at full precision in the
// active formats' storage shapes.
func WriteRangeData(streams []BoneStreams, flags format.RangeReductionFlags, rotationFormat format.RotationFormat, out []byte) int {
	rangeRotations := flags.Has(format.RangeReductionPerClip | format.RangeReductionRotations)
	rangeTranslations := flags.Has(format.RangeReductionPerClip | format.RangeReductionTranslations)

	offset := 0
	for i := range streams {
		bs := &streams[i]
		if rangeRotations && bs.IsRotationAnimated() {
			offset += writeRangeEntry(out[offset:], bs.RotationRange.Min[:], bs.RotationRange.Extent[:], rotationFormat.NumComponents())
		}
		if rangeTranslations && bs.IsTranslationAnimated() {
			offset += writeRangeEntry(out[offset:], bs.TranslationRange.Min[:], bs.TranslationRange.Extent[:], 3)
		}
	}
	return offset
}

// WriteAnimatedTrackData emits animated samples frame-major within bone:
// all rotation samples of a bone, then all its translation samples, then
// the next bone. Decode seeks one frame per bone stream this way.
func WriteAnimatedTrackData(streams []BoneStreams, out []byte) int {
	offset := 0
	for i := range streams {
		bs := &streams[i]
		if bs.IsRotationAnimated() {
			offset += copy(out[offset:], bs.PackedRotations)
		}
		if bs.IsTranslationAnimated() {
			offset += copy(out[offset:], bs.PackedTranslations)
		}
	}
	return offset
}
