// Package uniform is the uniformly-sampled compression algorithm: every
// track keeps one sample per frame, redundancy is removed by dropping
// default and constant tracks, range-reducing and quantizing the rest.
package uniform

import (
	"encoding/binary"
	"fmt"

	"github.com/mogren/animpack/bitset"
	"github.com/mogren/animpack/clip"
	"github.com/mogren/animpack/codec"
	"github.com/mogren/animpack/compressed"
	"github.com/mogren/animpack/format"
	"github.com/mogren/animpack/memory"
	"github.com/mogren/animpack/stream"
)

// PreconditionError means the inputs or the settings combination cannot be
// compressed. No artifact is allocated.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "compression precondition failed: " + e.Reason
}

type CompressionSettings struct {
	RotationFormat    format.RotationFormat
	TranslationFormat format.VectorFormat
	RangeReduction    format.RangeReductionFlags
}

func DefaultSettings() CompressionSettings {
	return CompressionSettings{
		RotationFormat:    format.RotationQuat128,
		TranslationFormat: format.Vector396,
		RangeReduction:    format.RangeReductionNone,
	}
}

func (s CompressionSettings) String() string {
	return fmt.Sprintf("%v/%v/%v", s.RotationFormat, s.TranslationFormat, s.RangeReduction)
}

type Algorithm struct {
	Settings CompressionSettings
}

func NewAlgorithm(rotationFormat format.RotationFormat, translationFormat format.VectorFormat, rangeReduction format.RangeReductionFlags) *Algorithm {
	return &Algorithm{Settings: CompressionSettings{
		RotationFormat:    rotationFormat,
		TranslationFormat: translationFormat,
		RangeReduction:    rangeReduction,
	}}
}

func (a *Algorithm) Type() format.AlgorithmType {
	return format.AlgorithmUniformlySampled
}

// CompressClip runs the whole pipeline: streams, rotation conversion,
// constant compaction, optional range reduction, quantization, then one
// exact-size allocation filled region by region and finalized with a CRC.
func (a *Algorithm) CompressClip(allocator memory.Allocator, animClip *clip.AnimationClip, skeleton *clip.RigidSkeleton) (*compressed.Clip, error) {
	numBones := animClip.NumBones()
	numSamples := animClip.NumSamples()

	if numBones == 0 {
		return nil, &PreconditionError{"clip has no bones"}
	}
	if numSamples == 0 {
		return nil, &PreconditionError{"clip has no samples"}
	}
	if a.Settings.TranslationFormat != format.Vector396 &&
		!a.Settings.RangeReduction.Has(format.RangeReductionPerClip|format.RangeReductionTranslations) {
		return nil, &PreconditionError{
			fmt.Sprintf("translation format %v requires per-clip translation range reduction", a.Settings.TranslationFormat)}
	}

	streams, err := stream.ConvertClipToStreams(animClip)
	if err != nil {
		return nil, &PreconditionError{err.Error()}
	}
	stream.ConvertRotationStreams(streams, a.Settings.RotationFormat)
	stream.CompactConstantStreams(streams, stream.DefaultTrackThreshold)

	rangeDataSize := uint32(0)
	if a.Settings.RangeReduction.Has(format.RangeReductionPerClip) {
		stream.NormalizeRotationStreams(streams, a.Settings.RangeReduction, a.Settings.RotationFormat)
		stream.NormalizeTranslationStreams(streams, a.Settings.RangeReduction)
		rangeDataSize = stream.RangeDataSize(streams, a.Settings.RangeReduction, a.Settings.RotationFormat)
	}

	stream.QuantizeRotationStreams(streams, a.Settings.RotationFormat)
	stream.QuantizeTranslationStreams(streams, a.Settings.TranslationFormat)

	constantRotations, constantTranslations, animatedRotations, animatedTranslations := stream.CountAnimatedStreams(streams)

	rotationSize := a.Settings.RotationFormat.PackedSampleSize()
	translationSize := a.Settings.TranslationFormat.PackedSampleSize()

	// Constant translations keep their remaining sample at full precision
	constantDataSize := uint32(rotationSize)*constantRotations +
		uint32(format.Vector396.PackedSampleSize())*constantTranslations
	animatedDataSize := (uint32(rotationSize)*animatedRotations + uint32(translationSize)*animatedTranslations) * numSamples

	bitsetWords := bitset.Size(int(numBones) * 2)
	bitsetBytes := bitsetWords * 4

	constantDataOffset := compressed.FixedSize + bitsetBytes*2
	rangeDataOffset := memory.AlignTo(constantDataOffset+int(constantDataSize), 4)
	animatedDataOffset := memory.AlignTo(rangeDataOffset+int(rangeDataSize), 4)
	bufferSize := animatedDataOffset + int(animatedDataSize)

	buf := allocator.Allocate(bufferSize, memory.DefaultAlignment)
	cc := compressed.Make(buf, a.Type())

	header := compressed.Header{
		NumBones:          numBones,
		RotationFormat:    a.Settings.RotationFormat,
		TranslationFormat: a.Settings.TranslationFormat,
		RangeReduction:    a.Settings.RangeReduction,

		NumSamples: numSamples,
		SampleRate: animClip.SampleRate(),

		NumAnimatedRotationTracks:    animatedRotations,
		NumAnimatedTranslationTracks: animatedTranslations,

		DefaultBitsetOffset: compressed.Offset32(compressed.FixedSize),
		ConstantDataOffset:  compressed.Offset32(constantDataOffset),
		RangeDataOffset:     compressed.Offset32(rangeDataOffset),
		AnimatedDataOffset:  compressed.Offset32(animatedDataOffset),
	}

	defaultWords := make([]uint32, bitsetWords)
	constantWords := make([]uint32, bitsetWords)
	stream.WriteDefaultTrackBitset(streams, defaultWords)
	stream.WriteConstantTrackBitset(streams, constantWords)
	writeBitsetWords(buf[compressed.FixedSize:], defaultWords)
	writeBitsetWords(buf[compressed.FixedSize+bitsetBytes:], constantWords)

	if constantDataSize > 0 {
		stream.WriteConstantTrackData(streams, buf[constantDataOffset:constantDataOffset+int(constantDataSize)])
	} else {
		header.ConstantDataOffset = compressed.InvalidOffset
	}

	if rangeDataSize > 0 {
		stream.WriteRangeData(streams, a.Settings.RangeReduction, a.Settings.RotationFormat,
			buf[rangeDataOffset:rangeDataOffset+int(rangeDataSize)])
	} else {
		header.RangeDataOffset = compressed.InvalidOffset
	}

	if animatedDataSize > 0 {
		stream.WriteAnimatedTrackData(streams, buf[animatedDataOffset:animatedDataOffset+int(animatedDataSize)])
	} else {
		header.AnimatedDataOffset = compressed.InvalidOffset
	}

	header.Write(buf)
	cc.Finalize()

	return cc, nil
}

func writeBitsetWords(out []byte, words []uint32) {
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
}

func init() {
	codec.SetAlgorithm(NewAlgorithm(format.RotationQuat128, format.Vector396, format.RangeReductionNone))
}
