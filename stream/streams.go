// Package stream holds the columnar per-bone representation the compressor
// works on, and the reduction passes that run over it: rotation conversion,
// constant compaction, per-clip range reduction and quantization. The passes
// form a strict linear sequence; each one observes the full output of its
// predecessor.
package stream

import (
	"github.com/pkg/errors"

	"github.com/mogren/animpack/clip"
	"github.com/mogren/animpack/format"
)

// TrackRange is a per-bone (min, extent) pair from range reduction. Only the
// first NumComponents slots of the active format are meaningful.
type TrackRange struct {
	Min    [4]float32
	Extent [4]float32
}

// BoneStreams is the working state for one bone. Rotation samples keep four
// slots through the whole pipeline: for drop-w formats slot 3 carries the
// hemisphere sign (+1/-1) after conversion instead of w.
type BoneStreams struct {
	Rotations    [][4]float32
	Translations [][3]float32

	RotationFormat format.RotationFormat

	IsRotationDefault     bool
	IsRotationConstant    bool
	IsTranslationDefault  bool
	IsTranslationConstant bool

	IsRotationNormalized    bool
	IsTranslationNormalized bool

	RotationRange    TrackRange
	TranslationRange TrackRange

	// Filled by the quantize pass: packed samples back to back.
	PackedRotations    []byte
	PackedTranslations []byte

	NumSamples uint32
	SampleRate uint32
}

func (b *BoneStreams) IsRotationAnimated() bool {
	return !b.IsRotationDefault && !b.IsRotationConstant
}

func (b *BoneStreams) IsTranslationAnimated() bool {
	return !b.IsTranslationDefault && !b.IsTranslationConstant
}

// ConvertClipToStreams builds the uniform columnar representation every
// later stage runs over. Quaternions become 4 x f32, translations 3 x f32.
func ConvertClipToStreams(c *clip.AnimationClip) ([]BoneStreams, error) {
	numBones := c.NumBones()
	numSamples := c.NumSamples()
	if numBones == 0 {
		return nil, errors.Errorf("Clip has no bones")
	}
	if numSamples == 0 {
		return nil, errors.Errorf("Clip has no samples")
	}

	streams := make([]BoneStreams, numBones)
	for i := range streams {
		bs := &streams[i]
		bs.NumSamples = numSamples
		bs.SampleRate = c.SampleRate()
		bs.RotationFormat = format.RotationQuat128
		bs.Rotations = make([][4]float32, numSamples)
		bs.Translations = make([][3]float32, numSamples)

		tracks := c.Tracks(uint16(i))
		for s := uint32(0); s < numSamples; s++ {
			q := tracks.Rotations[s]
			bs.Rotations[s] = [4]float32{float32(q.V[0]), float32(q.V[1]), float32(q.V[2]), float32(q.W)}
			t := tracks.Translations[s]
			bs.Translations[s] = [3]float32{float32(t[0]), float32(t[1]), float32(t[2])}
		}
	}
	return streams, nil
}

// CountAnimatedStreams tallies track classifications across all bones.
func CountAnimatedStreams(streams []BoneStreams) (constantRotations, constantTranslations, animatedRotations, animatedTranslations uint32) {
	for i := range streams {
		bs := &streams[i]
		if bs.IsRotationConstant {
			constantRotations++
		} else if bs.IsRotationAnimated() {
			animatedRotations++
		}
		if bs.IsTranslationConstant {
			constantTranslations++
		} else if bs.IsTranslationAnimated() {
			animatedTranslations++
		}
	}
	return
}
