package stream

import "github.com/mogren/animpack/format"

// Range reduction: per-clip, per-bone affine normalization of animated
// tracks into [0, 1]. Constant and default tracks are left alone, their
// data is stored at full precision elsewhere.

func normalizeComponents(min, extent []float32, samples func(s int) []float32, numSamples, numComponents int) {
	for c := 0; c < numComponents; c++ {
		lo := samples(0)[c]
		hi := lo
		for s := 1; s < numSamples; s++ {
			v := samples(s)[c]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		min[c] = lo
		extent[c] = hi - lo
	}

	for s := 0; s < numSamples; s++ {
		sample := samples(s)
		for c := 0; c < numComponents; c++ {
			if extent[c] == 0 {
				// Underflowed extent, the stored min is the value
				sample[c] = 0
			} else {
				sample[c] = (sample[c] - min[c]) / extent[c]
			}
		}
	}
}

// NormalizeRotationStreams range-reduces animated rotation tracks when the
// PerClip and Rotations flags are both present. Drop-w formats normalize
// only the stored triple, never the hemisphere sign slot.
func NormalizeRotationStreams(streams []BoneStreams, flags format.RangeReductionFlags, rotationFormat format.RotationFormat) {
	if !flags.Has(format.RangeReductionPerClip | format.RangeReductionRotations) {
		return
	}
	numComponents := rotationFormat.NumComponents()
	for i := range streams {
		bs := &streams[i]
		if !bs.IsRotationAnimated() {
			continue
		}
		normalizeComponents(bs.RotationRange.Min[:], bs.RotationRange.Extent[:],
			func(s int) []float32 { return bs.Rotations[s][:] },
			len(bs.Rotations), numComponents)
		bs.IsRotationNormalized = true
	}
}

func NormalizeTranslationStreams(streams []BoneStreams, flags format.RangeReductionFlags) {
	if !flags.Has(format.RangeReductionPerClip | format.RangeReductionTranslations) {
		return
	}
	for i := range streams {
		bs := &streams[i]
		if !bs.IsTranslationAnimated() {
			continue
		}
		normalizeComponents(bs.TranslationRange.Min[:], bs.TranslationRange.Extent[:],
			func(s int) []float32 { return bs.Translations[s][:] },
			len(bs.Translations), 3)
		bs.IsTranslationNormalized = true
	}
}

// RotationRangeEntrySize is bytes per animated rotation track in the range
// region: min plus extent at full precision in the storage shape.
func RotationRangeEntrySize(rotationFormat format.RotationFormat) int {
	return rotationFormat.NumComponents() * 4 * 2
}

const TranslationRangeEntrySize = 3 * 4 * 2

// RangeDataSize computes the byte size of the whole range region.
func RangeDataSize(streams []BoneStreams, flags format.RangeReductionFlags, rotationFormat format.RotationFormat) uint32 {
	size := uint32(0)
	rangeRotations := flags.Has(format.RangeReductionPerClip | format.RangeReductionRotations)
	rangeTranslations := flags.Has(format.RangeReductionPerClip | format.RangeReductionTranslations)
	for i := range streams {
		bs := &streams[i]
		if rangeRotations && bs.IsRotationAnimated() {
			size += uint32(RotationRangeEntrySize(rotationFormat))
		}
		if rangeTranslations && bs.IsTranslationAnimated() {
			size += TranslationRangeEntrySize
		}
	}
	return size
}
