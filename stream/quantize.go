package stream

import "github.com/mogren/animpack/format"

// Quantization packs every remaining sample into the byte shape that goes
// in the artifact. Quantized formats consume components in [0, 1]: either
// the range-reduced value, or the native [-1, 1] component remapped here.

func mapToUnit(v float32) float32 {
	return v*0.5 + 0.5
}

func packRotationSample(f format.RotationFormat, sample [4]float32, normalized bool, out []byte) {
	if f.IsQuantized() && !normalized {
		sample[0] = mapToUnit(sample[0])
		sample[1] = mapToUnit(sample[1])
		sample[2] = mapToUnit(sample[2])
	}
	format.PackRotation(f, sample, out)
}

func packTranslationSample(f format.VectorFormat, sample [3]float32, normalized bool, out []byte) {
	if f.IsQuantized() && !normalized {
		sample[0] = mapToUnit(sample[0])
		sample[1] = mapToUnit(sample[1])
		sample[2] = mapToUnit(sample[2])
	}
	format.PackVector(f, sample, out)
}

// QuantizeRotationStreams packs constant tracks at the chosen rotation
// width (single sample, never range-reduced) and animated tracks sample by
// sample. Default tracks contribute nothing.
func QuantizeRotationStreams(streams []BoneStreams, rotationFormat format.RotationFormat) {
	sampleSize := rotationFormat.PackedSampleSize()
	for i := range streams {
		bs := &streams[i]
		if bs.IsRotationDefault {
			continue
		}
		packed := make([]byte, len(bs.Rotations)*sampleSize)
		for s := range bs.Rotations {
			packRotationSample(rotationFormat, bs.Rotations[s], bs.IsRotationNormalized, packed[s*sampleSize:])
		}
		bs.PackedRotations = packed
	}
}

// QuantizeTranslationStreams packs constant tracks as Vector3_96 (full
// width) and animated tracks at the chosen translation format.
func QuantizeTranslationStreams(streams []BoneStreams, translationFormat format.VectorFormat) {
	for i := range streams {
		bs := &streams[i]
		if bs.IsTranslationDefault {
			continue
		}
		trackFormat := translationFormat
		if bs.IsTranslationConstant {
			trackFormat = format.Vector396
		}
		sampleSize := trackFormat.PackedSampleSize()
		packed := make([]byte, len(bs.Translations)*sampleSize)
		for s := range bs.Translations {
			packTranslationSample(trackFormat, bs.Translations[s], bs.IsTranslationNormalized, packed[s*sampleSize:])
		}
		bs.PackedTranslations = packed
	}
}
