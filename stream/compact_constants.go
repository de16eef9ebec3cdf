package stream

import "github.com/mogren/animpack/format"

// DefaultTrackThreshold is the tolerance used for default and constant
// track detection.
const DefaultTrackThreshold = 0.00001

// rotationDotIdentity is the quaternion dot product against identity,
// which is just w in whatever hemisphere the sample sits.
func rotationDotIdentity(f format.RotationFormat, sample [4]float32) float32 {
	if f.DropsW() {
		return reconstructedW(sample)
	}
	return sample[3]
}

func isRotationDefault(f format.RotationFormat, samples [][4]float32, threshold float32) bool {
	for _, s := range samples {
		if rotationDotIdentity(f, s) < 1-threshold {
			return false
		}
	}
	return true
}

func isRotationConstant(f format.RotationFormat, samples [][4]float32, threshold float32) bool {
	first := samples[0]
	numComponents := f.NumComponents()
	for _, s := range samples[1:] {
		for c := 0; c < numComponents; c++ {
			if abs32(s[c]-first[c]) >= threshold {
				return false
			}
		}
		if f.DropsW() && s[3] != first[3] {
			return false
		}
	}
	return true
}

func isTranslationDefault(samples [][3]float32, threshold float32) bool {
	for _, s := range samples {
		if abs32(s[0]) >= threshold || abs32(s[1]) >= threshold || abs32(s[2]) >= threshold {
			return false
		}
	}
	return true
}

func isTranslationConstant(samples [][3]float32, threshold float32) bool {
	first := samples[0]
	for _, s := range samples[1:] {
		if abs32(s[0]-first[0]) >= threshold ||
			abs32(s[1]-first[1]) >= threshold ||
			abs32(s[2]-first[2]) >= threshold {
			return false
		}
	}
	return true
}

// CompactConstantStreams classifies every track as default, constant or
// animated. Default wins over constant. Constant tracks are truncated to
// their single representative sample, default tracks drop all samples.
func CompactConstantStreams(streams []BoneStreams, threshold float64) {
	t := float32(threshold)
	for i := range streams {
		bs := &streams[i]

		if isRotationDefault(bs.RotationFormat, bs.Rotations, t) {
			bs.IsRotationDefault = true
			bs.Rotations = nil
		} else if isRotationConstant(bs.RotationFormat, bs.Rotations, t) {
			bs.IsRotationConstant = true
			bs.Rotations = bs.Rotations[:1]
		}

		if isTranslationDefault(bs.Translations, t) {
			bs.IsTranslationDefault = true
			bs.Translations = nil
		} else if isTranslationConstant(bs.Translations, t) {
			bs.IsTranslationConstant = true
			bs.Translations = bs.Translations[:1]
		}
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
