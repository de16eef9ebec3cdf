package stream

import (
	"math"

	"github.com/mogren/animpack/format"
)

// ConvertRotationStreams rewrites every rotation sample into the storage
// shape of the target format. Drop-w formats keep only x, y, z: the triple
// is flipped so the reconstructed w comes out non-negative, and slot 3
// records the flip as a hemisphere sign so Quat_48 can restore it.
func ConvertRotationStreams(streams []BoneStreams, rotationFormat format.RotationFormat) {
	for i := range streams {
		bs := &streams[i]
		bs.RotationFormat = rotationFormat
		if !rotationFormat.DropsW() {
			continue
		}
		for s := range bs.Rotations {
			sample := &bs.Rotations[s]
			if sample[3] < 0 {
				sample[0] = -sample[0]
				sample[1] = -sample[1]
				sample[2] = -sample[2]
				sample[3] = -1
			} else {
				sample[3] = 1
			}
		}
	}
}

// reconstructedW gives w for a drop-w storage triple, carrying the
// hemisphere sign from slot 3.
func reconstructedW(sample [4]float32) float32 {
	n := float64(sample[0])*float64(sample[0]) +
		float64(sample[1])*float64(sample[1]) +
		float64(sample[2])*float64(sample[2])
	w := math.Sqrt(math.Max(0, 1.0-n))
	if sample[3] < 0 {
		return float32(-w)
	}
	return float32(w)
}
