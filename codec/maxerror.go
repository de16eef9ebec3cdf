package codec

import (
	"math"

	"github.com/mogren/animpack/clip"
	"github.com/mogren/animpack/compressed"
	"github.com/mogren/animpack/pose"
)

// FindMaxError sweeps the whole clip one sample period at a time, plus the
// final time, and returns the worst skeleton-propagated error between the
// raw pose and the decompressed pose.
func FindMaxError(a Algorithm, cc *compressed.Clip, animClip *clip.AnimationClip, skeleton *clip.RigidSkeleton) (float64, error) {
	numBones := int(animClip.NumBones())
	rawWriter := pose.NewRawBuffer(numBones)
	lossyWriter := pose.NewBuffer(numBones)

	maxError := -1.0
	duration := animClip.Duration()
	sampleIncrement := 1.0 / float64(animClip.SampleRate())

	evaluate := func(sampleTime float64) error {
		animClip.SamplePose(sampleTime, rawWriter)
		if err := a.DecompressPose(cc, float32(sampleTime), lossyWriter, numBones); err != nil {
			return err
		}
		err := clip.CalculateSkeletonError(skeleton, rawWriter.Transforms, lossyWriter.Transforms)
		maxError = math.Max(maxError, err)
		return nil
	}

	for sampleTime := 0.0; sampleTime < duration; sampleTime += sampleIncrement {
		if err := evaluate(sampleTime); err != nil {
			return 0, err
		}
	}
	// The loop step can miss the final time exactly
	if err := evaluate(duration); err != nil {
		return 0, err
	}

	return maxError, nil
}
