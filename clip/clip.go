package clip

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogren/animpack/pose"
)

// BoneTracks is the raw time series for one bone: numSamples rotations and
// numSamples translations, uniformly spaced.
type BoneTracks struct {
	Rotations    []mgl64.Quat
	Translations []mgl64.Vec3
}

// AnimationClip is N bones by S uniformly-spaced samples at a fixed rate.
// It keeps a bind reference to the skeleton it was authored against.
type AnimationClip struct {
	skeleton       *RigidSkeleton
	name           string
	numSamples     uint32
	sampleRate     uint32
	errorThreshold float64
	bones          []BoneTracks
}

func NewAnimationClip(skeleton *RigidSkeleton, numSamples, sampleRate uint32, name string) (*AnimationClip, error) {
	if numSamples == 0 {
		return nil, errors.Errorf("Clip %q has no samples", name)
	}
	if sampleRate == 0 {
		return nil, errors.Errorf("Clip %q has zero sample rate", name)
	}

	c := &AnimationClip{
		skeleton:   skeleton,
		name:       name,
		numSamples: numSamples,
		sampleRate: sampleRate,
		bones:      make([]BoneTracks, skeleton.NumBones()),
	}
	for i := range c.bones {
		bt := &c.bones[i]
		bt.Rotations = make([]mgl64.Quat, numSamples)
		bt.Translations = make([]mgl64.Vec3, numSamples)
		for s := range bt.Rotations {
			bt.Rotations[s] = mgl64.QuatIdent()
		}
	}
	return c, nil
}

func (c *AnimationClip) Name() string                { return c.name }
func (c *AnimationClip) Skeleton() *RigidSkeleton    { return c.skeleton }
func (c *AnimationClip) NumBones() uint16            { return c.skeleton.NumBones() }
func (c *AnimationClip) NumSamples() uint32          { return c.numSamples }
func (c *AnimationClip) SampleRate() uint32          { return c.sampleRate }
func (c *AnimationClip) ErrorThreshold() float64     { return c.errorThreshold }
func (c *AnimationClip) SetErrorThreshold(e float64) { c.errorThreshold = e }

func (c *AnimationClip) Duration() float64 {
	return float64(c.numSamples-1) / float64(c.sampleRate)
}

// TotalSize is the raw reference size in bytes: every track stored as f32
// components without any compression. Used for compression-ratio stats.
func (c *AnimationClip) TotalSize() uint32 {
	return uint32(len(c.bones)) * c.numSamples * (4 + 3) * 4
}

func (c *AnimationClip) SetRotationSample(boneIndex uint16, sampleIndex uint32, rotation mgl64.Quat) {
	c.bones[boneIndex].Rotations[sampleIndex] = rotation
}

func (c *AnimationClip) SetTranslationSample(boneIndex uint16, sampleIndex uint32, translation mgl64.Vec3) {
	c.bones[boneIndex].Translations[sampleIndex] = translation
}

func (c *AnimationClip) RotationSample(boneIndex uint16, sampleIndex uint32) mgl64.Quat {
	return c.bones[boneIndex].Rotations[sampleIndex]
}

func (c *AnimationClip) TranslationSample(boneIndex uint16, sampleIndex uint32) mgl64.Vec3 {
	return c.bones[boneIndex].Translations[sampleIndex]
}

func (c *AnimationClip) Tracks(boneIndex uint16) *BoneTracks {
	return &c.bones[boneIndex]
}

// InterpolationKeys clamps sampleTime into the clip and returns the two
// frames bracketing it plus the blend factor. With a single sample both
// frames are 0 and alpha is 0.
func InterpolationKeys(numSamples, sampleRate uint32, sampleTime float64) (uint32, uint32, float64) {
	duration := float64(numSamples-1) / float64(sampleRate)
	t := math.Min(math.Max(sampleTime, 0), duration)

	frame := t * float64(sampleRate)
	frame0 := uint32(math.Floor(frame))
	if frame0 >= numSamples-1 {
		return numSamples - 1, numSamples - 1, 0
	}
	return frame0, frame0 + 1, frame - float64(frame0)
}

// SamplePose evaluates the raw clip at sampleTime and hands every bone to
// the writer. Plain nlerp between the bracketing frames, same blending the
// decoder applies to compressed data.
func (c *AnimationClip) SamplePose(sampleTime float64, w pose.RawWriter) {
	frame0, frame1, alpha := InterpolationKeys(c.numSamples, c.sampleRate, sampleTime)

	for i := range c.bones {
		bt := &c.bones[i]
		if alpha == 0 {
			w.WriteBoneRotation(i, bt.Rotations[frame0])
			w.WriteBoneTranslation(i, bt.Translations[frame0])
			continue
		}
		w.WriteBoneRotation(i, pose.NlerpShortest64(bt.Rotations[frame0], bt.Rotations[frame1], alpha))
		w.WriteBoneTranslation(i, pose.Vec3Lerp64(bt.Translations[frame0], bt.Translations[frame1], alpha))
	}
}
