package uniform

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogren/animpack/bitset"
	"github.com/mogren/animpack/clip"
	"github.com/mogren/animpack/compressed"
	"github.com/mogren/animpack/format"
	"github.com/mogren/animpack/pose"
	"github.com/mogren/animpack/stream"
)

// The decoder reads the blob in place and allocates nothing per bone. It
// walks the constant, range and animated regions with byte cursors that
// advance in bone order, the same order the writers emitted.

type rangeEntry struct {
	min    [4]float32
	extent [4]float32
}

type decompressContext struct {
	data []byte
	h    compressed.Header

	defaultBitsetBase  int
	constantBitsetBase int

	frame0, frame1 uint32
	alpha          float32

	rotationSize      int
	translationSize   int
	rotationRangeSize int

	rangeRotations    bool
	rangeTranslations bool

	constantBase int
	rangeBase    int
	animatedBase int
}

type trackCursors struct {
	constant int
	rng      int
	animated int
}

func makeDecompressContext(cc *compressed.Clip, sampleTime float32) decompressContext {
	h := cc.Header()
	ctx := decompressContext{
		data: cc.Data(),
		h:    h,

		defaultBitsetBase:  int(h.DefaultBitsetOffset),
		constantBitsetBase: int(h.ConstantBitsetOffset()),

		rotationSize:      h.RotationFormat.PackedSampleSize(),
		translationSize:   h.TranslationFormat.PackedSampleSize(),
		rotationRangeSize: stream.RotationRangeEntrySize(h.RotationFormat),

		rangeRotations:    h.RangeReduction.Has(format.RangeReductionPerClip | format.RangeReductionRotations),
		rangeTranslations: h.RangeReduction.Has(format.RangeReductionPerClip | format.RangeReductionTranslations),
	}

	if h.ConstantDataOffset.IsValid() {
		ctx.constantBase = int(h.ConstantDataOffset)
	}
	if h.RangeDataOffset.IsValid() {
		ctx.rangeBase = int(h.RangeDataOffset)
	}
	if h.AnimatedDataOffset.IsValid() {
		ctx.animatedBase = int(h.AnimatedDataOffset)
	}

	frame0, frame1, alpha := clip.InterpolationKeys(h.NumSamples, h.SampleRate, float64(sampleTime))
	ctx.frame0, ctx.frame1, ctx.alpha = frame0, frame1, float32(alpha)
	return ctx
}

func (ctx *decompressContext) isDefault(bitIndex int) bool {
	return bitset.TestBytes(ctx.data[ctx.defaultBitsetBase:], bitIndex)
}

func (ctx *decompressContext) isConstant(bitIndex int) bool {
	return bitset.TestBytes(ctx.data[ctx.constantBitsetBase:], bitIndex)
}

func readFloat32(data []byte) float32 {
	return math.Float32frombits(uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24)
}

func readRangeEntry(data []byte, numComponents int) rangeEntry {
	var e rangeEntry
	for c := 0; c < numComponents; c++ {
		e.min[c] = readFloat32(data[c*4:])
		e.extent[c] = readFloat32(data[(numComponents+c)*4:])
	}
	return e
}

// reconstructRotation turns unpacked storage components into a usable
// quaternion: undo range reduction or the native [-1, 1] remap, then
// rebuild w and the hemisphere for drop-w formats.
func reconstructRotation(f format.RotationFormat, sample [4]float32, rng *rangeEntry) mgl32.Quat {
	numComponents := f.NumComponents()
	for c := 0; c < numComponents; c++ {
		if rng != nil {
			sample[c] = rng.min[c] + sample[c]*rng.extent[c]
		} else if f.IsQuantized() {
			sample[c] = sample[c]*2 - 1
		}
	}

	if !f.DropsW() {
		return mgl32.Quat{W: sample[3], V: mgl32.Vec3{sample[0], sample[1], sample[2]}}
	}

	n := float64(sample[0])*float64(sample[0]) +
		float64(sample[1])*float64(sample[1]) +
		float64(sample[2])*float64(sample[2])
	w := float32(math.Sqrt(math.Max(0, 1.0-n)))
	q := mgl32.Quat{W: w, V: mgl32.Vec3{sample[0], sample[1], sample[2]}}
	if sample[3] < 0 {
		// Quat_48 kept the hemisphere of the original quaternion
		q = q.Scale(-1)
	}
	return q
}

func reconstructTranslation(f format.VectorFormat, sample [3]float32, rng *rangeEntry) mgl32.Vec3 {
	for c := 0; c < 3; c++ {
		if rng != nil {
			sample[c] = rng.min[c] + sample[c]*rng.extent[c]
		} else if f.IsQuantized() {
			sample[c] = sample[c]*2 - 1
		}
	}
	return mgl32.Vec3{sample[0], sample[1], sample[2]}
}

func (ctx *decompressContext) decodeBone(boneIndex int, cur *trackCursors) (mgl32.Quat, mgl32.Vec3) {
	rotationBit := boneIndex * 2
	translationBit := rotationBit + 1

	rotation := mgl32.QuatIdent()
	switch {
	case ctx.isDefault(rotationBit):
		// identity, nothing stored
	case ctx.isConstant(rotationBit):
		sample := format.UnpackRotation(ctx.h.RotationFormat, ctx.data[ctx.constantBase+cur.constant:])
		cur.constant += ctx.rotationSize
		rotation = reconstructRotation(ctx.h.RotationFormat, sample, nil)
	default:
		var rng *rangeEntry
		if ctx.rangeRotations {
			e := readRangeEntry(ctx.data[ctx.rangeBase+cur.rng:], ctx.h.RotationFormat.NumComponents())
			cur.rng += ctx.rotationRangeSize
			rng = &e
		}
		trackBase := ctx.animatedBase + cur.animated
		cur.animated += int(ctx.h.NumSamples) * ctx.rotationSize

		s0 := format.UnpackRotation(ctx.h.RotationFormat, ctx.data[trackBase+int(ctx.frame0)*ctx.rotationSize:])
		q0 := reconstructRotation(ctx.h.RotationFormat, s0, rng)
		if ctx.alpha == 0 {
			rotation = q0
		} else {
			s1 := format.UnpackRotation(ctx.h.RotationFormat, ctx.data[trackBase+int(ctx.frame1)*ctx.rotationSize:])
			q1 := reconstructRotation(ctx.h.RotationFormat, s1, rng)
			rotation = pose.NlerpShortest(q0, q1, ctx.alpha)
		}
	}

	var translation mgl32.Vec3
	switch {
	case ctx.isDefault(translationBit):
		// zero, nothing stored
	case ctx.isConstant(translationBit):
		sample := format.UnpackVector(format.Vector396, ctx.data[ctx.constantBase+cur.constant:])
		cur.constant += format.Vector396.PackedSampleSize()
		translation = mgl32.Vec3{sample[0], sample[1], sample[2]}
	default:
		var rng *rangeEntry
		if ctx.rangeTranslations {
			e := readRangeEntry(ctx.data[ctx.rangeBase+cur.rng:], 3)
			cur.rng += stream.TranslationRangeEntrySize
			rng = &e
		}
		trackBase := ctx.animatedBase + cur.animated
		cur.animated += int(ctx.h.NumSamples) * ctx.translationSize

		s0 := format.UnpackVector(ctx.h.TranslationFormat, ctx.data[trackBase+int(ctx.frame0)*ctx.translationSize:])
		v0 := reconstructTranslation(ctx.h.TranslationFormat, s0, rng)
		if ctx.alpha == 0 {
			translation = v0
		} else {
			s1 := format.UnpackVector(ctx.h.TranslationFormat, ctx.data[trackBase+int(ctx.frame1)*ctx.translationSize:])
			v1 := reconstructTranslation(ctx.h.TranslationFormat, s1, rng)
			translation = pose.Vec3Lerp32(v0, v1, ctx.alpha)
		}
	}

	return rotation, translation
}

// cursorsForBone skips the cursors over every track stored before the
// requested bone. The frame-major-within-bone layout makes the seek a pure
// bitset walk, no sample data is touched.
func (ctx *decompressContext) cursorsForBone(boneIndex int) trackCursors {
	var cur trackCursors
	for i := 0; i < boneIndex; i++ {
		rotationBit := i * 2
		translationBit := rotationBit + 1

		switch {
		case ctx.isDefault(rotationBit):
		case ctx.isConstant(rotationBit):
			cur.constant += ctx.rotationSize
		default:
			if ctx.rangeRotations {
				cur.rng += ctx.rotationRangeSize
			}
			cur.animated += int(ctx.h.NumSamples) * ctx.rotationSize
		}

		switch {
		case ctx.isDefault(translationBit):
		case ctx.isConstant(translationBit):
			cur.constant += format.Vector396.PackedSampleSize()
		default:
			if ctx.rangeTranslations {
				cur.rng += stream.TranslationRangeEntrySize
			}
			cur.animated += int(ctx.h.NumSamples) * ctx.translationSize
		}
	}
	return cur
}

// DecompressPose rebuilds the whole pose at sampleTime and hands each bone
// to the writer. A malformed blob is rejected before anything is written.
func (a *Algorithm) DecompressPose(cc *compressed.Clip, sampleTime float32, writer pose.Writer, numBones int) error {
	if err := compressed.Validate(cc.Data(), true); err != nil {
		return err
	}
	h := cc.Header()
	if h.NumBones != uint16(numBones) {
		return &PreconditionError{fmt.Sprintf("pose buffer holds %d bones, clip has %d", numBones, h.NumBones)}
	}

	ctx := makeDecompressContext(cc, sampleTime)
	var cur trackCursors
	for boneIndex := 0; boneIndex < numBones; boneIndex++ {
		rotation, translation := ctx.decodeBone(boneIndex, &cur)
		writer.WriteBoneRotation(boneIndex, rotation)
		writer.WriteBoneTranslation(boneIndex, translation)
	}
	return nil
}

// DecompressBone seeks straight to one bone and decodes only its tracks.
func (a *Algorithm) DecompressBone(cc *compressed.Clip, sampleTime float32, boneIndex int) (mgl32.Quat, mgl32.Vec3, error) {
	if err := compressed.Validate(cc.Data(), true); err != nil {
		return mgl32.QuatIdent(), mgl32.Vec3{}, err
	}
	h := cc.Header()
	if boneIndex < 0 || boneIndex >= int(h.NumBones) {
		return mgl32.QuatIdent(), mgl32.Vec3{}, &PreconditionError{fmt.Sprintf("bone index %d out of range, clip has %d bones", boneIndex, h.NumBones)}
	}

	ctx := makeDecompressContext(cc, sampleTime)
	cur := ctx.cursorsForBone(boneIndex)
	rotation, translation := ctx.decodeBone(boneIndex, &cur)
	return rotation, translation, nil
}
