// Package pose holds the transform value types shared by the compressor and
// the decoder. Compression and error evaluation run on the f64 shapes,
// decoding runs on the f32 shapes.
package pose

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

type Transform32 struct {
	Rotation    mgl32.Quat
	Translation mgl32.Vec3
}

type Transform64 struct {
	Rotation    mgl64.Quat
	Translation mgl64.Vec3
}

func IdentityTransform32() Transform32 {
	return Transform32{Rotation: mgl32.QuatIdent()}
}

func IdentityTransform64() Transform64 {
	return Transform64{Rotation: mgl64.QuatIdent()}
}

func QuatCast32(q mgl64.Quat) mgl32.Quat {
	return mgl32.Quat{W: float32(q.W), V: mgl32.Vec3{float32(q.V[0]), float32(q.V[1]), float32(q.V[2])}}
}

func QuatCast64(q mgl32.Quat) mgl64.Quat {
	return mgl64.Quat{W: float64(q.W), V: mgl64.Vec3{float64(q.V[0]), float64(q.V[1]), float64(q.V[2])}}
}

func Vec3Cast32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

func Vec3Cast64(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

func (t Transform64) Cast32() Transform32 {
	return Transform32{Rotation: QuatCast32(t.Rotation), Translation: Vec3Cast32(t.Translation)}
}

func (t Transform32) Cast64() Transform64 {
	return Transform64{Rotation: QuatCast64(t.Rotation), Translation: Vec3Cast64(t.Translation)}
}

// NlerpShortest blends through the closest hemisphere and renormalizes.
func NlerpShortest(q0, q1 mgl32.Quat, alpha float32) mgl32.Quat {
	if q0.Dot(q1) < 0 {
		q1 = q1.Scale(-1)
	}
	return mgl32.QuatNlerp(q0, q1, alpha)
}

func NlerpShortest64(q0, q1 mgl64.Quat, alpha float64) mgl64.Quat {
	if q0.Dot(q1) < 0 {
		q1 = q1.Scale(-1)
	}
	return mgl64.QuatNlerp(q0, q1, alpha)
}

func Vec3Lerp32(a, b mgl32.Vec3, alpha float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(alpha))
}

func Vec3Lerp64(a, b mgl64.Vec3, alpha float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(alpha))
}

// Writer receives one decompressed pose, one bone at a time. Callback order
// over bones is unspecified.
type Writer interface {
	WriteBoneRotation(boneIndex int, rotation mgl32.Quat)
	WriteBoneTranslation(boneIndex int, translation mgl32.Vec3)
}

// RawWriter is the f64 counterpart used when sampling a raw clip.
type RawWriter interface {
	WriteBoneRotation(boneIndex int, rotation mgl64.Quat)
	WriteBoneTranslation(boneIndex int, translation mgl64.Vec3)
}

// Buffer collects a pose into a transform slice.
type Buffer struct {
	Transforms []Transform32
}

func NewBuffer(numBones int) *Buffer {
	b := &Buffer{Transforms: make([]Transform32, numBones)}
	for i := range b.Transforms {
		b.Transforms[i] = IdentityTransform32()
	}
	return b
}

func (b *Buffer) WriteBoneRotation(boneIndex int, rotation mgl32.Quat) {
	b.Transforms[boneIndex].Rotation = rotation
}

func (b *Buffer) WriteBoneTranslation(boneIndex int, translation mgl32.Vec3) {
	b.Transforms[boneIndex].Translation = translation
}

type RawBuffer struct {
	Transforms []Transform64
}

func NewRawBuffer(numBones int) *RawBuffer {
	b := &RawBuffer{Transforms: make([]Transform64, numBones)}
	for i := range b.Transforms {
		b.Transforms[i] = IdentityTransform64()
	}
	return b
}

func (b *RawBuffer) WriteBoneRotation(boneIndex int, rotation mgl64.Quat) {
	b.Transforms[boneIndex].Rotation = rotation
}

func (b *RawBuffer) WriteBoneTranslation(boneIndex int, translation mgl64.Vec3) {
	b.Transforms[boneIndex].Translation = translation
}
