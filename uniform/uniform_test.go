package uniform

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogren/animpack/bitset"
	"github.com/mogren/animpack/clip"
	"github.com/mogren/animpack/codec"
	"github.com/mogren/animpack/compressed"
	"github.com/mogren/animpack/format"
	"github.com/mogren/animpack/memory"
	"github.com/mogren/animpack/pose"
	"github.com/mogren/animpack/utils"
)

var testAllocator = memory.HeapAllocator{}

func chainSkeleton(t *testing.T, numBones int) *clip.RigidSkeleton {
	t.Helper()
	bones := make([]clip.Bone, numBones)
	for i := range bones {
		parent := clip.InvalidBoneIndex
		if i > 0 {
			parent = uint16(i - 1)
		}
		bones[i] = clip.Bone{Name: "joint", Parent: parent, VertexDistance: 1}
	}
	s, err := clip.NewRigidSkeleton(bones)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func emptyClip(t *testing.T, skeleton *clip.RigidSkeleton, numSamples, sampleRate uint32) *clip.AnimationClip {
	t.Helper()
	c, err := clip.NewAnimationClip(skeleton, numSamples, sampleRate, "test")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// mixedClip has one default bone, one constant bone and the rest animated.
func mixedClip(t *testing.T, numBones int, numSamples uint32) (*clip.RigidSkeleton, *clip.AnimationClip) {
	t.Helper()
	skeleton := chainSkeleton(t, numBones)
	c := emptyClip(t, skeleton, numSamples, 30)

	if numBones > 1 {
		constQ := mgl64.QuatRotate(0.7, mgl64.Vec3{0, 0, 1})
		for s := uint32(0); s < numSamples; s++ {
			c.SetRotationSample(1, s, constQ)
			c.SetTranslationSample(1, s, mgl64.Vec3{1, 2, 3})
		}
	}
	for b := 2; b < numBones; b++ {
		for s := uint32(0); s < numSamples; s++ {
			angle := float64(s) / float64(numSamples) * 1.5
			c.SetRotationSample(uint16(b), s, utils.EulerToQuat(mgl64.Vec3{angle, angle * 0.3, 0}))
			c.SetTranslationSample(uint16(b), s, mgl64.Vec3{float64(s) * 0.1, float64(b), -2})
		}
	}
	return skeleton, c
}

func compress(t *testing.T, c *clip.AnimationClip, skeleton *clip.RigidSkeleton, settings CompressionSettings) *compressed.Clip {
	t.Helper()
	a := NewAlgorithm(settings.RotationFormat, settings.TranslationFormat, settings.RangeReduction)
	cc, err := a.CompressClip(testAllocator, c, skeleton)
	if err != nil {
		t.Fatalf("CompressClip(%v): %v", settings, err)
	}
	if err := compressed.Validate(cc.Data(), true); err != nil {
		t.Fatalf("artifact does not validate: %v", err)
	}
	return cc
}

// Scenario: single bone, two samples, everything default.
func TestCompressAllDefaultTracks(t *testing.T) {
	skeleton := chainSkeleton(t, 1)
	c := emptyClip(t, skeleton, 2, 30)

	cc := compress(t, c, skeleton, DefaultSettings())
	h := cc.Header()

	if h.BitsetSize() != 1 {
		t.Fatalf("bitset size = %d words; expected 1", h.BitsetSize())
	}
	defaults := cc.Bitset(h.DefaultBitsetOffset, 1)
	constants := cc.Bitset(h.ConstantBitsetOffset(), 1)
	if !bitset.Test(defaults, 0) || !bitset.Test(defaults, 1) {
		t.Errorf("default bits = %08x; expected both set", defaults[0])
	}
	if constants[0] != 0 {
		t.Errorf("constant bits = %08x; expected none", constants[0])
	}

	if h.ConstantDataOffset.IsValid() || h.RangeDataOffset.IsValid() || h.AnimatedDataOffset.IsValid() {
		t.Errorf("empty regions must use the sentinel offset: %+v", h)
	}

	// Nothing stored beyond the fixed part and the two bitset words
	if cc.Size() != compressed.FixedSize+8 {
		t.Errorf("artifact size = %d; expected %d", cc.Size(), compressed.FixedSize+8)
	}

	// Decode comes back as identity
	writer := pose.NewBuffer(1)
	a, _ := codec.ForClip(cc)
	if err := a.DecompressPose(cc, 0, writer, 1); err != nil {
		t.Fatal(err)
	}
	if writer.Transforms[0] != pose.IdentityTransform32() {
		t.Errorf("default pose = %+v", writer.Transforms[0])
	}
}

// Scenario: single bone with constant non-identity tracks.
func TestCompressConstantTracks(t *testing.T) {
	skeleton := chainSkeleton(t, 1)
	c := emptyClip(t, skeleton, 2, 30)
	constQ := mgl64.Quat{W: 0.7071, V: mgl64.Vec3{0.7071, 0, 0}}
	for s := uint32(0); s < 2; s++ {
		c.SetRotationSample(0, s, constQ)
		c.SetTranslationSample(0, s, mgl64.Vec3{1, 2, 3})
	}

	cc := compress(t, c, skeleton, DefaultSettings())
	h := cc.Header()

	defaults := cc.Bitset(h.DefaultBitsetOffset, 1)
	constants := cc.Bitset(h.ConstantBitsetOffset(), 1)
	if bitset.Test(defaults, 0) || bitset.Test(defaults, 1) {
		t.Errorf("no default bits expected, got %08x", defaults[0])
	}
	if !bitset.Test(constants, 0) || !bitset.Test(constants, 1) {
		t.Errorf("both constant bits expected, got %08x", constants[0])
	}

	if !h.ConstantDataOffset.IsValid() {
		t.Fatalf("constant region missing")
	}
	if h.AnimatedDataOffset.IsValid() || h.RangeDataOffset.IsValid() {
		t.Errorf("animated/range regions must be sentinels")
	}
	// 16 bytes Quat_128 rotation + 12 bytes Vector3_96 translation
	expectedSize := uint32(compressed.FixedSize + 8 + 16 + 12)
	if cc.Size() != expectedSize {
		t.Errorf("artifact size = %d; expected %d", cc.Size(), expectedSize)
	}

	writer := pose.NewBuffer(1)
	a, _ := codec.ForClip(cc)
	if err := a.DecompressPose(cc, 0.016, writer, 1); err != nil {
		t.Fatal(err)
	}
	got := writer.Transforms[0]
	if math.Abs(float64(got.Rotation.W)-0.7071) > 1e-6 || math.Abs(float64(got.Rotation.V[0])-0.7071) > 1e-6 {
		t.Errorf("constant rotation = %+v", got.Rotation)
	}
	if got.Translation != (pose.Vec3Cast32(mgl64.Vec3{1, 2, 3})) {
		t.Errorf("constant translation = %+v", got.Translation)
	}
}

// Scenario: two bones, three samples, linear translation under range
// reduction with Vector3_48.
func TestCompressRangeReducedTranslation(t *testing.T) {
	skeleton := chainSkeleton(t, 2)
	c := emptyClip(t, skeleton, 3, 30)
	for s := uint32(0); s < 3; s++ {
		c.SetTranslationSample(1, s, mgl64.Vec3{float64(s), 0, 0})
	}

	settings := CompressionSettings{
		RotationFormat:    format.RotationQuat128,
		TranslationFormat: format.Vector348,
		RangeReduction:    format.RangeReductionPerClip | format.RangeReductionTranslations,
	}
	cc := compress(t, c, skeleton, settings)
	h := cc.Header()

	if !h.RangeDataOffset.IsValid() {
		t.Fatalf("range region missing")
	}
	if h.NumAnimatedTranslationTracks != 1 {
		t.Fatalf("animated translation tracks = %d", h.NumAnimatedTranslationTracks)
	}

	// Stored range for bone 1: min (0,0,0), extent (2,0,0)
	rangeData := cc.Data()[h.RangeDataOffset:]
	min := format.UnpackVector(format.Vector396, rangeData[0:12])
	extent := format.UnpackVector(format.Vector396, rangeData[12:24])
	if min != [3]float32{0, 0, 0} {
		t.Errorf("range min = %v", min)
	}
	if extent != [3]float32{2, 0, 0} {
		t.Errorf("range extent = %v", extent)
	}

	// Reconstruction bound: 2^-16 * extent in x
	a, _ := codec.ForClip(cc)
	bound := 2.0 / 65535.0
	for s := uint32(0); s < 3; s++ {
		sampleTime := float32(s) / 30.0
		_, translation, err := a.DecompressBone(cc, sampleTime, 1)
		if err != nil {
			t.Fatal(err)
		}
		if diff := math.Abs(float64(translation[0]) - float64(s)); diff > bound {
			t.Errorf("sample %d: x = %v, off by %v > %v", s, translation[0], diff, bound)
		}
	}
}

// Scenario: sampling past the clip end clamps to the final pose.
func TestDecompressClampsOutsideClip(t *testing.T) {
	skeleton, c := mixedClip(t, 4, 8)
	cc := compress(t, c, skeleton, DefaultSettings())

	a, _ := codec.ForClip(cc)
	duration := float32(c.Duration())

	atEnd := pose.NewBuffer(4)
	past := pose.NewBuffer(4)
	if err := a.DecompressPose(cc, duration, atEnd, 4); err != nil {
		t.Fatal(err)
	}
	if err := a.DecompressPose(cc, duration+0.1, past, 4); err != nil {
		t.Fatal(err)
	}
	for i := range atEnd.Transforms {
		if atEnd.Transforms[i] != past.Transforms[i] {
			t.Errorf("bone %d: clamped pose differs: %+v vs %+v", i, atEnd.Transforms[i], past.Transforms[i])
		}
	}
}

// Scenario: payload corruption is rejected as a CRC integrity failure
// before anything is written.
func TestDecompressRejectsCorruptPayload(t *testing.T) {
	skeleton, c := mixedClip(t, 6, 16)
	cc := compress(t, c, skeleton, DefaultSettings())
	if cc.Size() <= 100 {
		t.Fatalf("artifact too small for the corruption probe: %d", cc.Size())
	}

	data := append([]byte{}, cc.Data()...)
	data[100] ^= 0xff

	_, err := compressed.FromBuffer(data)
	ie, ok := err.(*compressed.IntegrityError)
	if !ok {
		t.Fatalf("expected IntegrityError, got %T: %v", err, err)
	}
	if ie.Field != "crc" {
		t.Errorf("integrity field = %q; expected crc", ie.Field)
	}
}

// Scenario: quantized translations without range reduction are rejected
// up front, no artifact allocated.
func TestCompressRejectsIncompatibleSettings(t *testing.T) {
	skeleton, c := mixedClip(t, 4, 8)

	a := NewAlgorithm(format.RotationQuat128, format.Vector348, format.RangeReductionNone)
	cc, err := a.CompressClip(testAllocator, c, skeleton)
	if cc != nil {
		t.Fatalf("artifact produced despite bad settings")
	}
	if _, ok := err.(*PreconditionError); !ok {
		t.Fatalf("expected PreconditionError, got %T: %v", err, err)
	}
}

// Property: the reference formats round trip bit-exactly at every sample.
func TestRoundTripReferenceFormats(t *testing.T) {
	// Rate 32 keeps every sample time exactly representable, so decode
	// lands on frames with alpha == 0
	skeleton := chainSkeleton(t, 3)
	c := emptyClip(t, skeleton, 4, 32)
	for b := uint16(0); b < 3; b++ {
		for s := uint32(0); s < 4; s++ {
			angle := float64(b)*0.31 + float64(s)*0.17
			c.SetRotationSample(b, s, utils.EulerToQuat(mgl64.Vec3{angle, -angle, angle * 0.5}))
			c.SetTranslationSample(b, s, mgl64.Vec3{float64(b), float64(s) * 0.25, -1.5})
		}
	}

	cc := compress(t, c, skeleton, DefaultSettings())
	a, _ := codec.ForClip(cc)

	writer := pose.NewBuffer(3)
	for s := uint32(0); s < 4; s++ {
		sampleTime := float32(s) / 32.0
		if err := a.DecompressPose(cc, sampleTime, writer, 3); err != nil {
			t.Fatal(err)
		}
		for b := uint16(0); b < 3; b++ {
			wantQ := pose.QuatCast32(c.RotationSample(b, s))
			wantT := pose.Vec3Cast32(c.TranslationSample(b, s))
			got := writer.Transforms[b]
			if got.Rotation != wantQ {
				t.Errorf("sample %d bone %d rotation %v != %v", s, b, got.Rotation, wantQ)
			}
			if got.Translation != wantT {
				t.Errorf("sample %d bone %d translation %v != %v", s, b, got.Translation, wantT)
			}
		}
	}
}

// Property: single-bone decompression matches the pose decompression
// bit-exactly, whatever the configuration.
func TestSeekEquivalence(t *testing.T) {
	skeleton, c := mixedClip(t, 5, 12)

	configs := []CompressionSettings{
		DefaultSettings(),
		{format.RotationQuat96, format.Vector396, format.RangeReductionNone},
		{format.RotationQuat48, format.Vector348, format.RangeReductionPerClip | format.RangeReductionRotations | format.RangeReductionTranslations},
		{format.RotationQuat32, format.Vector332, format.RangeReductionPerClip | format.RangeReductionTranslations},
	}
	for _, settings := range configs {
		cc := compress(t, c, skeleton, settings)
		a, _ := codec.ForClip(cc)

		for _, sampleTime := range []float32{0, 0.123, float32(c.Duration())} {
			writer := pose.NewBuffer(5)
			if err := a.DecompressPose(cc, sampleTime, writer, 5); err != nil {
				t.Fatal(err)
			}
			for b := 0; b < 5; b++ {
				q, v, err := a.DecompressBone(cc, sampleTime, b)
				if err != nil {
					t.Fatal(err)
				}
				if q != writer.Transforms[b].Rotation || v != writer.Transforms[b].Translation {
					t.Errorf("%v t=%v bone %d: seek (%v,%v) != pose (%v,%v)",
						settings, sampleTime, b, q, v, writer.Transforms[b].Rotation, writer.Transforms[b].Translation)
				}
			}
		}
	}
}

// Property: narrower formats never beat wider ones on skeleton error.
func TestMonotoneErrorWithWidth(t *testing.T) {
	// 25 samples: with 24 the animated x translations span 23 equal steps,
	// and since 2047 = 23*89 the 11-bit Vector3_32 grid would hit every
	// sample exactly
	skeleton, c := mixedClip(t, 6, 25)

	errorFor := func(settings CompressionSettings) float64 {
		a := NewAlgorithm(settings.RotationFormat, settings.TranslationFormat, settings.RangeReduction)
		cc, err := a.CompressClip(testAllocator, c, skeleton)
		if err != nil {
			t.Fatalf("CompressClip(%v): %v", settings, err)
		}
		maxError, err := codec.FindMaxError(a, cc, c, skeleton)
		if err != nil {
			t.Fatal(err)
		}
		return maxError
	}

	err96 := errorFor(CompressionSettings{format.RotationQuat96, format.Vector396, format.RangeReductionNone})
	err48 := errorFor(CompressionSettings{format.RotationQuat48, format.Vector396, format.RangeReductionNone})
	err32 := errorFor(CompressionSettings{format.RotationQuat32, format.Vector396, format.RangeReductionNone})
	if err48 < err96 {
		t.Errorf("Quat_48 error %v below Quat_96 error %v", err48, err96)
	}
	if err32 < err48 {
		t.Errorf("Quat_32 error %v below Quat_48 error %v", err32, err48)
	}

	rrTrans := format.RangeReductionPerClip | format.RangeReductionTranslations
	errV48 := errorFor(CompressionSettings{format.RotationQuat128, format.Vector348, rrTrans})
	errV32 := errorFor(CompressionSettings{format.RotationQuat128, format.Vector332, rrTrans})
	if errV32 < errV48 {
		t.Errorf("Vector3_32 error %v below Vector3_48 error %v", errV32, errV48)
	}
}

// Property: every non-sentinel offset is aligned, in bounds and the
// regions are ordered without overlap.
func TestHeaderSelfConsistency(t *testing.T) {
	skeleton, c := mixedClip(t, 7, 10)

	configs := []CompressionSettings{
		DefaultSettings(),
		{format.RotationQuat48, format.Vector348, format.RangeReductionPerClip | format.RangeReductionRotations | format.RangeReductionTranslations},
		{format.RotationQuat32, format.Vector332, format.RangeReductionPerClip | format.RangeReductionTranslations},
	}
	for _, settings := range configs {
		cc := compress(t, c, skeleton, settings)
		h := cc.Header()
		total := cc.Size()

		offsets := []compressed.Offset32{h.DefaultBitsetOffset, h.ConstantDataOffset, h.RangeDataOffset, h.AnimatedDataOffset}
		previous := uint32(0)
		for i, offset := range offsets {
			if !offset.IsValid() {
				continue
			}
			if uint32(offset)%4 != 0 {
				t.Errorf("%v offset %d = 0x%x unaligned", settings, i, uint32(offset))
			}
			if uint32(offset) >= total {
				t.Errorf("%v offset %d = 0x%x beyond total 0x%x", settings, i, uint32(offset), total)
			}
			if uint32(offset) < previous {
				t.Errorf("%v offset %d = 0x%x out of order", settings, i, uint32(offset))
			}
			previous = uint32(offset)
		}

		if h.AnimatedDataOffset.IsValid() {
			animatedSize := (uint32(h.RotationFormat.PackedSampleSize())*h.NumAnimatedRotationTracks +
				uint32(h.TranslationFormat.PackedSampleSize())*h.NumAnimatedTranslationTracks) * h.NumSamples
			if uint32(h.AnimatedDataOffset)+animatedSize != total {
				t.Errorf("%v animated region [0x%x, +0x%x) does not end at total 0x%x",
					settings, uint32(h.AnimatedDataOffset), animatedSize, total)
			}
		}
	}
}

func TestDecompressPoseBoneCountMismatch(t *testing.T) {
	skeleton, c := mixedClip(t, 4, 8)
	cc := compress(t, c, skeleton, DefaultSettings())
	a, _ := codec.ForClip(cc)

	writer := pose.NewBuffer(3)
	err := a.DecompressPose(cc, 0, writer, 3)
	if _, ok := err.(*PreconditionError); !ok {
		t.Fatalf("expected PreconditionError, got %T: %v", err, err)
	}
}

func TestDecompressBoneOutOfRange(t *testing.T) {
	skeleton, c := mixedClip(t, 4, 8)
	cc := compress(t, c, skeleton, DefaultSettings())
	a, _ := codec.ForClip(cc)

	if _, _, err := a.DecompressBone(cc, 0, 4); err == nil {
		t.Fatalf("bone index past the end must fail")
	}
}
