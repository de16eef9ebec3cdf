package codec_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogren/animpack/clip"
	"github.com/mogren/animpack/codec"
	"github.com/mogren/animpack/format"
	"github.com/mogren/animpack/memory"
	"github.com/mogren/animpack/pose"
	"github.com/mogren/animpack/uniform"
)

func buildClip(t *testing.T) (*clip.RigidSkeleton, *clip.AnimationClip) {
	t.Helper()
	bones := []clip.Bone{
		{Name: "root", Parent: clip.InvalidBoneIndex, VertexDistance: 1},
		{Name: "limb", Parent: 0, VertexDistance: 1},
	}
	skeleton, err := clip.NewRigidSkeleton(bones)
	if err != nil {
		t.Fatal(err)
	}
	animClip, err := clip.NewAnimationClip(skeleton, 8, 30, "dispatch")
	if err != nil {
		t.Fatal(err)
	}
	for s := uint32(0); s < 8; s++ {
		animClip.SetRotationSample(1, s, mgl64.QuatRotate(float64(s)*0.1, mgl64.Vec3{0, 1, 0}))
		animClip.SetTranslationSample(1, s, mgl64.Vec3{float64(s) * 0.5, 1, 0})
	}
	return skeleton, animClip
}

func TestRegistryDispatch(t *testing.T) {
	skeleton, animClip := buildClip(t)

	a := uniform.NewAlgorithm(format.RotationQuat128, format.Vector396, format.RangeReductionNone)
	cc, err := a.CompressClip(memory.HeapAllocator{}, animClip, skeleton)
	if err != nil {
		t.Fatal(err)
	}

	// The uniform package registered itself, decoding goes through the tag
	found, err := codec.ForClip(cc)
	if err != nil {
		t.Fatal(err)
	}
	if found.Type() != format.AlgorithmUniformlySampled {
		t.Errorf("dispatched to %v", found.Type())
	}

	writer := pose.NewBuffer(2)
	if err := codec.DecompressPose(cc, 0.1, writer, 2); err != nil {
		t.Fatal(err)
	}
	if _, _, err := codec.DecompressBone(cc, 0.1, 1); err != nil {
		t.Fatal(err)
	}

	if _, err := codec.ForType(format.AlgorithmType(200)); err == nil {
		t.Errorf("unknown tag must not dispatch")
	}
}

func TestFindMaxErrorReferenceFormats(t *testing.T) {
	skeleton, animClip := buildClip(t)

	a := uniform.NewAlgorithm(format.RotationQuat128, format.Vector396, format.RangeReductionNone)
	cc, err := a.CompressClip(memory.HeapAllocator{}, animClip, skeleton)
	if err != nil {
		t.Fatal(err)
	}

	maxError, err := codec.FindMaxError(a, cc, animClip, skeleton)
	if err != nil {
		t.Fatal(err)
	}
	// Reference formats only lose the f64 to f32 conversion
	if maxError > 1e-5 {
		t.Errorf("reference format error %v too large", maxError)
	}
}

func TestPrintStats(t *testing.T) {
	skeleton, animClip := buildClip(t)

	a := uniform.NewAlgorithm(format.RotationQuat48, format.Vector348,
		format.RangeReductionPerClip|format.RangeReductionTranslations)
	cc, err := a.CompressClip(memory.HeapAllocator{}, animClip, skeleton)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	a.PrintStats(cc, &buf)
	out := buf.String()
	for _, want := range []string{"Quat_48", "Vector3_48", "PerClip|Translations", "num animated tracks"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}
