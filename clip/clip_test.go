package clip

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogren/animpack/pose"
)

func testSkeleton(t *testing.T, numBones int) *RigidSkeleton {
	bones := make([]Bone, numBones)
	for i := range bones {
		parent := InvalidBoneIndex
		if i > 0 {
			parent = uint16(i - 1)
		}
		bones[i] = Bone{Name: "bone" + string(rune('0'+i)), Parent: parent}
	}
	s, err := NewRigidSkeleton(bones)
	if err != nil {
		t.Fatalf("NewRigidSkeleton: %v", err)
	}
	return s
}

func TestSkeletonValidation(t *testing.T) {
	if _, err := NewRigidSkeleton(nil); err == nil {
		t.Errorf("empty skeleton must fail")
	}
	if _, err := NewRigidSkeleton([]Bone{{Name: "root", Parent: 3}}); err == nil {
		t.Errorf("root with a parent must fail")
	}
	if _, err := NewRigidSkeleton([]Bone{
		{Name: "root", Parent: InvalidBoneIndex},
		{Name: "child", Parent: 1},
	}); err == nil {
		t.Errorf("self/forward parent must fail")
	}
}

func TestClipValidation(t *testing.T) {
	s := testSkeleton(t, 1)
	if _, err := NewAnimationClip(s, 0, 30, "empty"); err == nil {
		t.Errorf("zero samples must fail")
	}
	if _, err := NewAnimationClip(s, 2, 0, "norate"); err == nil {
		t.Errorf("zero rate must fail")
	}
}

var interpolationTests = []struct {
	numSamples uint32
	sampleRate uint32
	sampleTime float64
	frame0     uint32
	frame1     uint32
	alpha      float64
}{
	{2, 30, 0, 0, 1, 0},
	{2, 30, 1.0 / 60.0, 0, 1, 0.5},
	{2, 30, 1, 1, 1, 0},   // clamp past the end
	{2, 30, -1, 0, 1, 0},  // clamp before the start
	{1, 30, 0.5, 0, 0, 0}, // single sample
	{5, 10, 0.25, 2, 3, 0.5},
}

func TestInterpolationKeys(t *testing.T) {
	for _, test := range interpolationTests {
		f0, f1, alpha := InterpolationKeys(test.numSamples, test.sampleRate, test.sampleTime)
		if f0 != test.frame0 || f1 != test.frame1 || math.Abs(alpha-test.alpha) > 1e-9 {
			t.Errorf("InterpolationKeys(%d,%d,%v)=(%d,%d,%v); expected (%d,%d,%v)",
				test.numSamples, test.sampleRate, test.sampleTime,
				f0, f1, alpha, test.frame0, test.frame1, test.alpha)
		}
	}
}

func TestSamplePoseLerp(t *testing.T) {
	s := testSkeleton(t, 1)
	c, err := NewAnimationClip(s, 2, 2, "lerp")
	if err != nil {
		t.Fatal(err)
	}
	c.SetTranslationSample(0, 0, mgl64.Vec3{0, 0, 0})
	c.SetTranslationSample(0, 1, mgl64.Vec3{2, 0, 0})

	w := pose.NewRawBuffer(1)
	c.SamplePose(0.25, w)
	if got := w.Transforms[0].Translation; math.Abs(got[0]-1) > 1e-9 {
		t.Errorf("mid-sample translation %v; expected x=1", got)
	}

	c.SamplePose(10, w)
	if got := w.Transforms[0].Translation; got[0] != 2 {
		t.Errorf("clamped translation %v; expected x=2", got)
	}
}

func TestDuration(t *testing.T) {
	s := testSkeleton(t, 1)
	c, _ := NewAnimationClip(s, 31, 30, "dur")
	if got := c.Duration(); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Duration=%v; expected 1", got)
	}
}
