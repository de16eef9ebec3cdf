package clip

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogren/animpack/pose"
)

func identityPose64(numBones int) []pose.Transform64 {
	p := make([]pose.Transform64, numBones)
	for i := range p {
		p[i] = pose.IdentityTransform64()
	}
	return p
}

func identityPose32(numBones int) []pose.Transform32 {
	p := make([]pose.Transform32, numBones)
	for i := range p {
		p[i] = pose.IdentityTransform32()
	}
	return p
}

func TestSkeletonErrorIdenticalPoses(t *testing.T) {
	s := testSkeleton(t, 3)
	raw := identityPose64(3)
	lossy := identityPose32(3)
	if err := CalculateSkeletonError(s, raw, lossy); err != 0 {
		t.Errorf("identical poses error=%v; expected 0", err)
	}
}

func TestSkeletonErrorTranslationOffset(t *testing.T) {
	s := testSkeleton(t, 1)
	raw := identityPose64(1)
	lossy := identityPose32(1)
	lossy[0].Translation = mgl32.Vec3{0.5, 0, 0}

	got := CalculateSkeletonError(s, raw, lossy)
	if math.Abs(got-0.5) > 1e-6 {
		t.Errorf("offset error=%v; expected 0.5", got)
	}
}

func TestSkeletonErrorPropagatesThroughChain(t *testing.T) {
	// A rotation error on the root moves every probe point attached to a
	// distant child much further than the root's own probes.
	s := testSkeleton(t, 2)
	raw := identityPose64(2)
	raw[1].Translation = mgl64.Vec3{10, 0, 0}

	lossy := identityPose32(2)
	lossy[1].Translation = mgl32.Vec3{10, 0, 0}
	angle := 0.01
	lossy[0].Rotation = mgl32.QuatRotate(float32(angle), mgl32.Vec3{0, 0, 1})

	errChain := CalculateSkeletonError(s, raw, lossy)
	if errChain < 10*angle*0.9 {
		t.Errorf("chain error=%v; expected about %v", errChain, 10*angle)
	}

	// Same local error without the long lever arm stays small
	sShort := testSkeleton(t, 1)
	errLocal := CalculateSkeletonError(sShort, raw[:1], lossy[:1])
	if errLocal >= errChain {
		t.Errorf("local error %v should be below chain error %v", errLocal, errChain)
	}
}

func TestSkeletonErrorUsesVertexDistance(t *testing.T) {
	bones := []Bone{{Name: "root", Parent: InvalidBoneIndex, VertexDistance: 5}}
	s, err := NewRigidSkeleton(bones)
	if err != nil {
		t.Fatal(err)
	}

	raw := identityPose64(1)
	lossy := identityPose32(1)
	lossy[0].Rotation = mgl32.QuatRotate(0.1, mgl32.Vec3{0, 0, 1})

	errFar := CalculateSkeletonError(s, raw, lossy)
	errNear := CalculateSkeletonError(testSkeleton(t, 1), raw, lossy)
	if errFar <= errNear {
		t.Errorf("vertex distance 5 error %v should exceed unit distance error %v", errFar, errNear)
	}
}
