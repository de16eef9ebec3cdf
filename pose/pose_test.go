package pose

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

func TestNlerpShortestPicksHemisphere(t *testing.T) {
	q0 := mgl32.QuatRotate(0.2, mgl32.Vec3{0, 0, 1})
	q1 := mgl32.QuatRotate(0.4, mgl32.Vec3{0, 0, 1})

	direct := NlerpShortest(q0, q1, 0.5)
	flipped := NlerpShortest(q0, q1.Scale(-1), 0.5)

	// Same rotation either way, up to global sign
	dot := direct.Dot(flipped)
	if math.Abs(math.Abs(float64(dot))-1) > 1e-6 {
		t.Errorf("hemisphere handling broken, dot = %v", dot)
	}

	mid := mgl32.QuatRotate(0.3, mgl32.Vec3{0, 0, 1})
	if math.Abs(math.Abs(float64(direct.Dot(mid)))-1) > 1e-5 {
		t.Errorf("midpoint off: %v vs %v", direct, mid)
	}
}

func TestVec3Lerp(t *testing.T) {
	a := mgl32.Vec3{0, 2, -4}
	b := mgl32.Vec3{4, 2, 4}
	if got := Vec3Lerp32(a, b, 0.5); got != (mgl32.Vec3{2, 2, 0}) {
		t.Errorf("lerp = %v", got)
	}
	if got := Vec3Lerp32(a, b, 0); got != a {
		t.Errorf("lerp(0) = %v", got)
	}
}

func TestCastRoundTrip(t *testing.T) {
	q := mgl64.Quat{W: 0.5, V: mgl64.Vec3{0.5, -0.5, 0.5}}
	if got := QuatCast64(QuatCast32(q)); got != q {
		t.Errorf("quat cast round trip %v != %v", got, q)
	}
	v := mgl64.Vec3{1.5, -2.25, 0.125}
	if got := Vec3Cast64(Vec3Cast32(v)); got != v {
		t.Errorf("vec cast round trip %v != %v", got, v)
	}
}

func TestBufferWriters(t *testing.T) {
	b := NewBuffer(2)
	if b.Transforms[1] != IdentityTransform32() {
		t.Errorf("buffer not initialized to identity")
	}
	b.WriteBoneRotation(1, mgl32.QuatRotate(1, mgl32.Vec3{1, 0, 0}))
	b.WriteBoneTranslation(0, mgl32.Vec3{1, 2, 3})
	if b.Transforms[0].Translation != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("translation write lost")
	}
	if b.Transforms[1].Rotation == mgl32.QuatIdent() {
		t.Errorf("rotation write lost")
	}
}
