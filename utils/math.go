package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// result in radians
func QuatToEuler(q mgl64.Quat) (e mgl64.Vec3) {
	sinrCosp := 2 * (q.W*q.V[0] + q.V[1]*q.V[2])
	cosrCosp := 1 - 2*(q.V[0]*q.V[0]+q.V[1]*q.V[1])
	e[0] = math.Atan2(sinrCosp, cosrCosp)

	sinp := 2 * (q.W*q.V[1] - q.V[2]*q.V[0])
	if math.Abs(sinp) >= 1 {
		e[1] = math.Pi / 2
		if sinp < 0 {
			e[1] *= -1
		}
	} else {
		e[1] = math.Asin(sinp)
	}

	sinyCosp := 2 * (q.W*q.V[2] + q.V[0]*q.V[1])
	cosyCosp := 1 - 2*(q.V[1]*q.V[1]+q.V[2]*q.V[2])
	e[2] = math.Atan2(sinyCosp, cosyCosp)

	return e
}

// input in radians
func EulerToQuat(v mgl64.Vec3) mgl64.Quat {
	sx, cx := math.Sincos(v[0] * 0.5)
	sy, cy := math.Sincos(v[1] * 0.5)
	sz, cz := math.Sincos(v[2] * 0.5)

	q := mgl64.Quat{
		W: cx*cy*cz + sx*sy*sz,
		V: mgl64.Vec3{
			sx*cy*cz - cx*sy*sz,
			cx*sy*cz + sx*cy*sz,
			cx*cy*sz - sx*sy*cz,
		},
	}
	return q.Normalize()
}
