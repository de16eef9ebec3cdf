package clip

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogren/animpack/pose"
)

// localToObjectSpace walks the parent chain. Bones are ordered parents
// first, so a single forward pass is enough.
func localToObjectSpace(s *RigidSkeleton, local []pose.Transform64, out []pose.Transform64) {
	for i := range local {
		parent := s.bones[i].Parent
		if parent == InvalidBoneIndex {
			out[i] = local[i]
			continue
		}
		p := &out[parent]
		out[i].Rotation = p.Rotation.Mul(local[i].Rotation).Normalize()
		out[i].Translation = p.Rotation.Rotate(local[i].Translation).Add(p.Translation)
	}
}

var errorProbeAxes = [3]mgl64.Vec3{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

// CalculateSkeletonError propagates both poses to object space and returns
// the largest displacement of a probe point rigidly attached to any bone:
// one probe per local axis, at the bone's vertex distance.
func CalculateSkeletonError(s *RigidSkeleton, raw []pose.Transform64, lossy []pose.Transform32) float64 {
	numBones := len(raw)
	rawObj := make([]pose.Transform64, numBones)
	lossyObj := make([]pose.Transform64, numBones)
	lossy64 := make([]pose.Transform64, numBones)
	for i := range lossy {
		lossy64[i] = lossy[i].Cast64()
	}

	localToObjectSpace(s, raw, rawObj)
	localToObjectSpace(s, lossy64, lossyObj)

	maxError := 0.0
	for i := 0; i < numBones; i++ {
		distance := s.bones[i].VertexDistance
		if distance <= 0 {
			distance = 1
		}
		for _, axis := range errorProbeAxes {
			probe := axis.Mul(distance)
			rawPoint := rawObj[i].Rotation.Rotate(probe).Add(rawObj[i].Translation)
			lossyPoint := lossyObj[i].Rotation.Rotate(probe).Add(lossyObj[i].Translation)
			maxError = math.Max(maxError, rawPoint.Sub(lossyPoint).Len())
		}
	}
	return maxError
}
