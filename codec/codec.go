// Package codec dispatches compressed clips to the algorithm that produced
// them, keyed by the tag in the artifact preamble. Algorithm packages
// register themselves from init, so importing one is enough to decode its
// clips.
package codec

import (
	"io"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogren/animpack/clip"
	"github.com/mogren/animpack/compressed"
	"github.com/mogren/animpack/format"
	"github.com/mogren/animpack/memory"
	"github.com/mogren/animpack/pose"
)

// Algorithm bundles a compression configuration with its compress and
// decompress entry points.
type Algorithm interface {
	Type() format.AlgorithmType

	CompressClip(allocator memory.Allocator, animClip *clip.AnimationClip, skeleton *clip.RigidSkeleton) (*compressed.Clip, error)

	DecompressPose(cc *compressed.Clip, sampleTime float32, writer pose.Writer, numBones int) error
	DecompressBone(cc *compressed.Clip, sampleTime float32, boneIndex int) (mgl32.Quat, mgl32.Vec3, error)

	// PrintStats emits human-readable diagnostics, non-normative.
	PrintStats(cc *compressed.Clip, w io.Writer)
}

var algorithms = map[format.AlgorithmType]Algorithm{}

func SetAlgorithm(a Algorithm) {
	algorithms[a.Type()] = a
}

func ForType(t format.AlgorithmType) (Algorithm, error) {
	if a, ok := algorithms[t]; ok {
		return a, nil
	}
	return nil, &compressed.IntegrityError{Field: "algorithm", Detail: "no handler for tag " + t.String()}
}

func ForClip(cc *compressed.Clip) (Algorithm, error) {
	return ForType(cc.AlgorithmType())
}

func DecompressPose(cc *compressed.Clip, sampleTime float32, writer pose.Writer, numBones int) error {
	a, err := ForClip(cc)
	if err != nil {
		return err
	}
	return a.DecompressPose(cc, sampleTime, writer, numBones)
}

func DecompressBone(cc *compressed.Clip, sampleTime float32, boneIndex int) (mgl32.Quat, mgl32.Vec3, error) {
	a, err := ForClip(cc)
	if err != nil {
		return mgl32.QuatIdent(), mgl32.Vec3{}, err
	}
	return a.DecompressBone(cc, sampleTime, boneIndex)
}
