package clipfile

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogren/animpack/clip"
)

const fileFormatVersion = 1

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func quatToText(q mgl64.Quat) string {
	return fmt.Sprintf("[ %s, %s, %s, %s ]", ftoa(q.V[0]), ftoa(q.V[1]), ftoa(q.V[2]), ftoa(q.W))
}

func vec3ToText(v mgl64.Vec3) string {
	return fmt.Sprintf("[ %s, %s, %s ]", ftoa(v[0]), ftoa(v[1]), ftoa(v[2]))
}

func isDefaultQuat(q mgl64.Quat) bool {
	return q.V[0] == 0 && q.V[1] == 0 && q.V[2] == 0 && q.W == 1
}

func isZeroVec3(v mgl64.Vec3) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

func isOneVec3(v mgl64.Vec3) bool {
	return v[0] == 1 && v[1] == 1 && v[2] == 1
}

// Write emits the clip in the same textual layout the original exporter
// produces, default bind values omitted.
func Write(w io.Writer, skeleton *clip.RigidSkeleton, animClip *clip.AnimationClip) error {
	var err error
	p := func(format string, args ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format+"\n", args...)
		}
	}

	p("version = %d", fileFormatVersion)
	p("")
	p("clip =")
	p("{")
	p("\tname = %q", animClip.Name())
	p("\tnum_samples = %d", animClip.NumSamples())
	p("\tsample_rate = %d", animClip.SampleRate())
	p("\terror_threshold = %s", ftoa(animClip.ErrorThreshold()))
	p("}")
	p("")

	p("bones =")
	p("[")
	for i := uint16(0); i < skeleton.NumBones(); i++ {
		b := skeleton.Bone(i)
		parentName := ""
		if b.Parent != clip.InvalidBoneIndex {
			parentName = skeleton.Bone(b.Parent).Name
		}
		p("\t{")
		p("\t\tname = %q", b.Name)
		p("\t\tparent = %q", parentName)
		p("\t\tvertex_distance = %s", ftoa(b.VertexDistance))
		if !isDefaultQuat(b.BindRotation) {
			p("\t\tbind_rotation = %s", quatToText(b.BindRotation))
		}
		if !isZeroVec3(b.BindTranslation) {
			p("\t\tbind_translation = %s", vec3ToText(b.BindTranslation))
		}
		if !isOneVec3(b.BindScale) {
			p("\t\tbind_scale = %s", vec3ToText(b.BindScale))
		}
		p("\t}")
	}
	p("]")
	p("")

	p("tracks =")
	p("[")
	for i := uint16(0); i < skeleton.NumBones(); i++ {
		tracks := animClip.Tracks(i)
		p("\t{")
		p("\t\tname = %q", skeleton.Bone(i).Name)
		p("\t\trotations =")
		p("\t\t[")
		for _, q := range tracks.Rotations {
			p("\t\t\t%s", quatToText(q))
		}
		p("\t\t]")
		p("\t\ttranslations =")
		p("\t\t[")
		for _, t := range tracks.Translations {
			p("\t\t\t%s", vec3ToText(t))
		}
		p("\t\t]")
		p("\t}")
	}
	p("]")

	if err != nil {
		return errors.Wrapf(err, "Failed to write clip")
	}
	return nil
}
