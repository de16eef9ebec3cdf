package clip

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

const InvalidBoneIndex = uint16(0xffff)

type Bone struct {
	Name   string
	Parent uint16 // InvalidBoneIndex for the root

	// VertexDistance is how far off the bone the error metric places its
	// probe points. Zero means unit distance.
	VertexDistance float64

	BindRotation    mgl64.Quat
	BindTranslation mgl64.Vec3
	BindScale       mgl64.Vec3
}

// RigidSkeleton is an ordered bone hierarchy, parents strictly before
// children. Immutable after construction.
type RigidSkeleton struct {
	bones []Bone
}

func NewRigidSkeleton(bones []Bone) (*RigidSkeleton, error) {
	if len(bones) == 0 {
		return nil, errors.Errorf("Skeleton has no bones")
	}
	if len(bones) >= int(InvalidBoneIndex) {
		return nil, errors.Errorf("Skeleton has too many bones: %d", len(bones))
	}

	owned := make([]Bone, len(bones))
	copy(owned, bones)
	for i := range owned {
		b := &owned[i]
		if i == 0 {
			if b.Parent != InvalidBoneIndex {
				return nil, errors.Errorf("Root bone %q has parent %d", b.Name, b.Parent)
			}
		} else if b.Parent >= uint16(i) {
			return nil, errors.Errorf("Bone %d %q has parent %d, parents must come first", i, b.Name, b.Parent)
		}
		if b.BindRotation.Len() == 0 {
			b.BindRotation = mgl64.QuatIdent()
		}
		if b.BindScale.Len() == 0 {
			b.BindScale = mgl64.Vec3{1, 1, 1}
		}
	}

	return &RigidSkeleton{bones: owned}, nil
}

func (s *RigidSkeleton) NumBones() uint16 {
	return uint16(len(s.bones))
}

func (s *RigidSkeleton) Bone(index uint16) *Bone {
	return &s.bones[index]
}

func (s *RigidSkeleton) Bones() []Bone {
	return s.bones
}

// BoneIndexByName returns InvalidBoneIndex when no bone matches.
func (s *RigidSkeleton) BoneIndexByName(name string) uint16 {
	for i := range s.bones {
		if s.bones[i].Name == name {
			return uint16(i)
		}
	}
	return InvalidBoneIndex
}
