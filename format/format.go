package format

import (
	"github.com/pkg/errors"
)

type RotationFormat uint8

const (
	RotationQuat128 RotationFormat = iota
	RotationQuat96
	RotationQuat48
	RotationQuat32
)

func (f RotationFormat) String() string {
	switch f {
	case RotationQuat128:
		return "Quat_128"
	case RotationQuat96:
		return "Quat_96"
	case RotationQuat48:
		return "Quat_48"
	case RotationQuat32:
		return "Quat_32"
	}
	return "Quat_<unknown>"
}

// PackedSampleSize returns bytes used by one packed rotation sample
func (f RotationFormat) PackedSampleSize() int {
	switch f {
	case RotationQuat128:
		return 16
	case RotationQuat96:
		return 12
	case RotationQuat48:
		return 6
	case RotationQuat32:
		return 4
	}
	return 0
}

// NumComponents returns how many scalar components the storage shape keeps.
// Drop-w formats reconstruct w on decode and store only x, y, z.
func (f RotationFormat) NumComponents() int {
	if f == RotationQuat128 {
		return 4
	}
	return 3
}

func (f RotationFormat) DropsW() bool {
	return f != RotationQuat128
}

// IsQuantized reports whether samples pass through integer quantization
// instead of being stored as raw f32 components.
func (f RotationFormat) IsQuantized() bool {
	return f == RotationQuat48 || f == RotationQuat32
}

func ParseRotationFormat(name string) (RotationFormat, error) {
	for f := RotationQuat128; f <= RotationQuat32; f++ {
		if f.String() == name {
			return f, nil
		}
	}
	return RotationQuat128, errors.Errorf("Unknown rotation format %q", name)
}

type VectorFormat uint8

const (
	Vector396 VectorFormat = iota
	Vector348
	Vector332
)

func (f VectorFormat) String() string {
	switch f {
	case Vector396:
		return "Vector3_96"
	case Vector348:
		return "Vector3_48"
	case Vector332:
		return "Vector3_32"
	}
	return "Vector3_<unknown>"
}

func (f VectorFormat) PackedSampleSize() int {
	switch f {
	case Vector396:
		return 12
	case Vector348:
		return 6
	case Vector332:
		return 4
	}
	return 0
}

func (f VectorFormat) IsQuantized() bool {
	return f != Vector396
}

func ParseVectorFormat(name string) (VectorFormat, error) {
	for f := Vector396; f <= Vector332; f++ {
		if f.String() == name {
			return f, nil
		}
	}
	return Vector396, errors.Errorf("Unknown vector format %q", name)
}

type RangeReductionFlags uint8

const (
	RangeReductionNone         RangeReductionFlags = 0
	RangeReductionPerClip      RangeReductionFlags = 1 << 0
	RangeReductionRotations    RangeReductionFlags = 1 << 1
	RangeReductionTranslations RangeReductionFlags = 1 << 2
)

func (f RangeReductionFlags) Has(flags RangeReductionFlags) bool {
	return f&flags == flags
}

func (f RangeReductionFlags) HasAny(flags RangeReductionFlags) bool {
	return f&flags != 0
}

func (f RangeReductionFlags) String() string {
	if f == RangeReductionNone {
		return "None"
	}
	s := ""
	appendFlag := func(name string) {
		if s != "" {
			s += "|"
		}
		s += name
	}
	if f.Has(RangeReductionPerClip) {
		appendFlag("PerClip")
	}
	if f.Has(RangeReductionRotations) {
		appendFlag("Rotations")
	}
	if f.Has(RangeReductionTranslations) {
		appendFlag("Translations")
	}
	return s
}

type AlgorithmType uint8

const (
	AlgorithmUnknown          AlgorithmType = 0
	AlgorithmUniformlySampled AlgorithmType = 1
)

func (t AlgorithmType) String() string {
	switch t {
	case AlgorithmUniformlySampled:
		return "UniformlySampled"
	}
	return "<unknown>"
}
