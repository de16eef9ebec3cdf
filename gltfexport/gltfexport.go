// Package gltfexport turns a decompressed clip back into an interchange
// format: skeleton nodes plus per-bone rotation and translation animation
// channels, one keyframe per stored sample.
package gltfexport

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mogren/animpack/clip"
	"github.com/mogren/animpack/codec"
	"github.com/mogren/animpack/compressed"
	"github.com/mogren/animpack/pose"
)

type binBuilder struct {
	buf bytes.Buffer
	doc *gltf.Document
}

func (b *binBuilder) writeFloats(values []float32, accessorType gltf.AccessorType) uint32 {
	byteOffset := uint32(b.buf.Len())
	for _, v := range values {
		var raw [4]byte
		binary.LittleEndian.PutUint32(raw[:], math.Float32bits(v))
		b.buf.Write(raw[:])
	}

	b.doc.BufferViews = append(b.doc.BufferViews, &gltf.BufferView{
		Buffer:     0,
		ByteOffset: byteOffset,
		ByteLength: uint32(len(values) * 4),
	})
	viewIndex := uint32(len(b.doc.BufferViews) - 1)

	componentCount := uint32(1)
	switch accessorType {
	case gltf.AccessorVec3:
		componentCount = 3
	case gltf.AccessorVec4:
		componentCount = 4
	}
	b.doc.Accessors = append(b.doc.Accessors, &gltf.Accessor{
		BufferView:    gltf.Index(viewIndex),
		ComponentType: gltf.ComponentFloat,
		Count:         uint32(len(values)) / componentCount,
		Type:          accessorType,
	})
	return uint32(len(b.doc.Accessors) - 1)
}

// Export decompresses every sample of the artifact and emits a glTF
// document with the skeleton hierarchy and a single animation.
func Export(skeleton *clip.RigidSkeleton, cc *compressed.Clip, name string) (*gltf.Document, error) {
	algorithm, err := codec.ForClip(cc)
	if err != nil {
		return nil, err
	}

	h := cc.Header()
	numBones := int(h.NumBones)
	if numBones != int(skeleton.NumBones()) {
		return nil, errors.Errorf("Skeleton has %d bones, artifact has %d", skeleton.NumBones(), numBones)
	}

	doc := gltf.NewDocument()
	builder := &binBuilder{doc: doc}

	for i := 0; i < numBones; i++ {
		b := skeleton.Bone(uint16(i))
		node := &gltf.Node{
			Name: b.Name,
			Rotation: [4]float32{
				float32(b.BindRotation.V[0]), float32(b.BindRotation.V[1]), float32(b.BindRotation.V[2]), float32(b.BindRotation.W)},
			Translation: [3]float32{
				float32(b.BindTranslation[0]), float32(b.BindTranslation[1]), float32(b.BindTranslation[2])},
		}
		doc.Nodes = append(doc.Nodes, node)
		if b.Parent == clip.InvalidBoneIndex {
			doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(i))
		}
	}
	for i := 0; i < numBones; i++ {
		b := skeleton.Bone(uint16(i))
		if b.Parent != clip.InvalidBoneIndex {
			parent := doc.Nodes[b.Parent]
			parent.Children = append(parent.Children, uint32(i))
		}
	}

	// Decompress every frame once, then split into per-bone channels
	numSamples := int(h.NumSamples)
	times := make([]float32, numSamples)
	poses := make([][]pose.Transform32, numSamples)
	for s := 0; s < numSamples; s++ {
		times[s] = float32(s) / float32(h.SampleRate)
		writer := pose.NewBuffer(numBones)
		if err := algorithm.DecompressPose(cc, times[s], writer, numBones); err != nil {
			return nil, errors.Wrapf(err, "Failed to decompress frame %d", s)
		}
		poses[s] = writer.Transforms
	}

	timeAccessor := builder.writeFloats(times, gltf.AccessorScalar)

	animation := &gltf.Animation{Name: name}
	for i := 0; i < numBones; i++ {
		rotations := make([]float32, 0, numSamples*4)
		translations := make([]float32, 0, numSamples*3)
		for s := 0; s < numSamples; s++ {
			t := poses[s][i]
			rotations = append(rotations, t.Rotation.V[0], t.Rotation.V[1], t.Rotation.V[2], t.Rotation.W)
			translations = append(translations, t.Translation[0], t.Translation[1], t.Translation[2])
		}

		rotationAccessor := builder.writeFloats(rotations, gltf.AccessorVec4)
		animation.Samplers = append(animation.Samplers, &gltf.AnimationSampler{
			Input:         gltf.Index(timeAccessor),
			Output:        gltf.Index(rotationAccessor),
			Interpolation: gltf.InterpolationLinear,
		})
		animation.Channels = append(animation.Channels, &gltf.Channel{
			Sampler: gltf.Index(uint32(len(animation.Samplers) - 1)),
			Target:  gltf.ChannelTarget{Node: gltf.Index(uint32(i)), Path: gltf.TRSRotation},
		})

		translationAccessor := builder.writeFloats(translations, gltf.AccessorVec3)
		animation.Samplers = append(animation.Samplers, &gltf.AnimationSampler{
			Input:         gltf.Index(timeAccessor),
			Output:        gltf.Index(translationAccessor),
			Interpolation: gltf.InterpolationLinear,
		})
		animation.Channels = append(animation.Channels, &gltf.Channel{
			Sampler: gltf.Index(uint32(len(animation.Samplers) - 1)),
			Target:  gltf.ChannelTarget{Node: gltf.Index(uint32(i)), Path: gltf.TRSTranslation},
		})
	}
	doc.Animations = append(doc.Animations, animation)

	doc.Buffers = []*gltf.Buffer{{
		ByteLength: uint32(builder.buf.Len()),
		Data:       builder.buf.Bytes(),
	}}

	return doc, nil
}

// ExportBinary writes the document as a .glb stream.
func ExportBinary(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
