// clipgen emits randomized textual clips for exercising the compressor:
// a random hierarchy with a mix of default, constant and animated tracks.
package main

import (
	"flag"
	"log"
	"math"
	"math/rand"
	"os"

	"github.com/Pallinder/go-randomdata"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogren/animpack/clip"
	"github.com/mogren/animpack/clipfile"
	"github.com/mogren/animpack/utils"
)

func buildSkeleton(rng *rand.Rand, numBones int) *clip.RigidSkeleton {
	bones := make([]clip.Bone, numBones)
	for i := range bones {
		parent := clip.InvalidBoneIndex
		if i > 0 {
			parent = uint16(rng.Intn(i))
		}
		bones[i] = clip.Bone{
			Name:           randomdata.SillyName(),
			Parent:         parent,
			VertexDistance: 0.1,
			BindTranslation: mgl64.Vec3{
				rng.Float64() - 0.5,
				rng.Float64() - 0.5,
				rng.Float64() - 0.5,
			},
		}
	}
	skeleton, err := clip.NewRigidSkeleton(bones)
	if err != nil {
		log.Fatalf("Failed to build skeleton: %v", err)
	}
	return skeleton
}

func buildClip(rng *rand.Rand, skeleton *clip.RigidSkeleton, numSamples, sampleRate uint32) *clip.AnimationClip {
	animClip, err := clip.NewAnimationClip(skeleton, numSamples, sampleRate, randomdata.SillyName())
	if err != nil {
		log.Fatalf("Failed to build clip: %v", err)
	}
	animClip.SetErrorThreshold(0.01)

	for boneIndex := uint16(0); boneIndex < skeleton.NumBones(); boneIndex++ {
		// Rough quarter split: default, constant, the rest animated
		kind := rng.Intn(4)
		switch kind {
		case 0:
			// default: leave identity/zero samples
		case 1:
			rotation := utils.EulerToQuat(mgl64.Vec3{
				rng.Float64() * math.Pi,
				rng.Float64() * math.Pi,
				rng.Float64() * math.Pi,
			})
			translation := mgl64.Vec3{rng.Float64() * 10, rng.Float64() * 10, rng.Float64() * 10}
			for s := uint32(0); s < numSamples; s++ {
				animClip.SetRotationSample(boneIndex, s, rotation)
				animClip.SetTranslationSample(boneIndex, s, translation)
			}
		default:
			phase := rng.Float64() * math.Pi * 2
			amplitude := rng.Float64() * math.Pi
			offset := mgl64.Vec3{rng.Float64() * 5, rng.Float64() * 5, rng.Float64() * 5}
			for s := uint32(0); s < numSamples; s++ {
				t := float64(s) / float64(sampleRate)
				angle := math.Sin(t*2+phase) * amplitude
				animClip.SetRotationSample(boneIndex, s, utils.EulerToQuat(mgl64.Vec3{angle, angle * 0.5, 0}))
				animClip.SetTranslationSample(boneIndex, s, offset.Add(mgl64.Vec3{t, math.Sin(t + phase), 0}))
			}
		}
	}
	return animClip
}

func main() {
	var numBones, numSamples, sampleRate int
	var seed int64
	var outPath string
	flag.IntVar(&numBones, "bones", 20, "Bone count")
	flag.IntVar(&numSamples, "samples", 120, "Sample count")
	flag.IntVar(&sampleRate, "rate", 30, "Sample rate in Hz")
	flag.Int64Var(&seed, "seed", 1, "Random seed")
	flag.StringVar(&outPath, "out", "", "Output clip path")
	flag.Parse()

	if outPath == "" {
		flag.PrintDefaults()
		return
	}

	rng := rand.New(rand.NewSource(seed))
	skeleton := buildSkeleton(rng, numBones)
	animClip := buildClip(rng, skeleton, uint32(numSamples), uint32(sampleRate))

	f, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}
	defer f.Close()

	if err := clipfile.Write(f, skeleton, animClip); err != nil {
		log.Fatalf("Failed to write clip: %v", err)
	}
	log.Printf("Wrote clip %q: %d bones, %d samples", animClip.Name(), numBones, numSamples)
}
