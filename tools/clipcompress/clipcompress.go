// clipcompress reads a textual clip, runs it through every legal
// format/range-reduction combination, reports size and error stats and
// writes the artifact of the chosen (or best) configuration.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/mogren/animpack/clip"
	"github.com/mogren/animpack/clipfile"
	"github.com/mogren/animpack/codec"
	"github.com/mogren/animpack/compressed"
	"github.com/mogren/animpack/config"
	"github.com/mogren/animpack/format"
	"github.com/mogren/animpack/memory"
	"github.com/mogren/animpack/pose"
	"github.com/mogren/animpack/uniform"
	"github.com/mogren/animpack/utils"
)

// Every configuration the sweep tries. Quantized translation formats only
// appear with translation range reduction, anything else fails the
// compressor's precondition check.
func sweepSettings() []uniform.CompressionSettings {
	const (
		rrNone  = format.RangeReductionNone
		rrRot   = format.RangeReductionPerClip | format.RangeReductionRotations
		rrTrans = format.RangeReductionPerClip | format.RangeReductionTranslations
		rrBoth  = format.RangeReductionPerClip | format.RangeReductionRotations | format.RangeReductionTranslations
	)

	settings := make([]uniform.CompressionSettings, 0, 32)
	for rf := format.RotationQuat128; rf <= format.RotationQuat32; rf++ {
		settings = append(settings,
			uniform.CompressionSettings{RotationFormat: rf, TranslationFormat: format.Vector396, RangeReduction: rrNone},
			uniform.CompressionSettings{RotationFormat: rf, TranslationFormat: format.Vector396, RangeReduction: rrRot},
			uniform.CompressionSettings{RotationFormat: rf, TranslationFormat: format.Vector396, RangeReduction: rrTrans},
			uniform.CompressionSettings{RotationFormat: rf, TranslationFormat: format.Vector396, RangeReduction: rrBoth},
			uniform.CompressionSettings{RotationFormat: rf, TranslationFormat: format.Vector348, RangeReduction: rrTrans},
			uniform.CompressionSettings{RotationFormat: rf, TranslationFormat: format.Vector348, RangeReduction: rrBoth},
			uniform.CompressionSettings{RotationFormat: rf, TranslationFormat: format.Vector332, RangeReduction: rrTrans},
			uniform.CompressionSettings{RotationFormat: rf, TranslationFormat: format.Vector332, RangeReduction: rrBoth},
		)
	}
	return settings
}

type result struct {
	settings   uniform.CompressionSettings
	compressed *compressed.Clip
	maxError   float64
	elapsed    time.Duration
}

func tryAlgorithm(statsFile *os.File, animClip *clip.AnimationClip, skeleton *clip.RigidSkeleton, settings uniform.CompressionSettings) (*result, error) {
	algorithm := uniform.NewAlgorithm(settings.RotationFormat, settings.TranslationFormat, settings.RangeReduction)
	allocator := memory.HeapAllocator{}

	start := time.Now()
	cc, err := algorithm.CompressClip(allocator, animClip, skeleton)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	maxError, err := codec.FindMaxError(algorithm, cc, animClip, skeleton)
	if err != nil {
		return nil, err
	}

	// Seek check: the last bone at the final time must match the full pose
	{
		numBones := int(animClip.NumBones())
		writer := pose.NewBuffer(numBones)
		duration := float32(animClip.Duration())
		if err := algorithm.DecompressPose(cc, duration, writer, numBones); err != nil {
			return nil, err
		}
		boneIndex := numBones - 1
		q, v, err := algorithm.DecompressBone(cc, duration, boneIndex)
		if err != nil {
			return nil, err
		}
		if q != writer.Transforms[boneIndex].Rotation || v != writer.Transforms[boneIndex].Translation {
			log.Fatalf("Seek mismatch on bone %d with %v: %s", boneIndex, settings,
				utils.SDump(q, v, writer.Transforms[boneIndex]))
		}
	}

	if statsFile != nil {
		rawSize := animClip.TotalSize()
		ratio := float64(rawSize) / float64(cc.Size())
		fmt.Fprintf(statsFile, "Clip algorithm: %s\n", cc.AlgorithmType())
		fmt.Fprintf(statsFile, "Clip raw size (bytes): %d\n", rawSize)
		fmt.Fprintf(statsFile, "Clip compressed size (bytes): %d\n", cc.Size())
		fmt.Fprintf(statsFile, "Clip compression ratio: %.2f : 1\n", ratio)
		fmt.Fprintf(statsFile, "Clip max error: %.5f\n", maxError)
		fmt.Fprintf(statsFile, "Clip compression time (s): %.6f\n", elapsed.Seconds())
		fmt.Fprintf(statsFile, "Clip duration (s): %.3f\n", animClip.Duration())
		algorithm.PrintStats(cc, statsFile)
		fmt.Fprintf(statsFile, "\n")
	}

	return &result{settings: settings, compressed: cc, maxError: maxError, elapsed: elapsed}, nil
}

func writeArtifact(path string, cc *compressed.Clip, useZstd bool) error {
	data := cc.Data()
	if useZstd {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return err
		}
		data = enc.EncodeAll(data, nil)
		enc.Close()
		path += ".zst"
	}
	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		return err
	}
	log.Printf("Wrote %d bytes to %s", len(data), path)
	return nil
}

func main() {
	var clipPath, statsPath, outPath, configPath string
	var useZstd bool
	flag.StringVar(&clipPath, "clip", "", "Path to textual clip file")
	flag.StringVar(&statsPath, "stats", "", "Stats output file, empty for stdout")
	flag.StringVar(&outPath, "out", "", "Artifact output path (best configuration within the clip error threshold)")
	flag.StringVar(&configPath, "config", "", "Optional yaml config (clip encoding)")
	flag.BoolVar(&useZstd, "zstd", false, "zstd-wrap the artifact output")
	flag.Parse()

	if clipPath == "" {
		flag.PrintDefaults()
		return
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}

	data, err := ioutil.ReadFile(clipPath)
	if err != nil {
		log.Fatalf("Failed to read clip: %v", err)
	}
	text, err := cfg.DecodeClipText(data)
	if err != nil {
		log.Fatalf("Failed to decode clip: %v", err)
	}
	skeleton, animClip, err := clipfile.Read(text)
	if err != nil {
		log.Fatalf("Failed to parse clip: %v", err)
	}
	log.Printf("Parsed clip %q: %d bones, %d samples at %d Hz",
		animClip.Name(), animClip.NumBones(), animClip.NumSamples(), animClip.SampleRate())

	statsFile := os.Stdout
	if statsPath != "" {
		statsFile, err = os.Create(statsPath)
		if err != nil {
			log.Fatalf("Failed to create stats file: %v", err)
		}
		defer statsFile.Close()
	}

	var best *result
	errorThreshold := animClip.ErrorThreshold()
	for _, settings := range sweepSettings() {
		res, err := tryAlgorithm(statsFile, animClip, skeleton, settings)
		if err != nil {
			log.Fatalf("Compression failed with %v: %v", settings, err)
		}
		withinThreshold := errorThreshold <= 0 || res.maxError <= errorThreshold
		if withinThreshold && (best == nil || res.compressed.Size() < best.compressed.Size()) {
			best = res
		}
	}
	if best == nil {
		log.Fatalf("No configuration met the error threshold %v", errorThreshold)
	}
	log.Printf("Best configuration: %v (%d bytes, max error %.5f)",
		best.settings, best.compressed.Size(), best.maxError)

	if outPath != "" {
		if err := writeArtifact(outPath, best.compressed, useZstd); err != nil {
			log.Fatalf("Failed to write artifact: %v", err)
		}
	}
}
