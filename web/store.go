package web

import (
	"io/ioutil"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mogren/animpack/clip"
	"github.com/mogren/animpack/clipfile"
	"github.com/mogren/animpack/codec"
	"github.com/mogren/animpack/compressed"
	"github.com/mogren/animpack/config"
	"github.com/mogren/animpack/memory"
	"github.com/mogren/animpack/uniform"
)

// Entry is one clip the server knows: the raw source, the compressed
// artifact and the measured error.
type Entry struct {
	Name       string
	Skeleton   *clip.RigidSkeleton
	Clip       *clip.AnimationClip
	Compressed *compressed.Clip
	MaxError   float64
}

type Store struct {
	entries map[string]*Entry
}

// LoadDirectory reads every *.acl clip file in dir, compresses it with the
// given settings and measures the resulting error. Clip text is decoded
// through cfg in case the files use a legacy codepage.
func LoadDirectory(dir string, settings uniform.CompressionSettings, cfg *config.Config) (*Store, error) {
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to list clip directory %q", dir)
	}

	algorithm := uniform.NewAlgorithm(settings.RotationFormat, settings.TranslationFormat, settings.RangeReduction)
	allocator := memory.HeapAllocator{}

	store := &Store{entries: make(map[string]*Entry)}
	for _, fi := range files {
		if fi.IsDir() || !strings.HasSuffix(fi.Name(), ".acl") {
			continue
		}

		data, err := ioutil.ReadFile(filepath.Join(dir, fi.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read clip %q", fi.Name())
		}
		text, err := cfg.DecodeClipText(data)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to decode clip %q", fi.Name())
		}
		skeleton, animClip, err := clipfile.Read(text)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse clip %q", fi.Name())
		}

		cc, err := algorithm.CompressClip(allocator, animClip, skeleton)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to compress clip %q", fi.Name())
		}
		maxError, err := codec.FindMaxError(algorithm, cc, animClip, skeleton)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to evaluate clip %q", fi.Name())
		}

		name := strings.TrimSuffix(fi.Name(), ".acl")
		store.entries[name] = &Entry{
			Name:       name,
			Skeleton:   skeleton,
			Clip:       animClip,
			Compressed: cc,
			MaxError:   maxError,
		}
		logrus.WithFields(logrus.Fields{
			"clip":      name,
			"bones":     animClip.NumBones(),
			"samples":   animClip.NumSamples(),
			"size":      cc.Size(),
			"max_error": maxError,
		}).Info("loaded clip")
	}
	return store, nil
}

func (s *Store) Names() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) Get(name string) *Entry {
	return s.entries[name]
}
