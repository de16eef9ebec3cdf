// Package config holds process-wide tool settings. The codec core never
// reads it; only the CLI tools and the inspection server do.
package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Address the inspection server listens on
	ListenAddr string `yaml:"listen_addr"`

	// Directory the inspection server scans for *.acl clip files, which it
	// compresses on load
	ArtifactDir string `yaml:"artifact_dir"`

	// Compression defaults for the inspection server when no format flags
	// are given. RangeReduction is not read: the server enables per-clip
	// translation range reduction whenever the translation format is
	// quantized.
	RotationFormat    string `yaml:"rotation_format"`
	TranslationFormat string `yaml:"translation_format"`
	RangeReduction    string `yaml:"range_reduction"`

	// Text encoding of clip files, empty means UTF-8. Clip files exported
	// from DCC tools on Windows occasionally arrive in a legacy codepage.
	ClipEncoding string `yaml:"clip_encoding"`

	// Resolved from ClipEncoding at load time, nil for plain UTF-8
	clipCharmap *charmap.Charmap
}

func Default() *Config {
	return &Config{
		ListenAddr:        ":8000",
		ArtifactDir:       ".",
		RotationFormat:    "Quat_128",
		TranslationFormat: "Vector3_96",
		RangeReduction:    "None",
	}
}

func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read config %q", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse config %q", path)
	}

	if cfg.ClipEncoding != "" {
		for _, enc := range charmap.All {
			if cm, ok := enc.(*charmap.Charmap); ok && cm.String() == cfg.ClipEncoding {
				cfg.clipCharmap = cm
				break
			}
		}
		if cfg.clipCharmap == nil {
			return nil, errors.Errorf("Unknown clip_encoding %q in %q", cfg.ClipEncoding, path)
		}
	}
	return cfg, nil
}

// DecodeClipText converts raw clip-file bytes to UTF-8 using the configured
// encoding. With no encoding configured the bytes pass through untouched.
func (c *Config) DecodeClipText(bs []byte) ([]byte, error) {
	if c.clipCharmap == nil {
		return bs, nil
	}

	out, _, err := transform.Bytes(c.clipCharmap.NewDecoder(), bs)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to decode clip text as %s", c.ClipEncoding)
	}
	return out, nil
}
