package main

import (
	"flag"
	"log"

	"github.com/mogren/animpack/config"
	"github.com/mogren/animpack/format"
	"github.com/mogren/animpack/uniform"
	"github.com/mogren/animpack/web"
)

func main() {
	var addr, dir, configPath, rotationName, translationName string
	flag.StringVar(&addr, "i", "", "Address of inspection server")
	flag.StringVar(&dir, "dir", "", "Directory with *.acl clip files")
	flag.StringVar(&configPath, "config", "", "Path to yaml config")
	flag.StringVar(&rotationName, "rotation", "", "Rotation format override")
	flag.StringVar(&translationName, "translation", "", "Translation format override")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	if addr != "" {
		cfg.ListenAddr = addr
	}
	if dir != "" {
		cfg.ArtifactDir = dir
	}
	if rotationName != "" {
		cfg.RotationFormat = rotationName
	}
	if translationName != "" {
		cfg.TranslationFormat = translationName
	}

	rotationFormat, err := format.ParseRotationFormat(cfg.RotationFormat)
	if err != nil {
		log.Fatal(err)
	}
	translationFormat, err := format.ParseVectorFormat(cfg.TranslationFormat)
	if err != nil {
		log.Fatal(err)
	}

	settings := uniform.CompressionSettings{
		RotationFormat:    rotationFormat,
		TranslationFormat: translationFormat,
		RangeReduction:    format.RangeReductionNone,
	}
	if translationFormat != format.Vector396 {
		settings.RangeReduction = format.RangeReductionPerClip | format.RangeReductionTranslations
	}

	store, err := web.LoadDirectory(cfg.ArtifactDir, settings, cfg)
	if err != nil {
		log.Fatal(err)
	}

	if err := web.StartServer(cfg.ListenAddr, store); err != nil {
		log.Fatal(err)
	}
}
