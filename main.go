package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/marcuswu/spring-rail-vise/internal/config"
	"github.com/marcuswu/spring-rail-vise/internal/export"
	"github.com/marcuswu/spring-rail-vise/internal/kernel"
	"github.com/marcuswu/spring-rail-vise/internal/kernel/occ"
	"github.com/marcuswu/spring-rail-vise/internal/kernel/sdfx"
	"github.com/marcuswu/spring-rail-vise/internal/parts"
	"github.com/marcuswu/spring-rail-vise/internal/preview"
	"github.com/marcuswu/spring-rail-vise/internal/preview/window"
)

const kernelUsage = "modeling kernel: occ (stl + step) or sdfx (stl only, step files are skipped)"

type options struct {
	parts      string
	show       string
	out        string
	kernel     string
	configPath string
	preview    string
	debug      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.parts, "parts", strings.Join(parts.DefaultParts, ","),
		"comma separated parts to build, or all: "+strings.Join(parts.CatalogNames(), ", "))
	flag.StringVar(&opts.show, "show", "entire_unit", "part to preview, empty for none")
	flag.StringVar(&opts.out, "out", "build", "output directory")
	flag.StringVar(&opts.kernel, "kernel", "occ", kernelUsage)
	flag.StringVar(&opts.configPath, "config", "", "JSON file overriding default dimensions")
	flag.StringVar(&opts.preview, "preview", "window", "preview mode: "+strings.Join(preview.Modes, " or "))
	flag.BoolVar(&opts.debug, "debug", false, "debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if opts.debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := run(opts); err != nil {
		log.Fatal().Err(err).Msg("build failed")
	}
}

func run(opts options) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	names, err := parts.ParseSelection(opts.parts)
	if err != nil {
		return err
	}
	k, err := newKernel(opts.kernel)
	if err != nil {
		return err
	}

	reg, err := parts.Build(k, cfg, names)
	if err != nil {
		return err
	}
	log.Info().Int("parts", reg.Len()).Str("kernel", opts.kernel).Msg("parts built")

	if opts.show != "" {
		viewer, err := preview.New(opts.preview, opts.out, window.New())
		if err != nil {
			return err
		}
		if err := show(k, reg, viewer, opts.show); err != nil {
			return err
		}
	}

	_, err = export.All(k, reg, opts.out)
	return err
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg := config.Default()
	return cfg, cfg.Validate()
}

func newKernel(name string) (kernel.Kernel, error) {
	switch name {
	case "occ":
		return occ.New(), nil
	case "sdfx":
		return sdfx.New(), nil
	}
	return nil, fmt.Errorf("unknown kernel %q", name)
}

// show writes part name to a scratch STL and hands it to p.
func show(k kernel.Kernel, reg *parts.Registry, p preview.Previewer, name string) error {
	solid, ok := reg.Get(name)
	if !ok {
		log.Warn().Str("part", name).Msg("preview part was not built, skipping preview")
		return nil
	}
	if _, noop := p.(preview.Noop); noop {
		return p.Show(name, "")
	}
	dir, err := os.MkdirTemp("", "spring-rail-vise-preview")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	stl := filepath.Join(dir, name+kernel.STL.Ext())
	if err := k.Export(solid, kernel.STL, stl); err != nil {
		return fmt.Errorf("preview %s: %w", name, err)
	}
	return p.Show(name, stl)
}
