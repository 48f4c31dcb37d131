// Package parts builds the fixture's solids: the rail, the plate under
// it, the interchangeable jaws and the assemblies exported together.
// Every builder is a pure function of the kernel and the config.
//
// The rail runs along X, centred on the origin. Z is up.
package parts

import (
	"fmt"

	"github.com/marcuswu/spring-rail-vise/internal/config"
	"github.com/marcuswu/spring-rail-vise/internal/geom"
	"github.com/marcuswu/spring-rail-vise/internal/kernel"
)

// RailBody builds the rail: a round bar that fits inside the spring,
// clipped to a flat top and bottom, with a screw hole over each pillar.
func RailBody(k kernel.Kernel, cfg config.Config) (kernel.Solid, error) {
	rail, err := railProfile(k, cfg.RailD(), cfg.RailThicknessZ(), cfg.RailLengthX, 0, geom.Vec{})
	if err != nil {
		return nil, fmt.Errorf("rail body: %w", err)
	}
	for _, x := range cfg.PillarOffsets() {
		rail, err = kernel.ThroughCut(k, rail, cfg.M3.ClearanceD/2, geom.Z, geom.V(x, 0, 0), cfg.CutMargin)
		if err != nil {
			return nil, fmt.Errorf("rail screw hole at x=%g: %w", x, err)
		}
	}
	return rail, nil
}

// RailPlate builds the base under the rail: two pillars the rail screws
// onto, a rounded plate with a raised rim, and a screw hole plus captive
// nut pocket under each pillar.
func RailPlate(k kernel.Kernel, cfg config.Config) (kernel.Solid, error) {
	// Only the rail's lowest point is used, to seat the pillars under it.
	rail, err := RailBody(k, cfg)
	if err != nil {
		return nil, err
	}
	railBottom := rail.Bounds().At(geom.Bottom)
	plateTop := railBottom - cfg.RailRaiseDistZ

	var pieces []kernel.Solid
	for _, x := range cfg.PillarOffsets() {
		pillar, err := k.Cylinder(cfg.RailPillarD()/2, cfg.RailRaiseDistZ,
			geom.At(x, 0, railBottom-cfg.RailRaiseDistZ/2))
		if err != nil {
			return nil, fmt.Errorf("rail pillar: %w", err)
		}
		pieces = append(pieces, pillar)
	}

	var (
		lx = cfg.RailLengthX
		ly = cfg.RailPlateW
		r  = cfg.RailPlateW * cfg.RailPlateCornerRatio
		t  = cfg.PlateWallT
	)
	base, err := RoundedSlab(k, lx, ly, r, cfg.RailPlateT, geom.V(0, 0, plateTop-cfg.RailPlateT/2))
	if err != nil {
		return nil, fmt.Errorf("rail plate base: %w", err)
	}
	pieces = append(pieces, base)

	// The rim is the plate outline minus the outline offset inwards by the
	// wall thickness.
	wallZ := plateTop + cfg.PlateWallH/2
	outer, err := RoundedSlab(k, lx, ly, r, cfg.PlateWallH, geom.V(0, 0, wallZ))
	if err != nil {
		return nil, fmt.Errorf("rail plate rim: %w", err)
	}
	inner, err := RoundedSlab(k, lx-2*t, ly-2*t, r-t, cfg.PlateWallH+2*cfg.CutMargin, geom.V(0, 0, wallZ))
	if err != nil {
		return nil, fmt.Errorf("rail plate rim: %w", err)
	}
	rim, err := k.Difference(outer, inner)
	if err != nil {
		return nil, fmt.Errorf("rail plate rim: %w", err)
	}
	pieces = append(pieces, rim)

	plate, err := kernel.UnionAll(k, pieces...)
	if err != nil {
		return nil, fmt.Errorf("rail plate: %w", err)
	}
	plate, _, err = kernel.MaxFillet(k, plate, geom.Bottom, cfg.PlateFilletMax, cfg.FilletIterations)
	if err != nil {
		return nil, fmt.Errorf("rail plate: %w", err)
	}

	plateBottom := plate.Bounds().At(geom.Bottom)
	for _, x := range cfg.PillarOffsets() {
		plate, err = kernel.ThroughCut(k, plate, cfg.M3.ClearanceD/2, geom.Z, geom.V(x, 0, 0), cfg.CutMargin)
		if err != nil {
			return nil, fmt.Errorf("rail plate screw hole at x=%g: %w", x, err)
		}
		// Nut pocket entering from the bottom face.
		h := cfg.M3.NutHeight + cfg.CutMargin
		pocket, err := HexPrism(k, cfg.M3.NutFlats, h, geom.V(x, 0, plateBottom-cfg.CutMargin+h/2))
		if err != nil {
			return nil, fmt.Errorf("rail plate nut pocket at x=%g: %w", x, err)
		}
		if plate, err = k.Difference(plate, pocket); err != nil {
			return nil, fmt.Errorf("rail plate nut pocket at x=%g: %w", x, err)
		}
	}
	return plate, nil
}

// EntireUnit is the rail sitting on its plate.
func EntireUnit(k kernel.Kernel, cfg config.Config) (kernel.Solid, error) {
	rail, err := RailBody(k, cfg)
	if err != nil {
		return nil, err
	}
	plate, err := RailPlate(k, cfg)
	if err != nil {
		return nil, err
	}
	return k.Union(rail, plate)
}

// DemoJaws lays every jaw variant out along X for a side-by-side preview.
func DemoJaws(k kernel.Kernel, cfg config.Config) (kernel.Solid, error) {
	var jaws []kernel.Solid
	for i, v := range JawVariants() {
		jaw, err := Jaw(k, cfg, v)
		if err != nil {
			return nil, err
		}
		jaw, err = k.Translate(jaw, geom.V(float64(i)*cfg.JawDemoSpacing, 0, 0))
		if err != nil {
			return nil, fmt.Errorf("demo jaw %s: %w", v, err)
		}
		jaws = append(jaws, jaw)
	}
	return kernel.UnionAll(k, jaws...)
}
