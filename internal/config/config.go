// Package config holds the physical dimensions and tolerances of the
// fixture. A Config is a plain value: builders receive a copy and never
// modify it.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Fastener describes a metric screw and its hex nut. All sizes in mm.
type Fastener struct {
	ClearanceD float64 `json:"clearance_d"`
	NutFlats   float64 `json:"nut_flats"`
	NutHeight  float64 `json:"nut_height"`
}

// NutCorners returns the across-corners width of the nut.
func (f Fastener) NutCorners() float64 {
	return f.NutFlats * 2 / math.Sqrt(3)
}

// Config is the full parameter set for one run.
type Config struct {
	SpringD float64 `json:"spring_d"`

	// The rail must fit within the spring but is clipped to a rectangle.
	RailSpringGap      float64 `json:"rail_spring_gap"`
	RailThicknessRatio float64 `json:"rail_thickness_ratio"`
	RailRaiseDistZ     float64 `json:"rail_raise_dist_z"` // bottom of the rail down to the plate
	RailLengthX        float64 `json:"rail_length_x"`
	RailPillarRatio    float64 `json:"rail_pillar_ratio"`

	RailPlateT           float64 `json:"rail_plate_t"`
	RailPlateW           float64 `json:"rail_plate_w"`
	RailPlateCornerRatio float64 `json:"rail_plate_corner_ratio"`
	PlateWallT           float64 `json:"plate_wall_t"`
	PlateWallH           float64 `json:"plate_wall_h"`
	PlateFilletMax       float64 `json:"plate_fillet_max"`

	JawLengthX     float64 `json:"jaw_length_x"`
	JawWall        float64 `json:"jaw_wall"`
	JawFloor       float64 `json:"jaw_floor"`
	JawRoof        float64 `json:"jaw_roof"`
	JawUpperHeight float64 `json:"jaw_upper_height"`
	JawClearance   float64 `json:"jaw_clearance"`
	JawChamfer     float64 `json:"jaw_chamfer"`
	JawFilletMax   float64 `json:"jaw_fillet_max"`
	JawDemoSpacing float64 `json:"jaw_demo_spacing"`

	M3 Fastener `json:"m3"` // rail pillar screws
	M8 Fastener `json:"m8"` // jaw clamping bolt

	MinNutWall       float64 `json:"min_nut_wall"`
	FilletIterations int     `json:"fillet_iterations"`
	CutMargin        float64 `json:"cut_margin"`
}

// Default returns the dimensions of the printed prototype.
func Default() Config {
	return Config{
		SpringD:            20,
		RailSpringGap:      2,
		RailThicknessRatio: 0.66,
		RailRaiseDistZ:     8,
		RailLengthX:        220,
		RailPillarRatio:    0.75,

		RailPlateT:           4,
		RailPlateW:           40,
		RailPlateCornerRatio: 0.4,
		PlateWallT:           2,
		PlateWallH:           3,
		PlateFilletMax:       1.5,

		JawLengthX:     20,
		JawWall:        4,
		JawFloor:       3,
		JawRoof:        12,
		JawUpperHeight: 10,
		JawClearance:   0.3,
		JawChamfer:     4,
		JawFilletMax:   2,
		JawDemoSpacing: 50,

		M3: Fastener{ClearanceD: 3.2, NutFlats: 5.5, NutHeight: 4},
		M8: Fastener{ClearanceD: 8.4, NutFlats: 13 + 0.2, NutHeight: 8},

		MinNutWall:       1.2,
		FilletIterations: 8,
		CutMargin:        1,
	}
}

// Load reads JSON overrides from path on top of Default and validates
// the result. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// RailD is the rail diameter.
func (c Config) RailD() float64 { return c.SpringD - c.RailSpringGap }

// RailThicknessZ is the height of the rail after clipping.
func (c Config) RailThicknessZ() float64 { return c.SpringD * c.RailThicknessRatio }

// RailPillarD is the diameter of the end pillars under the rail.
func (c Config) RailPillarD() float64 { return c.RailD() * c.RailPillarRatio }

// PillarX is the distance from the rail centre to each pillar screw.
func (c Config) PillarX() float64 { return (c.RailLengthX - c.RailPillarD()) / 2 }

// PillarOffsets returns the X positions of both pillar screws.
func (c Config) PillarOffsets() [2]float64 {
	return [2]float64{c.PillarX(), -c.PillarX()}
}

// JawWidthY is the width of a jaw across the rail.
func (c Config) JawWidthY() float64 { return c.RailD() + 2*c.JawWall }

// Validate checks that every dimension is usable and that each nut
// pocket leaves enough material around it.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"spring_d", c.SpringD},
		{"rail_d", c.RailD()},
		{"rail_thickness_z", c.RailThicknessZ()},
		{"rail_raise_dist_z", c.RailRaiseDistZ},
		{"rail_length_x", c.RailLengthX},
		{"rail_pillar_d", c.RailPillarD()},
		{"rail_plate_t", c.RailPlateT},
		{"rail_plate_w", c.RailPlateW},
		{"plate_wall_t", c.PlateWallT},
		{"plate_wall_h", c.PlateWallH},
		{"plate_fillet_max", c.PlateFilletMax},
		{"jaw_length_x", c.JawLengthX},
		{"jaw_wall", c.JawWall},
		{"jaw_floor", c.JawFloor},
		{"jaw_roof", c.JawRoof},
		{"jaw_upper_height", c.JawUpperHeight},
		{"jaw_fillet_max", c.JawFilletMax},
		{"m3.clearance_d", c.M3.ClearanceD},
		{"m3.nut_flats", c.M3.NutFlats},
		{"m3.nut_height", c.M3.NutHeight},
		{"m8.clearance_d", c.M8.ClearanceD},
		{"m8.nut_flats", c.M8.NutFlats},
		{"m8.nut_height", c.M8.NutHeight},
		{"cut_margin", c.CutMargin},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalid, p.name, p.v)
		}
	}
	if c.JawClearance < 0 || c.JawChamfer < 0 || c.MinNutWall < 0 || c.JawDemoSpacing < 0 {
		return fmt.Errorf("%w: clearances, chamfer, nut wall and spacing must not be negative", ErrInvalid)
	}
	if c.RailThicknessZ() >= c.RailD() {
		return fmt.Errorf("%w: rail thickness %g must be less than rail diameter %g",
			ErrInvalid, c.RailThicknessZ(), c.RailD())
	}
	if c.RailPillarD() >= c.RailPlateW {
		return fmt.Errorf("%w: rail pillar %g must be narrower than the plate %g",
			ErrInvalid, c.RailPillarD(), c.RailPlateW)
	}
	if r := c.RailPlateW * c.RailPlateCornerRatio; r <= c.PlateWallT || r > c.RailPlateW/2 {
		return fmt.Errorf("%w: plate corner radius %g must lie in (%g, %g]",
			ErrInvalid, r, c.PlateWallT, c.RailPlateW/2)
	}
	if c.FilletIterations < 1 {
		return fmt.Errorf("%w: fillet_iterations must be at least 1", ErrInvalid)
	}
	if c.JawDemoSpacing > 0 && c.JawDemoSpacing < c.JawLengthX {
		return fmt.Errorf("%w: jaw_demo_spacing %g lets demo jaws overlap", ErrInvalid, c.JawDemoSpacing)
	}
	return c.checkNutMaterial()
}

func (c Config) checkNutMaterial() error {
	// The jaw nut sits in the roof above the rail channel.
	if wall := c.JawRoof - c.M8.NutHeight; wall < c.MinNutWall {
		return fmt.Errorf("%w: jaw roof leaves %.2f mm above the nut pocket, need %.2f",
			ErrInvalid, wall, c.MinNutWall)
	}
	if wall := (c.JawWidthY() - c.M8.NutCorners()) / 2; wall < c.MinNutWall {
		return fmt.Errorf("%w: jaw walls leave %.2f mm beside the nut pocket, need %.2f",
			ErrInvalid, wall, c.MinNutWall)
	}
	// The pocket's corners point along the rail, towards the jaw ends.
	if wall := (c.JawLengthX - c.M8.NutCorners()) / 2; wall < c.MinNutWall {
		return fmt.Errorf("%w: jaw ends leave %.2f mm beside the nut pocket, need %.2f",
			ErrInvalid, wall, c.MinNutWall)
	}
	// The pillar nut pocket is centred under the pillar.
	if wall := (c.RailPillarD() - c.M3.NutCorners()) / 2; wall < c.MinNutWall {
		return fmt.Errorf("%w: rail pillar leaves %.2f mm around the nut pocket, need %.2f",
			ErrInvalid, wall, c.MinNutWall)
	}
	return nil
}
