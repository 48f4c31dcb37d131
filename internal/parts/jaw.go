package parts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/marcuswu/spring-rail-vise/internal/config"
	"github.com/marcuswu/spring-rail-vise/internal/geom"
	"github.com/marcuswu/spring-rail-vise/internal/kernel"
)

// ErrUnknownJawVariant is returned for a jaw variant outside the closed set.
var ErrUnknownJawVariant = errors.New("unknown jaw variant")

// JawVariant selects one of the interchangeable jaws.
type JawVariant uint8

const (
	// JawM3 has an M3 clearance hole for a thumb screw into a heat-set insert.
	JawM3 JawVariant = iota + 1
	// JawM8 has an M8 clamping bolt with a captive nut.
	JawM8
	// JawBackstop is a low fixed stop with no upper block.
	JawBackstop
	// JawNoHole is a plain jaw held by friction.
	JawNoHole
)

var jawNames = map[JawVariant]string{
	JawM3:       "m3",
	JawM8:       "m8",
	JawBackstop: "backstop",
	JawNoHole:   "no_hole",
}

// JawVariants returns every variant in display order.
func JawVariants() []JawVariant {
	return []JawVariant{JawM3, JawM8, JawBackstop, JawNoHole}
}

// ParseJawVariant maps a name such as "m8" to its variant.
func ParseJawVariant(name string) (JawVariant, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for v, s := range jawNames {
		if s == n {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownJawVariant, name)
}

func (v JawVariant) String() string {
	if s, ok := jawNames[v]; ok {
		return s
	}
	return fmt.Sprintf("jaw(%d)", uint8(v))
}

// Valid reports whether v is one of the declared variants.
func (v JawVariant) Valid() bool {
	_, ok := jawNames[v]
	return ok
}

// Nut is the hex pocket cut for a captive nut.
type Nut struct {
	Flats  float64
	Height float64
}

// JawSpec is the geometry record a variant selects.
type JawSpec struct {
	HoleD      float64 // 0 for no hole
	GripLength float64 // along X, beyond the clamping side of the body
	GripHeight float64
	Nut        *Nut
	UpperBlock bool
}

// Spec returns the geometry record for v using the hardware sizes in cfg.
func (v JawVariant) Spec(cfg config.Config) (JawSpec, error) {
	m8Nut := &Nut{Flats: cfg.M8.NutFlats, Height: cfg.M8.NutHeight}
	switch v {
	case JawM3:
		return JawSpec{HoleD: cfg.M3.ClearanceD, GripLength: 10, GripHeight: 8, UpperBlock: true}, nil
	case JawM8:
		return JawSpec{HoleD: cfg.M8.ClearanceD, GripLength: 14, GripHeight: 12, Nut: m8Nut, UpperBlock: true}, nil
	case JawBackstop:
		return JawSpec{HoleD: cfg.M8.ClearanceD, GripLength: 6, GripHeight: 12, Nut: m8Nut}, nil
	case JawNoHole:
		return JawSpec{GripLength: 10, GripHeight: 8, UpperBlock: true}, nil
	}
	return JawSpec{}, fmt.Errorf("%w: %s", ErrUnknownJawVariant, v)
}

// ClampingFace is the flat face that presses on the workpiece. It is the
// only face whose edges stay sharp.
var ClampingFace = geom.Face{Axis: geom.X, Side: geom.Max}

// Jaw builds one vise jaw seated on a rail that runs along X through the
// origin. The clamping face points to +X.
func Jaw(k kernel.Kernel, cfg config.Config, v JawVariant) (kernel.Solid, error) {
	spec, err := v.Spec(cfg)
	if err != nil {
		return nil, err
	}

	var (
		jx      = cfg.JawLengthX
		wy      = cfg.JawWidthY()
		tz      = cfg.RailThicknessZ()
		channel = tz/2 + cfg.JawClearance // half height of the rail channel
		bottom  = -channel - cfg.JawFloor
		roof    = channel + cfg.JawRoof
		top     = roof
	)
	if spec.UpperBlock {
		top += cfg.JawUpperHeight
	}

	lower, err := k.Box(geom.V(jx, wy, roof-bottom), geom.At(0, 0, (roof+bottom)/2))
	if err != nil {
		return nil, fmt.Errorf("jaw %s lower block: %w", v, err)
	}
	body := []kernel.Solid{lower}
	if spec.UpperBlock {
		upper, err := k.Box(geom.V(jx, wy, cfg.JawUpperHeight), geom.At(0, 0, roof+cfg.JawUpperHeight/2))
		if err != nil {
			return nil, fmt.Errorf("jaw %s upper block: %w", v, err)
		}
		body = append(body, upper)
	}
	grip, err := k.Box(
		geom.V(spec.GripLength, wy, spec.GripHeight),
		geom.At(jx/2+spec.GripLength/2, 0, top-spec.GripHeight/2),
	)
	if err != nil {
		return nil, fmt.Errorf("jaw %s grip block: %w", v, err)
	}
	body = append(body, grip)

	jaw, err := kernel.UnionAll(k, body...)
	if err != nil {
		return nil, fmt.Errorf("jaw %s body: %w", v, err)
	}
	jaw, _, err = kernel.MaxFillet(k, jaw, ClampingFace, cfg.JawFilletMax, cfg.FilletIterations)
	if err != nil {
		return nil, fmt.Errorf("jaw %s: %w", v, err)
	}

	// Rail channel, running out both ends of the jaw.
	length := jaw.Bounds().Extent(geom.X) + 2*cfg.CutMargin
	rail, err := railProfile(k, cfg.RailD(), tz, length, cfg.JawClearance, geom.V(jaw.Bounds().Center().X, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("jaw %s channel: %w", v, err)
	}
	if jaw, err = k.Difference(jaw, rail); err != nil {
		return nil, fmt.Errorf("jaw %s channel: %w", v, err)
	}

	if spec.HoleD > 0 {
		jaw, err = kernel.ThroughCut(k, jaw, spec.HoleD/2, geom.Z, geom.Vec{}, cfg.CutMargin)
		if err != nil {
			return nil, fmt.Errorf("jaw %s bolt hole: %w", v, err)
		}
	}

	if spec.Nut != nil {
		// The pocket opens into the channel ceiling so the nut drops in
		// from below before the jaw goes on the rail.
		h := spec.Nut.Height + cfg.CutMargin
		pocket, err := HexPrism(k, spec.Nut.Flats, h, geom.V(0, 0, channel-cfg.CutMargin+h/2))
		if err != nil {
			return nil, fmt.Errorf("jaw %s nut pocket: %w", v, err)
		}
		if jaw, err = k.Difference(jaw, pocket); err != nil {
			return nil, fmt.Errorf("jaw %s nut pocket: %w", v, err)
		}
	}

	if cfg.JawChamfer > 0 {
		// 45 degree relief along the top clamping edge for parts on the PCB.
		jaw, err = k.Chamfer(jaw, ClampingFace, geom.Face{Axis: geom.Z, Side: geom.Max}, cfg.JawChamfer)
		if err != nil {
			return nil, fmt.Errorf("jaw %s chamfer: %w", v, err)
		}
	}
	return jaw, nil
}
