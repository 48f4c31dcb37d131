package kernel

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/marcuswu/spring-rail-vise/internal/geom"
)

// UnionAll folds Union over solids from left to right.
func UnionAll(k Kernel, solids ...Solid) (Solid, error) {
	if len(solids) == 0 {
		return nil, errors.New("union of no solids")
	}
	out := solids[0]
	for _, s := range solids[1:] {
		var err error
		out, err = k.Union(out, s)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MaxFillet finds the largest radius up to limit that the kernel can
// fillet s with, keeping the edges of face keep sharp. The search tries
// limit first and then bisects, calling Fillet at most iterations times.
// It returns the filleted solid and the radius used.
func MaxFillet(k Kernel, s Solid, keep geom.Face, limit float64, iterations int) (Solid, float64, error) {
	if limit <= 0 || iterations < 1 {
		return nil, 0, fmt.Errorf("max fillet: limit %g, iterations %d: %w", limit, iterations, ErrNoFillet)
	}

	var (
		best    Solid
		bestR   float64
		lastErr error
	)
	lo, hi, r := 0.0, limit, limit
	for i := 0; i < iterations; i++ {
		out, err := k.Fillet(s, keep, r)
		if err == nil {
			best, bestR, lo = out, r, r
			if r == hi {
				break
			}
		} else {
			lastErr = err
			hi = r
		}
		r = (lo + hi) / 2
	}
	if best == nil {
		return nil, 0, fmt.Errorf("max fillet below %g after %d tries: %w (last: %v)", limit, iterations, ErrNoFillet, lastErr)
	}
	log.Debug().Float64("radius", bestR).Float64("limit", limit).Stringer("keep", keep).Msg("fillet applied")
	return best, bestR, nil
}

// ThroughCut removes a cylinder of the given radius from target along
// axis, passing through point at. The cutter is sized from the target's
// bounds plus margin at each end, so it always fully penetrates.
func ThroughCut(k Kernel, target Solid, radius float64, axis geom.Axis, at geom.Vec, margin float64) (Solid, error) {
	cutter, err := ThroughCylinder(target.Bounds(), radius, axis, at, margin)
	if err != nil {
		return nil, err
	}
	c, err := k.Cylinder(cutter.Radius, cutter.Height, cutter.At)
	if err != nil {
		return nil, err
	}
	return k.Difference(target, c)
}

// Cutter describes a cylinder sized to pass through a solid.
type Cutter struct {
	Radius float64
	Height float64
	At     geom.Placement
}

// ThroughCylinder sizes a cutter along axis through point at for a
// target with bounds b.
func ThroughCylinder(b geom.Bounds, radius float64, axis geom.Axis, at geom.Vec, margin float64) (Cutter, error) {
	if radius <= 0 {
		return Cutter{}, fmt.Errorf("through cut: radius %g must be positive", radius)
	}
	if margin <= 0 {
		return Cutter{}, fmt.Errorf("through cut: margin %g must be positive", margin)
	}
	mid := (axis.Of(b.Min) + axis.Of(b.Max)) / 2
	center := at
	switch axis {
	case geom.X:
		center.X = mid
	case geom.Y:
		center.Y = mid
	default:
		center.Z = mid
	}
	return Cutter{
		Radius: radius,
		Height: b.Extent(axis) + 2*margin,
		At:     geom.Along(axis, center),
	}, nil
}

// CheckPrism validates the arguments of Kernel.Prism.
func CheckPrism(outline []geom.Vec2, height float64) error {
	if len(outline) < 3 {
		return fmt.Errorf("prism: outline has %d points: %w", len(outline), geom.ErrPolygon)
	}
	if height <= 0 {
		return fmt.Errorf("prism: height %g must be positive", height)
	}
	if a := geom.Area(outline); a > -1e-9 && a < 1e-9 {
		return fmt.Errorf("prism: outline has no area: %w", geom.ErrPolygon)
	}
	return nil
}

// ChamferWedge bevels the edge of s where faces a and b of its bounds
// meet by subtracting a square bar turned 45 degrees about the edge. It
// serves backends that cannot chamfer a picked edge.
func ChamferWedge(k Kernel, s Solid, a, b geom.Face, size, margin float64) (Solid, error) {
	bar, err := ChamferBar(s.Bounds(), a, b, size, margin)
	if err != nil {
		return nil, err
	}
	wedge, err := k.Box(bar.Size, bar.At)
	if err != nil {
		return nil, err
	}
	return k.Difference(s, wedge)
}

// Bar is a box cutter.
type Bar struct {
	Size geom.Vec
	At   geom.Placement
}

// ChamferBar sizes the bar ChamferWedge cuts with.
func ChamferBar(bounds geom.Bounds, a, b geom.Face, size, margin float64) (Bar, error) {
	if a.Axis == b.Axis {
		return Bar{}, fmt.Errorf("chamfer: faces %s and %s do not meet", a, b)
	}
	if size <= 0 {
		return Bar{}, fmt.Errorf("chamfer: size %g must be positive", size)
	}
	along := geom.Axis(3 - int(a.Axis) - int(b.Axis))

	side := size * math.Sqrt2
	var dims, at, rot [3]float64
	dims[a.Axis], dims[b.Axis] = side, side
	dims[along] = bounds.Extent(along) + 2*margin
	at[a.Axis], at[b.Axis] = bounds.At(a), bounds.At(b)
	at[along] = along.Of(bounds.Center())
	rot[along] = 45

	return Bar{
		Size: geom.V(dims[0], dims[1], dims[2]),
		At:   geom.Placement{At: geom.V(at[0], at[1], at[2]), Rot: geom.V(rot[0], rot[1], rot[2])},
	}, nil
}
