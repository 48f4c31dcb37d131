package parts

import (
	"fmt"

	"github.com/marcuswu/spring-rail-vise/internal/geom"
	"github.com/marcuswu/spring-rail-vise/internal/kernel"
)

// arcSegments is how many straight edges approximate a quarter circle
// in a sketched outline.
const arcSegments = 12

// HexPrism returns a hexagonal prism with the given width across flats,
// standing along Z and centred on at. The corners point along ±X.
func HexPrism(k kernel.Kernel, flats, height float64, at geom.Vec) (kernel.Solid, error) {
	if flats <= 0 || height <= 0 {
		return nil, fmt.Errorf("hex prism: flats %g, height %g", flats, height)
	}
	return k.Prism(geom.Hexagon(flats), height, at)
}

// RoundedSlab returns a slab of size lx × ly × h centred on at whose four
// vertical edges are rounded with radius r.
func RoundedSlab(k kernel.Kernel, lx, ly, r, h float64, at geom.Vec) (kernel.Solid, error) {
	if r < 0 || 2*r > lx || 2*r > ly {
		return nil, fmt.Errorf("rounded slab: radius %g does not fit %g × %g", r, lx, ly)
	}
	return k.Prism(geom.RoundedRect(lx, ly, r, arcSegments), h, at)
}

// railProfile returns a length of rail centred on at and running along
// X: a round bar of diameter d clipped top and bottom to thickness tz.
// grow enlarges the profile on every side, for clearance cuts.
func railProfile(k kernel.Kernel, d, tz, length, grow float64, at geom.Vec) (kernel.Solid, error) {
	cyl, err := k.Cylinder(d/2+grow, length, geom.Along(geom.X, at))
	if err != nil {
		return nil, err
	}
	clip, err := k.Box(geom.V(length, 3*d, tz+2*grow), geom.Placement{At: at})
	if err != nil {
		return nil, err
	}
	return k.Intersection(cyl, clip)
}
