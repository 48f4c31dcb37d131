// Package kernel defines the solid-modeling capabilities the part
// builders rely on. Backends (occ, sdfx) implement Kernel; the builders
// never see backend types, so they can be exercised against the
// recording fake in kerneltest.
package kernel

import (
	"errors"
	"fmt"

	"github.com/marcuswu/spring-rail-vise/internal/geom"
)

var (
	// ErrUnsupportedFormat is returned by Export for formats a backend
	// cannot write.
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrNoFillet is returned by MaxFillet when no radius succeeded.
	ErrNoFillet = errors.New("no fillet radius succeeded")
)

// Solid is an opaque handle to a backend solid.
type Solid interface {
	// Bounds returns the axis-aligned bounding box.
	Bounds() geom.Bounds
}

// Format is an export file format.
type Format int

const (
	// STL is a triangle mesh.
	STL Format = iota
	// STEP is a boundary-representation exchange file.
	STEP
)

func (f Format) String() string {
	switch f {
	case STL:
		return "stl"
	case STEP:
		return "step"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + f.String()
}

// Formats lists every format a part is exported to.
var Formats = []Format{STL, STEP}

// Kernel is the capability interface over a solid-modeling backend.
type Kernel interface {
	// Box returns a box of the given size centred on the placement.
	Box(size geom.Vec, at geom.Placement) (Solid, error)
	// Cylinder returns a cylinder along the placement's local Z axis,
	// centred on the placement.
	Cylinder(radius, height float64, at geom.Placement) (Solid, error)
	// Prism extrudes a closed outline in the XY plane along Z by height,
	// centred on at.
	Prism(outline []geom.Vec2, height float64, at geom.Vec) (Solid, error)

	Union(a, b Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)
	Intersection(a, b Solid) (Solid, error)

	Translate(s Solid, v geom.Vec) (Solid, error)

	// Fillet rounds every edge of s with the given radius except the
	// edges lying on face keep, which stay sharp. It fails when the
	// backend cannot build the rounded solid.
	Fillet(s Solid, keep geom.Face, radius float64) (Solid, error)
	// Chamfer bevels the edge where faces a and b of the bounding box of
	// s meet, cutting size back along each face.
	Chamfer(s Solid, a, b geom.Face, size float64) (Solid, error)

	// Export writes s to path in the given format.
	Export(s Solid, format Format, path string) error
}
