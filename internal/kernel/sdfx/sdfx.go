// Package sdfx implements kernel.Kernel with the github.com/deadsy/sdfx
// signed distance function library. It writes STL only.
//
// A solid remembers how to rebuild its distance field with every edge
// rounded by a given radius: primitives use sdfx's rounded boxes,
// cylinders and extrusions, and booleans blend with a rounded minimum.
// Fillet is that rebuild.
package sdfx

import (
	"fmt"
	"math"
	"os"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/marcuswu/spring-rail-vise/internal/geom"
	"github.com/marcuswu/spring-rail-vise/internal/kernel"
)

var _ kernel.Kernel = (*Kernel)(nil)

// DefaultMeshCells is the marching cubes resolution along the longest
// side of a part.
const DefaultMeshCells = 300

// builder returns the distance field with edges rounded by round.
type builder func(round float64) (sdf.SDF3, error)

// solid carries its own bounds. sdfx only approximates the box of an
// intersection, and the builders place parts from these bounds.
type solid struct {
	build  builder
	bounds geom.Bounds
}

func (s *solid) Bounds() geom.Bounds { return s.bounds }

// Kernel implements kernel.Kernel on sdfx.
type Kernel struct {
	MeshCells int
}

// New returns a Kernel with the default mesh resolution.
func New() *Kernel {
	return &Kernel{MeshCells: DefaultMeshCells}
}

func unwrap(s kernel.Solid) (*solid, error) {
	w, ok := s.(*solid)
	if !ok || w == nil {
		return nil, fmt.Errorf("sdfx: foreign solid %T", s)
	}
	return w, nil
}

// field returns the unrounded distance field of s.
func field(s kernel.Solid) (sdf.SDF3, error) {
	w, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	return w.build(0)
}

func sdfVec(v geom.Vec) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// matrix converts a placement to the equivalent sdfx transform: rotate
// about X, then Y, then Z, then translate.
func matrix(p geom.Placement) sdf.M44 {
	m := sdf.Translate3d(sdfVec(p.At))
	if p.Rot == (geom.Vec{}) {
		return m
	}
	return m.Mul(sdf.RotateZ(radians(p.Rot.Z))).
		Mul(sdf.RotateY(radians(p.Rot.Y))).
		Mul(sdf.RotateX(radians(p.Rot.X)))
}

func (k *Kernel) Box(size geom.Vec, at geom.Placement) (kernel.Solid, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("sdfx box: size %v must be positive", size)
	}
	m := matrix(at)
	thinnest := min(size.X, size.Y, size.Z)
	build := func(round float64) (sdf.SDF3, error) {
		if 2*round >= thinnest {
			return nil, fmt.Errorf("sdfx box %v: cannot round by %g", size, round)
		}
		s, err := sdf.Box3D(sdfVec(size), round)
		if err != nil {
			return nil, fmt.Errorf("sdfx box %v: %w", size, err)
		}
		return sdf.Transform3D(s, m), nil
	}
	return &solid{build: build, bounds: at.Bounds(size)}, nil
}

func (k *Kernel) Cylinder(radius, height float64, at geom.Placement) (kernel.Solid, error) {
	if radius <= 0 || height <= 0 {
		return nil, fmt.Errorf("sdfx cylinder: r=%g h=%g must be positive", radius, height)
	}
	m := matrix(at)
	build := func(round float64) (sdf.SDF3, error) {
		if round >= radius || 2*round >= height {
			return nil, fmt.Errorf("sdfx cylinder r=%g h=%g: cannot round by %g", radius, height, round)
		}
		s, err := sdf.Cylinder3D(height, radius, round)
		if err != nil {
			return nil, fmt.Errorf("sdfx cylinder r=%g h=%g: %w", radius, height, err)
		}
		return sdf.Transform3D(s, m), nil
	}
	return &solid{build: build, bounds: at.Bounds(geom.V(2*radius, 2*radius, height))}, nil
}

// Prism rounds by extruding the outline inset by the radius with a
// rounded extrusion, which grows it back out with arcs at the corners.
// Only convex outlines can be rounded.
func (k *Kernel) Prism(outline []geom.Vec2, height float64, at geom.Vec) (kernel.Solid, error) {
	if err := kernel.CheckPrism(outline, height); err != nil {
		return nil, err
	}
	pts := append([]geom.Vec2(nil), outline...)
	m := sdf.Translate3d(sdfVec(at))
	build := func(round float64) (sdf.SDF3, error) {
		if 2*round >= height {
			return nil, fmt.Errorf("sdfx prism h=%g: cannot round by %g", height, round)
		}
		profile := pts
		if round > 0 {
			inset, err := geom.Inset(pts, round)
			if err != nil {
				return nil, fmt.Errorf("sdfx prism: %w", err)
			}
			profile = inset
		}
		vs := make([]v2.Vec, len(profile))
		for i, p := range profile {
			vs[i] = v2.Vec{X: p.X, Y: p.Y}
		}
		poly, err := sdf.Polygon2D(vs)
		if err != nil {
			return nil, fmt.Errorf("sdfx prism: %w", err)
		}
		s, err := sdf.ExtrudeRounded3D(poly, height, round)
		if err != nil {
			return nil, fmt.Errorf("sdfx prism: %w", err)
		}
		return sdf.Transform3D(s, m), nil
	}
	return &solid{build: build, bounds: geom.PolygonBounds(outline, height, at)}, nil
}

func pair(a, b kernel.Solid) (*solid, *solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, nil, err
	}
	return sa, sb, nil
}

func both(a, b *solid, round float64) (sdf.SDF3, sdf.SDF3, error) {
	fa, err := a.build(round)
	if err != nil {
		return nil, nil, err
	}
	fb, err := b.build(round)
	if err != nil {
		return nil, nil, err
	}
	return fa, fb, nil
}

type minSetter interface{ SetMin(sdf.MinFunc) }

type maxSetter interface{ SetMax(sdf.MaxFunc) }

// blendMax rounds the edges a difference or intersection creates.
func blendMax(s sdf.SDF3, round float64) sdf.SDF3 {
	if m, ok := s.(maxSetter); ok && round > 0 {
		m.SetMax(sdf.PolyMax(round))
	}
	return s
}

func (k *Kernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	sa, sb, err := pair(a, b)
	if err != nil {
		return nil, err
	}
	build := func(round float64) (sdf.SDF3, error) {
		fa, fb, err := both(sa, sb, round)
		if err != nil {
			return nil, err
		}
		u := sdf.Union3D(fa, fb)
		if m, ok := u.(minSetter); ok && round > 0 {
			m.SetMin(sdf.RoundMin(round))
		}
		return u, nil
	}
	return &solid{build: build, bounds: sa.bounds.Union(sb.bounds)}, nil
}

// Difference rounds the kept body only. The tool stays sharp so holes
// keep their size.
func (k *Kernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	sa, sb, err := pair(a, b)
	if err != nil {
		return nil, err
	}
	build := func(round float64) (sdf.SDF3, error) {
		fa, err := sa.build(round)
		if err != nil {
			return nil, err
		}
		fb, err := sb.build(0)
		if err != nil {
			return nil, err
		}
		return blendMax(sdf.Difference3D(fa, fb), round), nil
	}
	return &solid{build: build, bounds: sa.bounds}, nil
}

func (k *Kernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	sa, sb, err := pair(a, b)
	if err != nil {
		return nil, err
	}
	build := func(round float64) (sdf.SDF3, error) {
		fa, fb, err := both(sa, sb, round)
		if err != nil {
			return nil, err
		}
		return blendMax(sdf.Intersect3D(fa, fb), round), nil
	}
	return &solid{build: build, bounds: sa.bounds.Intersect(sb.bounds)}, nil
}

func (k *Kernel) Translate(s kernel.Solid, v geom.Vec) (kernel.Solid, error) {
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	m := sdf.Translate3d(sdfVec(v))
	build := func(round float64) (sdf.SDF3, error) {
		f, err := ss.build(round)
		if err != nil {
			return nil, err
		}
		return sdf.Transform3D(f, m), nil
	}
	return &solid{build: build, bounds: ss.bounds.Translate(v)}, nil
}

// Fillet rebuilds s with every edge rounded by radius. The slab of
// material within radius of the kept face is added back unrounded, so
// that face and its edges stay sharp. The result does not round again
// when an enclosing solid is filleted.
func (k *Kernel) Fillet(s kernel.Solid, keep geom.Face, radius float64) (kernel.Solid, error) {
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	b := ss.bounds
	if radius <= 0 || 2*radius >= b.MinExtent() {
		return nil, fmt.Errorf("sdfx fillet: radius %g does not fit a part %v wide", radius, b.Size())
	}

	rounded, err := ss.build(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx fillet r=%g: %w", radius, err)
	}
	sharp, err := ss.build(0)
	if err != nil {
		return nil, err
	}
	slab := b.Slab(keep, radius)
	box, err := sdf.Box3D(sdfVec(slab.Size()), 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx fillet: %w", err)
	}
	kept := sdf.Intersect3D(sharp, sdf.Transform3D(box, sdf.Translate3d(sdfVec(slab.Center()))))
	out := sdf.Union3D(rounded, kept)

	return &solid{build: func(float64) (sdf.SDF3, error) { return out, nil }, bounds: b}, nil
}

// Chamfer cuts a 45 degree wedge along the edge.
func (k *Kernel) Chamfer(s kernel.Solid, a, b geom.Face, size float64) (kernel.Solid, error) {
	return kernel.ChamferWedge(k, s, a, b, size, size)
}

// Export writes STL files. STEP needs a boundary representation, which
// a distance field does not have.
func (k *Kernel) Export(s kernel.Solid, format kernel.Format, path string) error {
	f, err := field(s)
	if err != nil {
		return err
	}
	if format != kernel.STL {
		return fmt.Errorf("sdfx: %s: %w", format, kernel.ErrUnsupportedFormat)
	}
	cells := k.MeshCells
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	render.ToSTL(f, path, render.NewMarchingCubesUniform(cells))

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("sdfx: write %s: %w", path, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("sdfx: %s is empty", path)
	}
	return nil
}
