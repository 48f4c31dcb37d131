// Package kerneltest provides a recording kernel.Kernel for tests. Solids
// are trees of the calls that built them, with synthetic bounding boxes
// computed from the primitive sizes.
package kerneltest

import (
	"fmt"
	"os"

	"github.com/marcuswu/spring-rail-vise/internal/geom"
	"github.com/marcuswu/spring-rail-vise/internal/kernel"
)

// Kind names the call that produced a Solid.
type Kind string

const (
	KindBox          Kind = "box"
	KindCylinder     Kind = "cylinder"
	KindPrism        Kind = "prism"
	KindUnion        Kind = "union"
	KindDifference   Kind = "difference"
	KindIntersection Kind = "intersection"
	KindTranslate    Kind = "translate"
	KindFillet       Kind = "fillet"
	KindChamfer      Kind = "chamfer"
)

// Solid is a node in the recorded construction tree.
type Solid struct {
	Kind Kind

	Size    geom.Vec    // box
	Radius  float64     // cylinder, fillet
	Height  float64     // cylinder, prism
	Outline []geom.Vec2 // prism
	At      geom.Placement
	Offset  geom.Vec     // translate
	Keep    geom.Face    // fillet
	Faces   [2]geom.Face // chamfer
	Chamfer float64      // chamfer

	Children []*Solid
	bounds   geom.Bounds
}

// Bounds implements kernel.Solid.
func (s *Solid) Bounds() geom.Bounds { return s.bounds }

// Walk visits s and all of its descendants depth first.
func (s *Solid) Walk(fn func(*Solid)) {
	fn(s)
	for _, c := range s.Children {
		c.Walk(fn)
	}
}

// Cuts returns every tool subtracted anywhere in the tree of s.
func (s *Solid) Cuts() []*Solid {
	var out []*Solid
	s.Walk(func(n *Solid) {
		if n.Kind == KindDifference {
			out = append(out, n.Children[1])
		}
	})
	return out
}

// Leaves returns the primitives under s.
func (s *Solid) Leaves() []*Solid {
	var out []*Solid
	s.Walk(func(n *Solid) {
		if n.Kind == KindBox || n.Kind == KindCylinder || n.Kind == KindPrism {
			out = append(out, n)
		}
	})
	return out
}

// Find returns every node of the given kind under s.
func (s *Solid) Find(kind Kind) []*Solid {
	var out []*Solid
	s.Walk(func(n *Solid) {
		if n.Kind == kind {
			out = append(out, n)
		}
	})
	return out
}

// Export records one Export call.
type Export struct {
	Solid  *Solid
	Format kernel.Format
	Path   string
}

// Kernel records every call. The zero value is ready to use.
type Kernel struct {
	// FilletLimit makes Fillet fail above this radius when non-zero.
	FilletLimit float64
	// Unsupported lists formats Export refuses.
	Unsupported []kernel.Format

	Calls   int
	Fillets []float64
	Exports []Export
}

var _ kernel.Kernel = (*Kernel)(nil)

// New returns an empty recording kernel.
func New() *Kernel {
	return &Kernel{}
}

func unwrap(s kernel.Solid) (*Solid, error) {
	n, ok := s.(*Solid)
	if !ok || n == nil {
		return nil, fmt.Errorf("kerneltest: foreign solid %T", s)
	}
	return n, nil
}

func (k *Kernel) Box(size geom.Vec, at geom.Placement) (kernel.Solid, error) {
	k.Calls++
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("kerneltest: box size %v", size)
	}
	return &Solid{Kind: KindBox, Size: size, At: at, bounds: at.Bounds(size)}, nil
}

func (k *Kernel) Cylinder(radius, height float64, at geom.Placement) (kernel.Solid, error) {
	k.Calls++
	if radius <= 0 || height <= 0 {
		return nil, fmt.Errorf("kerneltest: cylinder r=%g h=%g", radius, height)
	}
	b := at.Bounds(geom.V(2*radius, 2*radius, height))
	return &Solid{Kind: KindCylinder, Radius: radius, Height: height, At: at, bounds: b}, nil
}

func (k *Kernel) Prism(outline []geom.Vec2, height float64, at geom.Vec) (kernel.Solid, error) {
	k.Calls++
	if err := kernel.CheckPrism(outline, height); err != nil {
		return nil, err
	}
	return &Solid{
		Kind:    KindPrism,
		Outline: append([]geom.Vec2(nil), outline...),
		Height:  height,
		At:      geom.Placement{At: at},
		bounds:  geom.PolygonBounds(outline, height, at),
	}, nil
}

func (k *Kernel) boolean(kind Kind, a, b kernel.Solid) (kernel.Solid, error) {
	k.Calls++
	na, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	nb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	out := &Solid{Kind: kind, Children: []*Solid{na, nb}}
	switch kind {
	case KindUnion:
		out.bounds = na.bounds.Union(nb.bounds)
	case KindIntersection:
		out.bounds = na.bounds.Intersect(nb.bounds)
	default:
		out.bounds = na.bounds
	}
	return out, nil
}

func (k *Kernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean(KindUnion, a, b)
}

func (k *Kernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean(KindDifference, a, b)
}

func (k *Kernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean(KindIntersection, a, b)
}

func (k *Kernel) Translate(s kernel.Solid, v geom.Vec) (kernel.Solid, error) {
	k.Calls++
	n, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	return &Solid{Kind: KindTranslate, Offset: v, Children: []*Solid{n}, bounds: n.bounds.Translate(v)}, nil
}

func (k *Kernel) Fillet(s kernel.Solid, keep geom.Face, radius float64) (kernel.Solid, error) {
	k.Calls++
	n, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	k.Fillets = append(k.Fillets, radius)
	if k.FilletLimit > 0 && radius > k.FilletLimit {
		return nil, fmt.Errorf("kerneltest: fillet radius %g above limit %g", radius, k.FilletLimit)
	}
	return &Solid{Kind: KindFillet, Radius: radius, Keep: keep, Children: []*Solid{n}, bounds: n.bounds}, nil
}

func (k *Kernel) Chamfer(s kernel.Solid, a, b geom.Face, size float64) (kernel.Solid, error) {
	k.Calls++
	n, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	if a.Axis == b.Axis || size <= 0 {
		return nil, fmt.Errorf("kerneltest: chamfer %s/%s size %g", a, b, size)
	}
	return &Solid{Kind: KindChamfer, Faces: [2]geom.Face{a, b}, Chamfer: size, Children: []*Solid{n}, bounds: n.bounds}, nil
}

// Export writes a one-line placeholder file so callers can check paths.
func (k *Kernel) Export(s kernel.Solid, format kernel.Format, path string) error {
	n, err := unwrap(s)
	if err != nil {
		return err
	}
	for _, f := range k.Unsupported {
		if f == format {
			return fmt.Errorf("kerneltest: %s: %w", format, kernel.ErrUnsupportedFormat)
		}
	}
	k.Exports = append(k.Exports, Export{Solid: n, Format: format, Path: path})
	return os.WriteFile(path, []byte(fmt.Sprintf("%s %s\n", format, n.Kind)), 0o644)
}
