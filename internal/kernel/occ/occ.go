// Package occ implements kernel.Kernel on OpenCASCADE through makercad.
// It is the only backend that writes STEP.
//
// Solids are kept as construction trees and turned into makercad shapes
// when they are filleted or exported. Translations are applied to the
// primitive placements during that evaluation, so a translated solid is
// rebuilt in place rather than moved.
package occ

import (
	"fmt"
	"math"
	"os"

	"github.com/marcuswu/makercad"
	"github.com/marcuswu/makercad/sketcher"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/marcuswu/spring-rail-vise/internal/geom"
	"github.com/marcuswu/spring-rail-vise/internal/kernel"
)

var _ kernel.Kernel = (*Kernel)(nil)

// edgeTolerance decides whether an edge lies on a kept face.
const edgeTolerance = 1e-6

type op int

const (
	opBox op = iota
	opCylinder
	opUnion
	opDifference
	opIntersection
	opTranslate
	opFillet
	opPrism
	opChamfer
)

type node struct {
	op      op
	size    geom.Vec
	radius  float64
	height  float64
	at      geom.Placement
	offset  geom.Vec
	keep    geom.Face
	faces   [2]geom.Face
	outline []geom.Vec2 // prism profile around at.At
	a, b    *node
	bounds  geom.Bounds

	// shape caches the evaluation at zero offset.
	shape *makercad.Shape
}

func (n *node) Bounds() geom.Bounds { return n.bounds }

// Kernel implements kernel.Kernel with makercad.
type Kernel struct {
	cad *makercad.MakerCad
}

// New returns a Kernel with its own makercad session.
func New() *Kernel {
	return &Kernel{cad: makercad.NewMakerCad()}
}

func unwrap(s kernel.Solid) (*node, error) {
	n, ok := s.(*node)
	if !ok || n == nil {
		return nil, fmt.Errorf("occ: foreign solid %T", s)
	}
	return n, nil
}

func (k *Kernel) Box(size geom.Vec, at geom.Placement) (kernel.Solid, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("occ box: size %v must be positive", size)
	}
	return &node{op: opBox, size: size, at: at, bounds: at.Bounds(size)}, nil
}

func (k *Kernel) Cylinder(radius, height float64, at geom.Placement) (kernel.Solid, error) {
	if radius <= 0 || height <= 0 {
		return nil, fmt.Errorf("occ cylinder: r=%g h=%g must be positive", radius, height)
	}
	b := at.Bounds(geom.V(2*radius, 2*radius, height))
	return &node{op: opCylinder, radius: radius, height: height, at: at, bounds: b}, nil
}

func (k *Kernel) Prism(outline []geom.Vec2, height float64, at geom.Vec) (kernel.Solid, error) {
	if err := kernel.CheckPrism(outline, height); err != nil {
		return nil, err
	}
	return &node{
		op:      opPrism,
		outline: append([]geom.Vec2(nil), outline...),
		height:  height,
		at:      geom.Placement{At: at},
		bounds:  geom.PolygonBounds(outline, height, at),
	}, nil
}

func (k *Kernel) boolean(o op, a, b kernel.Solid) (kernel.Solid, error) {
	na, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	nb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	n := &node{op: o, a: na, b: nb}
	switch o {
	case opUnion:
		n.bounds = na.bounds.Union(nb.bounds)
	case opIntersection:
		n.bounds = na.bounds.Intersect(nb.bounds)
	default:
		n.bounds = na.bounds
	}
	return n, nil
}

func (k *Kernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean(opUnion, a, b)
}

func (k *Kernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean(opDifference, a, b)
}

func (k *Kernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean(opIntersection, a, b)
}

func (k *Kernel) Translate(s kernel.Solid, v geom.Vec) (kernel.Solid, error) {
	n, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	return &node{op: opTranslate, a: n, offset: v, bounds: n.bounds.Translate(v)}, nil
}

// Fillet evaluates the rounded solid straight away so a radius the
// kernel cannot build is reported to the caller.
func (k *Kernel) Fillet(s kernel.Solid, keep geom.Face, radius float64) (kernel.Solid, error) {
	n, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	if radius <= 0 {
		return nil, fmt.Errorf("occ fillet: radius %g must be positive", radius)
	}
	f := &node{op: opFillet, a: n, keep: keep, radius: radius, bounds: n.bounds}
	if _, err := k.eval(f, geom.Vec{}); err != nil {
		return nil, err
	}
	return f, nil
}

// Chamfer evaluates straight away, like Fillet.
func (k *Kernel) Chamfer(s kernel.Solid, a, b geom.Face, size float64) (kernel.Solid, error) {
	n, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	if a.Axis == b.Axis {
		return nil, fmt.Errorf("occ chamfer: faces %s and %s do not meet", a, b)
	}
	if size <= 0 {
		return nil, fmt.Errorf("occ chamfer: size %g must be positive", size)
	}
	c := &node{op: opChamfer, a: n, faces: [2]geom.Face{a, b}, radius: size, bounds: n.bounds}
	if _, err := k.eval(c, geom.Vec{}); err != nil {
		return nil, err
	}
	return c, nil
}

// Export writes STL at high quality, or STEP.
func (k *Kernel) Export(s kernel.Solid, format kernel.Format, path string) error {
	n, err := unwrap(s)
	if err != nil {
		return err
	}
	if format != kernel.STL && format != kernel.STEP {
		return fmt.Errorf("occ: %s: %w", format, kernel.ErrUnsupportedFormat)
	}
	shape, err := k.eval(n, geom.Vec{})
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("occ: replace %s: %w", path, err)
	}

	shapes := makercad.ListOfShape{shape}
	switch format {
	case kernel.STL:
		k.cad.ExportStl(path, shapes, makercad.QualityHigh)
	case kernel.STEP:
		k.cad.ExportStep(path, shapes)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("occ: %s export of %s failed: %w", format, path, err)
	}
	return nil
}

// eval builds the makercad shape for n moved by off.
func (k *Kernel) eval(n *node, off geom.Vec) (*makercad.Shape, error) {
	zero := off == (geom.Vec{})
	if zero && n.shape != nil {
		return n.shape, nil
	}

	var (
		shape *makercad.Shape
		err   error
	)
	switch n.op {
	case opBox:
		shape = k.cad.MakeBox(plane(n.at.Moved(off), n.size.Z), n.size.X, n.size.Y, n.size.Z, true)
	case opCylinder:
		shape = k.cad.MakeCylinder(plane(n.at.Moved(off), n.height), n.radius, n.height)
	case opUnion, opDifference, opIntersection:
		shape, err = k.evalBoolean(n, off)
	case opTranslate:
		shape, err = k.eval(n.a, r3.Add(off, n.offset))
	case opFillet:
		shape, err = k.evalFillet(n, off)
	case opPrism:
		shape, err = k.evalPrism(n, off)
	case opChamfer:
		shape, err = k.evalChamfer(n, off)
	default:
		err = fmt.Errorf("occ: unknown operation %d", n.op)
	}
	if err != nil {
		return nil, err
	}
	if zero {
		n.shape = shape
	}
	return shape, nil
}

func (k *Kernel) evalBoolean(n *node, off geom.Vec) (*makercad.Shape, error) {
	a, err := k.eval(n.a, off)
	if err != nil {
		return nil, err
	}
	b, err := k.eval(n.b, off)
	if err != nil {
		return nil, err
	}
	tools := makercad.ListOfShape{b}

	var result *makercad.CadOperation
	switch n.op {
	case opUnion:
		result, err = k.cad.Combine(a, tools)
	case opDifference:
		result, err = k.cad.Remove(a, tools)
	default:
		result, err = k.cad.Intersect(a, tools)
	}
	if err != nil {
		return nil, fmt.Errorf("occ boolean: %w", err)
	}
	return result.Shape(), nil
}

func (k *Kernel) evalFillet(n *node, off geom.Vec) (*makercad.Shape, error) {
	base, err := k.eval(n.a, off)
	if err != nil {
		return nil, err
	}
	at := n.a.bounds.Translate(off).At(n.keep)
	edges := base.Faces().Edges().Matching(func(e *sketcher.Edge) bool {
		return !onPlane(e.FirstVertex(), n.keep.Axis, at) || !onPlane(e.LastVertex(), n.keep.Axis, at)
	})
	filleted, err := k.cad.Fillet(base, edges, n.radius)
	if err != nil {
		return nil, fmt.Errorf("occ fillet r=%g: %w", n.radius, err)
	}
	return filleted, nil
}

// evalPrism sketches the outline on the top face of a block the size of
// the prism and cuts it down through the block. Removing that cut from
// the block leaves the prism.
func (k *Kernel) evalPrism(n *node, off geom.Vec) (*makercad.Shape, error) {
	b := n.bounds.Translate(off)
	size := b.Size()
	block := k.cad.MakeBox(plane(geom.Placement{At: b.Center()}, size.Z), size.X, size.Y, size.Z, true)

	c := b.Center()
	top := block.Faces().AlignedWith(k.cad.TopPlane).FirstMatching(func(f *makercad.Face) bool {
		return math.Abs(f.DistanceFrom(c.X, c.Y, b.Max.Z)) < edgeTolerance
	})
	if top == nil {
		return nil, fmt.Errorf("occ prism: no top face to sketch on")
	}

	origin := r3.Add(n.at.At, off)
	sketch := k.cad.Sketch(top)
	first := sketch.Line(origin.X+n.outline[0].X, origin.Y+n.outline[0].Y, origin.X+n.outline[1].X, origin.Y+n.outline[1].Y)
	last := first
	for i := 1; i < len(n.outline); i++ {
		p, q := n.outline[i], n.outline[(i+1)%len(n.outline)]
		l := sketch.Line(origin.X+p.X, origin.Y+p.Y, origin.X+q.X, origin.Y+q.Y)
		last.End.Coincident(l.Start)
		last = l
	}
	last.End.Coincident(first.Start)
	if err := sketch.Solve(); err != nil {
		return nil, fmt.Errorf("occ prism sketch: %w", err)
	}

	cut, err := makercad.NewFace(sketch).ExtrudeMerging(-size.Z, makercad.MergeTypeRemove, makercad.ListOfShape{block})
	if err != nil {
		return nil, fmt.Errorf("occ prism extrude: %w", err)
	}
	prism, err := k.cad.Remove(block, makercad.ListOfShape{cut.Shape()})
	if err != nil {
		return nil, fmt.Errorf("occ prism: %w", err)
	}
	return prism.Shape(), nil
}

func (k *Kernel) evalChamfer(n *node, off geom.Vec) (*makercad.Shape, error) {
	base, err := k.eval(n.a, off)
	if err != nil {
		return nil, err
	}
	b := n.a.bounds.Translate(off)
	on := func(v point) bool {
		for _, f := range n.faces {
			if !onPlane(v, f.Axis, b.At(f)) {
				return false
			}
		}
		return true
	}
	edges := base.Faces().Edges().Matching(func(e *sketcher.Edge) bool {
		return on(e.FirstVertex()) && on(e.LastVertex())
	})
	chamfered, err := k.cad.Chamfer(base, edges, n.radius)
	if err != nil {
		return nil, fmt.Errorf("occ chamfer %g: %w", n.radius, err)
	}
	return chamfered, nil
}

type point interface {
	X() float64
	Y() float64
	Z() float64
}

func onPlane(p point, a geom.Axis, at float64) bool {
	var c float64
	switch a {
	case geom.X:
		c = p.X()
	case geom.Y:
		c = p.Y()
	default:
		c = p.Z()
	}
	return math.Abs(c-at) < edgeTolerance
}

// plane returns the makercad placement for a primitive of the given
// height centred on p: makercad builds upward from the plane location
// along its normal.
func plane(p geom.Placement, height float64) *sketcher.PlaneParameters {
	normal := p.Normal()
	base := r3.Sub(p.At, r3.Scale(height/2, normal))
	x := p.XDir()
	return &sketcher.PlaneParameters{
		Location: sketcher.NewVectorFromValues(base.X, base.Y, base.Z),
		Normal:   sketcher.NewVectorFromValues(normal.X, normal.Y, normal.Z),
		X:        sketcher.NewVectorFromValues(x.X, x.Y, x.Z),
	}
}
