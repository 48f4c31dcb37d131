// Package geom holds the small amount of vector math the part builders
// need: axes, faces, axis-aligned bounds and rigid placements.
package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec is a point or direction in model space, in millimetres.
type Vec = r3.Vec

// V is shorthand for a Vec literal.
func V(x, y, z float64) Vec {
	return Vec{X: x, Y: y, Z: z}
}

// Axis is one of the three principal axes.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// Of returns the component of v along a.
func (a Axis) Of(v Vec) float64 {
	switch a {
	case X:
		return v.X
	case Y:
		return v.Y
	}
	return v.Z
}

// Unit returns the unit vector along a.
func (a Axis) Unit() Vec {
	switch a {
	case X:
		return V(1, 0, 0)
	case Y:
		return V(0, 1, 0)
	}
	return V(0, 0, 1)
}

// with returns v with its a component replaced by f.
func (a Axis) with(v Vec, f float64) Vec {
	switch a {
	case X:
		v.X = f
	case Y:
		v.Y = f
	default:
		v.Z = f
	}
	return v
}

// Side selects the low or high end of an axis.
type Side int

const (
	Min Side = iota
	Max
)

// Face names one of the six faces of a bounding box, e.g. the bottom
// face is Face{Axis: Z, Side: Min}.
type Face struct {
	Axis Axis
	Side Side
}

// Bottom is the face a printed part sits on.
var Bottom = Face{Axis: Z, Side: Min}

func (f Face) String() string {
	if f.Side == Min {
		return "-" + f.Axis.String()
	}
	return "+" + f.Axis.String()
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max Vec
}

// BoundsOf returns the smallest Bounds containing all points.
func BoundsOf(points ...Vec) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = V(math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z))
		b.Max = V(math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z))
	}
	return b
}

// Size returns the edge lengths of the box.
func (b Bounds) Size() Vec {
	return r3.Sub(b.Max, b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Extent returns the length of the box along a.
func (b Bounds) Extent(a Axis) float64 {
	return a.Of(b.Max) - a.Of(b.Min)
}

// At returns the coordinate of face f along its axis.
func (b Bounds) At(f Face) float64 {
	if f.Side == Min {
		return f.Axis.Of(b.Min)
	}
	return f.Axis.Of(b.Max)
}

// MinExtent returns the shortest edge length of the box.
func (b Bounds) MinExtent() float64 {
	s := b.Size()
	return math.Min(s.X, math.Min(s.Y, s.Z))
}

// Empty reports whether the box has no volume.
func (b Bounds) Empty() bool {
	return b.Max.X <= b.Min.X || b.Max.Y <= b.Min.Y || b.Max.Z <= b.Min.Z
}

// Union returns the box enclosing b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return BoundsOf(b.Min, b.Max, o.Min, o.Max)
}

// Intersect returns the overlap of b and o. The result may be Empty.
func (b Bounds) Intersect(o Bounds) Bounds {
	return Bounds{
		Min: V(math.Max(b.Min.X, o.Min.X), math.Max(b.Min.Y, o.Min.Y), math.Max(b.Min.Z, o.Min.Z)),
		Max: V(math.Min(b.Max.X, o.Max.X), math.Min(b.Max.Y, o.Max.Y), math.Min(b.Max.Z, o.Max.Z)),
	}
}

// Translate shifts the box by v.
func (b Bounds) Translate(v Vec) Bounds {
	return Bounds{Min: r3.Add(b.Min, v), Max: r3.Add(b.Max, v)}
}

// Slab returns the part of b within depth of face f, measured inwards.
func (b Bounds) Slab(f Face, depth float64) Bounds {
	out := b
	if f.Side == Min {
		out.Max = f.Axis.with(out.Max, f.Axis.Of(b.Min)+depth)
	} else {
		out.Min = f.Axis.with(out.Min, f.Axis.Of(b.Max)-depth)
	}
	return out
}

// Corners returns the eight corners of the box.
func (b Bounds) Corners() [8]Vec {
	var c [8]Vec
	for i := range c {
		p := b.Min
		if i&1 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&4 != 0 {
			p.Z = b.Max.Z
		}
		c[i] = p
	}
	return c
}
