package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Placement positions a primitive: it is rotated about the origin by Rot
// (Euler angles in degrees, applied X then Y then Z) and then moved to At.
type Placement struct {
	At  Vec
	Rot Vec
}

// At returns a placement with no rotation.
func At(x, y, z float64) Placement {
	return Placement{At: V(x, y, z)}
}

// Along returns a placement at p whose local Z axis points along a.
func Along(a Axis, p Vec) Placement {
	switch a {
	case X:
		return Placement{At: p, Rot: V(0, 90, 0)}
	case Y:
		return Placement{At: p, Rot: V(-90, 0, 0)}
	}
	return Placement{At: p}
}

// Turned returns a placement at p rotated by deg about the Z axis.
func Turned(p Vec, deg float64) Placement {
	return Placement{At: p, Rot: V(0, 0, deg)}
}

// Moved returns p shifted by v.
func (p Placement) Moved(v Vec) Placement {
	p.At = r3.Add(p.At, v)
	return p
}

// Rotate applies only the rotation part of p to v.
func (p Placement) Rotate(v Vec) Vec {
	if p.Rot == (Vec{}) {
		return v
	}
	v = rotX(v, p.Rot.X)
	v = rotY(v, p.Rot.Y)
	return rotZ(v, p.Rot.Z)
}

// Apply maps a point from local to model coordinates.
func (p Placement) Apply(v Vec) Vec {
	return r3.Add(p.At, p.Rotate(v))
}

// Normal returns the local Z axis in model coordinates.
func (p Placement) Normal() Vec {
	return p.Rotate(Z.Unit())
}

// XDir returns the local X axis in model coordinates.
func (p Placement) XDir() Vec {
	return p.Rotate(X.Unit())
}

// Bounds returns the model-space bounds of a local box centred on the
// origin with the given size. Rotations give a conservative result.
func (p Placement) Bounds(size Vec) Bounds {
	half := r3.Scale(0.5, size)
	local := Bounds{Min: r3.Scale(-1, half), Max: half}
	corners := local.Corners()
	pts := make([]Vec, 0, len(corners))
	for _, c := range corners {
		pts = append(pts, p.Apply(c))
	}
	b := BoundsOf(pts...)
	return Bounds{Min: snap(b.Min), Max: snap(b.Max)}
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

func rotX(v Vec, deg float64) Vec {
	if deg == 0 {
		return v
	}
	s, c := math.Sincos(rad(deg))
	return V(v.X, v.Y*c-v.Z*s, v.Y*s+v.Z*c)
}

func rotY(v Vec, deg float64) Vec {
	if deg == 0 {
		return v
	}
	s, c := math.Sincos(rad(deg))
	return V(v.X*c+v.Z*s, v.Y, -v.X*s+v.Z*c)
}

func rotZ(v Vec, deg float64) Vec {
	if deg == 0 {
		return v
	}
	s, c := math.Sincos(rad(deg))
	return V(v.X*c-v.Y*s, v.X*s+v.Y*c, v.Z)
}

// snap removes the 1e-16 noise left by sin/cos of right angles.
func snap(v Vec) Vec {
	const eps = 1e-9
	r := func(f float64) float64 {
		if n := math.Round(f); math.Abs(f-n) < eps {
			return n
		}
		return f
	}
	return V(r(v.X), r(v.Y), r(v.Z))
}
