package geom

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec2 is a point in a sketch plane.
type Vec2 = r2.Vec

// ErrPolygon is returned for outlines that cannot be extruded or inset.
var ErrPolygon = errors.New("bad polygon")

const polyEpsilon = 1e-9

// RegularPolygon returns the n corners of a regular polygon with the
// given circumradius, centred on the origin, counter-clockwise, with the
// first corner on +X.
func RegularPolygon(n int, circumradius float64) []Vec2 {
	pts := make([]Vec2, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Vec2{X: circumradius * math.Cos(a), Y: circumradius * math.Sin(a)}
	}
	return pts
}

// Hexagon returns a hexagon with the given width across flats. Its
// corners point along ±X and its flats face ±Y.
func Hexagon(flats float64) []Vec2 {
	return RegularPolygon(6, flats/math.Sqrt(3))
}

// RoundedRect returns an lx × ly rectangle centred on the origin whose
// corners are arcs of radius r, each drawn with segments straight edges.
// The outline is counter-clockwise.
func RoundedRect(lx, ly, r float64, segments int) []Vec2 {
	if r <= 0 || segments < 1 {
		return []Vec2{{X: lx / 2, Y: -ly / 2}, {X: lx / 2, Y: ly / 2}, {X: -lx / 2, Y: ly / 2}, {X: -lx / 2, Y: -ly / 2}}
	}
	centres := []Vec2{
		{X: lx/2 - r, Y: -ly/2 + r},
		{X: lx/2 - r, Y: ly/2 - r},
		{X: -lx/2 + r, Y: ly/2 - r},
		{X: -lx/2 + r, Y: -ly/2 + r},
	}
	var pts []Vec2
	for i, c := range centres {
		start := -math.Pi/2 + float64(i)*math.Pi/2
		for s := 0; s <= segments; s++ {
			a := start + math.Pi/2*float64(s)/float64(segments)
			pts = appendDistinct(pts, Vec2{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)})
		}
	}
	if len(pts) > 1 && near(pts[0], pts[len(pts)-1]) {
		pts = pts[:len(pts)-1]
	}
	return pts
}

func appendDistinct(pts []Vec2, p Vec2) []Vec2 {
	if len(pts) > 0 && near(pts[len(pts)-1], p) {
		return pts
	}
	return append(pts, p)
}

func near(a, b Vec2) bool {
	return math.Abs(a.X-b.X) < polyEpsilon && math.Abs(a.Y-b.Y) < polyEpsilon
}

// Area returns the signed area of the outline, positive when it runs
// counter-clockwise.
func Area(poly []Vec2) float64 {
	var a float64
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// Convex reports whether the outline turns the same way at every corner.
func Convex(poly []Vec2) bool {
	if len(poly) < 3 {
		return false
	}
	sign := 0
	for i := range poly {
		a, b, c := poly[i], poly[(i+1)%len(poly)], poly[(i+2)%len(poly)]
		cross := r2.Cross(r2.Sub(b, a), r2.Sub(c, b))
		if math.Abs(cross) < polyEpsilon {
			continue
		}
		s := 1
		if cross < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			return false
		}
	}
	return sign != 0
}

// Inset moves every edge of a convex outline inwards by d and returns the
// new corners. It fails when d is large enough to collapse an edge.
func Inset(poly []Vec2, d float64) ([]Vec2, error) {
	if !Convex(poly) {
		return nil, fmt.Errorf("%w: inset needs a convex outline", ErrPolygon)
	}
	if d == 0 {
		return append([]Vec2(nil), poly...), nil
	}
	ccw := Area(poly) > 0
	n := len(poly)
	// inward returns edge i moved inwards: a point on it and its direction.
	inward := func(i int) (Vec2, Vec2) {
		a, b := poly[i], poly[(i+1)%n]
		dir := r2.Unit(r2.Sub(b, a))
		normal := Vec2{X: -dir.Y, Y: dir.X}
		if !ccw {
			normal = r2.Scale(-1, normal)
		}
		return r2.Add(a, r2.Scale(d, normal)), dir
	}

	out := make([]Vec2, n)
	for i := range poly {
		p0, d0 := inward((i - 1 + n) % n)
		p1, d1 := inward(i)
		den := r2.Cross(d0, d1)
		if math.Abs(den) < polyEpsilon {
			// Collinear neighbours: the corner just moves with the edge.
			out[i] = p1
			continue
		}
		t := r2.Cross(r2.Sub(p1, p0), d1) / den
		out[i] = r2.Add(p0, r2.Scale(t, d0))
	}

	for i := range poly {
		before := r2.Sub(poly[(i+1)%n], poly[i])
		after := r2.Sub(out[(i+1)%n], out[i])
		if r2.Dot(before, after) <= 0 && r2.Norm(before) > polyEpsilon {
			return nil, fmt.Errorf("%w: inset %g collapses the outline", ErrPolygon, d)
		}
	}
	return out, nil
}

// PolygonBounds returns the bounds of an outline in the XY plane,
// extruded height along Z and centred on at.
func PolygonBounds(poly []Vec2, height float64, at Vec) Bounds {
	pts := make([]Vec, 0, 2*len(poly))
	for _, p := range poly {
		pts = append(pts,
			V(at.X+p.X, at.Y+p.Y, at.Z-height/2),
			V(at.X+p.X, at.Y+p.Y, at.Z+height/2),
		)
	}
	return BoundsOf(pts...)
}
