package occ

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcuswu/spring-rail-vise/internal/geom"
	"github.com/marcuswu/spring-rail-vise/internal/kernel"
	"github.com/marcuswu/spring-rail-vise/internal/kernel/kerneltest"
)

// These tests only build construction trees. Nothing here reaches
// OpenCASCADE, which runs on Fillet and Export.

func TestTreeBounds(t *testing.T) {
	k := &Kernel{}
	box, err := k.Box(geom.V(10, 10, 10), geom.Placement{})
	require.NoError(t, err)
	rod, err := k.Cylinder(1, 30, geom.Along(geom.X, geom.Vec{}))
	require.NoError(t, err)

	u, err := k.Union(box, rod)
	require.NoError(t, err)
	assert.InDelta(t, 30, u.Bounds().Extent(geom.X), 1e-9)
	assert.InDelta(t, 10, u.Bounds().Extent(geom.Z), 1e-9)

	d, err := k.Difference(box, rod)
	require.NoError(t, err)
	assert.Equal(t, box.Bounds(), d.Bounds())

	i, err := k.Intersection(box, rod)
	require.NoError(t, err)
	assert.InDelta(t, 10, i.Bounds().Extent(geom.X), 1e-9)
	assert.InDelta(t, 2, i.Bounds().Extent(geom.Z), 1e-9)
}

func TestTranslateAccumulates(t *testing.T) {
	k := &Kernel{}
	box, err := k.Box(geom.V(2, 2, 2), geom.Placement{})
	require.NoError(t, err)

	once, err := k.Translate(box, geom.V(5, 0, 0))
	require.NoError(t, err)
	twice, err := k.Translate(once, geom.V(0, 0, 3))
	require.NoError(t, err)

	b := twice.Bounds()
	assert.Equal(t, geom.V(4, -1, 2), b.Min)
	assert.Equal(t, geom.V(6, 1, 4), b.Max)

	n := twice.(*node)
	assert.Equal(t, opTranslate, n.op)
	assert.Same(t, once.(*node), n.a)
	assert.Same(t, box.(*node), n.a.a)
}

func TestRejectsBadInput(t *testing.T) {
	k := &Kernel{}
	_, err := k.Box(geom.V(0, 1, 1), geom.Placement{})
	assert.Error(t, err)
	_, err = k.Cylinder(1, -2, geom.Placement{})
	assert.Error(t, err)

	box, err := k.Box(geom.V(1, 1, 1), geom.Placement{})
	require.NoError(t, err)
	foreign, err := kerneltest.New().Box(geom.V(1, 1, 1), geom.Placement{})
	require.NoError(t, err)

	_, err = k.Union(box, foreign)
	assert.Error(t, err)
	_, err = k.Translate(foreign, geom.V(1, 0, 0))
	assert.Error(t, err)
	_, err = k.Fillet(box, geom.Bottom, 0)
	assert.Error(t, err)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	k := &Kernel{}
	box, err := k.Box(geom.V(1, 1, 1), geom.Placement{})
	require.NoError(t, err)

	err = k.Export(box, kernel.Format(99), filepath.Join(t.TempDir(), "box.obj"))
	assert.ErrorIs(t, err, kernel.ErrUnsupportedFormat)
}

type vertex struct{ x, y, z float64 }

func (v vertex) X() float64 { return v.x }
func (v vertex) Y() float64 { return v.y }
func (v vertex) Z() float64 { return v.z }

func TestOnPlane(t *testing.T) {
	assert.True(t, onPlane(vertex{1, 2, 0}, geom.Z, 0))
	assert.True(t, onPlane(vertex{4, 2, 9}, geom.X, 4+1e-8))
	assert.False(t, onPlane(vertex{1, 2, 0.01}, geom.Z, 0))
	assert.False(t, onPlane(vertex{1, 2, 0}, geom.Y, 0))
}

func TestPrismNode(t *testing.T) {
	k := &Kernel{}
	outline := geom.Hexagon(6)
	s, err := k.Prism(outline, 3, geom.V(10, 0, 1.5))
	require.NoError(t, err)

	n := s.(*node)
	assert.Equal(t, opPrism, n.op)
	assert.Equal(t, geom.V(10, 0, 1.5), n.at.At)
	assert.InDelta(t, 6, n.bounds.Extent(geom.Y), 1e-9)
	assert.InDelta(t, 0, n.bounds.Min.Z, 1e-9)
	assert.InDelta(t, 3, n.bounds.Max.Z, 1e-9)

	outline[0] = geom.Vec2{X: 100}
	assert.NotEqual(t, outline[0], n.outline[0], "outline is copied")

	_, err = k.Prism(outline[:2], 3, geom.Vec{})
	assert.ErrorIs(t, err, geom.ErrPolygon)
	_, err = k.Prism(geom.Hexagon(6), 0, geom.Vec{})
	assert.Error(t, err)
}

func TestChamferRejectsBadInput(t *testing.T) {
	k := &Kernel{}
	box, err := k.Box(geom.V(1, 1, 1), geom.Placement{})
	require.NoError(t, err)

	_, err = k.Chamfer(box, geom.Face{Axis: geom.Z, Side: geom.Max}, geom.Bottom, 0.2)
	assert.Error(t, err, "parallel faces")
	_, err = k.Chamfer(box, geom.Bottom, geom.Face{Axis: geom.Y, Side: geom.Max}, 0)
	assert.Error(t, err)
}
