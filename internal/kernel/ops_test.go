package kernel_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcuswu/spring-rail-vise/internal/geom"
	"github.com/marcuswu/spring-rail-vise/internal/kernel"
	"github.com/marcuswu/spring-rail-vise/internal/kernel/kerneltest"
)

func box(t *testing.T, k kernel.Kernel, x, y, z float64) kernel.Solid {
	t.Helper()
	s, err := k.Box(geom.V(x, y, z), geom.Placement{})
	require.NoError(t, err)
	return s
}

func TestMaxFilletUsesLimitWhenAccepted(t *testing.T) {
	k := kerneltest.New()
	s := box(t, k, 10, 10, 10)

	out, r, err := kernel.MaxFillet(k, s, geom.Bottom, 2, 8)
	require.NoError(t, err)
	assert.Equal(t, 2.0, r)
	assert.Equal(t, []float64{2}, k.Fillets, "no search needed")

	f := out.(*kerneltest.Solid)
	assert.Equal(t, kerneltest.KindFillet, f.Kind)
	assert.Equal(t, geom.Bottom, f.Keep)
}

func TestMaxFilletBisectsBelowKernelLimit(t *testing.T) {
	k := &kerneltest.Kernel{FilletLimit: 1.3}
	s := box(t, k, 10, 10, 10)

	_, r, err := kernel.MaxFillet(k, s, geom.Bottom, 2, 8)
	require.NoError(t, err)
	assert.LessOrEqual(t, r, 1.3)
	// Eight tries bisecting [0, 2] narrow the interval to 2/2^7.
	assert.Greater(t, r, 1.3-2.0/128)
	assert.Len(t, k.Fillets, 8)
}

func TestMaxFilletFailsWhenNothingFits(t *testing.T) {
	k := &kerneltest.Kernel{FilletLimit: 1e-6}
	s := box(t, k, 10, 10, 10)

	_, _, err := kernel.MaxFillet(k, s, geom.Bottom, 2, 3)
	assert.ErrorIs(t, err, kernel.ErrNoFillet)
	assert.Len(t, k.Fillets, 3)
}

func TestMaxFilletRejectsBadArguments(t *testing.T) {
	k := kerneltest.New()
	s := box(t, k, 10, 10, 10)

	_, _, err := kernel.MaxFillet(k, s, geom.Bottom, 0, 8)
	assert.ErrorIs(t, err, kernel.ErrNoFillet)
	_, _, err = kernel.MaxFillet(k, s, geom.Bottom, 1, 0)
	assert.ErrorIs(t, err, kernel.ErrNoFillet)
	assert.Empty(t, k.Fillets)
}

func TestThroughCutPenetratesTarget(t *testing.T) {
	k := kerneltest.New()
	target, err := k.Box(geom.V(40, 20, 7), geom.At(0, 0, 3))
	require.NoError(t, err)

	out, err := kernel.ThroughCut(k, target, 1.6, geom.Z, geom.V(12, -3, 0), 1)
	require.NoError(t, err)

	cuts := out.(*kerneltest.Solid).Cuts()
	require.Len(t, cuts, 1)
	c := cuts[0]
	assert.Equal(t, kerneltest.KindCylinder, c.Kind)
	assert.Equal(t, 1.6, c.Radius)
	assert.Equal(t, 9.0, c.Height)
	assert.Equal(t, geom.V(12, -3, 3), c.At.At)

	cb, tb := c.Bounds(), target.Bounds()
	assert.Less(t, cb.Min.Z, tb.Min.Z)
	assert.Greater(t, cb.Max.Z, tb.Max.Z)
}

func TestThroughCylinderAlongX(t *testing.T) {
	b := geom.Bounds{Min: geom.V(-110, -9, -6.6), Max: geom.V(110, 9, 6.6)}

	c, err := kernel.ThroughCylinder(b, 2, geom.X, geom.V(50, 1, 2), 0.5)
	require.NoError(t, err)
	assert.Equal(t, 221.0, c.Height)
	assert.Equal(t, geom.V(0, 1, 2), c.At.At)
	assert.Equal(t, geom.Along(geom.X, geom.V(0, 1, 2)), c.At)

	_, err = kernel.ThroughCylinder(b, 0, geom.X, geom.Vec{}, 1)
	assert.Error(t, err)
	_, err = kernel.ThroughCylinder(b, 1, geom.X, geom.Vec{}, 0)
	assert.Error(t, err)
}

func TestUnionAll(t *testing.T) {
	k := kerneltest.New()
	a := box(t, k, 2, 2, 2)
	b, err := k.Box(geom.V(2, 2, 2), geom.At(10, 0, 0))
	require.NoError(t, err)

	u, err := kernel.UnionAll(k, a, b)
	require.NoError(t, err)
	assert.Equal(t, geom.Bounds{Min: geom.V(-1, -1, -1), Max: geom.V(11, 1, 1)}, u.Bounds())

	_, err = kernel.UnionAll(k)
	assert.Error(t, err)
}

func TestFormatExt(t *testing.T) {
	assert.Equal(t, ".stl", kernel.STL.Ext())
	assert.Equal(t, ".step", kernel.STEP.Ext())
}

func TestChamferBar(t *testing.T) {
	b := geom.Bounds{Min: geom.V(-5, -5, -5), Max: geom.V(5, 5, 5)}
	top := geom.Face{Axis: geom.Z, Side: geom.Max}
	back := geom.Face{Axis: geom.Y, Side: geom.Max}

	bar, err := kernel.ChamferBar(b, back, top, 2, 1)
	require.NoError(t, err)
	assert.InDelta(t, 12, bar.Size.X, 1e-9)
	assert.InDelta(t, 2*math.Sqrt2, bar.Size.Y, 1e-9)
	assert.InDelta(t, 2*math.Sqrt2, bar.Size.Z, 1e-9)
	assert.Equal(t, geom.V(0, 5, 5), bar.At.At)
	assert.Equal(t, geom.V(45, 0, 0), bar.At.Rot)

	_, err = kernel.ChamferBar(b, top, geom.Bottom, 2, 1)
	assert.Error(t, err)
	_, err = kernel.ChamferBar(b, back, top, 0, 1)
	assert.Error(t, err)
}

func TestChamferWedgeSubtractsBar(t *testing.T) {
	k := kerneltest.New()
	s := box(t, k, 10, 10, 10)
	top := geom.Face{Axis: geom.Z, Side: geom.Max}
	right := geom.Face{Axis: geom.X, Side: geom.Max}

	out, err := kernel.ChamferWedge(k, s, right, top, 1, 0.5)
	require.NoError(t, err)
	d := out.(*kerneltest.Solid)
	require.Equal(t, kerneltest.KindDifference, d.Kind)
	assert.Same(t, s, kernel.Solid(d.Children[0]))

	wedge := d.Children[1]
	assert.Equal(t, kerneltest.KindBox, wedge.Kind)
	assert.InDelta(t, 11, wedge.Size.Y, 1e-9)
	assert.Equal(t, geom.V(5, 0, 5), wedge.At.At)
	assert.Equal(t, geom.V(0, 45, 0), wedge.At.Rot)
	assert.Equal(t, s.Bounds(), out.Bounds())
}

func TestCheckPrism(t *testing.T) {
	assert.NoError(t, kernel.CheckPrism(geom.Hexagon(5), 2))
	assert.ErrorIs(t, kernel.CheckPrism(geom.Hexagon(5)[:2], 2), geom.ErrPolygon)
	assert.Error(t, kernel.CheckPrism(geom.Hexagon(5), 0))

	flat := []geom.Vec2{{X: 0}, {X: 1}, {X: 2}}
	assert.ErrorIs(t, kernel.CheckPrism(flat, 2), geom.ErrPolygon)
}
