package parts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcuswu/spring-rail-vise/internal/config"
	"github.com/marcuswu/spring-rail-vise/internal/geom"
	"github.com/marcuswu/spring-rail-vise/internal/kernel/kerneltest"
)

func TestParseJawVariant(t *testing.T) {
	for _, v := range JawVariants() {
		got, err := ParseJawVariant(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	got, err := ParseJawVariant(" Backstop ")
	require.NoError(t, err)
	assert.Equal(t, JawBackstop, got)

	for _, bad := range []string{"m5", "", "no-hole"} {
		_, err := ParseJawVariant(bad)
		assert.ErrorIs(t, err, ErrUnknownJawVariant, bad)
	}
}

func TestJawVariantValid(t *testing.T) {
	assert.True(t, JawM8.Valid())
	assert.False(t, JawVariant(0).Valid())
	assert.False(t, JawVariant(42).Valid())
	assert.Equal(t, "jaw(42)", JawVariant(42).String())
}

func TestJawVariants(t *testing.T) {
	cfg := config.Default()
	tests := []struct {
		variant JawVariant
		holeD   float64
		nut     bool
		upper   bool
	}{
		{JawM3, cfg.M3.ClearanceD, false, true},
		{JawM8, cfg.M8.ClearanceD, true, true},
		{JawBackstop, cfg.M8.ClearanceD, true, false},
		{JawNoHole, 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			k := kerneltest.New()
			s, err := Jaw(k, cfg, tt.variant)
			require.NoError(t, err)
			jaw := s.(*kerneltest.Solid)

			holes := cutsOf(jaw, kerneltest.KindCylinder)
			if tt.holeD == 0 {
				assert.Empty(t, holes)
			} else {
				require.Len(t, holes, 1)
				assert.Equal(t, tt.holeD/2, holes[0].Radius)
				assert.Equal(t, geom.Z.Unit(), holes[0].At.Normal())
				assert.Greater(t, holes[0].Height, jaw.Bounds().Extent(geom.Z))
			}

			pockets := hexPockets(jaw)
			if tt.nut {
				require.Len(t, pockets, 1)
				assert.InDelta(t, cfg.M8.NutFlats, pockets[0].Bounds().Extent(geom.Y), 1e-9)
				assert.InDelta(t, cfg.M8.NutCorners(), pockets[0].Bounds().Extent(geom.X), 1e-9)
				// The pocket breaks into the channel ceiling and stays
				// below the top of the roof.
				pb := pockets[0].Bounds()
				channelTop := cfg.RailThicknessZ()/2 + cfg.JawClearance
				assert.Less(t, pb.Min.Z, channelTop)
				assert.InDelta(t, channelTop+cfg.M8.NutHeight, pb.Max.Z, 1e-9)
			} else {
				assert.Empty(t, pockets)
			}

			spec, err := tt.variant.Spec(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.upper, spec.UpperBlock)

			fillets := jaw.Find(kerneltest.KindFillet)
			require.Len(t, fillets, 1)
			assert.Equal(t, ClampingFace, fillets[0].Keep)
		})
	}
}

func TestJawChannelFollowsRail(t *testing.T) {
	cfg := config.Default()
	k := kerneltest.New()

	s, err := Jaw(k, cfg, JawM8)
	require.NoError(t, err)
	jaw := s.(*kerneltest.Solid)

	channels := cutsOf(jaw, kerneltest.KindIntersection)
	var rail *kerneltest.Solid
	for _, c := range channels {
		if len(c.Find(kerneltest.KindCylinder)) == 1 {
			rail = c
		}
	}
	require.NotNil(t, rail, "rail channel cut")
	cyl := rail.Find(kerneltest.KindCylinder)[0]
	assert.Equal(t, cfg.RailD()/2+cfg.JawClearance, cyl.Radius)
	assert.Equal(t, geom.X, axisOf(cyl.At))
	assert.Greater(t, rail.Bounds().Extent(geom.X), jaw.Bounds().Extent(geom.X))
	assert.InDelta(t, cfg.RailThicknessZ()+2*cfg.JawClearance, rail.Bounds().Extent(geom.Z), 1e-9)
}

func TestJawChamfer(t *testing.T) {
	cfg := config.Default()
	k := kerneltest.New()

	s, err := Jaw(k, cfg, JawM3)
	require.NoError(t, err)
	jaw := s.(*kerneltest.Solid)

	chamfers := jaw.Find(kerneltest.KindChamfer)
	require.Len(t, chamfers, 1)
	assert.Equal(t, ClampingFace, chamfers[0].Faces[0])
	assert.Equal(t, geom.Face{Axis: geom.Z, Side: geom.Max}, chamfers[0].Faces[1])
	assert.Equal(t, cfg.JawChamfer, chamfers[0].Chamfer)
	assert.Same(t, jaw, chamfers[0], "chamfer is the last step")

	cfg.JawChamfer = 0
	s, err = Jaw(kerneltest.New(), cfg, JawM3)
	require.NoError(t, err)
	assert.Empty(t, s.(*kerneltest.Solid).Find(kerneltest.KindChamfer))
}

func TestBackstopIsLower(t *testing.T) {
	cfg := config.Default()

	m8, err := Jaw(kerneltest.New(), cfg, JawM8)
	require.NoError(t, err)
	stop, err := Jaw(kerneltest.New(), cfg, JawBackstop)
	require.NoError(t, err)

	assert.InDelta(t, cfg.JawUpperHeight, m8.Bounds().Max.Z-stop.Bounds().Max.Z, 1e-9)
}

func TestJawUnknownVariantBuildsNothing(t *testing.T) {
	k := kerneltest.New()

	_, err := Jaw(k, config.Default(), JawVariant(42))
	assert.ErrorIs(t, err, ErrUnknownJawVariant)
	assert.Zero(t, k.Calls)
}

func TestDemoJaws(t *testing.T) {
	cfg := config.Default()
	k := kerneltest.New()

	s, err := DemoJaws(k, cfg)
	require.NoError(t, err)

	moves := s.(*kerneltest.Solid).Find(kerneltest.KindTranslate)
	require.Len(t, moves, len(JawVariants()))
	var xs []float64
	for _, m := range moves {
		xs = append(xs, m.Offset.X)
		assert.Zero(t, m.Offset.Y)
		assert.Zero(t, m.Offset.Z)
	}
	assert.ElementsMatch(t, []float64{0, 50, 100, 150}, xs)

	// Neighbouring jaws do not touch.
	for i := range moves {
		for j := i + 1; j < len(moves); j++ {
			assert.True(t, moves[i].Bounds().Intersect(moves[j].Bounds()).Empty())
		}
	}
}

// axisOf reports which principal axis a placement's local Z points along.
func axisOf(p geom.Placement) geom.Axis {
	n := p.Normal()
	switch {
	case n.X > 0.5 || n.X < -0.5:
		return geom.X
	case n.Y > 0.5 || n.Y < -0.5:
		return geom.Y
	}
	return geom.Z
}
