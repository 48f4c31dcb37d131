package parts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcuswu/spring-rail-vise/internal/config"
	"github.com/marcuswu/spring-rail-vise/internal/kernel/kerneltest"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", DefaultParts},
		{"  ", DefaultParts},
		{"all", CatalogNames()},
		{"rail", []string{"rail"}},
		{"jaw_m8, rail,jaw_m8,", []string{"jaw_m8", "rail"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSelection(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseSelection("rail,jaw_m5")
	assert.ErrorIs(t, err, ErrUnknownPart)
}

func TestParseSelectionDoesNotAliasDefaults(t *testing.T) {
	got, err := ParseSelection("")
	require.NoError(t, err)
	got[0] = "changed"
	assert.Equal(t, "rail", DefaultParts[0])
}

func TestRegistry(t *testing.T) {
	k := kerneltest.New()
	a, err := RailBody(k, config.Default())
	require.NoError(t, err)

	reg := NewRegistry()
	require.NoError(t, reg.Add("rail", a))
	require.NoError(t, reg.Add("copy", a))

	assert.Error(t, reg.Add("rail", a), "duplicate name")
	assert.Error(t, reg.Add("", a))
	assert.Error(t, reg.Add("../escape", a))
	assert.Error(t, reg.Add("nil", nil))

	assert.Equal(t, 2, reg.Len())
	got, ok := reg.Get("copy")
	assert.True(t, ok)
	assert.Same(t, a, got)
	_, ok = reg.Get("missing")
	assert.False(t, ok)

	entries := reg.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "rail", entries[0].Name)
	assert.Equal(t, "copy", entries[1].Name)
}

func TestBuildEveryCatalogPart(t *testing.T) {
	k := kerneltest.New()

	reg, err := Build(k, config.Default(), CatalogNames())
	require.NoError(t, err)
	assert.Equal(t, len(Catalog), reg.Len())
	for _, e := range reg.Entries() {
		assert.False(t, e.Solid.Bounds().Empty(), e.Name)
	}
}

func TestBuildUnknownPart(t *testing.T) {
	_, err := Build(kerneltest.New(), config.Default(), []string{"rail", "spring"})
	assert.ErrorIs(t, err, ErrUnknownPart)
}

func TestBuildPropagatesKernelErrors(t *testing.T) {
	k := &kerneltest.Kernel{FilletLimit: 1e-9}

	_, err := Build(k, config.Default(), []string{"rail_plate"})
	assert.Error(t, err)
}
