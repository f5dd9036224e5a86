package spectral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridAccessors(t *testing.T) {
	g := NewGrid(2, 3, 4)
	require.Len(t, g.Data, 24)

	g.Set(1, 2, 3, 7.5)
	assert.Equal(t, 7.5, g.At(1, 2, 3))
	assert.Equal(t, 7.5, g.SpectrumAt(1, 2)[3])
	assert.Equal(t, 6, g.Pixels())

	// SpectrumAt is a view into the backing array
	g.SpectrumAt(0, 1)[0] = 2.5
	assert.Equal(t, 2.5, g.At(0, 1, 0))
}

func TestGridClone(t *testing.T) {
	g := NewGrid(2, 2, 3)
	g.Set(0, 0, 0, 1.0)

	c := g.Clone()
	c.Set(0, 0, 0, 9.0)

	assert.Equal(t, 1.0, g.At(0, 0, 0))
	assert.Equal(t, 9.0, c.At(0, 0, 0))
}

func TestGridFromDataLengthMismatch(t *testing.T) {
	_, err := GridFromData(2, 2, 3, make([]float64, 11))
	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
}

func TestBandImage(t *testing.T) {
	g := NewGrid(2, 2, 3)
	for p := 0; p < 4; p++ {
		g.PixelSpectrum(p)[1] = float64(p)
	}
	img := g.BandImage(1)
	assert.Equal(t, 0.0, img.At(0, 0))
	assert.Equal(t, 1.0, img.At(0, 1))
	assert.Equal(t, 2.0, img.At(1, 0))
	assert.Equal(t, 3.0, img.At(1, 1))
}

func TestUnitConversions(t *testing.T) {
	tests := []struct {
		name   string
		from   Unit
		to     Unit
		in     float64
		expect float64
	}{
		{"nm to um", Nanometer, Micron, 1500, 1.5},
		{"nm to m", Nanometer, Meter, 1500, 1.5e-6},
		{"um to nm", Micron, Nanometer, 1.5, 1500},
		{"m to um", Meter, Micron, 2e-6, 2},
		{"nm to nm", Nanometer, Nanometer, 1500, 1500},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWavelength([]float64{tc.in}, tc.from)
			require.NoError(t, w.Convert(tc.to))
			assert.InDelta(t, tc.expect, w.Values[0], 1e-12)
			assert.Equal(t, tc.to, w.Unit())
		})
	}
}

func TestUnitRoundTrip(t *testing.T) {
	w := NewWavelength([]float64{700, 1550, 2600}, Nanometer)
	w.ToMicrons()
	w.ToMeters()
	w.ToNanometers()
	assert.InDelta(t, 700, w.Values[0], 1e-9)
	assert.InDelta(t, 2600, w.Values[2], 1e-9)
}

func TestParseUnit(t *testing.T) {
	for name, want := range map[string]Unit{"nm": Nanometer, "um": Micron, "m": Meter} {
		got, err := ParseUnit(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseUnit("angstrom")
	var unitErr *UnitError
	require.ErrorAs(t, err, &unitErr)
}

func TestFindWavelength(t *testing.T) {
	values := []float64{500, 600, 700, 800}

	idx, actual := FindWavelength(values, 712)
	assert.Equal(t, 2, idx)
	assert.Equal(t, 700.0, actual)

	// exact hit
	idx, actual = FindWavelength(values, 600)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 600.0, actual)

	// beyond the range clamps to the boundary sample
	idx, _ = FindWavelength(values, 10000)
	assert.Equal(t, 3, idx)
}

func TestFindWavelengthInUnitMismatch(t *testing.T) {
	w := NewWavelength([]float64{500, 600, 700}, Nanometer)

	_, _, err := FindWavelengthIn(w, 0.6, Micron)
	var unitErr *UnitError
	require.ErrorAs(t, err, &unitErr)

	idx, actual, err := FindWavelengthIn(w, 600, Nanometer)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 600.0, actual)
}

func TestScaleFromNanometersUnknownUnit(t *testing.T) {
	_, err := Unit(99).ScaleFromNanometers()
	var unitErr *UnitError
	require.ErrorAs(t, err, &unitErr)
}
