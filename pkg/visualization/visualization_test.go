package visualization

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z-vig/reflspeckit/internal/testdata"
	"github.com/z-vig/reflspeckit/pkg/spectral"
)

func mapOf(rows, cols int, values ...float64) *spectral.Map {
	m := spectral.NewMap(rows, cols)
	copy(m.Data, values)
	return m
}

func TestRGBCompositeStretchesEachChannel(t *testing.T) {
	r := mapOf(1, 3, 0, 5, 10)
	g := mapOf(1, 3, 100, 100, 100)
	b := mapOf(1, 3, -1, 0, 1)

	img, err := RGBComposite(r, g, b)
	require.NoError(t, err)
	require.Equal(t, 3, img.Bounds().Dx())
	require.Equal(t, 1, img.Bounds().Dy())

	r0, g0, b0, a0 := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), r0>>8, "channel minimum maps to 0")
	assert.Equal(t, uint32(0), g0>>8, "constant channel maps to 0")
	assert.Equal(t, uint32(0), b0>>8)
	assert.Equal(t, uint32(255), a0>>8)

	r1, _, b1, _ := img.At(1, 0).RGBA()
	assert.Equal(t, uint32(127), r1>>8, "channel midpoint maps to 127")
	assert.Equal(t, uint32(127), b1>>8)

	r2, _, b2, _ := img.At(2, 0).RGBA()
	assert.Equal(t, uint32(255), r2>>8, "channel maximum maps to 255")
	assert.Equal(t, uint32(255), b2>>8)
}

func TestRGBCompositeNaNRendersBlack(t *testing.T) {
	r := mapOf(1, 3, math.NaN(), 5, 10)
	g := mapOf(1, 3, 1, 2, 3)
	b := mapOf(1, 3, 1, 2, 3)

	img, err := RGBComposite(r, g, b)
	require.NoError(t, err)

	r0, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), r0>>8)
}

func TestRGBCompositeShapeMismatch(t *testing.T) {
	a := spectral.NewMap(1, 3)
	b := spectral.NewMap(3, 1)

	_, err := RGBComposite(a, a, b)
	var dimErr *spectral.DimensionError
	require.ErrorAs(t, err, &dimErr)
}

func TestSavePNGCreatesDirectories(t *testing.T) {
	r := mapOf(2, 2, 1, 2, 3, 4)
	img, err := RGBComposite(r, r, r)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "out", "composite.png")
	require.NoError(t, SavePNG(img, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 2, decoded.Bounds().Dx())
}

func TestSpectrumPlotWritesFile(t *testing.T) {
	values := testdata.Linspace(500, 2600, 85)
	wvl := spectral.NewWavelength(values, spectral.Nanometer)
	spec := testdata.BumpySpectrum(values, 0.3, []float64{1500}, 0.08, 50)

	path := filepath.Join(t.TempDir(), "spectrum.png")
	err := SpectrumPlot(wvl, []Series{{Name: "raw", Values: spec}}, "test spectrum", path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSpectrumPlotSeriesLengthMismatch(t *testing.T) {
	values := testdata.Linspace(500, 2600, 85)
	wvl := spectral.NewWavelength(values, spectral.Nanometer)

	err := SpectrumPlot(wvl, []Series{{Name: "bad", Values: []float64{1, 2}}}, "t", filepath.Join(t.TempDir(), "x.png"))
	var dimErr *spectral.DimensionError
	require.ErrorAs(t, err, &dimErr)
}
